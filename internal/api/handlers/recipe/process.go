package recipe

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/http"

	recipeService "recipe-sheet/internal/core/recipe"
	"recipe-sheet/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// imageField 上傳圖片的表單欄位
const imageField = "imagem"

// processFailureMessage 5xx 回應的固定錯誤信息
const processFailureMessage = "Erro ao processar receita"

// Processor 食譜處理流程
type Processor interface {
	Process(ctx context.Context, src recipeService.Source) (*recipeService.Result, error)
}

// UploadSaver 暫存上傳圖片
type UploadSaver interface {
	Save(r io.Reader, originalName string) (string, error)
}

// Handler 食譜處理程序
type Handler struct {
	processor Processor
	uploads   UploadSaver
}

// NewHandler 創建新的食譜處理程序
func NewHandler(processor Processor, uploads UploadSaver) *Handler {
	return &Handler{
		processor: processor,
		uploads:   uploads,
	}
}

// HandleProcessRecipe 處理 /api/processar-receita，接受 JSON 或表單（含圖片）
func (h *Handler) HandleProcessRecipe(c *gin.Context) {
	requestID := requestid.Get(c)

	src, err := h.bindSource(c)
	if err != nil {
		h.respondError(c, requestID, err)
		return
	}

	common.LogInfo("開始處理食譜請求",
		zap.String("request_id", requestID),
		zap.String("kind", string(src.Kind())),
		zap.String("client_ip", c.ClientIP()),
	)

	result, err := h.processor.Process(c.Request.Context(), src)
	if err != nil {
		h.respondError(c, requestID, err)
		return
	}

	common.LogInfo("食譜處理完成",
		zap.String("request_id", requestID),
		zap.String("recipe_name", result.Recipe.Name),
		zap.String("file_name", result.File.FileName),
	)

	c.JSON(http.StatusOK, common.ProcessRecipeResponse{
		Success:    true,
		RecipeName: result.Recipe.Name,
		Warnings:   result.Recipe.Warnings,
		File: common.FileEnvelope{
			Name:       result.File.FileName,
			Base64Data: base64.StdEncoding.EncodeToString(result.File.Content),
		},
	})
}

// bindSource 依 Content-Type 解析請求；空的 JSON body 視為未提供食譜
func (h *Handler) bindSource(c *gin.Context) (recipeService.Source, error) {
	var req common.ProcessRecipeRequest

	switch c.ContentType() {
	case gin.MIMEMultipartPOSTForm:
		if err := c.ShouldBind(&req); err != nil {
			return recipeService.Source{}, common.ErrInvalidRequest.Wrap(err)
		}
		upload, err := h.saveImage(c)
		if err != nil {
			return recipeService.Source{}, err
		}
		return recipeService.Source{Text: req.Text, Link: req.Link, Image: upload}, nil

	case gin.MIMEPOSTForm:
		if err := c.ShouldBind(&req); err != nil {
			return recipeService.Source{}, common.ErrInvalidRequest.Wrap(err)
		}

	default:
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			return recipeService.Source{}, common.ErrInvalidRequest.Wrap(err)
		}
	}

	return recipeService.Source{Text: req.Text, Link: req.Link}, nil
}

func (h *Handler) saveImage(c *gin.Context) (*recipeService.ImageUpload, error) {
	header, err := c.FormFile(imageField)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, common.ErrInvalidRequest.Wrap(err)
	}

	f, err := header.Open()
	if err != nil {
		return nil, common.ErrInvalidImage.Wrap(err)
	}
	defer f.Close()

	path, err := h.uploads.Save(f, header.Filename)
	if err != nil {
		return nil, err
	}

	return &recipeService.ImageUpload{
		Path:        path,
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
	}, nil
}

// respondError 4xx 直接回傳錯誤信息，其餘回傳固定信息加上詳細原因
func (h *Handler) respondError(c *gin.Context, requestID string, err error) {
	// 已分類的錯誤（例如連結抓取逾時）保留原本的代碼
	var ce *common.CustomError
	if !errors.As(err, &ce) && errors.Is(err, context.DeadlineExceeded) {
		err = common.ErrProcessingTimeout.Wrap(err)
	}
	status := common.StatusOf(err)

	fields := []zap.Field{
		zap.String("request_id", requestID),
		zap.String("code", common.CodeOf(err)),
		zap.Int("status", status),
		zap.Error(err),
	}

	if status < http.StatusInternalServerError {
		common.LogWarn("食譜請求無效", fields...)
		c.JSON(status, common.ErrorResponse{
			Error: common.MessageOf(err),
			Code:  common.CodeOf(err),
		})
		return
	}

	common.LogError("食譜處理失敗", fields...)
	c.Error(err)
	c.JSON(status, common.ErrorResponse{
		Error:   processFailureMessage,
		Details: err.Error(),
		Code:    common.CodeOf(err),
	})
}
