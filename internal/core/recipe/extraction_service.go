package recipe

import (
	"context"
	"errors"
	"time"

	"recipe-sheet/internal/core/ai/image"
	"recipe-sheet/internal/core/ai/provider"
	"recipe-sheet/internal/pkg/common"

	"go.uber.org/zap"
)

// ExtractionService 以多模態模型從食譜照片抽取文字
type ExtractionService struct {
	provider  provider.Provider
	images    *image.Processor
	maxTokens int
}

// NewExtractionService 創建圖片文字抽取服務
func NewExtractionService(p provider.Provider, images *image.Processor, maxTokens int) *ExtractionService {
	return &ExtractionService{
		provider:  p,
		images:    images,
		maxTokens: maxTokens,
	}
}

// ExtractText 返回模型回覆中的第一個文字區塊，不重試
func (s *ExtractionService) ExtractText(ctx context.Context, data []byte) (string, error) {
	encoded, err := s.images.Encode(data)
	if err != nil {
		return "", err
	}

	start := time.Now()
	resp, err := s.provider.Complete(ctx, &provider.Request{
		MaxTokens: s.maxTokens,
		Messages: []provider.Message{
			provider.ImageMessage(encoded.MediaType, encoded.Data, extractionInstruction),
		},
	})
	common.LogAICall("extraction", time.Since(start), err,
		zap.String("model", s.provider.GetModel()),
		zap.String("media_type", encoded.MediaType),
		zap.Int("image_bytes", len(data)),
		zap.Int("width", encoded.Width),
		zap.Int("height", encoded.Height),
	)
	if err != nil {
		return "", common.ErrExtractionFailed.Wrap(err)
	}

	text, ok := resp.FirstText()
	if !ok {
		return "", common.ErrExtractionFailed.Wrap(errors.New("no text block in response"))
	}
	return text, nil
}
