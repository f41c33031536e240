package common

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorResponse 定義 API 錯誤響應結構（沿用前端的葡文欄位）
type ErrorResponse struct {
	Error   string `json:"erro"`               // 錯誤信息
	Details string `json:"detalhes,omitempty"` // 詳細信息
	Code    string `json:"codigo,omitempty"`   // 錯誤代碼
}

// CustomError 定義自定義錯誤類型
type CustomError struct {
	Code    string // 錯誤代碼
	Message string // 錯誤信息
	Err     error  // 原始錯誤
	Status  int    // HTTP 狀態碼
}

func (e *CustomError) Error() string {
	switch {
	case e.Err != nil && e.Message != "":
		return e.Message + ": " + e.Err.Error()
	case e.Err != nil:
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap 返回原始錯誤
func (e *CustomError) Unwrap() error {
	return e.Err
}

// Is 以錯誤代碼比對，讓預定義錯誤可以當作 sentinel 使用
func (e *CustomError) Is(target error) bool {
	t, ok := target.(*CustomError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Wrap 以相同代碼與狀態包裝原始錯誤
func (e *CustomError) Wrap(err error) *CustomError {
	return NewError(e.Code, e.Message, e.Status, err)
}

// Wrapf 以相同代碼與狀態包裝原始錯誤，並替換錯誤信息
func (e *CustomError) Wrapf(err error, format string, args ...interface{}) *CustomError {
	return NewError(e.Code, fmt.Sprintf(format, args...), e.Status, err)
}

// NewError 創建新的自定義錯誤
func NewError(code string, message string, status int, err error) *CustomError {
	return &CustomError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// StatusOf 取得錯誤對應的 HTTP 狀態碼，非自定義錯誤一律視為 500
func StatusOf(err error) int {
	var ce *CustomError
	if errors.As(err, &ce) && ce.Status != 0 {
		return ce.Status
	}
	return http.StatusInternalServerError
}

// CodeOf 取得錯誤代碼
func CodeOf(err error) string {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ErrCodeInternalError
}

// MessageOf 取得面向使用者的錯誤信息（不含原始錯誤）
func MessageOf(err error) string {
	var ce *CustomError
	if errors.As(err, &ce) && ce.Message != "" {
		return ce.Message
	}
	return err.Error()
}

// 預定義錯誤代碼
const (
	// 客戶端錯誤 (4xx)
	ErrCodeInvalidRequest  = "INVALID_REQUEST"   // 400
	ErrCodeNoInput         = "NO_INPUT"          // 400
	ErrCodeAmbiguousInput  = "AMBIGUOUS_INPUT"   // 400
	ErrCodeInvalidImage    = "INVALID_IMAGE"     // 400
	ErrCodeTooManyRequests = "TOO_MANY_REQUESTS" // 429

	// 服務器錯誤 (5xx)
	ErrCodeInternalError     = "INTERNAL_ERROR"     // 500
	ErrCodeFetchFailed       = "FETCH_FAILED"       // 500
	ErrCodeExtractionFailed  = "EXTRACTION_FAILED"  // 500
	ErrCodeMalformedResponse = "MALFORMED_RESPONSE" // 500
	ErrCodeJSONParse         = "JSON_PARSE_ERROR"   // 500
	ErrCodeFileSystem        = "FILESYSTEM_ERROR"   // 500
	ErrCodeAIService         = "AI_SERVICE_ERROR"   // 500
	ErrCodeProcessingTimeout = "PROCESSING_TIMEOUT" // 500
)

// 預定義錯誤
var (
	// 客戶端錯誤
	ErrInvalidRequest  = NewError(ErrCodeInvalidRequest, "Requisição inválida", http.StatusBadRequest, nil)
	ErrNoInput         = NewError(ErrCodeNoInput, "Nenhuma receita fornecida", http.StatusBadRequest, nil)
	ErrAmbiguousInput  = NewError(ErrCodeAmbiguousInput, "Envie apenas uma fonte de receita (texto, link ou imagem)", http.StatusBadRequest, nil)
	ErrInvalidImage    = NewError(ErrCodeInvalidImage, "Imagem inválida", http.StatusBadRequest, nil)
	ErrTooManyRequests = NewError(ErrCodeTooManyRequests, "Muitas requisições", http.StatusTooManyRequests, nil)

	// 服務器錯誤
	ErrInternalError     = NewError(ErrCodeInternalError, "Erro interno do servidor", http.StatusInternalServerError, nil)
	ErrFetchFailed       = NewError(ErrCodeFetchFailed, "Não consegui acessar o link", http.StatusInternalServerError, nil)
	ErrExtractionFailed  = NewError(ErrCodeExtractionFailed, "Falha ao extrair texto da imagem", http.StatusInternalServerError, nil)
	ErrMalformedResponse = NewError(ErrCodeMalformedResponse, "A IA não retornou JSON válido", http.StatusInternalServerError, nil)
	ErrJSONParse         = NewError(ErrCodeJSONParse, "Falha ao interpretar o JSON retornado pela IA", http.StatusInternalServerError, nil)
	ErrFileSystem        = NewError(ErrCodeFileSystem, "Falha de acesso ao sistema de arquivos", http.StatusInternalServerError, nil)
	ErrAIService         = NewError(ErrCodeAIService, "Erro no serviço de IA", http.StatusInternalServerError, nil)
	ErrProcessingTimeout = NewError(ErrCodeProcessingTimeout, "Tempo de processamento esgotado", http.StatusInternalServerError, nil)
)

// NewFetchError 創建連結抓取錯誤，信息會提示使用者改為貼上內容
func NewFetchError(link string, err error) *CustomError {
	return ErrFetchFailed.Wrapf(err, "Não consegui acessar o link %s. Por favor, copie e cole o conteúdo da receita.", link)
}
