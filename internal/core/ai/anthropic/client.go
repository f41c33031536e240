package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"recipe-sheet/internal/core/ai/provider"
	"recipe-sheet/internal/infrastructure/config"
	"recipe-sheet/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Client Anthropic Messages API 客戶端
type Client struct {
	config *config.AnthropicConfig
	client *resty.Client
}

// apiRequest 實際送出的請求體
type apiRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []provider.Message `json:"messages"`
}

// apiError 表示 API 錯誤
type apiError struct {
	Type  string `json:"type"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// NewClient 創建新的 Anthropic 客戶端；未設定逾時，由請求 context 控制
func NewClient(cfg *config.AnthropicConfig) *Client {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("x-api-key", cfg.APIKey).
		SetHeader("anthropic-version", cfg.Version).
		SetHeader("Content-Type", "application/json")

	return &Client{
		config: cfg,
		client: client,
	}
}

var base64Pattern = regexp.MustCompile(`[A-Za-z0-9+/=]{200,}`)

// sanitizeBody 移除回應中的長 base64 片段，避免寫進日誌或錯誤訊息
func sanitizeBody(body []byte) string {
	s := base64Pattern.ReplaceAllString(string(body), "[BASE64_DATA_REMOVED]")
	if len(s) > 2000 {
		s = s[:2000] + "...(truncated)"
	}
	return s
}

// Complete 發送單輪補全請求
func (c *Client) Complete(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	start := time.Now()

	body := apiRequest{
		Model:     c.config.Model,
		MaxTokens: req.MaxTokens,
		System:    req.System,
		Messages:  req.Messages,
	}

	common.LogInfo("Sending request to Anthropic",
		zap.String("model", body.Model),
		zap.Int("messages", len(body.Messages)),
		zap.Int("max_tokens", body.MaxTokens),
	)

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(body).
		Post("/messages")
	if err != nil {
		common.LogError("Failed to send request to AI service",
			zap.Error(err),
			zap.String("model", body.Model),
		)
		return nil, common.ErrAIService.Wrapf(err, "failed to send request")
	}

	if resp.IsError() {
		sanitized := sanitizeBody(resp.Body())
		common.LogError("AI service returned error status",
			zap.Int("status_code", resp.StatusCode()),
			zap.String("model", body.Model),
			zap.String("response", sanitized),
		)

		var apiErr apiError
		if json.Unmarshal(resp.Body(), &apiErr) == nil && apiErr.Error.Message != "" {
			return nil, common.ErrAIService.Wrapf(fmt.Errorf("%s: %s", apiErr.Error.Type, apiErr.Error.Message),
				"AI service error (status %d)", resp.StatusCode())
		}
		return nil, common.ErrAIService.Wrapf(fmt.Errorf("%s", sanitized), "AI service error (status %d)", resp.StatusCode())
	}

	var response provider.Response
	if err := json.Unmarshal(resp.Body(), &response); err != nil {
		common.LogError("Failed to parse AI service response",
			zap.Error(err),
			zap.String("model", body.Model),
			zap.String("response", sanitizeBody(resp.Body())),
		)
		return nil, common.ErrAIService.Wrapf(err, "failed to parse response")
	}

	if len(response.Content) == 0 {
		common.LogError("Empty content in AI service response",
			zap.String("model", body.Model),
			zap.String("stop_reason", response.StopReason),
		)
		return nil, common.ErrAIService.Wrapf(nil, "empty content in response")
	}

	common.LogInfo("Successfully generated response from AI service",
		zap.String("model", body.Model),
		zap.Int("blocks", len(response.Content)),
		zap.Int("input_tokens", response.Usage.InputTokens),
		zap.Int("output_tokens", response.Usage.OutputTokens),
		zap.Duration("latency", time.Since(start)),
	)

	return &response, nil
}

// GetModel 獲取模型名稱
func (c *Client) GetModel() string {
	return c.config.Model
}

// Close 關閉客戶端
func (c *Client) Close() error {
	c.client.GetClient().CloseIdleConnections()
	return nil
}

var _ provider.Provider = (*Client)(nil)
