package recipe

import (
	"context"
	"fmt"
	"time"

	"recipe-sheet/internal/infrastructure/config"
	"recipe-sheet/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// HTTPFetcher 以瀏覽器 User-Agent 抓取食譜連結，回傳原始內容（不解析 HTML）
type HTTPFetcher struct {
	client *resty.Client
}

// NewHTTPFetcher 創建連結抓取器
func NewHTTPFetcher(cfg *config.FetchConfig) *HTTPFetcher {
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", cfg.UserAgent)

	return &HTTPFetcher{client: client}
}

// Fetch 抓取連結內容，任何失敗都轉為提示使用者手動貼上的錯誤
func (f *HTTPFetcher) Fetch(ctx context.Context, link string) (string, error) {
	start := time.Now()

	resp, err := f.client.R().
		SetContext(ctx).
		Get(link)
	if err != nil {
		common.LogWarn("Failed to fetch recipe link",
			zap.String("link", link),
			zap.Error(err),
		)
		return "", common.NewFetchError(link, err)
	}

	if resp.IsError() {
		common.LogWarn("Recipe link returned error status",
			zap.String("link", link),
			zap.Int("status_code", resp.StatusCode()),
		)
		return "", common.NewFetchError(link, fmt.Errorf("status %d", resp.StatusCode()))
	}

	common.LogInfo("Fetched recipe link",
		zap.String("link", link),
		zap.Int("bytes", len(resp.Body())),
		zap.Duration("latency", time.Since(start)),
	)

	// resp.String() 會去除前後空白，這裡保留原始內容
	return string(resp.Body()), nil
}

// Close 關閉閒置連線
func (f *HTTPFetcher) Close() {
	f.client.GetClient().CloseIdleConnections()
}
