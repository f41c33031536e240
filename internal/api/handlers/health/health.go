package health

import (
	"net/http"
	"runtime"
	"time"

	"recipe-sheet/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime"`
}

// ReadyFunc 就緒檢查，返回錯誤表示尚未就緒
type ReadyFunc func() error

// Handler 健康檢查處理程序
type Handler struct {
	version string
	ready   ReadyFunc
	now     func() time.Time
}

// NewHandler 創建健康檢查處理程序，ready 可為 nil
func NewHandler(version string, ready ReadyFunc) *Handler {
	return &Handler{
		version: version,
		ready:   ready,
		now:     time.Now,
	}
}

// HealthCheck 健康檢查處理器，不觸發任何外部呼叫
func (h *Handler) HealthCheck(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "ok",
		Timestamp: h.now().UTC(),
		Version:   h.version,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 就緒檢查處理器（模板可讀）
func (h *Handler) ReadinessCheck(c *gin.Context) {
	if h.ready != nil {
		if err := h.ready(); err != nil {
			common.LogWarn("Readiness check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "not_ready",
				"detalhes": err.Error(),
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}
