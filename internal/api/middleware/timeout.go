package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
)

// Timeout 為每個請求設置截止時間，下游的抓取與 AI 呼叫共用此 context
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
