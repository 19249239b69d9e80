package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/payetonkawa/catalog-service/internal/platform/logger"
)

// RequestLogger logs one line per request. The query string is left out
// because it may carry an access token.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []interface{}{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		}
		if status >= 500 {
			logger.Warn("request failed", fields...)
			return
		}
		logger.Info("request", fields...)
	}
}
