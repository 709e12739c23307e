package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"takeout/internal/app/pkg/logger"
)

const HeaderRequestID = "X-Request-ID"

// Logger 请求日志，并把 X-Request-ID 作为 trace_id 注入请求 Context
func Logger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Header(HeaderRequestID, requestID)
		c.Request = c.Request.WithContext(logger.WithTraceID(c.Request.Context(), requestID))

		c.Next()

		fields := []interface{}{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
			"client_ip", c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "errors", c.Errors.String())
		}

		switch {
		case c.Writer.Status() >= 500:
			log.ErrorContext(c.Request.Context(), "HTTP request", fields...)
		case c.Writer.Status() >= 400:
			log.WarnContext(c.Request.Context(), "HTTP request", fields...)
		default:
			log.InfoContext(c.Request.Context(), "HTTP request", fields...)
		}
	}
}
