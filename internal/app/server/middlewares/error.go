package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"takeout/internal/app/pkg/ginx"
	"takeout/internal/app/pkg/logger"
)

// ErrorHandler 统一错误处理中间件
// 捕获 panic；handler 记录了错误但没有写响应时补写 500
func ErrorHandler(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.ErrorContext(c.Request.Context(), "Handler panic", "panic", r, "path", c.FullPath())
				if !c.Writer.Written() {
					ginx.InternalError(c, "internal server error")
				}
				c.Abort()
			}
		}()

		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			ginx.Error(c, http.StatusInternalServerError, "internal server error")
		}
	}
}
