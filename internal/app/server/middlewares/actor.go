package middlewares

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"takeout/internal/app/pkg/ginx"
)

// 调用方身份由网关注入的请求头传入
const (
	HeaderUserID     = "X-User-ID"
	HeaderEmployeeID = "X-Employee-ID"

	userIDKey     = "user_id"
	employeeIDKey = "employee_id"
)

// UserActor 用户端接口要求 X-User-ID
func UserActor() gin.HandlerFunc {
	return actor(HeaderUserID, userIDKey)
}

// AdminActor 管理端接口要求 X-Employee-ID
func AdminActor() gin.HandlerFunc {
	return actor(HeaderEmployeeID, employeeIDKey)
}

func actor(header, key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.GetHeader(header), 10, 64)
		if err != nil || id <= 0 {
			ginx.Error(c, http.StatusUnauthorized, header+" header required")
			c.Abort()
			return
		}
		c.Set(key, id)
		c.Next()
	}
}

// UserID 当前用户 ID（UserActor 之后可用）
func UserID(c *gin.Context) int64 {
	return c.GetInt64(userIDKey)
}

// EmployeeID 当前员工 ID（AdminActor 之后可用）
func EmployeeID(c *gin.Context) int64 {
	return c.GetInt64(employeeIDKey)
}
