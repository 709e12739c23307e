package ginx

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// ParamInt64 解析正整数路径参数，失败时直接输出 400
func ParamInt64(c *gin.Context, name string) (int64, bool) {
	v, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || v <= 0 {
		BadRequest(c, name+" must be a positive integer")
		return 0, false
	}
	return v, true
}
