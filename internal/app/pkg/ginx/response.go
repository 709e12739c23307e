package ginx

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"takeout/common/model"
	"takeout/internal/app/pkg/errorx"
)

// Success 成功响应（200）
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, model.Response{
		Meta: model.MetaInfo{
			Code:      http.StatusOK,
			Type:      model.ResponseTypeOK,
			Message:   "OK",
			RequestID: requestID(c),
		},
		Data: data,
	})
}

// Error 错误响应
func Error(c *gin.Context, httpCode int, message string) {
	ErrorWithDetails(c, httpCode, message, nil)
}

// ErrorWithDetails 带详情的错误响应
func ErrorWithDetails(c *gin.Context, httpCode int, message string, details []model.ErrorDetail) {
	c.JSON(httpCode, model.Response{
		Meta: model.MetaInfo{
			Code:      httpCode,
			Type:      responseType(httpCode),
			Message:   message,
			RequestID: requestID(c),
			Details:   details,
		},
	})
}

// Fail 按业务错误映射 HTTP 状态码输出
func Fail(c *gin.Context, err error) {
	be := errorx.Wrap(err)
	if be.Code >= http.StatusInternalServerError && be.Code != http.StatusBadGateway {
		// 内部错误不向调用方暴露细节
		_ = c.Error(err)
		ErrorWithDetails(c, be.Code, "internal server error", nil)
		return
	}
	ErrorWithDetails(c, be.Code, be.Message, be.Details)
}

// BadRequest 400 错误
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// BadRequestWithValidation 400 错误（带验证详情）
func BadRequestWithValidation(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		details := make([]model.ErrorDetail, 0, len(validationErrs))
		for _, fieldErr := range validationErrs {
			details = append(details, model.ErrorDetail{
				Path: fieldErr.Field(),
				Info: getValidationErrorMessage(fieldErr),
			})
		}
		ErrorWithDetails(c, http.StatusBadRequest, "Validation failed", details)
		return
	}

	BadRequest(c, err.Error())
}

// NotFound 404 错误
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

// InternalError 500 错误
func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}

func responseType(httpCode int) string {
	switch {
	case httpCode == http.StatusOK:
		return model.ResponseTypeOK
	case httpCode == http.StatusUnauthorized:
		return model.ResponseTypeUnauthorized
	case httpCode == http.StatusNotFound:
		return model.ResponseTypeNotFound
	case httpCode == http.StatusConflict:
		return model.ResponseTypeConflict
	case httpCode < http.StatusInternalServerError:
		return model.ResponseTypeValidationError
	case httpCode == http.StatusBadGateway:
		return model.ResponseTypeUpstreamError
	default:
		return model.ResponseTypeInternalError
	}
}

// requestID 请求日志中间件写入的响应头
func requestID(c *gin.Context) string {
	return c.Writer.Header().Get("X-Request-ID")
}

// getValidationErrorMessage 根据验证错误类型返回友好的错误消息
func getValidationErrorMessage(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return fieldErr.Field() + " is required"
	case "min":
		return fieldErr.Field() + " must be at least " + fieldErr.Param()
	case "max":
		return fieldErr.Field() + " must be at most " + fieldErr.Param()
	case "oneof":
		return fieldErr.Field() + " must be one of " + fieldErr.Param()
	default:
		return fieldErr.Field() + " is invalid"
	}
}
