package errorx

import (
	"errors"
	"net/http"

	"takeout/common/model"
)

// 业务错误
var (
	ErrAddressNotFound     = errors.New("address not found")
	ErrCartEmpty           = errors.New("shopping cart is empty")
	ErrCartItemNotFound    = errors.New("shopping cart item not found")
	ErrCatalogItemNotFound = errors.New("dish or setmeal not found")
	ErrOrderNotFound       = errors.New("order not found")
	ErrInvalidState        = errors.New("order status error")
	ErrOrderCompleted      = errors.New("order already completed")
	ErrGatewayUnavailable  = errors.New("payment gateway unavailable")
)

// BusinessError 业务错误结构
type BusinessError struct {
	Code    int
	Message string
	Details []model.ErrorDetail
	cause   error
}

// Error 实现 error 接口
func (e *BusinessError) Error() string {
	return e.Message
}

// Unwrap 支持 errors.Is 匹配底层业务错误
func (e *BusinessError) Unwrap() error {
	return e.cause
}

// NewBusinessError 创建业务错误
func NewBusinessError(code int, message string) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
	}
}

// Wrap 将业务错误包装为带 HTTP 码的 BusinessError
func Wrap(err error) *BusinessError {
	if err == nil {
		return nil
	}
	var be *BusinessError
	if errors.As(err, &be) {
		return be
	}
	return &BusinessError{
		Code:    HTTPStatus(err),
		Message: err.Error(),
		cause:   err,
	}
}

// HTTPStatus 业务错误对应的 HTTP 状态码
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrAddressNotFound),
		errors.Is(err, ErrOrderNotFound),
		errors.Is(err, ErrCartItemNotFound),
		errors.Is(err, ErrCatalogItemNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrCartEmpty):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidState),
		errors.Is(err, ErrOrderCompleted):
		return http.StatusConflict
	case errors.Is(err, ErrGatewayUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
