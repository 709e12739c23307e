package errorutil

import (
	"errors"
	"fmt"

	"takeout/internal/app/pkg/errorx"
)

// Error 任务处理错误（包含可重试标记）
// 可重试错误不 ACK，任务在 TTR 到期后由队列重新投递
type Error struct {
	Code       int    `json:"code"`
	Message    string `json:"message"`
	Retryable  bool   `json:"retryable"`
	DevDetails string `json:"dev_details,omitempty"`
	cause      error
}

// Error 实现 error 接口
func (e *Error) Error() string {
	return e.Message
}

// Unwrap 返回原始错误
func (e *Error) Unwrap() error {
	return e.cause
}

// Retriable 创建可重试错误（网络错误、临时故障等）
func Retriable(message string) *Error {
	return &Error{
		Code:      500,
		Message:   message,
		Retryable: true,
	}
}

// NonRetriable 创建不可重试错误（参数错误、业务规则错误等）
func NonRetriable(message string) *Error {
	return &Error{
		Code:      400,
		Message:   message,
		Retryable: false,
	}
}

// Wrap 包装错误，按业务错误类型判断是否可重试
//   - 订单不存在、状态不合法、已完成：重试也不会成功，不可重试
//   - 支付网关不可用、数据库错误等：可重试
func Wrap(err error) *Error {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		return e
	}

	switch {
	case errors.Is(err, errorx.ErrOrderNotFound),
		errors.Is(err, errorx.ErrInvalidState),
		errors.Is(err, errorx.ErrOrderCompleted):
		return &Error{
			Code:       400,
			Message:    err.Error(),
			Retryable:  false,
			DevDetails: fmt.Sprintf("%+v", err),
			cause:      err,
		}
	default:
		return &Error{
			Code:       500,
			Message:    err.Error(),
			Retryable:  true,
			DevDetails: fmt.Sprintf("%+v", err),
			cause:      err,
		}
	}
}

// IsRetryable 判断错误是否可重试
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	return Wrap(err).Retryable
}
