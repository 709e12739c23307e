package jobs

import (
	"context"
	"time"

	"takeout/common/model"
)

// PaymentConfirmer 支付确认（由 svpayment.PaymentService 实现）
type PaymentConfirmer interface {
	HandleCallback(ctx context.Context, callback *model.PayCallback) error
}

// TimeoutCanceller 支付超时取消（由 svorder.OrderService 实现）
type TimeoutCanceller interface {
	TimeoutCancel(ctx context.Context, orderID int64, grace time.Duration) error
}

// Deps 任务处理器依赖
type Deps struct {
	Payments       PaymentConfirmer
	Orders         TimeoutCanceller
	PaymentTimeout time.Duration
}
