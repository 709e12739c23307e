package mdpayment

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// errAlreadyPaid 网关返回订单已支付，对外由 PrepayResult.AlreadyPaid 表达
var errAlreadyPaid = errors.New("ORDERPAID")

// PrepayRequest 预支付请求
type PrepayRequest struct {
	OrderNumber string
	Amount      decimal.Decimal
	Description string
	PayerRef    string // 付款人标识（如 openid）
}

// PrepayResult 预支付结果
// AlreadyPaid 为 true 时不会产生新的扣款，PrepayToken 为空
type PrepayResult struct {
	AlreadyPaid bool
	PrepayToken string
}

// RefundRequest 退款请求，RefundNumber 作为网关侧幂等键
type RefundRequest struct {
	OrderNumber    string
	RefundNumber   string
	Amount         decimal.Decimal
	OriginalAmount decimal.Decimal
}

// Gateway 支付网关
type Gateway interface {
	RequestPrepay(ctx context.Context, req *PrepayRequest) (*PrepayResult, error)
	Refund(ctx context.Context, req *RefundRequest) error
}
