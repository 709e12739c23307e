package mdpayment

import (
	"context"

	"takeout/internal/app/pkg/logger"
)

// MockGateway 模拟网关：预支付一律返回已支付，退款直接成功
// 用于开发环境与没有商户号的部署
type MockGateway struct {
	logger logger.Logger
}

// NewMockGateway 创建模拟网关
func NewMockGateway(log logger.Logger) *MockGateway {
	return &MockGateway{logger: log}
}

func (g *MockGateway) RequestPrepay(ctx context.Context, req *PrepayRequest) (*PrepayResult, error) {
	g.logger.InfoContext(ctx, "Mock gateway prepay",
		"order_number", req.OrderNumber,
		"amount", req.Amount.StringFixed(2),
	)
	return &PrepayResult{AlreadyPaid: true}, nil
}

func (g *MockGateway) Refund(ctx context.Context, req *RefundRequest) error {
	g.logger.InfoContext(ctx, "Mock gateway refund",
		"order_number", req.OrderNumber,
		"refund_number", req.RefundNumber,
		"amount", req.Amount.StringFixed(2),
	)
	return nil
}
