package jobs

import (
	"context"

	"takeout/internal/app/pkg/errorutil"
	"takeout/internal/app/worker/framework"
)

// PaymentTimeoutHandler 支付超时延迟任务：到期仍未支付则取消订单
// 订单已支付或已取消时迁移返回不可重试错误，消息被确认丢弃
type PaymentTimeoutHandler struct {
	framework.BaseHandler

	orders TimeoutCanceller
	deps   *Deps
}

// NewPaymentTimeoutHandler 创建支付超时处理器
func NewPaymentTimeoutHandler(ctx context.Context, base *framework.BaseHandler, deps *Deps) (framework.BusinessHandler, error) {
	return &PaymentTimeoutHandler{
		BaseHandler: *base,
		orders:      deps.Orders,
		deps:        deps,
	}, nil
}

func (h *PaymentTimeoutHandler) Handle(ctx context.Context) ([]byte, error) {
	pipeline := framework.NewPipeline().
		Then("pre_process", h.PreProcess).
		Then("process", h.Process)
	if err := pipeline.Run(ctx); err != nil {
		return h.WrapErrorResponse(err)
	}
	return h.WrapResponse(h.GetOutput())
}

func (h *PaymentTimeoutHandler) PreProcess(ctx context.Context) error {
	if h.GetPayload().OrderID <= 0 {
		return errorutil.NonRetriable("order_id is required")
	}
	return nil
}

func (h *PaymentTimeoutHandler) Process(ctx context.Context) error {
	orderID := h.GetPayload().OrderID
	if err := h.orders.TimeoutCancel(ctx, orderID, h.deps.PaymentTimeout); err != nil {
		return err
	}
	h.SetOutput(map[string]int64{"cancelled_order_id": orderID})
	return nil
}
