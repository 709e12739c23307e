package jobs

import (
	"context"

	"takeout/internal/app/pkg/errorutil"
	"takeout/internal/app/worker/framework"
)

// PayCallbackHandler 支付回调任务：幂等地确认订单支付
type PayCallbackHandler struct {
	framework.BaseHandler

	payments PaymentConfirmer
}

// NewPayCallbackHandler 创建支付回调处理器
func NewPayCallbackHandler(ctx context.Context, base *framework.BaseHandler, deps *Deps) (framework.BusinessHandler, error) {
	return &PayCallbackHandler{
		BaseHandler: *base,
		payments:    deps.Payments,
	}, nil
}

// Handle 处理入口
func (h *PayCallbackHandler) Handle(ctx context.Context) ([]byte, error) {
	pipeline := framework.NewPipeline().
		Then("pre_process", h.PreProcess).
		Then("process", h.Process)
	if err := pipeline.Run(ctx); err != nil {
		return h.WrapErrorResponse(err)
	}
	return h.WrapResponse(h.GetOutput())
}

// PreProcess 校验回调内容
func (h *PayCallbackHandler) PreProcess(ctx context.Context) error {
	callback := h.GetPayload().Callback
	if callback == nil {
		return errorutil.NonRetriable("callback is required")
	}
	if callback.OrderNumber == "" {
		callback.OrderNumber = h.GetPayload().OrderNumber
	}
	if callback.OrderNumber == "" {
		return errorutil.NonRetriable("out_trade_no is required")
	}
	return nil
}

// Process 确认支付
func (h *PayCallbackHandler) Process(ctx context.Context) error {
	callback := h.GetPayload().Callback
	if err := h.payments.HandleCallback(ctx, callback); err != nil {
		return err
	}
	h.SetOutput(map[string]string{"order_number": callback.OrderNumber, "trade_state": callback.TradeState})
	return nil
}
