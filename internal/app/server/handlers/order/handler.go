package order

import (
	"takeout/internal/app/domains/services/svcheckout"
	"takeout/internal/app/domains/services/svorder"
	"takeout/internal/app/domains/services/svpayment"
)

// OrderHandler 用户端订单 HTTP 处理器
type OrderHandler struct {
	checkoutService *svcheckout.CheckoutService
	paymentService  *svpayment.PaymentService
	orderService    *svorder.OrderService
}

// NewOrderHandler 创建订单处理器实例
func NewOrderHandler(
	checkoutService *svcheckout.CheckoutService,
	paymentService *svpayment.PaymentService,
	orderService *svorder.OrderService,
) *OrderHandler {
	return &OrderHandler{
		checkoutService: checkoutService,
		paymentService:  paymentService,
		orderService:    orderService,
	}
}
