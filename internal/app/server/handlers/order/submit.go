package order

import (
	"github.com/gin-gonic/gin"

	"takeout/internal/app/domains/apimodel/request"
	"takeout/internal/app/domains/apimodel/response"
	"takeout/internal/app/pkg/ginx"
	"takeout/internal/app/server/middlewares"
)

// Submit 用户下单：购物车结算为待付款订单
// POST /api/v1/user/order/submit
func (h *OrderHandler) Submit(c *gin.Context) {
	var req request.SubmitOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	result, err := h.checkoutService.Submit(c.Request.Context(), middlewares.UserID(c), req.AddressBookID, req.Remark)
	if err != nil {
		ginx.Fail(c, err)
		return
	}
	ginx.Success(c, response.FromSubmitResult(result))
}

// Payment 用户支付
// PUT /api/v1/user/order/payment
func (h *OrderHandler) Payment(c *gin.Context) {
	var req request.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	result, err := h.paymentService.Pay(c.Request.Context(), middlewares.UserID(c), req.OrderNumber)
	if err != nil {
		ginx.Fail(c, err)
		return
	}
	ginx.Success(c, response.FromPayResult(result))
}
