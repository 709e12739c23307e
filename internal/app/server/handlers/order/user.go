package order

import (
	"github.com/gin-gonic/gin"

	"takeout/internal/app/domains/apimodel/request"
	"takeout/internal/app/domains/apimodel/response"
	"takeout/internal/app/pkg/ginx"
	"takeout/internal/app/server/middlewares"
)

// History 历史订单
// GET /api/v1/user/order/historyOrders?page=1&page_size=10&status=5
func (h *OrderHandler) History(c *gin.Context) {
	var q request.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	result, err := h.orderService.UserHistory(c.Request.Context(), middlewares.UserID(c), q.OrderStatus(), q.Pagination())
	if err != nil {
		ginx.Fail(c, err)
		return
	}
	ginx.Success(c, &response.PageResponse{
		Total:   result.Total,
		Records: response.FromOrderEntities(result.Records),
	})
}

// Detail 订单详情
// GET /api/v1/user/order/orderDetail/:id
func (h *OrderHandler) Detail(c *gin.Context) {
	id, ok := ginx.ParamInt64(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.Detail(c.Request.Context(), middlewares.UserID(c), id)
	if err != nil {
		ginx.Fail(c, err)
		return
	}
	ginx.Success(c, response.FromOrderEntity(order))
}

// Cancel 用户取消订单
// PUT /api/v1/user/order/cancel/:id
func (h *OrderHandler) Cancel(c *gin.Context) {
	id, ok := ginx.ParamInt64(c, "id")
	if !ok {
		return
	}

	if err := h.orderService.UserCancel(c.Request.Context(), middlewares.UserID(c), id); err != nil {
		ginx.Fail(c, err)
		return
	}
	ginx.Success(c, nil)
}

// Repetition 再来一单
// POST /api/v1/user/order/repetition/:id
func (h *OrderHandler) Repetition(c *gin.Context) {
	id, ok := ginx.ParamInt64(c, "id")
	if !ok {
		return
	}

	if err := h.orderService.Repetition(c.Request.Context(), middlewares.UserID(c), id); err != nil {
		ginx.Fail(c, err)
		return
	}
	ginx.Success(c, nil)
}

// Reminder 催单
// GET /api/v1/user/order/reminder/:id
func (h *OrderHandler) Reminder(c *gin.Context) {
	id, ok := ginx.ParamInt64(c, "id")
	if !ok {
		return
	}

	if err := h.orderService.Reminder(c.Request.Context(), middlewares.UserID(c), id); err != nil {
		ginx.Fail(c, err)
		return
	}
	ginx.Success(c, nil)
}
