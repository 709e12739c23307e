package admin

import (
	"github.com/gin-gonic/gin"

	"takeout/internal/app/domains/apimodel/request"
	"takeout/internal/app/domains/apimodel/response"
	"takeout/internal/app/pkg/ginx"
	"takeout/internal/app/server/middlewares"
)

// ConditionSearch 订单搜索
// GET /api/v1/admin/order/conditionSearch
func (h *AdminHandler) ConditionSearch(c *gin.Context) {
	var q request.ConditionSearchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	result, err := h.orderService.ConditionSearch(c.Request.Context(), q.ToCriteria(), q.Pagination())
	if err != nil {
		ginx.Fail(c, err)
		return
	}
	ginx.Success(c, &response.PageResponse{
		Total:   result.Total,
		Records: response.FromSearchItems(result.Records),
	})
}

// Statistics 各状态订单数量
// GET /api/v1/admin/order/statistics
func (h *AdminHandler) Statistics(c *gin.Context) {
	stats, err := h.orderService.Statistics(c.Request.Context())
	if err != nil {
		ginx.Fail(c, err)
		return
	}
	ginx.Success(c, response.FromStatistics(stats))
}

// Detail 订单详情
// GET /api/v1/admin/order/details/:id
func (h *AdminHandler) Detail(c *gin.Context) {
	id, ok := ginx.ParamInt64(c, "id")
	if !ok {
		return
	}

	// userID 为 0 时不校验归属
	order, err := h.orderService.Detail(c.Request.Context(), 0, id)
	if err != nil {
		ginx.Fail(c, err)
		return
	}
	ginx.Success(c, response.FromOrderEntity(order))
}

// Confirm 接单
// PUT /api/v1/admin/order/confirm
func (h *AdminHandler) Confirm(c *gin.Context) {
	var req request.OrderIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	if err := h.orderService.Accept(c.Request.Context(), req.ID); err != nil {
		ginx.Fail(c, err)
		return
	}
	h.audit(c, "confirm", req.ID)
	ginx.Success(c, nil)
}

// Rejection 拒单，已支付的订单会退款
// PUT /api/v1/admin/order/rejection
func (h *AdminHandler) Rejection(c *gin.Context) {
	var req request.RejectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	if err := h.orderService.Reject(c.Request.Context(), req.ID, req.RejectionReason); err != nil {
		ginx.Fail(c, err)
		return
	}
	h.audit(c, "reject", req.ID)
	ginx.Success(c, nil)
}

// Cancel 商家取消订单
// PUT /api/v1/admin/order/cancel
func (h *AdminHandler) Cancel(c *gin.Context) {
	var req request.CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	if err := h.orderService.StaffCancel(c.Request.Context(), req.ID, req.CancelReason); err != nil {
		ginx.Fail(c, err)
		return
	}
	h.audit(c, "cancel", req.ID)
	ginx.Success(c, nil)
}

// Delivery 派送
// PUT /api/v1/admin/order/delivery/:id
func (h *AdminHandler) Delivery(c *gin.Context) {
	id, ok := ginx.ParamInt64(c, "id")
	if !ok {
		return
	}

	if err := h.orderService.Dispatch(c.Request.Context(), id); err != nil {
		ginx.Fail(c, err)
		return
	}
	h.audit(c, "dispatch", id)
	ginx.Success(c, nil)
}

// Complete 完成
// PUT /api/v1/admin/order/complete/:id
func (h *AdminHandler) Complete(c *gin.Context) {
	id, ok := ginx.ParamInt64(c, "id")
	if !ok {
		return
	}

	if err := h.orderService.Deliver(c.Request.Context(), id); err != nil {
		ginx.Fail(c, err)
		return
	}
	h.audit(c, "complete", id)
	ginx.Success(c, nil)
}

func (h *AdminHandler) audit(c *gin.Context, op string, orderID int64) {
	h.logger.InfoContext(c.Request.Context(), "Staff order operation",
		"op", op,
		"order_id", orderID,
		"employee_id", middlewares.EmployeeID(c),
	)
}
