package cart

import (
	"github.com/gin-gonic/gin"

	"takeout/internal/app/domains/apimodel/request"
	"takeout/internal/app/domains/apimodel/response"
	"takeout/internal/app/domains/services/svcart"
	"takeout/internal/app/pkg/ginx"
	"takeout/internal/app/server/middlewares"
)

// CartHandler 购物车 HTTP 处理器
type CartHandler struct {
	cartService *svcart.CartService
}

// NewCartHandler 创建购物车处理器实例
func NewCartHandler(cartService *svcart.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// Add 加购
// POST /api/v1/user/shoppingCart/add
func (h *CartHandler) Add(c *gin.Context) {
	var req request.CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	item, err := h.cartService.Add(c.Request.Context(), req.ToKey(middlewares.UserID(c)))
	if err != nil {
		ginx.Fail(c, err)
		return
	}
	ginx.Success(c, response.FromCartItem(item))
}

// Sub 减购，数量减到 0 时删除该行并返回 null
// POST /api/v1/user/shoppingCart/sub
func (h *CartHandler) Sub(c *gin.Context) {
	var req request.CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	item, err := h.cartService.SubOne(c.Request.Context(), req.ToKey(middlewares.UserID(c)))
	if err != nil {
		ginx.Fail(c, err)
		return
	}
	if item == nil {
		ginx.Success(c, nil)
		return
	}
	ginx.Success(c, response.FromCartItem(item))
}

// List 查看购物车
// GET /api/v1/user/shoppingCart/list
func (h *CartHandler) List(c *gin.Context) {
	items, err := h.cartService.List(c.Request.Context(), middlewares.UserID(c))
	if err != nil {
		ginx.Fail(c, err)
		return
	}
	ginx.Success(c, response.FromCartItems(items))
}

// Clean 清空购物车
// DELETE /api/v1/user/shoppingCart/clean
func (h *CartHandler) Clean(c *gin.Context) {
	if err := h.cartService.Clean(c.Request.Context(), middlewares.UserID(c)); err != nil {
		ginx.Fail(c, err)
		return
	}
	ginx.Success(c, nil)
}
