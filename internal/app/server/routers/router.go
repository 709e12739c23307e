package routers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"takeout/internal/app/pkg/logger"
	"takeout/internal/app/server/handlers/admin"
	"takeout/internal/app/server/handlers/cart"
	"takeout/internal/app/server/handlers/notify"
	"takeout/internal/app/server/handlers/order"
	"takeout/internal/app/server/middlewares"
)

// Handlers 路由依赖的全部处理器
type Handlers struct {
	Cart   *cart.CartHandler
	Order  *order.OrderHandler
	Admin  *admin.AdminHandler
	Notify *notify.NotifyHandler
}

// SetupRoutes 配置所有路由，使用 Route Group 分类
func SetupRoutes(h *Handlers, log logger.Logger) *gin.Engine {
	r := gin.New()

	r.Use(middlewares.CORS())
	r.Use(middlewares.Logger(log))
	r.Use(middlewares.ErrorHandler(log))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "takeout",
			"message": "Service is running",
		})
	})

	v1 := r.Group("/api/v1")

	user := v1.Group("/user", middlewares.UserActor())
	{
		shoppingCart := user.Group("/shoppingCart")
		{
			shoppingCart.POST("/add", h.Cart.Add)
			shoppingCart.POST("/sub", h.Cart.Sub)
			shoppingCart.GET("/list", h.Cart.List)
			shoppingCart.DELETE("/clean", h.Cart.Clean)
		}

		orders := user.Group("/order")
		{
			orders.POST("/submit", h.Order.Submit)
			orders.PUT("/payment", h.Order.Payment)
			orders.GET("/historyOrders", h.Order.History)
			orders.GET("/orderDetail/:id", h.Order.Detail)
			orders.PUT("/cancel/:id", h.Order.Cancel)
			orders.POST("/repetition/:id", h.Order.Repetition)
			orders.GET("/reminder/:id", h.Order.Reminder)
		}
	}

	staff := v1.Group("/admin", middlewares.AdminActor())
	{
		orders := staff.Group("/order")
		{
			orders.GET("/conditionSearch", h.Admin.ConditionSearch)
			orders.GET("/statistics", h.Admin.Statistics)
			orders.GET("/details/:id", h.Admin.Detail)
			orders.PUT("/confirm", h.Admin.Confirm)
			orders.PUT("/rejection", h.Admin.Rejection)
			orders.PUT("/cancel", h.Admin.Cancel)
			orders.PUT("/delivery/:id", h.Admin.Delivery)
			orders.PUT("/complete/:id", h.Admin.Complete)
		}
		staff.GET("/notifications", h.Admin.Notifications)
	}

	// 网关回调不带用户身份
	v1.POST("/notify/paySuccess", h.Notify.PaySuccess)

	return r
}
