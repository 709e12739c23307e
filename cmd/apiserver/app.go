package main

import (
	"github.com/gin-gonic/gin"

	"takeout/internal/app/bootstrap"
	"takeout/internal/app/config"
	"takeout/internal/app/pkg/logger"
	"takeout/internal/app/server/handlers/admin"
	"takeout/internal/app/server/handlers/cart"
	"takeout/internal/app/server/handlers/notify"
	"takeout/internal/app/server/handlers/order"
	"takeout/internal/app/server/routers"
)

// App HTTP 进程依赖
type App struct {
	Engine *gin.Engine
}

// InitializeApp 组装基础设施、服务与路由
func InitializeApp(cfg *config.Config, log logger.Logger) (*App, func(), error) {
	infra, cleanup, err := bootstrap.NewInfra(cfg, log)
	if err != nil {
		return nil, nil, err
	}

	services := bootstrap.NewServices(cfg, infra, log)

	if cfg.App.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := routers.SetupRoutes(&routers.Handlers{
		Cart:   cart.NewCartHandler(services.Cart),
		Order:  order.NewOrderHandler(services.Checkout, services.Payment, services.Order),
		Admin:  admin.NewAdminHandler(services.Order, services.NotifyModule, log),
		Notify: notify.NewNotifyHandler(services.Payment, services.JobModule, log),
	}, log)

	return &App{Engine: engine}, cleanup, nil
}
