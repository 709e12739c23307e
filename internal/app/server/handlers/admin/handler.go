package admin

import (
	"takeout/internal/app/domains/modules/mdnotify"
	"takeout/internal/app/domains/services/svorder"
	"takeout/internal/app/pkg/logger"
)

// AdminHandler 管理端（商家）订单 HTTP 处理器
type AdminHandler struct {
	orderService *svorder.OrderService
	notifyModule *mdnotify.NotifyModule
	logger       logger.Logger
}

// NewAdminHandler 创建管理端处理器实例
func NewAdminHandler(orderService *svorder.OrderService, notifyModule *mdnotify.NotifyModule, log logger.Logger) *AdminHandler {
	return &AdminHandler{
		orderService: orderService,
		notifyModule: notifyModule,
		logger:       log,
	}
}
