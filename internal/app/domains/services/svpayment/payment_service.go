package svpayment

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"takeout/common/model"
	"takeout/internal/app/domains/entity/etorder"
	"takeout/internal/app/domains/modules/mdnotify"
	"takeout/internal/app/domains/modules/mdorder"
	"takeout/internal/app/domains/modules/mdpayment"
	"takeout/internal/app/pkg/errorx"
	"takeout/internal/app/pkg/logger"
)

// PayResult 发起支付结果
type PayResult struct {
	OrderNumber string
	AlreadyPaid bool   // 无需再次扣款，订单已确认支付
	PrepayToken string // 前端拉起支付使用
}

// PaymentService 支付服务
// 职责：
// 1. 发起预支付
// 2. 幂等地应用支付确认（同步返回已支付 / 网关回调 / 队列回调）
// 3. 确认后通知商家端来单
type PaymentService struct {
	orderModule  *mdorder.OrderModule
	notifyModule *mdnotify.NotifyModule
	gateway      mdpayment.Gateway
	logger       logger.Logger
	now          func() time.Time
}

// NewPaymentService 创建支付服务实例
func NewPaymentService(
	orderModule *mdorder.OrderModule,
	notifyModule *mdnotify.NotifyModule,
	gateway mdpayment.Gateway,
	log logger.Logger,
) *PaymentService {
	return &PaymentService{
		orderModule:  orderModule,
		notifyModule: notifyModule,
		gateway:      gateway,
		logger:       log,
		now:          time.Now,
	}
}

// Pay 用户发起支付
// 网关调用在任何数据库事务之外进行
func (s *PaymentService) Pay(ctx context.Context, userID int64, orderNumber string) (*PayResult, error) {
	order, err := s.orderModule.GetUserOrderByNumber(ctx, orderNumber, userID)
	if err != nil {
		return nil, err
	}

	if order.PayStatus == etorder.PayStatusPaid {
		return &PayResult{OrderNumber: order.Number, AlreadyPaid: true}, nil
	}
	if !etorder.Allowed(etorder.ActionConfirmPaid, order.Status) || order.PayStatus != etorder.PayStatusUnpaid {
		return nil, fmt.Errorf("pay order %s in %s/%s: %w", order.Number, order.Status, order.PayStatus, errorx.ErrInvalidState)
	}

	res, err := s.gateway.RequestPrepay(ctx, &mdpayment.PrepayRequest{
		OrderNumber: order.Number,
		Amount:      order.Amount,
		Description: "Takeout order " + order.Number,
		PayerRef:    strconv.FormatInt(userID, 10),
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Prepay request failed", "order_number", order.Number, "error", err)
		return nil, fmt.Errorf("%w: %v", errorx.ErrGatewayUnavailable, err)
	}

	if res.AlreadyPaid {
		if err := s.ConfirmPaid(ctx, order.Number); err != nil {
			return nil, err
		}
		return &PayResult{OrderNumber: order.Number, AlreadyPaid: true}, nil
	}

	return &PayResult{OrderNumber: order.Number, PrepayToken: res.PrepayToken}, nil
}

// ConfirmPaid 确认支付：PendingPayment/Unpaid → ToBeConfirmed/Paid
// 对同一订单至多生效一次，重复确认已支付订单直接返回成功
func (s *PaymentService) ConfirmPaid(ctx context.Context, orderNumber string) error {
	found, err := s.orderModule.GetOrderByNumber(ctx, orderNumber)
	if err != nil {
		return err
	}

	confirmed := false
	err = s.orderModule.Exclusive(ctx, found.ID, func(ctx context.Context) error {
		// 持锁后重新读取，期间订单可能已被确认或取消
		order, err := s.orderModule.GetOrder(ctx, found.ID)
		if err != nil {
			return err
		}
		if order.PayStatus == etorder.PayStatusPaid {
			s.logger.InfoContext(ctx, "Payment already confirmed", "order_number", orderNumber)
			return nil
		}

		change, err := order.Plan(etorder.ActionConfirmPaid, "", s.now())
		if err != nil {
			return err
		}
		if err := s.orderModule.ApplyChange(ctx, change); err != nil {
			return err
		}
		confirmed = true
		return nil
	})
	if err != nil || !confirmed {
		return err
	}

	s.logger.InfoContext(ctx, "Payment confirmed",
		"order_id", found.ID,
		"order_number", found.Number,
	)

	s.notifyModule.Broadcast(ctx, model.NotificationNewOrder, found.ID, mdnotify.OrderContent(found.Number))
	return nil
}

// HandleCallback 处理网关支付回调（HTTP 通知或队列消息）
// 返回 error 表示处理失败（队列消息不 ACK，等待重新投递）
func (s *PaymentService) HandleCallback(ctx context.Context, callback *model.PayCallback) error {
	s.logger.InfoContext(ctx, "Processing pay callback",
		"order_number", callback.OrderNumber,
		"trade_state", callback.TradeState,
		"transaction_id", callback.TransactionID,
	)

	if !callback.IsPaid() {
		// 非成功状态只记录，不改变订单
		s.logger.WarnContext(ctx, "Ignoring unpaid callback",
			"order_number", callback.OrderNumber,
			"trade_state", callback.TradeState,
		)
		return nil
	}

	if err := s.ConfirmPaid(ctx, callback.OrderNumber); err != nil {
		s.logger.ErrorContext(ctx, "Failed to confirm payment",
			"order_number", callback.OrderNumber,
			"error", err,
		)
		return fmt.Errorf("confirm paid failed: %w", err)
	}
	return nil
}
