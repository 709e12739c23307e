package svorder

import (
	"context"
	"fmt"
	"strings"
	"time"

	"takeout/common/model"
	"takeout/internal/app/domains/entity/etcart"
	"takeout/internal/app/domains/entity/etorder"
	"takeout/internal/app/domains/entity/etprimitive"
	"takeout/internal/app/domains/modules/mdcart"
	"takeout/internal/app/domains/modules/mdnotify"
	"takeout/internal/app/domains/modules/mdorder"
	"takeout/internal/app/domains/modules/mdpayment"
	"takeout/internal/app/domains/repo/rporder"
	"takeout/internal/app/pkg/errorx"
	"takeout/internal/app/pkg/logger"
)

// OrderService 订单服务，负责订单状态迁移与查询编排
type OrderService struct {
	orderModule  *mdorder.OrderModule
	cartModule   *mdcart.CartModule
	notifyModule *mdnotify.NotifyModule
	gateway      mdpayment.Gateway
	logger       logger.Logger
	now          func() time.Time
}

// NewOrderService 创建订单服务实例
func NewOrderService(
	orderModule *mdorder.OrderModule,
	cartModule *mdcart.CartModule,
	notifyModule *mdnotify.NotifyModule,
	gateway mdpayment.Gateway,
	log logger.Logger,
) *OrderService {
	return &OrderService{
		orderModule:  orderModule,
		cartModule:   cartModule,
		notifyModule: notifyModule,
		gateway:      gateway,
		logger:       log,
		now:          time.Now,
	}
}

// Accept 商家接单
func (s *OrderService) Accept(ctx context.Context, orderID int64) error {
	_, err := s.transition(ctx, orderID, etorder.ActionAccept, "", nil)
	return err
}

// Reject 商家拒单，已支付则退款
func (s *OrderService) Reject(ctx context.Context, orderID int64, reason string) error {
	_, err := s.transition(ctx, orderID, etorder.ActionReject, reason, nil)
	return err
}

// StaffCancel 商家取消订单，已完成的订单返回 errorx.ErrOrderCompleted
func (s *OrderService) StaffCancel(ctx context.Context, orderID int64, reason string) error {
	_, err := s.transition(ctx, orderID, etorder.ActionStaffCancel, reason, nil)
	return err
}

// UserCancel 用户取消订单，仅待付款/待接单可取消
func (s *OrderService) UserCancel(ctx context.Context, userID, orderID int64) error {
	_, err := s.transition(ctx, orderID, etorder.ActionUserCancel, "", ownedBy(userID))
	return err
}

// Dispatch 派送
func (s *OrderService) Dispatch(ctx context.Context, orderID int64) error {
	_, err := s.transition(ctx, orderID, etorder.ActionDispatch, "", nil)
	return err
}

// Deliver 送达完成
func (s *OrderService) Deliver(ctx context.Context, orderID int64) error {
	_, err := s.transition(ctx, orderID, etorder.ActionDeliver, "", nil)
	return err
}

// TimeoutCancel 支付超时取消，订单需早于 grace 之前下单
func (s *OrderService) TimeoutCancel(ctx context.Context, orderID int64, grace time.Duration) error {
	_, err := s.transition(ctx, orderID, etorder.ActionTimeoutCancel, "", olderThan(s.now(), grace))
	return err
}

// TimeoutComplete 派送超时自动完成
func (s *OrderService) TimeoutComplete(ctx context.Context, orderID int64, grace time.Duration) error {
	_, err := s.transition(ctx, orderID, etorder.ActionTimeoutComplete, "", olderThan(s.now(), grace))
	return err
}

// guard 迁移前的附加校验
type guard func(order *etorder.Order) error

func ownedBy(userID int64) guard {
	return func(order *etorder.Order) error {
		if order.UserID != userID {
			return errorx.ErrOrderNotFound
		}
		return nil
	}
}

func olderThan(now time.Time, grace time.Duration) guard {
	return func(order *etorder.Order) error {
		if !order.OlderThan(now, grace) {
			return fmt.Errorf("order %d placed at %s is within %s: %w",
				order.ID, order.OrderTime.Format(time.RFC3339), grace, errorx.ErrInvalidState)
		}
		return nil
	}
}

// transition 在订单锁内：重新读取订单 → 计算迁移 → 按需退款 → compare-and-set 写入
// 持锁期间其他迁移无法改变订单，退款发出后写库不会因并发迁移而失败
// 退款不在任何事务内调用，写库是单条短更新
func (s *OrderService) transition(ctx context.Context, orderID int64, action etorder.Action, reason string, check guard) (*etorder.Order, error) {
	var order *etorder.Order
	err := s.orderModule.Exclusive(ctx, orderID, func(ctx context.Context) error {
		var err error
		order, err = s.apply(ctx, orderID, action, reason, check)
		return err
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *OrderService) apply(ctx context.Context, orderID int64, action etorder.Action, reason string, check guard) (*etorder.Order, error) {
	order, err := s.orderModule.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if check != nil {
		if err := check(order); err != nil {
			return nil, err
		}
	}

	change, err := order.Plan(action, reason, s.now())
	if err != nil {
		return nil, err
	}

	if change.Refund {
		err := s.gateway.Refund(ctx, &mdpayment.RefundRequest{
			OrderNumber:    order.Number,
			RefundNumber:   order.Number,
			Amount:         order.Amount,
			OriginalAmount: order.Amount,
		})
		if err != nil {
			s.logger.ErrorContext(ctx, "Refund failed",
				"order_id", order.ID,
				"action", action,
				"error", err,
			)
			return nil, fmt.Errorf("%w: refund: %v", errorx.ErrGatewayUnavailable, err)
		}
	}

	if err := s.orderModule.ApplyChange(ctx, change); err != nil {
		if change.Refund {
			s.logger.ErrorContext(ctx, "Order write failed after refund",
				"order_id", order.ID,
				"action", action,
				"error", err,
			)
		}
		return nil, err
	}
	order.Apply(change)

	s.logger.InfoContext(ctx, "Order transitioned",
		"order_id", order.ID,
		"action", action,
		"from", change.FromStatus,
		"to", change.ToStatus,
		"refund", change.Refund,
	)
	return order, nil
}

// Repetition 再来一单：把订单明细按原快照加回购物车
func (s *OrderService) Repetition(ctx context.Context, userID, orderID int64) error {
	order, err := s.orderModule.GetOrderWithLines(ctx, orderID)
	if err != nil {
		return err
	}
	if order.UserID != userID {
		return errorx.ErrOrderNotFound
	}

	items := make([]*etcart.Item, 0, len(order.Lines))
	for _, l := range order.Lines {
		items = append(items, &etcart.Item{
			DishID:     l.DishID,
			SetmealID:  l.SetmealID,
			DishFlavor: l.DishFlavor,
			Name:       l.Name,
			Image:      l.Image,
			UnitPrice:  l.UnitPrice,
			Quantity:   l.Quantity,
		})
	}
	return s.cartModule.AddItems(ctx, userID, items)
}

// Reminder 用户催单
func (s *OrderService) Reminder(ctx context.Context, userID, orderID int64) error {
	order, err := s.orderModule.GetUserOrder(ctx, orderID, userID)
	if err != nil {
		return err
	}
	s.notifyModule.Broadcast(ctx, model.NotificationUrgentReminder, order.ID, mdnotify.OrderContent(order.Number))
	return nil
}

// Detail 订单详情（含明细），userID > 0 时限定为该用户的订单
func (s *OrderService) Detail(ctx context.Context, userID, orderID int64) (*etorder.Order, error) {
	order, err := s.orderModule.GetOrderWithLines(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if userID > 0 && order.UserID != userID {
		return nil, errorx.ErrOrderNotFound
	}
	return order, nil
}

// UserHistory 用户历史订单
func (s *OrderService) UserHistory(ctx context.Context, userID int64, status *etorder.Status, page etprimitive.Pagination) (*etprimitive.PageResult[*etorder.Order], error) {
	return s.orderModule.PageUserOrders(ctx, userID, status, page)
}

// SearchItem 商家端搜索结果
type SearchItem struct {
	Order  *etorder.Order
	Dishes string // 菜品摘要，如 "Rice*2;Soup*1;"
}

// ConditionSearch 商家端条件搜索
func (s *OrderService) ConditionSearch(ctx context.Context, criteria *rporder.SearchCriteria, page etprimitive.Pagination) (*etprimitive.PageResult[*SearchItem], error) {
	result, err := s.orderModule.SearchOrders(ctx, criteria, page)
	if err != nil {
		return nil, err
	}

	items := make([]*SearchItem, 0, len(result.Records))
	for _, o := range result.Records {
		items = append(items, &SearchItem{Order: o, Dishes: DishSummary(o.Lines)})
	}
	return &etprimitive.PageResult[*SearchItem]{Total: result.Total, Records: items}, nil
}

// DishSummary 拼接 "名称*数量;"
func DishSummary(lines []*etorder.Line) string {
	var b strings.Builder
	for _, l := range lines {
		fmt.Fprintf(&b, "%s*%d;", l.Name, l.Quantity)
	}
	return b.String()
}

// Statistics 各状态订单数
type Statistics struct {
	ToBeConfirmed      int64
	Confirmed          int64
	DeliveryInProgress int64
}

// Statistics 待接单 / 已接单 / 派送中 订单数量
func (s *OrderService) Statistics(ctx context.Context) (*Statistics, error) {
	counts, err := s.orderModule.CountByStatus(ctx,
		etorder.StatusToBeConfirmed,
		etorder.StatusConfirmed,
		etorder.StatusDeliveryInProgress,
	)
	if err != nil {
		return nil, err
	}
	return &Statistics{
		ToBeConfirmed:      counts[etorder.StatusToBeConfirmed],
		Confirmed:          counts[etorder.StatusConfirmed],
		DeliveryInProgress: counts[etorder.StatusDeliveryInProgress],
	}, nil
}
