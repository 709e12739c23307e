package mdorder

import (
	"context"
	"fmt"
	"time"

	"takeout/internal/app/domains/entity/etorder"
	"takeout/internal/app/domains/entity/etprimitive"
	"takeout/internal/app/domains/repo/rporder"
	"takeout/internal/app/pkg/errorx"
)

// Locker 按 key 互斥（Redis SET NX PX 或进程内实现）
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

// LockKey 订单锁的 key
func LockKey(orderID int64) string {
	return fmt.Sprintf("takeout:order:lock:%d", orderID)
}

// OrderModule 订单模块（数据编排层）
type OrderModule struct {
	orderRepo rporder.OrderRepository
	locker    Locker
}

// NewOrderModule 创建订单模块
func NewOrderModule(orderRepo rporder.OrderRepository, locker Locker) *OrderModule {
	return &OrderModule{orderRepo: orderRepo, locker: locker}
}

// Exclusive 在订单锁内执行 fn
// 同一订单的"读取-网关调用-写入"互斥；fn 内不开启数据库事务
func (m *OrderModule) Exclusive(ctx context.Context, orderID int64, fn func(ctx context.Context) error) error {
	unlock, err := m.locker.Lock(ctx, LockKey(orderID))
	if err != nil {
		return fmt.Errorf("lock order %d failed: %w", orderID, err)
	}
	defer unlock()
	return fn(ctx)
}

// CreateOrder 插入订单及明细
func (m *OrderModule) CreateOrder(ctx context.Context, order *etorder.Order) error {
	return m.orderRepo.Create(ctx, order)
}

// GetOrder 查询订单（不含明细）
func (m *OrderModule) GetOrder(ctx context.Context, orderID int64) (*etorder.Order, error) {
	return m.orderRepo.GetByID(ctx, orderID)
}

// GetOrderByNumber 根据订单号查询
func (m *OrderModule) GetOrderByNumber(ctx context.Context, number string) (*etorder.Order, error) {
	return m.orderRepo.GetByNumber(ctx, number)
}

// GetUserOrderByNumber 根据订单号查询，订单不属于该用户时视为不存在
func (m *OrderModule) GetUserOrderByNumber(ctx context.Context, number string, userID int64) (*etorder.Order, error) {
	return m.orderRepo.GetByNumberAndUser(ctx, number, userID)
}

// GetUserOrder 查询属于该用户的订单
func (m *OrderModule) GetUserOrder(ctx context.Context, orderID, userID int64) (*etorder.Order, error) {
	order, err := m.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, errorx.ErrOrderNotFound
	}
	return order, nil
}

// GetOrderWithLines 查询订单及明细
func (m *OrderModule) GetOrderWithLines(ctx context.Context, orderID int64) (*etorder.Order, error) {
	order, err := m.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Lines, err = m.orderRepo.ListLines(ctx, orderID); err != nil {
		return nil, fmt.Errorf("list order lines failed: %w", err)
	}
	return order, nil
}

// ApplyChange 以 compare-and-set 写入迁移结果
// 订单已被其他请求改变时返回 errorx.ErrInvalidState
func (m *OrderModule) ApplyChange(ctx context.Context, change *etorder.Change) error {
	ok, err := m.orderRepo.UpdateIfStatus(ctx, change)
	if err != nil {
		return fmt.Errorf("update order status failed: %w", err)
	}
	if !ok {
		return fmt.Errorf("%s: order %d is no longer %s/%s: %w",
			change.Action, change.OrderID, change.FromStatus, change.FromPayStatus, errorx.ErrInvalidState)
	}
	return nil
}

// ListTimedOut 查询某状态下下单时间早于 cutoff 的订单
func (m *OrderModule) ListTimedOut(ctx context.Context, status etorder.Status, cutoff time.Time) ([]*etorder.Order, error) {
	return m.orderRepo.ListByStatusOlderThan(ctx, status, cutoff)
}

// PageUserOrders 用户历史订单（含明细）
func (m *OrderModule) PageUserOrders(ctx context.Context, userID int64, status *etorder.Status, page etprimitive.Pagination) (*etprimitive.PageResult[*etorder.Order], error) {
	result, err := m.orderRepo.PageByUser(ctx, userID, status, page)
	if err != nil {
		return nil, err
	}
	if err := m.attachLines(ctx, result.Records); err != nil {
		return nil, err
	}
	return result, nil
}

// SearchOrders 商家端条件搜索（含明细）
func (m *OrderModule) SearchOrders(ctx context.Context, criteria *rporder.SearchCriteria, page etprimitive.Pagination) (*etprimitive.PageResult[*etorder.Order], error) {
	result, err := m.orderRepo.Search(ctx, criteria, page)
	if err != nil {
		return nil, err
	}
	if err := m.attachLines(ctx, result.Records); err != nil {
		return nil, err
	}
	return result, nil
}

// CountByStatus 按状态统计
func (m *OrderModule) CountByStatus(ctx context.Context, statuses ...etorder.Status) (map[etorder.Status]int64, error) {
	return m.orderRepo.CountByStatus(ctx, statuses...)
}

func (m *OrderModule) attachLines(ctx context.Context, orders []*etorder.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	linesByOrder, err := m.orderRepo.ListLinesByOrderIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("list order lines failed: %w", err)
	}
	for _, o := range orders {
		o.Lines = linesByOrder[o.ID]
	}
	return nil
}
