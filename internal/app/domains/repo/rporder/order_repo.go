package rporder

import (
	"context"
	"time"

	"takeout/internal/app/domains/entity/etorder"
	"takeout/internal/app/domains/entity/etprimitive"
)

// OrderRepository 订单仓储接口
type OrderRepository interface {
	// Create 插入订单及明细，回填 ID
	Create(ctx context.Context, order *etorder.Order) error

	// GetByID 查询订单（不含明细），不存在返回 errorx.ErrOrderNotFound
	GetByID(ctx context.Context, orderID int64) (*etorder.Order, error)

	// GetByNumber 根据订单号查询
	GetByNumber(ctx context.Context, number string) (*etorder.Order, error)

	// GetByNumberAndUser 根据订单号查询，限定下单用户
	GetByNumberAndUser(ctx context.Context, number string, userID int64) (*etorder.Order, error)

	// ListLines 查询订单明细
	ListLines(ctx context.Context, orderID int64) ([]*etorder.Line, error)

	// ListLinesByOrderIDs 批量查询订单明细，按订单ID分组
	ListLinesByOrderIDs(ctx context.Context, orderIDs []int64) (map[int64][]*etorder.Line, error)

	// UpdateIfStatus 以 (id, status, pay_status) 为条件写入迁移结果
	// 返回 false 表示订单状态已被其他请求修改
	UpdateIfStatus(ctx context.Context, change *etorder.Change) (bool, error)

	// ListByStatusOlderThan 查询指定状态且下单时间早于 cutoff 的订单
	ListByStatusOlderThan(ctx context.Context, status etorder.Status, cutoff time.Time) ([]*etorder.Order, error)

	// PageByUser 用户历史订单，status 为 nil 时不过滤
	PageByUser(ctx context.Context, userID int64, status *etorder.Status, page etprimitive.Pagination) (*etprimitive.PageResult[*etorder.Order], error)

	// Search 商家端条件搜索
	Search(ctx context.Context, criteria *SearchCriteria, page etprimitive.Pagination) (*etprimitive.PageResult[*etorder.Order], error)

	// CountByStatus 按状态统计订单数
	CountByStatus(ctx context.Context, statuses ...etorder.Status) (map[etorder.Status]int64, error)
}

// SearchCriteria 商家端订单搜索条件，零值字段不参与过滤
type SearchCriteria struct {
	Number    string
	Phone     string
	Status    *etorder.Status
	UserID    int64
	BeginTime *time.Time
	EndTime   *time.Time
}
