package rpcart

import (
	"context"

	"takeout/internal/app/domains/entity/etcart"
)

// CartRepository 购物车仓储接口
type CartRepository interface {
	// FindLine 按合并键查找购物车行，不存在返回 nil, nil
	FindLine(ctx context.Context, key etcart.Key) (*etcart.Item, error)

	// GetByID 查询用户的某一行，不存在返回 errorx.ErrCartItemNotFound
	GetByID(ctx context.Context, userID, itemID int64) (*etcart.Item, error)

	// Insert 插入购物车行，回填 ID
	Insert(ctx context.Context, item *etcart.Item) error

	// UpdateQuantity 修改数量
	UpdateQuantity(ctx context.Context, itemID int64, quantity int) error

	// ListByUser 查询用户购物车
	ListByUser(ctx context.Context, userID int64) ([]*etcart.Item, error)

	// ListByUserForUpdate 加行锁查询（结算事务内使用）
	ListByUserForUpdate(ctx context.Context, userID int64) ([]*etcart.Item, error)

	// Delete 删除一行
	Delete(ctx context.Context, itemID int64) error

	// DeleteByUser 清空用户购物车
	DeleteByUser(ctx context.Context, userID int64) error
}
