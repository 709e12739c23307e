package mdcart

import (
	"context"
	"fmt"
	"time"

	"takeout/internal/app/domains/entity/etcart"
	"takeout/internal/app/domains/repo/rpcart"
	"takeout/internal/app/domains/repo/rpcatalog"
	"takeout/internal/app/pkg/errorx"
)

// CartModule 购物车模块
// 同一用户的"查找-合并或插入"在用户锁内执行，避免并发加购产生重复行
type CartModule struct {
	cartRepo    rpcart.CartRepository
	catalogRepo rpcatalog.CatalogRepository
	locker      Locker
	now         func() time.Time
}

// NewCartModule 创建购物车模块
func NewCartModule(cartRepo rpcart.CartRepository, catalogRepo rpcatalog.CatalogRepository, locker Locker) *CartModule {
	return &CartModule{
		cartRepo:    cartRepo,
		catalogRepo: catalogRepo,
		locker:      locker,
		now:         time.Now,
	}
}

// Add 加购一件：已存在同一行则数量 +quantity，否则按目录快照插入
func (m *CartModule) Add(ctx context.Context, key etcart.Key, quantity int) (*etcart.Item, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	if quantity < 1 {
		quantity = 1
	}

	unlock, err := m.locker.Lock(ctx, LockKey(key.UserID))
	if err != nil {
		return nil, fmt.Errorf("lock cart failed: %w", err)
	}
	defer unlock()

	return m.merge(ctx, key, quantity, nil)
}

// AddItems 批量加购（再来一单），每行沿用给定快照
func (m *CartModule) AddItems(ctx context.Context, userID int64, items []*etcart.Item) error {
	unlock, err := m.locker.Lock(ctx, LockKey(userID))
	if err != nil {
		return fmt.Errorf("lock cart failed: %w", err)
	}
	defer unlock()

	for _, item := range items {
		key := etcart.Key{
			UserID:     userID,
			DishID:     item.DishID,
			SetmealID:  item.SetmealID,
			DishFlavor: item.DishFlavor,
		}
		if err := key.Validate(); err != nil {
			return err
		}
		if _, err := m.merge(ctx, key, item.Quantity, item); err != nil {
			return err
		}
	}
	return nil
}

// merge 调用方需持有用户锁
func (m *CartModule) merge(ctx context.Context, key etcart.Key, quantity int, snapshot *etcart.Item) (*etcart.Item, error) {
	existing, err := m.cartRepo.FindLine(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("find cart line failed: %w", err)
	}
	if existing != nil {
		existing.Quantity += quantity
		if err := m.cartRepo.UpdateQuantity(ctx, existing.ID, existing.Quantity); err != nil {
			return nil, fmt.Errorf("update cart quantity failed: %w", err)
		}
		return existing, nil
	}

	var item *etcart.Item
	if snapshot != nil {
		item = etcart.NewItem(key, snapshot.Name, snapshot.Image, snapshot.UnitPrice, m.now())
	} else {
		catalogItem, err := m.lookup(ctx, key)
		if err != nil {
			return nil, err
		}
		item = etcart.NewItem(key, catalogItem.Name, catalogItem.Image, catalogItem.Price, m.now())
	}
	item.Quantity = quantity

	if err := m.cartRepo.Insert(ctx, item); err != nil {
		return nil, fmt.Errorf("insert cart line failed: %w", err)
	}
	return item, nil
}

func (m *CartModule) lookup(ctx context.Context, key etcart.Key) (*rpcatalog.Item, error) {
	if key.IsDish() {
		return m.catalogRepo.GetDish(ctx, *key.DishID)
	}
	return m.catalogRepo.GetSetmeal(ctx, *key.SetmealID)
}

// SubOne 数量减一，减到 0 时删除该行；返回 nil 表示行已删除
func (m *CartModule) SubOne(ctx context.Context, key etcart.Key) (*etcart.Item, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}

	unlock, err := m.locker.Lock(ctx, LockKey(key.UserID))
	if err != nil {
		return nil, fmt.Errorf("lock cart failed: %w", err)
	}
	defer unlock()

	existing, err := m.cartRepo.FindLine(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("find cart line failed: %w", err)
	}
	if existing == nil {
		return nil, errorx.ErrCartItemNotFound
	}

	if existing.Quantity <= 1 {
		if err := m.cartRepo.Delete(ctx, existing.ID); err != nil {
			return nil, fmt.Errorf("delete cart line failed: %w", err)
		}
		return nil, nil
	}

	existing.Quantity--
	if err := m.cartRepo.UpdateQuantity(ctx, existing.ID, existing.Quantity); err != nil {
		return nil, fmt.Errorf("update cart quantity failed: %w", err)
	}
	return existing, nil
}

// List 查询用户购物车
func (m *CartModule) List(ctx context.Context, userID int64) ([]*etcart.Item, error) {
	return m.cartRepo.ListByUser(ctx, userID)
}

// Clean 清空用户购物车
func (m *CartModule) Clean(ctx context.Context, userID int64) error {
	return m.cartRepo.DeleteByUser(ctx, userID)
}

// ListForCheckout 结算事务内加行锁读取购物车
func (m *CartModule) ListForCheckout(ctx context.Context, userID int64) ([]*etcart.Item, error) {
	return m.cartRepo.ListByUserForUpdate(ctx, userID)
}
