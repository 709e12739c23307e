package rpcart

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"takeout/common/entity"
	"takeout/internal/app/domains/entity/etcart"
	"takeout/internal/app/domains/repo/rpbase"
	"takeout/internal/app/pkg/errorx"
)

// CartRepositoryImpl 购物车仓储实现（MySQL）
type CartRepositoryImpl struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓储实例
func NewCartRepository(db *gorm.DB) CartRepository {
	return &CartRepositoryImpl{db: db}
}

func (r *CartRepositoryImpl) FindLine(ctx context.Context, key etcart.Key) (*etcart.Item, error) {
	query := rpbase.DB(ctx, r.db).Where("user_id = ? AND dish_flavor = ?", key.UserID, key.DishFlavor)
	if key.DishID != nil {
		query = query.Where("dish_id = ?", *key.DishID)
	} else {
		query = query.Where("dish_id IS NULL")
	}
	if key.SetmealID != nil {
		query = query.Where("setmeal_id = ?", *key.SetmealID)
	} else {
		query = query.Where("setmeal_id IS NULL")
	}

	var po entity.ShoppingCart
	if err := query.First(&po).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return toDomainModel(&po), nil
}

func (r *CartRepositoryImpl) GetByID(ctx context.Context, userID, itemID int64) (*etcart.Item, error) {
	var po entity.ShoppingCart
	err := rpbase.DB(ctx, r.db).Where("id = ? AND user_id = ?", itemID, userID).First(&po).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.ErrCartItemNotFound
		}
		return nil, err
	}
	return toDomainModel(&po), nil
}

func (r *CartRepositoryImpl) Insert(ctx context.Context, item *etcart.Item) error {
	po := toGormModel(item)
	if err := rpbase.DB(ctx, r.db).Create(po).Error; err != nil {
		return err
	}
	item.ID = po.ID
	return nil
}

func (r *CartRepositoryImpl) UpdateQuantity(ctx context.Context, itemID int64, quantity int) error {
	return rpbase.DB(ctx, r.db).
		Model(&entity.ShoppingCart{}).
		Where("id = ?", itemID).
		Update("number", quantity).Error
}

func (r *CartRepositoryImpl) ListByUser(ctx context.Context, userID int64) ([]*etcart.Item, error) {
	return r.list(rpbase.DB(ctx, r.db), userID)
}

func (r *CartRepositoryImpl) ListByUserForUpdate(ctx context.Context, userID int64) ([]*etcart.Item, error) {
	return r.list(rpbase.DB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}), userID)
}

func (r *CartRepositoryImpl) list(db *gorm.DB, userID int64) ([]*etcart.Item, error) {
	var pos []entity.ShoppingCart
	if err := db.Where("user_id = ?", userID).Order("create_time, id").Find(&pos).Error; err != nil {
		return nil, err
	}
	items := make([]*etcart.Item, 0, len(pos))
	for i := range pos {
		items = append(items, toDomainModel(&pos[i]))
	}
	return items, nil
}

func (r *CartRepositoryImpl) Delete(ctx context.Context, itemID int64) error {
	return rpbase.DB(ctx, r.db).Delete(&entity.ShoppingCart{}, itemID).Error
}

func (r *CartRepositoryImpl) DeleteByUser(ctx context.Context, userID int64) error {
	return rpbase.DB(ctx, r.db).Where("user_id = ?", userID).Delete(&entity.ShoppingCart{}).Error
}

func toGormModel(item *etcart.Item) *entity.ShoppingCart {
	return &entity.ShoppingCart{
		ID:         item.ID,
		UserID:     item.UserID,
		Name:       item.Name,
		Image:      item.Image,
		DishID:     item.DishID,
		SetmealID:  item.SetmealID,
		DishFlavor: item.DishFlavor,
		Number:     item.Quantity,
		Amount:     item.UnitPrice,
		CreateTime: item.CreateTime,
	}
}

func toDomainModel(po *entity.ShoppingCart) *etcart.Item {
	return &etcart.Item{
		ID:         po.ID,
		UserID:     po.UserID,
		DishID:     po.DishID,
		SetmealID:  po.SetmealID,
		DishFlavor: po.DishFlavor,
		Name:       po.Name,
		Image:      po.Image,
		UnitPrice:  po.Amount,
		Quantity:   po.Number,
		CreateTime: po.CreateTime,
	}
}
