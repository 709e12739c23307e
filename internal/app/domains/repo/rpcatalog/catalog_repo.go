package rpcatalog

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"takeout/common/entity"
	"takeout/internal/app/domains/repo/rpbase"
	"takeout/internal/app/pkg/errorx"
)

// Item 菜品或套餐的加购快照
type Item struct {
	ID    int64
	Name  string
	Image string
	Price decimal.Decimal
}

// CatalogRepository 菜品/套餐仓储接口（只读）
type CatalogRepository interface {
	GetDish(ctx context.Context, dishID int64) (*Item, error)
	GetSetmeal(ctx context.Context, setmealID int64) (*Item, error)
}

// CatalogRepositoryImpl 菜品/套餐仓储实现（MySQL）
type CatalogRepositoryImpl struct {
	db *gorm.DB
}

// NewCatalogRepository 创建目录仓储实例
func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &CatalogRepositoryImpl{db: db}
}

func (r *CatalogRepositoryImpl) GetDish(ctx context.Context, dishID int64) (*Item, error) {
	var po entity.Dish
	if err := rpbase.DB(ctx, r.db).First(&po, dishID).Error; err != nil {
		return nil, notFound(err)
	}
	return &Item{ID: po.ID, Name: po.Name, Image: po.Image, Price: po.Price}, nil
}

func (r *CatalogRepositoryImpl) GetSetmeal(ctx context.Context, setmealID int64) (*Item, error) {
	var po entity.Setmeal
	if err := rpbase.DB(ctx, r.db).First(&po, setmealID).Error; err != nil {
		return nil, notFound(err)
	}
	return &Item{ID: po.ID, Name: po.Name, Image: po.Image, Price: po.Price}, nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errorx.ErrCatalogItemNotFound
	}
	return err
}
