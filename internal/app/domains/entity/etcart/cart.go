package etcart

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"takeout/internal/app/pkg/errorx"
)

var (
	ErrInvalidUserID = errorx.NewBusinessError(http.StatusBadRequest, "invalid user ID")
	ErrNoCatalogItem = errorx.NewBusinessError(http.StatusBadRequest, "dish_id or setmeal_id is required")
)

// Item 购物车行（数量始终 ≥ 1，减到 0 时删除行）
type Item struct {
	ID         int64
	UserID     int64
	DishID     *int64
	SetmealID  *int64
	DishFlavor string
	Name       string
	Image      string
	UnitPrice  decimal.Decimal
	Quantity   int
	CreateTime time.Time
}

// Key 合并购物车行的依据：同一用户下 (菜品|套餐, 口味) 相同即为同一行
type Key struct {
	UserID     int64
	DishID     *int64
	SetmealID  *int64
	DishFlavor string
}

// Validate 校验加购参数
func (k Key) Validate() error {
	if k.UserID <= 0 {
		return ErrInvalidUserID
	}
	if k.DishID == nil && k.SetmealID == nil {
		return ErrNoCatalogItem
	}
	return nil
}

// IsDish 加购的是菜品还是套餐
func (k Key) IsDish() bool {
	return k.DishID != nil
}

// NewItem 以目录快照创建数量为 1 的购物车行
func NewItem(key Key, name, image string, price decimal.Decimal, now time.Time) *Item {
	return &Item{
		UserID:     key.UserID,
		DishID:     key.DishID,
		SetmealID:  key.SetmealID,
		DishFlavor: key.DishFlavor,
		Name:       name,
		Image:      image,
		UnitPrice:  price,
		Quantity:   1,
		CreateTime: now,
	}
}
