package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ShoppingCart 购物车行
type ShoppingCart struct {
	ID         int64           `gorm:"column:id;primaryKey;autoIncrement"`
	UserID     int64           `gorm:"column:user_id;not null;index:idx_cart_user_id"`
	Name       string          `gorm:"column:name;type:varchar(32)"`
	Image      string          `gorm:"column:image;type:varchar(255)"`
	DishID     *int64          `gorm:"column:dish_id"`
	SetmealID  *int64          `gorm:"column:setmeal_id"`
	DishFlavor string          `gorm:"column:dish_flavor;type:varchar(50)"`
	Number     int             `gorm:"column:number;not null;default:1"`
	Amount     decimal.Decimal `gorm:"column:amount;type:decimal(10,2);not null"` // 单价
	CreateTime time.Time       `gorm:"column:create_time"`
}

// TableName 指定表名
func (ShoppingCart) TableName() string {
	return "shopping_cart"
}
