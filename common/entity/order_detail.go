package entity

import "github.com/shopspring/decimal"

// OrderDetail 订单明细（下单时的商品快照）
type OrderDetail struct {
	ID         int64           `gorm:"column:id;primaryKey;autoIncrement"`
	OrderID    int64           `gorm:"column:order_id;not null;index:idx_detail_order_id"`
	Name       string          `gorm:"column:name;type:varchar(32)"`
	Image      string          `gorm:"column:image;type:varchar(255)"`
	DishID     *int64          `gorm:"column:dish_id"`
	SetmealID  *int64          `gorm:"column:setmeal_id"`
	DishFlavor string          `gorm:"column:dish_flavor;type:varchar(50)"`
	Number     int             `gorm:"column:number;not null;default:1"`
	Amount     decimal.Decimal `gorm:"column:amount;type:decimal(10,2);not null"` // 单价
}

// TableName 指定表名
func (OrderDetail) TableName() string {
	return "order_detail"
}
