package entity

import "github.com/shopspring/decimal"

// Dish 菜品（只读，由后台管理维护）
type Dish struct {
	ID     int64           `gorm:"column:id;primaryKey;autoIncrement"`
	Name   string          `gorm:"column:name;type:varchar(32);not null"`
	Image  string          `gorm:"column:image;type:varchar(255)"`
	Price  decimal.Decimal `gorm:"column:price;type:decimal(10,2)"`
	Status int             `gorm:"column:status"`
}

// TableName 指定表名
func (Dish) TableName() string {
	return "dish"
}

// Setmeal 套餐（只读，由后台管理维护）
type Setmeal struct {
	ID     int64           `gorm:"column:id;primaryKey;autoIncrement"`
	Name   string          `gorm:"column:name;type:varchar(32);not null"`
	Image  string          `gorm:"column:image;type:varchar(255)"`
	Price  decimal.Decimal `gorm:"column:price;type:decimal(10,2)"`
	Status int             `gorm:"column:status"`
}

// TableName 指定表名
func (Setmeal) TableName() string {
	return "setmeal"
}
