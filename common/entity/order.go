package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Order 订单持久化模型
type Order struct {
	ID            int64  `gorm:"column:id;primaryKey;autoIncrement"`
	Number        string `gorm:"column:number;type:varchar(50);not null;uniqueIndex:uk_orders_number"`
	Status        int    `gorm:"column:status;not null;default:1;index:idx_status_order_time"`
	PayStatus     int    `gorm:"column:pay_status;not null;default:0"`
	UserID        int64  `gorm:"column:user_id;not null;index:idx_orders_user_id"`
	AddressBookID int64  `gorm:"column:address_book_id;not null"`
	PayMethod     int    `gorm:"column:pay_method;not null;default:1"`

	Amount decimal.Decimal `gorm:"column:amount;type:decimal(10,2);not null"`
	Remark string          `gorm:"column:remark;type:varchar(100)"`

	// 下单时的地址快照
	Consignee       string         `gorm:"column:consignee;type:varchar(32)"`
	Phone           string         `gorm:"column:phone;type:varchar(11)"`
	Address         string         `gorm:"column:address;type:varchar(255)"`
	AddressSnapshot datatypes.JSON `gorm:"column:address_snapshot;type:json"`

	CancelReason    *string `gorm:"column:cancel_reason;type:varchar(255)"`
	RejectionReason *string `gorm:"column:rejection_reason;type:varchar(255)"`

	OrderTime    time.Time  `gorm:"column:order_time;not null;index:idx_status_order_time"`
	CheckoutTime *time.Time `gorm:"column:checkout_time"`
	CancelTime   *time.Time `gorm:"column:cancel_time"`
	DeliveryTime *time.Time `gorm:"column:delivery_time"`
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
