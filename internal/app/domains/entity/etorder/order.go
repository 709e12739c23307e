package etorder

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order 订单聚合根（领域对象）
type Order struct {
	ID            int64
	Number        string // 订单号（下单时生成，全局唯一）
	Status        Status
	PayStatus     PayStatus
	UserID        int64
	AddressBookID int64
	PayMethod     int
	Amount        decimal.Decimal // 下单时计算，之后不再变更
	Remark        string

	// 地址快照
	Consignee string
	Phone     string
	Address   string

	CancelReason    string
	RejectionReason string

	OrderTime    time.Time
	CheckoutTime *time.Time // 支付时间
	CancelTime   *time.Time
	DeliveryTime *time.Time

	Lines []*Line
}

// Line 订单明细（下单时购物车的快照）
type Line struct {
	ID         int64
	OrderID    int64
	Name       string
	Image      string
	DishID     *int64
	SetmealID  *int64
	DishFlavor string
	Quantity   int
	UnitPrice  decimal.Decimal
}

// Subtotal 单价 × 数量
func (l *Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// SumAmount 订单金额 = Σ(单价 × 数量)
func SumAmount(lines []*Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// OlderThan 下单时间是否早于 now - grace
func (o *Order) OlderThan(now time.Time, grace time.Duration) bool {
	return o.OrderTime.Before(now.Add(-grace))
}

// IsPaid 是否已支付（含已退款）
func (o *Order) IsPaid() bool {
	return o.PayStatus != PayStatusUnpaid
}
