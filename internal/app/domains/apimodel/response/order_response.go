package response

import (
	"time"

	"github.com/shopspring/decimal"
)

// SubmitOrderResponse 下单结果
type SubmitOrderResponse struct {
	ID          int64           `json:"id"`
	OrderNumber string          `json:"order_number"`
	OrderAmount decimal.Decimal `json:"order_amount"`
	OrderTime   time.Time       `json:"order_time"`
}

// PaymentResponse 支付结果
type PaymentResponse struct {
	OrderNumber string `json:"order_number"`
	Paid        bool   `json:"paid"`
	PrepayToken string `json:"prepay_token,omitempty"`
}

// OrderResponse 订单（DTO）
type OrderResponse struct {
	ID              int64           `json:"id"`
	Number          string          `json:"number"`
	Status          int             `json:"status"`
	StatusText      string          `json:"status_text"`
	PayStatus       int             `json:"pay_status"`
	UserID          int64           `json:"user_id"`
	AddressBookID   int64           `json:"address_book_id"`
	PayMethod       int             `json:"pay_method"`
	Amount          decimal.Decimal `json:"amount"`
	Remark          string          `json:"remark,omitempty"`
	Consignee       string          `json:"consignee"`
	Phone           string          `json:"phone"`
	Address         string          `json:"address"`
	CancelReason    string          `json:"cancel_reason,omitempty"`
	RejectionReason string          `json:"rejection_reason,omitempty"`
	OrderTime       time.Time       `json:"order_time"`
	CheckoutTime    *time.Time      `json:"checkout_time,omitempty"`
	CancelTime      *time.Time      `json:"cancel_time,omitempty"`
	DeliveryTime    *time.Time      `json:"delivery_time,omitempty"`

	OrderDetails []*OrderLineResponse `json:"order_details,omitempty"`
	OrderDishes  string               `json:"order_dishes,omitempty"` // 商家端搜索的菜品摘要
}

// OrderLineResponse 订单明细（DTO）
type OrderLineResponse struct {
	ID         int64           `json:"id"`
	Name       string          `json:"name"`
	Image      string          `json:"image,omitempty"`
	DishID     *int64          `json:"dish_id,omitempty"`
	SetmealID  *int64          `json:"setmeal_id,omitempty"`
	DishFlavor string          `json:"dish_flavor,omitempty"`
	Number     int             `json:"number"`
	Amount     decimal.Decimal `json:"amount"` // 单价
}

// PageResponse 分页结果
type PageResponse struct {
	Total   int64       `json:"total"`
	Records interface{} `json:"records"`
}

// StatisticsResponse 各状态订单数量
type StatisticsResponse struct {
	ToBeConfirmed      int64 `json:"to_be_confirmed"`
	Confirmed          int64 `json:"confirmed"`
	DeliveryInProgress int64 `json:"delivery_in_progress"`
}
