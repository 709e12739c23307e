package response

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItemResponse 购物车行
type CartItemResponse struct {
	ID         int64           `json:"id"`
	DishID     *int64          `json:"dish_id,omitempty"`
	SetmealID  *int64          `json:"setmeal_id,omitempty"`
	DishFlavor string          `json:"dish_flavor,omitempty"`
	Name       string          `json:"name"`
	Image      string          `json:"image,omitempty"`
	Amount     decimal.Decimal `json:"amount"` // 单价
	Number     int             `json:"number"`
	CreateTime time.Time       `json:"create_time"`
}
