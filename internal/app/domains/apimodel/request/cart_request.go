package request

import "takeout/internal/app/domains/entity/etcart"

// CartItemRequest 加购 / 减购请求，dish_id 与 setmeal_id 二选一
type CartItemRequest struct {
	DishID     *int64 `json:"dish_id" example:"1"`
	SetmealID  *int64 `json:"setmeal_id"`
	DishFlavor string `json:"dish_flavor" binding:"max=50" example:"mild"`
}

// ToKey 转换为购物车行标识
func (r *CartItemRequest) ToKey(userID int64) etcart.Key {
	return etcart.Key{
		UserID:     userID,
		DishID:     r.DishID,
		SetmealID:  r.SetmealID,
		DishFlavor: r.DishFlavor,
	}
}
