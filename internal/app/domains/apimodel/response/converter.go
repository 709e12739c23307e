package response

import (
	"takeout/internal/app/domains/entity/etcart"
	"takeout/internal/app/domains/entity/etorder"
	"takeout/internal/app/domains/services/svcheckout"
	"takeout/internal/app/domains/services/svorder"
	"takeout/internal/app/domains/services/svpayment"
)

// FromCartItems 购物车行转换为响应 DTO
func FromCartItems(items []*etcart.Item) []*CartItemResponse {
	resp := make([]*CartItemResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, FromCartItem(item))
	}
	return resp
}

func FromCartItem(item *etcart.Item) *CartItemResponse {
	return &CartItemResponse{
		ID:         item.ID,
		DishID:     item.DishID,
		SetmealID:  item.SetmealID,
		DishFlavor: item.DishFlavor,
		Name:       item.Name,
		Image:      item.Image,
		Amount:     item.UnitPrice,
		Number:     item.Quantity,
		CreateTime: item.CreateTime,
	}
}

func FromSubmitResult(r *svcheckout.SubmitResult) *SubmitOrderResponse {
	return &SubmitOrderResponse{
		ID:          r.OrderID,
		OrderNumber: r.OrderNumber,
		OrderAmount: r.Amount,
		OrderTime:   r.OrderTime,
	}
}

func FromPayResult(r *svpayment.PayResult) *PaymentResponse {
	return &PaymentResponse{
		OrderNumber: r.OrderNumber,
		Paid:        r.AlreadyPaid,
		PrepayToken: r.PrepayToken,
	}
}

// FromOrderEntity 从领域对象转换为响应 DTO（含已加载的明细）
func FromOrderEntity(order *etorder.Order) *OrderResponse {
	resp := &OrderResponse{
		ID:              order.ID,
		Number:          order.Number,
		Status:          int(order.Status),
		StatusText:      order.Status.String(),
		PayStatus:       int(order.PayStatus),
		UserID:          order.UserID,
		AddressBookID:   order.AddressBookID,
		PayMethod:       order.PayMethod,
		Amount:          order.Amount,
		Remark:          order.Remark,
		Consignee:       order.Consignee,
		Phone:           order.Phone,
		Address:         order.Address,
		CancelReason:    order.CancelReason,
		RejectionReason: order.RejectionReason,
		OrderTime:       order.OrderTime,
		CheckoutTime:    order.CheckoutTime,
		CancelTime:      order.CancelTime,
		DeliveryTime:    order.DeliveryTime,
	}

	if len(order.Lines) > 0 {
		resp.OrderDetails = make([]*OrderLineResponse, 0, len(order.Lines))
		for _, l := range order.Lines {
			resp.OrderDetails = append(resp.OrderDetails, &OrderLineResponse{
				ID:         l.ID,
				Name:       l.Name,
				Image:      l.Image,
				DishID:     l.DishID,
				SetmealID:  l.SetmealID,
				DishFlavor: l.DishFlavor,
				Number:     l.Quantity,
				Amount:     l.UnitPrice,
			})
		}
	}
	return resp
}

func FromOrderEntities(orders []*etorder.Order) []*OrderResponse {
	resp := make([]*OrderResponse, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, FromOrderEntity(o))
	}
	return resp
}

// FromSearchItems 商家端搜索结果：不返回明细，只返回菜品摘要
func FromSearchItems(items []*svorder.SearchItem) []*OrderResponse {
	resp := make([]*OrderResponse, 0, len(items))
	for _, item := range items {
		o := FromOrderEntity(item.Order)
		o.OrderDetails = nil
		o.OrderDishes = item.Dishes
		resp = append(resp, o)
	}
	return resp
}

func FromStatistics(s *svorder.Statistics) *StatisticsResponse {
	return &StatisticsResponse{
		ToBeConfirmed:      s.ToBeConfirmed,
		Confirmed:          s.Confirmed,
		DeliveryInProgress: s.DeliveryInProgress,
	}
}
