package request

import (
	"time"

	"takeout/internal/app/domains/entity/etorder"
	"takeout/internal/app/domains/entity/etprimitive"
	"takeout/internal/app/domains/repo/rporder"
)

// SubmitOrderRequest 用户下单
type SubmitOrderRequest struct {
	AddressBookID int64  `json:"address_book_id" binding:"required,min=1" example:"1"`
	Remark        string `json:"remark" binding:"max=100" example:"no chili"`
}

// PaymentRequest 用户支付
type PaymentRequest struct {
	OrderNumber string `json:"order_number" binding:"required" example:"2026101609301501000"`
}

// RejectionRequest 商家拒单
type RejectionRequest struct {
	ID              int64  `json:"id" binding:"required,min=1"`
	RejectionReason string `json:"rejection_reason" binding:"required,max=255"`
}

// CancelRequest 商家取消
type CancelRequest struct {
	ID           int64  `json:"id" binding:"required,min=1"`
	CancelReason string `json:"cancel_reason" binding:"required,max=255"`
}

// OrderIDRequest 接单 / 派送 / 完成
type OrderIDRequest struct {
	ID int64 `json:"id" binding:"required,min=1"`
}

// PageQuery 分页查询参数
type PageQuery struct {
	Page     int  `form:"page" binding:"omitempty,min=1"`
	PageSize int  `form:"page_size" binding:"omitempty,min=1,max=100"`
	Status   *int `form:"status" binding:"omitempty,min=1,max=6"`
}

// Pagination 转换为分页参数
func (q *PageQuery) Pagination() etprimitive.Pagination {
	return etprimitive.Pagination{Page: q.Page, PageSize: q.PageSize}.Normalize()
}

// OrderStatus 状态过滤条件，未指定返回 nil
func (q *PageQuery) OrderStatus() *etorder.Status {
	if q.Status == nil {
		return nil
	}
	s := etorder.Status(*q.Status)
	return &s
}

// ConditionSearchQuery 商家端条件搜索参数
type ConditionSearchQuery struct {
	PageQuery
	Number    string    `form:"number"`
	Phone     string    `form:"phone"`
	BeginTime time.Time `form:"begin_time" time_format:"2006-01-02 15:04:05"`
	EndTime   time.Time `form:"end_time" time_format:"2006-01-02 15:04:05"`
}

// ToCriteria 转换为仓储搜索条件
func (q *ConditionSearchQuery) ToCriteria() *rporder.SearchCriteria {
	c := &rporder.SearchCriteria{
		Number: q.Number,
		Phone:  q.Phone,
		Status: q.OrderStatus(),
	}
	if !q.BeginTime.IsZero() {
		begin := q.BeginTime
		c.BeginTime = &begin
	}
	if !q.EndTime.IsZero() {
		end := q.EndTime
		c.EndTime = &end
	}
	return c
}
