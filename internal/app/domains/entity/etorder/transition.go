package etorder

import (
	"fmt"
	"time"

	"takeout/internal/app/pkg/errorx"
)

// Action 订单操作
type Action string

const (
	ActionConfirmPaid     Action = "confirm_paid"
	ActionAccept          Action = "accept"
	ActionReject          Action = "reject"
	ActionStaffCancel     Action = "staff_cancel"
	ActionUserCancel      Action = "user_cancel"
	ActionDispatch        Action = "dispatch"
	ActionDeliver         Action = "deliver"
	ActionTimeoutCancel   Action = "timeout_cancel"
	ActionTimeoutComplete Action = "timeout_complete"
)

// 固定取消原因
const (
	ReasonUserCancelled  = "user cancelled"
	ReasonPaymentTimeout = "payment timeout"
)

// rule 单个操作的前置状态与目标状态
type rule struct {
	from []Status
	to   Status
}

// transitions 状态迁移表，所有操作的前置条件都以具名状态列出
var transitions = map[Action]rule{
	ActionConfirmPaid: {from: []Status{StatusPendingPayment}, to: StatusToBeConfirmed},
	ActionAccept:      {from: []Status{StatusToBeConfirmed}, to: StatusConfirmed},
	ActionReject:      {from: []Status{StatusToBeConfirmed}, to: StatusCancelled},
	ActionStaffCancel: {
		from: []Status{StatusPendingPayment, StatusToBeConfirmed, StatusConfirmed, StatusDeliveryInProgress},
		to:   StatusCancelled,
	},
	ActionUserCancel:      {from: []Status{StatusPendingPayment, StatusToBeConfirmed}, to: StatusCancelled},
	ActionDispatch:        {from: []Status{StatusConfirmed}, to: StatusDeliveryInProgress},
	ActionDeliver:         {from: []Status{StatusDeliveryInProgress}, to: StatusCompleted},
	ActionTimeoutCancel:   {from: []Status{StatusPendingPayment}, to: StatusCancelled},
	ActionTimeoutComplete: {from: []Status{StatusDeliveryInProgress}, to: StatusCompleted},
}

// Change 一次状态迁移的计划
// 持久化时以 (ID, FromStatus, FromPayStatus) 做 compare-and-set
type Change struct {
	OrderID       int64
	Action        Action
	FromStatus    Status
	FromPayStatus PayStatus
	ToStatus      Status
	ToPayStatus   PayStatus

	// Refund 为 true 时需要在写库前调用网关退款
	Refund bool

	CancelReason    *string
	RejectionReason *string
	CheckoutTime    *time.Time
	CancelTime      *time.Time
	DeliveryTime    *time.Time
}

// Allowed 操作在当前状态下是否合法
func Allowed(action Action, status Status) bool {
	r, ok := transitions[action]
	if !ok {
		return false
	}
	for _, s := range r.from {
		if s == status {
			return true
		}
	}
	return false
}

// Plan 根据当前订单状态计算迁移计划
// reason 仅对 Reject / StaffCancel 生效
func (o *Order) Plan(action Action, reason string, now time.Time) (*Change, error) {
	r, ok := transitions[action]
	if !ok {
		return nil, fmt.Errorf("unknown action %q", action)
	}

	if !Allowed(action, o.Status) {
		if action == ActionStaffCancel && o.Status == StatusCompleted {
			return nil, errorx.ErrOrderCompleted
		}
		return nil, fmt.Errorf("%s from %s: %w", action, o.Status, errorx.ErrInvalidState)
	}

	c := &Change{
		OrderID:       o.ID,
		Action:        action,
		FromStatus:    o.Status,
		FromPayStatus: o.PayStatus,
		ToStatus:      r.to,
		ToPayStatus:   o.PayStatus,
	}

	switch action {
	case ActionConfirmPaid:
		if o.PayStatus != PayStatusUnpaid {
			return nil, fmt.Errorf("%s with pay status %s: %w", action, o.PayStatus, errorx.ErrInvalidState)
		}
		c.ToPayStatus = PayStatusPaid
		c.CheckoutTime = &now
	case ActionReject:
		c.RejectionReason = &reason
	case ActionStaffCancel:
		c.CancelReason = &reason
	case ActionUserCancel:
		reason = ReasonUserCancelled
		c.CancelReason = &reason
	case ActionTimeoutCancel:
		reason = ReasonPaymentTimeout
		c.CancelReason = &reason
	case ActionDeliver, ActionTimeoutComplete:
		c.DeliveryTime = &now
	}

	if c.ToStatus == StatusCancelled {
		c.CancelTime = &now
		// 退款只取决于取消时刻的支付状态
		if o.PayStatus == PayStatusPaid {
			c.Refund = true
			c.ToPayStatus = PayStatusRefunded
		}
	}

	return c, nil
}

// Apply 将迁移结果写回内存对象
func (o *Order) Apply(c *Change) {
	o.Status = c.ToStatus
	o.PayStatus = c.ToPayStatus
	if c.CancelReason != nil {
		o.CancelReason = *c.CancelReason
	}
	if c.RejectionReason != nil {
		o.RejectionReason = *c.RejectionReason
	}
	if c.CheckoutTime != nil {
		o.CheckoutTime = c.CheckoutTime
	}
	if c.CancelTime != nil {
		o.CancelTime = c.CancelTime
	}
	if c.DeliveryTime != nil {
		o.DeliveryTime = c.DeliveryTime
	}
}
