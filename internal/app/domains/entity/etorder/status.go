package etorder

// Status 订单状态
type Status int

const (
	StatusPendingPayment     Status = 1 // 待付款
	StatusToBeConfirmed      Status = 2 // 待接单
	StatusConfirmed          Status = 3 // 已接单
	StatusDeliveryInProgress Status = 4 // 派送中
	StatusCompleted          Status = 5 // 已完成
	StatusCancelled          Status = 6 // 已取消
)

var statusNames = map[Status]string{
	StatusPendingPayment:     "PendingPayment",
	StatusToBeConfirmed:      "ToBeConfirmed",
	StatusConfirmed:          "Confirmed",
	StatusDeliveryInProgress: "DeliveryInProgress",
	StatusCompleted:          "Completed",
	StatusCancelled:          "Cancelled",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "Unknown"
}

// Valid 是否为已定义状态
func (s Status) Valid() bool {
	_, ok := statusNames[s]
	return ok
}

// Terminal 终态不再迁移
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// PayStatus 支付状态，只允许 Unpaid → Paid → Refunded
type PayStatus int

const (
	PayStatusUnpaid   PayStatus = 0
	PayStatusPaid     PayStatus = 1
	PayStatusRefunded PayStatus = 2
)

func (p PayStatus) String() string {
	switch p {
	case PayStatusUnpaid:
		return "Unpaid"
	case PayStatusPaid:
		return "Paid"
	case PayStatusRefunded:
		return "Refunded"
	default:
		return "Unknown"
	}
}
