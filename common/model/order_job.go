package model

// OrderJob 订单异步任务消息（标准化）
// 用于 apiserver → worker 的消息传递（lmstfy）
type OrderJob struct {
	Payload OrderJobPayload `json:"payload"`
}

// OrderJobPayload Job 负载
type OrderJobPayload struct {
	Data OrderJobData `json:"data"`
}

// OrderJobData Job 数据层
type OrderJobData struct {
	RequestID  string `json:"request_id"`  // 请求 ID（全链路追踪）
	ActionType string `json:"action_type"` // 动作类型（路由键）
	ID         string `json:"id"`          // 业务 ID（订单号）

	Data OrderJobBusinessData `json:"data"`
}

// OrderJobBusinessData 订单任务业务数据
type OrderJobBusinessData struct {
	OrderID     int64        `json:"order_id,omitempty"`
	OrderNumber string       `json:"order_number"`
	Callback    *PayCallback `json:"callback,omitempty"` // action_type=pay_callback 时携带
}

// 动作类型
const (
	ActionPayCallback    = "pay_callback"
	ActionPaymentTimeout = "payment_timeout"
)
