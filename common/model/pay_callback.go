package model

// PayCallback 支付网关回调消息（标准化）
// 网关通知入口（HTTP notify）或回调队列消费者收到后统一转换为该结构
type PayCallback struct {
	RequestID     string `json:"request_id"`               // 链路追踪 ID
	OrderNumber   string `json:"out_trade_no"`             // 商户订单号
	TransactionID string `json:"transaction_id,omitempty"` // 网关交易流水号
	TradeState    string `json:"trade_state"`              // SUCCESS / NOTPAY / CLOSED
	PaidAt        int64  `json:"paid_at,omitempty"`        // 支付完成时间（Unix timestamp）
}

// 网关交易状态
const (
	TradeStateSuccess = "SUCCESS"
	TradeStateNotPay  = "NOTPAY"
	TradeStateClosed  = "CLOSED"
)

// IsPaid 回调是否代表支付成功
func (c *PayCallback) IsPaid() bool {
	return c.TradeState == TradeStateSuccess
}
