package model

// NotificationType 推送消息类型
type NotificationType int

const (
	NotificationNewOrder       NotificationType = 1 // 来单提醒
	NotificationUrgentReminder NotificationType = 2 // 客户催单
)

// Notification 推送给管理端的实时消息
type Notification struct {
	Type    NotificationType `json:"type"`
	OrderID int64            `json:"orderId"`
	Content string           `json:"content"`
}
