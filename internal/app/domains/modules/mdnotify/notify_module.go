package mdnotify

import (
	"context"
	"encoding/json"
	"fmt"

	"takeout/common/model"
	"takeout/internal/app/pkg/logger"
)

// Publisher 发布通道（Redis Pub/Sub 实现）
type Publisher interface {
	Publish(ctx context.Context, channel string, message string) (int64, error)
}

// Subscriber 订阅通道
type Subscriber interface {
	Subscribe(ctx context.Context, channel string, ready func(), onMessage func(payload string)) error
}

// NotifyModule 商家端通知
// 通知是尽力而为的：没有订阅者时消息直接丢弃，发布失败只记录日志
type NotifyModule struct {
	publisher  Publisher
	subscriber Subscriber
	channel    string
	logger     logger.Logger
}

// NewNotifyModule 创建通知模块
func NewNotifyModule(publisher Publisher, subscriber Subscriber, channel string, log logger.Logger) *NotifyModule {
	return &NotifyModule{
		publisher:  publisher,
		subscriber: subscriber,
		channel:    channel,
		logger:     log,
	}
}

// OrderContent 通知正文
func OrderContent(orderNumber string) string {
	return "Order No: " + orderNumber
}

// Broadcast 广播订单事件，不返回错误
func (m *NotifyModule) Broadcast(ctx context.Context, kind model.NotificationType, orderID int64, content string) {
	payload, err := json.Marshal(model.Notification{
		Type:    kind,
		OrderID: orderID,
		Content: content,
	})
	if err != nil {
		m.logger.WarnContext(ctx, "Failed to marshal notification", "order_id", orderID, "error", err)
		return
	}

	receivers, err := m.publisher.Publish(ctx, m.channel, string(payload))
	if err != nil {
		m.logger.WarnContext(ctx, "Failed to publish notification",
			"order_id", orderID,
			"type", kind,
			"error", err,
		)
		return
	}

	m.logger.InfoContext(ctx, "Notification sent",
		"order_id", orderID,
		"type", kind,
		"receivers", receivers,
	)
}

// Stream 订阅商家端通知直到 ctx 结束，每条通知交给 fn
func (m *NotifyModule) Stream(ctx context.Context, ready func(), fn func(*model.Notification)) error {
	if m.subscriber == nil {
		return fmt.Errorf("notification stream is not configured")
	}
	return m.subscriber.Subscribe(ctx, m.channel, ready, func(payload string) {
		var n model.Notification
		if err := json.Unmarshal([]byte(payload), &n); err != nil {
			m.logger.WarnContext(ctx, "Dropping malformed notification", "error", err)
			return
		}
		fn(&n)
	})
}
