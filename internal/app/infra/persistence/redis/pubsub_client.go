package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// PubSubClient Redis Pub/Sub 客户端封装
type PubSubClient struct {
	rdb *redis.Client
}

// NewClient 创建 Redis 客户端，支持密码认证
func NewClient(addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return rdb, nil
}

// NewPubSubClient 基于已有连接创建 Pub/Sub 客户端
func NewPubSubClient(rdb *redis.Client) *PubSubClient {
	return &PubSubClient{rdb: rdb}
}

// Publish 向指定 channel 发布消息，返回收到消息的订阅者数量
func (c *PubSubClient) Publish(ctx context.Context, channel string, message string) (int64, error) {
	return c.rdb.Publish(ctx, channel, message).Result()
}

// Subscribe 订阅 channel，消息逐条交给 onMessage，直到 ctx 取消
// 订阅建立后才返回 ready 信号，便于调用方确认不会丢失之后的消息
func (c *PubSubClient) Subscribe(ctx context.Context, channel string, ready func(), onMessage func(payload string)) error {
	sub := c.rdb.Subscribe(ctx, channel)
	defer sub.Close()

	// 等待订阅确认
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s failed: %w", channel, err)
	}
	if ready != nil {
		ready()
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			onMessage(msg.Payload)
		}
	}
}
