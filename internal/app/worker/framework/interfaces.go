package framework

import (
	"context"
	"time"
)

// MessageSource 消息源接口（适配不同 MQ）
type MessageSource interface {
	// Consume 消费消息（阻塞，直到拉取到消息或超时），超时返回 nil, nil
	Consume(ctx context.Context, queue string, timeout, ttr time.Duration) (*Message, error)

	// Ack 确认消息（删除消息）
	Ack(ctx context.Context, queue, jobID string) error
}

// Proc 业务处理函数（由 worker.GetProcess 注入 Processor）
type Proc func(ctx context.Context, msg *Message) *JobResp

// ProcessorFunc 处理函数类型
type ProcessorFunc func(ctx context.Context) error

// BusinessHandler 业务处理器接口
// 返回的 error 决定消息的去向：nil 确认，可重试错误等待重新投递，其余确认并丢弃
type BusinessHandler interface {
	Handle(ctx context.Context) ([]byte, error)
}
