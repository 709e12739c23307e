package worker

import (
	"context"
	"time"

	"takeout/internal/app/infra/mq/lmstfy"
	"takeout/internal/app/worker/framework"
)

// LmstfySource 将 lmstfy 客户端适配为 framework.MessageSource
type LmstfySource struct {
	client *lmstfy.Client
}

// NewLmstfySource 创建消息源
func NewLmstfySource(client *lmstfy.Client) *LmstfySource {
	return &LmstfySource{client: client}
}

func (s *LmstfySource) Consume(ctx context.Context, queue string, timeout, ttr time.Duration) (*framework.Message, error) {
	msg, err := s.client.Consume(ctx, queue, timeout, ttr)
	if err != nil || msg == nil {
		return nil, err
	}
	return &framework.Message{
		ID:    msg.JobID,
		Queue: msg.Queue,
		Data:  msg.Data,
	}, nil
}

func (s *LmstfySource) Ack(ctx context.Context, queue, jobID string) error {
	return s.client.Ack(ctx, queue, jobID)
}
