package lmstfy

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bitleak/lmstfy/client"
)

// Client Lmstfy 客户端封装
type Client struct {
	cli       *client.LmstfyClient
	namespace string
}

// Message 队列消息结构
type Message struct {
	JobID string
	Queue string
	Data  json.RawMessage
}

// PublishOptions 发布参数
type PublishOptions struct {
	TTL   time.Duration // 消息存活时间，0 表示不过期
	Tries uint16        // 最多投递次数
	Delay time.Duration // 延迟投递
}

// DefaultPublishOptions 立即投递，存活 1 小时，最多 3 次
var DefaultPublishOptions = PublishOptions{TTL: time.Hour, Tries: 3}

// NewClient 创建 Lmstfy 客户端
func NewClient(host string, port int, namespace, token string) *Client {
	return &Client{
		cli:       client.NewLmstfyClient(host, port, namespace, token),
		namespace: namespace,
	}
}

// Publish 发布 JSON 消息到队列，返回 job ID
func (c *Client) Publish(ctx context.Context, queue string, data interface{}, opts PublishOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("marshal job failed: %w", err)
	}

	tries := opts.Tries
	if tries == 0 {
		tries = 1
	}

	jobID, pubErr := c.cli.Publish(queue, payload, seconds(opts.TTL), tries, seconds(opts.Delay))
	if pubErr != nil {
		return "", fmt.Errorf("lmstfy publish failed: %w", pubErr)
	}
	return jobID, nil
}

// Consume 从队列中消费消息（阻塞至多 timeout），超时未拉到消息返回 nil, nil
// ttr 内未 ACK 的消息会被重新投递
func (c *Client) Consume(ctx context.Context, queue string, timeout, ttr time.Duration) (*Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	job, consumeErr := c.cli.Consume(queue, seconds(ttr), seconds(timeout))
	if consumeErr != nil {
		return nil, fmt.Errorf("lmstfy consume failed: %w", consumeErr)
	}
	if job == nil {
		return nil, nil
	}

	return &Message{
		JobID: job.ID,
		Queue: job.Queue,
		Data:  json.RawMessage(job.Data),
	}, nil
}

// Ack 确认消息已处理（删除消息）
func (c *Client) Ack(ctx context.Context, queue, jobID string) error {
	if ackErr := c.cli.Ack(queue, jobID); ackErr != nil {
		return fmt.Errorf("lmstfy ack failed: %w", ackErr)
	}
	return nil
}

func seconds(d time.Duration) uint32 {
	if d <= 0 {
		return 0
	}
	s := d / time.Second
	if d%time.Second != 0 {
		s++
	}
	return uint32(s)
}
