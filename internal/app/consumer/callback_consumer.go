package consumer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"takeout/common/model"
	"takeout/internal/app/infra/mq/lmstfy"
	"takeout/internal/app/pkg/errorutil"
	"takeout/internal/app/pkg/logger"
	"takeout/internal/app/worker/framework"
)

// Queue 回调队列接口（lmstfy 实现）
type Queue interface {
	Consume(ctx context.Context, queue string, timeout, ttr time.Duration) (*lmstfy.Message, error)
	Ack(ctx context.Context, queue, jobID string) error
}

// CallbackHandler 支付回调处理（由 svpayment.PaymentService 实现）
type CallbackHandler interface {
	HandleCallback(ctx context.Context, callback *model.PayCallback) error
}

// CallbackConsumer 支付回调消费者（单循环）
// 职责：
// 1. 从 lmstfy 队列消费回调消息
// 2. 解析消息并调用 PaymentService 确认支付
// 3. 处理成功或不可重试时确认消息（ACK）
type CallbackConsumer struct {
	queue     Queue
	handler   CallbackHandler
	queueName string
	logger    logger.Logger

	timeout      time.Duration
	ttr          time.Duration
	pollInterval time.Duration
}

// Config 消费者配置
type Config struct {
	QueueName    string
	Timeout      time.Duration // 拉取消息超时
	TTR          time.Duration // Time-To-Run
	PollInterval time.Duration // 出错后的等待间隔
}

// NewCallbackConsumer 创建回调消费者实例
func NewCallbackConsumer(queue Queue, handler CallbackHandler, cfg *Config, log logger.Logger) *CallbackConsumer {
	return &CallbackConsumer{
		queue:        queue,
		handler:      handler,
		queueName:    cfg.QueueName,
		timeout:      cfg.Timeout,
		ttr:          cfg.TTR,
		pollInterval: cfg.PollInterval,
		logger:       log,
	}
}

// Start 启动消费循环，ctx 结束时返回
func (c *CallbackConsumer) Start(ctx context.Context) error {
	c.logger.Info("Callback consumer started",
		"queue", c.queueName,
		"timeout", c.timeout.String(),
		"ttr", c.ttr.String(),
	)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("Callback consumer stopped")
			return ctx.Err()
		default:
		}

		if err := c.consumeOne(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				continue
			}
			c.logger.Error("Failed to consume message", "error", err)
			select {
			case <-ctx.Done():
			case <-time.After(c.pollInterval):
			}
		}
	}
}

// consumeOne 消费一条消息
func (c *CallbackConsumer) consumeOne(ctx context.Context) error {
	msg, err := c.queue.Consume(ctx, c.queueName, c.timeout, c.ttr)
	if err != nil {
		return fmt.Errorf("consume message failed: %w", err)
	}
	if msg == nil {
		return nil
	}

	c.logger.Info("Received callback message", "job_id", msg.JobID)

	callback, traceID, err := parseMessage(msg.Data)
	if err != nil {
		// 解析失败，直接 ACK（避免死循环）
		c.logger.Error("Failed to parse message", "job_id", msg.JobID, "error", err)
		_ = c.queue.Ack(ctx, c.queueName, msg.JobID)
		return err
	}
	ctx = logger.WithTraceID(ctx, traceID)

	if err := c.handler.HandleCallback(ctx, callback); err != nil {
		if errorutil.IsRetryable(err) {
			// 不 ACK，TTR 到期后重新投递
			return err
		}
		c.logger.ErrorContext(ctx, "Dropping callback",
			"job_id", msg.JobID,
			"order_number", callback.OrderNumber,
			"error", err,
		)
	}

	if err := c.queue.Ack(ctx, c.queueName, msg.JobID); err != nil {
		return fmt.Errorf("ack message failed: %w", err)
	}

	c.logger.InfoContext(ctx, "Callback message processed",
		"job_id", msg.JobID,
		"order_number", callback.OrderNumber,
	)
	return nil
}

// parseMessage 解析标准任务消息中的回调内容
func parseMessage(data []byte) (*model.PayCallback, string, error) {
	var base framework.BaseHandler
	if err := base.ParseJob(data); err != nil {
		return nil, "", err
	}
	if base.GetMeta().ActionType != model.ActionPayCallback {
		return nil, "", fmt.Errorf("unexpected action_type %q", base.GetMeta().ActionType)
	}

	callback := base.GetPayload().Callback
	if callback == nil {
		return nil, "", fmt.Errorf("callback is required")
	}
	if callback.OrderNumber == "" {
		callback.OrderNumber = base.GetPayload().OrderNumber
	}
	if callback.OrderNumber == "" {
		return nil, "", fmt.Errorf("out_trade_no is required")
	}
	if callback.TradeState == "" {
		return nil, "", fmt.Errorf("trade_state is required")
	}
	return callback, base.GetMeta().RequestID, nil
}
