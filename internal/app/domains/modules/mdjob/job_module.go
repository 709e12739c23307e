package mdjob

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"takeout/common/model"
	"takeout/internal/app/domains/entity/etorder"
	"takeout/internal/app/infra/mq/lmstfy"
)

// Publisher 队列发布接口（lmstfy 实现）
type Publisher interface {
	Publish(ctx context.Context, queue string, data interface{}, opts lmstfy.PublishOptions) (string, error)
}

// JobModule 订单异步任务模块
// 职责：
// 1. 构造标准化消息格式（RequestID, ActionType, ID）
// 2. 决定投递队列与延迟
type JobModule struct {
	publisher     Publisher
	timeoutQueue  string
	callbackQueue string
}

// NewJobModule 创建任务模块实例
func NewJobModule(publisher Publisher, timeoutQueue, callbackQueue string) *JobModule {
	return &JobModule{
		publisher:     publisher,
		timeoutQueue:  timeoutQueue,
		callbackQueue: callbackQueue,
	}
}

// PublishPaymentTimeout 下单后投递延迟任务，到期时若仍未支付则取消订单
func (m *JobModule) PublishPaymentTimeout(ctx context.Context, order *etorder.Order, delay time.Duration) (string, error) {
	job := NewOrderJob(model.ActionPaymentTimeout, order.ID, order.Number, nil)

	jobID, err := m.publisher.Publish(ctx, m.timeoutQueue, job, lmstfy.PublishOptions{
		TTL:   delay + time.Hour,
		Tries: 3,
		Delay: delay,
	})
	if err != nil {
		return "", fmt.Errorf("publish payment timeout job failed: %w", err)
	}
	return jobID, nil
}

// PublishPayCallback 将网关回调转入回调队列，由 worker 异步重试确认
func (m *JobModule) PublishPayCallback(ctx context.Context, callback *model.PayCallback) (string, error) {
	job := NewOrderJob(model.ActionPayCallback, 0, callback.OrderNumber, callback)
	if callback.RequestID != "" {
		job.Payload.Data.RequestID = callback.RequestID
	}

	jobID, err := m.publisher.Publish(ctx, m.callbackQueue, job, lmstfy.DefaultPublishOptions)
	if err != nil {
		return "", fmt.Errorf("publish pay callback job failed: %w", err)
	}
	return jobID, nil
}

// NewOrderJob 构造标准化任务消息
func NewOrderJob(action string, orderID int64, orderNumber string, callback *model.PayCallback) *model.OrderJob {
	id := orderNumber
	if id == "" {
		id = strconv.FormatInt(orderID, 10)
	}
	return &model.OrderJob{
		Payload: model.OrderJobPayload{
			Data: model.OrderJobData{
				RequestID:  uuid.New().String(), // 全链路追踪
				ActionType: action,
				ID:         id,
				Data: model.OrderJobBusinessData{
					OrderID:     orderID,
					OrderNumber: orderNumber,
					Callback:    callback,
				},
			},
		},
	}
}
