package framework

import (
	"context"
	"encoding/json"
	"fmt"

	"takeout/common/model"
	"takeout/internal/app/pkg/errorutil"
)

// BaseHandler 抽象基类
// 提供基础设施方法，不包含业务流程控制
type BaseHandler struct {
	meta    *JobMeta
	rawData []byte
	payload *model.OrderJobBusinessData
	output  interface{}
}

// JobMeta Job 元信息
type JobMeta struct {
	RequestID  string `json:"request_id"`
	ActionType string `json:"action_type"`
	ID         string `json:"id"`
}

// Response 标准响应结构
type Response struct {
	Error     *errorutil.Error `json:"error,omitempty"`
	Result    interface{}      `json:"result,omitempty"`
	Processed bool             `json:"processed"`
	Meta      *JobMeta         `json:"meta,omitempty"`
}

// ParseJob 解析标准订单任务结构
func (b *BaseHandler) ParseJob(rawData []byte) error {
	b.rawData = rawData

	var job model.OrderJob
	if err := json.Unmarshal(rawData, &job); err != nil {
		return b.WrapError(err, "unmarshal job failed")
	}

	data := job.Payload.Data
	if data.ActionType == "" {
		return b.WrapError(nil, "invalid job structure: action_type is empty")
	}

	b.meta = &JobMeta{
		RequestID:  data.RequestID,
		ActionType: data.ActionType,
		ID:         data.ID,
	}
	b.payload = &data.Data
	return nil
}

// WrapResponse 包装标准响应
func (b *BaseHandler) WrapResponse(output interface{}) ([]byte, error) {
	data, err := json.Marshal(&Response{Result: output, Processed: true, Meta: b.meta})
	if err != nil {
		return nil, b.WrapError(err, "marshal response failed")
	}
	return data, nil
}

// WrapErrorResponse 包装错误响应，同时返回原始错误供调用方判断是否重试
func (b *BaseHandler) WrapErrorResponse(err error) ([]byte, error) {
	data, marshalErr := json.Marshal(&Response{Error: errorutil.Wrap(err), Meta: b.meta})
	if marshalErr != nil {
		return nil, err
	}
	return data, err
}

// WrapError 统一包装错误
func (b *BaseHandler) WrapError(err error, msg string) error {
	if err != nil {
		return fmt.Errorf("%s: %w", msg, err)
	}
	return fmt.Errorf("%s", msg)
}

func (b *BaseHandler) GetMeta() *JobMeta {
	return b.meta
}

func (b *BaseHandler) GetRawData() []byte {
	return b.rawData
}

// GetPayload 获取业务数据
func (b *BaseHandler) GetPayload() *model.OrderJobBusinessData {
	return b.payload
}

func (b *BaseHandler) SetOutput(output interface{}) {
	b.output = output
}

func (b *BaseHandler) GetOutput() interface{} {
	return b.output
}

// SetMeta 设置元信息（RequestID 为空时由调用方补齐）
func (b *BaseHandler) SetMeta(meta *JobMeta) {
	b.meta = meta
}

// WithContext 将元信息注入 Context，用于日志链路
func (b *BaseHandler) WithContext(ctx context.Context) context.Context {
	if b.meta == nil {
		return ctx
	}
	return withJobMeta(ctx, b.meta)
}
