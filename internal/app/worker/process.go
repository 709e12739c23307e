package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"takeout/internal/app/pkg/errorutil"
	"takeout/internal/app/pkg/logger"
	"takeout/internal/app/worker/framework"
	"takeout/internal/app/worker/jobs"
)

// GetProcess 返回核心处理函数（注入到 Processor）
func GetProcess(log logger.Logger, deps *jobs.Deps) framework.Proc {
	return func(ctx context.Context, msg *framework.Message) *framework.JobResp {
		startTime := time.Now()

		// 1. 解析 Job
		base := &framework.BaseHandler{}
		if err := base.ParseJob(msg.Data); err != nil {
			log.ErrorContext(ctx, "Parse job failed", "job_id", msg.ID, "error", err)
			return &framework.JobResp{Action: framework.JobRespStatusBury}
		}
		meta := base.GetMeta()
		if meta.RequestID == "" {
			meta.RequestID = uuid.New().String()
			base.SetMeta(meta)
		}

		// 2. 注入 TraceID 到 Context
		ctx = base.WithContext(ctx)

		// 3. 从 HandlerMap 获取 Handler
		factory, ok := HandlerMap[meta.ActionType]
		if !ok {
			log.ErrorContext(ctx, "Handler not found", "job_id", msg.ID)
			return &framework.JobResp{Action: framework.JobRespStatusBury}
		}

		handler, err := factory(ctx, base, deps)
		if err != nil {
			log.ErrorContext(ctx, "Create handler failed", "job_id", msg.ID, "error", err)
			return &framework.JobResp{Action: framework.JobRespStatusBury}
		}

		// 4. 调用 Handler
		data, err := handler.Handle(ctx)
		resp := doJobReport(ctx, data, err, log)

		log.InfoContext(ctx, "Job handled",
			"job_id", msg.ID,
			"id", meta.ID,
			"action", resp.Action.String(),
			"duration", time.Since(startTime).String(),
		)
		return resp
	}
}

// doJobReport 根据处理错误判断 ACK / 重新投递
func doJobReport(ctx context.Context, data []byte, err error, log logger.Logger) *framework.JobResp {
	if err == nil {
		return &framework.JobResp{Action: framework.JobRespStatusSuccess, Data: data}
	}

	if errorutil.IsRetryable(err) {
		log.WarnContext(ctx, "Job failed, waiting for redelivery", "error", err)
		return &framework.JobResp{Action: framework.JobRespStatusRelease, Data: data}
	}

	log.ErrorContext(ctx, "Job failed permanently", "error", fmt.Sprintf("%v", err))
	return &framework.JobResp{Action: framework.JobRespStatusBury, Data: data}
}
