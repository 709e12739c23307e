package worker

import (
	"context"

	"takeout/common/model"
	"takeout/internal/app/worker/framework"
	"takeout/internal/app/worker/jobs"
)

// HandlerFactory Handler 构造函数类型
type HandlerFactory func(ctx context.Context, base *framework.BaseHandler, deps *jobs.Deps) (framework.BusinessHandler, error)

// HandlerMap 路由表（ActionType → Handler 映射）
var HandlerMap = map[string]HandlerFactory{
	model.ActionPayCallback:    jobs.NewPayCallbackHandler,
	model.ActionPaymentTimeout: jobs.NewPaymentTimeoutHandler,
}
