package framework

import (
	"context"

	"takeout/internal/app/pkg/logger"
)

func withJobMeta(ctx context.Context, meta *JobMeta) context.Context {
	ctx = logger.WithTraceID(ctx, meta.RequestID)
	return context.WithValue(ctx, logger.ActionTypeKey, meta.ActionType)
}
