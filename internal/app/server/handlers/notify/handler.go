package notify

import (
	"github.com/gin-gonic/gin"

	"takeout/common/model"
	"takeout/internal/app/domains/modules/mdjob"
	"takeout/internal/app/domains/services/svpayment"
	"takeout/internal/app/pkg/errorutil"
	"takeout/internal/app/pkg/ginx"
	"takeout/internal/app/pkg/logger"
)

// NotifyHandler 支付网关回调入口
type NotifyHandler struct {
	paymentService *svpayment.PaymentService
	jobModule      *mdjob.JobModule
	logger         logger.Logger
}

// NewNotifyHandler jobModule 可为 nil，此时处理失败直接返回错误由网关重试
func NewNotifyHandler(paymentService *svpayment.PaymentService, jobModule *mdjob.JobModule, log logger.Logger) *NotifyHandler {
	return &NotifyHandler{
		paymentService: paymentService,
		jobModule:      jobModule,
		logger:         log,
	}
}

// PaySuccess 网关支付结果通知
// POST /api/v1/notify/paySuccess
func (h *NotifyHandler) PaySuccess(c *gin.Context) {
	var callback model.PayCallback
	if err := c.ShouldBindJSON(&callback); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}
	if callback.OrderNumber == "" {
		ginx.BadRequest(c, "out_trade_no is required")
		return
	}

	ctx := c.Request.Context()
	err := h.paymentService.HandleCallback(ctx, &callback)
	if err == nil {
		ginx.Success(c, nil)
		return
	}

	// 临时故障转入回调队列异步重试，网关视为已送达
	if h.jobModule != nil && errorutil.IsRetryable(err) {
		jobID, pubErr := h.jobModule.PublishPayCallback(ctx, &callback)
		if pubErr == nil {
			h.logger.WarnContext(ctx, "Pay callback deferred to queue",
				"order_number", callback.OrderNumber,
				"job_id", jobID,
				"error", err,
			)
			ginx.Success(c, nil)
			return
		}
		h.logger.ErrorContext(ctx, "Failed to defer pay callback",
			"order_number", callback.OrderNumber,
			"error", pubErr,
		)
	}
	ginx.Fail(c, err)
}
