package admin

import (
	"context"
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"takeout/common/model"
)

// Notifications 来单 / 催单实时推送（SSE）
// GET /api/v1/admin/notifications
func (h *AdminHandler) Notifications(c *gin.Context) {
	ctx := c.Request.Context()
	events := make(chan *model.Notification, 16)
	done := make(chan error, 1)

	go func() {
		done <- h.notifyModule.Stream(ctx, nil, func(n *model.Notification) {
			select {
			case events <- n:
			case <-ctx.Done():
			}
		})
	}()

	c.Stream(func(w io.Writer) bool {
		select {
		case n := <-events:
			c.SSEvent("notification", n)
			return true
		case err := <-done:
			if err != nil && !errors.Is(err, context.Canceled) {
				h.logger.WarnContext(ctx, "Notification stream closed", "error", err)
			}
			return false
		case <-ctx.Done():
			return false
		}
	})
}
