package errorutil

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"takeout/internal/app/pkg/errorx"
)

func TestIsRetryable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"invalid state", fmt.Errorf("confirm: %w", errorx.ErrInvalidState), false},
		{"order not found", errorx.ErrOrderNotFound, false},
		{"order completed", errorx.ErrOrderCompleted, false},
		{"gateway", errorx.ErrGatewayUnavailable, true},
		{"db", errors.New("driver: bad connection"), true},
		{"explicit non retriable", NonRetriable("bad payload"), false},
		{"explicit retriable", Retriable("try later"), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsRetryable(tc.err))
		})
	}
}

func TestWrapKeepsCause(t *testing.T) {
	err := fmt.Errorf("timeout cancel: %w", errorx.ErrInvalidState)
	wrapped := Wrap(err)
	assert.ErrorIs(t, wrapped, errorx.ErrInvalidState)
	assert.False(t, wrapped.Retryable)
}
