package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"takeout/common/model"
	"takeout/internal/app/domains/modules/mdjob"
	"takeout/internal/app/infra/mq/lmstfy"
	"takeout/internal/app/pkg/errorx"
	"takeout/internal/app/pkg/logger"
)

type memoryQueue struct {
	mu    sync.Mutex
	msgs  []*lmstfy.Message
	acked []string
}

func (q *memoryQueue) Consume(ctx context.Context, _ string, timeout, _ time.Duration) (*lmstfy.Message, error) {
	q.mu.Lock()
	if len(q.msgs) > 0 {
		msg := q.msgs[0]
		q.msgs = q.msgs[1:]
		q.mu.Unlock()
		return msg, nil
	}
	q.mu.Unlock()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(timeout):
		return nil, nil
	}
}

func (q *memoryQueue) Ack(_ context.Context, _ string, jobID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.acked = append(q.acked, jobID)
	return nil
}

type handlerFunc func(context.Context, *model.PayCallback) error

func (f handlerFunc) HandleCallback(ctx context.Context, cb *model.PayCallback) error {
	return f(ctx, cb)
}

func message(t *testing.T, id string, job *model.OrderJob) *lmstfy.Message {
	t.Helper()
	data, err := json.Marshal(job)
	require.NoError(t, err)
	return &lmstfy.Message{JobID: id, Queue: "pay_callback", Data: data}
}

func newConsumer(q Queue, h CallbackHandler) *CallbackConsumer {
	return NewCallbackConsumer(q, h, &Config{
		QueueName:    "pay_callback",
		Timeout:      10 * time.Millisecond,
		TTR:          time.Second,
		PollInterval: time.Millisecond,
	}, logger.NewNopLogger())
}

func paid(number string) *model.PayCallback {
	return &model.PayCallback{OrderNumber: number, TradeState: model.TradeStateSuccess}
}

func TestConsumeOneAcksHandledCallback(t *testing.T) {
	q := &memoryQueue{msgs: []*lmstfy.Message{message(t, "j1", mdjob.NewOrderJob(model.ActionPayCallback, 0, "N1", paid("N1")))}}
	var got []string
	c := newConsumer(q, handlerFunc(func(_ context.Context, cb *model.PayCallback) error {
		got = append(got, cb.OrderNumber)
		return nil
	}))

	require.NoError(t, c.consumeOne(context.Background()))
	assert.Equal(t, []string{"N1"}, got)
	assert.Equal(t, []string{"j1"}, q.acked)
}

func TestConsumeOneLeavesRetryableFailure(t *testing.T) {
	q := &memoryQueue{msgs: []*lmstfy.Message{message(t, "j1", mdjob.NewOrderJob(model.ActionPayCallback, 0, "N1", paid("N1")))}}
	c := newConsumer(q, handlerFunc(func(context.Context, *model.PayCallback) error {
		return errors.New("database is locked")
	}))

	assert.Error(t, c.consumeOne(context.Background()))
	assert.Empty(t, q.acked)
}

func TestConsumeOneAcksPermanentFailure(t *testing.T) {
	q := &memoryQueue{msgs: []*lmstfy.Message{message(t, "j1", mdjob.NewOrderJob(model.ActionPayCallback, 0, "N1", paid("N1")))}}
	c := newConsumer(q, handlerFunc(func(context.Context, *model.PayCallback) error {
		return fmt.Errorf("confirm paid failed: %w", errorx.ErrOrderNotFound)
	}))

	require.NoError(t, c.consumeOne(context.Background()))
	assert.Equal(t, []string{"j1"}, q.acked)
}

func TestConsumeOneAcksMalformedMessage(t *testing.T) {
	q := &memoryQueue{msgs: []*lmstfy.Message{
		{JobID: "bad", Data: []byte("{")},
		message(t, "nocb", mdjob.NewOrderJob(model.ActionPayCallback, 0, "N1", nil)),
		message(t, "other", mdjob.NewOrderJob(model.ActionPaymentTimeout, 1, "N1", nil)),
	}}
	c := newConsumer(q, handlerFunc(func(context.Context, *model.PayCallback) error {
		t.Error("handler must not be called")
		return nil
	}))

	for i := 0; i < 3; i++ {
		assert.Error(t, c.consumeOne(context.Background()))
	}
	assert.Equal(t, []string{"bad", "nocb", "other"}, q.acked)
}

func TestStartStopsOnCancel(t *testing.T) {
	q := &memoryQueue{msgs: []*lmstfy.Message{message(t, "j1", mdjob.NewOrderJob(model.ActionPayCallback, 0, "N1", paid("N1")))}}
	handled := make(chan string, 1)
	c := newConsumer(q, handlerFunc(func(_ context.Context, cb *model.PayCallback) error {
		handled <- cb.OrderNumber
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx) }()

	select {
	case n := <-handled:
		assert.Equal(t, "N1", n)
	case <-time.After(2 * time.Second):
		t.Fatal("callback not handled")
	}

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not stop")
	}
}
