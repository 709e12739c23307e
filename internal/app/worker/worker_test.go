package worker

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
	"takeout/internal/app/config"
	"takeout/internal/app/domains/modules/mdjob"
	"takeout/internal/app/pkg/errorx"
	"takeout/internal/app/pkg/logger"
	"takeout/internal/app/worker/framework"
	"takeout/internal/app/worker/jobs"
)

type fakePayments struct {
	mu        sync.Mutex
	callbacks []*model.PayCallback
	err       error
}

func (f *fakePayments) HandleCallback(_ context.Context, cb *model.PayCallback) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callbacks = append(f.callbacks, cb)
	return f.err
}

type fakeOrders struct {
	mu       sync.Mutex
	canceled []int64
	grace    time.Duration
	err      error
}

func (f *fakeOrders) TimeoutCancel(_ context.Context, orderID int64, grace time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.canceled = append(f.canceled, orderID)
	f.grace = grace
	return f.err
}

func (f *fakeOrders) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.canceled)
}

func jobMessage(t *testing.T, id string, job *model.OrderJob) *framework.Message {
	t.Helper()
	data, err := json.Marshal(job)
	require.NoError(t, err)
	return &framework.Message{ID: id, Queue: "q", Data: data}
}

func TestGetProcessPayCallback(t *testing.T) {
	payments := &fakePayments{}
	proc := GetProcess(logger.NewNopLogger(), &jobs.Deps{Payments: payments})

	cb := &model.PayCallback{OrderNumber: "N1", TradeState: model.TradeStateSuccess}
	resp := proc(context.Background(), jobMessage(t, "j1", mdjob.NewOrderJob(model.ActionPayCallback, 0, "N1", cb)))
	assert.Equal(t, framework.JobRespStatusSuccess, resp.Action)
	require.Len(t, payments.callbacks, 1)
	assert.Equal(t, "N1", payments.callbacks[0].OrderNumber)

	// 缺少回调内容：不可重试
	resp = proc(context.Background(), jobMessage(t, "j2", mdjob.NewOrderJob(model.ActionPayCallback, 0, "N1", nil)))
	assert.Equal(t, framework.JobRespStatusBury, resp.Action)
}

func TestGetProcessRetryClassification(t *testing.T) {
	payments := &fakePayments{}
	proc := GetProcess(logger.NewNopLogger(), &jobs.Deps{Payments: payments})
	msg := jobMessage(t, "j1", mdjob.NewOrderJob(model.ActionPayCallback, 0, "N1",
		&model.PayCallback{OrderNumber: "N1", TradeState: model.TradeStateSuccess}))

	payments.err = errors.New("connection reset")
	assert.Equal(t, framework.JobRespStatusRelease, proc(context.Background(), msg).Action)

	payments.err = fmt.Errorf("confirm paid failed: %w", errorx.ErrInvalidState)
	assert.Equal(t, framework.JobRespStatusBury, proc(context.Background(), msg).Action)
}

func TestGetProcessPaymentTimeout(t *testing.T) {
	orders := &fakeOrders{}
	proc := GetProcess(logger.NewNopLogger(), &jobs.Deps{Orders: orders, PaymentTimeout: 15 * time.Minute})

	resp := proc(context.Background(), jobMessage(t, "j1", mdjob.NewOrderJob(model.ActionPaymentTimeout, 42, "N42", nil)))
	assert.Equal(t, framework.JobRespStatusSuccess, resp.Action)
	assert.Equal(t, []int64{42}, orders.canceled)
	assert.Equal(t, 15*time.Minute, orders.grace)

	resp = proc(context.Background(), jobMessage(t, "j2", mdjob.NewOrderJob(model.ActionPaymentTimeout, 0, "", nil)))
	assert.Equal(t, framework.JobRespStatusBury, resp.Action)
}

func TestGetProcessUnknownOrBrokenJob(t *testing.T) {
	proc := GetProcess(logger.NewNopLogger(), &jobs.Deps{})

	resp := proc(context.Background(), jobMessage(t, "j1", mdjob.NewOrderJob("order_diagnose", 1, "N1", nil)))
	assert.Equal(t, framework.JobRespStatusBury, resp.Action)

	resp = proc(context.Background(), &framework.Message{ID: "j2", Data: []byte("{")})
	assert.Equal(t, framework.JobRespStatusBury, resp.Action)
}

type queueSource struct {
	mu    sync.Mutex
	jobs  map[string][]*framework.Message
	acked []string
}

func (s *queueSource) Consume(ctx context.Context, queue string, timeout, _ time.Duration) (*framework.Message, error) {
	s.mu.Lock()
	if msgs := s.jobs[queue]; len(msgs) > 0 {
		s.jobs[queue] = msgs[1:]
		s.mu.Unlock()
		return msgs[0], nil
	}
	s.mu.Unlock()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(timeout):
		return nil, nil
	}
}

func (s *queueSource) Ack(_ context.Context, _ string, jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.acked = append(s.acked, jobID)
	return nil
}

func (s *queueSource) ackCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.acked)
}

func TestManagerRunsConfiguredWorkers(t *testing.T) {
	source := &queueSource{jobs: map[string][]*framework.Message{
		"payment_timeout": {
			jobMessage(t, "t1", mdjob.NewOrderJob(model.ActionPaymentTimeout, 1, "N1", nil)),
			jobMessage(t, "t2", mdjob.NewOrderJob(model.ActionPaymentTimeout, 2, "N2", nil)),
		},
	}}
	orders := &fakeOrders{}

	cfgs := []config.WorkerConfig{{
		Name:      "payment_timeout_worker",
		QueueName: "payment_timeout",
		Subscriber: config.SubscriberConfig{
			Threads: 1, Timeout: 20 * time.Millisecond, Rate: time.Millisecond, ErrorBackoff: time.Millisecond,
		},
		Processor: config.ProcessorConfig{Threads: 1, BufferSize: 2, Timeout: time.Second},
	}}
	m, err := NewManagerInstance(cfgs, source, &jobs.Deps{Orders: orders, PaymentTimeout: time.Minute}, logger.NewNopLogger())
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		assert.NoError(t, m.Start())
	}()

	assert.Eventually(t, func() bool { return source.ackCount() == 2 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 2, orders.count())

	m.Shutdown()
	m.Shutdown()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("manager did not stop")
	}
}

func TestManagerRequiresWorkers(t *testing.T) {
	_, err := NewManagerInstance(nil, &queueSource{}, &jobs.Deps{}, logger.NewNopLogger())
	assert.Error(t, err)
}
