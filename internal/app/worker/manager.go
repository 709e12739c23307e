package worker

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/atomic"

	"takeout/internal/app/config"
	"takeout/internal/app/pkg/logger"
	"takeout/internal/app/worker/framework"
	"takeout/internal/app/worker/jobs"
)

// Manager 接口
type Manager interface {
	Start() error
	Shutdown()
}

// ManagerInstance 按配置管理所有队列 Worker
type ManagerInstance struct {
	ctx        context.Context
	workers    []Worker
	closing    *atomic.Bool
	shutdownCh chan struct{}
	wg         sync.WaitGroup
	logger     logger.Logger
}

// NewManagerInstance 创建 Manager，按 cfg 为每个队列创建 Worker
func NewManagerInstance(cfgs []config.WorkerConfig, source framework.MessageSource, deps *jobs.Deps, log logger.Logger) (Manager, error) {
	if len(cfgs) == 0 {
		return nil, fmt.Errorf("no worker configured")
	}

	ctx := context.Background()
	proc := GetProcess(log, deps)

	workers := make([]Worker, 0, len(cfgs))
	for _, c := range cfgs {
		subCfg := &framework.SubscriberConfig{
			QueueName:    c.QueueName,
			Concurrency:  c.Subscriber.Threads,
			Rate:         c.Subscriber.Rate,
			Timeout:      c.Subscriber.Timeout,
			TTR:          c.Subscriber.TTR,
			ErrorBackoff: c.Subscriber.ErrorBackoff,
		}
		procCfg := &framework.ProcessorConfig{
			Concurrency: c.Processor.Threads,
			BufferSize:  c.Processor.BufferSize,
			Timeout:     c.Processor.Timeout,
		}
		workers = append(workers, newQueueWorker(ctx, c.Name, subCfg, procCfg, source, proc, log))
	}

	return &ManagerInstance{
		ctx:        ctx,
		workers:    workers,
		closing:    atomic.NewBool(false),
		shutdownCh: make(chan struct{}),
		logger:     log,
	}, nil
}

// Start 启动所有 Worker，阻塞直到 Shutdown 完成
func (m *ManagerInstance) Start() error {
	for _, w := range m.workers {
		w := w
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			w.Start()
		}()
		m.logger.InfoContext(m.ctx, "Manager started worker", "worker", w.Name(), "queue", w.Queue())
	}

	<-m.shutdownCh
	return nil
}

// Shutdown 优雅退出，可重复调用
func (m *ManagerInstance) Shutdown() {
	if !m.closing.CAS(false, true) {
		return
	}
	m.logger.InfoContext(m.ctx, "Manager closing")

	for _, w := range m.workers {
		w.Shutdown()
	}
	m.wg.Wait()
	close(m.shutdownCh)

	m.logger.InfoContext(m.ctx, "Manager shutdown complete")
}
