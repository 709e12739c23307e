package worker

import (
	"context"
	"sync"

	"takeout/internal/app/pkg/logger"
	"takeout/internal/app/worker/framework"
)

// Worker 一个队列一个 Worker
type Worker interface {
	Start()
	Shutdown()
	Name() string
	Queue() string
}

// queueWorker 拉取协程把任务写入 jobs，处理协程从 jobs 读取并 ACK
type queueWorker struct {
	ctx        context.Context
	name       string
	queue      string
	subscriber *framework.Subscriber
	processor  *framework.Processor
	jobs       chan *framework.Message
	stopped    chan struct{}
	stopOnce   sync.Once
	logger     logger.Logger
}

func newQueueWorker(
	ctx context.Context,
	name string,
	subscriberCfg *framework.SubscriberConfig,
	processorCfg *framework.ProcessorConfig,
	source framework.MessageSource,
	proc framework.Proc,
	log logger.Logger,
) *queueWorker {
	return &queueWorker{
		ctx:        ctx,
		name:       name,
		queue:      subscriberCfg.QueueName,
		subscriber: framework.NewSubscriber(subscriberCfg, source, log),
		processor:  framework.NewProcessor(processorCfg, subscriberCfg.QueueName, source, proc, log),
		jobs:       make(chan *framework.Message, processorCfg.BufferSize),
		stopped:    make(chan struct{}),
		logger:     log,
	}
}

// Start 阻塞直到 Shutdown 完成
func (w *queueWorker) Start() {
	w.logger.InfoContext(w.ctx, "Worker started", "worker", w.name, "queue", w.queue)

	// 先起处理端，拉到的任务不会阻塞在空 channel 上
	w.processor.Start(w.ctx, w.jobs)
	w.subscriber.Start(w.ctx, w.jobs)

	<-w.stopped
}

// Shutdown 停止拉取，等处理端把已拉取的任务处理完；重复调用只执行一次
func (w *queueWorker) Shutdown() {
	w.stopOnce.Do(func() {
		w.logger.InfoContext(w.ctx, "Worker closing", "worker", w.name)

		w.subscriber.Stop()
		w.subscriber.Wait()

		w.processor.SignalShutdown()
		w.processor.Wait()

		close(w.stopped)
		w.logger.InfoContext(w.ctx, "Worker shutdown complete", "worker", w.name)
	})
}

func (w *queueWorker) Name() string  { return w.name }
func (w *queueWorker) Queue() string { return w.queue }
