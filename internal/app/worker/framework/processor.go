package framework

import (
	"context"
	"sync"
	"time"

	"takeout/internal/app/pkg/logger"
)

// Processor 处理器：接收消息，调用业务处理函数，并根据结果 ACK
type Processor struct {
	cfg        *ProcessorConfig
	queue      string
	source     MessageSource
	proc       Proc // 业务处理函数（注入的 GetProcess）
	logger     logger.Logger
	shutdownCh chan struct{} // 专门的退出信号通道
	wg         sync.WaitGroup
}

// NewProcessor 创建处理器
func NewProcessor(cfg *ProcessorConfig, queue string, source MessageSource, proc Proc, log logger.Logger) *Processor {
	c := cfg.withDefaults()
	return &Processor{
		cfg:        &c,
		queue:      queue,
		source:     source,
		proc:       proc,
		logger:     log,
		shutdownCh: make(chan struct{}),
	}
}

// Start 启动处理协程
func (p *Processor) Start(ctx context.Context, inputChan <-chan *Message) {
	p.logger.InfoContext(ctx, "Processor starting", "queue", p.queue, "workers", p.cfg.Concurrency)

	for i := 0; i < p.cfg.Concurrency; i++ {
		p.wg.Add(1)
		go p.loop(ctx, i, inputChan)
	}
}

// SignalShutdown 通知 Processor 准备退出（进入 Drain 模式）
func (p *Processor) SignalShutdown() {
	p.logger.Info("Processor shutdown signal received", "queue", p.queue)
	close(p.shutdownCh)
}

// Wait 等待所有处理协程退出
func (p *Processor) Wait() {
	p.wg.Wait()
	p.logger.Info("Processor workers exited", "queue", p.queue)
}

func (p *Processor) loop(ctx context.Context, workerID int, inputChan <-chan *Message) {
	defer p.wg.Done()
	ctx = context.WithValue(ctx, logger.WorkerIDKey, workerID)

	for {
		select {
		case msg := <-inputChan:
			p.process(ctx, msg)

		// Drain 模式：处理完剩余消息再退出
		case <-p.shutdownCh:
			count := 0
			for {
				select {
				case msg := <-inputChan:
					p.process(ctx, msg)
					count++
				default:
					p.logger.InfoContext(ctx, "Processor drained", "queue", p.queue, "messages", count)
					return
				}
			}
		}
	}
}

// process 处理单个消息
func (p *Processor) process(ctx context.Context, msg *Message) {
	if msg == nil {
		return
	}
	startTime := time.Now()

	// Drain 阶段父 ctx 可能已取消，处理与 ACK 使用独立的超时 ctx
	procCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.cfg.Timeout)
	defer cancel()

	resp := p.safeProc(procCtx, msg)

	switch resp.Action {
	case JobRespStatusSuccess, JobRespStatusBury:
		if err := p.source.Ack(procCtx, p.queue, msg.ID); err != nil {
			p.logger.ErrorContext(procCtx, "Ack message failed", "job_id", msg.ID, "error", err)
		}
	case JobRespStatusRelease:
		// 不 ACK，TTR 到期后重新投递
	}

	p.logger.InfoContext(procCtx, "Message processed",
		"queue", p.queue,
		"job_id", msg.ID,
		"action", resp.Action.String(),
		"duration", time.Since(startTime).String(),
	)
}

func (p *Processor) safeProc(ctx context.Context, msg *Message) (resp *JobResp) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.ErrorContext(ctx, "Process panic", "job_id", msg.ID, "panic", r)
			resp = &JobResp{Action: JobRespStatusBury}
		}
	}()
	resp = p.proc(ctx, msg)
	if resp == nil {
		resp = &JobResp{Action: JobRespStatusSuccess}
	}
	return resp
}
