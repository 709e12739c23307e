package svsweep

import (
	"context"
	"sync"
	"time"

	"go.uber.org/atomic"

	"takeout/internal/app/domains/entity/etorder"
	"takeout/internal/app/pkg/logger"
)

// OrderLister 按状态查询超时订单
type OrderLister interface {
	ListTimedOut(ctx context.Context, status etorder.Status, cutoff time.Time) ([]*etorder.Order, error)
}

// Transitioner 超时迁移（由 svorder.OrderService 实现）
type Transitioner interface {
	TimeoutCancel(ctx context.Context, orderID int64, grace time.Duration) error
	TimeoutComplete(ctx context.Context, orderID int64, grace time.Duration) error
}

// Config 扫描参数
type Config struct {
	Interval        time.Duration
	PaymentTimeout  time.Duration
	DeliveryTimeout time.Duration
	DeliveryHour    int
}

// Result 单次扫描结果
type Result struct {
	Cancelled int
	Completed int
	Failed    int
}

// Sweeper 超时订单扫描
// 每个周期取消超时未支付订单；每天 DeliveryHour 之后首次运行时完成派送超时订单
// 多个实例同时扫描是安全的，状态迁移以 compare-and-set 落库
type Sweeper struct {
	lister  OrderLister
	orders  Transitioner
	cfg     Config
	logger  logger.Logger
	now     func() time.Time
	running *atomic.Bool
	closing *atomic.Bool

	mu              sync.Mutex
	lastDeliveryDay string

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewSweeper 创建扫描器
func NewSweeper(lister OrderLister, orders Transitioner, cfg Config, log logger.Logger) *Sweeper {
	return &Sweeper{
		lister:  lister,
		orders:  orders,
		cfg:     cfg,
		logger:  log,
		now:     time.Now,
		running: atomic.NewBool(false),
		closing: atomic.NewBool(false),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
}

// RunOnce 执行一次扫描
func (s *Sweeper) RunOnce(ctx context.Context) Result {
	now := s.now()
	var res Result

	cancelled, failed, _ := s.sweep(ctx, etorder.StatusPendingPayment, now.Add(-s.cfg.PaymentTimeout), func(o *etorder.Order) error {
		return s.orders.TimeoutCancel(ctx, o.ID, s.cfg.PaymentTimeout)
	})
	res.Cancelled += cancelled
	res.Failed += failed

	if day, ok := s.deliveryDue(now); ok {
		completed, failed, err := s.sweep(ctx, etorder.StatusDeliveryInProgress, now.Add(-s.cfg.DeliveryTimeout), func(o *etorder.Order) error {
			return s.orders.TimeoutComplete(ctx, o.ID, s.cfg.DeliveryTimeout)
		})
		res.Completed += completed
		res.Failed += failed
		// 查询失败时不标记，下个周期重试
		if err == nil {
			s.markDelivered(day)
		}
	}

	if res.Cancelled+res.Completed+res.Failed > 0 {
		s.logger.InfoContext(ctx, "Sweep finished",
			"cancelled", res.Cancelled,
			"completed", res.Completed,
			"failed", res.Failed,
		)
	}
	return res
}

// deliveryDue 今天是否已到派送超时处理时间且尚未处理
func (s *Sweeper) deliveryDue(now time.Time) (string, bool) {
	if now.Hour() < s.cfg.DeliveryHour {
		return "", false
	}
	day := now.Format("2006-01-02")

	s.mu.Lock()
	defer s.mu.Unlock()
	return day, s.lastDeliveryDay != day
}

func (s *Sweeper) markDelivered(day string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastDeliveryDay = day
}

// sweep 逐个处理查询到的订单，单个订单失败只记录日志
// 仅在查询失败时返回 error
func (s *Sweeper) sweep(ctx context.Context, status etorder.Status, cutoff time.Time, fn func(*etorder.Order) error) (done, failed int, err error) {
	orders, err := s.lister.ListTimedOut(ctx, status, cutoff)
	if err != nil {
		s.logger.ErrorContext(ctx, "List timed out orders failed", "status", status, "error", err)
		return 0, 0, err
	}

	for _, o := range orders {
		if ctx.Err() != nil {
			break
		}
		if err := fn(o); err != nil {
			failed++
			s.logger.WarnContext(ctx, "Sweep order failed",
				"order_id", o.ID,
				"status", status,
				"error", err,
			)
			continue
		}
		done++
	}
	return done, failed, nil
}

// Start 按周期扫描直到 Stop，阻塞调用
func (s *Sweeper) Start(ctx context.Context) {
	if !s.running.CAS(false, true) {
		return
	}
	defer close(s.doneCh)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-s.stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	s.logger.InfoContext(ctx, "Sweeper started", "interval", s.cfg.Interval.String())

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		s.RunOnce(ctx)
		select {
		case <-ctx.Done():
			s.logger.InfoContext(context.Background(), "Sweeper stopped")
			return
		case <-ticker.C:
		}
	}
}

// Stop 停止扫描并等待当前一轮结束
func (s *Sweeper) Stop() {
	if !s.closing.CAS(false, true) {
		return
	}
	close(s.stopCh)
	if s.running.Load() {
		<-s.doneCh
	}
}
