// Package bootstrap 组装各进程共用的基础设施与服务
package bootstrap

import (
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"takeout/internal/app/config"
	"takeout/internal/app/domains/modules/mdcart"
	"takeout/internal/app/domains/modules/mdjob"
	"takeout/internal/app/domains/modules/mdnotify"
	"takeout/internal/app/domains/modules/mdorder"
	"takeout/internal/app/domains/modules/mdpayment"
	"takeout/internal/app/domains/repo/rpaddress"
	"takeout/internal/app/domains/repo/rpbase"
	"takeout/internal/app/domains/repo/rpcart"
	"takeout/internal/app/domains/repo/rpcatalog"
	"takeout/internal/app/domains/repo/rporder"
	"takeout/internal/app/domains/services/svcart"
	"takeout/internal/app/domains/services/svcheckout"
	"takeout/internal/app/domains/services/svorder"
	"takeout/internal/app/domains/services/svpayment"
	"takeout/internal/app/domains/services/svsweep"
	"takeout/internal/app/infra/mq/lmstfy"
	"takeout/internal/app/infra/persistence/mysql"
	"takeout/internal/app/infra/persistence/redis"
	"takeout/internal/app/pkg/idgen"
	"takeout/internal/app/pkg/logger"
)

// Infra 外部依赖连接
type Infra struct {
	DB     *gorm.DB
	Redis  *goredis.Client
	Lmstfy *lmstfy.Client
}

// NewInfra 连接 MySQL / Redis / Lmstfy，返回的 cleanup 负责关闭连接
func NewInfra(cfg *config.Config, log logger.Logger) (*Infra, func(), error) {
	db, err := mysql.Open(cfg.MySQL)
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("get sql.DB failed: %w", err)
	}
	if err := mysql.AutoMigrate(db); err != nil {
		_ = sqlDB.Close()
		return nil, nil, fmt.Errorf("auto migrate failed: %w", err)
	}
	log.Info("Database connected")

	rdb, err := redis.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		_ = sqlDB.Close()
		return nil, nil, err
	}
	log.Info("Redis connected", "addr", cfg.Redis.Addr)

	lc := lmstfy.NewClient(cfg.Lmstfy.Host, cfg.Lmstfy.Port, cfg.Lmstfy.Namespace, cfg.Lmstfy.Token)
	log.Info("Lmstfy client initialized", "namespace", cfg.Lmstfy.Namespace)

	cleanup := func() {
		_ = rdb.Close()
		_ = sqlDB.Close()
	}
	return &Infra{DB: db, Redis: rdb, Lmstfy: lc}, cleanup, nil
}

// Services 领域服务集合
type Services struct {
	Cart     *svcart.CartService
	Checkout *svcheckout.CheckoutService
	Payment  *svpayment.PaymentService
	Order    *svorder.OrderService

	OrderModule  *mdorder.OrderModule
	NotifyModule *mdnotify.NotifyModule
	JobModule    *mdjob.JobModule
}

// NewServices 按配置组装仓储、模块与服务
func NewServices(cfg *config.Config, infra *Infra, log logger.Logger) *Services {
	orderRepo := rporder.NewOrderRepository(infra.DB)
	cartModule := mdcart.NewCartModule(
		rpcart.NewCartRepository(infra.DB),
		rpcatalog.NewCatalogRepository(infra.DB),
		redis.NewLocker(infra.Redis, cfg.Redis.CartLockTTL),
	)
	orderModule := mdorder.NewOrderModule(orderRepo, redis.NewLocker(infra.Redis, cfg.Redis.OrderLockTTL))
	pubsub := redis.NewPubSubClient(infra.Redis)
	notifyModule := mdnotify.NewNotifyModule(pubsub, pubsub, cfg.Redis.NotifyChannel, log)
	jobModule := mdjob.NewJobModule(infra.Lmstfy, cfg.Lmstfy.TimeoutQueue, cfg.Lmstfy.CallbackQueue)
	gateway := NewGateway(cfg.Payment, log)

	return &Services{
		Cart: svcart.NewCartService(cartModule, log),
		Checkout: svcheckout.NewCheckoutService(
			rpbase.NewTxManager(infra.DB),
			rpaddress.NewAddressRepository(infra.DB),
			cartModule,
			orderModule,
			jobModule,
			idgen.NewNumberGenerator(cfg.App.MachineID),
			cfg.Sweeper.PaymentTimeout,
			log,
		),
		Payment:      svpayment.NewPaymentService(orderModule, notifyModule, gateway, log),
		Order:        svorder.NewOrderService(orderModule, cartModule, notifyModule, gateway, log),
		OrderModule:  orderModule,
		NotifyModule: notifyModule,
		JobModule:    jobModule,
	}
}

// NewGateway mock 模式下预支付直接返回已支付
func NewGateway(cfg config.PaymentConfig, log logger.Logger) mdpayment.Gateway {
	if cfg.Mode == config.PaymentModeLive {
		return mdpayment.NewLiveGateway(mdpayment.LiveConfig{
			Endpoint:  cfg.Endpoint,
			MchID:     cfg.MchID,
			AppID:     cfg.AppID,
			APIKey:    cfg.APIKey,
			NotifyURL: cfg.NotifyURL,
			Timeout:   cfg.Timeout,
		}, log)
	}
	return mdpayment.NewMockGateway(log)
}

// NewSweeper 超时订单扫描器
func NewSweeper(cfg config.SweeperConfig, s *Services, log logger.Logger) *svsweep.Sweeper {
	return svsweep.NewSweeper(s.OrderModule, s.Order, svsweep.Config{
		Interval:        cfg.Interval,
		PaymentTimeout:  cfg.PaymentTimeout,
		DeliveryTimeout: cfg.DeliveryTimeout,
		DeliveryHour:    cfg.DeliveryHour,
	}, log)
}
