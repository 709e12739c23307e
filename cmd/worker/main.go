package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"takeout/internal/app/bootstrap"
	"takeout/internal/app/config"
	"takeout/internal/app/pkg/logger"
	"takeout/internal/app/worker"
	"takeout/internal/app/worker/jobs"
)

var (
	configPath = flag.String("config", "config/config.yaml", "配置文件路径")
)

func main() {
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Config validation failed: %v", err)
	}

	// 2. 初始化 Logger
	appLogger, err := logger.NewZapLogger(cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer appLogger.Sync()

	appLogger.Info("Worker starting", "app", cfg.App.Name, "env", cfg.App.Env)

	// 3. 初始化基础设施与服务
	infra, cleanup, err := bootstrap.NewInfra(cfg, appLogger)
	if err != nil {
		log.Fatalf("Failed to init infra: %v", err)
	}
	defer cleanup()

	services := bootstrap.NewServices(cfg, infra, appLogger)

	// 4. 创建 Manager
	mgr, err := worker.NewManagerInstance(cfg.Workers, worker.NewLmstfySource(infra.Lmstfy), &jobs.Deps{
		Payments:       services.Payment,
		Orders:         services.Order,
		PaymentTimeout: cfg.Sweeper.PaymentTimeout,
	}, appLogger)
	if err != nil {
		log.Fatalf("Failed to create manager: %v", err)
	}

	// 5. 启动 Manager 与超时扫描（goroutine）
	go func() {
		if err := mgr.Start(); err != nil {
			appLogger.Error("Manager start failed", "error", err)
		}
	}()

	sweeper := bootstrap.NewSweeper(cfg.Sweeper, services, appLogger)
	go sweeper.Start(context.Background())

	appLogger.Info("Worker started. Press Ctrl+C to shutdown.")

	// 6. 等待退出信号
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	appLogger.Info("Received signal, shutting down worker", "signal", sig.String())

	// 7. 先停扫描，再优雅关闭 Manager
	sweeper.Stop()
	mgr.Shutdown()

	appLogger.Info("Worker exited gracefully")
}
