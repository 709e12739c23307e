package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"takeout/internal/app/bootstrap"
	"takeout/internal/app/config"
	"takeout/internal/app/consumer"
	"takeout/internal/app/pkg/logger"
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

	// 2. 初始化日志
	appLogger, err := logger.NewZapLogger(cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer appLogger.Sync()
	appLogger.Info("Starting callback consumer...")

	// 3. 初始化基础设施与服务
	infra, cleanup, err := bootstrap.NewInfra(cfg, appLogger)
	if err != nil {
		log.Fatalf("Failed to init infra: %v", err)
	}
	defer cleanup()

	services := bootstrap.NewServices(cfg, infra, appLogger)

	// 4. 初始化 Consumer
	callbackConsumer := consumer.NewCallbackConsumer(
		infra.Lmstfy,
		services.Payment,
		&consumer.Config{
			QueueName:    cfg.Lmstfy.CallbackQueue,
			Timeout:      3 * time.Second,
			TTR:          30 * time.Second,
			PollInterval: 100 * time.Millisecond,
		},
		appLogger,
	)

	// 5. 启动消费循环（优雅退出）
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- callbackConsumer.Start(ctx)
	}()

	select {
	case <-sigChan:
		appLogger.Info("Received shutdown signal, stopping consumer...")
		cancel()
		<-errChan
		appLogger.Info("Consumer stopped gracefully")
	case err := <-errChan:
		if err != nil && !errors.Is(err, context.Canceled) {
			appLogger.Error("Consumer stopped with error", "error", err)
			os.Exit(1)
		}
	}
}
