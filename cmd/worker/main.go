package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"atelier-go/internal/config"
	"atelier-go/internal/delivery"
	"atelier-go/internal/infra/database"
	infraKafka "atelier-go/internal/infra/kafka"
	infraMinio "atelier-go/internal/infra/minio"
	"atelier-go/internal/model"
	"atelier-go/internal/repository"
	"atelier-go/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	if err := logger.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output, cfg.Log.FilePath); err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer logger.Sync()

	if err := database.Init(&cfg.Database); err != nil {
		logger.Fatal("Failed to init database", zap.Error(err))
	}
	defer database.Close()

	// 投递记录表由 Worker 也可能先启动，确保存在
	if err := database.AutoMigrate(&model.Drop{}, &model.DropDelivery{}, &model.Subscriber{}); err != nil {
		logger.Fatal("Failed to auto migrate", zap.Error(err))
	}

	if err := infraMinio.Init(&cfg.MinIO); err != nil {
		logger.Fatal("Failed to init minio", zap.Error(err))
	}

	if err := infraKafka.InitProducer(&cfg.Kafka); err != nil {
		logger.Fatal("Failed to init kafka producer", zap.Error(err))
	}
	defer infraKafka.CloseProducer()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 监听系统信号，优雅退出
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Info("Received signal, shutting down", zap.String("signal", sig.String()))
		cancel()
	}()

	dropRepo := repository.NewDropRepository(database.Get())
	deliverer := delivery.NewDeliverer(dropRepo)

	dispatchTopic := cfg.Kafka.Topics["drop_dispatch"]
	groupID := "atelier-drop-worker"

	logger.Info("Delivery worker started",
		zap.String("topic", dispatchTopic),
		zap.String("group", groupID),
		zap.Strings("brokers", cfg.Kafka.Brokers),
	)

	// 阻塞消费直到 ctx 取消
	infraKafka.StartDeliveryTaskConsumer(ctx, cfg.Kafka.Brokers, dispatchTopic, groupID, deliverer.HandleTask)

	logger.Info("Delivery worker stopped")
}
