package kafka

import (
	"context"
	"encoding/json"
	"time"

	"atelier-go/pkg/logger"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// TaskHandler 处理投递任务的回调函数
type TaskHandler func(task *DeliveryTask) error

// ResultHandler 处理投递结果的回调函数
type ResultHandler func(result *DeliveryResult) error

func newReader(brokers []string, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: time.Second,
		StartOffset:    kafka.LastOffset,
	})
}

// StartDeliveryTaskConsumer 启动投递任务消费者（阻塞，需在 goroutine 中运行）
// ctx 取消后会自动停止
func StartDeliveryTaskConsumer(ctx context.Context, brokers []string, topic, groupID string, handler TaskHandler) {
	reader := newReader(brokers, topic, groupID)

	defer func() {
		if err := reader.Close(); err != nil {
			logger.Error("Failed to close kafka consumer", zap.Error(err))
		}
		logger.Info("Kafka delivery task consumer stopped")
	}()

	logger.Info("Kafka delivery task consumer started",
		zap.String("topic", topic),
		zap.String("group", groupID),
	)

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error("Failed to read kafka message", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		var task DeliveryTask
		if err := json.Unmarshal(msg.Value, &task); err != nil {
			logger.Error("Failed to unmarshal delivery task",
				zap.Error(err),
				zap.ByteString("value", msg.Value),
			)
			continue
		}

		if err := handler(&task); err != nil {
			logger.Error("Failed to handle delivery task",
				zap.Int64("drop_id", task.DropID),
				zap.Int64("subscriber_id", task.SubscriberID),
				zap.Error(err),
			)
		}
	}
}

// StartDeliveryResultConsumer 启动投递结果消费者（阻塞，需在 goroutine 中运行）
// API 进程用它回收结果并推进快讯状态
func StartDeliveryResultConsumer(ctx context.Context, brokers []string, topic, groupID string, handler ResultHandler) {
	reader := newReader(brokers, topic, groupID)

	defer func() {
		if err := reader.Close(); err != nil {
			logger.Error("Failed to close kafka consumer", zap.Error(err))
		}
		logger.Info("Kafka delivery result consumer stopped")
	}()

	logger.Info("Kafka delivery result consumer started",
		zap.String("topic", topic),
		zap.String("group", groupID),
	)

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error("Failed to read kafka message", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		var result DeliveryResult
		if err := json.Unmarshal(msg.Value, &result); err != nil {
			logger.Error("Failed to unmarshal delivery result",
				zap.Error(err),
				zap.ByteString("value", msg.Value),
			)
			continue
		}

		logger.Debug("Received delivery result",
			zap.Int64("drop_id", result.DropID),
			zap.String("status", result.Status),
		)

		if err := handler(&result); err != nil {
			logger.Error("Failed to handle delivery result",
				zap.Int64("drop_id", result.DropID),
				zap.Error(err),
			)
		}
	}
}
