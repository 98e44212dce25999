package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"atelier-go/internal/config"
	"atelier-go/pkg/logger"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

var producer *kafka.Writer

// DeliveryTask 单个订阅者的快讯投递任务
type DeliveryTask struct {
	DropID       int64  `json:"drop_id"`
	SubscriberID int64  `json:"subscriber_id"`
	Email        string `json:"email"`
	Title        string `json:"title"`
}

// DeliveryResult 投递结果消息体
type DeliveryResult struct {
	DropID       int64  `json:"drop_id"`
	SubscriberID int64  `json:"subscriber_id"`
	Status       string `json:"status"` // delivered / failed
	Error        string `json:"error,omitempty"`
}

// InitProducer 初始化 Kafka 生产者
func InitProducer(cfg *config.KafkaConfig) error {
	producer = &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}

	logger.Info("Kafka producer initialized",
		zap.Strings("brokers", cfg.Brokers),
	)

	return nil
}

// SendDeliveryTask 发送投递任务
// 以 drop 为 key，同一快讯的任务落在同一分区，保持下发顺序
func SendDeliveryTask(ctx context.Context, topic string, task *DeliveryTask) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal delivery task: %w", err)
	}

	if err := SendRaw(ctx, topic, fmt.Sprintf("drop-%d", task.DropID), payload); err != nil {
		return fmt.Errorf("failed to send delivery task: %w", err)
	}

	logger.Debug("Delivery task sent",
		zap.Int64("drop_id", task.DropID),
		zap.Int64("subscriber_id", task.SubscriberID),
		zap.String("topic", topic),
	)

	return nil
}

// SendDeliveryResult 发送投递结果
func SendDeliveryResult(ctx context.Context, topic string, result *DeliveryResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal delivery result: %w", err)
	}

	if err := SendRaw(ctx, topic, fmt.Sprintf("drop-%d", result.DropID), payload); err != nil {
		return fmt.Errorf("failed to send delivery result: %w", err)
	}
	return nil
}

// SendRaw 发送原始消息到指定 topic
func SendRaw(ctx context.Context, topic, key string, value []byte) error {
	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
	}

	if err := producer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to send kafka message: %w", err)
	}
	return nil
}

// CloseProducer 关闭生产者
func CloseProducer() error {
	if producer == nil {
		return nil
	}
	logger.Info("Kafka producer closed")
	return producer.Close()
}
