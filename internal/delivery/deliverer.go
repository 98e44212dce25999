// Package delivery 实现快讯投递 Worker 的任务处理。
// 每条任务对应一个订阅者：归档投递副本、落投递记录、回报结果。
package delivery

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"atelier-go/internal/config"
	infraKafka "atelier-go/internal/infra/kafka"
	infraMinio "atelier-go/internal/infra/minio"
	"atelier-go/internal/model"
	"atelier-go/internal/repository"
	"atelier-go/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deliverer 快讯投递器
type Deliverer struct {
	dropRepo *repository.DropRepository
}

func NewDeliverer(dropRepo *repository.DropRepository) *Deliverer {
	return &Deliverer{dropRepo: dropRepo}
}

// HandleTask 处理一条投递任务的完整流程：
//  1. 读取快讯内容
//  2. 组装投递文本并归档到 MinIO（可追溯每个订阅者收到了什么）
//  3. 写投递记录（唯一索引保证重复消费幂等）
//  4. 发送投递结果消息到 Kafka
func (d *Deliverer) HandleTask(task *infraKafka.DeliveryTask) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	logger.Info("Delivery task started",
		zap.Int64("drop_id", task.DropID),
		zap.Int64("subscriber_id", task.SubscriberID),
	)

	drop, err := d.dropRepo.GetByID(task.DropID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 快讯已被删除，无法投递也无需重试
			return d.sendFailure(ctx, task, fmt.Errorf("drop %d not found", task.DropID))
		}
		return err
	}

	body := composeMessage(drop, task.Email)
	objectName := fmt.Sprintf("drops/%d/%d.txt", task.DropID, task.SubscriberID)

	if _, err := infraMinio.UploadFile(ctx, infraMinio.PublicBucket, objectName,
		strings.NewReader(body), int64(len(body)), "text/plain; charset=utf-8"); err != nil {
		return d.sendFailure(ctx, task, fmt.Errorf("archive delivery copy: %w", err))
	}

	minioCfg := config.GetMinIO()
	logger.Debug("Delivery copy archived",
		zap.Int64("drop_id", task.DropID),
		zap.String("url", infraMinio.GetPublicURL(minioCfg.Endpoint, minioCfg.UseSSL, infraMinio.PublicBucket, objectName)),
	)

	created, err := d.dropRepo.CreateDelivery(&model.DropDelivery{
		DropID:       task.DropID,
		SubscriberID: task.SubscriberID,
		Status:       model.DeliveryStatusDelivered,
	})
	if err != nil {
		return d.sendFailure(ctx, task, fmt.Errorf("record delivery: %w", err))
	}
	if !created {
		// 重复消费：结果已回报过，直接确认
		logger.Info("Delivery already recorded, skipping",
			zap.Int64("drop_id", task.DropID),
			zap.Int64("subscriber_id", task.SubscriberID))
		return nil
	}

	return d.sendResult(ctx, &infraKafka.DeliveryResult{
		DropID:       task.DropID,
		SubscriberID: task.SubscriberID,
		Status:       model.DeliveryStatusDelivered,
	})
}

func (d *Deliverer) sendFailure(ctx context.Context, task *infraKafka.DeliveryTask, originalErr error) error {
	logger.Error("Delivery task failed",
		zap.Int64("drop_id", task.DropID),
		zap.Int64("subscriber_id", task.SubscriberID),
		zap.Error(originalErr))

	errMsg := originalErr.Error()
	if len(errMsg) > 500 {
		errMsg = errMsg[:500]
	}

	created, err := d.dropRepo.CreateDelivery(&model.DropDelivery{
		DropID:       task.DropID,
		SubscriberID: task.SubscriberID,
		Status:       model.DeliveryStatusFailed,
		Error:        errMsg,
	})
	if err != nil {
		logger.Error("Record failed delivery failed", zap.Error(err))
		return originalErr
	}
	if !created {
		return nil
	}

	if err := d.sendResult(ctx, &infraKafka.DeliveryResult{
		DropID:       task.DropID,
		SubscriberID: task.SubscriberID,
		Status:       model.DeliveryStatusFailed,
		Error:        errMsg,
	}); err != nil {
		return err
	}
	return originalErr
}

func (d *Deliverer) sendResult(ctx context.Context, result *infraKafka.DeliveryResult) error {
	topic := config.GetKafka().Topics["drop_results"]
	return infraKafka.SendDeliveryResult(ctx, topic, result)
}

// composeMessage 组装纯文本投递内容
func composeMessage(drop *model.Drop, email string) string {
	var b strings.Builder
	b.WriteString("To: " + email + "\n")
	b.WriteString("Subject: " + drop.Title + "\n\n")
	b.WriteString(drop.Body)
	b.WriteString("\n")
	return b.String()
}
