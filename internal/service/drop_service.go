package service

import (
	"context"
	"errors"
	"fmt"

	"atelier-go/internal/api/dto"
	"atelier-go/internal/config"
	infraKafka "atelier-go/internal/infra/kafka"
	"atelier-go/internal/model"
	"atelier-go/internal/repository"
	"atelier-go/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrDropNotFound       = errors.New("快讯不存在")
	ErrDropNoPermission   = errors.New("没有权限操作该快讯")
	ErrDropNotDraft       = errors.New("只有草稿状态的快讯可以修改或发送")
	ErrNoSubscribers      = errors.New("当前没有活跃的订阅者")
	ErrSubscriberNotFound = errors.New("订阅者不存在")
)

type DropService struct {
	dropRepo       *repository.DropRepository
	subscriberRepo *repository.SubscriberRepository
}

func NewDropService(dropRepo *repository.DropRepository, subscriberRepo *repository.SubscriberRepository) *DropService {
	return &DropService{dropRepo: dropRepo, subscriberRepo: subscriberRepo}
}

// Create 新建快讯草稿
func (s *DropService) Create(authorID int64, req *dto.DropCreateRequest) (*dto.DropInfo, error) {
	drop := &model.Drop{
		AuthorID: authorID,
		Title:    req.Title,
		Body:     req.Body,
		Status:   model.DropStatusDraft,
	}
	if err := s.dropRepo.Create(drop); err != nil {
		return nil, err
	}
	return toDropInfo(drop), nil
}

// Update 修改快讯（仅作者本人，仅草稿）
func (s *DropService) Update(dropID, currentUserID int64, req *dto.DropUpdateRequest) (*dto.DropInfo, error) {
	drop, err := s.getOwnedDrop(dropID, currentUserID)
	if err != nil {
		return nil, err
	}
	if drop.Status != model.DropStatusDraft {
		return nil, ErrDropNotDraft
	}

	updates := make(map[string]interface{})
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Body != nil {
		updates["body"] = *req.Body
	}
	if len(updates) == 0 {
		return nil, ErrNoFieldsToUpdate
	}

	drop, err = s.dropRepo.Update(dropID, updates)
	if err != nil {
		return nil, err
	}
	return toDropInfo(drop), nil
}

// Delete 删除快讯（仅作者本人，仅草稿）
func (s *DropService) Delete(dropID, currentUserID int64) error {
	drop, err := s.getOwnedDrop(dropID, currentUserID)
	if err != nil {
		return err
	}
	if drop.Status != model.DropStatusDraft {
		return ErrDropNotDraft
	}
	return s.dropRepo.Delete(dropID)
}

// GetDetail 获取快讯详情（仅作者本人）
func (s *DropService) GetDetail(dropID, currentUserID int64) (*dto.DropInfo, error) {
	drop, err := s.getOwnedDrop(dropID, currentUserID)
	if err != nil {
		return nil, err
	}
	return toDropInfo(drop), nil
}

// List 获取快讯列表
func (s *DropService) List(page, pageSize int, status *string) (*dto.DropListData, error) {
	skip := (page - 1) * pageSize
	drops, total, err := s.dropRepo.List(skip, pageSize, status)
	if err != nil {
		return nil, err
	}

	items := make([]dto.DropInfo, 0, len(drops))
	for i := range drops {
		items = append(items, *toDropInfo(&drops[i]))
	}

	totalPages := (total + int64(pageSize) - 1) / int64(pageSize)

	activeSubscribers, err := s.subscriberRepo.CountActive()
	if err != nil {
		logger.Warn("Count active subscribers failed", zap.Error(err))
	}

	return &dto.DropListData{
		Drops:             items,
		Total:             total,
		Page:              page,
		PageSize:          pageSize,
		TotalPages:        totalPages,
		ActiveSubscribers: activeSubscribers,
	}, nil
}

// Send 触发发送：草稿置为发送中，并为每个活跃订阅者投递一条任务。
// 状态置换用乐观更新挡住并发重复触发
func (s *DropService) Send(ctx context.Context, dropID, currentUserID int64) (*dto.DropSendData, error) {
	drop, err := s.getOwnedDrop(dropID, currentUserID)
	if err != nil {
		return nil, err
	}

	subscribers, err := s.subscriberRepo.ListActive()
	if err != nil {
		return nil, err
	}
	if len(subscribers) == 0 {
		return nil, ErrNoSubscribers
	}

	marked, err := s.dropRepo.MarkSending(dropID, int64(len(subscribers)))
	if err != nil {
		return nil, err
	}
	if !marked {
		return nil, ErrDropNotDraft
	}

	tasks := buildDeliveryTasks(drop, subscribers)
	topic := config.GetKafka().Topics["drop_dispatch"]

	for i := range tasks {
		if err := infraKafka.SendDeliveryTask(ctx, topic, &tasks[i]); err != nil {
			logger.Error("Send delivery task failed",
				zap.Int64("drop_id", dropID),
				zap.Int64("subscriber_id", tasks[i].SubscriberID),
				zap.Error(err))
			return nil, fmt.Errorf("提交投递任务失败: %w", err)
		}
	}

	logger.Info("Drop dispatch enqueued",
		zap.Int64("drop_id", dropID),
		zap.Int("recipients", len(subscribers)))

	return &dto.DropSendData{
		DropID:          dropID,
		TotalRecipients: int64(len(subscribers)),
	}, nil
}

// HandleDeliveryResult 处理消费者发回的投递结果，推进快讯状态
func (s *DropService) HandleDeliveryResult(result *infraKafka.DeliveryResult) error {
	delivered := result.Status == model.DeliveryStatusDelivered

	drop, err := s.dropRepo.RecordResult(result.DropID, delivered)
	if err != nil {
		return fmt.Errorf("record delivery result of drop %d failed: %w", result.DropID, err)
	}

	if drop.Status == model.DropStatusSent {
		logger.Info("Drop fully delivered",
			zap.Int64("drop_id", drop.ID),
			zap.Int64("delivered", drop.DeliveredCount),
			zap.Int64("failed", drop.FailedCount))
	}

	return nil
}

// Subscribe 订阅快讯（重复订阅恢复激活状态）
func (s *DropService) Subscribe(email string) (*dto.SubscriberInfo, error) {
	sub, err := s.subscriberRepo.Upsert(email)
	if err != nil {
		return nil, err
	}
	return &dto.SubscriberInfo{
		ID:        sub.ID,
		Email:     sub.Email,
		Active:    sub.Active,
		CreatedAt: sub.CreatedAt,
	}, nil
}

// Unsubscribe 退订快讯
func (s *DropService) Unsubscribe(email string) error {
	found, err := s.subscriberRepo.Deactivate(email)
	if err != nil {
		return err
	}
	if !found {
		return ErrSubscriberNotFound
	}
	return nil
}

func (s *DropService) getOwnedDrop(dropID, currentUserID int64) (*model.Drop, error) {
	drop, err := s.dropRepo.GetByID(dropID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDropNotFound
		}
		return nil, err
	}
	if drop.AuthorID != currentUserID {
		return nil, ErrDropNoPermission
	}
	return drop, nil
}

// buildDeliveryTasks 将一篇快讯展开为订阅者粒度的投递任务
func buildDeliveryTasks(drop *model.Drop, subscribers []model.Subscriber) []infraKafka.DeliveryTask {
	tasks := make([]infraKafka.DeliveryTask, 0, len(subscribers))
	for i := range subscribers {
		tasks = append(tasks, infraKafka.DeliveryTask{
			DropID:       drop.ID,
			SubscriberID: subscribers[i].ID,
			Email:        subscribers[i].Email,
			Title:        drop.Title,
		})
	}
	return tasks
}

func toDropInfo(d *model.Drop) *dto.DropInfo {
	return &dto.DropInfo{
		ID:              d.ID,
		AuthorID:        d.AuthorID,
		Title:           d.Title,
		Body:            d.Body,
		Status:          d.Status,
		TotalRecipients: d.TotalRecipients,
		DeliveredCount:  d.DeliveredCount,
		FailedCount:     d.FailedCount,
		SentAt:          d.SentAt,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}
