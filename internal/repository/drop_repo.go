package repository

import (
	"time"

	"atelier-go/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DropRepository struct {
	db *gorm.DB
}

func NewDropRepository(db *gorm.DB) *DropRepository {
	return &DropRepository{db: db}
}

func (r *DropRepository) Create(drop *model.Drop) error {
	return r.db.Create(drop).Error
}

func (r *DropRepository) GetByID(id int64) (*model.Drop, error) {
	var drop model.Drop
	err := r.db.First(&drop, id).Error
	if err != nil {
		return nil, err
	}
	return &drop, nil
}

// Update 更新快讯字段
func (r *DropRepository) Update(id int64, updates map[string]interface{}) (*model.Drop, error) {
	result := r.db.Model(&model.Drop{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	var drop model.Drop
	if err := r.db.First(&drop, id).Error; err != nil {
		return nil, err
	}
	return &drop, nil
}

func (r *DropRepository) Delete(id int64) error {
	return r.db.Delete(&model.Drop{}, id).Error
}

// List 分页查询快讯（支持状态过滤）
func (r *DropRepository) List(skip, limit int, status *string) ([]model.Drop, int64, error) {
	query := r.db.Model(&model.Drop{})

	if status != nil && *status != "" {
		query = query.Where("status = ?", *status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var drops []model.Drop
	err := query.Order("created_at DESC").Offset(skip).Limit(limit).Find(&drops).Error
	if err != nil {
		return nil, 0, err
	}
	return drops, total, nil
}

// MarkSending 将草稿置为发送中并记录应投递人数
// 仅当前状态为 draft 时生效，并发重复触发返回 false
func (r *DropRepository) MarkSending(id, totalRecipients int64) (bool, error) {
	result := r.db.Model(&model.Drop{}).
		Where("id = ? AND status = ?", id, model.DropStatusDraft).
		Updates(map[string]interface{}{
			"status":           model.DropStatusSending,
			"total_recipients": totalRecipients,
			"delivered_count":  0,
			"failed_count":     0,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// RecordResult 累加投递结果，当全部结果到齐时置为 sent
func (r *DropRepository) RecordResult(id int64, delivered bool) (*model.Drop, error) {
	column := "delivered_count"
	if !delivered {
		column = "failed_count"
	}

	if err := r.db.Model(&model.Drop{}).Where("id = ?", id).
		UpdateColumn(column, gorm.Expr(column+" + 1")).Error; err != nil {
		return nil, err
	}

	var drop model.Drop
	if err := r.db.First(&drop, id).Error; err != nil {
		return nil, err
	}

	if drop.Status == model.DropStatusSending &&
		drop.DeliveredCount+drop.FailedCount >= drop.TotalRecipients {
		now := time.Now()
		err := r.db.Model(&model.Drop{}).
			Where("id = ? AND status = ?", id, model.DropStatusSending).
			Updates(map[string]interface{}{"status": model.DropStatusSent, "sent_at": now}).Error
		if err != nil {
			return nil, err
		}
		drop.Status = model.DropStatusSent
		drop.SentAt = &now
	}

	return &drop, nil
}

// CreateDelivery 记录一次投递，唯一索引冲突返回 false（重复消费幂等）
func (r *DropRepository) CreateDelivery(delivery *model.DropDelivery) (bool, error) {
	result := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(delivery)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
