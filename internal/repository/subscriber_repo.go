package repository

import (
	"atelier-go/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SubscriberRepository struct {
	db *gorm.DB
}

func NewSubscriberRepository(db *gorm.DB) *SubscriberRepository {
	return &SubscriberRepository{db: db}
}

// Upsert 订阅：不存在则创建，存在则重新激活
func (r *SubscriberRepository) Upsert(email string) (*model.Subscriber, error) {
	sub := &model.Subscriber{Email: email, Active: true}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"active": true}),
	}).Create(sub).Error
	if err != nil {
		return nil, err
	}

	var saved model.Subscriber
	if err := r.db.Where("email = ?", email).First(&saved).Error; err != nil {
		return nil, err
	}
	return &saved, nil
}

// Deactivate 取消订阅，返回 false 表示该邮箱不存在或已退订
func (r *SubscriberRepository) Deactivate(email string) (bool, error) {
	result := r.db.Model(&model.Subscriber{}).
		Where("email = ? AND active = true", email).
		Update("active", false)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListActive 获取全部有效订阅者（快讯扇出用）
func (r *SubscriberRepository) ListActive() ([]model.Subscriber, error) {
	var subs []model.Subscriber
	err := r.db.Where("active = true").Order("id ASC").Find(&subs).Error
	return subs, err
}

// CountActive 统计有效订阅者数量
func (r *SubscriberRepository) CountActive() (int64, error) {
	var count int64
	err := r.db.Model(&model.Subscriber{}).Where("active = true").Count(&count).Error
	return count, err
}
