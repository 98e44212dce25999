package model

import "time"

// Subscriber 快讯订阅者
type Subscriber struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;comment:订阅者ID" json:"id"`
	Email     string    `gorm:"size:255;not null;uniqueIndex;comment:订阅邮箱" json:"email"`
	Active    bool      `gorm:"not null;default:true;index:idx_subscribers_active;comment:是否有效订阅" json:"active"`
	CreatedAt time.Time `gorm:"autoCreateTime;comment:订阅时间" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;comment:更新时间" json:"updated_at"`
}

func (Subscriber) TableName() string {
	return "subscribers"
}
