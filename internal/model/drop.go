package model

import "time"

// Drop 状态
const (
	DropStatusDraft   = "draft"
	DropStatusSending = "sending"
	DropStatusSent    = "sent"
)

// DropDelivery 状态
const (
	DeliveryStatusDelivered = "delivered"
	DeliveryStatusFailed    = "failed"
)

// Drop 创作快讯（面向订阅者的 Newsletter）
type Drop struct {
	ID              int64      `gorm:"primaryKey;autoIncrement;comment:快讯ID" json:"id"`
	AuthorID        int64      `gorm:"not null;index:idx_drops_author_id;comment:发布者ID" json:"author_id"`
	Title           string     `gorm:"size:200;not null;comment:快讯标题" json:"title"`
	Body            string     `gorm:"type:text;comment:快讯正文" json:"body"`
	Status          string     `gorm:"size:20;not null;default:'draft';index:idx_drops_status;comment:快讯状态" json:"status"`
	TotalRecipients int64      `gorm:"default:0;comment:应投递人数" json:"total_recipients"`
	DeliveredCount  int64      `gorm:"default:0;comment:投递成功数" json:"delivered_count"`
	FailedCount     int64      `gorm:"default:0;comment:投递失败数" json:"failed_count"`
	SentAt          *time.Time `gorm:"comment:发送完成时间" json:"sent_at"`
	CreatedAt       time.Time  `gorm:"autoCreateTime;index:idx_drops_created_at;comment:创建时间" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime;comment:更新时间" json:"updated_at"`

	// 关联关系
	Author     User           `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Deliveries []DropDelivery `gorm:"foreignKey:DropID" json:"deliveries,omitempty"`
}

func (Drop) TableName() string {
	return "drops"
}

// DropDelivery 单个订阅者的投递记录
// (drop_id, subscriber_id) 唯一索引保证重复消费幂等
type DropDelivery struct {
	ID           int64     `gorm:"primaryKey;autoIncrement;comment:投递记录ID" json:"id"`
	DropID       int64     `gorm:"not null;uniqueIndex:uq_drop_subscriber;index:idx_deliveries_drop_id;comment:快讯ID" json:"drop_id"`
	SubscriberID int64     `gorm:"not null;uniqueIndex:uq_drop_subscriber;comment:订阅者ID" json:"subscriber_id"`
	Status       string    `gorm:"size:20;not null;comment:投递状态" json:"status"`
	Error        string    `gorm:"size:500;comment:失败原因" json:"error,omitempty"`
	CreatedAt    time.Time `gorm:"autoCreateTime;comment:投递时间" json:"created_at"`
}

func (DropDelivery) TableName() string {
	return "drop_deliveries"
}
