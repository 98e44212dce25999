package dto

import "time"

// DropCreateRequest 创建通讯稿请求
type DropCreateRequest struct {
	Title string `json:"title" binding:"required,min=1,max=200"`
	Body  string `json:"body" binding:"required,min=1"`
}

// DropUpdateRequest 更新通讯稿请求（仅草稿可改）
type DropUpdateRequest struct {
	Title *string `json:"title" binding:"omitempty,min=1,max=200"`
	Body  *string `json:"body"`
}

// DropInfo 通讯稿详情
type DropInfo struct {
	ID              int64      `json:"id"`
	AuthorID        int64      `json:"author_id"`
	Title           string     `json:"title"`
	Body            string     `json:"body"`
	Status          string     `json:"status"`
	TotalRecipients int64      `json:"total_recipients"`
	DeliveredCount  int64      `json:"delivered_count"`
	FailedCount     int64      `json:"failed_count"`
	SentAt          *time.Time `json:"sent_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// DropListRequest 通讯稿列表查询参数
type DropListRequest struct {
	Status   *string `form:"status" binding:"omitempty,oneof=draft sending sent"`
	Page     int     `form:"page"`
	PageSize int     `form:"page_size"`
}

// DropListData 通讯稿列表数据
// ActiveSubscribers 为当前有效订阅者数，作者发送前可据此估量触达范围
type DropListData struct {
	Drops             []DropInfo `json:"drops"`
	Total             int64      `json:"total"`
	Page              int        `json:"page"`
	PageSize          int        `json:"page_size"`
	TotalPages        int64      `json:"total_pages"`
	ActiveSubscribers int64      `json:"active_subscribers"`
}

// DropSendData 触发发送后的回执
type DropSendData struct {
	DropID          int64 `json:"drop_id"`
	TotalRecipients int64 `json:"total_recipients"`
}

// SubscribeRequest 订阅请求
type SubscribeRequest struct {
	Email string `json:"email" binding:"required,email,max=255"`
}

// SubscriberInfo 订阅者信息
type SubscriberInfo struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}
