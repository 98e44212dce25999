package dto

import "time"

// AssetCreateRequest 创建资源请求
// 文件本体由客户端直传 MinIO，这里只登记对象名
type AssetCreateRequest struct {
	Title       string `json:"title" binding:"required,min=1,max=200"`
	Description string `json:"description" binding:"omitempty"`
	Kind        string `json:"kind" binding:"required,oneof=image audio video doc"`
	ObjectName  string `json:"object_name" binding:"required,max=500"`
	CoverObject string `json:"cover_object" binding:"omitempty,max=500"`
	FileSize    int64  `json:"file_size" binding:"omitempty,min=0"`
}

// AssetUpdateRequest 更新资源请求
type AssetUpdateRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=1,max=200"`
	Description *string `json:"description"`
	CoverObject *string `json:"cover_object" binding:"omitempty,max=500"`
}

// AuthorBrief 资源中嵌套的作者简要信息
type AuthorBrief struct {
	ID       int64   `json:"id"`
	Username string  `json:"username"`
	Avatar   *string `json:"avatar"`
}

// AssetInfo 资源详情
type AssetInfo struct {
	ID           int64        `json:"id"`
	AuthorID     int64        `json:"author_id"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Kind         string       `json:"kind"`
	FileURL      string       `json:"file_url"`
	CoverURL     string       `json:"cover_url"`
	FileSize     int64        `json:"file_size"`
	Status       string       `json:"status"`
	ViewCount    int64        `json:"view_count"`
	LikeCount    int64        `json:"like_count"`
	CommentCount int64        `json:"comment_count"`
	ViewerLiked  bool         `json:"viewer_liked"`
	PublishTime  *int64       `json:"publish_time"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
	Author       *AuthorBrief `json:"author,omitempty"`
}

// AssetListData 资源列表响应数据
type AssetListData struct {
	Assets     []AssetInfo `json:"assets"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	TotalPages int64       `json:"total_pages"`
}

// AssetFeedRequest 信息流查询参数
type AssetFeedRequest struct {
	Kind     *string `form:"kind" binding:"omitempty,oneof=image audio video doc"`
	Page     int     `form:"page"`
	PageSize int     `form:"page_size"`
}
