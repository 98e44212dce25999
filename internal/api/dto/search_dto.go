package dto

// SearchAssetRequest 搜索请求参数
type SearchAssetRequest struct {
	Q         string  `form:"q"`
	AuthorID  *int64  `form:"author_id"`
	Kind      *string `form:"kind" binding:"omitempty,oneof=image audio video doc"`
	Sort      string  `form:"sort"` // relevance, time, hot
	StartTime *int64  `form:"start_time"`
	EndTime   *int64  `form:"end_time"`
	Page      int     `form:"page"`
	PageSize  int     `form:"page_size"`
}

// SearchAssetInfo 搜索结果中的资源信息
type SearchAssetInfo struct {
	ID           int64               `json:"id"`
	AuthorID     int64               `json:"author_id"`
	AuthorName   string              `json:"author_name"`
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	Kind         string              `json:"kind"`
	FileURL      string              `json:"file_url"`
	CoverURL     string              `json:"cover_url"`
	ViewCount    int64               `json:"view_count"`
	LikeCount    int64               `json:"like_count"`
	CommentCount int64               `json:"comment_count"`
	PublishTime  *int64              `json:"publish_time"`
	Highlight    map[string][]string `json:"highlight,omitempty"`
}

// SearchAssetData 搜索结果
type SearchAssetData struct {
	Assets     []SearchAssetInfo `json:"assets"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalPages int64             `json:"total_pages"`
}
