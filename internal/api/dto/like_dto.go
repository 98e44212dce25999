package dto

import "time"

// CommentLikeStatusData 单条评论的点赞状态
type CommentLikeStatusData struct {
	CommentID int64 `json:"comment_id"`
	Liked     bool  `json:"liked"`
	LikeCount int64 `json:"like_count"`
}

// AssetLikeStatusData 单个资源的点赞状态
type AssetLikeStatusData struct {
	AssetID   int64 `json:"asset_id"`
	Liked     bool  `json:"liked"`
	LikeCount int64 `json:"like_count"`
}

// LikedAssetInfo 用户点赞列表中的一项
type LikedAssetInfo struct {
	AssetID int64     `json:"asset_id"`
	LikedAt time.Time `json:"liked_at"`
}

// LikedAssetListData 用户点赞的资源列表
type LikedAssetListData struct {
	Likes      []LikedAssetInfo `json:"likes"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalPages int64            `json:"total_pages"`
}
