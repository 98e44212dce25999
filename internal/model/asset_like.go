package model

import "time"

// AssetLike 资源点赞关系模型
type AssetLike struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;comment:点赞记录ID" json:"id"`
	UserID    int64     `gorm:"not null;uniqueIndex:uq_user_asset_like;index:idx_asset_likes_user_id;comment:点赞用户ID" json:"user_id"`
	AssetID   int64     `gorm:"not null;uniqueIndex:uq_user_asset_like;index:idx_asset_likes_asset_id;comment:被点赞资源ID" json:"asset_id"`
	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_asset_likes_created_at;comment:点赞时间" json:"created_at"`

	// 关联关系
	User  User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Asset Asset `gorm:"foreignKey:AssetID" json:"asset,omitempty"`
}

func (AssetLike) TableName() string {
	return "asset_likes"
}
