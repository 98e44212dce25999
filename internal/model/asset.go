package model

import "time"

// 资源状态
const (
	AssetStatusDraft     = "draft"
	AssetStatusPublished = "published"
)

// 资源类型
const (
	AssetKindImage = "image"
	AssetKindAudio = "audio"
	AssetKindVideo = "video"
	AssetKindDoc   = "doc"
)

// Asset 创作资源模型（信息流中的一条内容）
type Asset struct {
	ID           int64     `gorm:"primaryKey;autoIncrement;comment:资源标识" json:"id"`
	AuthorID     int64     `gorm:"not null;index:idx_assets_author_id;index:idx_composite_author_status;comment:资源作者ID" json:"author_id"`
	Title        string    `gorm:"size:200;not null;comment:资源标题" json:"title"`
	Description  string    `gorm:"type:text;comment:资源描述" json:"description"`
	Kind         string    `gorm:"size:20;not null;default:'image';comment:资源类型" json:"kind"`
	ObjectName   string    `gorm:"size:500;comment:MinIO对象名" json:"object_name"`
	CoverObject  string    `gorm:"size:500;comment:封面对象名" json:"cover_object"`
	FileSize     int64     `gorm:"default:0;comment:文件大小（字节）" json:"file_size"`
	Status       string    `gorm:"size:20;default:'draft';index:idx_assets_status;index:idx_composite_author_status;comment:资源状态" json:"status"`
	ViewCount    int64     `gorm:"default:0;comment:浏览量" json:"view_count"`
	LikeCount    int64     `gorm:"default:0;comment:点赞数" json:"like_count"`
	CommentCount int64     `gorm:"default:0;comment:评论数" json:"comment_count"`
	PublishTime  *int64    `gorm:"index:idx_assets_publish_time;comment:发布时间" json:"publish_time"`
	CreatedAt    time.Time `gorm:"autoCreateTime;index:idx_assets_created_at;comment:创建时间" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime;comment:更新时间" json:"updated_at"`

	// 关联关系
	Author   User        `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Comments []Comment   `gorm:"foreignKey:AssetID" json:"comments,omitempty"`
	Likes    []AssetLike `gorm:"foreignKey:AssetID" json:"likes,omitempty"`
}

func (Asset) TableName() string {
	return "assets"
}
