package repository

import (
	"atelier-go/internal/model"

	"gorm.io/gorm"
)

type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Create(comment *model.Comment) error {
	return r.db.Create(comment).Error
}

func (r *CommentRepository) GetByID(id int64) (*model.Comment, error) {
	var comment model.Comment
	err := r.db.First(&comment, id).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// SetLikeCount 以重新统计出的权威值覆盖点赞数
func (r *CommentRepository) SetLikeCount(commentID, count int64) error {
	return r.db.Model(&model.Comment{}).
		Where("id = ?", commentID).
		Update("like_count", count).Error
}

// Update 更新评论内容并标记已编辑（仅作者本人）
func (r *CommentRepository) Update(commentID, userID int64, content string) error {
	result := r.db.Model(&model.Comment{}).
		Where("id = ? AND user_id = ?", commentID, userID).
		Updates(map[string]interface{}{"content": content, "edited": true})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteCascade 删除评论及其直接回复，返回被删除的评论 ID 列表
// 调用方负责同步点赞关系与计数
func (r *CommentRepository) DeleteCascade(commentID int64) ([]int64, error) {
	var replyIDs []int64
	if err := r.db.Model(&model.Comment{}).
		Where("parent_id = ?", commentID).Pluck("id", &replyIDs).Error; err != nil {
		return nil, err
	}

	deleted := append([]int64{commentID}, replyIDs...)
	if err := r.db.Where("id IN ?", deleted).Delete(&model.Comment{}).Error; err != nil {
		return nil, err
	}
	return deleted, nil
}

// DeleteByAsset 删除资源下的全部评论，返回被删除的评论 ID 列表
func (r *CommentRepository) DeleteByAsset(assetID int64) ([]int64, error) {
	var ids []int64
	if err := r.db.Model(&model.Comment{}).
		Where("asset_id = ?", assetID).Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	if err := r.db.Where("id IN ?", ids).Delete(&model.Comment{}).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// ListByAsset 获取资源的评论列表（支持父评论筛选）
func (r *CommentRepository) ListByAsset(assetID int64, parentID *int64, skip, limit int) ([]model.Comment, int64, error) {
	query := r.db.Model(&model.Comment{}).Where("asset_id = ?", assetID)

	if parentID != nil {
		query = query.Where("parent_id = ?", *parentID)
	} else {
		query = query.Where("parent_id IS NULL")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var comments []model.Comment
	err := query.Preload("User").Order("created_at DESC").
		Offset(skip).Limit(limit).Find(&comments).Error
	if err != nil {
		return nil, 0, err
	}

	return comments, total, nil
}

// ListReplies 获取某条评论的回复
func (r *CommentRepository) ListReplies(parentID int64, skip, limit int) ([]model.Comment, int64, error) {
	query := r.db.Model(&model.Comment{}).Where("parent_id = ?", parentID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var comments []model.Comment
	err := query.Preload("User").Order("created_at ASC").
		Offset(skip).Limit(limit).Find(&comments).Error
	if err != nil {
		return nil, 0, err
	}

	return comments, total, nil
}

// ListByUser 获取用户的评论列表
func (r *CommentRepository) ListByUser(userID int64, skip, limit int) ([]model.Comment, int64, error) {
	query := r.db.Model(&model.Comment{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var comments []model.Comment
	err := query.Preload("Asset").Order("created_at DESC").
		Offset(skip).Limit(limit).Find(&comments).Error
	if err != nil {
		return nil, 0, err
	}

	return comments, total, nil
}

// ListIDsByAsset 获取资源下全部评论 ID（含回复，实时订阅的监听集合）
func (r *CommentRepository) ListIDsByAsset(assetID int64) ([]int64, error) {
	var ids []int64
	err := r.db.Model(&model.Comment{}).
		Where("asset_id = ?", assetID).Pluck("id", &ids).Error
	return ids, err
}

// CountReplies 统计某条评论的回复数
func (r *CommentRepository) CountReplies(commentID int64) (int64, error) {
	var count int64
	err := r.db.Model(&model.Comment{}).Where("parent_id = ?", commentID).Count(&count).Error
	return count, err
}
