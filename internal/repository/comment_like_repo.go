package repository

import (
	"atelier-go/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CommentLikeRepository struct {
	db *gorm.DB
}

func NewCommentLikeRepository(db *gorm.DB) *CommentLikeRepository {
	return &CommentLikeRepository{db: db}
}

// Create 创建点赞关系
// 唯一索引冲突时不报错，返回 false 表示该关系已存在（重复点赞按成功处理）
func (r *CommentLikeRepository) Create(userID, commentID int64) (bool, error) {
	like := &model.CommentLike{UserID: userID, CommentID: commentID}
	result := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(like)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Delete 删除点赞关系，返回 false 表示本来就不存在（取消不存在的点赞是空操作）
func (r *CommentLikeRepository) Delete(userID, commentID int64) (bool, error) {
	result := r.db.Where("user_id = ? AND comment_id = ?", userID, commentID).
		Delete(&model.CommentLike{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// DeleteByComments 删除多条评论的全部点赞（评论级联删除用）
func (r *CommentLikeRepository) DeleteByComments(commentIDs []int64) error {
	if len(commentIDs) == 0 {
		return nil
	}
	return r.db.Where("comment_id IN ?", commentIDs).Delete(&model.CommentLike{}).Error
}

// Exists 查询点赞关系是否存在
func (r *CommentLikeRepository) Exists(userID, commentID int64) (bool, error) {
	var count int64
	err := r.db.Model(&model.CommentLike{}).
		Where("user_id = ? AND comment_id = ?", userID, commentID).Count(&count).Error
	return count > 0, err
}

// CountByComment 统计评论的点赞数（权威值）
func (r *CommentLikeRepository) CountByComment(commentID int64) (int64, error) {
	var count int64
	err := r.db.Model(&model.CommentLike{}).
		Where("comment_id = ?", commentID).Count(&count).Error
	return count, err
}

// CountByComments 批量统计多条评论的点赞数
func (r *CommentLikeRepository) CountByComments(commentIDs []int64) (map[int64]int64, error) {
	result := make(map[int64]int64, len(commentIDs))
	if len(commentIDs) == 0 {
		return result, nil
	}

	var rows []struct {
		CommentID int64
		Count     int64
	}
	err := r.db.Model(&model.CommentLike{}).
		Select("comment_id, COUNT(*) AS count").
		Where("comment_id IN ?", commentIDs).
		Group("comment_id").Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		result[row.CommentID] = row.Count
	}
	return result, nil
}

// BatchCheckLiked 批量查询用户对多条评论的点赞状态
func (r *CommentLikeRepository) BatchCheckLiked(userID int64, commentIDs []int64) (map[int64]bool, error) {
	result := make(map[int64]bool, len(commentIDs))
	if len(commentIDs) == 0 {
		return result, nil
	}

	var likedIDs []int64
	err := r.db.Model(&model.CommentLike{}).
		Where("user_id = ? AND comment_id IN ?", userID, commentIDs).
		Pluck("comment_id", &likedIDs).Error
	if err != nil {
		return nil, err
	}

	likedSet := make(map[int64]bool, len(likedIDs))
	for _, id := range likedIDs {
		likedSet[id] = true
	}
	for _, id := range commentIDs {
		result[id] = likedSet[id]
	}
	return result, nil
}
