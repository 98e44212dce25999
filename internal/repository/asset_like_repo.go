package repository

import (
	"atelier-go/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AssetLikeRepository struct {
	db *gorm.DB
}

func NewAssetLikeRepository(db *gorm.DB) *AssetLikeRepository {
	return &AssetLikeRepository{db: db}
}

// Create 创建点赞关系，唯一索引冲突返回 false（已点赞）
func (r *AssetLikeRepository) Create(userID, assetID int64) (bool, error) {
	like := &model.AssetLike{UserID: userID, AssetID: assetID}
	result := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(like)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Delete 删除点赞关系，返回 false 表示本来就不存在
func (r *AssetLikeRepository) Delete(userID, assetID int64) (bool, error) {
	result := r.db.Where("user_id = ? AND asset_id = ?", userID, assetID).
		Delete(&model.AssetLike{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// DeleteByAsset 删除资源的全部点赞（资源删除级联）
func (r *AssetLikeRepository) DeleteByAsset(assetID int64) error {
	return r.db.Where("asset_id = ?", assetID).Delete(&model.AssetLike{}).Error
}

// Exists 查询点赞关系是否存在
func (r *AssetLikeRepository) Exists(userID, assetID int64) (bool, error) {
	var count int64
	err := r.db.Model(&model.AssetLike{}).
		Where("user_id = ? AND asset_id = ?", userID, assetID).Count(&count).Error
	return count > 0, err
}

// CountByAsset 统计资源的点赞数
func (r *AssetLikeRepository) CountByAsset(assetID int64) (int64, error) {
	var count int64
	err := r.db.Model(&model.AssetLike{}).
		Where("asset_id = ?", assetID).Count(&count).Error
	return count, err
}

// ListByUser 获取用户的点赞列表
func (r *AssetLikeRepository) ListByUser(userID int64, skip, limit int) ([]model.AssetLike, int64, error) {
	query := r.db.Model(&model.AssetLike{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var likes []model.AssetLike
	err := query.Preload("Asset").Order("created_at DESC").
		Offset(skip).Limit(limit).Find(&likes).Error
	if err != nil {
		return nil, 0, err
	}
	return likes, total, nil
}

// BatchCheckLiked 批量查询用户对多个资源的点赞状态
func (r *AssetLikeRepository) BatchCheckLiked(userID int64, assetIDs []int64) (map[int64]bool, error) {
	result := make(map[int64]bool, len(assetIDs))
	if len(assetIDs) == 0 {
		return result, nil
	}

	var likedIDs []int64
	err := r.db.Model(&model.AssetLike{}).
		Where("user_id = ? AND asset_id IN ?", userID, assetIDs).
		Pluck("asset_id", &likedIDs).Error
	if err != nil {
		return nil, err
	}

	likedSet := make(map[int64]bool, len(likedIDs))
	for _, id := range likedIDs {
		likedSet[id] = true
	}
	for _, id := range assetIDs {
		result[id] = likedSet[id]
	}
	return result, nil
}
