package repository

import (
	"atelier-go/internal/model"

	"gorm.io/gorm"
)

type AssetRepository struct {
	db *gorm.DB
}

func NewAssetRepository(db *gorm.DB) *AssetRepository {
	return &AssetRepository{db: db}
}

func (r *AssetRepository) Create(asset *model.Asset) error {
	return r.db.Create(asset).Error
}

func (r *AssetRepository) GetByID(id int64) (*model.Asset, error) {
	var asset model.Asset
	err := r.db.First(&asset, id).Error
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

// GetByIDWithAuthor 查询资源并预加载作者信息
func (r *AssetRepository) GetByIDWithAuthor(id int64) (*model.Asset, error) {
	var asset model.Asset
	err := r.db.Preload("Author").First(&asset, id).Error
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

// GetByIDAndAuthor 查询某作者的资源（编辑/删除前的归属校验）
func (r *AssetRepository) GetByIDAndAuthor(assetID, authorID int64) (*model.Asset, error) {
	var asset model.Asset
	err := r.db.Where("id = ? AND author_id = ?", assetID, authorID).First(&asset).Error
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

// GetByIDsWithAuthor 批量查询资源（搜索结果回表）
func (r *AssetRepository) GetByIDsWithAuthor(ids []int64) ([]model.Asset, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var assets []model.Asset
	err := r.db.Preload("Author").Where("id IN ?", ids).Find(&assets).Error
	return assets, err
}

// Update 更新资源字段
func (r *AssetRepository) Update(id int64, updates map[string]interface{}) (*model.Asset, error) {
	result := r.db.Model(&model.Asset{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	var asset model.Asset
	if err := r.db.First(&asset, id).Error; err != nil {
		return nil, err
	}
	return &asset, nil
}

// Delete 物理删除资源
func (r *AssetRepository) Delete(id int64) error {
	return r.db.Delete(&model.Asset{}, id).Error
}

// ListFeed 公开信息流：仅已发布资源，按发布时间倒序
func (r *AssetRepository) ListFeed(skip, limit int, kind *string) ([]model.Asset, int64, error) {
	query := r.db.Model(&model.Asset{}).Where("status = ?", model.AssetStatusPublished)

	if kind != nil && *kind != "" {
		query = query.Where("kind = ?", *kind)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var assets []model.Asset
	err := query.Preload("Author").Order("publish_time DESC").
		Offset(skip).Limit(limit).Find(&assets).Error
	if err != nil {
		return nil, 0, err
	}
	return assets, total, nil
}

// ListByAuthor 某作者的资源列表（含草稿）
func (r *AssetRepository) ListByAuthor(authorID int64, skip, limit int, status *string) ([]model.Asset, int64, error) {
	query := r.db.Model(&model.Asset{}).Where("author_id = ?", authorID)

	if status != nil && *status != "" {
		query = query.Where("status = ?", *status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var assets []model.Asset
	err := query.Order("created_at DESC").Offset(skip).Limit(limit).Find(&assets).Error
	if err != nil {
		return nil, 0, err
	}
	return assets, total, nil
}

// SearchByKeyword 数据库兜底搜索（ES 不可用时）
func (r *AssetRepository) SearchByKeyword(keyword string, skip, limit int) ([]model.Asset, int64, error) {
	pattern := "%" + keyword + "%"
	query := r.db.Model(&model.Asset{}).
		Where("status = ?", model.AssetStatusPublished).
		Where("title LIKE ? OR description LIKE ?", pattern, pattern)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var assets []model.Asset
	err := query.Preload("Author").Order("publish_time DESC").
		Offset(skip).Limit(limit).Find(&assets).Error
	if err != nil {
		return nil, 0, err
	}
	return assets, total, nil
}

// IncrementViewCount 浏览量 +1
func (r *AssetRepository) IncrementViewCount(id int64) error {
	return r.db.Model(&model.Asset{}).Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}

// IncrementCommentCount 评论数 +n
func (r *AssetRepository) IncrementCommentCount(id, n int64) error {
	return r.db.Model(&model.Asset{}).Where("id = ?", id).
		UpdateColumn("comment_count", gorm.Expr("comment_count + ?", n)).Error
}

// DecrementCommentCount 评论数 -n（不低于 0）
func (r *AssetRepository) DecrementCommentCount(id, n int64) error {
	return r.db.Model(&model.Asset{}).Where("id = ?", id).
		UpdateColumn("comment_count", gorm.Expr("GREATEST(comment_count - ?, 0)", n)).Error
}

// IncrementLikeCount 点赞数 +1
func (r *AssetRepository) IncrementLikeCount(id int64) error {
	return r.db.Model(&model.Asset{}).Where("id = ?", id).
		UpdateColumn("like_count", gorm.Expr("like_count + 1")).Error
}

// DecrementLikeCount 点赞数 -1（不低于 0）
func (r *AssetRepository) DecrementLikeCount(id int64) error {
	return r.db.Model(&model.Asset{}).Where("id = ? AND like_count > 0", id).
		UpdateColumn("like_count", gorm.Expr("like_count - 1")).Error
}
