package repository

import (
	"atelier-go/internal/model"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByID 根据 ID 查询用户（排除已删除）
func (r *UserRepository) GetByID(id int64) (*model.User, error) {
	var user model.User
	err := r.db.Where("id = ? AND is_delete = 0", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByIDIncludeDeleted 根据 ID 查询用户（包含已删除，管理员用）
func (r *UserRepository) GetByIDIncludeDeleted(id int64) (*model.User, error) {
	var user model.User
	err := r.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByUsername 根据用户名查询用户（排除已删除）
func (r *UserRepository) GetByUsername(username string) (*model.User, error) {
	var user model.User
	err := r.db.Where("user_name = ? AND is_delete = 0", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create 创建用户
func (r *UserRepository) Create(user *model.User) error {
	return r.db.Create(user).Error
}

// Update 更新用户字段（传入 map，只更新给定字段）
func (r *UserRepository) Update(id int64, updates map[string]interface{}) (*model.User, error) {
	result := r.db.Model(&model.User{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	var user model.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ExistsByUsername 检查用户名是否已存在
func (r *UserRepository) ExistsByUsername(username string) (bool, error) {
	var count int64
	err := r.db.Model(&model.User{}).
		Where("user_name = ? AND is_delete = 0", username).Count(&count).Error
	return count > 0, err
}

// ListWithFilters 分页查询用户列表（管理员用，支持用户名/角色过滤）
func (r *UserRepository) ListWithFilters(skip, limit int, username, userRole *string) ([]model.User, int64, error) {
	query := r.db.Model(&model.User{}).Where("is_delete = 0")

	if username != nil && *username != "" {
		query = query.Where("user_name LIKE ?", "%"+*username+"%")
	}
	if userRole != nil && *userRole != "" {
		query = query.Where("user_role = ?", *userRole)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []model.User
	err := query.Order("id ASC").Offset(skip).Limit(limit).Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// IncrementAssetCount 作品数 +1
func (r *UserRepository) IncrementAssetCount(id int64) error {
	return r.db.Model(&model.User{}).Where("id = ?", id).
		UpdateColumn("asset_count", gorm.Expr("asset_count + 1")).Error
}

// DecrementAssetCount 作品数 -1（不低于 0）
func (r *UserRepository) DecrementAssetCount(id int64) error {
	return r.db.Model(&model.User{}).Where("id = ? AND asset_count > 0", id).
		UpdateColumn("asset_count", gorm.Expr("asset_count - 1")).Error
}

// IncrementLikedCount 被点赞总数 +1
func (r *UserRepository) IncrementLikedCount(id int64) error {
	return r.db.Model(&model.User{}).Where("id = ?", id).
		UpdateColumn("liked_count", gorm.Expr("liked_count + 1")).Error
}

// DecrementLikedCount 被点赞总数 -1（不低于 0）
func (r *UserRepository) DecrementLikedCount(id int64) error {
	return r.db.Model(&model.User{}).Where("id = ? AND liked_count > 0", id).
		UpdateColumn("liked_count", gorm.Expr("liked_count - 1")).Error
}
