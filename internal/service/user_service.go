package service

import (
	"errors"

	"atelier-go/internal/api/dto"
	"atelier-go/internal/repository"

	"gorm.io/gorm"
)

var ErrForbidden = errors.New("没有权限执行该操作")

type UserService struct {
	userRepo *repository.UserRepository
}

func NewUserService(userRepo *repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// GetUserByID 获取用户信息
func (s *UserService) GetUserByID(id int64) (*dto.UserInfo, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return toUserInfo(user), nil
}

// UpdateUser 更新用户资料（本人或管理员）
func (s *UserService) UpdateUser(targetID int64, currentUser *dto.UserInfo, req *dto.UserUpdateRequest) (*dto.UserInfo, error) {
	if currentUser.ID != targetID && currentUser.UserRole != "admin" {
		return nil, ErrForbidden
	}

	updates := make(map[string]interface{})
	if req.Avatar != nil {
		updates["avatar"] = *req.Avatar
	}
	if req.Bio != nil {
		updates["bio"] = *req.Bio
	}

	if len(updates) == 0 {
		return s.GetUserByID(targetID)
	}

	user, err := s.userRepo.Update(targetID, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return toUserInfo(user), nil
}

// SoftDeleteUser 软删除用户（管理员）
func (s *UserService) SoftDeleteUser(userID int64) error {
	_, err := s.userRepo.Update(userID, map[string]interface{}{"is_delete": 1})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

// RestoreUser 恢复已删除用户（管理员）
func (s *UserService) RestoreUser(userID int64) error {
	user, err := s.userRepo.GetByIDIncludeDeleted(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	_, err = s.userRepo.Update(user.ID, map[string]interface{}{"is_delete": 0})
	return err
}

// SetAdminRole 设置管理员角色（管理员）
func (s *UserService) SetAdminRole(userID int64) (*dto.UserInfo, error) {
	user, err := s.userRepo.Update(userID, map[string]interface{}{"user_role": "admin"})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return toUserInfo(user), nil
}

// ListUsers 获取用户列表（管理员，带筛选和分页）
func (s *UserService) ListUsers(page, pageSize int, username, userRole *string) (*dto.UserListData, error) {
	skip := (page - 1) * pageSize
	users, total, err := s.userRepo.ListWithFilters(skip, pageSize, username, userRole)
	if err != nil {
		return nil, err
	}

	items := make([]dto.UserInfo, 0, len(users))
	for i := range users {
		items = append(items, *toUserInfo(&users[i]))
	}

	totalPages := (total + int64(pageSize) - 1) / int64(pageSize)

	return &dto.UserListData{
		Users:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}
