package service

import (
	"errors"

	"atelier-go/internal/api/dto"
	"atelier-go/internal/model"
	"atelier-go/internal/repository"

	"gorm.io/gorm"
)

var (
	ErrAlreadyLikedAsset = errors.New("您已经点赞过该资源了")
	ErrNotLikedAsset     = errors.New("您尚未点赞该资源")
)

type AssetLikeService struct {
	assetLikeRepo *repository.AssetLikeRepository
	assetRepo     *repository.AssetRepository
	userRepo      *repository.UserRepository
}

func NewAssetLikeService(
	assetLikeRepo *repository.AssetLikeRepository,
	assetRepo *repository.AssetRepository,
	userRepo *repository.UserRepository,
) *AssetLikeService {
	return &AssetLikeService{
		assetLikeRepo: assetLikeRepo,
		assetRepo:     assetRepo,
		userRepo:      userRepo,
	}
}

// Like 点赞资源
func (s *AssetLikeService) Like(userID, assetID int64) (*dto.AssetLikeStatusData, error) {
	asset, err := s.assetRepo.GetByID(assetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssetNotFound
		}
		return nil, err
	}

	created, err := s.assetLikeRepo.Create(userID, assetID)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, ErrAlreadyLikedAsset
	}

	_ = s.assetRepo.IncrementLikeCount(assetID)
	_ = s.userRepo.IncrementLikedCount(asset.AuthorID)

	return s.GetStatus(userID, assetID)
}

// Unlike 取消点赞
func (s *AssetLikeService) Unlike(userID, assetID int64) (*dto.AssetLikeStatusData, error) {
	asset, err := s.assetRepo.GetByID(assetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssetNotFound
		}
		return nil, err
	}

	deleted, err := s.assetLikeRepo.Delete(userID, assetID)
	if err != nil {
		return nil, err
	}
	if !deleted {
		return nil, ErrNotLikedAsset
	}

	_ = s.assetRepo.DecrementLikeCount(assetID)
	_ = s.userRepo.DecrementLikedCount(asset.AuthorID)

	return s.GetStatus(userID, assetID)
}

// GetStatus 查询点赞状态
func (s *AssetLikeService) GetStatus(userID, assetID int64) (*dto.AssetLikeStatusData, error) {
	liked, err := s.assetLikeRepo.Exists(userID, assetID)
	if err != nil {
		return nil, err
	}
	count, err := s.assetLikeRepo.CountByAsset(assetID)
	if err != nil {
		return nil, err
	}
	return &dto.AssetLikeStatusData{
		AssetID:   assetID,
		Liked:     liked,
		LikeCount: count,
	}, nil
}

// ListByUser 获取用户点赞过的资源列表
func (s *AssetLikeService) ListByUser(userID int64, page, pageSize int) (*dto.LikedAssetListData, error) {
	skip := (page - 1) * pageSize
	likes, total, err := s.assetLikeRepo.ListByUser(userID, skip, pageSize)
	if err != nil {
		return nil, err
	}
	return buildLikedAssetListData(likes, total, page, pageSize), nil
}

func buildLikedAssetListData(likes []model.AssetLike, total int64, page, pageSize int) *dto.LikedAssetListData {
	items := make([]dto.LikedAssetInfo, 0, len(likes))
	for i := range likes {
		items = append(items, dto.LikedAssetInfo{
			AssetID: likes[i].AssetID,
			LikedAt: likes[i].CreatedAt,
		})
	}

	totalPages := (total + int64(pageSize) - 1) / int64(pageSize)

	return &dto.LikedAssetListData{
		Likes:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}
