package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"atelier-go/internal/api/dto"
	"atelier-go/internal/config"
	infraES "atelier-go/internal/infra/elasticsearch"
	infraMinio "atelier-go/internal/infra/minio"
	"atelier-go/internal/model"
	"atelier-go/internal/repository"
	"atelier-go/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrAssetNotFound     = errors.New("资源不存在")
	ErrAssetNoPermission = errors.New("没有权限操作该资源")
	ErrObjectNotFound    = errors.New("文件对象不存在，请先上传")
	ErrAlreadyPublished  = errors.New("资源已发布")
	ErrNoFieldsToUpdate  = errors.New("没有需要更新的字段")
)

type AssetService struct {
	assetRepo       *repository.AssetRepository
	userRepo        *repository.UserRepository
	commentRepo     *repository.CommentRepository
	commentLikeRepo *repository.CommentLikeRepository
	assetLikeRepo   *repository.AssetLikeRepository
}

func NewAssetService(
	assetRepo *repository.AssetRepository,
	userRepo *repository.UserRepository,
	commentRepo *repository.CommentRepository,
	commentLikeRepo *repository.CommentLikeRepository,
	assetLikeRepo *repository.AssetLikeRepository,
) *AssetService {
	return &AssetService{
		assetRepo:       assetRepo,
		userRepo:        userRepo,
		commentRepo:     commentRepo,
		commentLikeRepo: commentLikeRepo,
		assetLikeRepo:   assetLikeRepo,
	}
}

// Create 登记资源：文件本体由客户端直传 MinIO，这里校验对象已存在后建草稿记录
func (s *AssetService) Create(ctx context.Context, authorID int64, req *dto.AssetCreateRequest) (*dto.AssetInfo, error) {
	exists, err := infraMinio.ObjectExists(ctx, infraMinio.AssetBucket, req.ObjectName)
	if err != nil {
		return nil, fmt.Errorf("检查文件对象失败: %w", err)
	}
	if !exists {
		return nil, ErrObjectNotFound
	}

	asset := &model.Asset{
		AuthorID:    authorID,
		Title:       req.Title,
		Description: req.Description,
		Kind:        req.Kind,
		ObjectName:  req.ObjectName,
		CoverObject: req.CoverObject,
		FileSize:    req.FileSize,
		Status:      model.AssetStatusDraft,
	}

	if err := s.assetRepo.Create(asset); err != nil {
		return nil, err
	}

	return s.toAssetInfo(ctx, asset, false), nil
}

// Publish 发布草稿：写发布时间、计入作者作品数并同步到搜索索引
func (s *AssetService) Publish(ctx context.Context, assetID, currentUserID int64) (*dto.AssetInfo, error) {
	asset, err := s.assetRepo.GetByIDAndAuthor(assetID, currentUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssetNoPermission
		}
		return nil, err
	}
	if asset.Status == model.AssetStatusPublished {
		return nil, ErrAlreadyPublished
	}

	now := time.Now().Unix()
	asset, err = s.assetRepo.Update(assetID, map[string]interface{}{
		"status":       model.AssetStatusPublished,
		"publish_time": now,
	})
	if err != nil {
		return nil, err
	}

	_ = s.userRepo.IncrementAssetCount(currentUserID)

	s.syncToES(ctx, asset)

	return s.toAssetInfo(ctx, asset, false), nil
}

// GetDetail 获取资源详情（已发布的资源自动增加浏览量）
// viewerID 不为 0 时附带当前用户的点赞状态
func (s *AssetService) GetDetail(ctx context.Context, assetID, viewerID int64) (*dto.AssetInfo, error) {
	asset, err := s.assetRepo.GetByIDWithAuthor(assetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssetNotFound
		}
		return nil, err
	}

	if asset.Status == model.AssetStatusPublished {
		_ = s.assetRepo.IncrementViewCount(assetID)
		asset.ViewCount++
	}

	info := s.toAssetInfo(ctx, asset, true)
	if viewerID != 0 {
		liked, err := s.assetLikeRepo.Exists(viewerID, assetID)
		if err != nil {
			logger.Warn("Check viewer like status failed",
				zap.Int64("asset_id", assetID), zap.Error(err))
		}
		info.ViewerLiked = liked
	}
	return info, nil
}

// Update 更新资源信息（仅作者本人）
func (s *AssetService) Update(ctx context.Context, assetID, currentUserID int64, req *dto.AssetUpdateRequest) (*dto.AssetInfo, error) {
	if _, err := s.assetRepo.GetByIDAndAuthor(assetID, currentUserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssetNoPermission
		}
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.CoverObject != nil {
		updates["cover_object"] = *req.CoverObject
	}

	if len(updates) == 0 {
		return nil, ErrNoFieldsToUpdate
	}

	asset, err := s.assetRepo.Update(assetID, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssetNotFound
		}
		return nil, err
	}

	if asset.Status == model.AssetStatusPublished {
		s.syncToES(ctx, asset)
	}

	return s.toAssetInfo(ctx, asset, false), nil
}

// Delete 删除资源（仅作者本人），级联清理评论及其点赞记录
func (s *AssetService) Delete(ctx context.Context, assetID, currentUserID int64) error {
	asset, err := s.assetRepo.GetByIDAndAuthor(assetID, currentUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssetNoPermission
		}
		return err
	}

	deletedCommentIDs, err := s.commentRepo.DeleteByAsset(assetID)
	if err != nil {
		return err
	}
	if len(deletedCommentIDs) > 0 {
		if err := s.commentLikeRepo.DeleteByComments(deletedCommentIDs); err != nil {
			logger.Warn("Delete comment likes of removed asset failed",
				zap.Int64("asset_id", assetID), zap.Error(err))
		}
	}
	if err := s.assetLikeRepo.DeleteByAsset(assetID); err != nil {
		logger.Warn("Delete asset likes of removed asset failed",
			zap.Int64("asset_id", assetID), zap.Error(err))
	}

	if err := s.assetRepo.Delete(assetID); err != nil {
		return err
	}

	if asset.Status == model.AssetStatusPublished {
		_ = s.userRepo.DecrementAssetCount(currentUserID)
		if err := infraES.DeleteAsset(ctx, assetID); err != nil {
			logger.Warn("Remove asset from ES failed", zap.Int64("asset_id", assetID), zap.Error(err))
		}
	}

	return nil
}

// GetFeed 获取信息流（已发布，按发布时间倒序，可按类型过滤）
// viewerID 不为 0 时批量附带当前用户的点赞状态
func (s *AssetService) GetFeed(ctx context.Context, viewerID int64, page, pageSize int, kind *string) (*dto.AssetListData, error) {
	skip := (page - 1) * pageSize
	assets, total, err := s.assetRepo.ListFeed(skip, pageSize, kind)
	if err != nil {
		return nil, err
	}

	data := s.buildAssetListData(ctx, assets, total, page, pageSize, true)

	if viewerID != 0 && len(data.Assets) > 0 {
		ids := make([]int64, 0, len(data.Assets))
		for i := range data.Assets {
			ids = append(ids, data.Assets[i].ID)
		}
		liked, err := s.assetLikeRepo.BatchCheckLiked(viewerID, ids)
		if err != nil {
			logger.Warn("Batch check viewer like status failed", zap.Error(err))
		} else {
			for i := range data.Assets {
				data.Assets[i].ViewerLiked = liked[data.Assets[i].ID]
			}
		}
	}

	return data, nil
}

// GetMyAssets 获取当前用户的资源列表（含草稿）
func (s *AssetService) GetMyAssets(ctx context.Context, userID int64, page, pageSize int, status *string) (*dto.AssetListData, error) {
	skip := (page - 1) * pageSize
	assets, total, err := s.assetRepo.ListByAuthor(userID, skip, pageSize, status)
	if err != nil {
		return nil, err
	}
	return s.buildAssetListData(ctx, assets, total, page, pageSize, false), nil
}

// syncToES 同步到搜索索引，失败只记日志不影响主流程
func (s *AssetService) syncToES(ctx context.Context, asset *model.Asset) {
	authorName := asset.Author.UserName
	if authorName == "" {
		if author, err := s.userRepo.GetByID(asset.AuthorID); err == nil {
			authorName = author.UserName
		}
	}
	if err := infraES.SyncAsset(ctx, asset, authorName); err != nil {
		logger.Warn("Sync asset to ES failed", zap.Int64("asset_id", asset.ID), zap.Error(err))
	}
}

// resolveObjectURL 对象名换取预签名下载地址
func resolveObjectURL(ctx context.Context, objectName string) string {
	if objectName == "" {
		return ""
	}
	url, err := infraMinio.GetPresignedURL(ctx, infraMinio.AssetBucket, objectName, config.GetMinIO().PresignExpiry())
	if err != nil {
		logger.Warn("Presign object URL failed", zap.String("object", objectName), zap.Error(err))
		return ""
	}
	return url
}

func (s *AssetService) toAssetInfo(ctx context.Context, asset *model.Asset, includeAuthor bool) *dto.AssetInfo {
	info := &dto.AssetInfo{
		ID:           asset.ID,
		AuthorID:     asset.AuthorID,
		Title:        asset.Title,
		Description:  asset.Description,
		Kind:         asset.Kind,
		FileURL:      resolveObjectURL(ctx, asset.ObjectName),
		CoverURL:     resolveObjectURL(ctx, asset.CoverObject),
		FileSize:     asset.FileSize,
		Status:       asset.Status,
		ViewCount:    asset.ViewCount,
		LikeCount:    asset.LikeCount,
		CommentCount: asset.CommentCount,
		PublishTime:  asset.PublishTime,
		CreatedAt:    asset.CreatedAt,
		UpdatedAt:    asset.UpdatedAt,
	}

	if includeAuthor && asset.Author.ID != 0 {
		info.Author = &dto.AuthorBrief{
			ID:       asset.Author.ID,
			Username: asset.Author.UserName,
			Avatar:   asset.Author.Avatar,
		}
	}

	return info
}

func (s *AssetService) buildAssetListData(ctx context.Context, assets []model.Asset, total int64, page, pageSize int, includeAuthor bool) *dto.AssetListData {
	items := make([]dto.AssetInfo, 0, len(assets))
	for i := range assets {
		items = append(items, *s.toAssetInfo(ctx, &assets[i], includeAuthor))
	}

	totalPages := (total + int64(pageSize) - 1) / int64(pageSize)

	return &dto.AssetListData{
		Assets:     items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}
