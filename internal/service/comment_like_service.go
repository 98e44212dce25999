package service

import (
	"context"
	"errors"

	"atelier-go/internal/api/dto"
	"atelier-go/internal/realtime"
	"atelier-go/internal/repository"
	"atelier-go/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CommentLikeService 评论点赞：落库、重算权威计数、再广播变更。
// 同时充当实时会话的 LikeWriter 与回源函数。
type CommentLikeService struct {
	commentLikeRepo *repository.CommentLikeRepository
	commentRepo     *repository.CommentRepository
	channel         realtime.Channel
}

func NewCommentLikeService(
	commentLikeRepo *repository.CommentLikeRepository,
	commentRepo *repository.CommentRepository,
	channel realtime.Channel,
) *CommentLikeService {
	return &CommentLikeService{
		commentLikeRepo: commentLikeRepo,
		commentRepo:     commentRepo,
		channel:         channel,
	}
}

// CreateLike 写入点赞关系（realtime.LikeWriter 实现）
// 唯一性冲突返回 realtime.ErrAlreadyLiked，由调用方按成功处理
func (s *CommentLikeService) CreateLike(ctx context.Context, commentID, viewerID int64) error {
	if _, err := s.commentRepo.GetByID(commentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCommentNotFound
		}
		return err
	}

	created, err := s.commentLikeRepo.Create(viewerID, commentID)
	if err != nil {
		return err
	}
	if !created {
		return realtime.ErrAlreadyLiked
	}

	s.refreshAndPublish(ctx, realtime.EventInsert, commentID, viewerID)
	return nil
}

// DeleteLike 删除点赞关系（realtime.LikeWriter 实现）
// 关系不存在是空操作，直接返回 nil
func (s *CommentLikeService) DeleteLike(ctx context.Context, commentID, viewerID int64) error {
	deleted, err := s.commentLikeRepo.Delete(viewerID, commentID)
	if err != nil {
		return err
	}
	if !deleted {
		return nil
	}

	s.refreshAndPublish(ctx, realtime.EventDelete, commentID, viewerID)
	return nil
}

// Like HTTP 点赞入口，返回最新状态
func (s *CommentLikeService) Like(ctx context.Context, commentID, userID int64) (*dto.CommentLikeStatusData, error) {
	err := s.CreateLike(ctx, commentID, userID)
	if err != nil && !errors.Is(err, realtime.ErrAlreadyLiked) {
		return nil, err
	}
	return s.GetStatus(commentID, userID)
}

// Unlike HTTP 取消点赞入口，返回最新状态
func (s *CommentLikeService) Unlike(ctx context.Context, commentID, userID int64) (*dto.CommentLikeStatusData, error) {
	if _, err := s.commentRepo.GetByID(commentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}

	if err := s.DeleteLike(ctx, commentID, userID); err != nil {
		return nil, err
	}
	return s.GetStatus(commentID, userID)
}

// GetStatus 查询单条评论的点赞状态
func (s *CommentLikeService) GetStatus(commentID, userID int64) (*dto.CommentLikeStatusData, error) {
	liked, err := s.commentLikeRepo.Exists(userID, commentID)
	if err != nil {
		return nil, err
	}
	count, err := s.commentLikeRepo.CountByComment(commentID)
	if err != nil {
		return nil, err
	}
	return &dto.CommentLikeStatusData{
		CommentID: commentID,
		Liked:     liked,
		LikeCount: count,
	}, nil
}

// SeedStates 取某资源全部评论的点赞快照，用于初始化实时会话
func (s *CommentLikeService) SeedStates(assetID, viewerID int64) ([]realtime.SeedComment, error) {
	ids, err := s.commentRepo.ListIDsByAsset(assetID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	counts, err := s.commentLikeRepo.CountByComments(ids)
	if err != nil {
		return nil, err
	}
	liked, err := s.commentLikeRepo.BatchCheckLiked(viewerID, ids)
	if err != nil {
		return nil, err
	}

	seeds := make([]realtime.SeedComment, 0, len(ids))
	for _, id := range ids {
		seeds = append(seeds, realtime.SeedComment{
			ID:          id,
			LikeCount:   counts[id],
			ViewerLiked: liked[id],
		})
	}
	return seeds, nil
}

// ReloadStates 回源函数（realtime.ReloadFunc 实现）：断线重连后重取权威状态
func (s *CommentLikeService) ReloadStates(ctx context.Context, viewerID int64, commentIDs []int64) (map[int64]realtime.CommentLikeState, error) {
	if len(commentIDs) == 0 {
		return map[int64]realtime.CommentLikeState{}, nil
	}

	counts, err := s.commentLikeRepo.CountByComments(commentIDs)
	if err != nil {
		return nil, err
	}
	liked, err := s.commentLikeRepo.BatchCheckLiked(viewerID, commentIDs)
	if err != nil {
		return nil, err
	}

	states := make(map[int64]realtime.CommentLikeState, len(commentIDs))
	for _, id := range commentIDs {
		states[id] = realtime.CommentLikeState{
			Liked: liked[id],
			Count: counts[id],
		}
	}
	return states, nil
}

// refreshAndPublish 重算权威计数写回评论表，再向通道广播变更。
// 两步都是尽力而为：失败只记日志，点赞关系本身已落库。
func (s *CommentLikeService) refreshAndPublish(ctx context.Context, eventType realtime.EventType, commentID, userID int64) {
	count, err := s.commentLikeRepo.CountByComment(commentID)
	if err != nil {
		logger.Warn("Recount comment likes failed", zap.Int64("comment_id", commentID), zap.Error(err))
		return
	}

	if err := s.commentRepo.SetLikeCount(commentID, count); err != nil {
		logger.Warn("Persist comment like count failed", zap.Int64("comment_id", commentID), zap.Error(err))
	}

	event := &realtime.Event{
		Type:  eventType,
		Table: realtime.TableCommentLikes,
		Row: realtime.EventRow{
			CommentID: commentID,
			UserID:    userID,
			LikeCount: count,
		},
	}
	if err := s.channel.Publish(ctx, event); err != nil {
		logger.Warn("Publish comment like event failed",
			zap.Int64("comment_id", commentID), zap.String("type", string(eventType)), zap.Error(err))
	}
}
