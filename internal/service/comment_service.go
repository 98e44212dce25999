package service

import (
	"errors"

	"atelier-go/internal/api/dto"
	"atelier-go/internal/model"
	"atelier-go/internal/repository"
	"atelier-go/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrCommentNotFound     = errors.New("评论不存在")
	ErrCommentNoPermission = errors.New("没有权限操作该评论")
	ErrParentNotFound      = errors.New("父评论不存在")
	ErrParentAssetMismatch = errors.New("父评论不属于该资源")
	ErrReplyToReply        = errors.New("只支持一层回复，不能回复回复")
)

type CommentService struct {
	commentRepo     *repository.CommentRepository
	commentLikeRepo *repository.CommentLikeRepository
	assetRepo       *repository.AssetRepository
}

func NewCommentService(
	commentRepo *repository.CommentRepository,
	commentLikeRepo *repository.CommentLikeRepository,
	assetRepo *repository.AssetRepository,
) *CommentService {
	return &CommentService{
		commentRepo:     commentRepo,
		commentLikeRepo: commentLikeRepo,
		assetRepo:       assetRepo,
	}
}

// Create 发表评论（回复只能指向同一资源下的顶层评论）
func (s *CommentService) Create(userID, assetID int64, req *dto.CommentCreateRequest) (*dto.CommentInfo, error) {
	if _, err := s.assetRepo.GetByID(assetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssetNotFound
		}
		return nil, err
	}

	if req.ParentID != nil {
		parent, err := s.commentRepo.GetByID(*req.ParentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrParentNotFound
			}
			return nil, err
		}
		if parent.AssetID != assetID {
			return nil, ErrParentAssetMismatch
		}
		if parent.ParentID != nil {
			return nil, ErrReplyToReply
		}
	}

	comment := &model.Comment{
		UserID:   userID,
		AssetID:  assetID,
		Content:  req.Content,
		ParentID: req.ParentID,
	}

	if err := s.commentRepo.Create(comment); err != nil {
		return nil, err
	}

	_ = s.assetRepo.IncrementCommentCount(assetID, 1)

	return toCommentInfo(comment, 0), nil
}

// Update 更新评论内容（仅评论作者，更新后标记 edited）
func (s *CommentService) Update(commentID, userID int64, req *dto.CommentUpdateRequest) (*dto.CommentInfo, error) {
	if err := s.commentRepo.Update(commentID, userID, req.Content); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNoPermission
		}
		return nil, err
	}

	comment, err := s.commentRepo.GetByID(commentID)
	if err != nil {
		return nil, err
	}

	return toCommentInfo(comment, 0), nil
}

// Delete 删除评论（评论作者或管理员），级联删除回复及全部点赞记录
// 返回所属资源 ID
func (s *CommentService) Delete(commentID int64, currentUser *dto.UserInfo) (int64, error) {
	comment, err := s.commentRepo.GetByID(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrCommentNotFound
		}
		return 0, err
	}

	if comment.UserID != currentUser.ID && currentUser.UserRole != "admin" {
		return 0, ErrCommentNoPermission
	}

	deletedIDs, err := s.commentRepo.DeleteCascade(commentID)
	if err != nil {
		return 0, err
	}

	if len(deletedIDs) > 0 {
		if err := s.commentLikeRepo.DeleteByComments(deletedIDs); err != nil {
			logger.Warn("Delete likes of removed comments failed",
				zap.Int64("comment_id", commentID), zap.Error(err))
		}
		_ = s.assetRepo.DecrementCommentCount(comment.AssetID, int64(len(deletedIDs)))
	}

	return comment.AssetID, nil
}

// ListByAsset 获取资源的评论列表（parentID 为 nil 时只取顶层评论）
func (s *CommentService) ListByAsset(assetID int64, parentID *int64, viewerID int64, page, pageSize int) (*dto.CommentListData, error) {
	if _, err := s.assetRepo.GetByID(assetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssetNotFound
		}
		return nil, err
	}

	skip := (page - 1) * pageSize
	comments, total, err := s.commentRepo.ListByAsset(assetID, parentID, skip, pageSize)
	if err != nil {
		return nil, err
	}

	return s.buildCommentListData(comments, total, viewerID, page, pageSize)
}

// ListReplies 获取评论的回复列表
func (s *CommentService) ListReplies(commentID, viewerID int64, page, pageSize int) (*dto.CommentListData, error) {
	if _, err := s.commentRepo.GetByID(commentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}

	skip := (page - 1) * pageSize
	comments, total, err := s.commentRepo.ListReplies(commentID, skip, pageSize)
	if err != nil {
		return nil, err
	}

	return s.buildCommentListData(comments, total, viewerID, page, pageSize)
}

// ListByUser 获取用户的评论列表
func (s *CommentService) ListByUser(userID int64, page, pageSize int) (*dto.CommentListData, error) {
	skip := (page - 1) * pageSize
	comments, total, err := s.commentRepo.ListByUser(userID, skip, pageSize)
	if err != nil {
		return nil, err
	}

	return s.buildCommentListData(comments, total, 0, page, pageSize)
}

func (s *CommentService) buildCommentListData(comments []model.Comment, total int64, viewerID int64, page, pageSize int) (*dto.CommentListData, error) {
	var likedMap map[int64]bool
	if viewerID != 0 && len(comments) > 0 {
		ids := make([]int64, 0, len(comments))
		for i := range comments {
			ids = append(ids, comments[i].ID)
		}
		var err error
		if likedMap, err = s.commentLikeRepo.BatchCheckLiked(viewerID, ids); err != nil {
			return nil, err
		}
	}

	items := make([]dto.CommentInfo, 0, len(comments))
	for i := range comments {
		repliesCount, _ := s.commentRepo.CountReplies(comments[i].ID)
		info := toCommentInfo(&comments[i], repliesCount)

		if comments[i].User.ID != 0 {
			info.Username = &comments[i].User.UserName
			info.Avatar = comments[i].User.Avatar
		}
		if likedMap != nil {
			info.ViewerLiked = likedMap[comments[i].ID]
		}

		items = append(items, *info)
	}

	totalPages := (total + int64(pageSize) - 1) / int64(pageSize)

	return &dto.CommentListData{
		Comments:   items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

func toCommentInfo(c *model.Comment, repliesCount int64) *dto.CommentInfo {
	return &dto.CommentInfo{
		ID:           c.ID,
		UserID:       c.UserID,
		AssetID:      c.AssetID,
		Content:      c.Content,
		ParentID:     c.ParentID,
		LikeCount:    c.LikeCount,
		Edited:       c.Edited,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
		RepliesCount: repliesCount,
	}
}
