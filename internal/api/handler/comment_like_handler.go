package handler

import (
	"errors"

	"atelier-go/internal/api/middleware"
	"atelier-go/internal/api/response"
	"atelier-go/internal/service"
	"atelier-go/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CommentLikeHandler struct {
	commentLikeService *service.CommentLikeService
}

func NewCommentLikeHandler(commentLikeService *service.CommentLikeService) *CommentLikeHandler {
	return &CommentLikeHandler{commentLikeService: commentLikeService}
}

// Like 点赞评论
// @Summary 点赞评论
// @Description 重复点赞幂等（已点赞直接返回当前状态）
// @Tags 评论点赞
// @Produce json
// @Security BearerAuth
// @Param id path int true "评论ID"
// @Success 200 {object} response.Response{data=dto.CommentLikeStatusData}
// @Failure 404 {object} response.ErrorResponse "评论不存在"
// @Router /comments/{id}/like [post]
func (h *CommentLikeHandler) Like(c *gin.Context) {
	commentID, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "无效的评论ID")
		return
	}

	userID, _ := middleware.GetCurrentUserID(c)

	data, err := h.commentLikeService.Like(c.Request.Context(), commentID, userID)
	if err != nil {
		handleCommentLikeError(c, err)
		return
	}

	response.OK(c, "点赞成功", data)
}

// Unlike DELETE /api/v1/comments/:id/like
func (h *CommentLikeHandler) Unlike(c *gin.Context) {
	commentID, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "无效的评论ID")
		return
	}

	userID, _ := middleware.GetCurrentUserID(c)

	data, err := h.commentLikeService.Unlike(c.Request.Context(), commentID, userID)
	if err != nil {
		handleCommentLikeError(c, err)
		return
	}

	response.OK(c, "取消点赞成功", data)
}

// GetStatus GET /api/v1/comments/:id/like
func (h *CommentLikeHandler) GetStatus(c *gin.Context) {
	commentID, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "无效的评论ID")
		return
	}

	userID, _ := middleware.GetCurrentUserID(c)

	data, err := h.commentLikeService.GetStatus(commentID, userID)
	if err != nil {
		handleCommentLikeError(c, err)
		return
	}

	response.OK(c, "获取点赞状态成功", data)
}

func handleCommentLikeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCommentNotFound):
		response.NotFound(c, err.Error())
	default:
		logger.Error("Comment like operation failed", zap.Error(err))
		response.InternalError(c, "操作失败，请稍后重试")
	}
}
