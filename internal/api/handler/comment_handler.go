package handler

import (
	"errors"
	"strconv"

	"atelier-go/internal/api/dto"
	"atelier-go/internal/api/middleware"
	"atelier-go/internal/api/response"
	"atelier-go/internal/service"
	"atelier-go/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CommentHandler struct {
	commentService *service.CommentService
	authService    *service.AuthService
}

func NewCommentHandler(commentService *service.CommentService, authService *service.AuthService) *CommentHandler {
	return &CommentHandler{commentService: commentService, authService: authService}
}

// Create 发表评论
// @Summary 发表评论
// @Description 向资源发表评论，带 parent_id 时回复顶层评论
// @Tags 评论
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param asset_id path int true "资源ID"
// @Param request body dto.CommentCreateRequest true "评论内容"
// @Success 200 {object} response.Response{data=dto.CommentInfo}
// @Router /comments/{asset_id} [post]
func (h *CommentHandler) Create(c *gin.Context) {
	assetID, err := strconv.ParseInt(c.Param("asset_id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "无效的资源ID")
		return
	}

	var req dto.CommentCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数无效: "+err.Error())
		return
	}

	userID, _ := middleware.GetCurrentUserID(c)

	info, err := h.commentService.Create(userID, assetID, &req)
	if err != nil {
		handleCommentError(c, err)
		return
	}

	response.OK(c, "发表评论成功", info)
}

// Update PUT /api/v1/comments/:id
func (h *CommentHandler) Update(c *gin.Context) {
	commentID, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "无效的评论ID")
		return
	}

	var req dto.CommentUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数无效: "+err.Error())
		return
	}

	userID, _ := middleware.GetCurrentUserID(c)

	info, err := h.commentService.Update(commentID, userID, &req)
	if err != nil {
		handleCommentError(c, err)
		return
	}

	response.OK(c, "更新评论成功", info)
}

// Delete DELETE /api/v1/comments/:id
func (h *CommentHandler) Delete(c *gin.Context) {
	commentID, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "无效的评论ID")
		return
	}

	userID, _ := middleware.GetCurrentUserID(c)
	currentUser, err := h.authService.GetCurrentUser(userID)
	if err != nil {
		handleCommentError(c, err)
		return
	}

	if _, err := h.commentService.Delete(commentID, currentUser); err != nil {
		handleCommentError(c, err)
		return
	}

	response.OK(c, "删除评论成功", nil)
}

// ListByAsset GET /api/v1/comments/asset/:asset_id
func (h *CommentHandler) ListByAsset(c *gin.Context) {
	assetID, err := strconv.ParseInt(c.Param("asset_id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "无效的资源ID")
		return
	}

	page, pageSize := parsePagination(c)

	var parentID *int64
	if v := c.Query("parent_id"); v != "" {
		if pid, err := strconv.ParseInt(v, 10, 64); err == nil {
			parentID = &pid
		}
	}

	// 未登录 viewerID 为 0，viewer_liked 一律为 false
	viewerID, _ := middleware.GetCurrentUserID(c)

	data, err := h.commentService.ListByAsset(assetID, parentID, viewerID, page, pageSize)
	if err != nil {
		handleCommentError(c, err)
		return
	}

	response.OK(c, "获取评论列表成功", data)
}

// ListReplies GET /api/v1/comments/:id/replies
func (h *CommentHandler) ListReplies(c *gin.Context) {
	commentID, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "无效的评论ID")
		return
	}

	page, pageSize := parsePagination(c)
	viewerID, _ := middleware.GetCurrentUserID(c)

	data, err := h.commentService.ListReplies(commentID, viewerID, page, pageSize)
	if err != nil {
		handleCommentError(c, err)
		return
	}

	response.OK(c, "获取回复列表成功", data)
}

// ListMyComments GET /api/v1/comments/my/list
func (h *CommentHandler) ListMyComments(c *gin.Context) {
	userID, _ := middleware.GetCurrentUserID(c)
	page, pageSize := parsePagination(c)

	data, err := h.commentService.ListByUser(userID, page, pageSize)
	if err != nil {
		logger.Error("Get my comments failed", zap.Error(err))
		response.InternalError(c, "获取我的评论列表失败")
		return
	}

	response.OK(c, "获取我的评论列表成功", data)
}

func handleCommentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCommentNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrCommentNoPermission):
		response.Forbidden(c, err.Error())
	case errors.Is(err, service.ErrAssetNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrParentNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrParentAssetMismatch):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrReplyToReply):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrUserNotFound):
		response.Unauthorized(c, err.Error())
	default:
		logger.Error("Comment operation failed", zap.Error(err))
		response.InternalError(c, "操作失败，请稍后重试")
	}
}
