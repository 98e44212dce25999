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

type AssetLikeHandler struct {
	assetLikeService *service.AssetLikeService
}

func NewAssetLikeHandler(assetLikeService *service.AssetLikeService) *AssetLikeHandler {
	return &AssetLikeHandler{assetLikeService: assetLikeService}
}

// Like POST /api/v1/assets/:id/like
func (h *AssetLikeHandler) Like(c *gin.Context) {
	assetID, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "无效的资源ID")
		return
	}

	userID, _ := middleware.GetCurrentUserID(c)

	data, err := h.assetLikeService.Like(userID, assetID)
	if err != nil {
		handleAssetLikeError(c, err)
		return
	}

	response.OK(c, "点赞成功", data)
}

// Unlike DELETE /api/v1/assets/:id/like
func (h *AssetLikeHandler) Unlike(c *gin.Context) {
	assetID, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "无效的资源ID")
		return
	}

	userID, _ := middleware.GetCurrentUserID(c)

	data, err := h.assetLikeService.Unlike(userID, assetID)
	if err != nil {
		handleAssetLikeError(c, err)
		return
	}

	response.OK(c, "取消点赞成功", data)
}

// GetStatus GET /api/v1/assets/:id/like
func (h *AssetLikeHandler) GetStatus(c *gin.Context) {
	assetID, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "无效的资源ID")
		return
	}

	userID, _ := middleware.GetCurrentUserID(c)

	data, err := h.assetLikeService.GetStatus(userID, assetID)
	if err != nil {
		handleAssetLikeError(c, err)
		return
	}

	response.OK(c, "获取点赞状态成功", data)
}

// ListMyLikes GET /api/v1/assets/my/likes
func (h *AssetLikeHandler) ListMyLikes(c *gin.Context) {
	userID, _ := middleware.GetCurrentUserID(c)
	page, pageSize := parsePagination(c)

	data, err := h.assetLikeService.ListByUser(userID, page, pageSize)
	if err != nil {
		logger.Error("Get my liked assets failed", zap.Error(err))
		response.InternalError(c, "获取点赞列表失败")
		return
	}

	response.OK(c, "获取点赞列表成功", data)
}

func handleAssetLikeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAssetNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrAlreadyLikedAsset):
		response.Conflict(c, err.Error())
	case errors.Is(err, service.ErrNotLikedAsset):
		response.BadRequest(c, err.Error())
	default:
		logger.Error("Asset like operation failed", zap.Error(err))
		response.InternalError(c, "操作失败，请稍后重试")
	}
}
