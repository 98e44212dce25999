package handler

import (
	"errors"

	"atelier-go/internal/api/dto"
	"atelier-go/internal/api/middleware"
	"atelier-go/internal/api/response"
	"atelier-go/internal/service"
	"atelier-go/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AssetHandler struct {
	assetService *service.AssetService
}

func NewAssetHandler(assetService *service.AssetService) *AssetHandler {
	return &AssetHandler{assetService: assetService}
}

// Create 登记资源
// @Summary 登记资源
// @Description 文件先直传 MinIO，再以对象名登记草稿记录
// @Tags 资源
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.AssetCreateRequest true "资源信息"
// @Success 201 {object} response.Response{data=dto.AssetInfo}
// @Failure 400 {object} response.ErrorResponse "文件对象不存在"
// @Router /assets [post]
func (h *AssetHandler) Create(c *gin.Context) {
	var req dto.AssetCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数无效: "+err.Error())
		return
	}

	userID, _ := middleware.GetCurrentUserID(c)

	info, err := h.assetService.Create(c.Request.Context(), userID, &req)
	if err != nil {
		handleAssetError(c, err)
		return
	}

	response.Created(c, "登记资源成功", info)
}

// Publish POST /api/v1/assets/:id/publish
func (h *AssetHandler) Publish(c *gin.Context) {
	assetID, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "无效的资源ID")
		return
	}

	userID, _ := middleware.GetCurrentUserID(c)

	info, err := h.assetService.Publish(c.Request.Context(), assetID, userID)
	if err != nil {
		handleAssetError(c, err)
		return
	}

	response.OK(c, "发布成功", info)
}

// GetDetail GET /api/v1/assets/:id
func (h *AssetHandler) GetDetail(c *gin.Context) {
	assetID, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "无效的资源ID")
		return
	}

	viewerID, _ := middleware.GetCurrentUserID(c)

	info, err := h.assetService.GetDetail(c.Request.Context(), assetID, viewerID)
	if err != nil {
		handleAssetError(c, err)
		return
	}

	response.OK(c, "获取成功", info)
}

// Update PUT /api/v1/assets/:id
func (h *AssetHandler) Update(c *gin.Context) {
	assetID, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "无效的资源ID")
		return
	}

	var req dto.AssetUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数无效: "+err.Error())
		return
	}

	userID, _ := middleware.GetCurrentUserID(c)

	info, err := h.assetService.Update(c.Request.Context(), assetID, userID, &req)
	if err != nil {
		handleAssetError(c, err)
		return
	}

	response.OK(c, "更新成功", info)
}

// Delete DELETE /api/v1/assets/:id
func (h *AssetHandler) Delete(c *gin.Context) {
	assetID, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "无效的资源ID")
		return
	}

	userID, _ := middleware.GetCurrentUserID(c)

	if err := h.assetService.Delete(c.Request.Context(), assetID, userID); err != nil {
		handleAssetError(c, err)
		return
	}

	response.OK(c, "删除成功", nil)
}

// Feed 获取信息流
// @Summary 信息流
// @Description 已发布资源按发布时间倒序，可按类型过滤
// @Tags 资源
// @Produce json
// @Param kind query string false "资源类型" Enums(image, audio, video, doc)
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} response.Response{data=dto.AssetListData}
// @Router /assets/feed [get]
func (h *AssetHandler) Feed(c *gin.Context) {
	page, pageSize := parsePagination(c)

	var kind *string
	if v := c.Query("kind"); v != "" {
		kind = &v
	}

	viewerID, _ := middleware.GetCurrentUserID(c)

	data, err := h.assetService.GetFeed(c.Request.Context(), viewerID, page, pageSize, kind)
	if err != nil {
		logger.Error("Get feed failed", zap.Error(err))
		response.InternalError(c, "获取信息流失败")
		return
	}

	response.OK(c, "获取信息流成功", data)
}

// ListMy GET /api/v1/assets/my/list
func (h *AssetHandler) ListMy(c *gin.Context) {
	userID, _ := middleware.GetCurrentUserID(c)
	page, pageSize := parsePagination(c)

	var status *string
	if v := c.Query("status"); v != "" {
		status = &v
	}

	data, err := h.assetService.GetMyAssets(c.Request.Context(), userID, page, pageSize, status)
	if err != nil {
		logger.Error("Get my assets failed", zap.Error(err))
		response.InternalError(c, "获取我的资源列表失败")
		return
	}

	response.OK(c, "获取我的资源列表成功", data)
}

func handleAssetError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAssetNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrAssetNoPermission):
		response.Forbidden(c, err.Error())
	case errors.Is(err, service.ErrObjectNotFound):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrAlreadyPublished):
		response.Conflict(c, err.Error())
	case errors.Is(err, service.ErrNoFieldsToUpdate):
		response.BadRequest(c, err.Error())
	default:
		logger.Error("Asset operation failed", zap.Error(err))
		response.InternalError(c, "操作失败，请稍后重试")
	}
}
