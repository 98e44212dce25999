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

type DropHandler struct {
	dropService *service.DropService
}

func NewDropHandler(dropService *service.DropService) *DropHandler {
	return &DropHandler{dropService: dropService}
}

// Create POST /api/v1/drops
func (h *DropHandler) Create(c *gin.Context) {
	var req dto.DropCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数无效: "+err.Error())
		return
	}

	userID, _ := middleware.GetCurrentUserID(c)

	info, err := h.dropService.Create(userID, &req)
	if err != nil {
		handleDropError(c, err)
		return
	}

	response.Created(c, "创建快讯成功", info)
}

// Update PUT /api/v1/drops/:id
func (h *DropHandler) Update(c *gin.Context) {
	dropID, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "无效的快讯ID")
		return
	}

	var req dto.DropUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数无效: "+err.Error())
		return
	}

	userID, _ := middleware.GetCurrentUserID(c)

	info, err := h.dropService.Update(dropID, userID, &req)
	if err != nil {
		handleDropError(c, err)
		return
	}

	response.OK(c, "更新快讯成功", info)
}

// Delete DELETE /api/v1/drops/:id
func (h *DropHandler) Delete(c *gin.Context) {
	dropID, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "无效的快讯ID")
		return
	}

	userID, _ := middleware.GetCurrentUserID(c)

	if err := h.dropService.Delete(dropID, userID); err != nil {
		handleDropError(c, err)
		return
	}

	response.OK(c, "删除快讯成功", nil)
}

// GetDetail GET /api/v1/drops/:id
func (h *DropHandler) GetDetail(c *gin.Context) {
	dropID, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "无效的快讯ID")
		return
	}

	userID, _ := middleware.GetCurrentUserID(c)

	info, err := h.dropService.GetDetail(dropID, userID)
	if err != nil {
		handleDropError(c, err)
		return
	}

	response.OK(c, "获取成功", info)
}

// List GET /api/v1/drops
func (h *DropHandler) List(c *gin.Context) {
	page, pageSize := parsePagination(c)

	var status *string
	if v := c.Query("status"); v != "" {
		status = &v
	}

	data, err := h.dropService.List(page, pageSize, status)
	if err != nil {
		logger.Error("List drops failed", zap.Error(err))
		response.InternalError(c, "获取快讯列表失败")
		return
	}

	response.OK(c, "获取快讯列表成功", data)
}

// Send 触发快讯发送
// @Summary 发送快讯
// @Description 草稿置为发送中，为每个活跃订阅者入队一条投递任务
// @Tags 快讯
// @Produce json
// @Security BearerAuth
// @Param id path int true "快讯ID"
// @Success 200 {object} response.Response{data=dto.DropSendData}
// @Failure 409 {object} response.ErrorResponse "快讯不是草稿状态"
// @Router /drops/{id}/send [post]
func (h *DropHandler) Send(c *gin.Context) {
	dropID, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "无效的快讯ID")
		return
	}

	userID, _ := middleware.GetCurrentUserID(c)

	data, err := h.dropService.Send(c.Request.Context(), dropID, userID)
	if err != nil {
		handleDropError(c, err)
		return
	}

	response.OK(c, "快讯已开始发送", data)
}

// Subscribe POST /api/v1/drops/subscribe （无需登录）
func (h *DropHandler) Subscribe(c *gin.Context) {
	var req dto.SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数无效: "+err.Error())
		return
	}

	info, err := h.dropService.Subscribe(req.Email)
	if err != nil {
		logger.Error("Subscribe failed", zap.String("email", req.Email), zap.Error(err))
		response.InternalError(c, "订阅失败，请稍后重试")
		return
	}

	response.OK(c, "订阅成功", info)
}

// Unsubscribe POST /api/v1/drops/unsubscribe （无需登录）
func (h *DropHandler) Unsubscribe(c *gin.Context) {
	var req dto.SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数无效: "+err.Error())
		return
	}

	if err := h.dropService.Unsubscribe(req.Email); err != nil {
		handleDropError(c, err)
		return
	}

	response.OK(c, "退订成功", nil)
}

func handleDropError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrDropNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrDropNoPermission):
		response.Forbidden(c, err.Error())
	case errors.Is(err, service.ErrDropNotDraft):
		response.Conflict(c, err.Error())
	case errors.Is(err, service.ErrNoSubscribers):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrSubscriberNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrNoFieldsToUpdate):
		response.BadRequest(c, err.Error())
	default:
		logger.Error("Drop operation failed", zap.Error(err))
		response.InternalError(c, "操作失败，请稍后重试")
	}
}
