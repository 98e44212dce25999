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

type UserHandler struct {
	userService *service.UserService
	authService *service.AuthService
}

func NewUserHandler(userService *service.UserService, authService *service.AuthService) *UserHandler {
	return &UserHandler{userService: userService, authService: authService}
}

// GetUser 获取用户公开信息
// @Summary 用户信息
// @Tags 用户
// @Produce json
// @Param id path int true "用户ID"
// @Success 200 {object} response.Response{data=dto.UserInfo}
// @Failure 404 {object} response.ErrorResponse "用户不存在"
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	userID, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "无效的用户ID")
		return
	}

	info, err := h.userService.GetUserByID(userID)
	if err != nil {
		handleUserError(c, err)
		return
	}

	response.OK(c, "获取成功", info)
}

// UpdateUser PUT /api/v1/users/:id （本人或管理员）
func (h *UserHandler) UpdateUser(c *gin.Context) {
	targetID, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "无效的用户ID")
		return
	}

	var req dto.UserUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数无效: "+err.Error())
		return
	}

	currentUserID, _ := middleware.GetCurrentUserID(c)
	currentUser, err := h.authService.GetCurrentUser(currentUserID)
	if err != nil {
		handleUserError(c, err)
		return
	}

	info, err := h.userService.UpdateUser(targetID, currentUser, &req)
	if err != nil {
		handleUserError(c, err)
		return
	}

	response.OK(c, "更新成功", info)
}

// ListUsers GET /api/v1/admin/users （管理员）
func (h *UserHandler) ListUsers(c *gin.Context) {
	page, pageSize := parsePagination(c)

	var username, userRole *string
	if v := c.Query("username"); v != "" {
		username = &v
	}
	if v := c.Query("user_role"); v != "" {
		userRole = &v
	}

	data, err := h.userService.ListUsers(page, pageSize, username, userRole)
	if err != nil {
		logger.Error("List users failed", zap.Error(err))
		response.InternalError(c, "获取用户列表失败")
		return
	}

	response.OK(c, "获取用户列表成功", data)
}

// SoftDeleteUser DELETE /api/v1/admin/users/:id （管理员）
func (h *UserHandler) SoftDeleteUser(c *gin.Context) {
	userID, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "无效的用户ID")
		return
	}

	if err := h.userService.SoftDeleteUser(userID); err != nil {
		handleUserError(c, err)
		return
	}

	response.OK(c, "删除用户成功", nil)
}

// RestoreUser POST /api/v1/admin/users/:id/restore （管理员）
func (h *UserHandler) RestoreUser(c *gin.Context) {
	userID, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "无效的用户ID")
		return
	}

	if err := h.userService.RestoreUser(userID); err != nil {
		handleUserError(c, err)
		return
	}

	response.OK(c, "恢复用户成功", nil)
}

// SetAdminRole POST /api/v1/admin/users/:id/admin （管理员）
func (h *UserHandler) SetAdminRole(c *gin.Context) {
	userID, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "无效的用户ID")
		return
	}

	info, err := h.userService.SetAdminRole(userID)
	if err != nil {
		handleUserError(c, err)
		return
	}

	response.OK(c, "设置管理员成功", info)
}

// RoleFetcher 提供给 AdminRequired 中间件的角色查询函数
func (h *UserHandler) RoleFetcher(userID int64) (string, error) {
	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		return "", err
	}
	return user.UserRole, nil
}

func handleUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrUsernameExists):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrForbidden):
		response.Forbidden(c, err.Error())
	default:
		logger.Error("User operation failed", zap.Error(err))
		response.InternalError(c, "操作失败，请稍后重试")
	}
}

// parseOptionalInt64Query 解析可选的 int64 查询参数
func parseOptionalInt64Query(c *gin.Context, key string) *int64 {
	if v := c.Query(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return &n
		}
	}
	return nil
}
