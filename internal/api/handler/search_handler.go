package handler

import (
	"atelier-go/internal/api/dto"
	"atelier-go/internal/api/response"
	"atelier-go/internal/service"
	"atelier-go/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SearchHandler struct {
	searchService *service.SearchService
}

func NewSearchHandler(searchService *service.SearchService) *SearchHandler {
	return &SearchHandler{searchService: searchService}
}

// Search 搜索资源
// @Summary 搜索资源
// @Description 全文搜索已发布资源，支持作者/类型/发布时间过滤与高亮
// @Tags 搜索
// @Produce json
// @Param q query string false "关键词"
// @Param author_id query int false "作者ID"
// @Param kind query string false "资源类型" Enums(image, audio, video, doc)
// @Param sort query string false "排序方式" Enums(relevance, time, hot)
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} response.Response{data=dto.SearchAssetData}
// @Router /search/assets [get]
func (h *SearchHandler) Search(c *gin.Context) {
	var req dto.SearchAssetRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "请求参数无效: "+err.Error())
		return
	}

	data, err := h.searchService.SearchAssets(c.Request.Context(), &req)
	if err != nil {
		logger.Error("Search assets failed", zap.String("q", req.Q), zap.Error(err))
		response.InternalError(c, "搜索失败，请稍后重试")
		return
	}

	response.OK(c, "搜索成功", data)
}
