package handler

import (
	"errors"
	"strconv"

	"atelier-go/internal/api/middleware"
	"atelier-go/internal/api/response"
	"atelier-go/internal/realtime"
	"atelier-go/internal/service"
	"atelier-go/pkg/logger"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type RealtimeHandler struct {
	commentLikeService *service.CommentLikeService
	assetService       *service.AssetService
	channel            realtime.Channel
}

func NewRealtimeHandler(
	commentLikeService *service.CommentLikeService,
	assetService *service.AssetService,
	channel realtime.Channel,
) *RealtimeHandler {
	return &RealtimeHandler{
		commentLikeService: commentLikeService,
		assetService:       assetService,
		channel:            channel,
	}
}

// CommentLikes GET /api/v1/ws/assets/:asset_id/comments
// 升级为 WebSocket：一个评论列表视图一条连接、一条订阅
func (h *RealtimeHandler) CommentLikes(c *gin.Context) {
	assetID, err := strconv.ParseInt(c.Param("asset_id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "无效的资源ID")
		return
	}

	viewerID, _ := middleware.GetCurrentUserID(c)

	if _, err := h.assetService.GetDetail(c.Request.Context(), assetID, 0); err != nil {
		if errors.Is(err, service.ErrAssetNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		logger.Error("Load asset before websocket upgrade failed",
			zap.Int64("asset_id", assetID), zap.Error(err))
		response.InternalError(c, "建立实时连接失败")
		return
	}

	seeds, err := h.commentLikeService.SeedStates(assetID, viewerID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Seed comment like states failed",
			zap.Int64("asset_id", assetID), zap.Error(err))
		response.InternalError(c, "建立实时连接失败")
		return
	}

	conn, err := websocket.Accept(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("WebSocket accept failed", zap.Error(err))
		return
	}
	defer conn.CloseNow()

	err = realtime.ServeSession(c.Request.Context(), conn, realtime.SessionConfig{
		ViewerID: viewerID,
		AssetID:  assetID,
		Channel:  h.channel,
		Writer:   h.commentLikeService,
		Reload:   h.commentLikeService.ReloadStates,
		Seeds:    seeds,
	})
	if err != nil {
		logger.Warn("Realtime comment session ended with error",
			zap.Int64("asset_id", assetID),
			zap.Int64("viewer_id", viewerID),
			zap.Error(err))
		conn.Close(websocket.StatusInternalError, "会话异常结束")
		return
	}

	conn.Close(websocket.StatusNormalClosure, "")
}
