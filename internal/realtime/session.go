package realtime

import (
	"context"
	"errors"
	"time"

	"atelier-go/pkg/logger"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"go.uber.org/zap"
)

const (
	// 单帧写超时
	frameWriteTimeout = 10 * time.Second
	// 出站帧缓冲
	outboundBufferSize = 64

	// 帧类型
	FrameInit       = "init"
	FrameLikeState  = "like_state"
	FrameToggleLike = "toggle_like"
	FrameError      = "error"
)

// Frame WebSocket 帧
type Frame struct {
	Type      string           `json:"type"`
	CommentID int64            `json:"comment_id,omitempty"`
	State     CommentLikeState `json:"state"`
	// Init 帧携带全部初始状态
	States  map[int64]CommentLikeState `json:"states,omitempty"`
	Message string                     `json:"message,omitempty"`
}

// SessionConfig 会话依赖
type SessionConfig struct {
	ViewerID int64
	AssetID  int64
	Channel  Channel
	Writer   LikeWriter
	Reload   ReloadFunc
	Seeds    []SeedComment
}

// ServeSession 托管一条评论点赞实时会话直到连接断开
//
// 连接的生命周期即管理器的生命周期：建立时用评论快照初始化，
// 状态变化帧推给客户端，客户端的 toggle_like 帧转成 ToggleLike
// 调用，断开时关闭管理器（订阅随之关闭）。
func ServeSession(ctx context.Context, conn *websocket.Conn, cfg SessionConfig) error {
	outbound := make(chan Frame, outboundBufferSize)

	manager := NewCommentLikesManager(ManagerConfig{
		ViewerID: cfg.ViewerID,
		Channel:  cfg.Channel,
		Writer:   cfg.Writer,
		Reload:   cfg.Reload,
		OnChange: func(commentID int64, state CommentLikeState) {
			select {
			case outbound <- Frame{Type: FrameLikeState, CommentID: commentID, State: state}:
			default:
				// 客户端消费过慢，丢弃该帧（下一帧会带最新状态）
			}
		},
	})
	defer manager.Close()

	if err := manager.Initialize(ctx, cfg.Seeds); err != nil {
		return err
	}

	// 初始快照
	states := make(map[int64]CommentLikeState, len(cfg.Seeds))
	for _, seed := range cfg.Seeds {
		states[seed.ID] = manager.LikeState(seed.ID)
	}

	writeCtx, cancelWrite := context.WithCancel(ctx)
	defer cancelWrite()
	go writePump(writeCtx, conn, outbound)

	outbound <- Frame{Type: FrameInit, States: states}

	logger.Info("Realtime comment session started",
		zap.Int64("viewer_id", cfg.ViewerID),
		zap.Int64("asset_id", cfg.AssetID),
		zap.Int("comments", len(cfg.Seeds)),
	)

	for {
		var frame Frame
		if err := wsjson.Read(ctx, conn, &frame); err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				return nil
			}
			return err
		}

		if frame.Type != FrameToggleLike {
			continue
		}

		if err := manager.ToggleLike(ctx, frame.CommentID); err != nil {
			msg := "点赞操作失败"
			if errors.Is(err, ErrToggleInFlight) {
				msg = err.Error()
			}
			select {
			case outbound <- Frame{Type: FrameError, CommentID: frame.CommentID, Message: msg}:
			default:
			}
		}
	}
}

// writePump 串行化连接写入（coder/websocket 只允许一个并发写者）
func writePump(ctx context.Context, conn *websocket.Conn, outbound <-chan Frame) {
	for {
		select {
		case <-ctx.Done():
			return
		case frame := <-outbound:
			writeCtx, cancel := context.WithTimeout(ctx, frameWriteTimeout)
			err := wsjson.Write(writeCtx, conn, frame)
			cancel()
			if err != nil {
				return
			}
		}
	}
}
