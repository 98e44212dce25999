package realtime

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startSessionServer 起一个只托管点赞会话的 WebSocket 测试服务
func startSessionServer(t *testing.T, cfg SessionConfig) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.CloseNow()

		if err := ServeSession(r.Context(), conn, cfg); err != nil {
			conn.Close(websocket.StatusInternalError, "session error")
			return
		}
		conn.Close(websocket.StatusNormalClosure, "")
	}))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.CloseNow() })

	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) Frame {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var frame Frame
	require.NoError(t, wsjson.Read(ctx, conn, &frame))
	return frame
}

func writeFrame(t *testing.T, conn *websocket.Conn, frame Frame) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, wsjson.Write(ctx, conn, frame))
}

func TestServeSessionInitAndToggle(t *testing.T) {
	channel := NewMemoryChannel(0)
	writer := &fakeWriter{}
	conn := startSessionServer(t, SessionConfig{
		ViewerID: 7,
		AssetID:  1,
		Channel:  channel,
		Writer:   writer,
		Seeds: []SeedComment{
			{ID: 1, LikeCount: 3, ViewerLiked: false},
			{ID: 2, LikeCount: 0, ViewerLiked: false},
		},
	})

	init := readFrame(t, conn)
	require.Equal(t, FrameInit, init.Type)
	assert.Equal(t, map[int64]CommentLikeState{
		1: {Liked: false, Count: 3},
		2: {Liked: false, Count: 0},
	}, init.States)

	writeFrame(t, conn, Frame{Type: FrameToggleLike, CommentID: 1})

	update := readFrame(t, conn)
	require.Equal(t, FrameLikeState, update.Type)
	assert.Equal(t, int64(1), update.CommentID)
	assert.Equal(t, CommentLikeState{Liked: true, Count: 4}, update.State)
	assert.Equal(t, 1, writer.createCount())
}

func TestServeSessionPushesChannelEvents(t *testing.T) {
	channel := NewMemoryChannel(0)
	conn := startSessionServer(t, SessionConfig{
		ViewerID: 7,
		AssetID:  1,
		Channel:  channel,
		Writer:   &fakeWriter{},
		Seeds:    []SeedComment{{ID: 3, LikeCount: 2, ViewerLiked: false}},
	})

	init := readFrame(t, conn)
	require.Equal(t, FrameInit, init.Type)

	// 其他用户的点赞经通道广播到会话
	err := channel.Publish(context.Background(), &Event{
		Type:  EventInsert,
		Table: TableCommentLikes,
		Row:   EventRow{CommentID: 3, UserID: 99, LikeCount: 10},
	})
	require.NoError(t, err)

	update := readFrame(t, conn)
	require.Equal(t, FrameLikeState, update.Type)
	assert.Equal(t, int64(3), update.CommentID)
	assert.Equal(t, CommentLikeState{Liked: false, Count: 10}, update.State)
}

func TestServeSessionSendsErrorFrameOnRollback(t *testing.T) {
	writer := &fakeWriter{createErr: errors.New("网络错误")}
	conn := startSessionServer(t, SessionConfig{
		ViewerID: 7,
		AssetID:  1,
		Channel:  NewMemoryChannel(0),
		Writer:   writer,
		Seeds:    []SeedComment{{ID: 2, LikeCount: 0, ViewerLiked: false}},
	})

	init := readFrame(t, conn)
	require.Equal(t, FrameInit, init.Type)

	writeFrame(t, conn, Frame{Type: FrameToggleLike, CommentID: 2})

	// 依次收到：乐观更新、回滚、错误帧
	optimistic := readFrame(t, conn)
	require.Equal(t, FrameLikeState, optimistic.Type)
	assert.Equal(t, CommentLikeState{Liked: true, Count: 1}, optimistic.State)

	rollback := readFrame(t, conn)
	require.Equal(t, FrameLikeState, rollback.Type)
	assert.Equal(t, CommentLikeState{Liked: false, Count: 0}, rollback.State)

	errFrame := readFrame(t, conn)
	require.Equal(t, FrameError, errFrame.Type)
	assert.Equal(t, int64(2), errFrame.CommentID)
	assert.NotEmpty(t, errFrame.Message)
}
