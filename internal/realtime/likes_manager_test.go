package realtime

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"atelier-go/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	if err := logger.Init("error", "console", "stdout", ""); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// fakeWriter 可注入错误的远端写入器
type fakeWriter struct {
	mu        sync.Mutex
	createErr error
	deleteErr error
	creates   []int64
	deletes   []int64
}

func (w *fakeWriter) CreateLike(ctx context.Context, commentID, viewerID int64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.creates = append(w.creates, commentID)
	return w.createErr
}

func (w *fakeWriter) DeleteLike(ctx context.Context, commentID, viewerID int64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.deletes = append(w.deletes, commentID)
	return w.deleteErr
}

func (w *fakeWriter) createCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.creates)
}

// stateRecorder 收集 OnChange 回调，供断言通知行为
type stateRecorder struct {
	mu      sync.Mutex
	changes []CommentLikeState
	ids     []int64
}

func (r *stateRecorder) record(commentID int64, state CommentLikeState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, commentID)
	r.changes = append(r.changes, state)
}

func (r *stateRecorder) last() (int64, CommentLikeState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.changes) == 0 {
		return 0, CommentLikeState{}, false
	}
	return r.ids[len(r.ids)-1], r.changes[len(r.changes)-1], true
}

// waitFor 轮询等待异步事件被消费
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func newTestManager(t *testing.T, channel Channel, writer LikeWriter, rec *stateRecorder, reload ReloadFunc, seeds []SeedComment) *CommentLikesManager {
	t.Helper()
	cfg := ManagerConfig{
		ViewerID: 7,
		Channel:  channel,
		Writer:   writer,
		Reload:   reload,
	}
	if rec != nil {
		cfg.OnChange = rec.record
	}
	m := NewCommentLikesManager(cfg)
	require.NoError(t, m.Initialize(context.Background(), seeds))
	t.Cleanup(m.Close)
	return m
}

func TestLikeStateUnknownCommentReturnsZeroValue(t *testing.T) {
	m := newTestManager(t, NewMemoryChannel(0), &fakeWriter{}, nil, nil, nil)

	state := m.LikeState(999)
	assert.False(t, state.Liked)
	assert.Equal(t, int64(0), state.Count)
}

func TestInitializeSeedsStates(t *testing.T) {
	m := newTestManager(t, NewMemoryChannel(0), &fakeWriter{}, nil, nil, []SeedComment{
		{ID: 1, LikeCount: 3, ViewerLiked: false},
		{ID: 2, LikeCount: 12, ViewerLiked: true},
	})

	assert.Equal(t, CommentLikeState{Liked: false, Count: 3}, m.LikeState(1))
	assert.Equal(t, CommentLikeState{Liked: true, Count: 12}, m.LikeState(2))
}

func TestToggleLikeRoundTrip(t *testing.T) {
	writer := &fakeWriter{}
	rec := &stateRecorder{}
	m := newTestManager(t, NewMemoryChannel(0), writer, rec, nil, []SeedComment{
		{ID: 1, LikeCount: 3, ViewerLiked: false},
	})

	require.NoError(t, m.ToggleLike(context.Background(), 1))
	assert.Equal(t, CommentLikeState{Liked: true, Count: 4}, m.LikeState(1))

	require.NoError(t, m.ToggleLike(context.Background(), 1))
	assert.Equal(t, CommentLikeState{Liked: false, Count: 3}, m.LikeState(1))

	assert.Equal(t, []int64{1}, writer.creates)
	assert.Equal(t, []int64{1}, writer.deletes)

	id, last, ok := rec.last()
	require.True(t, ok)
	assert.Equal(t, int64(1), id)
	assert.Equal(t, CommentLikeState{Liked: false, Count: 3}, last)
}

func TestToggleLikeRollsBackOnWriteError(t *testing.T) {
	writeErr := errors.New("网络错误")
	writer := &fakeWriter{createErr: writeErr}
	rec := &stateRecorder{}
	m := newTestManager(t, NewMemoryChannel(0), writer, rec, nil, []SeedComment{
		{ID: 2, LikeCount: 0, ViewerLiked: false},
	})

	err := m.ToggleLike(context.Background(), 2)
	require.ErrorIs(t, err, writeErr)

	// 精确恢复到切换前的状态，调用方会看到先 1/true 再 0/false
	assert.Equal(t, CommentLikeState{Liked: false, Count: 0}, m.LikeState(2))
	id, last, ok := rec.last()
	require.True(t, ok)
	assert.Equal(t, int64(2), id)
	assert.Equal(t, CommentLikeState{Liked: false, Count: 0}, last)
}

func TestToggleLikeConflictTreatedAsSuccess(t *testing.T) {
	writer := &fakeWriter{createErr: ErrAlreadyLiked}
	m := newTestManager(t, NewMemoryChannel(0), writer, nil, nil, []SeedComment{
		{ID: 1, LikeCount: 5, ViewerLiked: false},
	})

	require.NoError(t, m.ToggleLike(context.Background(), 1))
	assert.Equal(t, CommentLikeState{Liked: true, Count: 6}, m.LikeState(1))
}

func TestToggleLikeUnknownCommentClampsAtZero(t *testing.T) {
	writer := &fakeWriter{}
	m := newTestManager(t, NewMemoryChannel(0), writer, nil, nil, nil)

	// 未知评论当作零值状态：先点赞再取消，计数不会变成负数
	require.NoError(t, m.ToggleLike(context.Background(), 42))
	assert.Equal(t, CommentLikeState{Liked: true, Count: 1}, m.LikeState(42))

	require.NoError(t, m.ToggleLike(context.Background(), 42))
	assert.Equal(t, CommentLikeState{Liked: false, Count: 0}, m.LikeState(42))

	require.NoError(t, m.ToggleLike(context.Background(), 42))
	require.NoError(t, m.ToggleLike(context.Background(), 42))
	assert.Equal(t, int64(0), m.LikeState(42).Count)
}

// blockingWriter 卡住远端写，直到测试放行
type blockingWriter struct {
	release chan struct{}
}

func (w *blockingWriter) CreateLike(ctx context.Context, commentID, viewerID int64) error {
	<-w.release
	return nil
}

func (w *blockingWriter) DeleteLike(ctx context.Context, commentID, viewerID int64) error {
	<-w.release
	return nil
}

func TestToggleLikeRejectsWhileInFlight(t *testing.T) {
	writer := &blockingWriter{release: make(chan struct{})}
	m := newTestManager(t, NewMemoryChannel(0), writer, nil, nil, []SeedComment{
		{ID: 1, LikeCount: 3},
	})

	first := make(chan error, 1)
	go func() {
		first <- m.ToggleLike(context.Background(), 1)
	}()

	waitFor(t, func() bool {
		return m.LikeState(1).Count == 4
	})

	err := m.ToggleLike(context.Background(), 1)
	assert.ErrorIs(t, err, ErrToggleInFlight)

	close(writer.release)
	require.NoError(t, <-first)

	// 拒绝的那次切换没有留下任何痕迹
	assert.Equal(t, CommentLikeState{Liked: true, Count: 4}, m.LikeState(1))
}

func TestHandleEventOverwritesLocalCount(t *testing.T) {
	channel := NewMemoryChannel(0)
	rec := &stateRecorder{}
	m := newTestManager(t, channel, &fakeWriter{}, rec, nil, []SeedComment{
		{ID: 3, LikeCount: 2, ViewerLiked: true},
	})

	// 其他用户的点赞：计数覆盖为服务端权威值，Liked 不变
	err := channel.Publish(context.Background(), &Event{
		Type:  EventInsert,
		Table: TableCommentLikes,
		Row:   EventRow{CommentID: 3, UserID: 99, LikeCount: 10},
	})
	require.NoError(t, err)

	waitFor(t, func() bool {
		return m.LikeState(3).Count == 10
	})
	assert.Equal(t, CommentLikeState{Liked: true, Count: 10}, m.LikeState(3))
}

func TestHandleEventUpdatesLikedForViewerOnly(t *testing.T) {
	channel := NewMemoryChannel(0)
	m := newTestManager(t, channel, &fakeWriter{}, nil, nil, []SeedComment{
		{ID: 1, LikeCount: 5, ViewerLiked: true},
	})

	// 本人从另一个会话取消点赞
	err := channel.Publish(context.Background(), &Event{
		Type:  EventDelete,
		Table: TableCommentLikes,
		Row:   EventRow{CommentID: 1, UserID: 7, LikeCount: 4},
	})
	require.NoError(t, err)

	waitFor(t, func() bool {
		state := m.LikeState(1)
		return !state.Liked && state.Count == 4
	})
}

func TestHandleEventIgnoresUnwatchedComment(t *testing.T) {
	channel := NewMemoryChannel(0)
	rec := &stateRecorder{}
	m := newTestManager(t, channel, &fakeWriter{}, rec, nil, []SeedComment{
		{ID: 1, LikeCount: 5},
	})

	err := channel.Publish(context.Background(), &Event{
		Type:  EventInsert,
		Table: TableCommentLikes,
		Row:   EventRow{CommentID: 888, UserID: 99, LikeCount: 1},
	})
	require.NoError(t, err)

	// 给消费协程一点时间，确认没命中的事件不产生通知
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, CommentLikeState{}, m.LikeState(888))
	_, _, ok := rec.last()
	assert.False(t, ok)
}

func TestResyncReloadsWatchedComments(t *testing.T) {
	channel := NewMemoryChannel(0)
	rec := &stateRecorder{}
	reload := func(ctx context.Context, viewerID int64, commentIDs []int64) (map[int64]CommentLikeState, error) {
		assert.Equal(t, int64(7), viewerID)
		assert.ElementsMatch(t, []int64{1, 2}, commentIDs)
		return map[int64]CommentLikeState{
			1: {Liked: true, Count: 8},
			2: {Liked: false, Count: 4}, // 与本地一致，不应触发通知
		}, nil
	}
	m := newTestManager(t, channel, &fakeWriter{}, rec, reload, []SeedComment{
		{ID: 1, LikeCount: 3, ViewerLiked: false},
		{ID: 2, LikeCount: 4, ViewerLiked: false},
	})

	err := channel.Publish(context.Background(), &Event{
		Type:  EventResync,
		Table: TableCommentLikes,
	})
	require.NoError(t, err)

	waitFor(t, func() bool {
		return m.LikeState(1) == CommentLikeState{Liked: true, Count: 8}
	})
	assert.Equal(t, CommentLikeState{Liked: false, Count: 4}, m.LikeState(2))

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, []int64{1}, rec.ids)
}

func TestResyncSkipsPendingToggle(t *testing.T) {
	channel := NewMemoryChannel(0)
	writer := &blockingWriter{release: make(chan struct{})}
	reloaded := make(chan struct{})
	reload := func(ctx context.Context, viewerID int64, commentIDs []int64) (map[int64]CommentLikeState, error) {
		defer close(reloaded)
		return map[int64]CommentLikeState{
			1: {Liked: false, Count: 100},
		}, nil
	}
	m := newTestManager(t, channel, writer, nil, reload, []SeedComment{
		{ID: 1, LikeCount: 3},
	})

	done := make(chan error, 1)
	go func() {
		done <- m.ToggleLike(context.Background(), 1)
	}()
	waitFor(t, func() bool {
		return m.LikeState(1).Count == 4
	})

	err := channel.Publish(context.Background(), &Event{
		Type:  EventResync,
		Table: TableCommentLikes,
	})
	require.NoError(t, err)
	<-reloaded

	// 回源结果不覆盖正在进行的切换
	assert.Equal(t, CommentLikeState{Liked: true, Count: 4}, m.LikeState(1))

	close(writer.release)
	require.NoError(t, <-done)
}

func TestCloseRejectsFurtherToggles(t *testing.T) {
	m := NewCommentLikesManager(ManagerConfig{
		ViewerID: 7,
		Channel:  NewMemoryChannel(0),
		Writer:   &fakeWriter{},
	})
	require.NoError(t, m.Initialize(context.Background(), []SeedComment{{ID: 1, LikeCount: 3}}))

	m.Close()
	m.Close() // 可重复调用

	err := m.ToggleLike(context.Background(), 1)
	assert.ErrorIs(t, err, ErrManagerClosed)
	assert.ErrorIs(t, m.Initialize(context.Background(), nil), ErrManagerClosed)
}

func TestCloseDiscardsLateToggleResult(t *testing.T) {
	writer := &blockingWriter{release: make(chan struct{})}
	m := NewCommentLikesManager(ManagerConfig{
		ViewerID: 7,
		Channel:  NewMemoryChannel(0),
		Writer:   writer,
	})
	require.NoError(t, m.Initialize(context.Background(), []SeedComment{{ID: 1, LikeCount: 3}}))

	done := make(chan error, 1)
	go func() {
		done <- m.ToggleLike(context.Background(), 1)
	}()
	waitFor(t, func() bool {
		return m.LikeState(1).Count == 4
	})

	m.Close()
	close(writer.release)

	// 视图已卸载，迟到的结果不再回滚也不报错
	require.NoError(t, <-done)
}

func TestManagersIsolatedPerViewer(t *testing.T) {
	channel := NewMemoryChannel(0)
	seeds := []SeedComment{{ID: 1, LikeCount: 3, ViewerLiked: false}}

	viewer := newTestManager(t, channel, &fakeWriter{}, nil, nil, seeds)
	other := NewCommentLikesManager(ManagerConfig{
		ViewerID: 8,
		Channel:  channel,
		Writer:   &fakeWriter{},
	})
	require.NoError(t, other.Initialize(context.Background(), seeds))
	defer other.Close()

	err := channel.Publish(context.Background(), &Event{
		Type:  EventInsert,
		Table: TableCommentLikes,
		Row:   EventRow{CommentID: 1, UserID: 7, LikeCount: 4},
	})
	require.NoError(t, err)

	waitFor(t, func() bool {
		return viewer.LikeState(1) == CommentLikeState{Liked: true, Count: 4}
	})
	waitFor(t, func() bool {
		return other.LikeState(1) == CommentLikeState{Liked: false, Count: 4}
	})
}
