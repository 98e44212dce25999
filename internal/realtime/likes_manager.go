package realtime

import (
	"context"
	"errors"
	"sync"

	"atelier-go/pkg/logger"

	"go.uber.org/zap"
)

var (
	// ErrManagerClosed 管理器已随视图卸载关闭
	ErrManagerClosed = errors.New("点赞管理器已关闭")
	// ErrToggleInFlight 同一评论的上一次点赞操作尚未完成（策略：拒绝而非排队）
	ErrToggleInFlight = errors.New("上一次点赞操作尚未完成")
	// ErrAlreadyLiked 远端唯一性约束冲突，按点赞成功处理
	ErrAlreadyLiked = errors.New("已经点赞过该评论")
)

// CommentLikeState 单条评论的点赞视图状态
type CommentLikeState struct {
	Liked bool  `json:"liked"`
	Count int64 `json:"count"`
}

// SeedComment 初始化管理器所需的评论快照（来自一次性的评论列表查询）
type SeedComment struct {
	ID          int64
	LikeCount   int64
	ViewerLiked bool
}

// LikeWriter 远端点赞关系写入器
// CreateLike 在关系已存在时返回 ErrAlreadyLiked；
// DeleteLike 删除不存在的关系是空操作，返回 nil
type LikeWriter interface {
	CreateLike(ctx context.Context, commentID, viewerID int64) error
	DeleteLike(ctx context.Context, commentID, viewerID int64) error
}

// ReloadFunc 回源函数：重新读取一批评论的权威点赞状态
// 通道断线重连后由管理器调用，防止状态悄悄变陈旧
type ReloadFunc func(ctx context.Context, viewerID int64, commentIDs []int64) (map[int64]CommentLikeState, error)

// ManagerConfig 管理器依赖
type ManagerConfig struct {
	ViewerID int64
	Channel  Channel
	Writer   LikeWriter
	// OnChange 单条评论状态变化回调（只通知受影响的评论），可为 nil
	OnChange func(commentID int64, state CommentLikeState)
	// Reload 回源函数，nil 表示重连后不回源
	Reload ReloadFunc
}

// CommentLikesManager 一批评论的点赞状态唯一事实源
//
// 每个评论列表视图持有一个实例：Initialize 用服务端行快照建表并
// 打开唯一一条订阅；ToggleLike 先乐观更新本地状态再发远端写，
// 失败时回滚到切换前的值；订阅事件以服务端计数为准覆盖本地值。
type CommentLikesManager struct {
	viewerID int64
	channel  Channel
	writer   LikeWriter
	onChange func(commentID int64, state CommentLikeState)
	reload   ReloadFunc

	mu      sync.Mutex
	states  map[int64]CommentLikeState
	pending map[int64]bool
	watched []int64
	closed  bool

	sub  Subscription
	done chan struct{}
}

func NewCommentLikesManager(cfg ManagerConfig) *CommentLikesManager {
	return &CommentLikesManager{
		viewerID: cfg.ViewerID,
		channel:  cfg.Channel,
		writer:   cfg.Writer,
		onChange: cfg.OnChange,
		reload:   cfg.Reload,
		states:   make(map[int64]CommentLikeState),
		pending:  make(map[int64]bool),
		done:     make(chan struct{}),
	}
}

// Initialize 用服务端快照建立初始状态，并打开覆盖全部评论的单条订阅
func (m *CommentLikesManager) Initialize(ctx context.Context, comments []SeedComment) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrManagerClosed
	}

	m.watched = make([]int64, 0, len(comments))
	for _, c := range comments {
		m.states[c.ID] = CommentLikeState{Liked: c.ViewerLiked, Count: c.LikeCount}
		m.watched = append(m.watched, c.ID)
	}
	watched := m.watched
	m.mu.Unlock()

	sub, err := m.channel.Subscribe(ctx, Filter{
		Table:       TableCommentLikes,
		MatchColumn: "comment_id",
		MatchValues: watched,
	})
	if err != nil {
		return err
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		sub.Close()
		return ErrManagerClosed
	}
	m.sub = sub
	m.mu.Unlock()

	go m.dispatch(sub)
	return nil
}

// LikeState 查询单条评论的点赞状态
// 未知评论返回零值状态，永不报错
func (m *CommentLikesManager) LikeState(commentID int64) CommentLikeState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.states[commentID]
}

// ToggleLike 切换当前用户对某条评论的点赞
//
// 先乐观翻转本地状态（±1），再发远端写；远端失败时精确恢复
// 切换前的状态并把错误交给调用方。唯一性冲突按已点赞成功处理。
// 同一评论存在未完成的切换时返回 ErrToggleInFlight。
func (m *CommentLikesManager) ToggleLike(ctx context.Context, commentID int64) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrManagerClosed
	}
	if m.pending[commentID] {
		m.mu.Unlock()
		return ErrToggleInFlight
	}

	prev := m.states[commentID]
	next := CommentLikeState{Liked: !prev.Liked}
	if next.Liked {
		next.Count = prev.Count + 1
	} else {
		next.Count = prev.Count - 1
		if next.Count < 0 {
			next.Count = 0
		}
	}

	m.states[commentID] = next
	m.pending[commentID] = true
	m.mu.Unlock()

	m.notify(commentID, next)

	var err error
	if next.Liked {
		err = m.writer.CreateLike(ctx, commentID, m.viewerID)
		if errors.Is(err, ErrAlreadyLiked) {
			err = nil
		}
	} else {
		err = m.writer.DeleteLike(ctx, commentID, m.viewerID)
	}

	m.mu.Lock()
	delete(m.pending, commentID)
	if m.closed {
		// 视图已卸载，迟到的结果直接丢弃
		m.mu.Unlock()
		return nil
	}
	if err != nil {
		m.states[commentID] = prev
		m.mu.Unlock()
		m.notify(commentID, prev)
		logger.Warn("Toggle like failed, state rolled back",
			zap.Int64("comment_id", commentID),
			zap.Int64("viewer_id", m.viewerID),
			zap.Error(err),
		)
		return err
	}
	m.mu.Unlock()
	return nil
}

// Close 关闭订阅并冻结状态表，可重复调用
func (m *CommentLikesManager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	sub := m.sub
	m.mu.Unlock()

	if sub != nil {
		sub.Close()
		<-m.done
	}
}

// dispatch 消费订阅事件直到订阅关闭
func (m *CommentLikesManager) dispatch(sub Subscription) {
	defer close(m.done)
	for event := range sub.Events() {
		m.handleEvent(event)
	}
}

// handleEvent 把变更通知写入状态表
// 通知里的服务端计数是权威值，无条件覆盖本地值
func (m *CommentLikesManager) handleEvent(event Event) {
	if event.Type == EventResync {
		m.resync()
		return
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}

	state := m.states[event.Row.CommentID]
	state.Count = event.Row.LikeCount
	if state.Count < 0 {
		state.Count = 0
	}
	if event.Row.UserID == m.viewerID {
		switch event.Type {
		case EventInsert:
			state.Liked = true
		case EventDelete:
			state.Liked = false
		}
	}
	m.states[event.Row.CommentID] = state
	m.mu.Unlock()

	m.notify(event.Row.CommentID, state)
}

// resync 断线重连后整体回源刷新
func (m *CommentLikesManager) resync() {
	if m.reload == nil {
		return
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	watched := m.watched
	m.mu.Unlock()

	fresh, err := m.reload(context.Background(), m.viewerID, watched)
	if err != nil {
		logger.Error("Failed to resync like states", zap.Error(err))
		return
	}

	changed := make(map[int64]CommentLikeState, len(fresh))
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	for id, state := range fresh {
		if m.pending[id] {
			// 本地有未完成的切换，等它自己收敛
			continue
		}
		if m.states[id] != state {
			m.states[id] = state
			changed[id] = state
		}
	}
	m.mu.Unlock()

	for id, state := range changed {
		m.notify(id, state)
	}
}

func (m *CommentLikesManager) notify(commentID int64, state CommentLikeState) {
	if m.onChange != nil {
		m.onChange(commentID, state)
	}
}
