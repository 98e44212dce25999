// Package realtime 实现评论点赞状态的实时通道与批量订阅管理。
// 一个评论列表视图只打开一条订阅，按评论 ID 分发（fan-in），
// 替代每条评论各开一条订阅的 O(n) 模型。
package realtime

import "context"

// EventType 变更通知类型
type EventType string

const (
	EventInsert EventType = "insert"
	EventDelete EventType = "delete"
	EventUpdate EventType = "update"

	// EventResync 由通道实现在断线重连成功后注入，
	// 提示订阅方本地状态可能已过期，需要整体回源刷新
	EventResync EventType = "resync"
)

// 通道上的逻辑表名
const TableCommentLikes = "comment_likes"

// EventRow 变更行载荷：某条评论点赞关系的一次变动
// LikeCount 为服务端写库后的权威计数，通知到达时覆盖本地值
type EventRow struct {
	CommentID int64 `json:"comment_id"`
	UserID    int64 `json:"user_id"`
	LikeCount int64 `json:"like_count"`
}

// Event 一条变更通知
// 通道不保证恰好一次投递，事件只能当作幂等的刷新提示
type Event struct {
	Type  EventType `json:"type"`
	Table string    `json:"table"`
	Row   EventRow  `json:"row"`
}

// Filter 订阅过滤条件：表 + 列 + 取值集合
type Filter struct {
	Table       string
	MatchColumn string
	MatchValues []int64
}

// Matches 判断事件是否命中过滤条件
// resync 事件只要求表名一致，不区分具体行
func (f *Filter) Matches(e *Event) bool {
	if e.Table != f.Table {
		return false
	}
	if e.Type == EventResync {
		return true
	}
	for _, v := range f.MatchValues {
		if v == e.Row.CommentID {
			return true
		}
	}
	return false
}

// Subscription 一条已打开的订阅
type Subscription interface {
	// Events 返回事件流；订阅关闭后通道会被 close
	Events() <-chan Event
	// Close 关闭订阅，可重复调用
	Close()
}

// Channel 实时变更通道
// Redis 实现用于多实例部署，内存实现用于测试与单机运行
type Channel interface {
	Subscribe(ctx context.Context, filter Filter) (Subscription, error)
	Publish(ctx context.Context, event *Event) error
}
