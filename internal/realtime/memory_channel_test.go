package realtime

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterMatches(t *testing.T) {
	filter := Filter{
		Table:       TableCommentLikes,
		MatchColumn: "comment_id",
		MatchValues: []int64{1, 2},
	}

	tests := []struct {
		name  string
		event Event
		want  bool
	}{
		{
			name:  "命中监听的评论",
			event: Event{Type: EventInsert, Table: TableCommentLikes, Row: EventRow{CommentID: 2}},
			want:  true,
		},
		{
			name:  "未监听的评论",
			event: Event{Type: EventInsert, Table: TableCommentLikes, Row: EventRow{CommentID: 3}},
			want:  false,
		},
		{
			name:  "表名不一致",
			event: Event{Type: EventInsert, Table: "asset_likes", Row: EventRow{CommentID: 1}},
			want:  false,
		},
		{
			name:  "resync 只看表名",
			event: Event{Type: EventResync, Table: TableCommentLikes},
			want:  true,
		},
		{
			name:  "resync 表名不一致",
			event: Event{Type: EventResync, Table: "asset_likes"},
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, filter.Matches(&tt.event))
		})
	}
}

func TestMemoryChannelFanOut(t *testing.T) {
	channel := NewMemoryChannel(4)
	ctx := context.Background()

	subA, err := channel.Subscribe(ctx, Filter{Table: TableCommentLikes, MatchValues: []int64{1}})
	require.NoError(t, err)
	defer subA.Close()

	subB, err := channel.Subscribe(ctx, Filter{Table: TableCommentLikes, MatchValues: []int64{1, 2}})
	require.NoError(t, err)
	defer subB.Close()

	event := Event{Type: EventInsert, Table: TableCommentLikes, Row: EventRow{CommentID: 2, LikeCount: 1}}
	require.NoError(t, channel.Publish(ctx, &event))

	got := <-subB.Events()
	assert.Equal(t, event, got)

	select {
	case e := <-subA.Events():
		t.Fatalf("subscription should not receive event for comment %d", e.Row.CommentID)
	default:
	}
}

func TestMemoryChannelDropsWhenBufferFull(t *testing.T) {
	channel := NewMemoryChannel(1)
	ctx := context.Background()

	sub, err := channel.Subscribe(ctx, Filter{Table: TableCommentLikes, MatchValues: []int64{1}})
	require.NoError(t, err)
	defer sub.Close()

	event := Event{Type: EventUpdate, Table: TableCommentLikes, Row: EventRow{CommentID: 1, LikeCount: 1}}
	require.NoError(t, channel.Publish(ctx, &event))

	// 缓冲已满，第二条提示被丢弃而不是阻塞发布方
	event.Row.LikeCount = 2
	require.NoError(t, channel.Publish(ctx, &event))

	got := <-sub.Events()
	assert.Equal(t, int64(1), got.Row.LikeCount)
	select {
	case e, ok := <-sub.Events():
		if ok {
			t.Fatalf("unexpected buffered event with count %d", e.Row.LikeCount)
		}
	default:
	}
}

func TestMemorySubscriptionCloseClosesEventStream(t *testing.T) {
	channel := NewMemoryChannel(0)
	ctx := context.Background()

	sub, err := channel.Subscribe(ctx, Filter{Table: TableCommentLikes})
	require.NoError(t, err)

	sub.Close()
	sub.Close() // 可重复调用

	_, ok := <-sub.Events()
	assert.False(t, ok)

	// 关闭后发布不应 panic，也不应投递
	event := Event{Type: EventInsert, Table: TableCommentLikes, Row: EventRow{CommentID: 1}}
	require.NoError(t, channel.Publish(ctx, &event))
}
