package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"atelier-go/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	defaultReconnectMin = 200 * time.Millisecond
	defaultReconnectMax = 10 * time.Second
)

// RedisChannel 基于 Redis Pub/Sub 的实时通道
// 每张逻辑表对应一个 Redis channel（live:<table>），
// 行级过滤在订阅端完成
type RedisChannel struct {
	client       *redis.Client
	buffer       int
	reconnectMin time.Duration
	reconnectMax time.Duration
}

// NewRedisChannel 创建 Redis 实时通道
// buffer/min/max 传 0 使用默认值
func NewRedisChannel(client *redis.Client, buffer int, reconnectMin, reconnectMax time.Duration) *RedisChannel {
	if buffer <= 0 {
		buffer = defaultEventBuffer
	}
	if reconnectMin <= 0 {
		reconnectMin = defaultReconnectMin
	}
	if reconnectMax <= 0 {
		reconnectMax = defaultReconnectMax
	}
	return &RedisChannel{
		client:       client,
		buffer:       buffer,
		reconnectMin: reconnectMin,
		reconnectMax: reconnectMax,
	}
}

func liveChannelName(table string) string {
	return "live:" + table
}

// Publish 发布一条变更通知
func (c *RedisChannel) Publish(ctx context.Context, event *Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal live event: %w", err)
	}
	if err := c.client.Publish(ctx, liveChannelName(event.Table), payload).Err(); err != nil {
		return fmt.Errorf("failed to publish live event: %w", err)
	}
	return nil
}

// Subscribe 打开一条订阅并启动接收协程
func (c *RedisChannel) Subscribe(ctx context.Context, filter Filter) (Subscription, error) {
	subCtx, cancel := context.WithCancel(ctx)
	sub := &redisSubscription{
		events: make(chan Event, c.buffer),
		cancel: cancel,
	}

	pubsub := c.client.Subscribe(subCtx, liveChannelName(filter.Table))
	if _, err := pubsub.Receive(subCtx); err != nil {
		_ = pubsub.Close()
		cancel()
		return nil, fmt.Errorf("failed to subscribe live channel: %w", err)
	}

	go c.receiveLoop(subCtx, pubsub, filter, sub)
	return sub, nil
}

// receiveLoop 接收事件直到订阅关闭
// 连接中断后按指数退避重试，恢复后注入一条 resync 事件，
// 提示订阅方本地状态可能已过期（通道负责重连，订阅方负责回源）
func (c *RedisChannel) receiveLoop(ctx context.Context, pubsub *redis.PubSub, filter Filter, sub *redisSubscription) {
	defer func() {
		_ = pubsub.Close()
		close(sub.events)
	}()

	backoff := c.reconnectMin
	disconnected := false

	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Warn("Live channel receive failed, retrying",
				zap.String("table", filter.Table),
				zap.Duration("backoff", backoff),
				zap.Error(err),
			)
			disconnected = true
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > c.reconnectMax {
				backoff = c.reconnectMax
			}
			continue
		}

		if disconnected {
			disconnected = false
			backoff = c.reconnectMin
			sub.deliver(Event{Type: EventResync, Table: filter.Table})
			logger.Info("Live channel recovered, resync hint sent",
				zap.String("table", filter.Table))
		}

		var event Event
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			logger.Error("Failed to unmarshal live event",
				zap.String("payload", msg.Payload),
				zap.Error(err),
			)
			continue
		}

		if filter.Matches(&event) {
			sub.deliver(event)
		}
	}
}

type redisSubscription struct {
	events chan Event
	cancel context.CancelFunc
	once   sync.Once
}

func (s *redisSubscription) Events() <-chan Event {
	return s.events
}

// deliver 非阻塞投递，订阅方消费过慢时丢弃提示
func (s *redisSubscription) deliver(event Event) {
	select {
	case s.events <- event:
	default:
	}
}

func (s *redisSubscription) Close() {
	s.once.Do(s.cancel)
}
