package realtime

import (
	"context"
	"sync"
)

const defaultEventBuffer = 64

// MemoryChannel 进程内实时通道
// 测试与单机部署使用，语义与 Redis 实现一致：
// 订阅者缓冲写满时丢弃事件（事件只是刷新提示，不是事实源）
type MemoryChannel struct {
	mu     sync.RWMutex
	subs   map[*memorySubscription]struct{}
	buffer int
}

func NewMemoryChannel(buffer int) *MemoryChannel {
	if buffer <= 0 {
		buffer = defaultEventBuffer
	}
	return &MemoryChannel{
		subs:   make(map[*memorySubscription]struct{}),
		buffer: buffer,
	}
}

// Subscribe 打开一条订阅
func (c *MemoryChannel) Subscribe(ctx context.Context, filter Filter) (Subscription, error) {
	sub := &memorySubscription{
		channel: c,
		filter:  filter,
		events:  make(chan Event, c.buffer),
	}

	c.mu.Lock()
	c.subs[sub] = struct{}{}
	c.mu.Unlock()

	return sub, nil
}

// Publish 向所有命中过滤条件的订阅者分发事件
func (c *MemoryChannel) Publish(ctx context.Context, event *Event) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for sub := range c.subs {
		if !sub.filter.Matches(event) {
			continue
		}
		select {
		case sub.events <- *event:
		default:
			// 订阅方消费过慢，丢弃该提示
		}
	}
	return nil
}

func (c *MemoryChannel) remove(sub *memorySubscription) {
	c.mu.Lock()
	delete(c.subs, sub)
	c.mu.Unlock()
}

type memorySubscription struct {
	channel *MemoryChannel
	filter  Filter
	events  chan Event
	once    sync.Once
}

func (s *memorySubscription) Events() <-chan Event {
	return s.events
}

func (s *memorySubscription) Close() {
	s.once.Do(func() {
		s.channel.remove(s)
		close(s.events)
	})
}
