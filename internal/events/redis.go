package events

import (
	"context"
	"sync"

	"github.com/trangpham2601/group-task-manager/internal/cache"
)

// RedisBus implements Bus on Redis pub/sub so change signals reach
// subscribers on every backend instance, not just the one that wrote.
type RedisBus struct {
	redis *cache.RedisCache
}

func NewRedisBus(redis *cache.RedisCache) *RedisBus {
	return &RedisBus{redis: redis}
}

func (b *RedisBus) Publish(channel string, payload []byte) error {
	return b.redis.Publish(channel, payload)
}

func (b *RedisBus) Subscribe(ctx context.Context, channel string) (<-chan []byte, func(), error) {
	ps := b.redis.PSubscribe(ctx, channel)

	// Force the subscription handshake so a bad connection surfaces here
	// instead of as a silently dead channel.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, nil, err
	}

	out := make(chan []byte, subscriberBuffer)
	go func() {
		defer close(out)
		for msg := range ps.Channel() {
			select {
			case out <- []byte(msg.Payload):
			default:
				// Drop on backpressure, same policy as MemoryBus.
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			_ = ps.Close()
		})
	}

	return out, cancel, nil
}
