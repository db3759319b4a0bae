package events

import (
	"context"
	"sync"
)

const subscriberBuffer = 64

// MemoryBus is an in-process Bus used in tests and in deployments running
// without Redis. Signals published with no subscribers are discarded.
type MemoryBus struct {
	mu   sync.Mutex
	subs map[string][]*memorySub
}

type memorySub struct {
	ch   chan []byte
	once sync.Once
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subs: make(map[string][]*memorySub)}
}

// Publish sends under the mutex so a concurrent cancel can never close a
// channel a publisher is about to send on. The buffered channel plus
// default case keeps publishers non-blocking.
func (b *MemoryBus) Publish(channel string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.subs[channel] {
		select {
		case sub.ch <- payload:
		default:
			// Subscriber is not keeping up; drop rather than block.
		}
	}
	return nil
}

func (b *MemoryBus) Subscribe(ctx context.Context, channel string) (<-chan []byte, func(), error) {
	sub := &memorySub{ch: make(chan []byte, subscriberBuffer)}

	b.mu.Lock()
	b.subs[channel] = append(b.subs[channel], sub)
	b.mu.Unlock()

	cancel := func() {
		sub.once.Do(func() {
			b.mu.Lock()
			list := b.subs[channel]
			for i, s := range list {
				if s == sub {
					b.subs[channel] = append(list[:i], list[i+1:]...)
					break
				}
			}
			// Closed while still holding the mutex: publishers hold it
			// too, so none can be mid-send on this channel.
			close(sub.ch)
			b.mu.Unlock()
		})
	}

	if ctx != nil && ctx.Done() != nil {
		go func() {
			<-ctx.Done()
			cancel()
		}()
	}

	return sub.ch, cancel, nil
}
