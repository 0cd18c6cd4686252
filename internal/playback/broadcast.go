package playback

import (
	"context"
	"sync"
)

// Broadcaster copies controller events to every subscriber. A subscriber
// that falls behind misses events rather than stalling the others.
type Broadcaster struct {
	mu   sync.Mutex
	subs []chan EventData
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{}
}

func (b *Broadcaster) Subscribe(buffer int) <-chan EventData {
	ch := make(chan EventData, max(buffer, 1))
	b.mu.Lock()
	b.subs = append(b.subs, ch)
	b.mu.Unlock()
	return ch
}

// Run forwards in until it closes or ctx is done, then closes every
// subscriber channel.
func (b *Broadcaster) Run(ctx context.Context, in <-chan EventData) {
	defer b.closeAll()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-in:
			if !ok {
				return
			}
			b.publish(ev)
		}
	}
}

func (b *Broadcaster) publish(ev EventData) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (b *Broadcaster) closeAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		close(ch)
	}
	b.subs = nil
}
