package memory

import (
	"context"
	"log/slog"
	"sync"

	"github.com/alanyang/robot-roster/internal/domain/event"
	porteventbus "github.com/alanyang/robot-roster/internal/port/eventbus"
)

var _ porteventbus.EventBus = (*EventBus)(nil)

const subscriberBuffer = 64

// EventBus delivers events to subscribers in the same process. Each
// subscription drains its own buffered queue; a full queue drops the event.
type EventBus struct {
	mu   sync.RWMutex
	subs map[event.Channel]map[*subscription]struct{}
}

func NewEventBus() *EventBus {
	return &EventBus{subs: make(map[event.Channel]map[*subscription]struct{})}
}

func (eb *EventBus) Publish(_ context.Context, e event.Event) error {
	ch := event.ChannelFor(e.Type)

	eb.mu.RLock()
	defer eb.mu.RUnlock()
	for sub := range eb.subs[ch] {
		select {
		case sub.queue <- e:
		default:
			slog.Warn("event dropped, subscriber queue full", "channel", ch, "type", e.Type)
		}
	}
	return nil
}

func (eb *EventBus) Subscribe(ctx context.Context, ch event.Channel, handler porteventbus.Handler) (porteventbus.Subscription, error) {
	subCtx, cancel := context.WithCancel(ctx)
	sub := &subscription{
		queue:  make(chan event.Event, subscriberBuffer),
		cancel: cancel,
		done:   make(chan struct{}),
	}

	eb.mu.Lock()
	if eb.subs[ch] == nil {
		eb.subs[ch] = make(map[*subscription]struct{})
	}
	eb.subs[ch][sub] = struct{}{}
	eb.mu.Unlock()

	go func() {
		defer func() {
			eb.mu.Lock()
			delete(eb.subs[ch], sub)
			eb.mu.Unlock()
			close(sub.done)
		}()
		for {
			select {
			case <-subCtx.Done():
				return
			case e := <-sub.queue:
				handler(subCtx, e)
			}
		}
	}()

	return sub, nil
}

type subscription struct {
	queue  chan event.Event
	cancel context.CancelFunc
	done   chan struct{}
}

func (s *subscription) Unsubscribe() {
	s.cancel()
	<-s.done
}
