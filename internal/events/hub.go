package events

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"mediajobs/internal/logging"
)

// DefaultBuffer is the per-subscriber channel size used when none is given.
const DefaultBuffer = 256

// Publisher accepts events. The workflow manager depends on this interface.
type Publisher interface {
	Publish(Event)
}

// Hub broadcasts events to subscribers without blocking the publisher.
type Hub struct {
	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	closed bool
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[*Subscription]struct{})}
}

// Subscription is one consumer of hub events.
type Subscription struct {
	hub     *Hub
	ch      chan Event
	once    sync.Once
	dropped atomic.Int64
}

// Subscribe registers a consumer. The returned subscription must be closed.
func (h *Hub) Subscribe(buffer int) *Subscription {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	sub := &Subscription{hub: h, ch: make(chan Event, buffer)}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(sub.ch)
		sub.once.Do(func() {})
		return sub
	}
	h.subs[sub] = struct{}{}
	return sub
}

// Publish offers evt to every subscriber. Full subscribers drop the event.
func (h *Hub) Publish(evt Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs {
		select {
		case sub.ch <- evt:
		default:
			sub.dropped.Add(1)
		}
	}
}

// SubscriberCount returns the number of open subscriptions.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close ends every subscription. Later Publish calls are no-ops.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for sub := range h.subs {
		delete(h.subs, sub)
		sub.once.Do(func() { close(sub.ch) })
	}
}

// Events returns the receive channel. It is closed when the subscription or
// the hub is closed.
func (s *Subscription) Events() <-chan Event {
	return s.ch
}

// Dropped reports how many events were discarded because the buffer was full.
func (s *Subscription) Dropped() int64 {
	return s.dropped.Load()
}

// Release closes the subscription and reports dropped events under the
// consumer's name. A nil logger skips the report.
func (s *Subscription) Release(logger *slog.Logger, consumer string) {
	s.Close()
	dropped := s.Dropped()
	if dropped == 0 || logger == nil {
		return
	}
	logging.WarnWithContext(logger, "event subscriber fell behind", "events_dropped",
		"the consumer is too slow for the event rate; it missed some updates",
		logging.String("consumer", consumer),
		logging.Int("dropped", int(dropped)))
}

// Close unregisters the subscription.
func (s *Subscription) Close() {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	delete(s.hub.subs, s)
	s.once.Do(func() { close(s.ch) })
}
