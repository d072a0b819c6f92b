package events

import (
	"context"
	"sync"

	"github.com/andrescamacho/tradewars-server/internal/domain/events"
	"github.com/andrescamacho/tradewars-server/internal/domain/shared"
)

// Subscription is one connected client's outbound event queue. Events
// enqueue even while paused; the transport's write pump blocks in Next
// until delivery may proceed.
type Subscription struct {
	id          string
	characterID string
	admin       bool

	mu      sync.Mutex
	queue   []*events.Event
	paused  bool
	closed  bool
	lastSeq uint64
	wake    chan struct{}
}

// ID returns the subscription's connection id.
func (s *Subscription) ID() string { return s.id }

// CharacterID returns the authenticated character.
func (s *Subscription) CharacterID() string { return s.characterID }

// Admin reports whether the connection carries admin credentials.
func (s *Subscription) Admin() bool { return s.admin }

// enqueue appends an event, refusing duplicates: the sequence must be
// strictly greater than anything already queued or sent on this
// subscription. Returns false when dropped.
func (s *Subscription) enqueue(evt *events.Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || evt.Sequence <= s.lastSeq {
		return false
	}
	s.lastSeq = evt.Sequence
	s.queue = append(s.queue, evt)
	s.signal()
	return true
}

// Next blocks until an event is deliverable (queue non-empty and not
// paused) or the context is cancelled. A closed subscription returns an
// error immediately.
func (s *Subscription) Next(ctx context.Context) (*events.Event, error) {
	for {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return nil, shared.NewConflictError("subscription closed")
		}
		if !s.paused && len(s.queue) > 0 {
			evt := s.queue[0]
			s.queue = s.queue[1:]
			s.mu.Unlock()
			return evt, nil
		}
		wake := s.wake
		s.mu.Unlock()

		select {
		case <-wake:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Depth returns the queued event count.
func (s *Subscription) Depth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

func (s *Subscription) setPaused(paused bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = paused
	if !paused {
		s.signal()
	}
}

func (s *Subscription) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.queue = nil
	s.signal()
}

// signal wakes a blocked Next. Callers hold s.mu.
func (s *Subscription) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Hub fans events out to per-client subscriptions. Subscription is
// implicit: every authenticated connection of character C receives
// exactly the events whose resolved recipient set contains C; admin
// connections additionally receive admin-only events.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]*Subscription
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: map[string]*Subscription{}}
}

// Subscribe registers a connection and returns its subscription.
func (h *Hub) Subscribe(connectionID, characterID string, admin bool) *Subscription {
	sub := &Subscription{
		id:          connectionID,
		characterID: characterID,
		admin:       admin,
		wake:        make(chan struct{}, 1),
	}
	h.mu.Lock()
	h.subs[connectionID] = sub
	h.mu.Unlock()
	return sub
}

// Unsubscribe closes and forgets a connection's subscription.
func (h *Hub) Unsubscribe(connectionID string) {
	h.mu.Lock()
	sub, ok := h.subs[connectionID]
	delete(h.subs, connectionID)
	h.mu.Unlock()
	if ok {
		sub.close()
	}
}

// Pause suspends delivery for a connection; events keep queueing.
func (h *Hub) Pause(connectionID string) error {
	return h.setPaused(connectionID, true)
}

// Resume reinstates delivery for a connection.
func (h *Hub) Resume(connectionID string) error {
	return h.setPaused(connectionID, false)
}

func (h *Hub) setPaused(connectionID string, paused bool) error {
	h.mu.RLock()
	sub, ok := h.subs[connectionID]
	h.mu.RUnlock()
	if !ok {
		return shared.NewNotFoundError("subscription", connectionID)
	}
	sub.setPaused(paused)
	return nil
}

// Deliver enqueues the event on every matching subscription. adminOnly
// events reach admin connections regardless of recipients.
func (h *Hub) Deliver(evt *events.Event, recipients []string, adminOnly bool) {
	recipientSet := make(map[string]struct{}, len(recipients))
	for _, id := range recipients {
		recipientSet[id] = struct{}{}
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subs {
		if adminOnly {
			if sub.admin {
				sub.enqueue(evt)
			}
			continue
		}
		if _, ok := recipientSet[sub.characterID]; ok {
			sub.enqueue(evt)
		}
	}
}

// Drain closes every subscription. Used by test_reset.
func (h *Hub) Drain() {
	h.mu.Lock()
	subs := h.subs
	h.subs = map[string]*Subscription{}
	h.mu.Unlock()
	for _, sub := range subs {
		sub.close()
	}
}

// Depths reports the queue depth per connection, for metrics scraping.
func (h *Hub) Depths() map[string]int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make(map[string]int, len(h.subs))
	for id, sub := range h.subs {
		out[id] = sub.Depth()
	}
	return out
}
