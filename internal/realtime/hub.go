package realtime

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

// Hub fans events out to subscribers of a collection. Publishing never
// blocks: a subscriber whose buffer is full misses the event.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[*Subscription]struct{}
	buffer int
	closed bool
	logger *slog.Logger
}

// NewHub creates a Hub whose subscriptions buffer up to buffer events.
func NewHub(buffer int, logger *slog.Logger) *Hub {
	if buffer < 1 {
		buffer = 1
	}
	return &Hub{
		subs:   make(map[string]map[*Subscription]struct{}),
		buffer: buffer,
		logger: logger.With("system", "realtime"),
	}
}

// Subscription receives events for one collection until closed.
type Subscription struct {
	hub        *Hub
	collection string
	events     chan Event
	once       sync.Once
	dropped    atomic.Int64
}

// Events returns the receive channel. It is closed by Close or Hub.Close.
func (s *Subscription) Events() <-chan Event {
	return s.events
}

// Collection returns the subscribed collection name.
func (s *Subscription) Collection() string {
	return s.collection
}

// Dropped returns how many events were discarded because the buffer was full.
func (s *Subscription) Dropped() int64 {
	return s.dropped.Load()
}

// Close unsubscribes. Safe to call more than once.
func (s *Subscription) Close() {
	s.hub.remove(s)
}

// Subscribe registers a new subscription for collection. Subscribing to a
// closed hub returns a subscription whose channel is already closed.
func (h *Hub) Subscribe(collection string) *Subscription {
	sub := &Subscription{
		hub:        h,
		collection: collection,
		events:     make(chan Event, h.buffer),
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		sub.once.Do(func() { close(sub.events) })
		return sub
	}

	set, ok := h.subs[collection]
	if !ok {
		set = make(map[*Subscription]struct{})
		h.subs[collection] = set
	}
	set[sub] = struct{}{}

	h.logger.Debug("subscribed", "collection", collection, "subscribers", len(set))
	return sub
}

// Publish delivers e to every subscriber of e.Collection.
func (h *Hub) Publish(e Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subs[e.Collection] {
		select {
		case sub.events <- e:
		default:
			sub.dropped.Add(1)
			h.logger.Warn("subscriber buffer full, event dropped",
				"collection", e.Collection,
				"record_id", e.RecordID,
				"action", e.Action,
			)
		}
	}
}

// Subscribers returns the number of active subscriptions for collection.
func (h *Hub) Subscribers(collection string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[collection])
}

// Close closes every subscription and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true

	for collection, set := range h.subs {
		for sub := range set {
			sub.once.Do(func() { close(sub.events) })
		}
		delete(h.subs, collection)
	}
}

func (h *Hub) remove(s *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if set, ok := h.subs[s.collection]; ok {
		delete(set, s)
		if len(set) == 0 {
			delete(h.subs, s.collection)
		}
	}
	s.once.Do(func() { close(s.events) })
}
