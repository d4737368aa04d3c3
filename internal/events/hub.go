// Package events fans session change events out to in-process subscribers.
package events

import (
	"log/slog"
	"sync"
	"time"

	"github.com/Ayu-zh/placement-connector/internal/model"
)

const (
	// Buffer size for each subscriber's pending events
	subscriberBufferSize = 64

	// Buffer size for events waiting to be fanned out
	publishBufferSize = 256
)

// Filter decides whether a subscriber wants an event
type Filter func(model.SessionEvent) bool

// All accepts every event
func All(model.SessionEvent) bool { return true }

// Subscription is a single consumer registered with a Hub
type Subscription struct {
	name        string
	filter      Filter
	events      chan model.SessionEvent
	connectedAt time.Time
}

// Events returns the channel events are delivered on.
// It is closed when the subscription is removed or the hub shuts down.
func (s *Subscription) Events() <-chan model.SessionEvent {
	return s.events
}

// Hub delivers published session events to every matching subscriber
type Hub struct {
	subscribers map[*Subscription]bool
	mu          sync.RWMutex
	logger      *slog.Logger

	// Channels for managing subscribers
	register   chan *Subscription
	unregister chan *Subscription
	publish    chan model.SessionEvent
	done       chan struct{}
	closeOnce  sync.Once
}

// NewHub creates a new Hub. Call Run to start delivering.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		subscribers: make(map[*Subscription]bool),
		logger:      logger.With(slog.String("component", "events")),
		register:    make(chan *Subscription),
		unregister:  make(chan *Subscription),
		publish:     make(chan model.SessionEvent, publishBufferSize),
		done:        make(chan struct{}),
	}
}

// Run is the hub's event loop. It returns once Close is called.
func (h *Hub) Run() {
	h.logger.Info("event hub started")
	for {
		select {
		case sub := <-h.register:
			h.mu.Lock()
			h.subscribers[sub] = true
			count := len(h.subscribers)
			h.mu.Unlock()
			h.logger.Debug("subscriber registered",
				slog.String("subscriber", sub.name),
				slog.Int("total_subscribers", count))

		case sub := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.subscribers[sub]; ok {
				delete(h.subscribers, sub)
				close(sub.events)
				count := len(h.subscribers)
				h.mu.Unlock()
				h.logger.Debug("subscriber unregistered",
					slog.String("subscriber", sub.name),
					slog.Duration("subscription_duration", time.Since(sub.connectedAt)),
					slog.Int("total_subscribers", count))
			} else {
				h.mu.Unlock()
			}

		case event := <-h.publish:
			h.mu.RLock()
			dropped := 0
			for sub := range h.subscribers {
				if !sub.filter(event) {
					continue
				}
				select {
				case sub.events <- event:
				default:
					dropped++
					h.logger.Warn("event dropped - subscriber buffer full",
						slog.String("subscriber", sub.name),
						slog.String("event", string(event.Type)))
				}
			}
			h.mu.RUnlock()
			if dropped > 0 {
				h.logger.Warn("event delivery partial failure", slog.Int("dropped", dropped))
			}

		case <-h.done:
			h.mu.Lock()
			count := len(h.subscribers)
			for sub := range h.subscribers {
				close(sub.events)
				delete(h.subscribers, sub)
			}
			h.mu.Unlock()
			h.logger.Info("event hub stopped", slog.Int("disconnected_subscribers", count))
			return
		}
	}
}

// Subscribe registers a new subscriber. Events published after Subscribe
// returns are delivered if filter accepts them. On a closed hub the
// returned subscription's channel is already closed.
func (h *Hub) Subscribe(name string, filter Filter) *Subscription {
	if filter == nil {
		filter = All
	}
	sub := &Subscription{
		name:        name,
		filter:      filter,
		events:      make(chan model.SessionEvent, subscriberBufferSize),
		connectedAt: time.Now(),
	}
	select {
	case h.register <- sub:
	case <-h.done:
		close(sub.events)
	}
	return sub
}

// Unsubscribe removes a subscriber and closes its channel
func (h *Hub) Unsubscribe(sub *Subscription) {
	select {
	case h.unregister <- sub:
	case <-h.done:
	}
}

// Publish queues an event for delivery without blocking
func (h *Hub) Publish(event model.SessionEvent) {
	select {
	case <-h.done:
		return
	default:
	}
	select {
	case h.publish <- event:
	default:
		h.logger.Warn("event dropped - hub buffer full", slog.String("event", string(event.Type)))
	}
}

// Close shuts down the hub. Safe to call more than once.
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// SubscriberCount returns the number of registered subscribers
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}
