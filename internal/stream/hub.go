package stream

import (
	"context"
	"sync"

	"github.com/appetiteclub/apt"

	"github.com/cortilabs/cuisine/internal/events"
)

// subscriberBuffer caps how many undelivered events a single observer may
// lag behind before events are dropped for it.
const subscriberBuffer = 100

// Hub fans events out to all connected observers. There are no per-topic
// subscriptions: every subscriber receives every event and filters
// client-side. Delivery is fire-and-forget; a subscriber whose channel is
// full misses the event and must resynchronize via the query endpoints.
type Hub struct {
	logger apt.Logger

	mu          sync.RWMutex
	subscribers map[string]chan events.Event
}

func NewHub(logger apt.Logger) *Hub {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &Hub{
		logger:      logger,
		subscribers: make(map[string]chan events.Event),
	}
}

// Subscribe adds a new observer and returns its event channel.
func (h *Hub) Subscribe(subscriberID string) <-chan events.Event {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan events.Event, subscriberBuffer)
	h.subscribers[subscriberID] = ch

	h.logger.Info("new event subscriber", "subscriber_id", subscriberID, "total_subscribers", len(h.subscribers))
	return ch
}

// Unsubscribe removes an observer and closes its channel.
func (h *Hub) Unsubscribe(subscriberID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ch, ok := h.subscribers[subscriberID]; ok {
		close(ch)
		delete(h.subscribers, subscriberID)
		h.logger.Info("event subscriber disconnected", "subscriber_id", subscriberID, "total_subscribers", len(h.subscribers))
	}
}

// Broadcast delivers evt to every connected observer.
func (h *Hub) Broadcast(evt events.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for subscriberID, ch := range h.subscribers {
		select {
		case ch <- evt:
		default:
			// Channel full, subscriber too slow - skip this event
			h.logger.Info("subscriber channel full, dropping event", "subscriber_id", subscriberID, "event_type", evt.Type)
		}
	}
}

// Stop closes all subscriber channels.
func (h *Hub) Stop(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, ch := range h.subscribers {
		close(ch)
		delete(h.subscribers, id)
	}
	return nil
}
