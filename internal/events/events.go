package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/appetiteclub/apt"
	aptevents "github.com/appetiteclub/apt/events"
)

// Subject is the single NATS subject carrying every broadcast event.
// There are no per-topic subscriptions: every connected observer receives
// every event and filters client-side.
const Subject = "cuisine.events"

const (
	TopicItemCreated  = "item-created"
	TopicItemUpdated  = "item-updated"
	TopicItemDeleted  = "item-deleted"
	TopicOrderCreated = "order-created"
	TopicOrderUpdated = "order-updated"
	TopicOrderDeleted = "order-deleted"
	TopicServiceReset = "service-reset"
)

// Event is the envelope published for every mutation. Payload is the affected
// MenuItem or Order, a bare id for deletions, or nil for a service reset.
type Event struct {
	Type       string          `json:"event_type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

// Notifier fans out mutation events to all connected observers.
// Delivery is at-least-once per connected observer and fire-and-forget:
// a failed broadcast is logged, never surfaced to the mutating caller.
type Notifier interface {
	Broadcast(ctx context.Context, eventType string, payload any)
}

// NoopNotifier discards every broadcast. Used as the default when no
// publisher is wired, mirroring apt.NewNoopLogger.
type NoopNotifier struct{}

func NewNoopNotifier() *NoopNotifier {
	return &NoopNotifier{}
}

func (n *NoopNotifier) Broadcast(ctx context.Context, eventType string, payload any) {}

// BroadcastNotifier publishes event envelopes to the shared subject.
type BroadcastNotifier struct {
	publisher aptevents.Publisher
	logger    apt.Logger
}

func NewNotifier(publisher aptevents.Publisher, logger apt.Logger) *BroadcastNotifier {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &BroadcastNotifier{
		publisher: publisher,
		logger:    logger,
	}
}

func (n *BroadcastNotifier) Broadcast(ctx context.Context, eventType string, payload any) {
	if n.publisher == nil {
		return
	}

	evt := Event{
		Type:       eventType,
		OccurredAt: time.Now(),
	}

	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			n.logger.Error("cannot marshal event payload", "event_type", eventType, "error", err)
			return
		}
		evt.Payload = raw
	}

	msg, err := json.Marshal(evt)
	if err != nil {
		n.logger.Error("cannot marshal event envelope", "event_type", eventType, "error", err)
		return
	}

	if err := n.publisher.Publish(ctx, Subject, msg); err != nil {
		n.logger.Error("cannot publish event", "event_type", eventType, "error", err)
	}
}
