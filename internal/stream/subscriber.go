package stream

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/appetiteclub/apt"
	aptevents "github.com/appetiteclub/apt/events"

	"github.com/cortilabs/cuisine/internal/events"
)

// EventSubscriber bridges the shared event subject into the Hub so SSE
// observers receive every broadcast mutation.
type EventSubscriber struct {
	subscriber aptevents.Subscriber
	hub        *Hub
	logger     apt.Logger
}

func NewEventSubscriber(sub aptevents.Subscriber, hub *Hub, logger apt.Logger) *EventSubscriber {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &EventSubscriber{
		subscriber: sub,
		hub:        hub,
		logger:     logger,
	}
}

func (s *EventSubscriber) Start(ctx context.Context) error {
	s.log().Info("starting event subscriber", "subject", events.Subject)
	if s.subscriber == nil {
		return fmt.Errorf("event subscriber not configured")
	}
	return s.subscriber.Subscribe(ctx, events.Subject, s.handleEvent)
}

func (s *EventSubscriber) handleEvent(ctx context.Context, msg []byte) error {
	var evt events.Event
	if err := json.Unmarshal(msg, &evt); err != nil {
		s.log().Info("invalid event payload", "error", err)
		return nil
	}

	if evt.Type == "" {
		s.log().Debug("event missing type, dropping")
		return nil
	}

	s.hub.Broadcast(evt)
	return nil
}

func (s *EventSubscriber) log() apt.Logger {
	return s.logger.With("component", "EventSubscriber")
}
