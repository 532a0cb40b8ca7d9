package stream

import (
	"context"
	"testing"

	aptevents "github.com/appetiteclub/apt/events"

	"github.com/cortilabs/cuisine/internal/events"
)

// MockSubscriber is a mock implementation of events.Subscriber for testing
type MockSubscriber struct {
	SubscribeFunc func(ctx context.Context, topic string, handler aptevents.HandlerFunc) error
}

func (m *MockSubscriber) Subscribe(ctx context.Context, topic string, handler aptevents.HandlerFunc) error {
	if m.SubscribeFunc != nil {
		return m.SubscribeFunc(ctx, topic, handler)
	}
	return nil
}

func TestEventSubscriberStartSubscribesSharedSubject(t *testing.T) {
	var gotTopic string
	sub := &MockSubscriber{
		SubscribeFunc: func(ctx context.Context, topic string, handler aptevents.HandlerFunc) error {
			gotTopic = topic
			return nil
		},
	}

	s := NewEventSubscriber(sub, NewHub(nil), nil)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if gotTopic != events.Subject {
		t.Errorf("subscribed topic = %q, want %q", gotTopic, events.Subject)
	}
}

func TestEventSubscriberStartNilSubscriber(t *testing.T) {
	s := NewEventSubscriber(nil, NewHub(nil), nil)
	if err := s.Start(context.Background()); err == nil {
		t.Error("Start() should fail without a subscriber")
	}
}

func TestEventSubscriberHandleEvent(t *testing.T) {
	hub := NewHub(nil)
	ch := hub.Subscribe("observer")
	s := NewEventSubscriber(&MockSubscriber{}, hub, nil)

	msg := []byte(`{"event_type":"order-created","payload":{"id":"abc"}}`)
	if err := s.handleEvent(context.Background(), msg); err != nil {
		t.Fatalf("handleEvent() error = %v", err)
	}

	select {
	case evt := <-ch:
		if evt.Type != events.TopicOrderCreated {
			t.Errorf("Type = %q, want %q", evt.Type, events.TopicOrderCreated)
		}
		if len(evt.Payload) == 0 {
			t.Error("Payload should be forwarded")
		}
	default:
		t.Fatal("event was not forwarded to the hub")
	}
}

func TestEventSubscriberHandleEventInvalid(t *testing.T) {
	tests := []struct {
		name string
		msg  []byte
	}{
		{"invalidJSON", []byte(`{not json`)},
		{"missingType", []byte(`{"payload":{}}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hub := NewHub(nil)
			ch := hub.Subscribe("observer")
			s := NewEventSubscriber(&MockSubscriber{}, hub, nil)

			if err := s.handleEvent(context.Background(), tt.msg); err != nil {
				t.Fatalf("handleEvent() should swallow bad payloads, got %v", err)
			}

			select {
			case evt := <-ch:
				t.Errorf("nothing should be forwarded, got %+v", evt)
			default:
			}
		})
	}
}
