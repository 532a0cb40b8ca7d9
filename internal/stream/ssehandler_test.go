package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cortilabs/cuisine/internal/events"
)

func TestSSEHandlerStreamsEvents(t *testing.T) {
	hub := NewHub(nil)
	h := NewSSEHandler(hub, nil)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		h.ServeHTTP(rec, req)
		close(done)
	}()

	// Wait for the subscriber to register before broadcasting.
	deadline := time.After(2 * time.Second)
	for {
		hub.mu.RLock()
		n := len(hub.subscribers)
		hub.mu.RUnlock()
		if n == 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("subscriber never registered")
		case <-time.After(5 * time.Millisecond):
		}
	}

	payload, _ := json.Marshal(map[string]string{"id": "abc"})
	hub.Broadcast(events.Event{
		Type:       events.TopicOrderCreated,
		OccurredAt: time.Now(),
		Payload:    payload,
	})

	// Give the handler a moment to write the frame, then disconnect.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not return after disconnect")
	}

	body := rec.Body.String()
	if !strings.Contains(body, ": connected") {
		t.Error("missing connection comment")
	}
	if !strings.Contains(body, "retry: 2000") {
		t.Error("missing retry hint")
	}
	if !strings.Contains(body, "event: order-created") {
		t.Errorf("missing event frame, body:\n%s", body)
	}
	if !strings.Contains(body, `"id":"abc"`) {
		t.Errorf("missing event data, body:\n%s", body)
	}

	if got := rec.Header().Get("Content-Type"); got != "text/event-stream" {
		t.Errorf("Content-Type = %q, want text/event-stream", got)
	}
	if got := rec.Header().Get("Cache-Control"); got != "no-cache" {
		t.Errorf("Cache-Control = %q, want no-cache", got)
	}
}

func TestSSEHandlerUnsubscribesOnDisconnect(t *testing.T) {
	hub := NewHub(nil)
	h := NewSSEHandler(hub, nil)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		h.ServeHTTP(rec, req)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not return after disconnect")
	}

	hub.mu.RLock()
	n := len(hub.subscribers)
	hub.mu.RUnlock()
	if n != 0 {
		t.Errorf("subscribers = %d, want 0 after disconnect", n)
	}
}
