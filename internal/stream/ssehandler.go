package stream

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// SSEHandler exposes the event stream over Server-Sent Events.
type SSEHandler struct {
	hub    *Hub
	logger apt.Logger
}

func NewSSEHandler(hub *Hub, logger apt.Logger) *SSEHandler {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &SSEHandler{
		hub:    hub,
		logger: logger,
	}
}

func (h *SSEHandler) RegisterRoutes(r chi.Router) {
	r.Get("/events", h.ServeHTTP)
}

// ServeHTTP implements http.Handler for the SSE endpoint.
func (h *SSEHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	subscriberID := uuid.New().String()
	h.logger.Info("new SSE connection", "subscriber_id", subscriberID)

	eventChan := h.hub.Subscribe(subscriberID)
	defer h.hub.Unsubscribe(subscriberID)

	// Send initial comment to establish connection
	fmt.Fprintf(w, ": connected\n\n")

	// Configure retry interval for reconnection (in milliseconds)
	fmt.Fprintf(w, "retry: 2000\n\n")

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}

	// Send keepalive every 30 seconds
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			h.logger.Info("SSE client disconnected", "subscriber_id", subscriberID)
			return

		case <-ticker.C:
			fmt.Fprintf(w, ": keepalive\n\n")
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}

		case evt, ok := <-eventChan:
			if !ok {
				h.logger.Info("event channel closed", "subscriber_id", subscriberID)
				return
			}

			data, err := json.Marshal(evt)
			if err != nil {
				h.logger.Error("failed to marshal event", "error", err)
				continue
			}

			fmt.Fprintf(w, "event: %s\n", evt.Type)
			fmt.Fprintf(w, "data: %s\n\n", data)
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		}
	}
}
