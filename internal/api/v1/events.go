package v1

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/streamdex/streamdex/internal/events"
)

// EventSource is the bus subset the API needs for live event streaming.
type EventSource interface {
	SubscribeAll(bufferSize int) <-chan events.Event
	Unsubscribe(ch <-chan events.Event)
}

// eventPayload is the wire form of one event on the SSE stream.
type eventPayload struct {
	EventType  string `json:"event_type"`
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
	OccurredAt string `json:"occurred_at"`
	Data       any    `json:"data,omitempty"`
}

// streamEvents serves live events over server-sent events. Delivery is
// best effort: a slow consumer misses events rather than slowing the
// publishers down.
func (s *Server) streamEvents(w http.ResponseWriter, r *http.Request) {
	if s.deps.Bus == nil {
		writeError(w, http.StatusServiceUnavailable, "NO_EVENT_BUS", "Event bus not configured")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "NO_FLUSH", "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := s.deps.Bus.SubscribeAll(64)
	defer s.deps.Bus.Unsubscribe(ch)

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			payload := eventPayload{
				EventType:  ev.EventType(),
				EntityType: ev.EntityType(),
				EntityID:   ev.EntityID(),
				OccurredAt: ev.OccurredAt().Format(time.RFC3339),
				Data:       ev,
			}
			raw, err := json.Marshal(payload)
			if err != nil {
				continue
			}
			if _, err := w.Write([]byte("data: " + string(raw) + "\n\n")); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
