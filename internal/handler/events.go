package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/darematch/api/internal/middleware"
	"github.com/darematch/api/internal/model"
	"github.com/darematch/api/internal/service"
)

// EventsHandler handles SSE change-feed streaming
type EventsHandler struct {
	eventHub         *service.EventHub
	challengeService *service.ChallengeService
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(eventHub *service.EventHub, challengeService *service.ChallengeService) *EventsHandler {
	return &EventsHandler{
		eventHub:         eventHub,
		challengeService: challengeService,
	}
}

// StreamChallenge handles GET /v1/challenges/{challengeId}/events.
// It streams every committed change of one challenge to a participant.
// There is no replay: the stream opens with a full snapshot of the current
// record and then carries only changes committed after that point.
func (h *EventsHandler) StreamChallenge(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	challengeID := r.PathValue("challengeId")

	flusher, ok := w.(http.Flusher)
	if !ok {
		WriteError(w, model.NewInternalError("streaming not supported"))
		return
	}

	subscriberID := uuid.New().String()

	// Subscribe before the snapshot read. A commit landing between the two
	// is then delivered through the subscription instead of lost; the client
	// may see it twice, which is harmless since events carry full records.
	sub := h.eventHub.Subscribe(challengeID, subscriberID)
	defer h.eventHub.Unsubscribe(challengeID, subscriberID)

	// Participation check doubles as the initial snapshot read.
	challenge, err := h.challengeService.Get(r.Context(), userID, challengeID)
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "stream challenge"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	// The server's write timeout would sever the stream; lift it for the
	// lifetime of this response. Not every ResponseWriter supports it.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	fmt.Fprintf(w, "event: connected\ndata: {\"subscriber_id\":\"%s\"}\n\n", subscriberID)
	snapshot := &service.Event{Type: "challenge.snapshot", Data: challenge}
	fmt.Fprint(w, snapshot.Format())
	flusher.Flush()

	for {
		select {
		case event, ok := <-sub.Events:
			if !ok {
				return
			}
			fmt.Fprint(w, event.Format())
			flusher.Flush()

		case <-sub.Done:
			return

		case <-r.Context().Done():
			// Client disconnected
			return
		}
	}
}

// StreamUser handles GET /v1/events/stream.
// It streams user-directed events: incoming challenges, moves by opponents,
// friend requests.
func (h *EventsHandler) StreamUser(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		WriteError(w, model.NewInternalError("streaming not supported"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	subscriberID := uuid.New().String()

	sub := h.eventHub.SubscribeUser(userID, subscriberID)
	defer h.eventHub.UnsubscribeUser(userID, subscriberID)

	fmt.Fprintf(w, "event: connected\ndata: {\"subscriber_id\":\"%s\"}\n\n", subscriberID)
	flusher.Flush()

	for {
		select {
		case event, ok := <-sub.Events:
			if !ok {
				return
			}
			fmt.Fprint(w, event.Format())
			flusher.Flush()

		case <-sub.Done:
			return

		case <-r.Context().Done():
			return
		}
	}
}
