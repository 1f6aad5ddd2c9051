package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"emailscheduler/internal/clock"
	"emailscheduler/internal/model"
	"emailscheduler/internal/service"
)

// EventService is what EventHandler needs from the service layer.
type EventService interface {
	CreateEvent(ctx context.Context, in service.CreateEventInput) (model.Event, error)
	ListEvents(ctx context.Context) ([]model.Event, error)
	DeleteEvent(ctx context.Context, id int64) error
	Zone() clock.Zone
}

// EventHandler provides HTTP endpoints for events.
type EventHandler struct {
	svc EventService
}

// NewEventHandler builds an EventHandler.
func NewEventHandler(svc EventService) *EventHandler {
	return &EventHandler{svc: svc}
}

type createEventRequest struct {
	EventID   int64  `json:"event_id"`
	Subject   string `json:"email_subject"`
	Content   string `json:"email_content"`
	Timestamp string `json:"timestamp"`
}

type eventView struct {
	ID        int64  `json:"id"`
	EventID   int64  `json:"event_id"`
	Subject   string `json:"email_subject"`
	Content   string `json:"email_content"`
	Timestamp string `json:"timestamp"`
	DueAt     string `json:"due_at"`
}

func (h *EventHandler) view(ev model.Event) eventView {
	zone := h.svc.Zone()
	return eventView{
		ID:        ev.ID,
		EventID:   ev.EventID,
		Subject:   ev.Subject,
		Content:   ev.Content,
		Timestamp: zone.Format(ev.DueAt),
		DueAt:     zone.Normalize(ev.DueAt).Format(time.RFC3339),
	}
}

// Create handles POST /event.
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeEnvelope(w, http.StatusBadRequest, nil, "request body must be a JSON object: "+err.Error())
		return
	}

	ev, err := h.svc.CreateEvent(r.Context(), service.CreateEventInput{
		EventID:   req.EventID,
		Subject:   req.Subject,
		Content:   req.Content,
		Timestamp: req.Timestamp,
	})
	if err != nil {
		writeError(w, req, err)
		return
	}

	writeEnvelope(w, http.StatusCreated, h.view(ev), "Event created successfully.")
}

// List handles GET /event.
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.ListEvents(r.Context())
	if err != nil {
		writeError(w, nil, err)
		return
	}

	views := make([]eventView, 0, len(events))
	for _, ev := range events {
		views = append(views, h.view(ev))
	}
	writeEnvelope(w, http.StatusOK, views, "All events retrieved successfully.")
}

// Delete handles DELETE /event/{id}.
func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, nil, err)
		return
	}
	if err := h.svc.DeleteEvent(r.Context(), id); err != nil {
		writeError(w, id, err)
		return
	}
	writeEnvelope(w, http.StatusCreated, id, "Event deleted successfully.")
}
