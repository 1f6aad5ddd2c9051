package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"emailscheduler/internal/model"
)

// RecipientService is what RecipientHandler needs from the service layer.
type RecipientService interface {
	AddRecipient(ctx context.Context, email string) (model.Recipient, error)
	ListRecipients(ctx context.Context) ([]model.Recipient, error)
	DeleteRecipient(ctx context.Context, id int64) error
}

// RecipientHandler provides HTTP endpoints for recipients.
type RecipientHandler struct {
	svc RecipientService
}

// NewRecipientHandler builds a RecipientHandler.
func NewRecipientHandler(svc RecipientService) *RecipientHandler {
	return &RecipientHandler{svc: svc}
}

type createRecipientRequest struct {
	Email string `json:"email"`
}

// Create handles POST /recipient.
func (h *RecipientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRecipientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeEnvelope(w, http.StatusBadRequest, nil, "request body must be a JSON object: "+err.Error())
		return
	}

	rec, err := h.svc.AddRecipient(r.Context(), req.Email)
	if err != nil {
		writeError(w, req, err)
		return
	}
	writeEnvelope(w, http.StatusCreated, rec, "Recipient added successfully.")
}

// List handles GET /recipient.
func (h *RecipientHandler) List(w http.ResponseWriter, r *http.Request) {
	recipients, err := h.svc.ListRecipients(r.Context())
	if err != nil {
		writeError(w, nil, err)
		return
	}
	if recipients == nil {
		recipients = []model.Recipient{}
	}
	writeEnvelope(w, http.StatusOK, recipients, "All recipients retrieved successfully.")
}

// Delete handles DELETE /recipient/{id}.
func (h *RecipientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, nil, err)
		return
	}
	if err := h.svc.DeleteRecipient(r.Context(), id); err != nil {
		writeError(w, id, err)
		return
	}
	writeEnvelope(w, http.StatusCreated, id, "Recipient deleted successfully.")
}
