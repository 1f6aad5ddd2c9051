package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"emailscheduler/internal/service"
)

// envelope is the body shape of every JSON response.
type envelope struct {
	Data    any    `json:"data"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeEnvelope(w http.ResponseWriter, status int, data any, message string) {
	writeJSON(w, status, envelope{Data: data, Message: message})
}

// writeError maps service errors to status codes. Validation problems are
// the caller's fault; anything else is ours.
func writeError(w http.ResponseWriter, data any, err error) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		writeEnvelope(w, http.StatusBadRequest, data, verr.Message)
		return
	}
	writeEnvelope(w, http.StatusInternalServerError, data, err.Error())
}

func parseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, &service.ValidationError{Field: "id", Message: "id must be a positive integer"}
	}
	return id, nil
}
