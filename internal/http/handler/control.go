package handler

import (
	"context"
	"errors"
	"net/http"

	"emailscheduler/internal/scheduler"
	"emailscheduler/internal/service"
)

// SchedulerController abstracts scheduler operations for handlers.
type SchedulerController interface {
	Start(ctx context.Context) error
	Stop() error
	IsRunning() bool
}

// TickRunner runs one dispatch pass on demand.
type TickRunner interface {
	RunTickNow(ctx context.Context) (service.TickReport, error)
}

// ControlHandler handles scheduler start/stop/run endpoints.
type ControlHandler struct {
	scheduler SchedulerController
	ticks     TickRunner
}

// NewControlHandler creates a new instance.
func NewControlHandler(s SchedulerController, ticks TickRunner) *ControlHandler {
	return &ControlHandler{scheduler: s, ticks: ticks}
}

// Start triggers the scheduler loop.
func (h *ControlHandler) Start(w http.ResponseWriter, r *http.Request) {
	// The loop must outlive the request.
	if err := h.scheduler.Start(context.Background()); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, scheduler.ErrAlreadyRunning) {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "started"})
}

// Stop halts the scheduler loop.
func (h *ControlHandler) Stop(w http.ResponseWriter, r *http.Request) {
	if err := h.scheduler.Stop(); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, scheduler.ErrNotRunning) {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "stopped"})
}

// Status reports whether the loop is running.
func (h *ControlHandler) Status(w http.ResponseWriter, r *http.Request) {
	status := "stopped"
	if h.scheduler.IsRunning() {
		status = "running"
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": status})
}

// Run executes one dispatch pass synchronously and returns its report.
func (h *ControlHandler) Run(w http.ResponseWriter, r *http.Request) {
	report, err := h.ticks.RunTickNow(r.Context())
	if err != nil {
		writeEnvelope(w, http.StatusServiceUnavailable, report, err.Error())
		return
	}
	writeEnvelope(w, http.StatusOK, report, "Tick completed.")
}
