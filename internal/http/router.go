package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"emailscheduler/internal/http/handler"
)

// Handlers groups the route handlers.
type Handlers struct {
	Control    *handler.ControlHandler
	Events     *handler.EventHandler
	Recipients *handler.RecipientHandler
}

// NewRouter wires HTTP routes. Resource routes are served both at the root
// and under /api.
func NewRouter(h Handlers, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger.With().Str("component", "http").Logger()))
	r.Use(middleware.Recoverer)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("Hello world!"))
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/control", func(r chi.Router) {
		r.Get("/status", h.Control.Status)
		r.Post("/start", h.Control.Start)
		r.Post("/stop", h.Control.Stop)
		r.Post("/run", h.Control.Run)
	})

	resources := func(r chi.Router) {
		r.Route("/event", func(r chi.Router) {
			r.Post("/", h.Events.Create)
			r.Get("/", h.Events.List)
			r.Delete("/{id}", h.Events.Delete)
		})
		r.Route("/recipient", func(r chi.Router) {
			r.Post("/", h.Recipients.Create)
			r.Get("/", h.Recipients.List)
			r.Delete("/{id}", h.Recipients.Delete)
		})
	}
	resources(r)
	r.Route("/api", resources)

	return r
}
