package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(middleware.RequestSize(maxRequestBodySize))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/status", s.handleStatus)
		r.Get("/metrics", s.handleMetrics)

		r.Get("/elements/{kind}", s.handleListElements)

		r.Route("/connections", func(r chi.Router) {
			r.Get("/", s.handleListConnections)
			r.Post("/", s.handleConnect)
			r.Delete("/{id}", s.handleDisconnect)
		})

		r.Route("/sinks/{id}", func(r chi.Router) {
			r.Get("/connections", s.handleSinkConnections)
			r.Put("/volume", s.handleSetVolume)
			r.Put("/mute", s.handleSetMute)
			r.Put("/sound-properties", s.handleSetSinkSoundProperty)
			r.Put("/notification-configuration", s.handleSetSinkNotification)
		})

		r.Route("/sources/{id}", func(r chi.Router) {
			r.Get("/connections", s.handleSourceConnections)
			r.Put("/sound-properties", s.handleSetSourceSoundProperty)
			r.Put("/notification-configuration", s.handleSetSourceNotification)
		})

		r.Route("/system-properties", func(r chi.Router) {
			r.Get("/", s.handleListSystemProperties)
			r.Put("/", s.handleSetSystemProperty)
		})
	})

	r.Get(s.wsPath(), s.handleWebSocket)

	return r
}

func (s *Server) wsPath() string {
	if s.wsCfg.Path == "" {
		return "/ws"
	}
	return s.wsCfg.Path
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}
