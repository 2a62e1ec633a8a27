package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.StripSlashes)
	r.Use(s.requestIDMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// Probed frequently, so kept out of the request log.
	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(s.loggingMiddleware)

		if s.metrics != nil {
			r.Method(http.MethodGet, "/metrics", s.metrics)
		}

		r.Route("/api/v1", func(r chi.Router) {
			r.Route("/devices", func(r chi.Router) {
				r.Get("/", s.handleListDevices)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetDeviceState)
					r.Put("/toggle", s.handleToggleDevice)
					r.Put("/color", s.handleSetDeviceColor)
				})
			})

			if s.auditRepo != nil {
				r.Get("/audit", s.handleListAuditLogs)
			}

			r.Get("/system", s.handleSystemStatus)
		})
	})

	return r
}

// healthResponse is the /health body.
type healthResponse struct {
	Version string `json:"version"`
	Status  string `json:"status"`
}

// handleHealth reports whether the directory cache backend accepts writes.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.devices.HealthCheck(r.Context()); err != nil {
		s.logger.Warn("health check failed",
			"error", err,
			"request_id", requestID(r),
		)
		writeJSON(w, http.StatusInternalServerError, healthResponse{Version: s.version, Status: "error"})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Version: s.version, Status: "ok"})
}
