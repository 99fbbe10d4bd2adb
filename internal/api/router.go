package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/devmodel/internal/auth"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		// WebSocket clients cannot set headers; the token is checked in the handler.
		r.Get("/ws", s.handleWebSocket)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.With(requirePermission(auth.PermTreeRead)).Group(func(r chi.Router) {
				r.Get("/qtree", s.handleQTree)
				r.Get("/types", s.handleListTypes)
				r.Get("/types/{driver}", s.handleDeviceHelp)
				r.Get("/show", s.handleShow)
			})

			r.With(requirePermission(auth.PermDeviceManage)).Group(func(r chi.Router) {
				r.Post("/devices", s.handleAddDevice)
				r.Delete("/devices/{id}", s.handleDeleteDevice)
			})

			r.With(requirePermission(auth.PermMachineReset)).Post("/reset", s.handleReset)
			r.With(requirePermission(auth.PermJournalRead)).Get("/events", s.handleListEvents)
		})
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
		"clients": s.hub.ClientCount(),
	})
}
