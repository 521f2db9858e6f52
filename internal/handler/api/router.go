// Copyright (c) 2025-2026 Vihara Santidharma
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/viharasite/vihara-go/internal/metrics"
	"github.com/viharasite/vihara-go/internal/middleware"
)

// RouterConfig carries the cross-cutting options for the HTTP router.
type RouterConfig struct {
	CORSOrigins []string
}

// Router assembles the chi router for the whole API surface.
func (h *Handler) Router(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(metrics.Middleware())

	if len(cfg.CORSOrigins) > 0 {
		r.Use(middleware.CORS(cfg.CORSOrigins))
	}

	r.NotFound(NotFound)
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		methodNotAllowedFor(req)(w, req)
	})

	r.Get("/metrics", metrics.Handler().ServeHTTP)
	r.Get("/api/status", h.Status)

	r.With(h.login.Middleware()).Post("/api/login", h.Login)
	r.With(middleware.BearerAuth(h.codec)).Get("/api/me", h.Me)

	r.Route("/api/events", func(r chi.Router) {
		r.Get("/", h.ListEvents)
		r.Get("/{id}", h.GetEvent)
		r.Get("/{id}/", h.GetEvent)

		r.Group(func(r chi.Router) {
			r.Use(middleware.BearerAuth(h.codec))
			r.Post("/", h.CreateEvent)
			r.Put("/{id}", h.UpdateEvent)
			r.Put("/{id}/", h.UpdateEvent)
			r.Delete("/{id}", h.DeleteEvent)
			r.Delete("/{id}/", h.DeleteEvent)
		})
	})

	r.Route("/api/quotes", func(r chi.Router) {
		r.Get("/", h.GetQuote)
		r.With(middleware.OptionalBearerAuth(h.codec)).Post("/", h.UpdateQuote)
	})

	r.With(middleware.BearerAuth(h.codec)).Post("/api/upload", h.Upload)
	r.With(middleware.BearerAuth(h.codec)).Get("/api/admin/audit", h.Audit)

	return r
}

// methodNotAllowedFor picks the Allow set for the matched route family.
func methodNotAllowedFor(r *http.Request) http.HandlerFunc {
	switch {
	case r.URL.Path == "/api/events" || r.URL.Path == "/api/events/":
		return MethodNotAllowed(http.MethodGet, http.MethodPost)
	case len(r.URL.Path) > len("/api/events/") && r.URL.Path[:len("/api/events/")] == "/api/events/":
		return MethodNotAllowed(http.MethodGet, http.MethodPut, http.MethodDelete)
	case r.URL.Path == "/api/quotes" || r.URL.Path == "/api/quotes/":
		return MethodNotAllowed(http.MethodGet, http.MethodPost)
	case r.URL.Path == "/api/login":
		return MethodNotAllowed(http.MethodPost)
	case r.URL.Path == "/api/upload":
		return MethodNotAllowed(http.MethodPost)
	case r.URL.Path == "/api/me", r.URL.Path == "/api/admin/audit", r.URL.Path == "/api/status":
		return MethodNotAllowed(http.MethodGet)
	default:
		return MethodNotAllowed(http.MethodGet)
	}
}
