// Copyright (c) 2025-2026 Vihara Santidharma
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/yuin/goldmark"

	"github.com/viharasite/vihara-go/internal/middleware"
	"github.com/viharasite/vihara-go/internal/model"
	"github.com/viharasite/vihara-go/internal/service"
)

// publicCacheControl is set on unauthenticated content reads so a CDN
// in front revalidates at the edge once a minute.
const publicCacheControl = "public, max-age=0, s-maxage=60"

var markdown = goldmark.New()

// EventResponse represents an event in API responses.
type EventResponse struct {
	ID              string         `json:"id"`
	Title           string         `json:"title"`
	Date            string         `json:"date"`
	Location        string         `json:"location"`
	Description     string         `json:"description,omitempty"`
	DescriptionHTML string         `json:"description_html,omitempty"`
	Category        model.Category `json:"category"`
	Image           string         `json:"image,omitempty"`
}

// CreateEventRequest represents the request body for creating an event.
type CreateEventRequest struct {
	Title       string `json:"title"`
	Date        string `json:"date"`
	Location    string `json:"location"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category"`
	Image       string `json:"image,omitempty"`
}

// UpdateEventRequest represents the request body for updating an event.
// Absent fields keep their current value.
type UpdateEventRequest struct {
	Title       *string `json:"title,omitempty"`
	Date        *string `json:"date,omitempty"`
	Location    *string `json:"location,omitempty"`
	Description *string `json:"description,omitempty"`
	Category    *string `json:"category,omitempty"`
	Image       *string `json:"image,omitempty"`
}

// eventToResponse converts a model.EventItem to EventResponse,
// optionally rendering the markdown description to HTML.
func eventToResponse(item model.EventItem, includeHTML bool) EventResponse {
	resp := EventResponse{
		ID:          item.ID,
		Title:       item.Title,
		Date:        item.Date,
		Location:    item.Location,
		Description: item.Description,
		Category:    item.Category,
		Image:       item.Image,
	}

	if includeHTML && item.Description != "" {
		var buf bytes.Buffer
		if err := markdown.Convert([]byte(item.Description), &buf); err != nil {
			slog.Warn("rendering event description failed", "id", item.ID, "error", err)
		} else {
			resp.DescriptionHTML = buf.String()
		}
	}

	return resp
}

// includeHTMLParam reports whether ?include=html was requested.
func includeHTMLParam(r *http.Request) bool {
	for _, inc := range strings.Split(r.URL.Query().Get("include"), ",") {
		if strings.TrimSpace(inc) == "html" {
			return true
		}
	}
	return false
}

// eventIDParam extracts the event id from the URL, tolerating a
// trailing slash and percent-encoding.
func eventIDParam(r *http.Request) string {
	id := chi.URLParam(r, "id")
	id = strings.TrimSuffix(id, "/")
	if decoded, err := url.PathUnescape(id); err == nil {
		id = decoded
	}
	return id
}

// ListEvents handles GET /api/events. Public; always sorted by date.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	items, err := h.events.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	includeHTML := includeHTMLParam(r)
	responses := make([]EventResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, eventToResponse(item, includeHTML))
	}

	w.Header().Set("Cache-Control", publicCacheControl)
	WriteSuccess(w, responses)
}

// GetEvent handles GET /api/events/{id}. Public.
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id := eventIDParam(r)
	if id == "" {
		WriteBadRequest(w, "Invalid event ID", nil)
		return
	}

	item, err := h.events.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Cache-Control", publicCacheControl)
	WriteSuccess(w, eventToResponse(item, includeHTMLParam(r)))
}

// CreateEvent handles POST /api/events.
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		WriteUnauthorized(w, "Not authenticated")
		return
	}

	var req CreateEventRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	item, err := h.events.Create(r.Context(), *user, service.CreateEventInput{
		Title:       req.Title,
		Date:        req.Date,
		Location:    req.Location,
		Description: req.Description,
		Category:    req.Category,
		Image:       req.Image,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteCreated(w, eventToResponse(item, false))
}

// UpdateEvent handles PUT /api/events/{id}.
func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		WriteUnauthorized(w, "Not authenticated")
		return
	}

	id := eventIDParam(r)
	if id == "" {
		WriteBadRequest(w, "Invalid event ID", nil)
		return
	}

	var req UpdateEventRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	item, err := h.events.Update(r.Context(), *user, id, service.UpdateEventInput{
		Title:       req.Title,
		Date:        req.Date,
		Location:    req.Location,
		Description: req.Description,
		Category:    req.Category,
		Image:       req.Image,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteSuccess(w, eventToResponse(item, false))
}

// DeleteEvent handles DELETE /api/events/{id}.
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		WriteUnauthorized(w, "Not authenticated")
		return
	}

	id := eventIDParam(r)
	if id == "" {
		WriteBadRequest(w, "Invalid event ID", nil)
		return
	}

	if err := h.events.Delete(r.Context(), *user, id); err != nil {
		writeServiceError(w, err)
		return
	}

	WriteSuccess(w, map[string]bool{"ok": true})
}
