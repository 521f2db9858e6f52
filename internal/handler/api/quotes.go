// Copyright (c) 2025-2026 Vihara Santidharma
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"crypto/subtle"
	"net/http"

	"github.com/viharasite/vihara-go/internal/auth"
	"github.com/viharasite/vihara-go/internal/middleware"
)

// UpdateQuoteRequest is the request body for POST /api/quotes.
type UpdateQuoteRequest struct {
	Text   string `json:"text"`
	Source string `json:"source"`
}

// GetQuote handles GET /api/quotes. Public; serves the default quote
// until an admin stores one.
func (h *Handler) GetQuote(w http.ResponseWriter, r *http.Request) {
	quote, err := h.quotes.Latest(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Cache-Control", publicCacheControl)
	WriteSuccess(w, quote)
}

// UpdateQuote handles POST /api/quotes. Two principals may write: a
// caller presenting the shared admin secret, or a bearer session whose
// role covers quote management.
func (h *Handler) UpdateQuote(w http.ResponseWriter, r *http.Request) {
	actor := "admin-secret"

	if !h.quoteSecretOK(r) {
		user := middleware.GetUser(r)
		if user == nil {
			WriteUnauthorized(w, "Not authenticated")
			return
		}
		if !auth.CanManageQuotes(user.Role) {
			WriteForbidden(w, "You cannot update the quote")
			return
		}
		actor = user.Email
	}

	var req UpdateQuoteRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	quote, err := h.quotes.Update(r.Context(), actor, req.Text, req.Source)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteSuccess(w, quote)
}

// quoteSecretOK checks the X-Admin-Secret header in constant time. An
// unconfigured secret disables this path entirely.
func (h *Handler) quoteSecretOK(r *http.Request) bool {
	if h.quotesAdminSecret == "" {
		return false
	}
	got := r.Header.Get("X-Admin-Secret")
	if got == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(h.quotesAdminSecret)) == 1
}
