// Copyright (c) 2025-2026 Vihara Santidharma
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/viharasite/vihara-go/internal/middleware"
)

// UploadRequest is the request body for POST /api/upload. Content is
// base64; a data URL prefix is tolerated and stripped.
type UploadRequest struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

// Upload handles POST /api/upload. Any authenticated admin may upload;
// there is no category attached to a file.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		WriteUnauthorized(w, "Not authenticated")
		return
	}

	var req UploadRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	payload := req.Content
	if i := strings.Index(payload, ";base64,"); i >= 0 {
		payload = payload[i+len(";base64,"):]
	}

	content, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		WriteBadRequest(w, "Content must be base64-encoded", map[string]string{"content": "Invalid base64 payload"})
		return
	}

	result, err := h.uploads.Save(r.Context(), *user, req.Filename, content)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteCreated(w, result)
}
