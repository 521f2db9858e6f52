// Copyright (c) 2025-2026 Vihara Santidharma
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/viharasite/vihara-go/internal/middleware"
	"github.com/viharasite/vihara-go/internal/model"
)

// Audit handles GET /api/admin/audit. Superadmin only; returns the
// retained warning and error records, oldest first.
func (h *Handler) Audit(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		WriteUnauthorized(w, "Not authenticated")
		return
	}
	if user.Role != model.RoleSuperadmin {
		WriteForbidden(w, "Superadmin access required")
		return
	}

	WriteSuccess(w, h.audit.Snapshot())
}
