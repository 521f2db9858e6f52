// Copyright (c) 2025-2026 Vihara Santidharma
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/viharasite/vihara-go/internal/logging"
)

func TestAudit_SuperadminOnly(t *testing.T) {
	env := newTestEnv(t)
	env.ring.Add(logging.AuditEntry{
		Time:    time.Now(),
		Level:   "WARN",
		Message: "login failed",
		Attrs:   map[string]string{"email": "ghost@vihara.test"},
	})

	rr := env.request(t, http.MethodGet, "/api/admin/audit", "", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated status = %d", rr.Code)
	}

	rr = env.request(t, http.MethodGet, "/api/admin/audit", pmvToken(t, env), nil)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("pmv_admin status = %d", rr.Code)
	}

	rr = env.request(t, http.MethodGet, "/api/admin/audit", superToken(t, env), nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}

	var entries []logging.AuditEntry
	decodeData(t, rr, &entries)
	if len(entries) != 1 || entries[0].Message != "login failed" {
		t.Errorf("entries = %+v", entries)
	}
}
