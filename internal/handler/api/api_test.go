// Copyright (c) 2025-2026 Vihara Santidharma
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/viharasite/vihara-go/internal/auth"
	"github.com/viharasite/vihara-go/internal/cache"
	"github.com/viharasite/vihara-go/internal/logging"
	"github.com/viharasite/vihara-go/internal/middleware"
	"github.com/viharasite/vihara-go/internal/model"
	"github.com/viharasite/vihara-go/internal/service"
	"github.com/viharasite/vihara-go/internal/store"
	"github.com/viharasite/vihara-go/internal/testutil"
)

const (
	testSecret      = "0123456789abcdef0123456789abcdef"
	testQuoteSecret = "quotes-shared-secret"
	eventsPath      = "public/data/events.json"
	quotesPath      = "public/data/quotes.json"
	testPassword    = "open sesame"
)

type testEnv struct {
	router chi.Router
	repo   *testutil.FakeRepo
	codec  *auth.TokenCodec
	ring   *logging.AuditRing
}

func adminRecord(t *testing.T, id, email string, role model.Role) model.AdminRecord {
	t.Helper()
	hash, err := auth.HashPassword(testPassword)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	return model.AdminRecord{ID: id, Email: email, Name: id, Role: role, PasswordHash: hash}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	slog.SetDefault(testutil.TestLoggerSilent())

	repo := testutil.NewFakeRepo(t)
	client := store.NewClient(store.Config{
		Token:   "test-token",
		Owner:   "vihara",
		Repo:    "site",
		Branch:  "main",
		BaseURL: repo.URL(),
	})

	admins := []model.AdminRecord{
		adminRecord(t, "root", "root@vihara.test", model.RoleSuperadmin),
		adminRecord(t, "pmv", "pmv@vihara.test", model.RolePMVAdmin),
		adminRecord(t, "quotes", "quotes@vihara.test", model.RoleQuotesAdmin),
	}
	adminsJSON, err := json.Marshal(admins)
	if err != nil {
		t.Fatalf("marshal admins: %v", err)
	}
	directory, err := auth.NewDirectory(string(adminsJSON))
	if err != nil {
		t.Fatalf("NewDirectory() error = %v", err)
	}

	blobs := cache.NewMemoryBlobs(0)
	t.Cleanup(func() { _ = blobs.Close() })

	codec := auth.NewTokenCodec(testSecret)
	ring := logging.NewAuditRing(64)
	login := middleware.NewLoginProtection(middleware.LoginProtectionConfig{
		IPRateLimit: 1000,
		IPBurst:     1000,
	})

	events := service.NewEvents(client, eventsPath, nil, time.Minute)
	quotes := service.NewQuotes(nil, false, client, quotesPath)
	uploads := service.NewUploads(client, "public/uploads")

	handler := NewHandler(events, quotes, uploads, directory, codec, login, ring, testQuoteSecret)
	return &testEnv{
		router: handler.Router(RouterConfig{}),
		repo:   repo,
		codec:  codec,
		ring:   ring,
	}
}

func (env *testEnv) request(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reqBody *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reqBody = bytes.NewReader(raw)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	return rr
}

func (env *testEnv) token(t *testing.T, user model.AuthUser) string {
	t.Helper()
	token, err := env.codec.Sign(user)
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}
	return token
}

func decodeData(t *testing.T, rr *httptest.ResponseRecorder, out any) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decoding envelope: %v\nbody: %s", err, rr.Body.String())
	}
	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			t.Fatalf("decoding data: %v\nbody: %s", err, rr.Body.String())
		}
	}
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decoding error envelope: %v\nbody: %s", err, rr.Body.String())
	}
	return envelope.Error.Code
}

func TestStatusEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rr := env.request(t, http.MethodGet, "/api/status", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}

	var status StatusResponse
	decodeData(t, rr, &status)
	if status.Status != "ok" {
		t.Errorf("status body = %+v", status)
	}
}

func TestNotFoundRoute(t *testing.T) {
	env := newTestEnv(t)

	rr := env.request(t, http.MethodGet, "/api/nope", "", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
	if code := errorCode(t, rr); code != "not_found" {
		t.Errorf("code = %q", code)
	}
}

func TestWriteServiceError_Mapping(t *testing.T) {
	slog.SetDefault(testutil.TestLoggerSilent())

	decode := func(t *testing.T, rr *httptest.ResponseRecorder) ErrorResponse {
		t.Helper()
		var envelope ErrorResponse
		if err := json.Unmarshal(rr.Body.Bytes(), &envelope); err != nil {
			t.Fatalf("decoding error envelope: %v\nbody: %s", err, rr.Body.String())
		}
		return envelope
	}

	t.Run("field errors answer 400", func(t *testing.T) {
		rr := httptest.NewRecorder()
		writeServiceError(rr, service.FieldErrors{"title": "Title is required"})
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rr.Code)
		}
		envelope := decode(t, rr)
		if envelope.Error.Code != "validation_error" || envelope.Error.Details["title"] == "" {
			t.Errorf("error = %+v", envelope.Error)
		}
	})

	t.Run("upstream failure surfaces status and message", func(t *testing.T) {
		rr := httptest.NewRecorder()
		writeServiceError(rr, &store.UpstreamError{
			Op: "write", Path: "public/data/events.json",
			StatusCode: 403, Body: "rate limited",
		})
		if rr.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d, want 500", rr.Code)
		}
		envelope := decode(t, rr)
		if envelope.Error.Code != "upstream_error" {
			t.Errorf("code = %q", envelope.Error.Code)
		}
		if envelope.Error.Details["upstream_status"] != "403" {
			t.Errorf("details = %v, want upstream_status 403", envelope.Error.Details)
		}
		if envelope.Error.Details["upstream_message"] != "rate limited" {
			t.Errorf("details = %v, want upstream_message", envelope.Error.Details)
		}
	})

	t.Run("oversized upstream body is trimmed", func(t *testing.T) {
		rr := httptest.NewRecorder()
		writeServiceError(rr, &store.UpstreamError{
			Op: "read", Path: "x", StatusCode: 500,
			Body: strings.Repeat("a", 4096),
		})
		envelope := decode(t, rr)
		if got := len(envelope.Error.Details["upstream_message"]); got > maxUpstreamDetail {
			t.Errorf("upstream_message length = %d, want at most %d", got, maxUpstreamDetail)
		}
	})

	t.Run("revision conflict answers 500 conflict", func(t *testing.T) {
		rr := httptest.NewRecorder()
		writeServiceError(rr, &store.ConflictError{Path: "x", CurrentRevision: "abc"})
		if rr.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d, want 500", rr.Code)
		}
		envelope := decode(t, rr)
		if envelope.Error.Code != "conflict" || envelope.Error.Details["current_revision"] != "abc" {
			t.Errorf("error = %+v", envelope.Error)
		}
	})
}

func TestMethodNotAllowed(t *testing.T) {
	env := newTestEnv(t)

	rr := env.request(t, http.MethodPatch, "/api/events", "", nil)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rr.Code)
	}
	if allow := rr.Header().Get("Allow"); allow != "GET, POST" {
		t.Errorf("Allow = %q, want \"GET, POST\"", allow)
	}
}
