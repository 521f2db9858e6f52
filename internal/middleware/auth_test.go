// Copyright (c) 2025-2026 Vihara Santidharma
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/viharasite/vihara-go/internal/auth"
	"github.com/viharasite/vihara-go/internal/model"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func testUser() model.AuthUser {
	return model.AuthUser{
		ID:    "admin-1",
		Email: "admin@vihara.test",
		Name:  "Admin",
		Role:  model.RoleSuperadmin,
	}
}

func TestBearerAuth_ValidToken(t *testing.T) {
	codec := auth.NewTokenCodec(testSecret)
	token, err := codec.Sign(testUser())
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}

	var got *model.AuthUser
	handler := BearerAuth(codec)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetUser(r)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if got == nil {
		t.Fatal("expected user in context")
	}
	if got.Email != "admin@vihara.test" {
		t.Errorf("email = %q, want %q", got.Email, "admin@vihara.test")
	}
	if got.Role != model.RoleSuperadmin {
		t.Errorf("role = %q, want %q", got.Role, model.RoleSuperadmin)
	}
}

func TestBearerAuth_Rejections(t *testing.T) {
	codec := auth.NewTokenCodec(testSecret)
	otherCodec := auth.NewTokenCodec("ffffffffffffffffffffffffffffffff")
	forged, err := otherCodec.Sign(testUser())
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic dXNlcjpwYXNz"},
		{"empty token", "Bearer "},
		{"garbage token", "Bearer not-a-jwt"},
		{"wrong key", "Bearer " + forged},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := BearerAuth(codec)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Error("handler should not be reached")
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/admin/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want %d", rr.Code, http.StatusUnauthorized)
			}
			if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q, want application/json", ct)
			}
		})
	}
}

func TestOptionalBearerAuth(t *testing.T) {
	codec := auth.NewTokenCodec(testSecret)
	token, err := codec.Sign(testUser())
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}

	tests := []struct {
		name     string
		header   string
		wantUser bool
	}{
		{"no header passes through", "", false},
		{"invalid token passes through", "Bearer junk", false},
		{"valid token sets user", "Bearer " + token, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *model.AuthUser
			handler := OptionalBearerAuth(codec)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = GetUser(r)
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/quotes", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != http.StatusOK {
				t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
			}
			if (got != nil) != tt.wantUser {
				t.Errorf("user in context = %v, want %v", got != nil, tt.wantUser)
			}
		})
	}
}

func TestGetUser_Empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if GetUser(req) != nil {
		t.Error("expected nil user for bare request")
	}
}
