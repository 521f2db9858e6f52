// Copyright (c) 2025-2026 Vihara Santidharma
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/viharasite/vihara-go/internal/auth"
	"github.com/viharasite/vihara-go/internal/middleware"
	"github.com/viharasite/vihara-go/internal/model"
)

// LoginRequest is the request body for POST /api/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the signed session token and the user it
// identifies.
type LoginResponse struct {
	Token string         `json:"token"`
	User  model.AuthUser `json:"user"`
}

// Login handles POST /api/login. Every failure path answers with the
// same message so callers cannot probe which accounts exist.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		WriteUnauthorized(w, "Invalid credentials")
		return
	}

	if locked, remaining := h.login.IsAccountLocked(req.Email); locked {
		slog.Warn("login attempt on locked account", "email", req.Email, "remaining", remaining)
		WriteUnauthorized(w, "Invalid credentials")
		return
	}

	user, err := h.directory.VerifyCredentials(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			if locked, duration := h.login.RecordFailedAttempt(req.Email); locked {
				slog.Warn("account locked", "email", req.Email, "duration", duration)
			}
			WriteUnauthorized(w, "Invalid credentials")
			return
		}
		slog.Error("credential check failed", "error", err)
		WriteInternalError(w, "Internal server error")
		return
	}

	h.login.RecordSuccessfulLogin(user.Email)

	token, err := h.codec.Sign(user)
	if err != nil {
		slog.Error("signing session token failed", "error", err)
		WriteInternalError(w, "Internal server error")
		return
	}

	slog.Info("admin logged in", "email", user.Email, "role", user.Role)
	WriteSuccess(w, LoginResponse{Token: token, User: user})
}

// Me handles GET /api/me. The auth middleware has already verified the
// token.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		WriteUnauthorized(w, "Not authenticated")
		return
	}
	WriteSuccess(w, map[string]model.AuthUser{"user": *user})
}
