// Copyright (c) 2025-2026 Vihara Santidharma
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api provides the REST API handlers for the community site.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/viharasite/vihara-go/internal/auth"
	"github.com/viharasite/vihara-go/internal/logging"
	"github.com/viharasite/vihara-go/internal/middleware"
	"github.com/viharasite/vihara-go/internal/service"
	"github.com/viharasite/vihara-go/internal/store"
	"github.com/viharasite/vihara-go/internal/version"
)

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	events    *service.Events
	quotes    *service.Quotes
	uploads   *service.Uploads
	directory *auth.Directory
	codec     *auth.TokenCodec
	login     *middleware.LoginProtection
	audit     *logging.AuditRing

	quotesAdminSecret string
}

// NewHandler creates a new API handler with its dependencies.
func NewHandler(
	events *service.Events,
	quotes *service.Quotes,
	uploads *service.Uploads,
	directory *auth.Directory,
	codec *auth.TokenCodec,
	login *middleware.LoginProtection,
	audit *logging.AuditRing,
	quotesAdminSecret string,
) *Handler {
	return &Handler{
		events:            events,
		quotes:            quotes,
		uploads:           uploads,
		directory:         directory,
		codec:             codec,
		login:             login,
		audit:             audit,
		quotesAdminSecret: quotesAdminSecret,
	}
}

// Response is the standard API response wrapper.
type Response struct {
	Data any `json:"data,omitempty"`
}

// ErrorResponse is the standard API error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a successful JSON response.
func WriteSuccess(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, Response{Data: data})
}

// WriteCreated writes a 201 Created JSON response.
func WriteCreated(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, Response{Data: data})
}

// WriteError writes an error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, code, message string, details map[string]string) {
	resp := ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
	WriteJSON(w, statusCode, resp)
}

// WriteBadRequest writes a 400 Bad Request response.
func WriteBadRequest(w http.ResponseWriter, message string, details map[string]string) {
	WriteError(w, http.StatusBadRequest, "bad_request", message, details)
}

// WriteNotFound writes a 404 Not Found response.
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, "not_found", message, nil)
}

// WriteUnauthorized writes a 401 Unauthorized response.
func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, "unauthorized", message, nil)
}

// WriteForbidden writes a 403 Forbidden response.
func WriteForbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, "forbidden", message, nil)
}

// WriteInternalError writes a 500 Internal Server Error response.
func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, "internal_error", message, nil)
}

// WriteValidationError writes a 400 Bad Request response with per-field errors.
func WriteValidationError(w http.ResponseWriter, fieldErrors map[string]string) {
	WriteError(w, http.StatusBadRequest, "validation_error", "Validation failed", fieldErrors)
}

// maxUpstreamDetail bounds how much of an upstream response body is
// echoed back in error details.
const maxUpstreamDetail = 256

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) > max {
		return s[:max]
	}
	return s
}

// writeServiceError maps service and store errors onto the API error
// taxonomy. A revision conflict is terminal; the client must re-fetch
// and resubmit.
func writeServiceError(w http.ResponseWriter, err error) {
	var fieldErrs service.FieldErrors
	if errors.As(err, &fieldErrs) {
		WriteValidationError(w, fieldErrs)
		return
	}

	var forbidden *service.ForbiddenError
	if errors.As(err, &forbidden) {
		WriteForbidden(w, forbidden.Message)
		return
	}

	if errors.Is(err, service.ErrNotFound) {
		WriteNotFound(w, "Record not found")
		return
	}

	var conflict *store.ConflictError
	if errors.As(err, &conflict) {
		details := map[string]string{}
		if conflict.CurrentRevision != "" {
			details["current_revision"] = conflict.CurrentRevision
		}
		WriteError(w, http.StatusInternalServerError, "conflict",
			"The document changed concurrently; re-fetch and resubmit", details)
		return
	}

	var upstream *store.UpstreamError
	if errors.As(err, &upstream) {
		slog.Error("content repository request failed",
			"op", upstream.Op, "path", upstream.Path, "status", upstream.StatusCode)
		details := map[string]string{
			"upstream_status": strconv.Itoa(upstream.StatusCode),
		}
		if msg := truncate(upstream.Body, maxUpstreamDetail); msg != "" {
			details["upstream_message"] = msg
		}
		WriteError(w, http.StatusInternalServerError, "upstream_error",
			"The content repository rejected the request", details)
		return
	}

	slog.Error("request failed", "error", err)
	WriteInternalError(w, "Internal server error")
}

// decodeJSONBody decodes the request body into dst. Returns false with a
// response already written when the body is not valid JSON.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return false
	}
	return true
}

// StatusResponse contains API status information.
type StatusResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// Status returns the API status.
func (h *Handler) Status(w http.ResponseWriter, _ *http.Request) {
	WriteSuccess(w, StatusResponse{
		Status:  "ok",
		Version: version.Short(),
	})
}

// MethodNotAllowed returns a 405 handler that enumerates the permitted
// methods in the Allow header.
func MethodNotAllowed(allowed ...string) http.HandlerFunc {
	sort.Strings(allowed)
	allowHeader := strings.Join(allowed, ", ")
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Allow", allowHeader)
		WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed",
			"Method "+r.Method+" is not allowed for this resource", nil)
	}
}

// NotFound is the fallback handler for unknown routes.
func NotFound(w http.ResponseWriter, _ *http.Request) {
	WriteNotFound(w, "Resource not found")
}
