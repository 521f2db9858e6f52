// Copyright (c) 2025-2026 Vihara Santidharma
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging provides a custom slog handler that retains WARN and
// ERROR records in a bounded in-memory ring, exposed to superadmins
// through the audit endpoint.
package logging

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultRingSize is the number of audit entries retained.
const DefaultRingSize = 512

// AuditEntry is one retained log record.
type AuditEntry struct {
	Time    time.Time         `json:"time"`
	Level   string            `json:"level"`
	Message string            `json:"message"`
	Attrs   map[string]string `json:"attrs,omitempty"`
}

// AuditRing is a fixed-size ring buffer of recent audit entries.
// It is safe for concurrent use.
type AuditRing struct {
	mu      sync.RWMutex
	entries []AuditEntry
	next    int
	full    bool
}

// NewAuditRing creates a ring retaining the last size entries.
func NewAuditRing(size int) *AuditRing {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &AuditRing{
		entries: make([]AuditEntry, size),
	}
}

// Add appends an entry, evicting the oldest when full.
func (r *AuditRing) Add(entry AuditEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[r.next] = entry
	r.next++
	if r.next == len(r.entries) {
		r.next = 0
		r.full = true
	}
}

// Snapshot returns the retained entries, oldest first.
func (r *AuditRing) Snapshot() []AuditEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.full {
		out := make([]AuditEntry, r.next)
		copy(out, r.entries[:r.next])
		return out
	}

	out := make([]AuditEntry, 0, len(r.entries))
	out = append(out, r.entries[r.next:]...)
	out = append(out, r.entries[:r.next]...)
	return out
}

// Len returns the number of retained entries.
func (r *AuditRing) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.full {
		return len(r.entries)
	}
	return r.next
}

// AuditHandler is a slog.Handler that wraps another handler and also
// retains WARN and ERROR level records in an AuditRing.
type AuditHandler struct {
	inner slog.Handler
	ring  *AuditRing
	level slog.Level // Minimum level to retain (default: WARN)
	attrs []slog.Attr
}

// NewAuditHandler creates an AuditHandler that wraps the given handler.
// Records at WARN level and above go to both the wrapped handler and the ring.
func NewAuditHandler(inner slog.Handler, ring *AuditRing) *AuditHandler {
	return &AuditHandler{
		inner: inner,
		ring:  ring,
		level: slog.LevelWarn,
	}
}

// Enabled implements slog.Handler.
func (h *AuditHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *AuditHandler) Handle(ctx context.Context, r slog.Record) error {
	// Always forward to the inner handler first
	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}

	if r.Level >= h.level {
		h.ring.Add(h.toEntry(r))
	}

	return nil
}

// WithAttrs implements slog.Handler.
func (h *AuditHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &AuditHandler{
		inner: h.inner.WithAttrs(attrs),
		ring:  h.ring,
		level: h.level,
		attrs: merged,
	}
}

// WithGroup implements slog.Handler.
func (h *AuditHandler) WithGroup(name string) slog.Handler {
	return &AuditHandler{
		inner: h.inner.WithGroup(name),
		ring:  h.ring,
		level: h.level,
		attrs: h.attrs,
	}
}

// toEntry converts a slog record into a retained audit entry.
func (h *AuditHandler) toEntry(r slog.Record) AuditEntry {
	entry := AuditEntry{
		Time:    r.Time,
		Level:   levelName(r.Level),
		Message: r.Message,
	}

	if len(h.attrs) > 0 || r.NumAttrs() > 0 {
		entry.Attrs = make(map[string]string, len(h.attrs)+r.NumAttrs())
		for _, a := range h.attrs {
			entry.Attrs[a.Key] = a.Value.String()
		}
		r.Attrs(func(a slog.Attr) bool {
			entry.Attrs[a.Key] = a.Value.String()
			return true
		})
	}

	return entry
}

func levelName(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "error"
	case level >= slog.LevelWarn:
		return "warning"
	default:
		return "info"
	}
}
