// Copyright (c) 2025-2026 Vihara Santidharma
// SPDX-License-Identifier: GPL-3.0-or-later

// Package cache provides the key-value blob store used for the public
// quote and for short-lived public read caching.
package cache

import (
	"context"
	"time"
)

// Blobs defines the interface for blob store implementations.
// All implementations must be thread-safe.
type Blobs interface {
	// Get retrieves a value. Returns ErrMiss if not found or expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value. A TTL of 0 means the value does not expire,
	// which is how durable blobs (the quote) are stored.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a key.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the store.
	Close() error
}

// Error represents an error type for blob store operations.
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	// ErrMiss indicates the key was not found or has expired.
	ErrMiss Error = "blob miss"

	// ErrClosed indicates the store has been closed.
	ErrClosed Error = "blob store closed"
)
