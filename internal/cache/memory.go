// Copyright (c) 2025-2026 Vihara Santidharma
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// MemoryBlobs is a thread-safe in-memory blob store. It serves as the
// read cache and as the fallback when Redis is not configured; values
// written with a zero TTL survive for the process lifetime only.
type MemoryBlobs struct {
	data   sync.Map
	stopCh chan struct{}
	closed atomic.Bool
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time // zero time means no expiry
}

// NewMemoryBlobs creates a memory blob store. A background janitor
// drops expired entries at the given interval (0 disables it).
func NewMemoryBlobs(cleanupInterval time.Duration) *MemoryBlobs {
	c := &MemoryBlobs{stopCh: make(chan struct{})}
	if cleanupInterval > 0 {
		go c.cleanupLoop(cleanupInterval)
	}
	return c
}

// Get retrieves a value from the store.
func (c *MemoryBlobs) Get(_ context.Context, key string) ([]byte, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}

	val, ok := c.data.Load(key)
	if !ok {
		return nil, ErrMiss
	}

	entry := val.(*memoryEntry)
	if entry.expired(time.Now()) {
		c.data.Delete(key)
		return nil, ErrMiss
	}

	out := make([]byte, len(entry.value))
	copy(out, entry.value)
	return out, nil
}

// Set stores a value; ttl 0 keeps it until Delete or shutdown.
func (c *MemoryBlobs) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if c.closed.Load() {
		return ErrClosed
	}

	entry := &memoryEntry{value: make([]byte, len(value))}
	copy(entry.value, value)
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}
	c.data.Store(key, entry)
	return nil
}

// Delete removes a key.
func (c *MemoryBlobs) Delete(_ context.Context, key string) error {
	if c.closed.Load() {
		return ErrClosed
	}
	c.data.Delete(key)
	return nil
}

// Close stops the janitor and rejects further operations.
func (c *MemoryBlobs) Close() error {
	if c.closed.CompareAndSwap(false, true) {
		close(c.stopCh)
	}
	return nil
}

func (e *memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

func (c *MemoryBlobs) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case now := <-ticker.C:
			c.data.Range(func(key, val any) bool {
				if entry, ok := val.(*memoryEntry); ok && entry.expired(now) {
					c.data.Delete(key)
				}
				return true
			})
		}
	}
}

// Ensure MemoryBlobs implements Blobs.
var _ Blobs = (*MemoryBlobs)(nil)
