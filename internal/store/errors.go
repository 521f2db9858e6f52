// Copyright (c) 2025-2026 Vihara Santidharma
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates the document does not exist in the repository.
var ErrNotFound = errors.New("document not found")

// UpstreamError carries the status code and response body of a failed
// call to the content repository, for diagnosis at the endpoint boundary.
type UpstreamError struct {
	Op         string // "read" or "write"
	Path       string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("repository %s failed for %s: %d %s", e.Op, e.Path, e.StatusCode, e.Body)
}

// ConflictError indicates a write was rejected because the supplied
// revision no longer matches the document's current revision. The
// caller must re-read and resubmit; nothing is retried automatically.
type ConflictError struct {
	Path            string
	CurrentRevision string // best-effort; empty if the re-read failed
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("revision conflict writing %s", e.Path)
}

// IsConflict reports whether err is a revision conflict.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}
