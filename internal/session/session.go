// Copyright (c) 2025-2026 Vihara Santidharma
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session manages the client-side session context used by the
// admin CLI: the bearer token and the user it identifies, persisted to
// a JSON file under the user config directory.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/viharasite/vihara-go/internal/model"
)

// ErrNoSession indicates no stored session exists.
var ErrNoSession = errors.New("no stored session")

// Session is the persisted session context.
type Session struct {
	Token     string         `json:"token"`
	User      model.AuthUser `json:"user"`
	SavedAt   time.Time      `json:"saved_at"`
	ExpiresAt time.Time      `json:"expires_at,omitempty"`
}

// Store reads and writes the session file. The zero value is not
// usable; create one with NewStore or NewStoreAt.
type Store struct {
	path string
}

// NewStore creates a store under the user config directory.
func NewStore() (*Store, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}
	return NewStoreAt(filepath.Join(dir, "viharactl", "session.json")), nil
}

// NewStoreAt creates a store backed by an explicit file path.
func NewStoreAt(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the stored session. Returns ErrNoSession when the file
// does not exist or an expired session was discarded.
func (s *Store) Load() (Session, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Session{}, ErrNoSession
		}
		return Session{}, fmt.Errorf("reading session file: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return Session{}, fmt.Errorf("parsing session file: %w", err)
	}
	if sess.Token == "" {
		return Session{}, ErrNoSession
	}
	if !sess.ExpiresAt.IsZero() && time.Now().After(sess.ExpiresAt) {
		_ = s.Clear()
		return Session{}, ErrNoSession
	}
	return sess, nil
}

// Set persists the session, creating parent directories as needed.
// The file is written with owner-only permissions since it holds a
// live token.
func (s *Store) Set(sess Session) error {
	if sess.SavedAt.IsZero() {
		sess.SavedAt = time.Now().UTC()
	}

	raw, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("creating session dir: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		return fmt.Errorf("writing session file: %w", err)
	}
	return nil
}

// Clear removes the stored session. Clearing an absent session is not
// an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing session file: %w", err)
	}
	return nil
}
