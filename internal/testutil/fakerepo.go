// Copyright (c) 2025-2026 Vihara Santidharma
// SPDX-License-Identifier: GPL-3.0-or-later

package testutil

import (
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// FakeRepo is an in-memory stand-in for the GitHub Contents API. It
// implements the read and write subset the store client uses, including
// the sha precondition on writes.
type FakeRepo struct {
	mu     sync.Mutex
	files  map[string]fakeFile
	writes int

	Server *httptest.Server
}

type fakeFile struct {
	content []byte
	sha     string
}

// NewFakeRepo starts a fake Contents API server. The server is closed
// when the test finishes.
func NewFakeRepo(t *testing.T) *FakeRepo {
	t.Helper()

	f := &FakeRepo{files: make(map[string]fakeFile)}
	f.Server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.Server.Close)
	return f
}

// URL returns the fake API base URL.
func (f *FakeRepo) URL() string {
	return f.Server.URL
}

// Seed stores a file directly, bypassing the HTTP surface.
func (f *FakeRepo) Seed(path string, content []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[path] = fakeFile{content: content, sha: blobSHA(content)}
}

// SeedJSON marshals v and stores it at path.
func (f *FakeRepo) SeedJSON(t *testing.T, path string, v any) {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshaling seed for %s: %v", path, err)
	}
	f.Seed(path, raw)
}

// Content returns the stored bytes for path.
func (f *FakeRepo) Content(path string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	file, ok := f.files[path]
	return file.content, ok
}

// SHA returns the current revision of path.
func (f *FakeRepo) SHA(path string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.files[path].sha
}

// Writes returns how many PUT requests succeeded.
func (f *FakeRepo) Writes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes
}

func (f *FakeRepo) handle(w http.ResponseWriter, r *http.Request) {
	const marker = "/contents/"
	i := strings.Index(r.URL.Path, marker)
	if i < 0 {
		http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
		return
	}
	path := r.URL.Path[i+len(marker):]

	switch r.Method {
	case http.MethodGet:
		f.handleGet(w, path)
	case http.MethodPut:
		f.handlePut(w, r, path)
	default:
		http.Error(w, `{"message":"Method Not Allowed"}`, http.StatusMethodNotAllowed)
	}
}

func (f *FakeRepo) handleGet(w http.ResponseWriter, path string) {
	f.mu.Lock()
	file, ok := f.files[path]
	f.mu.Unlock()

	if !ok {
		http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"type":     "file",
		"path":     path,
		"sha":      file.sha,
		"encoding": "base64",
		"content":  base64.StdEncoding.EncodeToString(file.content),
	})
}

func (f *FakeRepo) handlePut(w http.ResponseWriter, r *http.Request, path string) {
	var payload struct {
		Message string `json:"message"`
		Content string `json:"content"`
		SHA     string `json:"sha"`
		Branch  string `json:"branch"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, `{"message":"Bad Request"}`, http.StatusBadRequest)
		return
	}

	content, err := base64.StdEncoding.DecodeString(payload.Content)
	if err != nil {
		http.Error(w, `{"message":"content is not valid base64"}`, http.StatusUnprocessableEntity)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	existing, exists := f.files[path]
	if exists && payload.SHA != existing.sha {
		http.Error(w, fmt.Sprintf(`{"message":"%s does not match %s"}`, payload.SHA, existing.sha), http.StatusConflict)
		return
	}
	if !exists && payload.SHA != "" {
		http.Error(w, `{"message":"sha provided for a new file"}`, http.StatusConflict)
		return
	}

	f.files[path] = fakeFile{content: content, sha: blobSHA(content)}
	f.writes++

	status := http.StatusOK
	if !exists {
		status = http.StatusCreated
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"content": map[string]any{
			"path": path,
			"sha":  f.files[path].sha,
		},
	})
}

// blobSHA mirrors git's blob object hash.
func blobSHA(content []byte) string {
	h := sha1.New()
	fmt.Fprintf(h, "blob %d\x00", len(content))
	h.Write(content)
	return hex.EncodeToString(h.Sum(nil))
}
