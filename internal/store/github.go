// Copyright (c) 2025-2026 Vihara Santidharma
// SPDX-License-Identifier: GPL-3.0-or-later

// Package store implements the remote JSON document store on top of
// the GitHub Contents API. Documents are whole files in a content
// repository; every read returns a revision (the blob sha) and every
// write must present the revision it read, so concurrent writers are
// serialized by the remote compare-and-swap instead of a local lock.
// Each write carries a commit message naming the actor and action,
// which makes every content change versioned and auditable.
package store

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/viharasite/vihara-go/internal/metrics"
)

const (
	defaultBaseURL = "https://api.github.com"
	requestTimeout = 30 * time.Second
	maxErrorBody   = 10 * 1024 // Limit stored upstream error bodies (10KB)
	userAgent      = "vihara-go/1.0"
	apiVersion     = "2022-11-28"
)

// Config identifies the content repository and how to reach it.
type Config struct {
	Token  string
	Owner  string
	Repo   string
	Branch string

	// BaseURL overrides the GitHub API endpoint, used by tests.
	BaseURL string
}

// Client talks to the Contents API of one repository branch.
type Client struct {
	http    *http.Client
	baseURL string
	token   string
	owner   string
	repo    string
	branch  string
}

// NewClient creates a content repository client.
func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		http: &http.Client{
			Timeout: requestTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   cfg.Token,
		owner:   cfg.Owner,
		repo:    cfg.Repo,
		branch:  cfg.Branch,
	}
}

// contentResponse is the Contents API representation of a file.
type contentResponse struct {
	SHA      string `json:"sha"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

// Document is the result of a read: the raw JSON body plus the
// revision required for a subsequent write.
type Document struct {
	Data     json.RawMessage
	Revision string
}

// ReadJSON fetches a JSON document and its current revision.
// Returns ErrNotFound when the file does not exist yet.
func (c *Client) ReadJSON(ctx context.Context, path string) (Document, error) {
	start := time.Now()
	defer metrics.ObserveStoreLatency(ctx, "read", start)

	reqURL := fmt.Sprintf("%s/repos/%s/%s/contents/%s?ref=%s",
		c.baseURL, c.owner, c.repo, encodePath(path), url.QueryEscape(c.branch))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return Document{}, err
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return Document{}, fmt.Errorf("repository read: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		return Document{}, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return Document{}, upstreamError("read", path, resp)
	}

	var content contentResponse
	if err := json.NewDecoder(resp.Body).Decode(&content); err != nil {
		return Document{}, fmt.Errorf("decoding repository response: %w", err)
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(content.Content, "\n", ""))
	if err != nil {
		return Document{}, fmt.Errorf("decoding document content: %w", err)
	}

	if !json.Valid(decoded) {
		return Document{}, fmt.Errorf("document %s is not valid JSON", path)
	}

	return Document{Data: decoded, Revision: content.SHA}, nil
}

// WriteJSON serializes v as pretty-printed JSON and writes it with the
// given revision as precondition. Pass an empty revision to create a
// new file. A stale revision yields a ConflictError; the document is
// left exactly as it was.
func (c *Client) WriteJSON(ctx context.Context, path string, v any, revision, message string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}
	return c.WriteFile(ctx, path, append(data, '\n'), revision, message)
}

// WriteFile writes raw bytes as a file in the repository. Used both for
// JSON documents and for binary uploads.
func (c *Client) WriteFile(ctx context.Context, path string, data []byte, revision, message string) error {
	start := time.Now()
	defer metrics.ObserveStoreLatency(ctx, "write", start)

	reqURL := fmt.Sprintf("%s/repos/%s/%s/contents/%s",
		c.baseURL, c.owner, c.repo, encodePath(path))

	payload := map[string]any{
		"message": message,
		"content": base64.StdEncoding.EncodeToString(data),
		"branch":  c.branch,
	}
	if revision != "" {
		payload["sha"] = revision
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, reqURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("repository write: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		return nil
	case resp.StatusCode == http.StatusConflict:
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		return &ConflictError{Path: path, CurrentRevision: c.currentRevision(ctx, path)}
	default:
		return upstreamError("write", path, resp)
	}
}

// RawURL returns the public raw-content URL for a repository path.
func (c *Client) RawURL(path string) string {
	return fmt.Sprintf("https://raw.githubusercontent.com/%s/%s/%s/%s",
		c.owner, c.repo, c.branch, encodePath(path))
}

// currentRevision re-reads the document to report the revision that won
// a conflicting write. Best effort only.
func (c *Client) currentRevision(ctx context.Context, path string) string {
	doc, err := c.ReadJSON(ctx, path)
	if err != nil {
		return ""
	}
	return doc.Revision
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
	req.Header.Set("User-Agent", userAgent)
}

// encodePath URL-encodes each path segment while keeping the slashes.
func encodePath(path string) string {
	segments := strings.Split(path, "/")
	encoded := make([]string, 0, len(segments))
	for _, seg := range segments {
		if seg == "" {
			continue
		}
		encoded = append(encoded, url.PathEscape(seg))
	}
	return strings.Join(encoded, "/")
}

func upstreamError(op, path string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &UpstreamError{
		Op:         op,
		Path:       path,
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
	}
}
