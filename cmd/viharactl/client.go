// Copyright (c) 2025-2026 Vihara Santidharma
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/viharasite/vihara-go/internal/session"
)

// client wraps HTTP access to the API plus the stored session context.
type client struct {
	baseURL  string
	http     *http.Client
	sessions *session.Store
}

func newClient(baseURL string, sessions *session.Store) *client {
	return &client{
		baseURL:  baseURL,
		http:     &http.Client{Timeout: 30 * time.Second},
		sessions: sessions,
	}
}

// apiEnvelope mirrors the server's response wrapper.
type apiEnvelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

// do performs a request. With authed, the stored session token is
// attached and a 401 response clears the stored session.
func (c *client) do(method, path string, body any, authed bool, out any) error {
	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		sess, err := c.sessions.Load()
		if err != nil {
			return fmt.Errorf("not logged in; run: viharactl login")
		}
		req.Header.Set("Authorization", "Bearer "+sess.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var envelope apiEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("unexpected response (%d): %s", resp.StatusCode, raw)
	}

	if resp.StatusCode == http.StatusUnauthorized && authed {
		// The stored session is no longer valid.
		_ = c.sessions.Clear()
	}

	if envelope.Error != nil {
		msg := envelope.Error.Message
		for field, detail := range envelope.Error.Details {
			msg += fmt.Sprintf("\n  %s: %s", field, detail)
		}
		return fmt.Errorf("%s (%d)", msg, resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("request failed (%d)", resp.StatusCode)
	}

	if out != nil && len(envelope.Data) > 0 {
		return json.Unmarshal(envelope.Data, out)
	}
	return nil
}

// printJSON pretty-prints v to stdout.
func printJSON(v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(raw))
	return nil
}
