// Copyright (c) 2025-2026 Vihara Santidharma
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/viharasite/vihara-go/internal/cache"
	"github.com/viharasite/vihara-go/internal/model"
	"github.com/viharasite/vihara-go/internal/store"
)

const quotesBlobKey = "quotes:latest"

// DefaultQuote is served until an admin stores the first quote.
var DefaultQuote = model.QuoteItem{
	Text:   "Tanpa kebijaksanaan, kebaikan bisa menjadi kebingungan. Tanpa welas asih, kebenaran bisa menjadi keras.",
	Source: "Dhamma",
}

// Quotes manages the single "latest" quote. With a durable blob store
// (Redis) configured the quote lives there; otherwise it falls back to
// a JSON document in the content repository, written with the same
// revision precondition as the events collection.
type Quotes struct {
	blobs   cache.Blobs
	durable bool
	repo    *store.Client
	path    string
}

// NewQuotes creates the quotes service. durable marks blobs as a
// persistent store; when false the repository document is
// authoritative.
func NewQuotes(blobs cache.Blobs, durable bool, repo *store.Client, path string) *Quotes {
	return &Quotes{
		blobs:   blobs,
		durable: durable,
		repo:    repo,
		path:    path,
	}
}

// Latest returns the current quote, or DefaultQuote when none is set.
func (s *Quotes) Latest(ctx context.Context) (model.QuoteItem, error) {
	if s.durable {
		raw, err := s.blobs.Get(ctx, quotesBlobKey)
		if err == cache.ErrMiss {
			return DefaultQuote, nil
		}
		if err != nil {
			return model.QuoteItem{}, err
		}
		var quote model.QuoteItem
		if err := json.Unmarshal(raw, &quote); err != nil || quote.Text == "" {
			return DefaultQuote, nil
		}
		return quote, nil
	}

	doc, err := s.repo.ReadJSON(ctx, s.path)
	if err != nil {
		if err == store.ErrNotFound {
			return DefaultQuote, nil
		}
		return model.QuoteItem{}, err
	}
	var quote model.QuoteItem
	if err := json.Unmarshal(doc.Data, &quote); err != nil || quote.Text == "" {
		return DefaultQuote, nil
	}
	return quote, nil
}

// Update overwrites the quote wholesale; no history is retained.
func (s *Quotes) Update(ctx context.Context, actorEmail, text, source string) (model.QuoteItem, error) {
	fieldErrs := FieldErrors{}
	text = strings.TrimSpace(text)
	source = strings.TrimSpace(source)
	if text == "" {
		fieldErrs["text"] = "Quote text is required"
	}
	if source == "" {
		fieldErrs["source"] = "Quote source is required"
	}
	if len(fieldErrs) > 0 {
		return model.QuoteItem{}, fieldErrs
	}

	quote := model.QuoteItem{
		Text:      text,
		Source:    source,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
	}

	if s.durable {
		raw, err := json.Marshal(quote)
		if err != nil {
			return model.QuoteItem{}, err
		}
		if err := s.blobs.Set(ctx, quotesBlobKey, raw, 0); err != nil {
			return model.QuoteItem{}, err
		}
		return quote, nil
	}

	// Repository fallback: read for the revision, then overwrite.
	revision := ""
	if doc, err := s.repo.ReadJSON(ctx, s.path); err == nil {
		revision = doc.Revision
	} else if err != store.ErrNotFound {
		return model.QuoteItem{}, err
	}

	message := fmt.Sprintf("chore(quotes): update by %s", actorEmail)
	if err := s.repo.WriteJSON(ctx, s.path, quote, revision, message); err != nil {
		return model.QuoteItem{}, err
	}
	return quote, nil
}
