// Copyright (c) 2025-2026 Vihara Santidharma
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/viharasite/vihara-go/internal/auth"
	"github.com/viharasite/vihara-go/internal/cache"
	"github.com/viharasite/vihara-go/internal/model"
	"github.com/viharasite/vihara-go/internal/store"
)

const eventsCacheKey = "events:list"

// Events manages the events collection, a single JSON array document
// in the content repository. The canonical order exposed to readers is
// always date-ascending, recomputed on every read and every write.
type Events struct {
	repo     *store.Client
	path     string
	blobs    cache.Blobs
	cacheTTL time.Duration
}

// NewEvents creates the events service. blobs may be nil to disable
// the public read cache.
func NewEvents(repo *store.Client, path string, blobs cache.Blobs, cacheTTL time.Duration) *Events {
	return &Events{
		repo:     repo,
		path:     path,
		blobs:    blobs,
		cacheTTL: cacheTTL,
	}
}

// CreateEventInput carries the fields for a new event. Required string
// fields must be present and non-empty.
type CreateEventInput struct {
	Title       string
	Date        string
	Location    string
	Description string
	Category    string
	Image       string
}

// UpdateEventInput carries a partial update; nil fields keep the
// existing value. The id is immutable and never part of the input.
type UpdateEventInput struct {
	Title       *string
	Date        *string
	Location    *string
	Description *string
	Category    *string
	Image       *string
}

// List returns all events sorted date-ascending. A missing document
// reads as an empty collection, not an error. Public reads go through
// the short-TTL blob cache when one is configured.
func (s *Events) List(ctx context.Context) ([]model.EventItem, error) {
	if s.blobs != nil {
		if raw, err := s.blobs.Get(ctx, eventsCacheKey); err == nil {
			var items []model.EventItem
			if err := json.Unmarshal(raw, &items); err == nil {
				return items, nil
			}
		}
	}

	items, _, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	if s.blobs != nil {
		if raw, err := json.Marshal(items); err == nil {
			if err := s.blobs.Set(ctx, eventsCacheKey, raw, s.cacheTTL); err != nil {
				slog.Warn("caching events list failed", "error", err)
			}
		}
	}
	return items, nil
}

// Get returns a single event by id.
func (s *Events) Get(ctx context.Context, id string) (model.EventItem, error) {
	items, err := s.List(ctx)
	if err != nil {
		return model.EventItem{}, err
	}
	for _, item := range items {
		if item.ID == id {
			return item, nil
		}
	}
	return model.EventItem{}, ErrNotFound
}

// Create validates the input, checks the actor's permission over the
// target category and appends the event with a server-assigned id.
func (s *Events) Create(ctx context.Context, actor model.AuthUser, in CreateEventInput) (model.EventItem, error) {
	fieldErrs := FieldErrors{}
	if strings.TrimSpace(in.Title) == "" {
		fieldErrs["title"] = "Title is required"
	}
	if strings.TrimSpace(in.Location) == "" {
		fieldErrs["location"] = "Location is required"
	}
	if err := validateDate(in.Date); err != nil {
		fieldErrs["date"] = err.Error()
	}
	category, ok := model.ParseCategory(in.Category)
	if !ok {
		fieldErrs["category"] = "Category must be one of: pmv, gabi, general"
	}
	if len(fieldErrs) > 0 {
		return model.EventItem{}, fieldErrs
	}

	if !auth.CanManage(actor.Role, category) {
		return model.EventItem{}, &ForbiddenError{Message: "You cannot create events in this category"}
	}

	items, revision, err := s.load(ctx)
	if err != nil {
		return model.EventItem{}, err
	}

	item := model.EventItem{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Date:        in.Date,
		Location:    in.Location,
		Description: in.Description,
		Category:    category,
		Image:       in.Image,
	}

	next := sortByDate(append(items, item))
	message := fmt.Sprintf("chore(events): create %s by %s", item.ID, actor.Email)
	if err := s.write(ctx, next, revision, message); err != nil {
		return model.EventItem{}, err
	}
	return item, nil
}

// Update merges the provided fields onto the existing record. The actor
// must be allowed to manage both the record's current category and the
// target category; an update that changes category needs both checks to
// pass.
func (s *Events) Update(ctx context.Context, actor model.AuthUser, id string, in UpdateEventInput) (model.EventItem, error) {
	items, revision, err := s.load(ctx)
	if err != nil {
		return model.EventItem{}, err
	}

	idx := -1
	for i, item := range items {
		if item.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return model.EventItem{}, ErrNotFound
	}
	current := items[idx]

	nextCategory := current.Category
	if in.Category != nil {
		c, ok := model.ParseCategory(*in.Category)
		if !ok {
			return model.EventItem{}, FieldErrors{"category": "Category must be one of: pmv, gabi, general"}
		}
		nextCategory = c
	}

	if !auth.CanManage(actor.Role, current.Category) || !auth.CanManage(actor.Role, nextCategory) {
		return model.EventItem{}, &ForbiddenError{Message: "You cannot update events in this category"}
	}

	updated := current
	updated.Category = nextCategory
	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			return model.EventItem{}, FieldErrors{"title": "Title must not be empty"}
		}
		updated.Title = *in.Title
	}
	if in.Date != nil {
		if err := validateDate(*in.Date); err != nil {
			return model.EventItem{}, FieldErrors{"date": err.Error()}
		}
		updated.Date = *in.Date
	}
	if in.Location != nil {
		if strings.TrimSpace(*in.Location) == "" {
			return model.EventItem{}, FieldErrors{"location": "Location must not be empty"}
		}
		updated.Location = *in.Location
	}
	if in.Description != nil {
		updated.Description = *in.Description
	}
	if in.Image != nil {
		updated.Image = *in.Image
	}

	items[idx] = updated
	next := sortByDate(items)
	message := fmt.Sprintf("chore(events): update %s by %s", id, actor.Email)
	if err := s.write(ctx, next, revision, message); err != nil {
		return model.EventItem{}, err
	}
	return updated, nil
}

// Delete removes the record after checking the actor's permission over
// its category.
func (s *Events) Delete(ctx context.Context, actor model.AuthUser, id string) error {
	items, revision, err := s.load(ctx)
	if err != nil {
		return err
	}

	idx := -1
	for i, item := range items {
		if item.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return ErrNotFound
	}

	if !auth.CanManage(actor.Role, items[idx].Category) {
		return &ForbiddenError{Message: "You cannot delete events in this category"}
	}

	next := sortByDate(append(items[:idx], items[idx+1:]...))
	message := fmt.Sprintf("chore(events): delete %s by %s", id, actor.Email)
	return s.write(ctx, next, revision, message)
}

// load reads the collection fresh from the repository, bypassing the
// cache so mutations always hold the current revision. A missing
// document yields an empty collection and an empty revision, which the
// subsequent write turns into a file creation.
func (s *Events) load(ctx context.Context) ([]model.EventItem, string, error) {
	doc, err := s.repo.ReadJSON(ctx, s.path)
	if err != nil {
		if err == store.ErrNotFound {
			return []model.EventItem{}, "", nil
		}
		return nil, "", err
	}

	var items []model.EventItem
	if err := json.Unmarshal(doc.Data, &items); err != nil {
		// A malformed document is treated as empty rather than bricking
		// the collection; the next write restores a valid array.
		slog.Warn("events document is not a JSON array", "path", s.path, "error", err)
		return []model.EventItem{}, doc.Revision, nil
	}
	return sortByDate(items), doc.Revision, nil
}

func (s *Events) write(ctx context.Context, items []model.EventItem, revision, message string) error {
	if err := s.repo.WriteJSON(ctx, s.path, items, revision, message); err != nil {
		return err
	}
	if s.blobs != nil {
		if err := s.blobs.Delete(ctx, eventsCacheKey); err != nil {
			slog.Warn("invalidating events cache failed", "error", err)
		}
	}
	return nil
}

// sortByDate returns the items in canonical date-ascending order.
// Ties and unparseable dates fall back to a string comparison so the
// order stays deterministic.
func sortByDate(items []model.EventItem) []model.EventItem {
	sorted := make([]model.EventItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		ti, erri := parseDate(sorted[i].Date)
		tj, errj := parseDate(sorted[j].Date)
		if erri != nil || errj != nil || ti.Equal(tj) {
			return sorted[i].Date < sorted[j].Date
		}
		return ti.Before(tj)
	})
	return sorted
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func validateDate(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("Date is required")
	}
	if _, err := parseDate(s); err != nil {
		return fmt.Errorf("Date must be an ISO date (e.g. 2025-01-31)")
	}
	return nil
}
