// Copyright (c) 2025-2026 Vihara Santidharma
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/viharasite/vihara-go/internal/cache"
	"github.com/viharasite/vihara-go/internal/model"
	"github.com/viharasite/vihara-go/internal/store"
	"github.com/viharasite/vihara-go/internal/testutil"
)

const eventsPath = "public/data/events.json"

func newEventsService(t *testing.T, blobs cache.Blobs) (*Events, *testutil.FakeRepo) {
	t.Helper()
	repo := testutil.NewFakeRepo(t)
	client := store.NewClient(store.Config{
		Token:   "test-token",
		Owner:   "vihara",
		Repo:    "site",
		Branch:  "main",
		BaseURL: repo.URL(),
	})
	return NewEvents(client, eventsPath, blobs, time.Minute), repo
}

func superadmin() model.AuthUser {
	return model.AuthUser{ID: "u1", Email: "root@vihara.test", Role: model.RoleSuperadmin}
}

func pmvAdmin() model.AuthUser {
	return model.AuthUser{ID: "u2", Email: "pmv@vihara.test", Role: model.RolePMVAdmin}
}

func validInput() CreateEventInput {
	return CreateEventInput{
		Title:    "Dhamma Talk",
		Date:     "2026-09-15",
		Location: "Main Hall",
		Category: "general",
	}
}

func TestEvents_ListMissingDocument(t *testing.T) {
	svc, _ := newEventsService(t, nil)

	items, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Errorf("List() = %v, want empty non-nil slice", items)
	}
}

func TestEvents_CreateBootstrapsDocument(t *testing.T) {
	svc, repo := newEventsService(t, nil)
	ctx := context.Background()

	item, err := svc.Create(ctx, superadmin(), validInput())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if item.ID == "" {
		t.Error("id should be server-assigned")
	}
	if item.Category != model.CategoryGeneral {
		t.Errorf("category = %q, want general", item.Category)
	}

	if _, ok := repo.Content(eventsPath); !ok {
		t.Error("events document should have been created")
	}

	items, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(items) != 1 || items[0].ID != item.ID {
		t.Errorf("items = %v", items)
	}
}

func TestEvents_CreateValidation(t *testing.T) {
	svc, _ := newEventsService(t, nil)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*CreateEventInput)
		field  string
	}{
		{"missing title", func(in *CreateEventInput) { in.Title = "  " }, "title"},
		{"missing location", func(in *CreateEventInput) { in.Location = "" }, "location"},
		{"missing date", func(in *CreateEventInput) { in.Date = "" }, "date"},
		{"malformed date", func(in *CreateEventInput) { in.Date = "next tuesday" }, "date"},
		{"unknown category", func(in *CreateEventInput) { in.Category = "sports" }, "category"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)

			_, err := svc.Create(ctx, superadmin(), in)
			fieldErrs, ok := AsFieldErrors(err)
			if !ok {
				t.Fatalf("Create() error = %v, want FieldErrors", err)
			}
			if _, present := fieldErrs[tt.field]; !present {
				t.Errorf("FieldErrors = %v, want key %q", fieldErrs, tt.field)
			}
		})
	}
}

func TestEvents_CreateNormalizesCategory(t *testing.T) {
	svc, _ := newEventsService(t, nil)

	in := validInput()
	in.Category = "  PMV  "
	item, err := svc.Create(context.Background(), superadmin(), in)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if item.Category != model.CategoryPMV {
		t.Errorf("category = %q, want pmv", item.Category)
	}
}

func TestEvents_CreatePermission(t *testing.T) {
	svc, _ := newEventsService(t, nil)
	ctx := context.Background()

	in := validInput()
	in.Category = "gabi"
	_, err := svc.Create(ctx, pmvAdmin(), in)
	if !IsForbidden(err) {
		t.Fatalf("Create() error = %v, want forbidden", err)
	}

	in.Category = "pmv"
	if _, err := svc.Create(ctx, pmvAdmin(), in); err != nil {
		t.Errorf("Create() in own category error = %v", err)
	}
}

func TestEvents_ListSortedByDate(t *testing.T) {
	svc, repo := newEventsService(t, nil)
	repo.SeedJSON(t, eventsPath, []model.EventItem{
		{ID: "late", Title: "C", Date: "2026-12-01", Location: "Hall", Category: model.CategoryGeneral},
		{ID: "early", Title: "A", Date: "2026-01-05", Location: "Hall", Category: model.CategoryGeneral},
		{ID: "mid", Title: "B", Date: "2026-06-20", Location: "Hall", Category: model.CategoryGeneral},
	})

	items, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	got := make([]string, 0, len(items))
	for _, item := range items {
		got = append(got, item.ID)
	}
	if strings.Join(got, ",") != "early,mid,late" {
		t.Errorf("order = %v", got)
	}
}

func TestEvents_Get(t *testing.T) {
	svc, repo := newEventsService(t, nil)
	repo.SeedJSON(t, eventsPath, []model.EventItem{
		{ID: "e1", Title: "A", Date: "2026-01-05", Location: "Hall", Category: model.CategoryGeneral},
	})
	ctx := context.Background()

	item, err := svc.Get(ctx, "e1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if item.Title != "A" {
		t.Errorf("item = %+v", item)
	}

	if _, err := svc.Get(ctx, "ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestEvents_UpdatePartialMerge(t *testing.T) {
	svc, repo := newEventsService(t, nil)
	repo.SeedJSON(t, eventsPath, []model.EventItem{
		{ID: "e1", Title: "Old", Date: "2026-01-05", Location: "Hall", Description: "keep", Category: model.CategoryGeneral},
	})

	newTitle := "New Title"
	item, err := svc.Update(context.Background(), superadmin(), "e1", UpdateEventInput{Title: &newTitle})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if item.Title != "New Title" {
		t.Errorf("title = %q", item.Title)
	}
	if item.Description != "keep" || item.Date != "2026-01-05" {
		t.Errorf("untouched fields changed: %+v", item)
	}
	if item.ID != "e1" {
		t.Errorf("id changed to %q", item.ID)
	}
}

func TestEvents_UpdateDualCategoryCheck(t *testing.T) {
	svc, repo := newEventsService(t, nil)
	repo.SeedJSON(t, eventsPath, []model.EventItem{
		{ID: "mine", Title: "A", Date: "2026-01-05", Location: "Hall", Category: model.CategoryPMV},
		{ID: "theirs", Title: "B", Date: "2026-02-05", Location: "Hall", Category: model.CategoryGabi},
	})
	ctx := context.Background()

	// Moving an event out of the actor's category requires permission
	// over the target category too.
	gabi := "gabi"
	if _, err := svc.Update(ctx, pmvAdmin(), "mine", UpdateEventInput{Category: &gabi}); !IsForbidden(err) {
		t.Errorf("Update() to foreign category error = %v, want forbidden", err)
	}

	// Touching a foreign event fails on the current-category check.
	title := "Hijack"
	if _, err := svc.Update(ctx, pmvAdmin(), "theirs", UpdateEventInput{Title: &title}); !IsForbidden(err) {
		t.Errorf("Update() of foreign event error = %v, want forbidden", err)
	}

	// Superadmin may move events between categories.
	if _, err := svc.Update(ctx, superadmin(), "mine", UpdateEventInput{Category: &gabi}); err != nil {
		t.Errorf("superadmin Update() error = %v", err)
	}
}

func TestEvents_UpdateRejectsEmptyRequired(t *testing.T) {
	svc, repo := newEventsService(t, nil)
	repo.SeedJSON(t, eventsPath, []model.EventItem{
		{ID: "e1", Title: "A", Date: "2026-01-05", Location: "Hall", Category: model.CategoryGeneral},
	})

	empty := "  "
	_, err := svc.Update(context.Background(), superadmin(), "e1", UpdateEventInput{Title: &empty})
	if _, ok := AsFieldErrors(err); !ok {
		t.Errorf("Update() error = %v, want FieldErrors", err)
	}
}

func TestEvents_Delete(t *testing.T) {
	svc, repo := newEventsService(t, nil)
	repo.SeedJSON(t, eventsPath, []model.EventItem{
		{ID: "e1", Title: "A", Date: "2026-01-05", Location: "Hall", Category: model.CategoryGabi},
		{ID: "e2", Title: "B", Date: "2026-02-05", Location: "Hall", Category: model.CategoryGeneral},
	})
	ctx := context.Background()

	if err := svc.Delete(ctx, pmvAdmin(), "e1"); !IsForbidden(err) {
		t.Errorf("Delete() of foreign event error = %v, want forbidden", err)
	}
	if err := svc.Delete(ctx, superadmin(), "ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete() of missing event error = %v, want ErrNotFound", err)
	}

	if err := svc.Delete(ctx, superadmin(), "e1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	items, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(items) != 1 || items[0].ID != "e2" {
		t.Errorf("items after delete = %v", items)
	}
}

func TestEvents_WritesSortedDocument(t *testing.T) {
	svc, repo := newEventsService(t, nil)
	repo.SeedJSON(t, eventsPath, []model.EventItem{
		{ID: "late", Title: "C", Date: "2026-12-01", Location: "Hall", Category: model.CategoryGeneral},
	})

	in := validInput()
	in.Date = "2026-01-02"
	if _, err := svc.Create(context.Background(), superadmin(), in); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	content, _ := repo.Content(eventsPath)
	// The earlier event must precede the later one in the stored array.
	if !strings.Contains(string(content), "2026-01-02") ||
		strings.Index(string(content), "2026-01-02") > strings.Index(string(content), "2026-12-01") {
		t.Errorf("stored document is not date-sorted:\n%s", content)
	}
}

func TestEvents_CacheInvalidation(t *testing.T) {
	blobs := cache.NewMemoryBlobs(0)
	defer func() { _ = blobs.Close() }()

	svc, repo := newEventsService(t, blobs)
	repo.SeedJSON(t, eventsPath, []model.EventItem{
		{ID: "e1", Title: "A", Date: "2026-01-05", Location: "Hall", Category: model.CategoryGeneral},
	})
	ctx := context.Background()

	// Prime the cache
	if _, err := svc.List(ctx); err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if _, err := blobs.Get(ctx, eventsCacheKey); err != nil {
		t.Fatalf("cache should be primed after List, got %v", err)
	}

	// A write invalidates it
	if err := svc.Delete(ctx, superadmin(), "e1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := blobs.Get(ctx, eventsCacheKey); err != cache.ErrMiss {
		t.Errorf("cache after write error = %v, want ErrMiss", err)
	}

	items, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(items) != 0 {
		t.Errorf("items = %v, want empty after delete", items)
	}
}
