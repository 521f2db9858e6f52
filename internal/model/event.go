// Copyright (c) 2025-2026 Vihara Santidharma
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// EventItem is one entry of the events collection. The whole collection
// lives in a single JSON array document in the content repository.
// ID is server-assigned and immutable; Date is an ISO date string.
type EventItem struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Date        string   `json:"date"`
	Location    string   `json:"location"`
	Description string   `json:"description,omitempty"`
	Category    Category `json:"category"`
	Image       string   `json:"image,omitempty"`
}
