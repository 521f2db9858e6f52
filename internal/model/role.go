// Copyright (c) 2025-2026 Vihara Santidharma
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the core domain types: admin roles, event
// categories, events, quotes and authenticated users.
package model

import "strings"

// Role identifies what an authenticated admin is allowed to manage.
type Role string

// Admin roles. Superadmin bypasses every category check; the remaining
// roles are each bound to a single content area.
const (
	RoleSuperadmin    Role = "superadmin"
	RolePMVAdmin      Role = "pmv_admin"
	RoleGabiAdmin     Role = "gabi_admin"
	RoleScheduleAdmin Role = "schedule_admin"
	RoleQuotesAdmin   Role = "quotes_admin"
)

// ParseRole normalizes and validates a role string.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	switch r {
	case RoleSuperadmin, RolePMVAdmin, RoleGabiAdmin, RoleScheduleAdmin, RoleQuotesAdmin:
		return r, true
	}
	return "", false
}

// Valid reports whether the role is one of the known admin roles.
func (r Role) Valid() bool {
	_, ok := ParseRole(string(r))
	return ok
}

// Category classifies an event and determines which admin role may
// manage it.
type Category string

// Event categories.
const (
	CategoryPMV     Category = "pmv"
	CategoryGabi    Category = "gabi"
	CategoryGeneral Category = "general"
)

// ParseCategory trims and lower-cases the input before validating it,
// so that category values are stored and authorized in canonical form.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	switch c {
	case CategoryPMV, CategoryGabi, CategoryGeneral:
		return c, true
	}
	return "", false
}

// Valid reports whether the category is one of the known categories.
func (c Category) Valid() bool {
	_, ok := ParseCategory(string(c))
	return ok
}
