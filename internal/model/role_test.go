// Copyright (c) 2025-2026 Vihara Santidharma
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "testing"

func TestParseRole(t *testing.T) {
	tests := []struct {
		input  string
		want   Role
		wantOK bool
	}{
		{"superadmin", RoleSuperadmin, true},
		{"pmv_admin", RolePMVAdmin, true},
		{"gabi_admin", RoleGabiAdmin, true},
		{"schedule_admin", RoleScheduleAdmin, true},
		{"quotes_admin", RoleQuotesAdmin, true},
		{"  Superadmin  ", RoleSuperadmin, true},
		{"PMV_ADMIN", RolePMVAdmin, true},
		{"admin", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseRole(tt.input)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ParseRole(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestParseCategory(t *testing.T) {
	tests := []struct {
		input  string
		want   Category
		wantOK bool
	}{
		{"pmv", CategoryPMV, true},
		{"gabi", CategoryGabi, true},
		{"general", CategoryGeneral, true},
		{" GENERAL ", CategoryGeneral, true},
		{"events", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseCategory(tt.input)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ParseCategory(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestRoleValid(t *testing.T) {
	for _, role := range []Role{RoleSuperadmin, RolePMVAdmin, RoleGabiAdmin, RoleScheduleAdmin, RoleQuotesAdmin} {
		if !role.Valid() {
			t.Errorf("role %q should be valid", role)
		}
	}
	if Role("editor").Valid() {
		t.Error("unknown role should not be valid")
	}
}

func TestCategoryValid(t *testing.T) {
	for _, category := range []Category{CategoryPMV, CategoryGabi, CategoryGeneral} {
		if !category.Valid() {
			t.Errorf("category %q should be valid", category)
		}
	}
	if Category("misc").Valid() {
		t.Error("unknown category should not be valid")
	}
}
