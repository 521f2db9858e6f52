// Copyright (c) 2025-2026 Vihara Santidharma
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import "github.com/viharasite/vihara-go/internal/model"

// CanManage reports whether a role may manage events of the given
// category. Superadmin may manage everything; each remaining role is
// bound to exactly one category. The switch is exhaustive over Role so
// that adding a role forces a review here.
func CanManage(role model.Role, category model.Category) bool {
	switch role {
	case model.RoleSuperadmin:
		return true
	case model.RolePMVAdmin:
		return category == model.CategoryPMV
	case model.RoleGabiAdmin:
		return category == model.CategoryGabi
	case model.RoleScheduleAdmin:
		return category == model.CategoryGeneral
	case model.RoleQuotesAdmin:
		return false
	default:
		return false
	}
}

// CanManageQuotes reports whether a role may overwrite the public quote.
func CanManageQuotes(role model.Role) bool {
	switch role {
	case model.RoleSuperadmin, model.RoleQuotesAdmin:
		return true
	default:
		return false
	}
}
