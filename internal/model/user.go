// Copyright (c) 2025-2026 Vihara Santidharma
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// AuthUser is the identity minted at login time and embedded in the
// session token. It is never persisted server-side; the signed token
// is its only durable representation.
type AuthUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
}

// AdminRecord is one entry of the provisioned admin list. The password
// hash never leaves the auth package.
type AdminRecord struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	Role         Role   `json:"role"`
	PasswordHash string `json:"password_hash"`
}

// User returns the public identity for the record.
func (a AdminRecord) User() AuthUser {
	return AuthUser{
		ID:    a.ID,
		Email: a.Email,
		Name:  a.Name,
		Role:  a.Role,
	}
}
