// Copyright (c) 2025-2026 Vihara Santidharma
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/viharasite/vihara-go/internal/model"
)

// ErrInvalidCredentials is returned for every login failure. Unknown
// email and wrong password are deliberately indistinguishable to the
// caller to prevent user enumeration.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Directory holds the statically provisioned admin records and verifies
// login credentials against them.
type Directory struct {
	admins []model.AdminRecord
}

// NewDirectory parses the provisioned admin list from its JSON form.
// An empty input yields an empty directory (every login fails).
func NewDirectory(adminsJSON string) (*Directory, error) {
	d := &Directory{}
	if strings.TrimSpace(adminsJSON) == "" {
		return d, nil
	}
	if err := json.Unmarshal([]byte(adminsJSON), &d.admins); err != nil {
		return nil, fmt.Errorf("parsing admin users: %w", err)
	}
	for i, a := range d.admins {
		if a.ID == "" || a.Email == "" || a.PasswordHash == "" {
			return nil, fmt.Errorf("admin entry %d is missing id, email or password_hash", i)
		}
		if !a.Role.Valid() {
			return nil, fmt.Errorf("admin entry %d has unknown role %q", i, a.Role)
		}
	}
	return d, nil
}

// Len returns the number of provisioned admins.
func (d *Directory) Len() int { return len(d.admins) }

// VerifyCredentials finds a case-insensitive email match and checks the
// password against the stored hash. On success it returns the public
// identity; on any failure it returns ErrInvalidCredentials.
func (d *Directory) VerifyCredentials(email, password string) (model.AuthUser, error) {
	for _, a := range d.admins {
		if !strings.EqualFold(a.Email, email) {
			continue
		}
		ok, err := CheckPassword(password, a.PasswordHash)
		if err != nil || !ok {
			return model.AuthUser{}, ErrInvalidCredentials
		}
		return a.User(), nil
	}
	return model.AuthUser{}, ErrInvalidCredentials
}
