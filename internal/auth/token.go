// Copyright (c) 2025-2026 Vihara Santidharma
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/viharasite/vihara-go/internal/model"
)

const issuer = "vihara"

// TokenTTL is how long a minted session token stays valid.
const TokenTTL = 7 * 24 * time.Hour

// ErrInvalidToken indicates the token failed validation.
var ErrInvalidToken = errors.New("invalid token")

// Claims carries the authenticated user inside the signed token.
// The token is the only durable representation of a session; the
// server holds no session state.
type Claims struct {
	Email string     `json:"email"`
	Name  string     `json:"name"`
	Role  model.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenCodec signs and validates session tokens with a server-held
// secret. The signing method is fixed to HS256 and enforced on verify,
// never inferred from the token header.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenCodec creates a codec for the given secret.
func NewTokenCodec(secret string) *TokenCodec {
	return &TokenCodec{secret: []byte(secret), ttl: TokenTTL}
}

// Sign mints a session token for the user, expiring after the codec TTL.
func (c *TokenCodec) Sign(user model.AuthUser) (string, error) {
	if strings.TrimSpace(user.ID) == "" {
		return "", errors.New("user ID is required")
	}

	now := time.Now().UTC()
	claims := Claims{
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", err
	}
	return signed, nil
}

// Verify checks the token signature and expiry and returns the
// embedded user. Any mismatch, tampering or elapsed expiry yields
// ErrInvalidToken.
func (c *TokenCodec) Verify(token string) (model.AuthUser, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return model.AuthUser{}, ErrInvalidToken
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return c.secret, nil
	})
	if err != nil {
		return model.AuthUser{}, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return model.AuthUser{}, ErrInvalidToken
	}
	if claims.Issuer != issuer || strings.TrimSpace(claims.Subject) == "" {
		return model.AuthUser{}, ErrInvalidToken
	}
	if claims.ExpiresAt == nil || time.Now().UTC().After(claims.ExpiresAt.Time) {
		return model.AuthUser{}, ErrInvalidToken
	}
	if !claims.Role.Valid() {
		return model.AuthUser{}, ErrInvalidToken
	}

	return model.AuthUser{
		ID:    claims.Subject,
		Email: claims.Email,
		Name:  claims.Name,
		Role:  claims.Role,
	}, nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header, case-insensitively. Returns "" if absent or malformed.
func BearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// RequireAuth chains bearer extraction and verification. Every failure
// collapses to (zero, false); callers treat "no user" uniformly as
// unauthorized.
func (c *TokenCodec) RequireAuth(header string) (model.AuthUser, bool) {
	token := BearerToken(header)
	if token == "" {
		return model.AuthUser{}, false
	}
	user, err := c.Verify(token)
	if err != nil {
		return model.AuthUser{}, false
	}
	return user, true
}
