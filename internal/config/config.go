// Copyright (c) 2025-2026 Vihara Santidharma
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// MinJWTSecretLength is the minimum required length for the token
// signing secret.
const MinJWTSecretLength = 32

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ServerHost string `env:"VIHARA_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"VIHARA_SERVER_PORT" envDefault:"8080"`
	Env        string `env:"VIHARA_ENV" envDefault:"development"`
	LogLevel   string `env:"VIHARA_LOG_LEVEL" envDefault:"info"`

	// Token signing
	JWTSecret string `env:"VIHARA_JWT_SECRET,required"`

	// Content repository (GitHub Contents API)
	GitHubToken  string `env:"VIHARA_GITHUB_TOKEN,required"`
	GitHubRepo   string `env:"VIHARA_GITHUB_REPO,required"` // "repo" or "owner/repo"
	GitHubOwner  string `env:"VIHARA_GITHUB_OWNER"`
	GitHubBranch string `env:"VIHARA_GITHUB_BRANCH" envDefault:"main"`

	// Document paths inside the content repository
	EventsPath string `env:"VIHARA_EVENTS_PATH" envDefault:"public/data/events.json"`
	QuotesPath string `env:"VIHARA_QUOTES_PATH" envDefault:"public/data/quotes.json"`
	UploadsDir string `env:"VIHARA_UPLOADS_DIR" envDefault:"public/uploads"`

	// Provisioned admin credentials as a JSON array of
	// {id,email,name,role,password_hash} objects.
	AdminUsers string `env:"VIHARA_ADMIN_USERS"`

	// Shared secret accepted by the quotes update endpoint.
	QuotesAdminSecret string `env:"VIHARA_QUOTES_ADMIN_SECRET"`

	// Blob store / read cache configuration
	RedisURL       string `env:"VIHARA_REDIS_URL"` // Optional Redis URL for the quotes blob store
	CachePrefix    string `env:"VIHARA_CACHE_PREFIX" envDefault:"vihara:"`
	EventsCacheTTL int    `env:"VIHARA_EVENTS_CACHE_TTL" envDefault:"60"` // Public read cache TTL in seconds

	// CORS allow-list for the SPA front end
	CORSOrigins []string `env:"VIHARA_CORS_ORIGINS" envSeparator:","`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedis returns true if the Redis blob store is configured.
func (c Config) UseRedis() bool {
	return c.RedisURL != ""
}

// RepoOwnerName resolves the repository owner and name, accepting either
// a separate owner variable or the combined "owner/repo" form.
func (c Config) RepoOwnerName() (owner, repo string, err error) {
	repo = c.GitHubRepo
	owner = c.GitHubOwner
	if strings.Contains(repo, "/") {
		parts := strings.SplitN(repo, "/", 2)
		owner, repo = parts[0], parts[1]
	}
	if owner == "" {
		return "", "", fmt.Errorf("VIHARA_GITHUB_OWNER is not set and VIHARA_GITHUB_REPO is not in owner/repo format")
	}
	return owner, repo, nil
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.JWTSecret) < MinJWTSecretLength {
		return nil, fmt.Errorf("VIHARA_JWT_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinJWTSecretLength, len(cfg.JWTSecret))
	}

	for _, weak := range knownWeakSecrets {
		if cfg.JWTSecret == weak {
			return nil, fmt.Errorf("VIHARA_JWT_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	if !hasMinimumEntropy(cfg.JWTSecret) {
		slog.Warn("VIHARA_JWT_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	if _, _, err := cfg.RepoOwnerName(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
