// Copyright (c) 2025-2026 Vihara Santidharma
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/viharasite/vihara-go/internal/auth"
	"github.com/viharasite/vihara-go/internal/cache"
	"github.com/viharasite/vihara-go/internal/config"
	"github.com/viharasite/vihara-go/internal/handler/api"
	"github.com/viharasite/vihara-go/internal/logging"
	"github.com/viharasite/vihara-go/internal/middleware"
	"github.com/viharasite/vihara-go/internal/service"
	"github.com/viharasite/vihara-go/internal/store"
	"github.com/viharasite/vihara-go/internal/version"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "vihara - community site backend\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  VIHARA_JWT_SECRET          Token signing key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  VIHARA_GITHUB_TOKEN        Content repository access token (required)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  VIHARA_GITHUB_REPO         Repository as owner/repo (required)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  VIHARA_GITHUB_BRANCH       Repository branch (default: main)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  VIHARA_ADMIN_USERS         Admin accounts JSON array\n")
		_, _ = fmt.Fprintf(os.Stderr, "  VIHARA_SERVER_PORT         Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  VIHARA_ENV                 Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  VIHARA_REDIS_URL           Redis URL for the quote store and read cache (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  VIHARA_CORS_ORIGINS        Comma-separated CORS allow-list\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		_, _ = fmt.Printf("vihara %s (commit: %s, built: %s)\n",
			version.Version, version.GitCommit, version.BuildTime)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	// Text logger that also retains WARN and ERROR records for the
	// audit endpoint.
	auditRing := logging.NewAuditRing(logging.DefaultRingSize)
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger := slog.New(logging.NewAuditHandler(textHandler, auditRing))
	slog.SetDefault(logger)

	owner, repoName, err := cfg.RepoOwnerName()
	if err != nil {
		return err
	}

	repo := store.NewClient(store.Config{
		Token:  cfg.GitHubToken,
		Owner:  owner,
		Repo:   repoName,
		Branch: cfg.GitHubBranch,
	})
	slog.Info("content repository configured",
		"repo", owner+"/"+repoName, "branch", cfg.GitHubBranch)

	// Blob store: Redis when configured, in-memory otherwise. With
	// Redis the quote survives restarts; without it the quote falls
	// back to the repository document.
	var blobs cache.Blobs
	quotesDurable := false
	if cfg.UseRedis() {
		opts := cache.DefaultRedisOptions()
		opts.URL = cfg.RedisURL
		opts.Prefix = cfg.CachePrefix
		redisBlobs, err := cache.NewRedisBlobs(opts)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		blobs = redisBlobs
		quotesDurable = true
		slog.Info("redis blob store connected", "prefix", cfg.CachePrefix)
	} else {
		blobs = cache.NewMemoryBlobs(time.Minute)
		slog.Info("using in-memory blob cache")
	}
	defer func() {
		if err := blobs.Close(); err != nil {
			slog.Error("closing blob store", "error", err)
		}
	}()

	directory, err := auth.NewDirectory(cfg.AdminUsers)
	if err != nil {
		return fmt.Errorf("loading admin directory: %w", err)
	}
	if directory.Len() == 0 {
		slog.Warn("no admin accounts configured; login is impossible")
	}

	codec := auth.NewTokenCodec(cfg.JWTSecret)
	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())

	events := service.NewEvents(repo, cfg.EventsPath, blobs, time.Duration(cfg.EventsCacheTTL)*time.Second)
	quotes := service.NewQuotes(blobs, quotesDurable, repo, cfg.QuotesPath)
	uploads := service.NewUploads(repo, cfg.UploadsDir)

	handler := api.NewHandler(events, quotes, uploads, directory, codec,
		loginProtection, auditRing, cfg.QuotesAdminSecret)
	router := handler.Router(api.RouterConfig{CORSOrigins: cfg.CORSOrigins})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second, // Longer to allow for large uploads and slow connections
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "version", version.Short())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
