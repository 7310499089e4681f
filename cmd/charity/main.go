// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/olegiv/charity-cms/internal/auth"
	"github.com/olegiv/charity-cms/internal/config"
	"github.com/olegiv/charity-cms/internal/generator"
	"github.com/olegiv/charity-cms/internal/hooks"
	"github.com/olegiv/charity-cms/internal/logging"
	"github.com/olegiv/charity-cms/internal/metrics"
	"github.com/olegiv/charity-cms/internal/middleware"
	"github.com/olegiv/charity-cms/internal/render"
	"github.com/olegiv/charity-cms/internal/scheduler"
	"github.com/olegiv/charity-cms/internal/session"
	"github.com/olegiv/charity-cms/internal/storage"
	"github.com/olegiv/charity-cms/internal/store"
	"github.com/olegiv/charity-cms/internal/version"
	"github.com/olegiv/charity-cms/web"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "charity - Jati Welfare Foundation website\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CHARITY_SESSION_SECRET    Session and CSRF key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CHARITY_STORAGE_DRIVER    memory|file|sqlite|mysql|postgres|redis|s3 (default: file)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CHARITY_STORAGE_PATH      Data directory (default: ./data)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CHARITY_SERVER_PORT       Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CHARITY_ENV               development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CHARITY_AI_PROVIDER       none|openai|gemini|claude (default: none)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CHARITY_ADMIN_PASSWORD_HASH  argon2id hash from 'charityctl hash-password'\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	info := version.Info{Version: appVersion, GitCommit: appGitCommit, BuildTime: appBuildTime}.Resolve()
	if *showVersion {
		_, _ = fmt.Printf("charity %s\n", info)
		os.Exit(0)
	}

	if err := run(info); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run(info version.Info) error {
	// Load .env files if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	m := metrics.New()
	logger := logging.New(logging.Options{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		Development: cfg.IsDevelopment(),
	}, m.CountLog)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, err := storage.Open(ctx, cfg.Storage(logger))
	if err != nil {
		return err
	}
	defer func() {
		if err := backend.Close(); err != nil {
			slog.Error("error closing storage", "error", err)
		}
	}()
	slog.Info("storage ready", "category", logging.CategoryStorage, "driver", cfg.StorageDriver)

	seed := store.DefaultSeed()
	if cfg.SeedFile != "" {
		if seed, err = store.LoadSeedFile(cfg.SeedFile); err != nil {
			return err
		}
	}

	hookRegistry := hooks.NewRegistry(logger)
	unbind := m.Bind(hookRegistry)
	defer unbind()

	st := store.New(backend,
		store.WithKey(cfg.StorageKey),
		store.WithSeed(seed),
		store.WithHooks(hookRegistry),
		store.WithLogger(logger),
	)
	created, err := st.Initialize(ctx)
	if err != nil {
		return fmt.Errorf("initializing content: %w", err)
	}
	if created {
		slog.Info("content document seeded", "category", logging.CategoryContent, "key", cfg.StorageKey)
	}
	if cfg.WatchFile {
		watching, err := st.Watch(ctx)
		if err != nil {
			slog.Warn("cannot watch content document", "category", logging.CategoryStorage, "error", err)
		} else if watching {
			slog.Info("watching content document for external edits", "category", logging.CategoryStorage)
		}
	}

	sessionManager := session.New(backend, cfg.IsDevelopment())

	gen, err := generator.New(generator.Config{
		Provider:      cfg.AIProvider,
		APIKey:        cfg.AIAPIKey,
		TextModel:     cfg.AITextModel,
		ImageModel:    cfg.AIImageModel,
		BaseURL:       cfg.AIBaseURL,
		RatePerMinute: cfg.AIRatePerMinute,
	})
	if err != nil {
		return fmt.Errorf("configuring content generation: %w", err)
	}
	if cfg.AIEnabled() {
		gen = generator.NewObserved(generator.NewCompact(gen), logger, m.ObserveGenerator)
		slog.Info("content generation enabled", "category", logging.CategoryGenerator, "provider", gen.Name())
	}

	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return fmt.Errorf("getting templates fs: %w", err)
	}
	renderer, err := render.New(render.Config{
		TemplatesFS:    templatesFS,
		SessionManager: sessionManager,
		Logger:         logger,
	})
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}

	sched := scheduler.New(backend, logger)
	if cfg.BackupsEnabled() {
		job := scheduler.BackupJob(st, cfg.BackupSchedule, cfg.BackupKeep, logger, func(outcome string) {
			m.Backups.WithLabelValues(outcome).Inc()
		})
		if err := sched.Add(job); err != nil {
			return fmt.Errorf("scheduling backups: %w", err)
		}
	}
	if err := sched.Add(scheduler.SessionCleanupJob(session.NewStore(backend), logger)); err != nil {
		return fmt.Errorf("scheduling session cleanup: %w", err)
	}
	sched.Start()
	defer sched.Stop()

	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	defer loginProtection.Close()

	router, err := newRouter(app{
		cfg:             cfg,
		store:           st,
		sessionManager:  sessionManager,
		renderer:        renderer,
		generator:       gen,
		scheduler:       sched,
		metrics:         m,
		loginProtection: loginProtection,
		version:         info,
		logger:          logger,
		credentials: auth.Credentials{
			User:         cfg.AdminUser,
			Password:     cfg.AdminPassword,
			PasswordHash: cfg.AdminPasswordHash,
		},
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      0, // the change stream is long-lived; handlers use middleware.Timeout
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "version", info.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
