// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the Inkwell blog API server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inkwell/internal/cache"
	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/handlers"
	"inkwell/internal/middleware"
	"inkwell/internal/notify"
	"inkwell/internal/router"
	"inkwell/internal/session"
	"inkwell/internal/storage"
	"inkwell/internal/store"
)

func main() {
	// Load configuration from .env and environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Structured logger: text in development, JSON everywhere else.
	var logHandler slog.Handler
	if cfg.IsDev() {
		logHandler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		logHandler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	slog.SetDefault(slog.New(logHandler))

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"app_url", cfg.AppURL,
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed categories and development accounts (no-op if data already exists).
	seedCtx, seedCancel := context.WithTimeout(context.Background(), 30*time.Second)
	err = database.Seed(seedCtx, db)
	seedCancel()
	if err != nil {
		slog.Error("failed to seed database", "error", err)
		os.Exit(1)
	}

	// Connect to Valkey (sessions, reset tokens, response cache).
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}

	// In non-development environments, mark cookies as Secure (HTTPS-only).
	secureCookies := !cfg.IsDev()
	sessionStore := session.NewStore(valkeyClient, secureCookies)
	resetTokens := session.NewResetTokens(valkeyClient)
	responseCache := cache.NewResponseCache(valkeyClient, cache.DefaultResponseTTL)

	// Initialize data stores.
	userStore := store.NewUserStore(db)
	postStore := store.NewPostStore(db)
	categoryStore := store.NewCategoryStore(db)
	commentStore := store.NewCommentStore(db)
	subscriberStore := store.NewSubscriberStore(db)

	// Uploads go to S3 when configured, local disk otherwise.
	var uploader storage.Uploader
	uploadDir := ""
	if cfg.S3Enabled() {
		s3, err := storage.NewS3(cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicURL)
		if err != nil {
			slog.Error("failed to initialize S3 storage", "error", err)
			os.Exit(1)
		}
		if s3 == nil {
			slog.Error("S3_ENDPOINT is set but S3 credentials are missing")
			os.Exit(1)
		}
		uploader = s3
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
	} else {
		disk, err := storage.NewDisk(cfg.UploadDir)
		if err != nil {
			slog.Error("failed to initialize upload directory", "error", err)
			os.Exit(1)
		}
		uploader = disk
		uploadDir = disk.Dir()
		slog.Info("uploads stored on disk", "dir", uploadDir)
	}

	// Outgoing mail: SMTP when configured, log-only otherwise.
	var mailer notify.Mailer = notify.LogMailer{}
	if cfg.SMTPEnabled() {
		smtp, err := notify.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFrom)
		if err != nil {
			slog.Error("failed to initialize smtp mailer", "error", err)
			os.Exit(1)
		}
		mailer = smtp
		slog.Info("smtp mailer configured", "host", cfg.SMTPHost, "port", cfg.SMTPPort)
	} else {
		slog.Warn("smtp not configured, outgoing mail will only be logged")
	}
	notifier := notify.New(subscriberStore, mailer, cfg.AppURL)

	authLimiter := middleware.NewRateLimiter("auth", 10, time.Minute)
	defer authLimiter.Stop()
	signupLimiter := middleware.NewRateLimiter("newsletter", 5, time.Minute)
	defer signupLimiter.Stop()

	// Set up the Chi router with all middleware and routes.
	r := router.New(router.Deps{
		Sessions:      sessionStore,
		Cache:         responseCache,
		AuthLimiter:   authLimiter,
		SignupLimiter: signupLimiter,
		CORSOrigins:   cfg.CORSAllowedOrigins,
		SecureCookies: secureCookies,
		UploadDir:     uploadDir,

		Posts:  handlers.NewPosts(postStore, commentStore, responseCache, notifier, cfg.AppURL),
		Auth:   handlers.NewAuth(sessionStore, resetTokens, userStore, notifier),
		Public: handlers.NewPublic(categoryStore, userStore, postStore, subscriberStore, cfg.AppURL),
		Admin:  handlers.NewAdmin(postStore, categoryStore, responseCache),
		Users:  handlers.NewUsers(userStore, postStore, sessionStore, cfg.AppURL),
		Upload: handlers.NewUpload(uploader),
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Give active requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	// Let queued newsletter mail finish before closing the stores it reads.
	if err := notifier.Wait(ctx); err != nil {
		slog.Warn("pending notifications abandoned", "error", err)
	}

	if err := valkeyClient.Close(); err != nil {
		slog.Error("valkey close failed", "error", err)
	}
	if err := db.Close(); err != nil {
		slog.Error("database close failed", "error", err)
	}

	slog.Info("server stopped gracefully")
}
