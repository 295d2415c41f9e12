// NMF Dashboard - Personalized New Music Friday Predictions
// Copyright 2026 Mike Strusz (MikeStrusz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MikeStrusz/nmf-dashboard

// Package main is the entry point for the NMF dashboard server.
//
// The dashboard serves personalized New Music Friday album predictions
// produced by an offline ML pipeline, an artist similarity graph with
// shortest-path queries to a reference artist, listener feedback, the
// Album Fixer admin tools and backup/restore.
//
// # Startup order
//
//  1. Configuration: Koanf v2 layered defaults, YAML file, environment
//  2. Logging: zerolog via the logging package
//  3. Database: DuckDB with the dashboard schema
//  4. Data import: CSV drops from the pipeline (when RELOAD_ON_START=true)
//  5. Graph cache: BadgerDB result memoization
//  6. Events: in-process watermill bus plus the WebSocket forwarder
//  7. Authentication: JWT with a single admin account, or open mode
//  8. Backup manager and optional scheduler
//  9. HTTP server: Chi router under a suture supervisor tree
//
// # Signal handling
//
// SIGINT and SIGTERM trigger graceful shutdown: the HTTP server drains
// in-flight requests (10s bound), WebSocket clients are closed, then the
// cache and database close.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MikeStrusz/nmf-dashboard/internal/api"
	"github.com/MikeStrusz/nmf-dashboard/internal/artwork"
	"github.com/MikeStrusz/nmf-dashboard/internal/auth"
	"github.com/MikeStrusz/nmf-dashboard/internal/backup"
	"github.com/MikeStrusz/nmf-dashboard/internal/cache"
	"github.com/MikeStrusz/nmf-dashboard/internal/config"
	"github.com/MikeStrusz/nmf-dashboard/internal/database"
	"github.com/MikeStrusz/nmf-dashboard/internal/events"
	"github.com/MikeStrusz/nmf-dashboard/internal/importer"
	"github.com/MikeStrusz/nmf-dashboard/internal/logging"
	"github.com/MikeStrusz/nmf-dashboard/internal/supervisor"
	ws "github.com/MikeStrusz/nmf-dashboard/internal/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Str("auth_mode", cfg.Security.AuthMode).
		Str("reference_artist", cfg.Graph.ReferenceArtist).
		Msg("Starting NMF dashboard")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	// Re-read the pipeline CSV drops on startup so a fresh container
	// serves the latest Friday files without an admin round trip.
	imp := importer.New(db, &cfg.Data)
	if cfg.Data.ReloadOnStart {
		if err := imp.ImportAll(context.Background()); err != nil {
			logging.Warn().Err(err).Msg("Startup data import failed, serving existing tables")
		}
	}

	store, err := cache.New(cfg.Graph.CachePath, cfg.Graph.CacheTTL)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open graph cache")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing graph cache")
		}
	}()
	if !store.Enabled() {
		logging.Info().Msg("Graph result cache disabled (GRAPH_CACHE_PATH is empty)")
	}

	bus := events.NewBus(nil)
	defer func() {
		if err := bus.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event bus")
		}
	}()

	hub := ws.NewHub()
	forwarder := events.NewForwarder(bus, hub)

	var (
		jwtManager *auth.JWTManager
		creds      *auth.AdminCredentials
	)
	switch cfg.Security.AuthMode {
	case "jwt":
		jwtManager, err = auth.NewJWTManager(&cfg.Security)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to initialize JWT manager")
		}
		creds, err = auth.NewAdminCredentials(cfg.Security.AdminUsername, cfg.Security.AdminPassword)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to initialize admin credentials")
		}
		logging.Info().Msg("JWT authentication enabled")
	case "none":
		logging.Warn().Msg("Authentication is DISABLED (AUTH_MODE=none): every request runs as admin")
		logging.Warn().Msg("Use this mode only on localhost or an isolated network")
	}

	enforcer, err := auth.NewEnforcer()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize authorization")
	}
	authMw := auth.NewMiddleware(jwtManager, enforcer, cfg.Security.AuthMode)

	var backupMgr *backup.Manager
	if cfg.Backup.Enabled {
		backupMgr, err = backup.NewManager(&cfg.Backup, db, cfg.Data.Dir)
		if err != nil {
			logging.Warn().Err(err).Msg("Failed to initialize backup manager, backups disabled")
			backupMgr = nil
		} else {
			logging.Info().
				Str("dir", cfg.Backup.Dir).
				Bool("schedule_enabled", cfg.Backup.ScheduleOn).
				Msg("Backup manager initialized")
		}
	} else {
		logging.Info().Msg("Backup functionality disabled (BACKUP_ENABLED=false)")
	}

	prober := artwork.NewProber(&cfg.Artwork)

	handler := api.NewHandler(api.HandlerDeps{
		DB:        db,
		Config:    cfg,
		GraphSvc:  api.NewGraphService(db, &cfg.Graph, store),
		JWT:       jwtManager,
		Creds:     creds,
		BackupMgr: backupMgr,
		Prober:    prober,
		Bus:       bus,
		Hub:       hub,
		Importer:  imp,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      api.NewRouter(handler, authMw, cfg).Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddMessagingService(supervisor.NewRunnerService("websocket-hub", hub.RunWithContext))
	tree.AddMessagingService(supervisor.NewRunnerService("event-forwarder", forwarder.Run))
	if backupMgr != nil && cfg.Backup.ScheduleOn {
		tree.AddMessagingService(backup.NewScheduler(backupMgr, cfg.Backup.Interval))
		logging.Info().Dur("interval", cfg.Backup.Interval).Msg("Backup scheduler enabled")
	}
	tree.AddAPIService(supervisor.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("NMF dashboard stopped gracefully")
}
