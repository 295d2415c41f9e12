// NMF Dashboard - Personalized New Music Friday Predictions
// Copyright 2026 Mike Strusz (MikeStrusz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MikeStrusz/nmf-dashboard

package api

import (
	"net/http"
	"time"

	gorillaws "github.com/gorilla/websocket"

	"github.com/MikeStrusz/nmf-dashboard/internal/artwork"
	"github.com/MikeStrusz/nmf-dashboard/internal/auth"
	"github.com/MikeStrusz/nmf-dashboard/internal/backup"
	"github.com/MikeStrusz/nmf-dashboard/internal/config"
	"github.com/MikeStrusz/nmf-dashboard/internal/database"
	"github.com/MikeStrusz/nmf-dashboard/internal/events"
	"github.com/MikeStrusz/nmf-dashboard/internal/importer"
	"github.com/MikeStrusz/nmf-dashboard/internal/logging"
	"github.com/MikeStrusz/nmf-dashboard/internal/websocket"
)

// AppVersion is set at build time.
var AppVersion = "dev"

// Handler bundles the dependencies the HTTP handlers need.
type Handler struct {
	db        *database.DB
	cfg       *config.Config
	graphSvc  *GraphService
	jwt       *auth.JWTManager
	creds     *auth.AdminCredentials
	backupMgr *backup.Manager
	prober    *artwork.Prober
	bus       *events.Bus
	hub       *websocket.Hub
	importer  *importer.Importer
	startTime time.Time
}

// HandlerDeps carries the constructor dependencies. jwt and creds are nil
// when auth_mode is none; backupMgr is nil when backups are disabled.
type HandlerDeps struct {
	DB        *database.DB
	Config    *config.Config
	GraphSvc  *GraphService
	JWT       *auth.JWTManager
	Creds     *auth.AdminCredentials
	BackupMgr *backup.Manager
	Prober    *artwork.Prober
	Bus       *events.Bus
	Hub       *websocket.Hub
	Importer  *importer.Importer
}

// NewHandler creates the handler set.
func NewHandler(deps HandlerDeps) *Handler {
	return &Handler{
		db:        deps.DB,
		cfg:       deps.Config,
		graphSvc:  deps.GraphSvc,
		jwt:       deps.JWT,
		creds:     deps.Creds,
		backupMgr: deps.BackupMgr,
		prober:    deps.Prober,
		bus:       deps.Bus,
		hub:       deps.Hub,
		importer:  deps.Importer,
		startTime: time.Now(),
	}
}

// publish sends a domain event, logging instead of failing the request
// when the bus is saturated. Writes must not depend on fan-out.
func (h *Handler) publish(topic string, payload interface{}) {
	if h.bus == nil {
		return
	}
	if err := h.bus.Publish(topic, payload); err != nil {
		logging.Warn().Err(err).Str("topic", topic).Msg("event publish failed")
	}
}

// getUpgrader builds the WebSocket upgrader with origin checking against
// the configured CORS origins.
func (h *Handler) getUpgrader() gorillaws.Upgrader {
	return gorillaws.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkWebSocketOrigin,
	}
}

func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		// Non-browser clients (curl, monitoring) send no Origin
		return true
	}
	for _, allowed := range h.cfg.Security.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

// WebSocket upgrades the connection and registers the client with the hub.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := websocket.NewClient(h.hub, conn)
	h.hub.Register <- client
	client.Start()
}
