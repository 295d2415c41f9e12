// NMF Dashboard - Personalized New Music Friday Predictions
// Copyright 2026 Mike Strusz (MikeStrusz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MikeStrusz/nmf-dashboard

package api

import (
	"net/http"
	"time"
)

// HealthStatus is the health endpoint payload.
type HealthStatus struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Database      string `json:"database"`
	Clients       int    `json:"websocket_clients"`
}

// Health reports liveness plus a database ping.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	status := &HealthStatus{
		Status:        "ok",
		Version:       AppVersion,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		Database:      "ok",
	}
	if h.hub != nil {
		status.Clients = h.hub.GetClientCount()
	}

	httpStatus := http.StatusOK
	if err := h.db.Ping(r.Context()); err != nil {
		status.Status = "degraded"
		status.Database = "unreachable"
		httpStatus = http.StatusServiceUnavailable
	}

	respondData(w, httpStatus, status, started)
}

// HealthLive is the bare liveness probe for container orchestrators.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// HealthReady reports readiness once the database answers.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "NOT_READY", "database is not reachable", err)
		return
	}
	respondData(w, http.StatusOK, map[string]string{"ready": "true"}, time.Now())
}
