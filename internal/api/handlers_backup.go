// NMF Dashboard - Personalized New Music Friday Predictions
// Copyright 2026 Mike Strusz (MikeStrusz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MikeStrusz/nmf-dashboard

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MikeStrusz/nmf-dashboard/internal/backup"
)

// CreateBackup triggers a manual backup.
func (h *Handler) CreateBackup(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	if h.backupMgr == nil {
		respondError(w, http.StatusNotFound, "BACKUP_DISABLED", "backups are disabled", nil)
		return
	}

	b, err := h.backupMgr.CreateBackup(r.Context(), backup.TriggerManual)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "BACKUP_ERROR", "backup failed", err)
		return
	}
	respondData(w, http.StatusCreated, b, started)
}

// ListBackups returns all known backups, newest first.
func (h *Handler) ListBackups(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	if h.backupMgr == nil {
		respondError(w, http.StatusNotFound, "BACKUP_DISABLED", "backups are disabled", nil)
		return
	}
	respondData(w, http.StatusOK, h.backupMgr.ListBackups(), started)
}

// RestoreBackup verifies and stages a restore of the identified backup.
func (h *Handler) RestoreBackup(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	if h.backupMgr == nil {
		respondError(w, http.StatusNotFound, "BACKUP_DISABLED", "backups are disabled", nil)
		return
	}

	id := chi.URLParam(r, "id")
	dir, err := h.backupMgr.Restore(r.Context(), id, backup.RestoreOptions{})
	if errors.Is(err, backup.ErrBackupNotFound) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "unknown backup id", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "RESTORE_ERROR", "restore failed", err)
		return
	}

	respondData(w, http.StatusOK, map[string]string{
		"backup_id":   id,
		"restored_to": dir,
	}, started)
}
