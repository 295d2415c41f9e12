// NMF Dashboard - Personalized New Music Friday Predictions
// Copyright 2026 Mike Strusz (MikeStrusz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MikeStrusz/nmf-dashboard

package api

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/MikeStrusz/nmf-dashboard/internal/events"
)

// Reimport re-reads the pipeline CSV drops. Called by the admin after the
// Friday pipeline run lands new files in the data directory.
func (h *Handler) Reimport(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	if h.importer == nil {
		respondError(w, http.StatusNotFound, "IMPORT_DISABLED", "no data directory is configured", nil)
		return
	}

	if err := h.importer.ImportAll(r.Context()); err != nil {
		respondError(w, http.StatusInternalServerError, "IMPORT_ERROR", "import failed", err)
		return
	}

	// New similarity data invalidates every memoized graph answer
	h.graphSvc.Invalidate()

	summary := map[string]interface{}{"imported": true}
	weekOf, err := h.db.LatestPredictionWeek(r.Context())
	if err == nil {
		preds, predsErr := h.db.GetPredictions(r.Context(), weekOf, "")
		if predsErr == nil {
			summary["latest_week"] = weekOf.Format(weekParamLayout)
			summary["album_count"] = len(preds)
			h.publish(events.TopicPredictionsImported, events.PredictionsImported{
				WeekOf:     weekOf,
				AlbumCount: len(preds),
				At:         time.Now().UTC(),
			})
		}
	} else if !errors.Is(err, sql.ErrNoRows) {
		respondError(w, http.StatusInternalServerError, "DB_ERROR", "import succeeded but summary failed", err)
		return
	}

	respondData(w, http.StatusOK, summary, started)
}
