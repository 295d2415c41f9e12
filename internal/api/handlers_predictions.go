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

	"github.com/MikeStrusz/nmf-dashboard/internal/models"
)

// PredictionWeekResponse is one archive entry plus its album payload size.
type PredictionWeekResponse struct {
	WeekOf     string `json:"week_of"`
	Filename   string `json:"filename"`
	AlbumCount int    `json:"album_count"`
}

// PredictionsResponse is the weekly dashboard payload.
type PredictionsResponse struct {
	WeekOf string              `json:"week_of"`
	Albums []models.Prediction `json:"albums"`
}

// ListWeeks returns the prediction archive, newest week first.
func (h *Handler) ListWeeks(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	weeks, err := h.db.ListPredictionWeeks(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DB_ERROR", "failed to list prediction weeks", err)
		return
	}

	out := make([]PredictionWeekResponse, 0, len(weeks))
	for _, wk := range weeks {
		out = append(out, PredictionWeekResponse{
			WeekOf:     wk.WeekOf.Format(weekParamLayout),
			Filename:   wk.Filename,
			AlbumCount: wk.AlbumCount,
		})
	}
	respondData(w, http.StatusOK, out, started)
}

// GetPredictions returns one week's predictions, defaulting to the latest
// week. Nuked albums are filtered out and Fixer corrections are joined in.
func (h *Handler) GetPredictions(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	weekOf, ok, err := getWeekParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error(), nil)
		return
	}
	if !ok {
		weekOf, err = h.db.LatestPredictionWeek(r.Context())
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "NO_PREDICTIONS", "no prediction weeks have been imported", nil)
			return
		}
		if err != nil {
			respondError(w, http.StatusInternalServerError, "DB_ERROR", "failed to resolve latest week", err)
			return
		}
	}

	albums, err := h.db.GetPredictions(r.Context(), weekOf, r.URL.Query().Get("genre"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DB_ERROR", "failed to load predictions", err)
		return
	}
	if len(albums) == 0 {
		respondError(w, http.StatusNotFound, "WEEK_NOT_FOUND", "no predictions for the requested week", nil)
		return
	}

	respondData(w, http.StatusOK, &PredictionsResponse{
		WeekOf: weekOf.Format(weekParamLayout),
		Albums: albums,
	}, started)
}
