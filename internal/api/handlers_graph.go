// NMF Dashboard - Personalized New Music Friday Predictions
// Copyright 2026 Mike Strusz (MikeStrusz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MikeStrusz/nmf-dashboard

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/MikeStrusz/nmf-dashboard/internal/models"
)

// DacusNumber answers "how many similarity hops from this artist to the
// reference artist". The artist query parameter is required.
func (h *Handler) DacusNumber(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	artist := r.URL.Query().Get("artist")
	if artist == "" {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "artist query parameter is required", nil)
		return
	}

	resp, cached, err := h.graphSvc.DacusNumber(r.Context(), artist)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "GRAPH_ERROR", "failed to answer distance query", err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   resp,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(started).Milliseconds(),
			Cached:      cached,
		},
	})
}

// Figure renders the similarity path and its neighborhood for an artist
// with a found path. Artists without a path get 404 with a code the
// frontend maps to the "no connection" card.
func (h *Handler) Figure(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	artist := r.URL.Query().Get("artist")
	if artist == "" {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "artist query parameter is required", nil)
		return
	}

	resp, cached, err := h.graphSvc.Figure(r.Context(), artist)
	if errors.Is(err, ErrNoPath) {
		respondError(w, http.StatusNotFound, "NO_PATH", "artist has no path to the reference artist", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "GRAPH_ERROR", "failed to render figure", err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   resp,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(started).Milliseconds(),
			Cached:      cached,
		},
	})
}

// ListArtists returns queryable graph node names for the artist search
// box, optionally filtered by a case-insensitive substring.
func (h *Handler) ListArtists(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	limit := getIntParam(r, "limit", 50)
	if limit < 1 || limit > 500 {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "limit must be between 1 and 500", nil)
		return
	}

	artists, err := h.graphSvc.Artists(r.Context(), r.URL.Query().Get("search"), limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "GRAPH_ERROR", "failed to list artists", err)
		return
	}
	respondData(w, http.StatusOK, artists, started)
}

// SimilarArtists returns the stored similar-artist list for one artist,
// used by the album detail view.
func (h *Handler) SimilarArtists(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	artist := r.URL.Query().Get("artist")
	if artist == "" {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "artist query parameter is required", nil)
		return
	}

	similar, err := h.db.GetSimilarForArtist(r.Context(), artist)
	if err != nil {
		// Unknown artists return an empty list rather than an error;
		// the widget simply renders nothing
		respondData(w, http.StatusOK, []string{}, started)
		return
	}
	respondData(w, http.StatusOK, similar, started)
}
