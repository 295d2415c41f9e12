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

	"github.com/MikeStrusz/nmf-dashboard/internal/database"
	"github.com/MikeStrusz/nmf-dashboard/internal/events"
	"github.com/MikeStrusz/nmf-dashboard/internal/models"
)

// UpdateCover saves a corrected album cover URL after probing it.
func (h *Handler) UpdateCover(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	var cover models.AlbumCover
	if err := decodeBody(r, &cover); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_BODY", "request body must be a JSON album cover", err)
		return
	}
	if apiErr := validateRequest(&cover); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	if h.prober != nil {
		if err := h.prober.Probe(r.Context(), cover.CoverURL); err != nil {
			respondError(w, http.StatusUnprocessableEntity, "UNREACHABLE_URL", "cover URL did not answer a probe", err)
			return
		}
	}

	if err := h.db.UpsertAlbumCover(r.Context(), &cover); err != nil {
		respondError(w, http.StatusInternalServerError, "DB_ERROR", "failed to save cover", err)
		return
	}

	h.publish(events.TopicCoverUpdated, events.CoverUpdated{
		Artist: cover.Artist,
		Album:  cover.Album,
		Field:  "cover_url",
		URL:    cover.CoverURL,
		At:     time.Now().UTC(),
	})
	respondData(w, http.StatusOK, &cover, started)
}

// UpdateLink saves a corrected Spotify URL.
func (h *Handler) UpdateLink(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	var link models.AlbumLink
	if err := decodeBody(r, &link); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_BODY", "request body must be a JSON album link", err)
		return
	}
	if apiErr := validateRequest(&link); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	if err := h.db.UpsertAlbumLink(r.Context(), &link); err != nil {
		respondError(w, http.StatusInternalServerError, "DB_ERROR", "failed to save link", err)
		return
	}

	h.publish(events.TopicCoverUpdated, events.CoverUpdated{
		Artist: link.Artist,
		Album:  link.Album,
		Field:  "spotify_url",
		URL:    link.SpotifyURL,
		At:     time.Now().UTC(),
	})
	respondData(w, http.StatusOK, &link, started)
}

// Nuke hides an album from every dashboard view.
func (h *Handler) Nuke(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	var nuke models.NukedAlbum
	if err := decodeBody(r, &nuke); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_BODY", "request body must be a JSON nuke request", err)
		return
	}
	if apiErr := validateRequest(&nuke); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	if err := h.db.NukeAlbum(r.Context(), &nuke); err != nil {
		respondError(w, http.StatusInternalServerError, "DB_ERROR", "failed to nuke album", err)
		return
	}

	h.publish(events.TopicAlbumNuked, events.AlbumNuked{
		Artist: nuke.Artist,
		Album:  nuke.Album,
		Reason: nuke.Reason,
		At:     time.Now().UTC(),
	})
	respondData(w, http.StatusOK, &nuke, started)
}

// RestoreAlbum brings a nuked album back.
func (h *Handler) RestoreAlbum(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	artist, album := r.URL.Query().Get("artist"), r.URL.Query().Get("album")
	if artist == "" || album == "" {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "artist and album query parameters are required", nil)
		return
	}

	err := h.db.RestoreAlbum(r.Context(), artist, album)
	if errors.Is(err, database.ErrNotFound) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "album is not nuked", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DB_ERROR", "failed to restore album", err)
		return
	}

	h.publish(events.TopicAlbumRestored, events.AlbumNuked{
		Artist:   artist,
		Album:    album,
		Restored: true,
		At:       time.Now().UTC(),
	})
	respondData(w, http.StatusOK, map[string]string{"restored": artist + " - " + album}, started)
}

// ListNuked returns all currently nuked albums.
func (h *Handler) ListNuked(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	nuked, err := h.db.ListNukedAlbums(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DB_ERROR", "failed to list nuked albums", err)
		return
	}
	respondData(w, http.StatusOK, nuked, started)
}

// NukeCandidates suggests albums in the latest week whose titles match
// the nuke keyword list (Live, Deluxe, Reissue, Anniversary).
func (h *Handler) NukeCandidates(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	weekOf, err := h.db.LatestPredictionWeek(r.Context())
	if errors.Is(err, sql.ErrNoRows) {
		respondData(w, http.StatusOK, []models.Prediction{}, started)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DB_ERROR", "failed to resolve latest week", err)
		return
	}

	candidates, err := h.db.ListNukeCandidates(r.Context(), weekOf)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DB_ERROR", "failed to list nuke candidates", err)
		return
	}
	respondData(w, http.StatusOK, candidates, started)
}

// MissingArtwork lists predictions without a usable cover, optionally
// filtered by a case-insensitive search term.
func (h *Handler) MissingArtwork(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	limit := getIntParam(r, "limit", 100)
	if limit < 1 || limit > 500 {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "limit must be between 1 and 500", nil)
		return
	}

	preds, err := h.db.ListMissingArtwork(r.Context(), r.URL.Query().Get("search"), limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DB_ERROR", "failed to list missing artwork", err)
		return
	}
	respondData(w, http.StatusOK, preds, started)
}

// MissingLinks lists predictions without a Spotify link, optionally
// filtered by a case-insensitive search term.
func (h *Handler) MissingLinks(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	limit := getIntParam(r, "limit", 100)
	if limit < 1 || limit > 500 {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "limit must be between 1 and 500", nil)
		return
	}

	preds, err := h.db.ListMissingLinks(r.Context(), r.URL.Query().Get("search"), limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DB_ERROR", "failed to list missing links", err)
		return
	}
	respondData(w, http.StatusOK, preds, started)
}
