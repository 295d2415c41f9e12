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

	"github.com/MikeStrusz/nmf-dashboard/internal/auth"
	"github.com/MikeStrusz/nmf-dashboard/internal/database"
	"github.com/MikeStrusz/nmf-dashboard/internal/events"
	"github.com/MikeStrusz/nmf-dashboard/internal/metrics"
	"github.com/MikeStrusz/nmf-dashboard/internal/models"
)

// SaveFeedback stores or updates the admin verdict for an album.
func (h *Handler) SaveFeedback(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	var fb models.Feedback
	if err := decodeBody(r, &fb); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_BODY", "request body must be JSON feedback", err)
		return
	}
	if apiErr := validateRequest(&fb); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	fb.UpdatedAt = time.Now().UTC()
	if err := h.db.SaveFeedback(r.Context(), &fb); err != nil {
		respondError(w, http.StatusInternalServerError, "DB_ERROR", "failed to save feedback", err)
		return
	}

	metrics.FeedbackSavedTotal.WithLabelValues("admin", fb.Verdict).Inc()
	h.publish(events.TopicFeedbackSaved, events.FeedbackSaved{
		Artist:    fb.Artist,
		Album:     fb.Album,
		Verdict:   fb.Verdict,
		Kind:      "admin",
		Username:  auth.ClaimsFromContext(r.Context()).Username,
		Timestamp: fb.UpdatedAt,
	})

	respondData(w, http.StatusOK, &fb, started)
}

// GetFeedback returns the admin verdict for one album.
func (h *Handler) GetFeedback(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	artist, album := r.URL.Query().Get("artist"), r.URL.Query().Get("album")
	if artist == "" || album == "" {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "artist and album query parameters are required", nil)
		return
	}

	fb, err := h.db.GetFeedback(r.Context(), artist, album)
	if errors.Is(err, database.ErrNotFound) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "no feedback for this album", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DB_ERROR", "failed to load feedback", err)
		return
	}
	respondData(w, http.StatusOK, fb, started)
}

// DeleteFeedback removes the admin verdict for one album.
func (h *Handler) DeleteFeedback(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	artist, album := r.URL.Query().Get("artist"), r.URL.Query().Get("album")
	if artist == "" || album == "" {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "artist and album query parameters are required", nil)
		return
	}

	err := h.db.DeleteFeedback(r.Context(), artist, album)
	if errors.Is(err, database.ErrNotFound) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "no feedback for this album", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DB_ERROR", "failed to delete feedback", err)
		return
	}
	respondData(w, http.StatusOK, map[string]string{"deleted": artist + " - " + album}, started)
}

// ListReviews returns admin feedback filtered and sorted for the reviews
// page.
func (h *Handler) ListReviews(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	filter := models.ReviewFilter{
		Verdict: r.URL.Query().Get("verdict"),
		SortBy:  r.URL.Query().Get("sort_by"),
		Limit:   getIntParam(r, "limit", 0),
	}
	if apiErr := validateRequest(&filter); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	reviews, err := h.db.ListFeedback(r.Context(), filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DB_ERROR", "failed to list reviews", err)
		return
	}
	respondData(w, http.StatusOK, reviews, started)
}

// SubmitPublicFeedback stores an anonymous visitor verdict. Unlike admin
// feedback this appends rather than upserts, so repeat verdicts all count.
func (h *Handler) SubmitPublicFeedback(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	var fb models.PublicFeedback
	if err := decodeBody(r, &fb); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_BODY", "request body must be JSON feedback", err)
		return
	}
	if apiErr := validateRequest(&fb); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	if err := h.db.SavePublicFeedback(r.Context(), &fb); err != nil {
		respondError(w, http.StatusInternalServerError, "DB_ERROR", "failed to save feedback", err)
		return
	}

	metrics.FeedbackSavedTotal.WithLabelValues("public", fb.Verdict).Inc()
	h.publish(events.TopicFeedbackSaved, events.FeedbackSaved{
		Artist:    fb.Artist,
		Album:     fb.Album,
		Verdict:   fb.Verdict,
		Kind:      "public",
		Username:  fb.Username,
		Timestamp: fb.Timestamp,
	})

	respondData(w, http.StatusCreated, &fb, started)
}

// PublicFeedbackSummary aggregates verdict counts plus recent entries for
// an album's feedback widget.
type PublicFeedbackSummary struct {
	Stats  *models.FeedbackStats   `json:"stats"`
	Recent []models.PublicFeedback `json:"recent"`
}

// GetPublicFeedback returns the stats and recent entries for one album.
func (h *Handler) GetPublicFeedback(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	artist, album := r.URL.Query().Get("artist"), r.URL.Query().Get("album")
	if artist == "" || album == "" {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "artist and album query parameters are required", nil)
		return
	}

	stats, err := h.db.GetPublicFeedbackStats(r.Context(), artist, album)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DB_ERROR", "failed to load feedback stats", err)
		return
	}

	recent, err := h.db.GetRecentPublicFeedback(r.Context(), artist, album, getIntParam(r, "limit", 3))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DB_ERROR", "failed to load recent feedback", err)
		return
	}

	respondData(w, http.StatusOK, &PublicFeedbackSummary{Stats: stats, Recent: recent}, started)
}

// ListPublicReviews returns visitor feedback across all albums for the
// moderation page, filtered by verdict and username substring.
func (h *Handler) ListPublicReviews(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	filter := models.PublicReviewFilter{
		Verdict:  r.URL.Query().Get("verdict"),
		Username: r.URL.Query().Get("username"),
		SortBy:   r.URL.Query().Get("sort_by"),
		Limit:    getIntParam(r, "limit", 0),
	}
	if apiErr := validateRequest(&filter); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	reviews, err := h.db.ListPublicFeedback(r.Context(), filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DB_ERROR", "failed to list public reviews", err)
		return
	}
	respondData(w, http.StatusOK, reviews, started)
}

// DeletePublicFeedback removes one visitor feedback row by ID.
func (h *Handler) DeletePublicFeedback(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	id := chi.URLParam(r, "id")
	err := h.db.DeletePublicFeedback(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "no public feedback with this id", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DB_ERROR", "failed to delete public feedback", err)
		return
	}
	respondData(w, http.StatusOK, map[string]string{"deleted": id}, started)
}

// BulkDeletePublicFeedback removes visitor feedback in one of four modes:
// anonymous-only, username substring, single verdict, or everything.
func (h *Handler) BulkDeletePublicFeedback(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	var req models.BulkDeleteRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_BODY", "request body must be a JSON bulk delete request", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	n, err := h.db.BulkDeletePublicFeedback(r.Context(), req)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DB_ERROR", "failed to bulk delete public feedback", err)
		return
	}
	respondData(w, http.StatusOK, map[string]int64{"deleted": n}, started)
}
