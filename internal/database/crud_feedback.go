// NMF Dashboard - Personalized New Music Friday Predictions
// Copyright 2026 Mike Strusz (MikeStrusz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MikeStrusz/nmf-dashboard

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MikeStrusz/nmf-dashboard/internal/models"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// SaveFeedback upserts the admin's verdict for an album. There is one
// verdict per (artist, album); saving again replaces it.
func (db *DB) SaveFeedback(ctx context.Context, fb *models.Feedback) error {
	if fb.UpdatedAt.IsZero() {
		fb.UpdatedAt = time.Now().UTC()
	}
	_, err := db.exec(ctx, "insert", "feedback",
		`INSERT INTO feedback (artist, album, verdict, review, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (artist, album) DO UPDATE SET
		   verdict = excluded.verdict,
		   review = excluded.review,
		   updated_at = excluded.updated_at`,
		fb.Artist, fb.Album, fb.Verdict, fb.Review, fb.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save feedback: %w", err)
	}
	return nil
}

// GetFeedback returns the admin verdict for an album, or ErrNotFound.
func (db *DB) GetFeedback(ctx context.Context, artist, album string) (*models.Feedback, error) {
	fb := &models.Feedback{}
	var review sql.NullString
	err := db.queryRow(ctx, "select", "feedback",
		`SELECT artist, album, verdict, review, updated_at
		 FROM feedback WHERE artist = ? AND album = ?`, artist, album).
		Scan(&fb.Artist, &fb.Album, &fb.Verdict, &review, &fb.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feedback: %w", err)
	}
	fb.Review = review.String
	return fb, nil
}

// DeleteFeedback removes the admin verdict for an album.
func (db *DB) DeleteFeedback(ctx context.Context, artist, album string) error {
	res, err := db.exec(ctx, "delete", "feedback",
		`DELETE FROM feedback WHERE artist = ? AND album = ?`, artist, album)
	if err != nil {
		return fmt.Errorf("failed to delete feedback: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListFeedback returns admin verdicts matching the filter, for the review
// browser. An empty verdict matches all; sort defaults to newest first.
func (db *DB) ListFeedback(ctx context.Context, filter models.ReviewFilter) ([]models.Feedback, error) {
	order := "updated_at DESC"
	switch filter.SortBy {
	case "oldest":
		order = "updated_at ASC"
	case "album":
		order = "album ASC"
	case "artist":
		order = "artist ASC"
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	rows, err := db.query(ctx, "select", "feedback",
		`SELECT artist, album, verdict, review, updated_at
		 FROM feedback
		 WHERE (? = '' OR verdict = ?)
		 ORDER BY `+order+` LIMIT ?`,
		filter.Verdict, filter.Verdict, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.Feedback
	for rows.Next() {
		var (
			fb     models.Feedback
			review sql.NullString
		)
		if err := rows.Scan(&fb.Artist, &fb.Album, &fb.Verdict, &review, &fb.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		fb.Review = review.String
		out = append(out, fb)
	}
	return out, rows.Err()
}

// SavePublicFeedback appends a visitor vote. An empty username is stored
// as Anonymous; the caller never controls the row ID.
func (db *DB) SavePublicFeedback(ctx context.Context, fb *models.PublicFeedback) error {
	fb.ID = uuid.NewString()
	if fb.Username == "" {
		fb.Username = "Anonymous"
	}
	if fb.Timestamp.IsZero() {
		fb.Timestamp = time.Now().UTC()
	}
	_, err := db.exec(ctx, "insert", "public_feedback",
		`INSERT INTO public_feedback (id, artist, album, verdict, username, review, ts)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		fb.ID, fb.Artist, fb.Album, fb.Verdict, fb.Username, fb.Review, fb.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to save public feedback: %w", err)
	}
	return nil
}

// GetPublicFeedbackStats aggregates visitor votes for one album.
func (db *DB) GetPublicFeedbackStats(ctx context.Context, artist, album string) (*models.FeedbackStats, error) {
	stats := &models.FeedbackStats{Artist: artist, Album: album}
	err := db.queryRow(ctx, "select", "public_feedback",
		`SELECT
		   COUNT(*) FILTER (WHERE verdict = 'like'),
		   COUNT(*) FILTER (WHERE verdict = 'mid'),
		   COUNT(*) FILTER (WHERE verdict = 'dislike'),
		   COUNT(*)
		 FROM public_feedback WHERE artist = ? AND album = ?`, artist, album).
		Scan(&stats.Likes, &stats.Mids, &stats.Dislikes, &stats.Total)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate public feedback: %w", err)
	}
	return stats, nil
}

// ListPublicFeedback returns visitor feedback across all albums for the
// moderation view. Empty filter fields match everything; sort defaults to
// newest first.
func (db *DB) ListPublicFeedback(ctx context.Context, filter models.PublicReviewFilter) ([]models.PublicFeedback, error) {
	order := "ts DESC"
	switch filter.SortBy {
	case "oldest":
		order = "ts ASC"
	case "username":
		order = "username ASC, ts DESC"
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	rows, err := db.query(ctx, "select", "public_feedback",
		`SELECT id, artist, album, verdict, username, review, ts
		 FROM public_feedback
		 WHERE (? = '' OR verdict = ?)
		   AND (? = '' OR username ILIKE '%' || ? || '%')
		 ORDER BY `+order+` LIMIT ?`,
		filter.Verdict, filter.Verdict, filter.Username, filter.Username, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list public feedback: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.PublicFeedback
	for rows.Next() {
		var (
			fb     models.PublicFeedback
			review sql.NullString
		)
		if err := rows.Scan(&fb.ID, &fb.Artist, &fb.Album, &fb.Verdict, &fb.Username, &review, &fb.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan public feedback: %w", err)
		}
		fb.Review = review.String
		out = append(out, fb)
	}
	return out, rows.Err()
}

// DeletePublicFeedback removes one visitor feedback row by ID.
func (db *DB) DeletePublicFeedback(ctx context.Context, id string) error {
	res, err := db.exec(ctx, "delete", "public_feedback",
		`DELETE FROM public_feedback WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete public feedback: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// BulkDeletePublicFeedback removes visitor feedback matching the request
// mode and returns the number of rows deleted.
func (db *DB) BulkDeletePublicFeedback(ctx context.Context, req models.BulkDeleteRequest) (int64, error) {
	var (
		res sql.Result
		err error
	)
	switch req.Mode {
	case models.BulkDeleteAnonymous:
		res, err = db.exec(ctx, "delete", "public_feedback",
			`DELETE FROM public_feedback WHERE username = 'Anonymous'`)
	case models.BulkDeleteUsername:
		res, err = db.exec(ctx, "delete", "public_feedback",
			`DELETE FROM public_feedback WHERE username ILIKE '%' || ? || '%'`, req.Username)
	case models.BulkDeleteVerdict:
		res, err = db.exec(ctx, "delete", "public_feedback",
			`DELETE FROM public_feedback WHERE verdict = ?`, req.Verdict)
	case models.BulkDeleteAll:
		res, err = db.exec(ctx, "delete", "public_feedback", `DELETE FROM public_feedback`)
	default:
		return 0, fmt.Errorf("unknown bulk delete mode %q", req.Mode)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to bulk delete public feedback: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted rows: %w", err)
	}
	return n, nil
}

// GetRecentPublicFeedback returns an album's newest visitor reviews.
func (db *DB) GetRecentPublicFeedback(ctx context.Context, artist, album string, limit int) ([]models.PublicFeedback, error) {
	if limit <= 0 {
		limit = 3
	}
	rows, err := db.query(ctx, "select", "public_feedback",
		`SELECT id, artist, album, verdict, username, review, ts
		 FROM public_feedback
		 WHERE artist = ? AND album = ?
		 ORDER BY ts DESC LIMIT ?`, artist, album, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query public feedback: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.PublicFeedback
	for rows.Next() {
		var (
			fb     models.PublicFeedback
			review sql.NullString
		)
		if err := rows.Scan(&fb.ID, &fb.Artist, &fb.Album, &fb.Verdict, &fb.Username, &review, &fb.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan public feedback: %w", err)
		}
		fb.Review = review.String
		out = append(out, fb)
	}
	return out, rows.Err()
}
