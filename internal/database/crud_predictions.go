// NMF Dashboard - Personalized New Music Friday Predictions
// Copyright 2026 Mike Strusz (MikeStrusz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MikeStrusz/nmf-dashboard

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/MikeStrusz/nmf-dashboard/internal/models"
)

// ReplacePredictionWeek replaces all prediction rows for the given week with
// the provided set. Reimporting the same archive file is therefore
// idempotent. Duplicate (artist, album) pairs within the batch are dropped,
// first occurrence wins, matching the archive dedupe rule.
func (db *DB) ReplacePredictionWeek(ctx context.Context, weekOf time.Time, preds []models.Prediction) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM predictions WHERE week_of = ?`, weekOf); err != nil {
		return fmt.Errorf("failed to clear week %s: %w", weekOf.Format("2006-01-02"), err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO predictions (artist, album, genres, avg_score, week_of)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT DO NOTHING`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, p := range preds {
		if _, err := stmt.ExecContext(ctx, p.Artist, p.Album, p.Genres, p.AvgScore, weekOf); err != nil {
			return fmt.Errorf("failed to insert prediction %s - %s: %w", p.Artist, p.Album, err)
		}
	}

	return tx.Commit()
}

// ListPredictionWeeks returns the archived weeks, newest first.
func (db *DB) ListPredictionWeeks(ctx context.Context) ([]models.PredictionWeek, error) {
	rows, err := db.query(ctx, "select", "predictions",
		`SELECT week_of, COUNT(*) FROM predictions GROUP BY week_of ORDER BY week_of DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list prediction weeks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var weeks []models.PredictionWeek
	for rows.Next() {
		var w models.PredictionWeek
		if err := rows.Scan(&w.WeekOf, &w.AlbumCount); err != nil {
			return nil, fmt.Errorf("failed to scan prediction week: %w", err)
		}
		w.Filename = w.WeekOf.Format("01-02-06") + "_Album_Recommendations.csv"
		weeks = append(weeks, w)
	}
	return weeks, rows.Err()
}

// GetPredictions returns one week's predictions sorted by score descending,
// joined with cover art and Spotify links, with nuked albums filtered out.
// A non-empty genre matches as a case-insensitive substring of the genres
// column.
func (db *DB) GetPredictions(ctx context.Context, weekOf time.Time, genre string) ([]models.Prediction, error) {
	rows, err := db.query(ctx, "select", "predictions",
		`SELECT p.artist, p.album, p.genres, p.avg_score, p.week_of, c.cover_url, l.spotify_url
		 FROM predictions p
		 LEFT JOIN album_covers c ON c.artist = p.artist AND c.album = p.album
		 LEFT JOIN album_links  l ON l.artist = p.artist AND l.album = p.album
		 WHERE p.week_of = ?
		   AND (? = '' OR p.genres ILIKE '%' || ? || '%')
		   AND NOT EXISTS (
		     SELECT 1 FROM nuked_albums n
		     WHERE n.artist = p.artist AND n.album = p.album
		   )
		 ORDER BY p.avg_score DESC, p.artist, p.album`, weekOf, genre, genre)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var preds []models.Prediction
	for rows.Next() {
		var (
			p      models.Prediction
			genres sql.NullString
			cover  sql.NullString
			link   sql.NullString
		)
		if err := rows.Scan(&p.Artist, &p.Album, &genres, &p.AvgScore, &p.WeekOf, &cover, &link); err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		p.Genres = genres.String
		p.CoverURL = cover.String
		p.SpotifyURL = link.String
		preds = append(preds, p)
	}
	return preds, rows.Err()
}

// LatestPredictionWeek returns the most recent archived week. Returns
// sql.ErrNoRows when the archive is empty.
func (db *DB) LatestPredictionWeek(ctx context.Context) (time.Time, error) {
	// MAX over an empty table yields NULL, so scan through NullTime.
	var weekOf sql.NullTime
	err := db.queryRow(ctx, "select", "predictions",
		`SELECT MAX(week_of) FROM predictions`).Scan(&weekOf)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to query latest week: %w", err)
	}
	if !weekOf.Valid {
		return time.Time{}, sql.ErrNoRows
	}
	return weekOf.Time, nil
}

// ListMissingArtwork returns distinct albums across all weeks that have no
// cover art row, for the Album Fixer's artwork queue. The search term
// filters on artist or album, case-insensitive.
func (db *DB) ListMissingArtwork(ctx context.Context, search string, limit int) ([]models.Prediction, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := db.query(ctx, "select", "predictions",
		`SELECT DISTINCT p.artist, p.album
		 FROM predictions p
		 LEFT JOIN album_covers c ON c.artist = p.artist AND c.album = p.album
		 WHERE c.cover_url IS NULL
		   AND (? = '' OR p.artist ILIKE '%' || ? || '%' OR p.album ILIKE '%' || ? || '%')
		 ORDER BY p.artist, p.album
		 LIMIT ?`, search, search, search, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query missing artwork: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var preds []models.Prediction
	for rows.Next() {
		var p models.Prediction
		if err := rows.Scan(&p.Artist, &p.Album); err != nil {
			return nil, fmt.Errorf("failed to scan missing artwork row: %w", err)
		}
		preds = append(preds, p)
	}
	return preds, rows.Err()
}

// ListMissingLinks returns distinct albums across all weeks that have no
// Spotify link row, for the Album Fixer's link queue.
func (db *DB) ListMissingLinks(ctx context.Context, search string, limit int) ([]models.Prediction, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := db.query(ctx, "select", "predictions",
		`SELECT DISTINCT p.artist, p.album
		 FROM predictions p
		 LEFT JOIN album_links l ON l.artist = p.artist AND l.album = p.album
		 WHERE l.spotify_url IS NULL
		   AND (? = '' OR p.artist ILIKE '%' || ? || '%' OR p.album ILIKE '%' || ? || '%')
		 ORDER BY p.artist, p.album
		 LIMIT ?`, search, search, search, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query missing links: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var preds []models.Prediction
	for rows.Next() {
		var p models.Prediction
		if err := rows.Scan(&p.Artist, &p.Album); err != nil {
			return nil, fmt.Errorf("failed to scan missing link row: %w", err)
		}
		preds = append(preds, p)
	}
	return preds, rows.Err()
}
