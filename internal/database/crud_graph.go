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
	"strings"

	"github.com/MikeStrusz/nmf-dashboard/internal/models"
)

// LoadArtistRatings returns the listening-history rows used to seed graph
// categories.
func (db *DB) LoadArtistRatings(ctx context.Context) ([]models.ArtistRating, error) {
	rows, err := db.query(ctx, "select", "artist_ratings",
		`SELECT artist, playlist_origin FROM artist_ratings`)
	if err != nil {
		return nil, fmt.Errorf("failed to load artist ratings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.ArtistRating
	for rows.Next() {
		var r models.ArtistRating
		if err := rows.Scan(&r.Artist, &r.PlaylistOrigin); err != nil {
			return nil, fmt.Errorf("failed to scan artist rating: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// LoadSimilarArtists returns the similarity rows for the given source
// table ("liked" for graph edges, "nmf" for the per-album similar list).
// The stored comma-separated field is split into trimmed names here so the
// graph builder receives clean input.
func (db *DB) LoadSimilarArtists(ctx context.Context, source string) ([]models.SimilarArtists, error) {
	rows, err := db.query(ctx, "select", "similar_artists",
		`SELECT artist, similar_artists FROM similar_artists WHERE source = ?`, source)
	if err != nil {
		return nil, fmt.Errorf("failed to load similar artists: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.SimilarArtists
	for rows.Next() {
		var (
			s   models.SimilarArtists
			raw string
		)
		if err := rows.Scan(&s.Artist, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan similar artists: %w", err)
		}
		for _, name := range strings.Split(raw, ",") {
			if name = strings.TrimSpace(name); name != "" {
				s.Similar = append(s.Similar, name)
			}
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetSimilarForArtist returns the similar-artist names recorded for one
// artist in the nmf source table, for the prediction card display.
func (db *DB) GetSimilarForArtist(ctx context.Context, artist string) ([]string, error) {
	var raw string
	err := db.queryRow(ctx, "select", "similar_artists",
		`SELECT similar_artists FROM similar_artists WHERE source = 'nmf' AND artist = ? LIMIT 1`,
		artist).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query similar artists: %w", err)
	}
	var names []string
	for _, name := range strings.Split(raw, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}
