// NMF Dashboard - Personalized New Music Friday Predictions
// Copyright 2026 Mike Strusz (MikeStrusz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MikeStrusz/nmf-dashboard

package database

import (
	"context"
	"fmt"
	"strings"
)

// CSV ingest uses DuckDB's read_csv directly instead of row-by-row inserts.
// The pipeline's column headers carry spaces ("Album Name", "Artist Name(s)"),
// so each loader maps them to the schema's snake_case columns explicitly.

// quotePath escapes a filesystem path for inlining as a SQL string literal.
// read_csv takes the path as a literal, not a bind parameter.
func quotePath(path string) string {
	return "'" + strings.ReplaceAll(path, "'", "''") + "'"
}

// ImportArtistRatingsCSV replaces the artist_ratings table with the rows of
// the listening-history export (df_cleaned_pre_standardized.csv).
func (db *DB) ImportArtistRatingsCSV(ctx context.Context, path string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM artist_ratings`); err != nil {
		return fmt.Errorf("failed to clear artist_ratings: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO artist_ratings (artist, playlist_origin)
		 SELECT "Artist Name(s)", COALESCE(playlist_origin, 'unknown')
		 FROM read_csv(`+quotePath(path)+`, header = true, all_varchar = true)
		 WHERE "Artist Name(s)" IS NOT NULL`)
	if err != nil {
		return fmt.Errorf("failed to import artist ratings from %s: %w", path, err)
	}
	return tx.Commit()
}

// ImportSimilarArtistsCSV replaces one source's rows in similar_artists.
// Source "liked" comes from liked_artists_only_similar.csv and feeds graph
// edges; source "nmf" comes from nmf_similar_artists.csv and feeds the
// per-album similar list.
func (db *DB) ImportSimilarArtistsCSV(ctx context.Context, path, source string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM similar_artists WHERE source = ?`, source); err != nil {
		return fmt.Errorf("failed to clear similar_artists source %s: %w", source, err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO similar_artists (artist, similar_artists, source)
		 SELECT "Artist", "Similar Artists", ?
		 FROM read_csv(`+quotePath(path)+`, header = true, all_varchar = true)
		 WHERE "Artist" IS NOT NULL AND "Similar Artists" IS NOT NULL`, source)
	if err != nil {
		return fmt.Errorf("failed to import similar artists from %s: %w", path, err)
	}
	return tx.Commit()
}

// ImportAlbumCoversCSV merges nmf_album_covers.csv into album_covers.
// Existing Fixer corrections win over re-imported pipeline rows.
func (db *DB) ImportAlbumCoversCSV(ctx context.Context, path string) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO album_covers (artist, album, cover_url)
		 SELECT "Artist", "Album Name", "Album Art"
		 FROM read_csv(`+quotePath(path)+`, header = true, all_varchar = true)
		 WHERE "Artist" IS NOT NULL AND "Album Name" IS NOT NULL AND "Album Art" IS NOT NULL
		 ON CONFLICT (artist, album) DO NOTHING`)
	if err != nil {
		return fmt.Errorf("failed to import album covers from %s: %w", path, err)
	}
	return nil
}

// ImportAlbumLinksCSV merges nmf_album_links.csv into album_links.
func (db *DB) ImportAlbumLinksCSV(ctx context.Context, path string) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO album_links (artist, album, spotify_url)
		 SELECT "Artist Name(s)", "Album Name", "Spotify URL"
		 FROM read_csv(`+quotePath(path)+`, header = true, all_varchar = true)
		 WHERE "Artist Name(s)" IS NOT NULL AND "Album Name" IS NOT NULL AND "Spotify URL" IS NOT NULL
		 ON CONFLICT (artist, album) DO NOTHING`)
	if err != nil {
		return fmt.Errorf("failed to import album links from %s: %w", path, err)
	}
	return nil
}

// ImportNukedAlbumsCSV merges a legacy nuked_albums.csv into nuked_albums.
func (db *DB) ImportNukedAlbumsCSV(ctx context.Context, path string) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO nuked_albums (artist, album, reason, nuked_at)
		 SELECT "Artist", "Album Name", "Reason", CURRENT_TIMESTAMP
		 FROM read_csv(`+quotePath(path)+`, header = true, all_varchar = true)
		 WHERE "Artist" IS NOT NULL AND "Album Name" IS NOT NULL
		 ON CONFLICT (artist, album) DO NOTHING`)
	if err != nil {
		return fmt.Errorf("failed to import nuked albums from %s: %w", path, err)
	}
	return nil
}
