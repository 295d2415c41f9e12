// NMF Dashboard - Personalized New Music Friday Predictions
// Copyright 2026 Mike Strusz (MikeStrusz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MikeStrusz/nmf-dashboard

package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/MikeStrusz/nmf-dashboard/internal/models"
)

// UpsertAlbumCover sets or replaces an album's artwork URL.
func (db *DB) UpsertAlbumCover(ctx context.Context, cover *models.AlbumCover) error {
	_, err := db.exec(ctx, "insert", "album_covers",
		`INSERT INTO album_covers (artist, album, cover_url)
		 VALUES (?, ?, ?)
		 ON CONFLICT (artist, album) DO UPDATE SET cover_url = excluded.cover_url`,
		cover.Artist, cover.Album, cover.CoverURL)
	if err != nil {
		return fmt.Errorf("failed to upsert album cover: %w", err)
	}
	return nil
}

// UpsertAlbumLink sets or replaces an album's Spotify URL.
func (db *DB) UpsertAlbumLink(ctx context.Context, link *models.AlbumLink) error {
	_, err := db.exec(ctx, "insert", "album_links",
		`INSERT INTO album_links (artist, album, spotify_url)
		 VALUES (?, ?, ?)
		 ON CONFLICT (artist, album) DO UPDATE SET spotify_url = excluded.spotify_url`,
		link.Artist, link.Album, link.SpotifyURL)
	if err != nil {
		return fmt.Errorf("failed to upsert album link: %w", err)
	}
	return nil
}

// NukeAlbum hides an album from the dashboard. Nuking twice updates the
// reason rather than failing.
func (db *DB) NukeAlbum(ctx context.Context, nuke *models.NukedAlbum) error {
	if nuke.NukedAt.IsZero() {
		nuke.NukedAt = time.Now().UTC()
	}
	_, err := db.exec(ctx, "insert", "nuked_albums",
		`INSERT INTO nuked_albums (artist, album, reason, nuked_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (artist, album) DO UPDATE SET
		   reason = excluded.reason,
		   nuked_at = excluded.nuked_at`,
		nuke.Artist, nuke.Album, nuke.Reason, nuke.NukedAt)
	if err != nil {
		return fmt.Errorf("failed to nuke album: %w", err)
	}
	return nil
}

// RestoreAlbum undoes a nuke. Returns ErrNotFound when the album was not
// nuked.
func (db *DB) RestoreAlbum(ctx context.Context, artist, album string) error {
	res, err := db.exec(ctx, "delete", "nuked_albums",
		`DELETE FROM nuked_albums WHERE artist = ? AND album = ?`, artist, album)
	if err != nil {
		return fmt.Errorf("failed to restore album: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListNukedAlbums returns all hidden albums, newest first.
func (db *DB) ListNukedAlbums(ctx context.Context) ([]models.NukedAlbum, error) {
	rows, err := db.query(ctx, "select", "nuked_albums",
		`SELECT artist, album, reason, nuked_at FROM nuked_albums ORDER BY nuked_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list nuked albums: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.NukedAlbum
	for rows.Next() {
		var (
			n      models.NukedAlbum
			reason sql.NullString
		)
		if err := rows.Scan(&n.Artist, &n.Album, &reason, &n.NukedAt); err != nil {
			return nil, fmt.Errorf("failed to scan nuked album: %w", err)
		}
		n.Reason = reason.String
		out = append(out, n)
	}
	return out, rows.Err()
}

// ListNukeCandidates returns albums in the latest week whose titles match
// one of the reissue keywords and are not already nuked.
func (db *DB) ListNukeCandidates(ctx context.Context, weekOf time.Time) ([]models.Prediction, error) {
	conds := make([]string, 0, len(models.NukeKeywords))
	args := []interface{}{weekOf}
	for _, kw := range models.NukeKeywords {
		conds = append(conds, "p.album ILIKE '%' || ? || '%'")
		args = append(args, kw)
	}

	query := `SELECT p.artist, p.album, p.avg_score, p.week_of
		 FROM predictions p
		 WHERE p.week_of = ?
		   AND (` + strings.Join(conds, " OR ") + `)
		   AND NOT EXISTS (
		     SELECT 1 FROM nuked_albums n
		     WHERE n.artist = p.artist AND n.album = p.album
		   )
		 ORDER BY p.artist, p.album`

	rows, err := db.query(ctx, "select", "predictions", query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list nuke candidates: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.Prediction
	for rows.Next() {
		var p models.Prediction
		if err := rows.Scan(&p.Artist, &p.Album, &p.AvgScore, &p.WeekOf); err != nil {
			return nil, fmt.Errorf("failed to scan nuke candidate: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
