// NMF Dashboard - Personalized New Music Friday Predictions
// Copyright 2026 Mike Strusz (MikeStrusz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MikeStrusz/nmf-dashboard

// Package models defines data structures shared across the NMF dashboard:
// weekly predictions, listener feedback, album metadata and API responses.
package models

import (
	"time"
)

// Prediction is one scored album row from a weekly recommendations file.
//
// Rows come from the offline ML pipeline as
// MM-DD-YY_Album_Recommendations.csv. Duplicate (Artist, Album) pairs
// within a week are dropped on import, first occurrence wins.
type Prediction struct {
	Artist   string    `json:"artist"`
	Album    string    `json:"album"`
	Genres   string    `json:"genres,omitempty"`
	AvgScore float64   `json:"avg_score"`
	WeekOf   time.Time `json:"week_of"`

	// CoverURL and SpotifyURL are joined from the album_covers and
	// album_links tables; empty when no match exists.
	CoverURL   string `json:"cover_url,omitempty"`
	SpotifyURL string `json:"spotify_url,omitempty"`
}

// PredictionWeek summarizes one archived weekly predictions file.
type PredictionWeek struct {
	WeekOf     time.Time `json:"week_of"`
	Filename   string    `json:"filename"`
	AlbumCount int       `json:"album_count"`
}

// ArtistRating is a listening-history row used to seed graph categories.
// PlaylistOrigin is one of df_liked, df_fav_albums, df_nmf or df_not_liked.
type ArtistRating struct {
	Artist         string `json:"artist"`
	PlaylistOrigin string `json:"playlist_origin"`
}

// SimilarArtists maps one artist to its pipeline-provided similar artists.
// Names arrive as a single comma-separated CSV field and are split on import.
type SimilarArtists struct {
	Artist  string   `json:"artist"`
	Similar []string `json:"similar"`
}
