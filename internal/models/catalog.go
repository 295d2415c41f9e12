// NMF Dashboard - Personalized New Music Friday Predictions
// Copyright 2026 Mike Strusz (MikeStrusz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MikeStrusz/nmf-dashboard

package models

import (
	"time"
)

// AlbumCover maps an album to its artwork URL. Maintained through the
// Album Fixer; rows imported from nmf_album_covers.csv.
type AlbumCover struct {
	Artist   string `json:"artist" validate:"required,max=512"`
	Album    string `json:"album" validate:"required,max=512"`
	CoverURL string `json:"cover_url" validate:"required,url,max=2048"`
}

// AlbumLink maps an album to its Spotify URL. Rows imported from
// nmf_album_links.csv.
type AlbumLink struct {
	Artist     string `json:"artist" validate:"required,max=512"`
	Album      string `json:"album" validate:"required,max=512"`
	SpotifyURL string `json:"spotify_url" validate:"required,url,max=2048"`
}

// NukedAlbum is an album the admin removed from the dashboard, typically
// a Live, Deluxe, Reissue or Anniversary edition the pipeline let through.
type NukedAlbum struct {
	Artist  string    `json:"artist" validate:"required,max=512"`
	Album   string    `json:"album" validate:"required,max=512"`
	Reason  string    `json:"reason,omitempty" validate:"max=512"`
	NukedAt time.Time `json:"nuked_at"`
}

// NukeKeywords flag album titles that are usually reissues rather than
// new releases. The Album Fixer surfaces matching titles as nuke candidates.
var NukeKeywords = []string{"Live", "Deluxe", "Reissue", "Anniversary"}
