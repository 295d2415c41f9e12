// NMF Dashboard - Personalized New Music Friday Predictions
// Copyright 2026 Mike Strusz (MikeStrusz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MikeStrusz/nmf-dashboard

package graph

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/MikeStrusz/nmf-dashboard/internal/models"
)

// Fingerprint hashes the graph's input tables so callers can memoize
// built graphs by content. Identical inputs always hash identically;
// any row change produces a new key.
func Fingerprint(ratings []models.ArtistRating, similar []models.SimilarArtists, includeUnconnected bool) string {
	h := sha256.New()

	for _, r := range ratings {
		h.Write([]byte("r\x00"))
		h.Write([]byte(r.Artist))
		h.Write([]byte{0})
		h.Write([]byte(r.PlaylistOrigin))
		h.Write([]byte{0})
	}
	for _, s := range similar {
		h.Write([]byte("s\x00"))
		h.Write([]byte(s.Artist))
		h.Write([]byte{0})
		h.Write([]byte(strings.Join(s.Similar, "\x00")))
		h.Write([]byte{0})
	}
	if includeUnconnected {
		h.Write([]byte{1})
	} else {
		h.Write([]byte{0})
	}

	return hex.EncodeToString(h.Sum(nil))
}
