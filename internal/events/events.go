// NMF Dashboard - Personalized New Music Friday Predictions
// Copyright 2026 Mike Strusz (MikeStrusz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MikeStrusz/nmf-dashboard

// Package events is the in-process event bus. Handlers publish domain
// events after successful writes; subscribers fan them out to WebSocket
// clients and metrics. The bus is a Watermill GoChannel pub/sub, so no
// broker runs alongside the dashboard.
package events

import (
	"time"

	"github.com/goccy/go-json"
)

// Topics carried on the bus.
const (
	TopicFeedbackSaved       = "feedback.saved"
	TopicAlbumNuked          = "album.nuked"
	TopicAlbumRestored       = "album.restored"
	TopicCoverUpdated        = "cover.updated"
	TopicPredictionsImported = "predictions.imported"
)

// FeedbackSaved is published after an admin or visitor verdict is stored.
type FeedbackSaved struct {
	Artist    string    `json:"artist"`
	Album     string    `json:"album"`
	Verdict   string    `json:"verdict"`
	Kind      string    `json:"kind"` // admin or public
	Username  string    `json:"username,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// AlbumNuked is published when the admin hides an album, and reused for
// restores on TopicAlbumRestored with Restored set.
type AlbumNuked struct {
	Artist   string    `json:"artist"`
	Album    string    `json:"album"`
	Reason   string    `json:"reason,omitempty"`
	Restored bool      `json:"restored,omitempty"`
	At       time.Time `json:"at"`
}

// CoverUpdated is published when the Album Fixer changes artwork or links.
type CoverUpdated struct {
	Artist string    `json:"artist"`
	Album  string    `json:"album"`
	Field  string    `json:"field"` // cover_url or spotify_url
	URL    string    `json:"url"`
	At     time.Time `json:"at"`
}

// PredictionsImported is published after a weekly archive import.
type PredictionsImported struct {
	WeekOf     time.Time `json:"week_of"`
	AlbumCount int       `json:"album_count"`
	At         time.Time `json:"at"`
}

// Envelope is the wire format delivered to WebSocket clients: the topic
// plus the topic-specific payload.
type Envelope struct {
	Topic   string          `json:"topic"`
	Payload json.RawMessage `json:"payload"`
}
