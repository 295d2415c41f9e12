// NMF Dashboard - Personalized New Music Friday Predictions
// Copyright 2026 Mike Strusz (MikeStrusz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MikeStrusz/nmf-dashboard

package models

import (
	"time"
)

// Feedback verdicts. Anything else is rejected at validation.
const (
	FeedbackLike    = "like"
	FeedbackMid     = "mid"
	FeedbackDislike = "dislike"
)

// Feedback is the admin's single verdict on an album. One row per
// (Artist, Album) pair; saving again replaces the previous verdict.
type Feedback struct {
	Artist    string    `json:"artist" validate:"required,max=512"`
	Album     string    `json:"album" validate:"required,max=512"`
	Verdict   string    `json:"verdict" validate:"required,feedback_verdict"`
	Review    string    `json:"review,omitempty" validate:"max=4096"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PublicFeedback is one visitor vote on an album. Visitors are not
// authenticated; an empty username is stored as "Anonymous". Multiple
// rows per album are expected.
type PublicFeedback struct {
	ID        string    `json:"id"`
	Artist    string    `json:"artist" validate:"required,max=512"`
	Album     string    `json:"album" validate:"required,max=512"`
	Verdict   string    `json:"verdict" validate:"required,feedback_verdict"`
	Username  string    `json:"username,omitempty" validate:"max=128"`
	Review    string    `json:"review,omitempty" validate:"max=4096"`
	Timestamp time.Time `json:"timestamp"`
}

// FeedbackStats aggregates public votes for one album.
type FeedbackStats struct {
	Artist   string `json:"artist"`
	Album    string `json:"album"`
	Likes    int    `json:"likes"`
	Mids     int    `json:"mids"`
	Dislikes int    `json:"dislikes"`
	Total    int    `json:"total"`
}

// ReviewFilter selects and orders reviews on the admin review browser.
type ReviewFilter struct {
	Verdict string `json:"verdict,omitempty" validate:"omitempty,feedback_verdict"`
	// SortBy is newest, oldest, album or artist.
	SortBy string `json:"sort_by,omitempty" validate:"omitempty,oneof=newest oldest album artist"`
	Limit  int    `json:"limit,omitempty" validate:"omitempty,min=1,max=500"`
}

// PublicReviewFilter selects visitor feedback rows for the moderation view.
// Username matches as a case-insensitive substring.
type PublicReviewFilter struct {
	Verdict  string `json:"verdict,omitempty" validate:"omitempty,feedback_verdict"`
	Username string `json:"username,omitempty" validate:"max=128"`
	SortBy   string `json:"sort_by,omitempty" validate:"omitempty,oneof=newest oldest username"`
	Limit    int    `json:"limit,omitempty" validate:"omitempty,min=1,max=500"`
}

// Bulk delete modes for public feedback moderation.
const (
	BulkDeleteAnonymous = "anonymous"
	BulkDeleteUsername  = "username"
	BulkDeleteVerdict   = "verdict"
	BulkDeleteAll       = "all"
)

// BulkDeleteRequest removes visitor feedback by mode: anonymous rows only,
// rows whose username matches a substring, rows with one verdict, or
// everything.
type BulkDeleteRequest struct {
	Mode     string `json:"mode" validate:"required,oneof=anonymous username verdict all"`
	Username string `json:"username,omitempty" validate:"required_if=Mode username,max=128"`
	Verdict  string `json:"verdict,omitempty" validate:"required_if=Mode verdict,omitempty,feedback_verdict"`
}
