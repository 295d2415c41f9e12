// NMF Dashboard - Personalized New Music Friday Predictions
// Copyright 2026 Mike Strusz (MikeStrusz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MikeStrusz/nmf-dashboard

package validation

import (
	"strings"
	"testing"

	"github.com/MikeStrusz/nmf-dashboard/internal/models"
)

func TestValidateFeedbackVerdict(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		verdict string
		wantErr bool
	}{
		{"like", "like", false},
		{"mid", "mid", false},
		{"dislike", "dislike", false},
		{"empty", "", true},
		{"unknown", "love", true},
		{"case sensitive", "Like", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			fb := models.Feedback{
				Artist:  "Lucy Dacus",
				Album:   "Forever Is A Feeling",
				Verdict: tt.verdict,
			}
			err := ValidateStruct(&fb)
			if tt.wantErr && err == nil {
				t.Errorf("verdict %q passed validation", tt.verdict)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("verdict %q failed validation: %v", tt.verdict, err)
			}
		})
	}
}

func TestValidateRequiredFields(t *testing.T) {
	t.Parallel()

	fb := models.Feedback{Verdict: "like"}
	err := ValidateStruct(&fb)
	if err == nil {
		t.Fatal("expected validation failure for missing artist/album")
	}
	if len(err.Errors()) != 2 {
		t.Errorf("got %d errors, want 2: %v", len(err.Errors()), err)
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Code = %q", apiErr.Code)
	}
	if !strings.Contains(apiErr.Message, "required") {
		t.Errorf("Message = %q, want mention of required", apiErr.Message)
	}
}

func TestValidateCoverURL(t *testing.T) {
	t.Parallel()

	cover := models.AlbumCover{Artist: "Lucy Dacus", Album: "Forever Is A Feeling", CoverURL: "not a url"}
	if err := ValidateStruct(&cover); err == nil {
		t.Error("invalid URL passed validation")
	}

	cover.CoverURL = "https://img.example/fiaf.jpg"
	if err := ValidateStruct(&cover); err != nil {
		t.Errorf("valid cover failed validation: %v", err)
	}
}

func TestValidateReviewFilter(t *testing.T) {
	t.Parallel()

	if err := ValidateStruct(&models.ReviewFilter{}); err != nil {
		t.Errorf("empty filter failed validation: %v", err)
	}
	if err := ValidateStruct(&models.ReviewFilter{SortBy: "rating"}); err == nil {
		t.Error("unknown sort passed validation")
	}
	if err := ValidateStruct(&models.ReviewFilter{Verdict: "like", SortBy: "album", Limit: 50}); err != nil {
		t.Errorf("valid filter failed validation: %v", err)
	}
}
