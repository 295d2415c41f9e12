// NMF Dashboard - Personalized New Music Friday Predictions
// Copyright 2026 Mike Strusz (MikeStrusz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MikeStrusz/nmf-dashboard

// Package api provides HTTP routing and handlers for the dashboard.
package api

import "errors"

// Common API errors
var (
	// ErrNoPath indicates the queried artist has no rendered figure
	// because no path to the reference artist exists.
	ErrNoPath = errors.New("no path to reference artist")

	// ErrAuthDisabled indicates a login attempt while auth_mode is none.
	ErrAuthDisabled = errors.New("authentication is disabled")
)
