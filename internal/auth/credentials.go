// NMF Dashboard - Personalized New Music Friday Predictions
// Copyright 2026 Mike Strusz (MikeStrusz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MikeStrusz/nmf-dashboard

package auth

import (
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// AdminCredentials verifies the single admin account configured at startup.
// The password is bcrypt-hashed once at initialization so login requests
// only pay the comparison cost.
type AdminCredentials struct {
	username     string
	passwordHash []byte
}

// NewAdminCredentials hashes the configured admin password for later
// verification. Config validation already enforces the password length
// minimum, the checks here keep the type safe to construct directly.
func NewAdminCredentials(username, password string) (*AdminCredentials, error) {
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters")
	}

	// Cost factor 12 balances login latency against brute-force resistance
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	return &AdminCredentials{
		username:     username,
		passwordHash: hash,
	}, nil
}

// Verify reports whether the supplied credentials match the admin account.
// Username comparison is constant-time and the bcrypt comparison runs even
// on a username mismatch so both paths take similar time.
func (c *AdminCredentials) Verify(username, password string) bool {
	usernameMatch := subtle.ConstantTimeCompare([]byte(c.username), []byte(username)) == 1
	passwordErr := bcrypt.CompareHashAndPassword(c.passwordHash, []byte(password))
	return usernameMatch && passwordErr == nil
}
