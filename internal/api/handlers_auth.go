// NMF Dashboard - Personalized New Music Friday Predictions
// Copyright 2026 Mike Strusz (MikeStrusz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MikeStrusz/nmf-dashboard

package api

import (
	"net/http"
	"time"

	"github.com/MikeStrusz/nmf-dashboard/internal/auth"
)

// LoginRequest is the login endpoint body.
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=128"`
	Password string `json:"password" validate:"required,max=512"`
}

// LoginResponse carries the issued token. The same token is also set as
// an HTTP-only cookie for browser clients.
type LoginResponse struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Login verifies admin credentials and issues a JWT.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	if h.jwt == nil || h.creds == nil {
		respondError(w, http.StatusNotFound, "AUTH_DISABLED", "authentication is disabled", ErrAuthDisabled)
		return
	}

	var req LoginRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_BODY", "request body must be JSON with username and password", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	if !h.creds.Verify(req.Username, req.Password) {
		// Same message for unknown user and wrong password
		respondError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid username or password", nil)
		return
	}

	token, err := h.jwt.GenerateToken(req.Username, auth.RoleAdmin)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "TOKEN_ERROR", "failed to issue token", err)
		return
	}

	expiresAt := time.Now().Add(h.cfg.Security.SessionTimeout)
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   !h.cfg.IsDevelopment(),
	})

	respondData(w, http.StatusOK, &LoginResponse{
		Token:     token,
		Username:  req.Username,
		Role:      auth.RoleAdmin,
		ExpiresAt: expiresAt,
	}, started)
}

// Logout clears the token cookie. Tokens themselves stay valid until
// expiry, the cookie removal just ends the browser session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	respondData(w, http.StatusOK, map[string]string{"status": "logged_out"}, time.Now())
}
