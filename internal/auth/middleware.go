// NMF Dashboard - Personalized New Music Friday Predictions
// Copyright 2026 Mike Strusz (MikeStrusz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MikeStrusz/nmf-dashboard

package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/MikeStrusz/nmf-dashboard/internal/logging"
)

type contextKey string

// ClaimsContextKey carries the authenticated *Claims through the request
// context. Anonymous requests carry claims with RoleAnonymous.
const ClaimsContextKey contextKey = "claims"

// Middleware authenticates requests and enforces per-object authorization.
type Middleware struct {
	jwtManager *JWTManager
	enforcer   *Enforcer
	authMode   string
}

// NewMiddleware wires authentication and authorization. authMode "none"
// disables authentication entirely: every request runs as admin, which is
// the single-user localhost deployment mode.
func NewMiddleware(jwtManager *JWTManager, enforcer *Enforcer, authMode string) *Middleware {
	return &Middleware{
		jwtManager: jwtManager,
		enforcer:   enforcer,
		authMode:   authMode,
	}
}

// Authenticate resolves the request's identity and stores Claims in the
// context. Requests without a valid token proceed as anonymous rather than
// being rejected, because the public dashboard is readable without login.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := m.resolveClaims(r)
		ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *Middleware) resolveClaims(r *http.Request) *Claims {
	if m.authMode == "none" {
		return &Claims{Username: "local", Role: RoleAdmin}
	}

	token, err := extractJWTToken(r)
	if err != nil {
		return &Claims{Role: RoleAnonymous}
	}

	claims, err := m.jwtManager.ValidateToken(token)
	if err != nil {
		logging.Debug().Err(err).Msg("rejected bearer token, continuing as anonymous")
		return &Claims{Role: RoleAnonymous}
	}
	return claims
}

// extractJWTToken pulls the JWT from the Authorization header or, failing
// that, the token cookie set at login.
func extractJWTToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		cookie, err := r.Cookie("token")
		if err != nil {
			return "", err
		}
		return cookie.Value, nil
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", http.ErrNoCookie
	}
	return parts[1], nil
}

// Authorize gates a route on the policy for (object, action). It must run
// after Authenticate so the context carries claims.
func (m *Middleware) Authorize(object, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := ClaimsFromContext(r.Context())

			allowed, err := m.enforcer.Enforce(claims.Role, object, action)
			if err != nil {
				logging.Error().Err(err).Str("object", object).Str("action", action).Msg("authorization check failed")
				writeAuthError(w, http.StatusInternalServerError, "AUTHZ_ERROR", "authorization check failed")
				return
			}
			if !allowed {
				status, code := http.StatusForbidden, "FORBIDDEN"
				if claims.Role == RoleAnonymous {
					// Anonymous callers get 401 so clients know to log in
					status, code = http.StatusUnauthorized, "UNAUTHORIZED"
				}
				writeAuthError(w, status, code, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClaimsFromContext returns the request claims, defaulting to anonymous
// when the middleware did not run (direct handler tests).
func ClaimsFromContext(ctx context.Context) *Claims {
	if claims, ok := ctx.Value(ClaimsContextKey).(*Claims); ok {
		return claims
	}
	return &Claims{Role: RoleAnonymous}
}

func writeAuthError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status": "error",
		"error":  map[string]string{"code": code, "message": message},
	})
}
