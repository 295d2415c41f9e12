// NMF Dashboard - Personalized New Music Friday Predictions
// Copyright 2026 Mike Strusz (MikeStrusz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MikeStrusz/nmf-dashboard

package auth

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MikeStrusz/nmf-dashboard/internal/config"
	"github.com/MikeStrusz/nmf-dashboard/internal/logging"
)

//nolint:gochecknoinits // init ensures consistent logging for tests
func init() {
	logging.Init(logging.Config{
		Level:  "info",
		Format: "console",
		Output: io.Discard,
	})
}

func testSecurityConfig() *config.SecurityConfig {
	return &config.SecurityConfig{
		AuthMode:       "jwt",
		JWTSecret:      "0123456789abcdef0123456789abcdef",
		SessionTimeout: time.Hour,
	}
}

func TestJWTRoundTrip(t *testing.T) {
	m, err := NewJWTManager(testSecurityConfig())
	if err != nil {
		t.Fatalf("NewJWTManager: %v", err)
	}

	token, err := m.GenerateToken("mike", RoleAdmin)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.Username != "mike" || claims.Role != RoleAdmin {
		t.Errorf("claims = %+v, want username mike role admin", claims)
	}
}

func TestJWTRejectsTamperedToken(t *testing.T) {
	m, err := NewJWTManager(testSecurityConfig())
	if err != nil {
		t.Fatalf("NewJWTManager: %v", err)
	}

	token, err := m.GenerateToken("mike", RoleAdmin)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if _, err := m.ValidateToken(token + "x"); err == nil {
		t.Error("expected error for tampered token")
	}
}

func TestJWTRejectsExpiredToken(t *testing.T) {
	cfg := testSecurityConfig()
	cfg.SessionTimeout = -time.Minute

	m, err := NewJWTManager(cfg)
	if err != nil {
		t.Fatalf("NewJWTManager: %v", err)
	}

	token, err := m.GenerateToken("mike", RoleAdmin)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if _, err := m.ValidateToken(token); err == nil {
		t.Error("expected error for expired token")
	}
}

func TestJWTRequiresSecret(t *testing.T) {
	if _, err := NewJWTManager(&config.SecurityConfig{}); err == nil {
		t.Error("expected error for empty secret")
	}
}

func TestAdminCredentials(t *testing.T) {
	creds, err := NewAdminCredentials("mike", "correct horse battery")
	if err != nil {
		t.Fatalf("NewAdminCredentials: %v", err)
	}

	tests := []struct {
		name     string
		username string
		password string
		want     bool
	}{
		{"valid", "mike", "correct horse battery", true},
		{"wrong password", "mike", "wrong", false},
		{"wrong username", "eve", "correct horse battery", false},
		{"both wrong", "eve", "wrong", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := creds.Verify(tt.username, tt.password); got != tt.want {
				t.Errorf("Verify(%q, ...) = %v, want %v", tt.username, got, tt.want)
			}
		})
	}
}

func TestAdminCredentialsRejectsShortPassword(t *testing.T) {
	if _, err := NewAdminCredentials("mike", "short"); err == nil {
		t.Error("expected error for password under 8 characters")
	}
}

func TestEnforcerPolicy(t *testing.T) {
	e, err := NewEnforcer()
	if err != nil {
		t.Fatalf("NewEnforcer: %v", err)
	}

	tests := []struct {
		role   string
		object string
		action string
		want   bool
	}{
		{RoleAnonymous, ObjectPredictions, ActionRead, true},
		{RoleAnonymous, ObjectGraph, ActionRead, true},
		{RoleAnonymous, ObjectPublicFeedback, ActionWrite, true},
		{RoleAnonymous, ObjectFeedback, ActionWrite, false},
		{RoleAnonymous, ObjectFixer, ActionWrite, false},
		{RoleAnonymous, ObjectFixer, ActionRead, false},
		{RoleAnonymous, ObjectBackup, ActionWrite, false},
		{RoleAdmin, ObjectPredictions, ActionRead, true}, // inherited from anonymous
		{RoleAdmin, ObjectFeedback, ActionWrite, true},
		{RoleAdmin, ObjectFixer, ActionWrite, true},
		{RoleAdmin, ObjectBackup, ActionWrite, true},
		{"unknown_role", ObjectPredictions, ActionRead, false},
	}

	for _, tt := range tests {
		t.Run(tt.role+"_"+tt.object+"_"+tt.action, func(t *testing.T) {
			got, err := e.Enforce(tt.role, tt.object, tt.action)
			if err != nil {
				t.Fatalf("Enforce: %v", err)
			}
			if got != tt.want {
				t.Errorf("Enforce(%s, %s, %s) = %v, want %v", tt.role, tt.object, tt.action, got, tt.want)
			}
		})
	}
}

func newTestMiddleware(t *testing.T, authMode string) (*Middleware, *JWTManager) {
	t.Helper()

	jwtManager, err := NewJWTManager(testSecurityConfig())
	if err != nil {
		t.Fatalf("NewJWTManager: %v", err)
	}
	enforcer, err := NewEnforcer()
	if err != nil {
		t.Fatalf("NewEnforcer: %v", err)
	}
	return NewMiddleware(jwtManager, enforcer, authMode), jwtManager
}

func claimsProbe(t *testing.T, out **Claims) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*out = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticateBearerToken(t *testing.T) {
	mw, jwtManager := newTestMiddleware(t, "jwt")

	token, err := jwtManager.GenerateToken("mike", RoleAdmin)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	var got *Claims
	handler := mw.Authenticate(claimsProbe(t, &got))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/feedback", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got == nil || got.Role != RoleAdmin || got.Username != "mike" {
		t.Errorf("claims = %+v, want admin mike", got)
	}
}

func TestAuthenticateTokenCookie(t *testing.T) {
	mw, jwtManager := newTestMiddleware(t, "jwt")

	token, err := jwtManager.GenerateToken("mike", RoleAdmin)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	var got *Claims
	handler := mw.Authenticate(claimsProbe(t, &got))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/feedback", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: token})
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got == nil || got.Role != RoleAdmin {
		t.Errorf("claims = %+v, want admin", got)
	}
}

func TestAuthenticateInvalidTokenFallsBackToAnonymous(t *testing.T) {
	mw, _ := newTestMiddleware(t, "jwt")

	var got *Claims
	handler := mw.Authenticate(claimsProbe(t, &got))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/predictions", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got == nil || got.Role != RoleAnonymous {
		t.Errorf("claims = %+v, want anonymous", got)
	}
}

func TestAuthenticateModeNoneGrantsAdmin(t *testing.T) {
	mw, _ := newTestMiddleware(t, "none")

	var got *Claims
	handler := mw.Authenticate(claimsProbe(t, &got))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/fixer/nuke", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got == nil || got.Role != RoleAdmin {
		t.Errorf("claims = %+v, want admin in auth_mode none", got)
	}
}

func TestAuthorizeStatusCodes(t *testing.T) {
	mw, jwtManager := newTestMiddleware(t, "jwt")

	adminToken, err := jwtManager.GenerateToken("mike", RoleAdmin)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	tests := []struct {
		name       string
		token      string
		wantStatus int
	}{
		{"anonymous write gets 401", "", http.StatusUnauthorized},
		{"admin write gets 200", adminToken, http.StatusOK},
	}

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := mw.Authenticate(mw.Authorize(ObjectFixer, ActionWrite)(ok))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/fixer/covers", nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}
