// NMF Dashboard - Personalized New Music Friday Predictions
// Copyright 2026 Mike Strusz (MikeStrusz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MikeStrusz/nmf-dashboard

// Package artwork validates album cover URLs before they are saved by the
// Album Fixer. Probes are rate limited to stay polite toward image CDNs and
// wrapped in a circuit breaker so a flaky CDN cannot stall admin edits.
package artwork

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/MikeStrusz/nmf-dashboard/internal/config"
	"github.com/MikeStrusz/nmf-dashboard/internal/logging"
	"github.com/MikeStrusz/nmf-dashboard/internal/metrics"
)

// Probe result labels for metrics.
const (
	resultOK       = "ok"
	resultBadURL   = "bad_url"
	resultRejected = "rejected"
	resultError    = "error"
)

// ErrProbeFailed means the URL responded but not with a usable image.
var ErrProbeFailed = errors.New("artwork url probe failed")

// probeResult carries what the probe needs from the response.
type probeResult struct {
	status      int
	contentType string
}

// Prober checks that a cover URL answers HEAD with a 2xx status and an
// image content type.
//
// DETERMINISM NOTE: The circuit breaker uses real time (via sony/gobreaker)
// for its interval and timeout calculations. This is intentional for
// production resilience; tests stub the HTTP server, not the breaker.
type Prober struct {
	client  *http.Client
	limiter *rate.Limiter
	cb      *gobreaker.CircuitBreaker[probeResult]
	enabled bool
}

// NewProber builds a prober from config. When cfg.Enabled is false the
// prober accepts every URL without network traffic, so the Fixer keeps
// working in offline deployments.
func NewProber(cfg *config.ArtworkConfig) *Prober {
	cb := gobreaker.NewCircuitBreaker[probeResult](gobreaker.Settings{
		Name:        "artwork-prober",
		MaxRequests: 2,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("artwork prober circuit state transition")
		},
	})

	return &Prober{
		client: &http.Client{
			Timeout: cfg.ProbeTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return errors.New("too many redirects")
				}
				return nil
			},
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), cfg.Burst),
		cb:      cb,
		enabled: cfg.Enabled,
	}
}

// Probe verifies that url serves something HEAD-able. It blocks on the
// rate limiter, so callers should pass a request-scoped context.
func (p *Prober) Probe(ctx context.Context, url string) error {
	if !p.enabled {
		return nil
	}

	if err := p.limiter.Wait(ctx); err != nil {
		metrics.ArtworkProbesTotal.WithLabelValues(resultRejected).Inc()
		return fmt.Errorf("artwork probe rate limit: %w", err)
	}

	result, err := p.cb.Execute(func() (probeResult, error) {
		return p.head(ctx, url)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.ArtworkProbesTotal.WithLabelValues(resultRejected).Inc()
			logging.Warn().Err(err).Str("url", url).Msg("artwork probe rejected by circuit breaker")
			return fmt.Errorf("artwork probe unavailable: %w", err)
		}
		metrics.ArtworkProbesTotal.WithLabelValues(resultError).Inc()
		return err
	}

	if result.status < 200 || result.status >= 300 {
		metrics.ArtworkProbesTotal.WithLabelValues(resultBadURL).Inc()
		return fmt.Errorf("%w: status %d for %s", ErrProbeFailed, result.status, url)
	}
	if !isImageContentType(result.contentType) {
		metrics.ArtworkProbesTotal.WithLabelValues(resultBadURL).Inc()
		return fmt.Errorf("%w: content type %q for %s", ErrProbeFailed, result.contentType, url)
	}

	metrics.ArtworkProbesTotal.WithLabelValues(resultOK).Inc()
	return nil
}

// isImageContentType accepts image/* responses. CDNs that omit the header
// entirely are given the benefit of the doubt.
func isImageContentType(ct string) bool {
	if ct == "" {
		return true
	}
	mediaType := ct
	if i := strings.Index(ct, ";"); i >= 0 {
		mediaType = ct[:i]
	}
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(mediaType)), "image/")
}

func (p *Prober) head(ctx context.Context, url string) (probeResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return probeResult{}, fmt.Errorf("build artwork probe request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return probeResult{}, fmt.Errorf("artwork probe: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// Some CDNs reject HEAD outright, retry those as a ranged GET
	if resp.StatusCode == http.StatusMethodNotAllowed {
		return p.rangedGet(ctx, url)
	}

	return probeResult{status: resp.StatusCode, contentType: resp.Header.Get("Content-Type")}, nil
}

func (p *Prober) rangedGet(ctx context.Context, url string) (probeResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return probeResult{}, fmt.Errorf("build artwork probe request: %w", err)
	}
	req.Header.Set("Range", "bytes=0-0")

	resp, err := p.client.Do(req)
	if err != nil {
		return probeResult{}, fmt.Errorf("artwork probe: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// 206 Partial Content collapses to 200 for the caller's 2xx check
	return probeResult{status: resp.StatusCode, contentType: resp.Header.Get("Content-Type")}, nil
}
