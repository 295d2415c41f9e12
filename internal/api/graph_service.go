// NMF Dashboard - Personalized New Music Friday Predictions
// Copyright 2026 Mike Strusz (MikeStrusz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MikeStrusz/nmf-dashboard

package api

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/MikeStrusz/nmf-dashboard/internal/cache"
	"github.com/MikeStrusz/nmf-dashboard/internal/config"
	"github.com/MikeStrusz/nmf-dashboard/internal/database"
	"github.com/MikeStrusz/nmf-dashboard/internal/graph"
	"github.com/MikeStrusz/nmf-dashboard/internal/logging"
	"github.com/MikeStrusz/nmf-dashboard/internal/metrics"
)

// GraphService owns the in-memory artist graph. The graph is rebuilt
// lazily: each request fingerprints the current similarity data and only
// rebuilds when the fingerprint moved, so re-imports take effect without
// restarts while steady-state queries never touch the builder.
type GraphService struct {
	db    *database.DB
	cfg   *config.GraphConfig
	store *cache.Store

	mu          sync.Mutex
	current     *graph.Graph
	fingerprint string
}

// NewGraphService wires the graph builder to its data source and result
// cache. store may be a disabled cache.
func NewGraphService(db *database.DB, cfg *config.GraphConfig, store *cache.Store) *GraphService {
	return &GraphService{db: db, cfg: cfg, store: store}
}

// DacusResponse is the wire shape of a distance query.
type DacusResponse struct {
	Artist    string        `json:"artist"`
	Reference string        `json:"reference"`
	Outcome   graph.Outcome `json:"outcome"`
	Distance  int           `json:"distance"`
	Path      []string      `json:"path,omitempty"`
}

// FigureResponse carries a rendered path neighborhood.
type FigureResponse struct {
	Artist    string       `json:"artist"`
	Reference string       `json:"reference"`
	Seed      int64        `json:"seed"`
	Figure    graph.Figure `json:"figure"`
}

// graphSnapshot returns the current graph and its fingerprint, rebuilding
// if the underlying similarity data changed.
func (s *GraphService) graphSnapshot(ctx context.Context, includeUnconnected bool) (*graph.Graph, string, error) {
	ratings, err := s.db.LoadArtistRatings(ctx)
	if err != nil {
		return nil, "", err
	}
	similar, err := s.db.LoadSimilarArtists(ctx, "liked")
	if err != nil {
		return nil, "", err
	}

	fp := graph.Fingerprint(ratings, similar, includeUnconnected)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil && s.fingerprint == fp {
		return s.current, fp, nil
	}

	start := time.Now()
	g := graph.Build(ratings, similar, includeUnconnected)
	metrics.ObserveGraphBuild(time.Since(start), g.NodeCount(), g.EdgeCount())
	logging.Info().
		Int("nodes", g.NodeCount()).
		Int("edges", g.EdgeCount()).
		Dur("build_time", time.Since(start)).
		Msg("artist graph rebuilt")

	s.current = g
	s.fingerprint = fp
	return g, fp, nil
}

// DacusNumber answers the shortest-path distance query for artist against
// the configured reference artist. The game graph includes unconnected
// NMF and not-liked artists, so a known-but-edge-less name answers
// unreachable rather than not found.
func (s *GraphService) DacusNumber(ctx context.Context, artist string) (*DacusResponse, bool, error) {
	g, fp, err := s.graphSnapshot(ctx, true)
	if err != nil {
		return nil, false, fmt.Errorf("load graph: %w", err)
	}

	key := cache.DacusKey(fp, artist)
	var cached graph.Result
	if hit, err := s.store.Get(key, &cached); err == nil && hit {
		metrics.DacusQueriesTotal.WithLabelValues(string(cached.Outcome)).Inc()
		return s.dacusResponse(artist, cached), true, nil
	}

	result := g.DacusNumber(artist, s.cfg.ReferenceArtist)
	metrics.DacusQueriesTotal.WithLabelValues(string(result.Outcome)).Inc()

	if err := s.store.Set(key, result); err != nil {
		logging.Warn().Err(err).Msg("failed to cache dacus result")
	}
	return s.dacusResponse(artist, result), false, nil
}

func (s *GraphService) dacusResponse(artist string, result graph.Result) *DacusResponse {
	return &DacusResponse{
		Artist:    artist,
		Reference: s.cfg.ReferenceArtist,
		Outcome:   result.Outcome,
		Distance:  result.Distance,
		Path:      result.Path,
	}
}

// Figure renders the path neighborhood for artist with the configured
// seeded spring layout. Only artists with a found path have a figure.
func (s *GraphService) Figure(ctx context.Context, artist string) (*FigureResponse, bool, error) {
	g, fp, err := s.graphSnapshot(ctx, true)
	if err != nil {
		return nil, false, fmt.Errorf("load graph: %w", err)
	}

	key := cache.FigureKey(fp, artist, s.cfg.LayoutSeed, s.cfg.MaxNeighbors)
	var cachedFig graph.Figure
	if hit, err := s.store.Get(key, &cachedFig); err == nil && hit {
		return s.figureResponse(artist, cachedFig), true, nil
	}

	result := g.DacusNumber(artist, s.cfg.ReferenceArtist)
	if result.Outcome != graph.OutcomeFound {
		return nil, false, ErrNoPath
	}

	sub := g.Neighborhood(result.Path, s.cfg.MaxNeighbors)
	fig := graph.RenderFigure(sub, result.Path, s.cfg.LayoutSeed)

	if err := s.store.Set(key, fig); err != nil {
		logging.Warn().Err(err).Msg("failed to cache figure")
	}
	return s.figureResponse(artist, fig), false, nil
}

func (s *GraphService) figureResponse(artist string, fig graph.Figure) *FigureResponse {
	return &FigureResponse{
		Artist:    artist,
		Reference: s.cfg.ReferenceArtist,
		Seed:      s.cfg.LayoutSeed,
		Figure:    fig,
	}
}

// ArtistEntry is one searchable node of the artist graph.
type ArtistEntry struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

// Artists lists graph nodes for the search box, filtered by a
// case-insensitive substring of the name and sorted alphabetically. The
// list comes from the same unconnected-inclusive graph the distance query
// uses, so every returned name is queryable.
func (s *GraphService) Artists(ctx context.Context, search string, limit int) ([]ArtistEntry, error) {
	g, _, err := s.graphSnapshot(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("load graph: %w", err)
	}

	if limit <= 0 {
		limit = 50
	}
	needle := strings.ToLower(search)

	matches := []ArtistEntry{}
	for _, name := range g.Nodes() {
		if needle != "" && !strings.Contains(strings.ToLower(name), needle) {
			continue
		}
		matches = append(matches, ArtistEntry{
			Name:     name,
			Category: g.Category(name).String(),
		})
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Name < matches[j].Name })
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// Invalidate drops memoized results after a data re-import.
func (s *GraphService) Invalidate() {
	s.mu.Lock()
	s.current = nil
	s.fingerprint = ""
	s.mu.Unlock()

	if err := s.store.InvalidateAll(); err != nil {
		logging.Warn().Err(err).Msg("failed to invalidate graph cache")
	}
}
