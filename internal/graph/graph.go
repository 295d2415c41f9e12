// NMF Dashboard - Personalized New Music Friday Predictions
// Copyright 2026 Mike Strusz (MikeStrusz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MikeStrusz/nmf-dashboard

// Package graph implements the artist similarity graph: construction from
// listening-history and similar-artist tables, shortest-path distance to
// the reference artist, and the layout used by the path visualization.
//
// The graph is a pure in-memory value rebuilt from the current table
// snapshots. It performs no I/O; persistence and memoization belong to
// the caller.
package graph

import (
	"strings"

	"github.com/MikeStrusz/nmf-dashboard/internal/models"
)

// Category classifies how an artist entered the graph. An artist appearing
// under multiple sources keeps whichever category was applied last.
type Category uint8

const (
	CategoryUnknown Category = iota
	CategoryLiked
	CategorySimilarLiked
	CategoryNMF
	CategoryNotLiked
)

// String returns the wire name of the category.
func (c Category) String() string {
	switch c {
	case CategoryLiked:
		return "liked"
	case CategorySimilarLiked:
		return "similar_liked"
	case CategoryNMF:
		return "nmf"
	case CategoryNotLiked:
		return "not_liked"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler so categories serialize
// as their wire names in JSON figures.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Playlist origins recognized in the ratings table. Liked origins seed
// graph edges; the other two only contribute isolated nodes when requested.
const (
	originLiked     = "df_liked"
	originFavAlbums = "df_fav_albums"
	originNMF       = "df_nmf"
	originNotLiked  = "df_not_liked"
)

// Graph is an undirected artist similarity graph. Node and neighbor order
// follow insertion order, so construction from identical inputs yields an
// identical traversal order.
type Graph struct {
	categories map[string]Category
	order      []string
	adj        map[string][]string
	adjSet     map[string]map[string]struct{}
	edgeCount  int
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		categories: make(map[string]Category),
		adj:        make(map[string][]string),
		adjSet:     make(map[string]map[string]struct{}),
	}
}

// Build constructs the similarity graph from a ratings table and a
// similar-artists table.
//
// Liked artists (playlist origin df_liked or df_fav_albums) become nodes.
// Each similarity row adds its subject and every listed similar artist as
// nodes, plus an edge from the subject to each similar artist with weight
// one. When includeUnconnected is set, NMF-sourced and not-liked artists
// are added as isolated nodes so they stay searchable.
//
// Build never fails: empty or malformed rows contribute nothing. It is a
// pure function of its inputs.
func Build(ratings []models.ArtistRating, similar []models.SimilarArtists, includeUnconnected bool) *Graph {
	g := New()

	for _, r := range ratings {
		if r.PlaylistOrigin != originLiked && r.PlaylistOrigin != originFavAlbums {
			continue
		}
		// The artist field may itself hold a comma-separated list.
		for _, name := range splitNames(r.Artist) {
			g.addNode(name, CategoryLiked)
		}
	}

	for _, row := range similar {
		for _, name := range row.Similar {
			if name = strings.TrimSpace(name); name != "" {
				g.addNode(name, CategorySimilarLiked)
			}
		}
	}

	for _, row := range similar {
		subject := strings.TrimSpace(row.Artist)
		if subject == "" {
			continue
		}
		for _, name := range row.Similar {
			if name = strings.TrimSpace(name); name != "" {
				g.addEdge(subject, name)
			}
		}
	}

	if includeUnconnected {
		for _, r := range ratings {
			var cat Category
			switch r.PlaylistOrigin {
			case originNMF:
				cat = CategoryNMF
			case originNotLiked:
				cat = CategoryNotLiked
			default:
				continue
			}
			for _, name := range splitNames(r.Artist) {
				g.addNode(name, cat)
			}
		}
	}

	return g
}

// splitNames splits a comma-separated artist field into trimmed,
// non-empty names.
func splitNames(field string) []string {
	parts := strings.Split(field, ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			names = append(names, p)
		}
	}
	return names
}

// addNode inserts or retags a node. The last category applied wins.
func (g *Graph) addNode(name string, cat Category) {
	if _, ok := g.categories[name]; !ok {
		g.order = append(g.order, name)
		g.adjSet[name] = make(map[string]struct{})
	}
	g.categories[name] = cat
}

// addEdge links two nodes, creating either endpoint as needed. Self loops
// and duplicate edges are dropped.
func (g *Graph) addEdge(a, b string) {
	if a == b {
		return
	}
	if _, ok := g.categories[a]; !ok {
		g.addNode(a, CategorySimilarLiked)
	}
	if _, ok := g.categories[b]; !ok {
		g.addNode(b, CategorySimilarLiked)
	}
	if _, dup := g.adjSet[a][b]; dup {
		return
	}
	g.adjSet[a][b] = struct{}{}
	g.adjSet[b][a] = struct{}{}
	g.adj[a] = append(g.adj[a], b)
	g.adj[b] = append(g.adj[b], a)
	g.edgeCount++
}

// HasNode reports whether the artist is a node in the graph.
func (g *Graph) HasNode(name string) bool {
	_, ok := g.categories[name]
	return ok
}

// HasEdge reports whether the two artists are directly connected.
func (g *Graph) HasEdge(a, b string) bool {
	_, ok := g.adjSet[a][b]
	return ok
}

// Category returns the node's category, or CategoryUnknown for absent nodes.
func (g *Graph) Category(name string) Category {
	return g.categories[name]
}

// Nodes returns all node names in insertion order.
func (g *Graph) Nodes() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Neighbors returns the node's neighbors in insertion order.
func (g *Graph) Neighbors(name string) []string {
	adj := g.adj[name]
	out := make([]string, len(adj))
	copy(out, adj)
	return out
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.order)
}

// EdgeCount returns the number of undirected edges.
func (g *Graph) EdgeCount() int {
	return g.edgeCount
}
