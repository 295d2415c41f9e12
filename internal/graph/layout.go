// NMF Dashboard - Personalized New Music Friday Predictions
// Copyright 2026 Mike Strusz (MikeStrusz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MikeStrusz/nmf-dashboard

package graph

import (
	"math"
	"math/rand"
)

// layoutIterations is the number of force-simulation steps. Fifty steps
// settle the small neighborhood subgraphs this layout is used on.
const layoutIterations = 50

// Point is a 2D node position in the unit square [-1, 1] x [-1, 1].
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Neighborhood returns the induced subgraph of the path nodes plus up to
// maxNeighbors neighbors of each path node. Neighbor selection follows
// adjacency order, matching the traversal used for the path itself.
func (g *Graph) Neighborhood(path []string, maxNeighbors int) *Graph {
	include := make(map[string]struct{}, len(path))
	ordered := make([]string, 0, len(path)*(maxNeighbors+1))

	add := func(name string) {
		if _, ok := include[name]; ok {
			return
		}
		if !g.HasNode(name) {
			return
		}
		include[name] = struct{}{}
		ordered = append(ordered, name)
	}

	for _, node := range path {
		add(node)
	}
	for _, node := range path {
		neighbors := g.adj[node]
		if len(neighbors) > maxNeighbors {
			neighbors = neighbors[:maxNeighbors]
		}
		for _, n := range neighbors {
			add(n)
		}
	}

	sub := New()
	for _, name := range ordered {
		sub.addNode(name, g.categories[name])
	}
	for _, name := range ordered {
		for _, n := range g.adj[name] {
			if _, ok := include[n]; ok {
				sub.addEdge(name, n)
			}
		}
	}
	return sub
}

// SpringLayout computes node positions with a Fruchterman-Reingold force
// simulation. The same graph and seed always produce the same positions.
func (g *Graph) SpringLayout(seed int64) map[string]Point {
	nodes := g.order
	n := len(nodes)
	pos := make(map[string]Point, n)
	if n == 0 {
		return pos
	}
	if n == 1 {
		pos[nodes[0]] = Point{}
		return pos
	}

	rng := rand.New(rand.NewSource(seed))
	x := make([]float64, n)
	y := make([]float64, n)
	for i := range nodes {
		x[i] = rng.Float64()*2 - 1
		y[i] = rng.Float64()*2 - 1
	}

	index := make(map[string]int, n)
	for i, name := range nodes {
		index[name] = i
	}

	// Optimal pairwise distance for a unit-square drawing area.
	k := math.Sqrt(4.0 / float64(n))
	temp := 0.1
	cool := temp / float64(layoutIterations+1)

	dx := make([]float64, n)
	dy := make([]float64, n)

	for iter := 0; iter < layoutIterations; iter++ {
		for i := range dx {
			dx[i], dy[i] = 0, 0
		}

		// Repulsion between every node pair.
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				ddx, ddy := x[i]-x[j], y[i]-y[j]
				dist := math.Hypot(ddx, ddy)
				if dist < 1e-9 {
					dist = 1e-9
					ddx, ddy = 1e-9, 0
				}
				force := k * k / dist
				fx, fy := ddx/dist*force, ddy/dist*force
				dx[i] += fx
				dy[i] += fy
				dx[j] -= fx
				dy[j] -= fy
			}
		}

		// Attraction along edges.
		for _, name := range nodes {
			i := index[name]
			for _, neighbor := range g.adj[name] {
				j := index[neighbor]
				if j <= i {
					continue
				}
				ddx, ddy := x[i]-x[j], y[i]-y[j]
				dist := math.Hypot(ddx, ddy)
				if dist < 1e-9 {
					continue
				}
				force := dist * dist / k
				fx, fy := ddx/dist*force, ddy/dist*force
				dx[i] -= fx
				dy[i] -= fy
				dx[j] += fx
				dy[j] += fy
			}
		}

		// Displace, capped by the cooling temperature.
		for i := 0; i < n; i++ {
			disp := math.Hypot(dx[i], dy[i])
			if disp < 1e-9 {
				continue
			}
			limited := math.Min(disp, temp)
			x[i] += dx[i] / disp * limited
			y[i] += dy[i] / disp * limited
			x[i] = math.Max(-1, math.Min(1, x[i]))
			y[i] = math.Max(-1, math.Min(1, y[i]))
		}
		temp -= cool
	}

	for i, name := range nodes {
		pos[name] = Point{X: x[i], Y: y[i]}
	}
	return pos
}
