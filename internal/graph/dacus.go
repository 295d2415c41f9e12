// NMF Dashboard - Personalized New Music Friday Predictions
// Copyright 2026 Mike Strusz (MikeStrusz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MikeStrusz/nmf-dashboard

package graph

// Outcome distinguishes the three results of a distance query. "Not found"
// and "unreachable" are separate outcomes so callers can surface different
// messages for an unknown artist versus a disconnected one.
type Outcome string

const (
	// OutcomeFound means a shortest path to the reference artist exists.
	OutcomeFound Outcome = "found"

	// OutcomeNotFound means the queried artist is not a graph node.
	OutcomeNotFound Outcome = "not_found"

	// OutcomeUnreachable means the artist exists but has no path to the
	// reference artist. This is a normal result, not an error.
	OutcomeUnreachable Outcome = "unreachable"
)

// Result is the answer to a Dacus number query.
//
// Distance and Path are meaningful only when Outcome is OutcomeFound.
// Distance counts edges; Path lists the artists from the queried one to
// the reference, so len(Path) == Distance+1.
type Result struct {
	Outcome  Outcome  `json:"outcome"`
	Distance int      `json:"distance,omitempty"`
	Path     []string `json:"path,omitempty"`
}

// DacusNumber computes the shortest-path distance from the artist to the
// reference artist. Names are matched exactly and case-sensitively.
//
// All edges weigh the same, so this is a breadth-first search. When several
// shortest paths exist, one valid path is returned; which one depends on
// node insertion order and is not part of the contract.
func (g *Graph) DacusNumber(artist, reference string) Result {
	if !g.HasNode(artist) {
		return Result{Outcome: OutcomeNotFound}
	}
	if artist == reference {
		return Result{Outcome: OutcomeFound, Distance: 0, Path: []string{artist}}
	}
	if !g.HasNode(reference) {
		return Result{Outcome: OutcomeUnreachable}
	}

	parent := map[string]string{artist: artist}
	queue := []string{artist}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, next := range g.adj[current] {
			if _, seen := parent[next]; seen {
				continue
			}
			parent[next] = current
			if next == reference {
				path := tracePath(parent, artist, reference)
				return Result{
					Outcome:  OutcomeFound,
					Distance: len(path) - 1,
					Path:     path,
				}
			}
			queue = append(queue, next)
		}
	}

	return Result{Outcome: OutcomeUnreachable}
}

// tracePath walks parent pointers from the target back to the source and
// returns the path in source-to-target order.
func tracePath(parent map[string]string, source, target string) []string {
	path := []string{target}
	for node := target; node != source; node = parent[node] {
		path = append(path, parent[node])
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
