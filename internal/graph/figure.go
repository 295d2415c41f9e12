// NMF Dashboard - Personalized New Music Friday Predictions
// Copyright 2026 Mike Strusz (MikeStrusz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MikeStrusz/nmf-dashboard

package graph

// Figure is a declarative description of the path visualization, handed to
// the frontend as JSON. It carries node positions and edge endpoints only;
// rendering is the client's concern and the server performs no I/O here.
type Figure struct {
	Nodes []FigureNode `json:"nodes"`
	Edges []FigureEdge `json:"edges"`
}

// FigureNode is a positioned, labeled node. OnPath marks nodes that lie on
// the highlighted shortest path.
type FigureNode struct {
	Name     string   `json:"name"`
	Category Category `json:"category"`
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
	OnPath   bool     `json:"on_path,omitempty"`
}

// FigureEdge is a line between two positioned nodes. Path edges are drawn
// over the plain edges with a heavier stroke by the client.
type FigureEdge struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	X0     float64 `json:"x0"`
	Y0     float64 `json:"y0"`
	X1     float64 `json:"x1"`
	Y1     float64 `json:"y1"`
	OnPath bool    `json:"on_path,omitempty"`
}

// RenderFigure lays out the subgraph with a seeded spring layout and builds
// the figure, highlighting the nodes and edges on the given path.
func RenderFigure(sub *Graph, path []string, seed int64) Figure {
	pos := sub.SpringLayout(seed)

	onPathNode := make(map[string]struct{}, len(path))
	for _, name := range path {
		onPathNode[name] = struct{}{}
	}
	onPathEdge := make(map[[2]string]struct{}, len(path))
	for i := 0; i+1 < len(path); i++ {
		onPathEdge[edgeKey(path[i], path[i+1])] = struct{}{}
	}

	fig := Figure{
		Nodes: make([]FigureNode, 0, sub.NodeCount()),
		Edges: make([]FigureEdge, 0, sub.EdgeCount()),
	}

	for _, name := range sub.order {
		p := pos[name]
		_, highlighted := onPathNode[name]
		fig.Nodes = append(fig.Nodes, FigureNode{
			Name:     name,
			Category: sub.categories[name],
			X:        p.X,
			Y:        p.Y,
			OnPath:   highlighted,
		})
	}

	seen := make(map[[2]string]struct{}, sub.EdgeCount())
	for _, name := range sub.order {
		for _, neighbor := range sub.adj[name] {
			key := edgeKey(name, neighbor)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			p0, p1 := pos[name], pos[neighbor]
			_, highlighted := onPathEdge[key]
			fig.Edges = append(fig.Edges, FigureEdge{
				Source: name,
				Target: neighbor,
				X0:     p0.X,
				Y0:     p0.Y,
				X1:     p1.X,
				Y1:     p1.Y,
				OnPath: highlighted,
			})
		}
	}

	return fig
}

// edgeKey normalizes an undirected edge to an ordered pair.
func edgeKey(a, b string) [2]string {
	if a > b {
		a, b = b, a
	}
	return [2]string{a, b}
}
