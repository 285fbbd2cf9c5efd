// graph/graph.go
// Copyright(c) 2024-2025 drakula contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package graph builds the navigable airport network: a bounded-degree
// graph derived from the convex hull of the airports' 3D positions.
package graph

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/drakula-game/drakula/math"
)

// Graph maps a vertex index to its neighbors, ordered nearest first.
//
// Before pruning the relation is symmetric. After pruning with
// PruneIndependent it may not be, so reachability must always be tested
// in the direction of travel: b is reachable from a iff b is in g[a].
type Graph [][]int

type PruneMode int

const (
	// PruneIndependent truncates each vertex's neighbor list on its own.
	// A may keep B while B drops A.
	PruneIndependent PruneMode = iota
	// PruneSymmetric keeps an edge only if both endpoints keep it within
	// their PruneLength nearest neighbors, so the result stays symmetric.
	PruneSymmetric
)

func (m PruneMode) String() string {
	switch m {
	case PruneIndependent:
		return "independent"
	case PruneSymmetric:
		return "symmetric"
	default:
		return fmt.Sprintf("PruneMode(%d)", int(m))
	}
}

func ParsePruneMode(s string) (PruneMode, error) {
	switch s {
	case "", "independent":
		return PruneIndependent, nil
	case "symmetric":
		return PruneSymmetric, nil
	default:
		return PruneIndependent, fmt.Errorf("%s: unknown prune mode", s)
	}
}

type Options struct {
	// PruneLength is the maximum number of neighbors kept per vertex; 0
	// disables pruning.
	PruneLength int
	PruneMode   PruneMode
}

// Build triangulates the points via their convex hull and returns the
// graph of hull edges. It returns math.ErrDegenerateInput if the points
// don't span a volume.
func Build(points []math.Point3D, opts Options) (Graph, error) {
	faces, err := math.ConvexHull(points)
	if err != nil {
		return nil, err
	}

	adj := make([]map[int]struct{}, len(points))
	addEdge := func(a, b int) {
		if a == b {
			return
		}
		if adj[a] == nil {
			adj[a] = make(map[int]struct{})
		}
		if adj[b] == nil {
			adj[b] = make(map[int]struct{})
		}
		adj[a][b] = struct{}{}
		adj[b][a] = struct{}{}
	}
	for _, f := range faces {
		for i := range f {
			addEdge(f[i], f[(i+1)%len(f)])
		}
	}

	g := make(Graph, len(points))
	for v := range g {
		g[v] = make([]int, 0, len(adj[v]))
		for n := range adj[v] {
			g[v] = append(g[v], n)
		}
		sortByDistance(g[v], v, points)
	}

	return g.Prune(opts), nil
}

// sortByDistance orders neighbors of v by increasing squared distance
// from v, breaking ties by index so that the order is reproducible.
func sortByDistance(neighbors []int, v int, points []math.Point3D) {
	slices.SortFunc(neighbors, func(a, b int) int {
		da, db := math.DistanceSq3(points[v], points[a]), math.DistanceSq3(points[v], points[b])
		if c := cmp.Compare(da, db); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
}

// Prune returns a copy of g with each neighbor list limited to
// opts.PruneLength entries, keeping the nearest. When PruneLength is zero
// g is returned as is.
func (g Graph) Prune(opts Options) Graph {
	if opts.PruneLength <= 0 {
		return g
	}

	keep := func(v int) []int {
		return g[v][:min(len(g[v]), opts.PruneLength)]
	}

	pruned := make(Graph, len(g))
	for v := range g {
		switch opts.PruneMode {
		case PruneSymmetric:
			for _, n := range keep(v) {
				if slices.Contains(keep(n), v) {
					pruned[v] = append(pruned[v], n)
				}
			}
		default:
			pruned[v] = slices.Clone(keep(v))
		}
		if pruned[v] == nil {
			pruned[v] = []int{}
		}
	}
	return pruned
}

func (g Graph) Neighbors(v int) []int {
	if v < 0 || v >= len(g) {
		return nil
	}
	return g[v]
}

// Connected reports whether b can be reached from a in a single hop.
func (g Graph) Connected(a, b int) bool {
	return slices.Contains(g.Neighbors(a), b)
}

// IsSymmetric reports whether every edge appears in both directions.
func (g Graph) IsSymmetric() bool {
	for a, ns := range g {
		for _, b := range ns {
			if !g.Connected(b, a) {
				return false
			}
		}
	}
	return true
}

// Isolated returns the vertices that have no outgoing edges.
func (g Graph) Isolated() []int {
	var iso []int
	for v, ns := range g {
		if len(ns) == 0 {
			iso = append(iso, v)
		}
	}
	return iso
}

// EdgeCount returns the number of directed edges in the graph.
func (g Graph) EdgeCount() int {
	n := 0
	for _, ns := range g {
		n += len(ns)
	}
	return n
}

// Unreached is the hop distance reported for vertices that HopDistances
// didn't reach.
const Unreached = -1

// HopDistances runs a breadth-first search from start, following edges in
// their stored direction, and returns the hop count to every vertex. The
// expansion stops at maxHops (if positive); vertices further away or not
// connected to start are Unreached.
func (g Graph) HopDistances(start int, maxHops int) []int {
	dist := make([]int, len(g))
	for i := range dist {
		dist[i] = Unreached
	}
	if start < 0 || start >= len(g) {
		return dist
	}

	dist[start] = 0
	frontier := []int{start}
	for hop := 1; len(frontier) > 0 && (maxHops <= 0 || hop <= maxHops); hop++ {
		var next []int
		for _, v := range frontier {
			for _, n := range g[v] {
				if dist[n] == Unreached {
					dist[n] = hop
					next = append(next, n)
				}
			}
		}
		frontier = next
	}
	return dist
}

// PathTo returns a shortest path from start to goal (excluding start), or
// nil if goal is unreachable.
func (g Graph) PathTo(start, goal int) []int {
	if start == goal {
		return nil
	}
	return g.PathToAny(start, []int{goal}, nil)
}

// PathToAny returns a shortest path from start to the nearest of goals
// (excluding start), or nil if none can be reached. Only vertices for
// which enter returns true are entered; a nil enter allows all of them.
// start itself is never a goal.
func (g Graph) PathToAny(start int, goals []int, enter func(int) bool) []int {
	if start < 0 || start >= len(g) || len(goals) == 0 {
		return nil
	}

	prev := make([]int, len(g))
	for i := range prev {
		prev[i] = Unreached
	}
	prev[start] = start

	queue := []int{start}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]

		for _, n := range g[v] {
			if prev[n] != Unreached || (enter != nil && !enter(n)) {
				continue
			}
			prev[n] = v
			if slices.Contains(goals, n) {
				var path []int
				for ; n != start; n = prev[n] {
					path = append(path, n)
				}
				slices.Reverse(path)
				return path
			}
			queue = append(queue, n)
		}
	}
	return nil
}
