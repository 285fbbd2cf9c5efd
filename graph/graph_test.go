// graph/graph_test.go
// Copyright(c) 2024-2025 drakula contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package graph

import (
	"errors"
	"slices"
	"testing"

	"github.com/drakula-game/drakula/aviation"
	"github.com/drakula-game/drakula/math"
)

func tetrahedron() []math.Point3D {
	return []math.Point3D{{1, 1, 1}, {1, -1, -1}, {-1, 1, -1}, {-1, -1, 1}}
}

// globe returns points spread over the unit sphere, with a little
// irregularity so that distances aren't all tied.
func globe() []math.Point3D {
	var pts []math.Point3D
	e := math.Ellipsoid{Radius: 1}
	i := 0
	for lat := -75.; lat <= 75; lat += 15 {
		for lon := -180.; lon < 180; lon += 30 {
			jitter := float64(i%7) * 0.9
			pts = append(pts, math.GeodeticToCartesian(lat+jitter, lon+2*jitter, 0, e))
			i++
		}
	}
	return append(pts, math.GeodeticToCartesian(89, 10, 0, e), math.GeodeticToCartesian(-89, -10, 0, e))
}

func TestBuildTetrahedron(t *testing.T) {
	g, err := Build(tetrahedron(), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(g) != 4 {
		t.Fatalf("expected 4 vertices, got %d", len(g))
	}
	for v, ns := range g {
		if len(ns) != 3 {
			t.Errorf("vertex %d: expected 3 neighbors, got %v", v, ns)
		}
		for other := range 4 {
			if other != v && !slices.Contains(ns, other) {
				t.Errorf("vertex %d is missing neighbor %d", v, other)
			}
		}
	}
}

func TestBuildDegenerate(t *testing.T) {
	if _, err := Build(tetrahedron()[:3], Options{}); !errors.Is(err, math.ErrDegenerateInput) {
		t.Errorf("3 points: expected ErrDegenerateInput, got %v", err)
	}
	flat := []math.Point3D{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0}}
	if _, err := Build(flat, Options{}); !errors.Is(err, math.ErrDegenerateInput) {
		t.Errorf("coplanar: expected ErrDegenerateInput, got %v", err)
	}
}

func TestGraphInvariants(t *testing.T) {
	pts := globe()
	g, err := Build(pts, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !g.IsSymmetric() {
		t.Errorf("unpruned graph is not symmetric")
	}
	if iso := g.Isolated(); len(iso) != 0 {
		t.Errorf("isolated vertices on a sphere: %v", iso)
	}

	for v, ns := range g {
		if slices.Contains(ns, v) {
			t.Errorf("vertex %d is its own neighbor", v)
		}
		for i := 1; i < len(ns); i++ {
			d0, d1 := math.DistanceSq3(pts[v], pts[ns[i-1]]), math.DistanceSq3(pts[v], pts[ns[i]])
			if d0 > d1 {
				t.Errorf("vertex %d: neighbors %d and %d out of order (%g > %g)", v, ns[i-1], ns[i], d0, d1)
			}
		}
	}

	// A triangulated sphere has 3n-6 undirected edges.
	if e := g.EdgeCount(); e != 2*(3*len(pts)-6) {
		t.Errorf("expected %d directed edges, got %d", 2*(3*len(pts)-6), e)
	}
}

func TestBuildDeterministic(t *testing.T) {
	a, err := Build(globe(), Options{PruneLength: 4})
	if err != nil {
		t.Fatal(err)
	}
	b, err := Build(globe(), Options{PruneLength: 4})
	if err != nil {
		t.Fatal(err)
	}
	for v := range a {
		if !slices.Equal(a[v], b[v]) {
			t.Errorf("vertex %d: %v != %v", v, a[v], b[v])
		}
	}
}

func TestTieBreakByIndex(t *testing.T) {
	// Vertex 0 at the apex is equidistant from the three base vertices.
	pts := []math.Point3D{{0, 0, 1}, {1, 0, 0}, {0, 1, 0}, {-1, 0, 0}}
	g, err := Build(pts, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(g[0], []int{1, 2, 3}) {
		t.Errorf("expected ties broken by index, got %v", g[0])
	}
}

func TestPruneIndependent(t *testing.T) {
	pts := globe()
	full, err := Build(pts, Options{})
	if err != nil {
		t.Fatal(err)
	}
	g := full.Prune(Options{PruneLength: 3, PruneMode: PruneIndependent})

	for v := range g {
		want := full[v][:min(3, len(full[v]))]
		if !slices.Equal(g[v], want) {
			t.Errorf("vertex %d: expected nearest %v, got %v", v, want, g[v])
		}
	}

	// Truncating to 3 on a triangulation with average degree ~6 is
	// practically guaranteed to drop some reverse edges; consumers must
	// cope with that, so make sure the case is exercised.
	if g.IsSymmetric() {
		t.Errorf("expected independent pruning to break symmetry")
	}

	// The original graph is untouched.
	if !full.IsSymmetric() {
		t.Errorf("pruning modified the graph it was called on")
	}
}

func TestPruneSymmetric(t *testing.T) {
	pts := globe()
	full, err := Build(pts, Options{})
	if err != nil {
		t.Fatal(err)
	}
	g := full.Prune(Options{PruneLength: 3, PruneMode: PruneSymmetric})

	if !g.IsSymmetric() {
		t.Errorf("symmetric pruning produced an asymmetric graph")
	}
	for v := range g {
		if len(g[v]) > 3 {
			t.Errorf("vertex %d: %d neighbors after pruning to 3", v, len(g[v]))
		}
		for _, n := range g[v] {
			if !full.Connected(v, n) {
				t.Errorf("pruning invented edge %d-%d", v, n)
			}
		}
		if g[v] == nil {
			t.Errorf("vertex %d: nil neighbor list", v)
		}
	}
}

func TestPruneDisabled(t *testing.T) {
	g := Graph{{1}, {0}}
	if p := g.Prune(Options{}); &p[0] != &g[0] {
		t.Errorf("expected the same graph back when pruning is disabled")
	}
}

func TestHopDistances(t *testing.T) {
	// 0 - 1 - 2 - 3, plus 4 unconnected and a one-way edge 3 -> 5.
	g := Graph{{1}, {0, 2}, {1, 3}, {2, 5}, {}, {}}

	d := g.HopDistances(0, 0)
	if want := []int{0, 1, 2, 3, Unreached, 4}; !slices.Equal(d, want) {
		t.Errorf("unbounded: expected %v, got %v", want, d)
	}

	d = g.HopDistances(0, 2)
	if want := []int{0, 1, 2, Unreached, Unreached, Unreached}; !slices.Equal(d, want) {
		t.Errorf("bounded: expected %v, got %v", want, d)
	}

	// The edge 3 -> 5 is one-way.
	if d := g.HopDistances(5, 0); d[3] != Unreached {
		t.Errorf("followed an edge against its direction")
	}

	if d := g.HopDistances(17, 0); slices.ContainsFunc(d, func(v int) bool { return v != Unreached }) {
		t.Errorf("invalid start: expected everything unreached, got %v", d)
	}
}

func TestPathTo(t *testing.T) {
	g := Graph{{1}, {0, 2}, {1, 3}, {2}, {}}
	if p := g.PathTo(0, 3); !slices.Equal(p, []int{1, 2, 3}) {
		t.Errorf("expected [1 2 3], got %v", p)
	}
	if p := g.PathTo(0, 4); p != nil {
		t.Errorf("expected nil path to an unreachable vertex, got %v", p)
	}
	if p := g.PathTo(2, 2); p != nil {
		t.Errorf("expected nil path to self, got %v", p)
	}
}

func TestPathToAny(t *testing.T) {
	// 0 - 1 - 2 - 3
	// |           |
	// 4 - 5 - 6 - 7
	g := Graph{{1, 4}, {0, 2}, {1, 3}, {2, 7}, {0, 5}, {4, 6}, {5, 7}, {3, 6}}

	for _, test := range []struct {
		start   int
		goals   []int
		blocked []int
		path    []int
	}{
		{start: 0, goals: []int{3, 6}, path: []int{4, 5, 6}},
		{start: 0, goals: []int{3, 6}, blocked: []int{4}, path: []int{1, 2, 3}},
		{start: 0, goals: []int{7}, blocked: []int{2, 5}, path: nil},
		{start: 0, goals: []int{0}, path: nil},
		{start: 0, goals: nil, path: nil},
		{start: 3, goals: []int{3, 2}, path: []int{2}},
	} {
		enter := func(v int) bool { return !slices.Contains(test.blocked, v) }
		if p := g.PathToAny(test.start, test.goals, enter); !slices.Equal(p, test.path) {
			t.Errorf("PathToAny(%d, %v) blocked %v: got %v, expected %v", test.start, test.goals,
				test.blocked, p, test.path)
		}
	}

	if p := g.PathToAny(0, []int{7}, nil); len(p) != 4 || p[3] != 7 {
		t.Errorf("unfiltered path to 7: %v", p)
	}
}

func TestParsePruneMode(t *testing.T) {
	for s, want := range map[string]PruneMode{"": PruneIndependent, "independent": PruneIndependent, "symmetric": PruneSymmetric} {
		if m, err := ParsePruneMode(s); err != nil || m != want {
			t.Errorf("%q: got %v, %v", s, m, err)
		}
	}
	if _, err := ParsePruneMode("bogus"); err == nil {
		t.Errorf("expected an error for an unknown mode")
	}
}

func TestBuildFromAirports(t *testing.T) {
	// A handful of real airports spread over several continents.
	airports := []aviation.Airport{
		{ID: 1, Ident: "KJFK", Latitude: 40.64, Longitude: -73.78, Elevation: 13},
		{ID: 2, Ident: "EGLL", Latitude: 51.47, Longitude: -0.46, Elevation: 83},
		{ID: 3, Ident: "YSSY", Latitude: -33.95, Longitude: 151.18, Elevation: 21},
		{ID: 4, Ident: "FAOR", Latitude: -26.14, Longitude: 28.25, Elevation: 5558},
		{ID: 5, Ident: "SBGR", Latitude: -23.43, Longitude: -46.47, Elevation: 2459},
		{ID: 6, Ident: "RJTT", Latitude: 35.55, Longitude: 139.78, Elevation: 35},
	}

	g, points, err := BuildFromAirports(airports, math.DefaultEllipsoid, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != len(airports) || len(g) != len(airports) {
		t.Fatalf("got %d points and %d vertices for %d airports", len(points), len(g), len(airports))
	}
	if !g.IsSymmetric() {
		t.Errorf("unpruned graph should be symmetric")
	}
	if iso := g.Isolated(); len(iso) != 0 {
		t.Errorf("isolated vertices %v", iso)
	}

	if _, _, err := BuildFromAirports(airports[:3], math.DefaultEllipsoid, Options{}); !errors.Is(err, math.ErrDegenerateInput) {
		t.Errorf("expected ErrDegenerateInput for 3 airports, got %v", err)
	}
}
