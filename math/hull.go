// math/hull.go
// Copyright(c) 2024-2025 drakula contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	"errors"
)

// ErrDegenerateInput is returned by ConvexHull when the points do not span
// a volume: fewer than four of them, or all of them coplanar.
var ErrDegenerateInput = errors.New("Degenerate input: need at least 4 non-coplanar points")

type hullFace struct {
	v      [3]int
	normal Point3D // unit length, pointing out of the hull
	offset float64 // normal·v0
	alive  bool
}

func (f *hullFace) distance(p Point3D) float64 {
	return Dot3(f.normal, p) - f.offset
}

// ConvexHull computes the 3D convex hull of the given points and returns
// its triangular faces as triples of indices into points, each wound
// counter-clockwise when seen from outside the hull. Points that lie
// inside the hull or on one of its faces do not appear in any face.
//
// For points on (or near) a sphere, the hull faces are the spherical
// Delaunay triangulation of the points.
//
// The construction is incremental and deterministic: points are inserted
// in index order after the initial tetrahedron, so identical input always
// yields identical faces.
func ConvexHull(points []Point3D) ([][3]int, error) {
	if len(points) < 4 {
		return nil, ErrDegenerateInput
	}

	eps := hullEpsilon(points)

	init, ok := initialTetrahedron(points, eps)
	if !ok {
		return nil, ErrDegenerateInput
	}

	var faces []hullFace
	// Directed edge (a,b) -> index of the face that has it in its winding.
	edgeFace := make(map[[2]int]int)

	addFace := func(a, b, c int) {
		n := Normalize3(Cross3(Sub3(points[b], points[a]), Sub3(points[c], points[a])))
		faces = append(faces, hullFace{
			v:      [3]int{a, b, c},
			normal: n,
			offset: Dot3(n, points[a]),
			alive:  true,
		})
		fi := len(faces) - 1
		edgeFace[[2]int{a, b}] = fi
		edgeFace[[2]int{b, c}] = fi
		edgeFace[[2]int{c, a}] = fi
	}
	removeFace := func(fi int) {
		f := &faces[fi]
		f.alive = false
		for i := range 3 {
			e := [2]int{f.v[i], f.v[(i+1)%3]}
			if edgeFace[e] == fi {
				delete(edgeFace, e)
			}
		}
	}

	// Orient the four initial faces so that their normals point away
	// from the tetrahedron's centroid.
	centroid := Scale3(Add3(Add3(points[init[0]], points[init[1]]), Add3(points[init[2]], points[init[3]])), 0.25)
	for _, tri := range [4][3]int{
		{init[0], init[1], init[2]},
		{init[0], init[1], init[3]},
		{init[0], init[2], init[3]},
		{init[1], init[2], init[3]},
	} {
		a, b, c := tri[0], tri[1], tri[2]
		n := Cross3(Sub3(points[b], points[a]), Sub3(points[c], points[a]))
		if Dot3(n, Sub3(centroid, points[a])) > 0 {
			b, c = c, b
		}
		addFace(a, b, c)
	}

	inInit := func(i int) bool {
		return i == init[0] || i == init[1] || i == init[2] || i == init[3]
	}

	visible := make(map[int]bool)
	for pi, p := range points {
		if inInit(pi) {
			continue
		}

		clear(visible)
		for fi := range faces {
			if faces[fi].alive && faces[fi].distance(p) > eps {
				visible[fi] = true
			}
		}
		if len(visible) == 0 {
			// Inside the current hull (or coplanar with a face); it can
			// never become a hull vertex.
			continue
		}

		// The horizon is made of the edges of visible faces whose twin
		// belongs to a face that is not visible.
		var horizon [][2]int
		for fi := range faces {
			if !visible[fi] {
				continue
			}
			f := faces[fi]
			for i := range 3 {
				a, b := f.v[i], f.v[(i+1)%3]
				if twin, ok := edgeFace[[2]int{b, a}]; ok && !visible[twin] {
					horizon = append(horizon, [2]int{a, b})
				}
			}
		}

		for fi := range visible {
			removeFace(fi)
		}
		for _, e := range horizon {
			addFace(e[0], e[1], pi)
		}
	}

	var result [][3]int
	for _, f := range faces {
		if f.alive {
			result = append(result, f.v)
		}
	}
	return result, nil
}

// hullEpsilon returns the plane-distance tolerance for the point set,
// scaled to its extent.
func hullEpsilon(points []Point3D) float64 {
	var m float64
	for _, p := range points {
		for _, c := range p {
			m = max(m, Abs(c))
		}
	}
	if m == 0 {
		return 0
	}
	return 1e-10 * m
}

// initialTetrahedron finds four points that span a volume larger than
// eps: the point with the smallest x, the point farthest from it, the
// point farthest from the line through those two, and the point farthest
// from the plane through those three.
func initialTetrahedron(points []Point3D, eps float64) ([4]int, bool) {
	var t [4]int

	for i, p := range points {
		if p[0] < points[t[0]][0] {
			t[0] = i
		}
	}

	best := 0.
	for i, p := range points {
		if d := DistanceSq3(p, points[t[0]]); d > best {
			best, t[1] = d, i
		}
	}
	if best <= eps*eps {
		return t, false
	}

	dir := Normalize3(Sub3(points[t[1]], points[t[0]]))
	best = 0
	for i, p := range points {
		if d := LengthSq3(Cross3(Sub3(p, points[t[0]]), dir)); d > best {
			best, t[2] = d, i
		}
	}
	if best <= eps*eps {
		return t, false
	}

	n := Normalize3(Cross3(Sub3(points[t[1]], points[t[0]]), Sub3(points[t[2]], points[t[0]])))
	best = 0
	for i, p := range points {
		if d := Abs(Dot3(n, Sub3(p, points[t[0]]))); d > best {
			best, t[3] = d, i
		}
	}
	if best <= eps {
		return t, false
	}

	return t, true
}
