// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package geom

import (
	"github.com/golang/geo/r3"
)

// Clip describes how much of a polygon survived ClipToFront.
type Clip int

const (
	// ClipNone means the polygon lies entirely on or in front of the plane.
	ClipNone Clip = iota
	// ClipPartial means the part behind the plane was cut away.
	ClipPartial
	// ClipAll means nothing of the polygon lies in front of the plane.
	ClipAll
)

func (c Clip) String() string {
	switch c {
	case ClipNone:
		return "none"
	case ClipPartial:
		return "partial"
	case ClipAll:
		return "all"
	}
	return "unknown"
}

// ClipToFront returns the part of the convex polygon p in front of pl
// (Sutherland-Hodgman against a single half-space). Vertices within eps of the
// plane count as lying on it. The input slice is returned unchanged for
// ClipNone and nil for ClipAll.
func ClipToFront(p []r3.Vector, pl Plane, eps float64) ([]r3.Vector, Clip) {
	d := make([]float64, len(p))
	front, behind := false, false
	for i, v := range p {
		d[i] = pl.Distance(v)
		if d[i] > eps {
			front = true
		}
		if d[i] < -eps {
			behind = true
		}
	}
	if !front {
		return nil, ClipAll
	}
	if !behind {
		return p, ClipNone
	}

	n := len(p)
	out := make([]r3.Vector, 0, n+1)
	for i := range n {
		j := (i + 1) % n
		curIn := d[i] >= 0
		nextIn := d[j] >= 0
		if curIn {
			out = append(out, p[i])
		}
		if curIn != nextIn {
			t := d[i] / (d[i] - d[j])
			out = append(out, p[i].Add(p[j].Sub(p[i]).Mul(t)))
		}
	}
	out = Dedup(out, eps)
	if len(out) < 3 || Area(out) <= eps*eps {
		return nil, ClipAll
	}
	return out, ClipPartial
}

// Project returns the central projection of p from the eye e onto pl. Every
// vertex of p must lie strictly closer to pl than e, on the same side.
func Project(p []r3.Vector, e r3.Vector, pl Plane) []r3.Vector {
	de := pl.Distance(e)
	out := make([]r3.Vector, len(p))
	for i, v := range p {
		out[i] = e.Add(v.Sub(e).Mul(de / (de - pl.Distance(v))))
	}
	return out
}

// Difference returns the part of the convex polygon p outside the convex
// polygon s as disjoint convex pieces. Both polygons lie in one plane with
// normal n. The covered result reports whether s overlaps p in an area larger
// than the tolerance; polygons touching along an edge do not overlap.
func Difference(p, s []r3.Vector, n r3.Vector, eps float64) (pieces [][]r3.Vector, covered bool) {
	c := Average(s)
	rest := p
	for i := range s {
		a, b := s[i], s[(i+1)%len(s)]
		h := n.Cross(b.Sub(a))
		if h.Norm2() == 0 {
			continue
		}
		h = h.Normalize()
		inside := Plane{Normal: h, Offset: h.Dot(a)}
		if inside.Distance(c) < 0 {
			inside = inside.Flip()
		}
		if out, clip := ClipToFront(rest, inside.Flip(), eps); clip != ClipAll {
			pieces = append(pieces, out)
		}
		var clip Clip
		if rest, clip = ClipToFront(rest, inside, eps); clip == ClipAll {
			return pieces, false
		}
	}
	return pieces, true
}

// Dedup removes consecutive vertices of the closed polygon p that lie within eps
// of each other.
func Dedup(p []r3.Vector, eps float64) []r3.Vector {
	out := p[:0:0]
	for _, v := range p {
		if len(out) > 0 && out[len(out)-1].Distance(v) <= eps {
			continue
		}
		out = append(out, v)
	}
	for len(out) > 1 && out[0].Distance(out[len(out)-1]) <= eps {
		out = out[:len(out)-1]
	}
	return out
}

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b r3.Vector) r3.Vector {
	return a.Add(b).Mul(0.5)
}

// Subdivide splits p into four sub-patches of the same orientation.
// A quadrilateral is cut into quadrants through its edge midpoints and vertex
// average, a triangle into four triangles through its edge midpoints. Larger
// polygons are fanned into triangles from the first vertex.
func Subdivide(p []r3.Vector) [][]r3.Vector {
	switch len(p) {
	case 3:
		m01 := Midpoint(p[0], p[1])
		m12 := Midpoint(p[1], p[2])
		m20 := Midpoint(p[2], p[0])
		return [][]r3.Vector{
			{p[0], m01, m20},
			{m01, p[1], m12},
			{m20, m12, p[2]},
			{m01, m12, m20},
		}
	case 4:
		c := Average(p)
		m01 := Midpoint(p[0], p[1])
		m12 := Midpoint(p[1], p[2])
		m23 := Midpoint(p[2], p[3])
		m30 := Midpoint(p[3], p[0])
		return [][]r3.Vector{
			{p[0], m01, c, m30},
			{m01, p[1], m12, c},
			{c, m12, p[2], m23},
			{m30, c, m23, p[3]},
		}
	}
	return Fan(p)
}

// Fan triangulates the convex polygon p from its first vertex.
func Fan(p []r3.Vector) [][]r3.Vector {
	out := make([][]r3.Vector, 0, len(p)-2)
	for i := 1; i+1 < len(p); i++ {
		out = append(out, []r3.Vector{p[0], p[i], p[i+1]})
	}
	return out
}

// SamplePoints returns quadrature points of p with weights summing to one.
// The polygon is subdivided level times and each sub-patch is fanned into
// triangles sampled with the three-point interior rule.
func SamplePoints(p []r3.Vector, level int) ([]r3.Vector, []float64) {
	patches := [][]r3.Vector{p}
	for range level {
		next := make([][]r3.Vector, 0, 4*len(patches))
		for _, q := range patches {
			next = append(next, Subdivide(q)...)
		}
		patches = next
	}

	var pts []r3.Vector
	var ws []float64
	var total float64
	for _, q := range patches {
		for _, t := range Fan(q) {
			a := Area(t)
			if a == 0 {
				continue
			}
			for k := range 3 {
				x := t[k].Mul(2.0 / 3).Add(t[(k+1)%3].Mul(1.0 / 6)).Add(t[(k+2)%3].Mul(1.0 / 6))
				pts = append(pts, x)
				ws = append(ws, a/3)
			}
			total += a
		}
	}
	for i := range ws {
		ws[i] /= total
	}
	return pts, ws
}
