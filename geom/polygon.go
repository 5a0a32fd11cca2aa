// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package geom provides helpers for planar convex polygons embedded in 3-D space:
// area and orientation, supporting planes, half-space clipping, subdivision into
// sub-patches, quadrature points and segment intersection.
//
// Polygons are plain vertex slices. A polygon faces the side from which its
// vertices appear counter-clockwise.
package geom

import (
	"math"

	"github.com/golang/geo/r3"
)

// Newell returns the area vector of p. Its length is twice the area of p and it
// points to the front side of p.
func Newell(p []r3.Vector) r3.Vector {
	var n r3.Vector
	if len(p) < 3 {
		return n
	}
	o := p[0]
	for i := 1; i+1 < len(p); i++ {
		n = n.Add(p[i].Sub(o).Cross(p[i+1].Sub(o)))
	}
	return n
}

// Area returns the area of the planar polygon p.
func Area(p []r3.Vector) float64 {
	return 0.5 * Newell(p).Norm()
}

// Normal returns the unit normal of p, or the zero vector for a degenerate polygon.
func Normal(p []r3.Vector) r3.Vector {
	return Newell(p).Normalize()
}

// Centroid returns the area centroid of p. Degenerate polygons fall back to the
// vertex average.
func Centroid(p []r3.Vector) r3.Vector {
	if len(p) == 0 {
		return r3.Vector{}
	}
	n := Newell(p)
	var c r3.Vector
	var total float64
	o := p[0]
	for i := 1; i+1 < len(p); i++ {
		w := p[i].Sub(o).Cross(p[i+1].Sub(o)).Dot(n)
		c = c.Add(o.Add(p[i]).Add(p[i+1]).Mul(w / 3))
		total += w
	}
	if total <= 0 {
		return Average(p)
	}
	return c.Mul(1 / total)
}

// Average returns the mean of the vertices of p.
func Average(p []r3.Vector) r3.Vector {
	var c r3.Vector
	for _, v := range p {
		c = c.Add(v)
	}
	return c.Mul(1 / float64(len(p)))
}

// Radius returns the largest distance from c to a vertex of p.
func Radius(p []r3.Vector, c r3.Vector) float64 {
	var r float64
	for _, v := range p {
		r = math.Max(r, v.Distance(c))
	}
	return r
}

// Turn returns the sine of the exterior angle at vertex i of p, signed about
// axis n. It is positive for a left turn and zero for a zero-length edge.
func Turn(p []r3.Vector, i int, n r3.Vector) float64 {
	k := len(p)
	e1 := p[i].Sub(p[(i+k-1)%k])
	e2 := p[(i+1)%k].Sub(p[i])
	l := e1.Norm() * e2.Norm()
	if l == 0 {
		return 0
	}
	return e1.Cross(e2).Dot(n) / l
}

// IsConvex reports whether no vertex of p turns right by more than eps about
// the polygon's own normal.
func IsConvex(p []r3.Vector, eps float64) bool {
	n := Normal(p)
	for i := range p {
		if Turn(p, i, n) < -eps {
			return false
		}
	}
	return true
}

// ConvexPieces returns p itself when it is convex. A concave quadrilateral is
// split into two triangles along the diagonal from its reflex vertex.
func ConvexPieces(p []r3.Vector, eps float64) [][]r3.Vector {
	if len(p) != 4 {
		return [][]r3.Vector{p}
	}
	n := Normal(p)
	for k := range 4 {
		if Turn(p, k, n) < -eps {
			return [][]r3.Vector{
				{p[k], p[(k+1)%4], p[(k+2)%4]},
				{p[(k+2)%4], p[(k+3)%4], p[k]},
			}
		}
	}
	return [][]r3.Vector{p}
}

// Plane is the oriented plane {x : Normal·x = Offset}.
type Plane struct {
	Normal r3.Vector
	Offset float64
}

// PlaneOf returns the supporting plane of p, oriented like p.
func PlaneOf(p []r3.Vector) Plane {
	n := Normal(p)
	return Plane{Normal: n, Offset: n.Dot(Average(p))}
}

// Distance returns the signed distance from x to pl, positive in front.
func (pl Plane) Distance(x r3.Vector) float64 {
	return pl.Normal.Dot(x) - pl.Offset
}

// Flip returns pl with its front and back sides exchanged.
func (pl Plane) Flip() Plane {
	return Plane{Normal: pl.Normal.Mul(-1), Offset: -pl.Offset}
}

// Extent returns the smallest and largest signed distance from the vertices of
// p to pl.
func (pl Plane) Extent(p []r3.Vector) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range p {
		d := pl.Distance(v)
		lo = math.Min(lo, d)
		hi = math.Max(hi, d)
	}
	return lo, hi
}

// Box is an axis-aligned bounding box.
type Box struct {
	Lo, Hi r3.Vector
}

// BoundOf returns the bounding box of all vertices of the given polygons.
func BoundOf(ps ...[]r3.Vector) Box {
	inf := math.Inf(1)
	b := Box{Lo: r3.Vector{X: inf, Y: inf, Z: inf}, Hi: r3.Vector{X: -inf, Y: -inf, Z: -inf}}
	for _, p := range ps {
		for _, v := range p {
			b.Lo = r3.Vector{X: math.Min(b.Lo.X, v.X), Y: math.Min(b.Lo.Y, v.Y), Z: math.Min(b.Lo.Z, v.Z)}
			b.Hi = r3.Vector{X: math.Max(b.Hi.X, v.X), Y: math.Max(b.Hi.Y, v.Y), Z: math.Max(b.Hi.Z, v.Z)}
		}
	}
	return b
}

// Overlaps reports whether b and o intersect after o is grown by eps on every
// side. Boxes touching within eps overlap.
func (b Box) Overlaps(o Box, eps float64) bool {
	return b.Lo.X <= o.Hi.X+eps && o.Lo.X-eps <= b.Hi.X &&
		b.Lo.Y <= o.Hi.Y+eps && o.Lo.Y-eps <= b.Hi.Y &&
		b.Lo.Z <= o.Hi.Z+eps && o.Lo.Z-eps <= b.Hi.Z
}

// Diagonal returns the length of the box diagonal.
func (b Box) Diagonal() float64 {
	if b.Lo.X > b.Hi.X {
		return 0
	}
	return b.Hi.Sub(b.Lo).Norm()
}
