// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package geom

import (
	"github.com/golang/geo/r3"
)

// Hit classifies the contact between a segment or point and a polygon.
type Hit int

const (
	// Miss means no contact.
	Miss Hit = iota
	// Graze means contact within tolerance of the polygon boundary or plane.
	Graze
	// Cross means a clean crossing of the polygon interior.
	Cross
)

func (h Hit) String() string {
	switch h {
	case Miss:
		return "miss"
	case Graze:
		return "graze"
	case Cross:
		return "cross"
	}
	return "unknown"
}

// PointInConvex classifies a point x lying in the plane of the convex polygon p
// with normal n. Points farther than eps inside every edge are Cross.
func PointInConvex(x r3.Vector, p []r3.Vector, n r3.Vector, eps float64) Hit {
	hit := Cross
	k := len(p)
	for i := range k {
		e := p[(i+1)%k].Sub(p[i])
		l := e.Norm()
		if l == 0 {
			continue
		}
		s := e.Cross(x.Sub(p[i])).Dot(n) / l
		if s < -eps {
			return Miss
		}
		if s <= eps {
			hit = Graze
		}
	}
	return hit
}

// SegmentHit classifies the segment from a to b against the convex polygon p
// lying in plane pl. A segment that only touches the plane at an endpoint, or
// lies in the plane, is at most a Graze.
func SegmentHit(a, b r3.Vector, p []r3.Vector, pl Plane, eps float64) Hit {
	da := pl.Distance(a)
	db := pl.Distance(b)
	if (da > eps && db > eps) || (da < -eps && db < -eps) {
		return Miss
	}
	if da >= -eps && da <= eps && db >= -eps && db <= eps {
		return Graze
	}

	t := da / (da - db)
	x := a.Add(b.Sub(a).Mul(t))
	hit := PointInConvex(x, p, pl.Normal, eps)
	if hit == Cross && (da >= -eps && da <= eps || db >= -eps && db <= eps) {
		return Graze
	}
	return hit
}
