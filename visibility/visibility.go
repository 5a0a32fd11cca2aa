// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package visibility decides whether obstructing polygons block the view
// between two convex planar polygons.
//
// The lines of sight between convex polygons A and B fill exactly the convex
// hull of A ∪ B. Only obstructions separated from that hull by more than the
// tolerance are culled; one touching the hull stays a candidate and makes the
// pair partially obstructed.
//
// The visible fraction of a partially obstructed pair is integrated over
// viewpoints on A. From each viewpoint the shadows of the candidates are
// projected onto the plane of B and cut out of B, and the exact point-to-polygon
// factor of what remains is compared with that of the whole of B.
package visibility

import (
	"errors"
	"math"
	"slices"

	"github.com/2dChan/viewfactor/contour"
	"github.com/2dChan/viewfactor/geom"
	"github.com/golang/geo/r3"
	"github.com/markus-wa/quickhull-go/v2"
)

const (
	defaultEps         = 1e-9
	defaultSampleLevel = 1

	maxSampleLevel = 4

	// Obstruction parts closer to the plane through the viewpoint parallel to
	// the target than this fraction of the viewpoint distance are ignored.
	horizon = 1e-6
)

// ErrInvalidOption is returned by options with out-of-range values.
var ErrInvalidOption = errors.New("visibility: invalid option")

// Visibility classifies the view between two polygons.
type Visibility int

const (
	// None means no obstruction blocks any line of sight.
	None Visibility = iota
	// Partial means some lines of sight may be blocked.
	Partial
	// Full means every line of sight is blocked.
	Full
)

func (v Visibility) String() string {
	switch v {
	case None:
		return "none"
	case Partial:
		return "partial"
	case Full:
		return "full"
	}
	return "unknown"
}

// Obstruction is a convex planar polygon that may block lines of sight.
type Obstruction struct {
	// ID is the surface the polygon belongs to.
	ID      int
	Polygon []r3.Vector

	plane geom.Plane
	box   geom.Box
}

// NewObstruction returns an Obstruction for a convex polygon of surface id.
func NewObstruction(id int, polygon []r3.Vector) Obstruction {
	return Obstruction{
		ID:      id,
		Polygon: polygon,
		plane:   geom.PlaneOf(polygon),
		box:     geom.BoundOf(polygon),
	}
}

// Classification is the result of Resolver.Classify.
type Classification struct {
	Visibility Visibility
	// Candidates are the obstructions that may block the pair. Sub-patches of
	// the pair inherit them.
	Candidates []int
	// Visible is the fraction of the exchange area left after the shadows of
	// the candidates are cut out, integrated over viewpoints on the first
	// polygon. It is set for Partial only.
	Visible float64
	// Grazing reports that some candidate cast no shadow on the second polygon
	// from any viewpoint, as an obstruction touching the lines of sight does.
	Grazing bool
}

// Options configures a Resolver.
type Options struct {
	// Eps is the absolute length tolerance of the geometric tests.
	Eps float64
	// SampleLevel is the number of subdivisions applied to the first polygon
	// before placing the viewpoints of the visible fraction.
	SampleLevel int
}

// Option sets a field of Options.
type Option func(*Options) error

// WithEps sets the absolute geometric tolerance. It must be positive.
func WithEps(eps float64) Option {
	return func(o *Options) error {
		if eps <= 0 || math.IsNaN(eps) {
			return ErrInvalidOption
		}
		o.Eps = eps
		return nil
	}
}

// WithSampleLevel sets the sampling density, between 0 and 4.
func WithSampleLevel(level int) Option {
	return func(o *Options) error {
		if level < 0 || level > maxSampleLevel {
			return ErrInvalidOption
		}
		o.SampleLevel = level
		return nil
	}
}

// Resolver classifies polygon pairs against a fixed set of obstructions.
// It is safe for concurrent use.
type Resolver struct {
	obs  []Obstruction
	opts Options
}

// NewResolver returns a Resolver over obs. Candidate lists refer to
// obstructions by their index in obs.
func NewResolver(obs []Obstruction, opts ...Option) (*Resolver, error) {
	o := Options{
		Eps:         defaultEps,
		SampleLevel: defaultSampleLevel,
	}
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return nil, err
		}
	}
	return &Resolver{obs: append([]Obstruction(nil), obs...), opts: o}, nil
}

// NumObstructions returns the number of obstructions of r.
func (r *Resolver) NumObstructions() int {
	return len(r.obs)
}

// Obstruction returns the obstruction at index i.
func (r *Resolver) Obstruction(i int) Obstruction {
	return r.obs[i]
}

// Candidates returns the indices of all obstructions not belonging to one of
// the excluded surface IDs.
func (r *Resolver) Candidates(exclude ...int) []int {
	out := make([]int, 0, len(r.obs))
next:
	for i, o := range r.obs {
		for _, id := range exclude {
			if o.ID == id {
				continue next
			}
		}
		out = append(out, i)
	}
	return out
}

// Classify decides how the candidates block the view from p1 to p2. Both
// polygons must be convex and face each other.
func (r *Resolver) Classify(p1, p2 []r3.Vector, candidates []int) Classification {
	c := r.Filter(p1, p2, candidates)
	if len(c) == 0 {
		return Classification{Visibility: None}
	}
	if r.blocksAll(p1, p2, c) {
		return Classification{Visibility: Full, Candidates: c}
	}
	visible, grazing := r.sample(p1, p2, c)
	return Classification{Visibility: Partial, Candidates: c, Visible: visible, Grazing: grazing}
}

// Filter returns the candidates that may block some line of sight between p1
// and p2, in their original order.
func (r *Resolver) Filter(p1, p2 []r3.Vector, candidates []int) []int {
	eps := r.opts.Eps
	pl1 := geom.PlaneOf(p1)
	pl2 := geom.PlaneOf(p2)
	box := geom.BoundOf(p1, p2)

	out := make([]int, 0, len(candidates))
	for _, k := range candidates {
		o := &r.obs[k]
		// Behind either polygon.
		if _, hi := pl1.Extent(o.Polygon); hi < -eps {
			continue
		}
		if _, hi := pl2.Extent(o.Polygon); hi < -eps {
			continue
		}
		// Both polygons strictly on one side of the obstruction plane.
		lo1, hi1 := o.plane.Extent(p1)
		lo2, hi2 := o.plane.Extent(p2)
		if math.Min(lo1, lo2) > eps || math.Max(hi1, hi2) < -eps {
			continue
		}
		if !box.Overlaps(o.box, eps) {
			continue
		}
		out = append(out, k)
	}
	if len(out) == 0 {
		return out
	}

	h, ok := newHull(p1, p2, eps)
	if !ok {
		return out
	}
	kept := out[:0]
	for _, k := range out {
		if !h.separated(&r.obs[k], eps) {
			kept = append(kept, k)
		}
	}
	return kept
}

// blocksAll reports whether a single candidate blocks every line of sight. The
// crossing points of all segments between two convex sets on opposite sides
// of a plane lie in the convex hull of the crossings of vertex pairs, so it is
// enough to test those.
func (r *Resolver) blocksAll(p1, p2 []r3.Vector, candidates []int) bool {
	eps := r.opts.Eps
	for _, k := range candidates {
		o := &r.obs[k]
		lo1, hi1 := o.plane.Extent(p1)
		lo2, hi2 := o.plane.Extent(p2)
		if !(lo1 > eps && hi2 < -eps) && !(hi1 < -eps && lo2 > eps) {
			continue
		}
		all := true
		for _, a := range p1 {
			da := o.plane.Distance(a)
			for _, b := range p2 {
				db := o.plane.Distance(b)
				x := a.Add(b.Sub(a).Mul(da / (da - db)))
				if geom.PointInConvex(x, o.Polygon, o.plane.Normal, eps) != geom.Cross {
					all = false
					break
				}
			}
			if !all {
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}

// sample returns the visible fraction of the exchange area from p1 to p2 and
// whether some candidate cast no shadow at all.
func (r *Resolver) sample(p1, p2 []r3.Vector, candidates []int) (float64, bool) {
	pts, ws := geom.SamplePoints(p1, r.opts.SampleLevel)
	pl1 := geom.PlaneOf(p1)
	pl2 := geom.PlaneOf(p2)

	cast := make([]bool, len(candidates))
	var total, visible float64
	for i, x := range pts {
		f := contour.PointFactor(x, pl1.Normal, p2)
		if f <= 0 {
			continue
		}
		total += ws[i] * f
		for _, q := range r.unshadowed(x, pl1, pl2, p2, candidates, cast) {
			visible += ws[i] * contour.PointFactor(x, pl1.Normal, q)
		}
	}
	grazing := slices.Contains(cast, false)
	if total == 0 {
		return 0, grazing
	}
	return math.Min(visible/total, 1), grazing
}

// unshadowed returns the convex parts of p2 seen from the point x of the plane
// pl1 past the candidates. cast[i] is set when candidates[i] shadows part of p2.
func (r *Resolver) unshadowed(x r3.Vector, pl1, pl2 geom.Plane, p2 []r3.Vector, candidates []int, cast []bool) [][]r3.Vector {
	eps := r.opts.Eps
	dx := pl2.Distance(x)
	margin := math.Max(dx*horizon, 2*eps)
	if dx <= margin {
		return nil
	}
	// Keeps the points strictly nearer to pl2 than x, which project onto pl2.
	near := geom.Plane{
		Normal: pl2.Normal.Mul(-1),
		Offset: -pl2.Offset - (dx - margin),
	}

	parts := [][]r3.Vector{p2}
	for i, k := range candidates {
		q, clip := geom.ClipToFront(r.obs[k].Polygon, pl1, eps)
		if clip == geom.ClipAll {
			continue
		}
		if q, clip = geom.ClipToFront(q, pl2, eps); clip == geom.ClipAll {
			continue
		}
		if q, clip = geom.ClipToFront(q, near, eps); clip == geom.ClipAll {
			continue
		}
		shadow := geom.Dedup(geom.Project(q, x, pl2), eps)
		if len(shadow) < 3 || geom.Area(shadow) <= eps*eps {
			continue
		}

		if !cast[i] {
			_, cast[i] = geom.Difference(p2, shadow, pl2.Normal, eps)
		}
		next := parts[:0:0]
		for _, p := range parts {
			pieces, _ := geom.Difference(p, shadow, pl2.Normal, eps)
			next = append(next, pieces...)
		}
		parts = next
	}
	return parts
}

// hull is the convex hull of the union of two polygons.
type hull struct {
	points []r3.Vector
	axes   []r3.Vector
	edges  []r3.Vector
}

func newHull(p1, p2 []r3.Vector, eps float64) (*hull, bool) {
	pts := make([]r3.Vector, 0, len(p1)+len(p2))
	pts = append(pts, p1...)
	pts = append(pts, p2...)

	// quickhull needs a solid hull.
	pl := geom.PlaneOf(p1)
	if lo, hi := pl.Extent(p2); lo >= -eps && hi <= eps {
		return nil, false
	}

	qh := new(quickhull.QuickHull)
	ch := qh.ConvexHull(pts, true, true, eps)
	if len(ch.Indices) < 12 || len(ch.Indices)%3 != 0 {
		return nil, false
	}

	h := &hull{points: pts}
	seen := make(map[[2]int]struct{})
	for t := 0; t < len(ch.Indices); t += 3 {
		i, j, k := ch.Indices[t], ch.Indices[t+1], ch.Indices[t+2]
		if i < 0 || j < 0 || k < 0 || i >= len(pts) || j >= len(pts) || k >= len(pts) {
			return nil, false
		}
		if n := pts[j].Sub(pts[i]).Cross(pts[k].Sub(pts[i])); n.Norm() > eps*eps {
			h.axes = append(h.axes, n.Normalize())
		}
		for _, e := range [3][2]int{{i, j}, {j, k}, {k, i}} {
			if e[0] > e[1] {
				e[0], e[1] = e[1], e[0]
			}
			if _, ok := seen[e]; ok {
				continue
			}
			seen[e] = struct{}{}
			if d := pts[e[1]].Sub(pts[e[0]]); d.Norm() > eps {
				h.edges = append(h.edges, d)
			}
		}
	}
	return h, true
}

// separated reports whether some axis separates the hull from o by a gap
// larger than eps.
func (h *hull) separated(o *Obstruction, eps float64) bool {
	for _, u := range h.axes {
		if h.gap(o, u, eps) {
			return true
		}
	}
	if h.gap(o, o.plane.Normal, eps) {
		return true
	}
	n := len(o.Polygon)
	for i := range n {
		e := o.Polygon[(i+1)%n].Sub(o.Polygon[i])
		if h.gap(o, o.plane.Normal.Cross(e), eps) {
			return true
		}
		for _, f := range h.edges {
			if h.gap(o, e.Cross(f), eps) {
				return true
			}
		}
	}
	return false
}

func (h *hull) gap(o *Obstruction, u r3.Vector, eps float64) bool {
	l := u.Norm()
	if l <= 1e-12 {
		return false
	}
	u = u.Mul(1 / l)
	hlo, hhi := project(h.points, u)
	olo, ohi := project(o.Polygon, u)
	return ohi < hlo-eps || hhi < olo-eps
}

func project(p []r3.Vector, u r3.Vector) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range p {
		d := u.Dot(v)
		lo = math.Min(lo, d)
		hi = math.Max(hi, d)
	}
	return lo, hi
}
