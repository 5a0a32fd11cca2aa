// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package contour computes unobstructed exchange areas A1·F12 between planar
// polygons by the single line integral method of Mitalas and Stephenson.
//
// Stokes' theorem turns the double area integral into a double contour
// integral. The inner integral along each edge of the second polygon has a
// closed form; the outer one along each edge of the first polygon is evaluated
// with adaptive Simpson quadrature. Pairs of collinear edges use the exact
// solution because the integrand is singular there.
package contour

import (
	"errors"
	"math"

	"github.com/2dChan/viewfactor/geom"
	"github.com/golang/geo/r3"
)

const (
	defaultEps      = 1e-4
	defaultMaxDepth = 12

	maxDepthLimit = 40

	// Thresholds in normalized coordinates where polygons span about one unit.
	eps  = 1e-6
	eps2 = 1e-12
)

var (
	// ErrInvalidOption is returned by options with out-of-range values.
	ErrInvalidOption = errors.New("contour: invalid option")
	// ErrInvalidPolygon is returned for polygons with fewer than three vertices.
	ErrInvalidPolygon = errors.New("contour: polygon needs at least 3 vertices")
)

// Options configures an Integrator.
type Options struct {
	// Eps is the convergence tolerance of the adaptive quadrature relative to
	// the smaller polygon area.
	Eps float64
	// MaxDepth bounds the number of adaptive bisections per edge pair.
	MaxDepth int
}

// Option sets a field of Options.
type Option func(*Options) error

// WithEps sets the relative quadrature tolerance. It must be positive.
func WithEps(eps float64) Option {
	return func(o *Options) error {
		if eps <= 0 || math.IsNaN(eps) {
			return ErrInvalidOption
		}
		o.Eps = eps
		return nil
	}
}

// WithMaxDepth sets the adaptive bisection limit, between 1 and 40.
func WithMaxDepth(n int) Option {
	return func(o *Options) error {
		if n < 1 || n > maxDepthLimit {
			return ErrInvalidOption
		}
		o.MaxDepth = n
		return nil
	}
}

// Result is the outcome of one exchange-area evaluation.
type Result struct {
	// AF is the exchange area A1·F12, never negative.
	AF float64
	// Converged is false when some edge pair hit the bisection limit.
	Converged bool
	// Evaluations counts calls of the point-to-edge kernel.
	Evaluations int
}

// Integrator evaluates exchange areas. It holds only configuration and is safe
// for concurrent use.
type Integrator struct {
	opts Options
}

// NewIntegrator returns an Integrator configured by opts.
func NewIntegrator(opts ...Option) (*Integrator, error) {
	o := Options{
		Eps:      defaultEps,
		MaxDepth: defaultMaxDepth,
	}
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return nil, err
		}
	}
	return &Integrator{opts: o}, nil
}

// Options returns the configuration of in.
func (in *Integrator) Options() Options {
	return in.opts
}

// ExchangeArea returns A1·F12 for the planar polygons p1 and p2 with no
// obstruction between them. Both polygons must face each other; surfaces
// behind one another have to be clipped by the caller.
func (in *Integrator) ExchangeArea(p1, p2 []r3.Vector) (Result, error) {
	if len(p1) < 3 || len(p2) < 3 {
		return Result{}, ErrInvalidPolygon
	}

	// Work in coordinates where the pair spans about one unit so that the
	// kernel thresholds do not depend on the model's units.
	box := geom.BoundOf(p1, p2)
	scale := box.Diagonal()
	if scale == 0 {
		return Result{Converged: true}, nil
	}
	origin := box.Lo
	v1 := normalized(p1, origin, scale)
	v2 := normalized(p2, origin, scale)

	minArea := math.Min(geom.Area(v1), geom.Area(v2))
	w := &walker{
		epsAF:    in.opts.Eps * minArea,
		maxDepth: in.opts.MaxDepth,
		ok:       true,
	}
	af := w.sum(v1, v2) * scale * scale
	if af < 0 || math.IsNaN(af) {
		af = 0
	}
	return Result{AF: af, Converged: w.ok, Evaluations: w.evals}, nil
}

// PointFactor returns the view factor from a differential area at x with unit
// normal n to the planar polygon p, which must lie in front of x. The sum over
// the edges of p is exact.
func PointFactor(x, n r3.Vector, p []r3.Vector) float64 {
	var sum float64
	for i := range p {
		a := p[i].Sub(x)
		b := p[(i+1)%len(p)].Sub(x)
		c := a.Cross(b)
		l := c.Norm()
		if l == 0 {
			continue
		}
		sum += math.Atan2(l, a.Dot(b)) * n.Dot(c) / l
	}
	return math.Abs(sum) / (2 * math.Pi)
}

func normalized(p []r3.Vector, origin r3.Vector, scale float64) []r3.Vector {
	out := make([]r3.Vector, len(p))
	for i, v := range p {
		out[i] = v.Sub(origin).Mul(1 / scale)
	}
	return out
}

// walker carries the per-evaluation state of the adaptive quadrature.
type walker struct {
	epsAF    float64
	maxDepth int
	ok       bool
	evals    int
}

// edge is an edge of the second polygon with its cached length.
type edge struct {
	b0, b1 r3.Vector
	b      r3.Vector
	b2     float64
}

func (w *walker) sum(v1, v2 []r3.Vector) float64 {
	n1 := len(v1)
	a := make([]r3.Vector, n1)
	al := make([]float64, n1)
	for i := range n1 {
		a[i] = v1[i].Sub(v1[(i+n1-1)%n1])
		al[i] = a[i].Norm()
	}

	var sum float64
	n2 := len(v2)
	for j := range n2 {
		e := edge{b0: v2[(j+n2-1)%n2], b1: v2[j]}
		e.b = e.b1.Sub(e.b0)
		e.b2 = e.b.Norm2()
		bl := math.Sqrt(e.b2)
		if bl < eps {
			continue
		}

		for i := range n1 {
			if al[i] < eps {
				continue
			}
			dot := e.b.Dot(a[i]) / (bl * al[i])
			if math.Abs(dot) <= eps {
				continue
			}
			p0 := v1[(i+n1-1)%n1]
			p2 := v1[i]
			f0, c0 := w.part(p0, e)
			f2, c2 := w.part(p2, e)

			var t float64
			if c0 && c2 {
				t = exact(p0, p2, al[i], e.b0, e.b1, bl)
			} else {
				p1 := geom.Midpoint(p0, p2)
				f1, _ := w.part(p1, e)
				t = w.adapt([3]r3.Vector{p0, p1, p2}, [3]float64{f0, f1, f2}, al[i]/6, e, 0) / bl
			}
			sum += dot * t
		}
	}
	return sum / (4 * math.Pi)
}

// part returns the closed-form inner integral from point p to edge e. The
// second result reports that p is collinear with e.
func (w *walker) part(p r3.Vector, e edge) (float64, bool) {
	w.evals++
	var sum float64

	s := p.Sub(e.b0)
	s2 := s.Norm2()
	if s2 > eps2 {
		sum += s.Dot(e.b) * math.Log(s2)
	}

	t := e.b1.Sub(p)
	t2 := t.Norm2()
	if t2 > eps2 {
		sum += t.Dot(e.b) * math.Log(t2)
	}

	sxb2 := s.Cross(e.b).Norm2()
	if sxb2 <= eps2*e.b2 {
		return sum - 2*e.b2, true
	}
	h := s2 + t2 - e.b2
	g := math.Sqrt(sxb2)
	omega := math.Pi/2 - math.Atan(0.5*h/g)
	return sum + 2*(g*omega-e.b2), false
}

// adapt integrates part over the segment sampled at p with Simpson's rule,
// bisecting until two successive estimates agree within epsAF.
func (w *walker) adapt(p [3]r3.Vector, f [3]float64, h float64, e edge, depth int) float64 {
	f3 := h * (f[0] + 4*f[1] + f[2])

	q1 := geom.Midpoint(p[0], p[1])
	q3 := geom.Midpoint(p[1], p[2])
	g1, _ := w.part(q1, e)
	g3, _ := w.part(q3, e)
	h *= 0.5
	f5 := h * (f[0] + 4*g1 + 2*f[1] + 4*g3 + f[2])

	if math.Abs(f5-f3) <= w.epsAF {
		return f5
	}
	if depth+1 > w.maxDepth {
		w.ok = false
		return f5
	}
	return w.adapt([3]r3.Vector{p[0], q1, p[1]}, [3]float64{f[0], g1, f[1]}, h, e, depth+1) +
		w.adapt([3]r3.Vector{p[1], q3, p[2]}, [3]float64{f[1], g3, f[2]}, h, e, depth+1)
}

// exact integrates the kernel analytically over the collinear edges a0-a1 of
// length a and b0-b1 of length b.
func exact(a0, a1 r3.Vector, a float64, b0, b1 r3.Vector, b float64) float64 {
	e2 := a1.Sub(b0).Norm2()
	d2 := a0.Sub(b1).Norm2()
	if e2 < eps2 && d2 < eps2 {
		return b * b * (math.Log(b*b) - 3)
	}

	var sum float64
	if e2 > eps2 {
		sum += e2 - e2*math.Log(e2)
	}
	if d2 > eps2 {
		sum += d2 - d2*math.Log(d2)
	}
	if c2 := a0.Sub(b0).Norm2(); c2 > eps2 {
		sum += c2*math.Log(c2) - c2
	}
	if f2 := a1.Sub(b1).Norm2(); f2 > eps2 {
		sum += f2*math.Log(f2) - f2
	}
	return 0.5*sum - 2*a*b
}
