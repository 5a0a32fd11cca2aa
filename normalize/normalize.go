// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package normalize post-processes raw view-factor matrices: reciprocity
// averaging, enclosure normalization, subsurface separation, aggregation of
// combined surfaces and gray-diffuse exchange factors.
//
// Matrices hold view factors F(i, j) in row-major order. NaN marks a cell that
// was not computed. Most operations work internally on exchange areas
// A(i)·F(i, j), which are symmetric for a reciprocal matrix.
package normalize

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

const (
	defaultTolerance = 1e-7
	defaultMaxIter   = 100
	defaultSanity    = 0.1
)

var (
	// ErrDimensionMismatch is returned when vectors do not match the matrix.
	ErrDimensionMismatch = errors.New("normalize: dimension mismatch")
	// ErrSingular is returned when the exchange-factor system has no solution.
	ErrSingular = errors.New("normalize: singular system")
)

// Reciprocity enforces A(i)·F(i, j) = A(j)·F(j, i) in place. When both
// directions are known they are replaced by the averaged exchange divided by
// the respective area; when only one is known the other is derived from it.
func Reciprocity(f *mat.Dense, areas []float64) error {
	n, err := check(f, areas)
	if err != nil {
		return err
	}
	for i := range n {
		for j := i + 1; j < n; j++ {
			fij, fji := f.At(i, j), f.At(j, i)
			var ex float64
			switch {
			case math.IsNaN(fij) && math.IsNaN(fji):
				continue
			case math.IsNaN(fji):
				ex = areas[i] * fij
			case math.IsNaN(fij):
				ex = areas[j] * fji
			default:
				ex = 0.5 * (areas[i]*fij + areas[j]*fji)
			}
			f.Set(i, j, ex/areas[i])
			f.Set(j, i, ex/areas[j])
		}
	}
	return nil
}

// Config controls the enclosure normalization.
type Config struct {
	// Tolerance is the row-sum error at which the symmetric iteration stops.
	Tolerance float64
	// MaxIter bounds the symmetric iteration.
	MaxIter int
	// Sanity is the row-sum deviation beyond which a row is reported.
	Sanity float64
}

// DefaultConfig returns the default enclosure configuration.
func DefaultConfig() Config {
	return Config{Tolerance: defaultTolerance, MaxIter: defaultMaxIter, Sanity: defaultSanity}
}

// Deviation reports a row whose sum was far from its target before scaling.
type Deviation struct {
	// Row is the 0-based row index.
	Row    int
	RowSum float64
}

// Enclosure scales f in place so every row sums to 1. The exchange areas are
// first scaled symmetrically, which keeps reciprocity, and the rows are then
// divided by their sums to remove the remaining error. Rows deviating from 1
// by more than cfg.Sanity before scaling are returned; rows summing to zero
// cannot be scaled and are left unchanged.
func Enclosure(f *mat.Dense, areas []float64, cfg Config) ([]Deviation, error) {
	n, err := check(f, areas)
	if err != nil {
		return nil, err
	}
	var devs []Deviation
	for i, s := range rowSums(f) {
		if math.Abs(s-1) > cfg.Sanity {
			devs = append(devs, Deviation{Row: i, RowSum: s})
		}
	}

	target := make([]float64, n)
	copy(target, areas)
	af := exchange(f, areas)
	balance(af, target, cfg.Tolerance, cfg.MaxIter)
	unexchange(f, af, areas)
	for i, s := range rowSums(f) {
		if s <= 0 || math.IsNaN(s) {
			continue
		}
		for j := range n {
			f.Set(i, j, f.At(i, j)/s)
		}
	}
	return devs, nil
}

// Separate removes subsurfaces from the polygons of their base surfaces.
// base[i] is the index of the surface that geometrically contains surface i,
// or -1. On return the base rows describe the remainder of the base polygon and
// its area is reduced accordingly; areas is updated in place.
func Separate(f *mat.Dense, areas []float64, base []int) error {
	n, err := check(f, areas)
	if err != nil {
		return err
	}
	if len(base) != n {
		return fmt.Errorf("%w: %d bases for %d surfaces", ErrDimensionMismatch, len(base), n)
	}
	af := exchange(f, areas)
	for s, b := range base {
		if b < 0 {
			continue
		}
		if b >= n || b == s {
			return fmt.Errorf("%w: base %d of surface %d", ErrDimensionMismatch, b, s)
		}
		for m := range n {
			if m == b || m == s {
				continue
			}
			v := math.Max(af.At(b, m)-af.At(s, m), 0)
			af.Set(b, m, v)
			af.Set(m, b, math.Max(af.At(m, b)-af.At(m, s), 0))
		}
		af.Set(b, s, 0)
		af.Set(s, b, 0)
		areas[b] -= areas[s]
		if areas[b] <= 0 {
			return fmt.Errorf("%w: subsurfaces of surface %d exceed its area", ErrDimensionMismatch, b)
		}
	}
	unexchange(f, af, areas)
	return nil
}

// Merged is the result of Merge.
type Merged struct {
	F          *mat.Dense
	Areas      []float64
	Emissivity []float64
	// Index maps rows of F to rows of the input matrix.
	Index []int
}

// Merge sums the rows and columns of every surface i with into[i] >= 0 into
// surface into[i] and removes surface i. Areas add up; emissivities are area
// weighted. Targets must not themselves be merged.
func Merge(f *mat.Dense, areas, emissivity []float64, into []int) (Merged, error) {
	n, err := check(f, areas)
	if err != nil {
		return Merged{}, err
	}
	if len(emissivity) != n || len(into) != n {
		return Merged{}, ErrDimensionMismatch
	}
	af := exchange(f, areas)
	area := append([]float64(nil), areas...)
	emit := make([]float64, n)
	for i := range n {
		emit[i] = emissivity[i] * areas[i]
	}
	for s, t := range into {
		if t < 0 {
			continue
		}
		if t >= n || t == s || into[t] >= 0 {
			return Merged{}, fmt.Errorf("%w: merge target %d of surface %d", ErrDimensionMismatch, t, s)
		}
		for m := range n {
			af.Set(t, m, af.At(t, m)+af.At(s, m))
		}
		for m := range n {
			af.Set(m, t, af.At(m, t)+af.At(m, s))
		}
		area[t] += area[s]
		emit[t] += emit[s]
	}

	var index []int
	for i, t := range into {
		if t < 0 {
			index = append(index, i)
		}
	}
	k := len(index)
	out := Merged{
		F:          mat.NewDense(k, k, nil),
		Areas:      make([]float64, k),
		Emissivity: make([]float64, k),
		Index:      index,
	}
	for r, i := range index {
		out.Areas[r] = area[i]
		out.Emissivity[r] = emit[i] / area[i]
		for c, j := range index {
			out.F.Set(r, c, af.At(i, j)/area[i])
		}
	}
	return out, nil
}

// ExchangeFactors returns the gray-diffuse total exchange factors
// ε(i)·[(I − F·R)⁻¹ F](i, j)·ε(j) with R = diag(1 − ε). When enclosure is set
// the rows are rebalanced to sum to ε(i), removing rounding errors.
func ExchangeFactors(f *mat.Dense, areas, emissivity []float64, enclosure bool) (*mat.Dense, error) {
	n, err := check(f, areas)
	if err != nil {
		return nil, err
	}
	if len(emissivity) != n {
		return nil, ErrDimensionMismatch
	}

	a := mat.NewDense(n, n, nil)
	for i := range n {
		for j := range n {
			v := -f.At(i, j) * (1 - emissivity[j])
			if i == j {
				v++
			}
			a.Set(i, j, v)
		}
	}
	var x mat.Dense
	if err := x.Solve(a, f); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) || math.IsInf(float64(cond), 1) {
			return nil, fmt.Errorf("%w: %v", ErrSingular, err)
		}
	}
	for i := range n {
		for j := range n {
			x.Set(i, j, emissivity[i]*x.At(i, j)*emissivity[j])
		}
	}

	if enclosure {
		target := make([]float64, n)
		for i := range n {
			target[i] = areas[i] * emissivity[i]
		}
		af := exchange(&x, areas)
		symmetrize(af)
		balance(af, target, defaultTolerance, 30)
		unexchange(&x, af, areas)
	}
	return &x, nil
}

// RowSumErrors returns the maximum and the root mean square of |Σ F(i, j) − 1|
// over the rows of f. Uncomputed cells are skipped.
func RowSumErrors(f *mat.Dense) (maxErr, rms float64) {
	sums := rowSums(f)
	if len(sums) == 0 {
		return 0, 0
	}
	for _, s := range sums {
		e := math.Abs(s - 1)
		maxErr = math.Max(maxErr, e)
		rms += e * e
	}
	return maxErr, math.Sqrt(rms / float64(len(sums)))
}

func check(f *mat.Dense, areas []float64) (int, error) {
	r, c := f.Dims()
	if r != c || len(areas) != r {
		return 0, fmt.Errorf("%w: %d×%d matrix with %d areas", ErrDimensionMismatch, r, c, len(areas))
	}
	for i, a := range areas {
		if !(a > 0) {
			return 0, fmt.Errorf("%w: area %d is %v", ErrDimensionMismatch, i, a)
		}
	}
	return r, nil
}

func rowSums(f *mat.Dense) []float64 {
	r, c := f.Dims()
	sums := make([]float64, r)
	for i := range r {
		for j := range c {
			if v := f.At(i, j); !math.IsNaN(v) {
				sums[i] += v
			}
		}
	}
	return sums
}

// exchange returns the exchange areas A(i)·F(i, j).
func exchange(f *mat.Dense, areas []float64) *mat.Dense {
	var af mat.Dense
	af.Apply(func(i, _ int, v float64) float64 { return areas[i] * v }, f)
	return &af
}

func unexchange(f, af *mat.Dense, areas []float64) {
	f.Apply(func(i, _ int, v float64) float64 { return v / areas[i] }, af)
}

func symmetrize(af *mat.Dense) {
	n, _ := af.Dims()
	for i := range n {
		for j := i + 1; j < n; j++ {
			v := 0.5 * (af.At(i, j) + af.At(j, i))
			af.Set(i, j, v)
			af.Set(j, i, v)
		}
	}
}

// balance scales the symmetric matrix af toward row sums target, multiplying
// each cell by the mean of the two row corrections so symmetry is kept.
func balance(af *mat.Dense, target []float64, tol float64, maxIter int) {
	n, _ := af.Dims()
	fix := make([]float64, n)
	for range maxIter {
		worst := 0.0
		for i := range n {
			var s float64
			for j := range n {
				s += af.At(i, j)
			}
			fix[i] = 1
			if s > 0 {
				fix[i] = target[i] / s
			}
			worst = math.Max(worst, math.Abs(fix[i]-1))
		}
		if worst <= tol {
			return
		}
		for i := range n {
			for j := range n {
				af.Set(i, j, af.At(i, j)*0.5*(fix[i]+fix[j]))
			}
		}
	}
}
