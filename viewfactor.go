// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package viewfactor computes radiative view factors between the planar
// surfaces of a catalog, accounting for obstructing surfaces.
//
// Unobstructed pairs are integrated exactly over their contours. Pairs with
// candidate obstructions are refined by adaptive subdivision. The raw matrix is
// then made reciprocal and, on request, normalized for a closed enclosure,
// aggregated over subsurfaces and combined surfaces, and turned into
// gray-diffuse exchange factors.
package viewfactor

import (
	"fmt"
	"math"
	"time"

	"github.com/2dChan/viewfactor/catalog"
	"github.com/2dChan/viewfactor/contour"
	"github.com/2dChan/viewfactor/normalize"
	"github.com/2dChan/viewfactor/subdivide"
	"github.com/2dChan/viewfactor/visibility"
	"gonum.org/v1/gonum/mat"
)

const (
	// The contour quadrature runs this much tighter than the subdivision so
	// that its error does not mask the subdivision tolerance.
	lineIntegralRatio  = 1e-3
	minLineIntegralEps = 1e-8
)

// Compute returns the view-factor matrix of the radiating surfaces of cat.
func Compute(cat *catalog.Catalog, opts ...Option) (*Result, error) {
	o, err := NewSolverOptions(opts...)
	if err != nil {
		return nil, err
	}
	start := time.Now()

	ids := cat.Radiating()
	n := len(ids)
	if n == 0 {
		return &Result{enclosure: o.Enclosure, stats: Stats{EnclosureVolume: cat.EnclosureVolume()}}, nil
	}
	rows, cols, err := o.ranges(n)
	if err != nil {
		return nil, err
	}

	s, err := newPairSolver(cat, ids, o)
	if err != nil {
		return nil, err
	}

	var tasks []pairTask
	for i := rows[0]; i < rows[1]; i++ {
		for j := cols[0]; j < cols[1]; j++ {
			if i == j {
				s.arena.Set(i, j, 0)
				continue
			}
			tasks = append(tasks, pairTask{ID: len(tasks), Row: i, Col: j})
		}
	}

	wp := newWorkerPool(s, len(tasks), o.Workers)
	wp.Start()
	for _, t := range tasks {
		wp.Submit(t)
	}
	wp.Stop()
	results := make([]pairResult, len(tasks))
	for r, ok := wp.Result(); ok; r, ok = wp.Result() {
		results[r.ID] = r
	}

	var (
		stats    Stats
		warnings []Warning
	)
	for _, r := range results {
		if r.Error != nil {
			return nil, r.Error
		}
		stats.add(r.Stats)
		warnings = append(warnings, r.Warnings...)
	}
	if stats.Obstructed > 0 {
		stats.Candidates /= float64(stats.Obstructed)
	}
	stats.EnclosureVolume = cat.EnclosureVolume()

	res, devs, err := finish(cat, ids, s.arena, o)
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, devs...)
	sortWarnings(warnings)
	res.warnings = warnings
	stats.RowSumMaxError, stats.RowSumRMSError = normalize.RowSumErrors(res.f)
	res.stats = stats

	for _, w := range warnings {
		o.Logger.Printf("viewfactor: %v", w)
	}
	o.Logger.Printf("viewfactor: %d surfaces, %d pairs (%d obstructed, %d without view), %d forced, row sum error %.2e max in %v",
		n, stats.Pairs, stats.Obstructed, stats.NoView, stats.Forced, stats.RowSumMaxError, time.Since(start))
	return res, nil
}

func newPairSolver(cat *catalog.Catalog, ids []int, o *SolverOptions) (*pairSolver, error) {
	var obs []visibility.Obstruction
	for _, id := range cat.Obstructions() {
		pieces, err := cat.Pieces(id)
		if err != nil {
			return nil, err
		}
		for _, p := range pieces {
			obs = append(obs, visibility.NewObstruction(id, p))
		}
	}
	res, err := visibility.NewResolver(obs, visibility.WithEps(cat.Eps()))
	if err != nil {
		return nil, err
	}
	integ, err := contour.NewIntegrator(
		contour.WithEps(math.Max(o.Tolerance*lineIntegralRatio, minLineIntegralEps)),
		contour.WithMaxDepth(o.LineIntegralDepth),
	)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrInvalidConfiguration)
	}
	ctrl, err := subdivide.NewController(integ, res, subdivide.Config{
		Tolerance: o.Tolerance,
		MinDepth:  o.MinDepth,
		MaxDepth:  o.MaxDepth,
	})
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrInvalidConfiguration)
	}

	n := len(ids)
	arena := mat.NewDense(n, n, nil)
	for i := range n {
		for j := range n {
			arena.Set(i, j, math.NaN())
		}
	}
	return &pairSolver{
		cat:      cat,
		ids:      ids,
		res:      res,
		ctrl:     ctrl,
		eps:      cat.Eps(),
		reversed: o.ReversedProjection,
		timeout:  o.PairTimeout,
		arena:    arena,
	}, nil
}

// ranges returns the 0-based half-open row and column ranges.
func (o *SolverOptions) ranges(n int) ([2]int, [2]int, error) {
	rows, cols := [2]int{0, n}, [2]int{0, n}
	if o.FirstRow != 0 {
		if o.LastRow > n {
			return rows, cols, fmt.Errorf("rows [%d, %d] of %d surfaces: %w", o.FirstRow, o.LastRow, n, ErrInvalidConfiguration)
		}
		rows = [2]int{o.FirstRow - 1, o.LastRow}
	}
	if o.FirstCol != 0 {
		if o.LastCol > n {
			return rows, cols, fmt.Errorf("columns [%d, %d] of %d surfaces: %w", o.FirstCol, o.LastCol, n, ErrInvalidConfiguration)
		}
		cols = [2]int{o.FirstCol - 1, o.LastCol}
	}
	return rows, cols, nil
}

func (st *Stats) add(p pairStats) {
	st.Pairs++
	st.Nodes += p.nodes
	st.Forced += p.forced
	switch {
	case p.noView:
		st.NoView++
	case p.obstructed:
		st.Obstructed++
		st.Candidates += float64(p.candidates)
	default:
		st.Unobstructed++
	}
	if p.lineIntegral {
		st.LineIntegralFailures++
	}
}

// finish runs the post-processing passes on the raw arena.
func finish(cat *catalog.Catalog, ids []int, arena *mat.Dense, o *SolverOptions) (*Result, []Warning, error) {
	n := len(ids)
	areas := make([]float64, n)
	emissivity := make([]float64, n)
	base := make([]int, n)
	into := make([]int, n)
	pos := make(map[int]int, n)
	for i, id := range ids {
		pos[id] = i
	}
	separate, merge := false, false
	for i, id := range ids {
		sf, err := cat.Surface(id)
		if err != nil {
			return nil, nil, err
		}
		if areas[i], err = cat.Area(id); err != nil {
			return nil, nil, err
		}
		emissivity[i] = sf.Emissivity
		base[i], into[i] = -1, -1
		if sf.Base != 0 {
			base[i] = pos[sf.Base]
			separate = true
			if !o.SeparateSubsurfaces {
				into[i] = base[i]
				merge = true
			}
		}
		if sf.Combine != 0 {
			into[i] = pos[sf.Combine]
			merge = true
		}
	}

	f := arena
	if err := normalize.Reciprocity(f, areas); err != nil {
		return nil, nil, err
	}
	if separate {
		if err := normalize.Separate(f, areas, base); err != nil {
			return nil, nil, fmt.Errorf("%v: %w", err, ErrDegenerateGeometry)
		}
	}

	var warnings []Warning
	if o.Enclosure {
		cfg := normalize.DefaultConfig()
		cfg.Sanity = o.EnclosureSanity
		devs, err := normalize.Enclosure(f, areas, cfg)
		if err != nil {
			return nil, nil, err
		}
		for _, d := range devs {
			warnings = append(warnings, Warning{
				Kind:    EnclosureInconsistency,
				Row:     ids[d.Row],
				Message: fmt.Sprintf("row sum %.6g before normalization", d.RowSum),
			})
		}
	}

	if merge {
		m, err := normalize.Merge(f, areas, emissivity, into)
		if err != nil {
			return nil, nil, err
		}
		f, areas, emissivity = m.F, m.Areas, m.Emissivity
		kept := make([]int, len(m.Index))
		for k, i := range m.Index {
			kept[k] = ids[i]
		}
		ids = kept
	}

	res := &Result{
		ids:        ids,
		areas:      areas,
		emissivity: emissivity,
		f:          f,
		enclosure:  o.Enclosure,
	}
	if o.Emittances {
		ex, err := normalize.ExchangeFactors(f, areas, emissivity, o.Enclosure)
		if err != nil {
			return nil, nil, err
		}
		res.exchange = ex
	}
	return res, warnings, nil
}
