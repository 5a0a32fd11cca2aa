// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package viewfactor

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/2dChan/viewfactor/catalog"
	"github.com/2dChan/viewfactor/geom"
	"github.com/2dChan/viewfactor/subdivide"
	"github.com/2dChan/viewfactor/visibility"
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
)

const (
	// Exchange areas below this fraction of the larger area are set to zero.
	tinyAF = 1e-12
	// Relative difference below which obstruction distances count as equal.
	projectionTie = 0.002
)

// pairStats is the per-pair contribution to Stats.
type pairStats struct {
	noView       bool
	obstructed   bool
	candidates   int
	nodes        int
	forced       int
	lineIntegral bool
}

// pairSolver computes single matrix cells. It is shared by all workers and
// holds no mutable state apart from the arena, whose cells are written by
// exactly one task each.
type pairSolver struct {
	cat      *catalog.Catalog
	ids      []int
	res      *visibility.Resolver
	ctrl     *subdivide.Controller
	eps      float64
	reversed bool
	timeout  time.Duration

	arena *mat.Dense
}

// solve computes F(row, col) into the arena.
func (s *pairSolver) solve(row, col int) (pairStats, []Warning, error) {
	var st pairStats
	idI, idJ := s.ids[row], s.ids[col]
	piecesI, err := s.cat.Pieces(idI)
	if err != nil {
		return st, nil, err
	}
	piecesJ, err := s.cat.Pieces(idJ)
	if err != nil {
		return st, nil, err
	}
	plI, err := s.cat.Plane(idI)
	if err != nil {
		return st, nil, err
	}
	plJ, err := s.cat.Plane(idJ)
	if err != nil {
		return st, nil, err
	}
	areaI, err := s.cat.Area(idI)
	if err != nil {
		return st, nil, err
	}
	areaJ, err := s.cat.Area(idJ)
	if err != nil {
		return st, nil, err
	}

	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	candidates := s.res.Candidates(idI, idJ)
	var af float64
	viewed := false
	for _, pi := range piecesI {
		a, clip := geom.ClipToFront(pi, plJ, s.eps)
		if clip == geom.ClipAll {
			continue
		}
		for _, pj := range piecesJ {
			b, clip := geom.ClipToFront(pj, plI, s.eps)
			if clip == geom.ClipAll {
				continue
			}
			viewed = true

			cands := s.res.Filter(a, b, candidates)
			var out subdivide.Outcome
			if s.towardRow(a, b, cands) != s.reversed {
				out, err = s.ctrl.Solve(ctx, b, a, cands)
			} else {
				out, err = s.ctrl.Solve(ctx, a, b, cands)
			}
			if err != nil {
				return st, nil, fmt.Errorf("surfaces %d-%d: %w", idI, idJ, err)
			}
			af += out.Value
			st.nodes += out.Nodes
			st.forced += out.Forced
			st.lineIntegral = st.lineIntegral || out.LineIntegralFailed
			if out.Candidates > 0 {
				st.obstructed = true
				st.candidates = max(st.candidates, out.Candidates)
			}
		}
	}
	st.noView = !viewed

	if af < tinyAF*math.Max(areaI, areaJ) {
		af = 0
	}
	s.arena.Set(row, col, af/areaI)

	var warns []Warning
	if st.forced > 0 {
		msg := fmt.Sprintf("%d sub-patch pairs accepted at the depth limit", st.forced)
		if d, ok := ctx.Deadline(); ok && !time.Now().Before(d) {
			msg = fmt.Sprintf("%d sub-patch pairs accepted after the pair timeout", st.forced)
		}
		warns = append(warns, Warning{Kind: PrecisionWarning, Row: idI, Col: idJ, Message: msg})
	}
	if st.lineIntegral {
		warns = append(warns, Warning{Kind: PrecisionWarning, Row: idI, Col: idJ, Message: "line integral did not converge"})
	}
	return st, warns, nil
}

// towardRow reports whether the shadows of the candidates are better cast from
// b onto a. The target should be the polygon nearer to the obstructions;
// distances within projectionTie of each other fall back to the number of
// obstructions in front of each polygon.
func (s *pairSolver) towardRow(a, b []r3.Vector, cands []int) bool {
	if len(cands) == 0 {
		return false
	}
	plA, plB := geom.PlaneOf(a), geom.PlaneOf(b)
	ca, cb := geom.Centroid(a), geom.Centroid(b)
	da, db := math.Inf(1), math.Inf(1)
	na, nb := 0, 0
	for _, k := range cands {
		o := s.res.Obstruction(k)
		c := geom.Centroid(o.Polygon)
		if _, hi := plA.Extent(o.Polygon); hi > s.eps {
			da = math.Min(da, c.Distance(ca))
			na++
		}
		if _, hi := plB.Extent(o.Polygon); hi > s.eps {
			db = math.Min(db, c.Distance(cb))
			nb++
		}
	}
	if math.Abs(da-db) > projectionTie*(da+db) {
		return da < db
	}
	return na < nb
}
