// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package viewfactor

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Result is the view-factor matrix of the radiating surfaces of a catalog, in
// catalog order after aggregation. It is immutable; accessors return copies.
// Matrix indices are 1-based.
type Result struct {
	ids        []int
	areas      []float64
	emissivity []float64

	// NaN marks cells that were not computed.
	f        *mat.Dense
	exchange *mat.Dense

	enclosure bool
	warnings  []Warning
	stats     Stats
}

// NumSurfaces returns the size of the matrix.
func (r *Result) NumSurfaces() int {
	return len(r.ids)
}

// VF returns F(i, j), the fraction of the energy leaving surface i that
// reaches surface j directly. ok is false for indices out of range and for
// cells that were not computed.
func (r *Result) VF(i, j int) (float64, bool) {
	return at(r.f, i, j, len(r.ids))
}

// Exchange returns the gray-diffuse exchange factor from surface i to surface
// j. ok is false unless exchange factors were requested.
func (r *Result) Exchange(i, j int) (float64, bool) {
	if r.exchange == nil {
		return 0, false
	}
	return at(r.exchange, i, j, len(r.ids))
}

// SurfaceID returns the catalog ID of matrix index i.
func (r *Result) SurfaceID(i int) (int, bool) {
	if i < 1 || i > len(r.ids) {
		return 0, false
	}
	return r.ids[i-1], true
}

// Index returns the matrix index of a surface ID.
func (r *Result) Index(id int) (int, bool) {
	for i, v := range r.ids {
		if v == id {
			return i + 1, true
		}
	}
	return 0, false
}

// Area returns the area of matrix index i.
func (r *Result) Area(i int) (float64, bool) {
	if i < 1 || i > len(r.ids) {
		return 0, false
	}
	return r.areas[i-1], true
}

// Emissivity returns the emissivity of matrix index i.
func (r *Result) Emissivity(i int) (float64, bool) {
	if i < 1 || i > len(r.ids) {
		return 0, false
	}
	return r.emissivity[i-1], true
}

// Areas returns the area vector in matrix order.
func (r *Result) Areas() []float64 {
	return append([]float64(nil), r.areas...)
}

// Emissivities returns the emissivity vector in matrix order.
func (r *Result) Emissivities() []float64 {
	return append([]float64(nil), r.emissivity...)
}

// Matrix returns a copy of the view-factor matrix with 0-based indices, or nil
// for an empty result. Cells that were not computed hold NaN.
func (r *Result) Matrix() *mat.Dense {
	if r.f == nil {
		return nil
	}
	return mat.DenseCopyOf(r.f)
}

// ExchangeMatrix returns a copy of the exchange-factor matrix, or nil when
// exchange factors were not requested.
func (r *Result) ExchangeMatrix() *mat.Dense {
	if r.exchange == nil {
		return nil
	}
	return mat.DenseCopyOf(r.exchange)
}

// Enclosure reports whether enclosure normalization was applied.
func (r *Result) Enclosure() bool {
	return r.enclosure
}

// Warnings returns the diagnostics of the run sorted by surface.
func (r *Result) Warnings() []Warning {
	return append([]Warning(nil), r.warnings...)
}

// Stats returns the run statistics.
func (r *Result) Stats() Stats {
	return r.stats
}

// Row returns a view of row i.
func (r *Result) Row(i int) (Row, error) {
	if i < 1 || i > len(r.ids) {
		return Row{}, fmt.Errorf("Row: index %d out of range [1 %d]", i, len(r.ids))
	}
	return Row{idx: i - 1, r: r}, nil
}

func at(m *mat.Dense, i, j, n int) (float64, bool) {
	if m == nil || i < 1 || j < 1 || i > n || j > n {
		return 0, false
	}
	v := m.At(i-1, j-1)
	if math.IsNaN(v) {
		return 0, false
	}
	return v, true
}
