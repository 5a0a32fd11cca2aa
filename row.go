// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package viewfactor

import (
	"fmt"
	"math"
)

// Row is a view structure for accessing one row of a Result.
type Row struct {
	idx int
	r   *Result
}

// Index returns the 1-based matrix index of the row.
func (w Row) Index() int {
	return w.idx + 1
}

// SurfaceID returns the catalog ID of the row's surface.
func (w Row) SurfaceID() int {
	return w.r.ids[w.idx]
}

// Area returns the area of the row's surface.
func (w Row) Area() float64 {
	return w.r.areas[w.idx]
}

// NumColumns returns the number of cells in the row.
func (w Row) NumColumns() int {
	return len(w.r.ids)
}

// VF returns F(i, j) for column j, 1-based.
// It returns an error if the index is out of range or the cell was not
// computed.
func (w Row) VF(j int) (float64, error) {
	if j < 1 || j > len(w.r.ids) {
		return 0, fmt.Errorf("VF: index %d out of range [1 %d]", j, len(w.r.ids))
	}
	v := w.r.f.At(w.idx, j-1)
	if math.IsNaN(v) {
		return 0, fmt.Errorf("VF: cell (%d, %d) not computed", w.idx+1, j)
	}
	return v, nil
}

// Values returns a copy of the row. Cells that were not computed hold NaN.
func (w Row) Values() []float64 {
	out := make([]float64, len(w.r.ids))
	for j := range out {
		out[j] = w.r.f.At(w.idx, j)
	}
	return out
}

// Sum returns the sum of the computed cells of the row.
func (w Row) Sum() float64 {
	var s float64
	for j := range w.r.ids {
		if v := w.r.f.At(w.idx, j); !math.IsNaN(v) {
			s += v
		}
	}
	return s
}
