// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package normalize

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// Reciprocity

func TestReciprocity(t *testing.T) {
	nan := math.NaN()
	tests := []struct {
		name   string
		f      []float64
		want01 float64
		want10 float64
	}{
		{"both known", []float64{0, 0.3, 0.16, 0}, 0.31, 0.155},
		{"reverse unknown", []float64{0, 0.4, nan, 0}, 0.4, 0.2},
		{"forward unknown", []float64{0, nan, 0.2, 0}, 0.4, 0.2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := mat.NewDense(2, 2, tt.f)
			require.NoError(t, Reciprocity(f, []float64{1, 2}))
			assert.InDelta(t, tt.want01, f.At(0, 1), 1e-15)
			assert.InDelta(t, tt.want10, f.At(1, 0), 1e-15)
		})
	}
}

func TestReciprocity_BothUnknown(t *testing.T) {
	f := mat.NewDense(2, 2, []float64{0, math.NaN(), math.NaN(), 0})
	require.NoError(t, Reciprocity(f, []float64{1, 2}))
	assert.True(t, math.IsNaN(f.At(0, 1)))
	assert.True(t, math.IsNaN(f.At(1, 0)))
}

func TestDimensionMismatch(t *testing.T) {
	square := mat.NewDense(2, 2, nil)
	tests := []struct {
		name string
		run  func() error
	}{
		{"reciprocity areas", func() error { return Reciprocity(square, []float64{1}) }},
		{"reciprocity zero area", func() error { return Reciprocity(square, []float64{1, 0}) }},
		{"reciprocity not square", func() error { return Reciprocity(mat.NewDense(2, 3, nil), []float64{1, 1}) }},
		{"enclosure areas", func() error { _, err := Enclosure(square, []float64{1, 1, 1}, DefaultConfig()); return err }},
		{"separate bases", func() error { return Separate(square, []float64{1, 1}, []int{-1}) }},
		{"separate self", func() error { return Separate(square, []float64{1, 1}, []int{0, -1}) }},
		{"merge emissivity", func() error {
			_, err := Merge(square, []float64{1, 1}, []float64{1}, []int{-1, -1})
			return err
		}},
		{"merge chained", func() error {
			_, err := Merge(mat.NewDense(3, 3, nil), []float64{1, 1, 1}, []float64{1, 1, 1}, []int{-1, 0, 1})
			return err
		}},
		{"exchange emissivity", func() error { _, err := ExchangeFactors(square, []float64{1, 1}, nil, false); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, tt.run(), ErrDimensionMismatch)
		})
	}
}

// Enclosure

func TestEnclosure(t *testing.T) {
	areas := []float64{1, 2, 3}
	// Exchange areas of a nearly closed three-surface enclosure.
	af := mat.NewDense(3, 3, []float64{
		0.05, 0.40, 0.50,
		0.40, 0.30, 1.20,
		0.50, 1.20, 1.20,
	})
	f := fromExchange(af, areas)

	devs, err := Enclosure(f, areas, DefaultConfig())
	require.NoError(t, err)
	assert.Empty(t, devs)
	for i := range 3 {
		assert.InDelta(t, 1, mat.Sum(f.RowView(i)), 1e-12, "row %d", i)
	}
	assertReciprocal(t, f, areas, 1e-6)
}

func TestEnclosure_Inconsistent(t *testing.T) {
	areas := []float64{1, 1}
	f := mat.NewDense(2, 2, []float64{0, 0.5, 0.5, 0})
	devs, err := Enclosure(f, areas, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, []Deviation{{Row: 0, RowSum: 0.5}, {Row: 1, RowSum: 0.5}}, devs)
	assert.InDelta(t, 1, f.At(0, 1), 1e-12)
	assert.InDelta(t, 1, f.At(1, 0), 1e-12)
}

func TestEnclosure_ZeroRow(t *testing.T) {
	areas := []float64{1, 1, 1}
	f := mat.NewDense(3, 3, []float64{
		0, 0.95, 0,
		0.95, 0, 0,
		0, 0, 0,
	})
	devs, err := Enclosure(f, areas, DefaultConfig())
	require.NoError(t, err)
	require.Len(t, devs, 1)
	assert.Equal(t, 2, devs[0].Row)
	assert.Equal(t, 0.0, mat.Sum(f.RowView(2)))
	assert.InDelta(t, 1, f.At(0, 1), 1e-12)
}

// Separate and Merge

func TestSeparate_Merge(t *testing.T) {
	// Surface 1 is a vent inside wall 0; both face surface 2.
	areas := []float64{4, 1, 5}
	af := mat.NewDense(3, 3, []float64{
		0, 0, 2,
		0, 0, 0.6,
		2, 0.6, 0,
	})
	f := fromExchange(af, areas)

	require.NoError(t, Separate(f, areas, []int{-1, 0, -1}))
	assert.Equal(t, []float64{3, 1, 5}, areas)
	assert.InDelta(t, 1.4/3, f.At(0, 2), 1e-15)
	assert.InDelta(t, 1.4/5, f.At(2, 0), 1e-15)
	assert.InDelta(t, 0.6/5, f.At(2, 1), 1e-15)

	m, err := Merge(f, areas, []float64{0.9, 0.5, 0.8}, []int{-1, 0, -1})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, m.Index)
	assert.InDeltaSlice(t, []float64{4, 5}, m.Areas, 1e-15)
	assert.InDeltaSlice(t, []float64{0.8, 0.8}, m.Emissivity, 1e-15)
	assert.InDelta(t, 0.5, m.F.At(0, 1), 1e-15)
	assert.InDelta(t, 0.4, m.F.At(1, 0), 1e-15)
	assert.InDelta(t, 0, m.F.At(0, 0), 1e-15)
}

func TestSeparate_Oversized(t *testing.T) {
	f := mat.NewDense(2, 2, nil)
	err := Separate(f, []float64{1, 2}, []int{-1, 0})
	require.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestMerge_SharedTarget(t *testing.T) {
	// Surfaces 1 and 2 combine into 0; surface 3 is separate.
	areas := []float64{1, 1, 1, 3}
	af := mat.NewDense(4, 4, []float64{
		0, 0.1, 0.2, 0.3,
		0.1, 0, 0.1, 0.4,
		0.2, 0.1, 0, 0.5,
		0.3, 0.4, 0.5, 0,
	})
	f := fromExchange(af, areas)
	m, err := Merge(f, areas, []float64{1, 1, 1, 1}, []int{-1, 0, 0, -1})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 3}, m.Index)
	assert.InDeltaSlice(t, []float64{3, 3}, m.Areas, 1e-15)
	// Exchange within the combined surface counts as self view.
	assert.InDelta(t, (0.1+0.2+0.1)*2/3, m.F.At(0, 0), 1e-15)
	assert.InDelta(t, 1.2/3, m.F.At(0, 1), 1e-15)
	assert.InDelta(t, 1.2/3, m.F.At(1, 0), 1e-15)
}

// ExchangeFactors

func TestExchangeFactors_Black(t *testing.T) {
	f := mat.NewDense(3, 3, []float64{
		0, 0.2, 0.3,
		0.2, 0, 0.1,
		0.3, 0.1, 0,
	})
	got, err := ExchangeFactors(f, []float64{1, 1, 1}, []float64{1, 1, 1}, false)
	require.NoError(t, err)
	assert.True(t, mat.EqualApprox(got, f, 1e-15), "ExchangeFactors(black) = %v, want %v", mat.Formatted(got), mat.Formatted(f))
}

func TestExchangeFactors_ParallelPlates(t *testing.T) {
	// Two gray plates that only see each other.
	f := mat.NewDense(2, 2, []float64{0, 1, 1, 0})
	for _, enclosure := range []bool{false, true} {
		got, err := ExchangeFactors(f, []float64{1, 1}, []float64{0.5, 0.5}, enclosure)
		require.NoError(t, err)
		assert.InDelta(t, 1.0/3, got.At(0, 1), 1e-12, "enclosure %v", enclosure)
		assert.InDelta(t, 1.0/6, got.At(0, 0), 1e-12, "enclosure %v", enclosure)
		assert.InDelta(t, 0.5, mat.Sum(got.RowView(1)), 1e-12, "enclosure %v", enclosure)
	}
}

// RowSumErrors

func TestRowSumErrors(t *testing.T) {
	f := mat.NewDense(3, 3, []float64{
		0, 0.5, 0.5,
		0.4, 0, 0.5,
		0.6, 0.6, math.NaN(),
	})
	maxErr, rms := RowSumErrors(f)
	assert.InDelta(t, 0.2, maxErr, 1e-12)
	assert.InDelta(t, math.Sqrt((0.01+0.04)/3), rms, 1e-12)
}

// Benchmarks

func BenchmarkEnclosure(b *testing.B) {
	const n = 64
	areas := make([]float64, n)
	raw := make([]float64, n*n)
	for i := range n {
		areas[i] = 1
		for j := range n {
			if i != j {
				raw[i*n+j] = 0.95 / (n - 1)
			}
		}
	}
	for b.Loop() {
		f := mat.NewDense(n, n, append([]float64(nil), raw...))
		if _, err := Enclosure(f, areas, DefaultConfig()); err != nil {
			b.Fatalf("Enclosure(...) error = %v, want nil", err)
		}
	}
}

// Helpers

func fromExchange(af *mat.Dense, areas []float64) *mat.Dense {
	var f mat.Dense
	f.Apply(func(i, _ int, v float64) float64 { return v / areas[i] }, af)
	return &f
}

func assertReciprocal(t *testing.T, f *mat.Dense, areas []float64, delta float64) {
	t.Helper()
	n, _ := f.Dims()
	for i := range n {
		for j := i + 1; j < n; j++ {
			assert.InDelta(t, areas[i]*f.At(i, j), areas[j]*f.At(j, i), delta, "cell (%d, %d)", i, j)
		}
	}
}
