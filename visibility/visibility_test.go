// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package visibility

import (
	"testing"

	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	bottom = square(0, 0, 1, 0, true)
	top    = square(0, 0, 1, 1, false)
)

// Options

func TestOptions(t *testing.T) {
	tests := []struct {
		name    string
		opt     Option
		wantErr bool
	}{
		{"eps positive", WithEps(1e-6), false},
		{"eps zero", WithEps(0), true},
		{"eps negative", WithEps(-1), true},
		{"sample level zero", WithSampleLevel(0), false},
		{"sample level max", WithSampleLevel(maxSampleLevel), false},
		{"sample level negative", WithSampleLevel(-1), true},
		{"sample level too large", WithSampleLevel(maxSampleLevel + 1), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewResolver(nil, tt.opt)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidOption)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

// Resolver

func TestResolver_Candidates(t *testing.T) {
	r := mustNewResolver(t,
		NewObstruction(3, square(0, 0, 1, 0.5, true)),
		NewObstruction(4, square(0, 0, 1, 0.25, true)),
		NewObstruction(3, square(0, 0, 1, 0.75, true)),
	)
	require.Equal(t, 3, r.NumObstructions())
	assert.Equal(t, []int{0, 1, 2}, r.Candidates())
	assert.Equal(t, []int{1}, r.Candidates(3))
	assert.Equal(t, []int{}, r.Candidates(3, 4))
	assert.Equal(t, 4, r.Obstruction(1).ID)
}

func TestResolver_Classify(t *testing.T) {
	tests := []struct {
		name string
		obs  []r3.Vector
		want Visibility
	}{
		{"spanning plate", square(-1, -1, 3, 0.5, true), Full},
		{"spanning plate facing down", square(-1, -1, 3, 0.5, false), Full},
		{"small plate", square(0.25, 0.25, 0.5, 0.5, true), Partial},
		{"plate off to the side", square(1.5, 1.5, 1, 0.5, true), None},
		{"behind bottom", square(0, 0, 1, -1, true), None},
		{"above top", square(0, 0, 1, 2, true), None},
		{"wall outside", wall(2), None},
		{"wall through", wall(0.5), Partial},
		{"touching top", square(0, 0, 1, 1, true), Partial},
		{"wall on hull face", wall(1), Partial},
		{"wall just outside", wall(1 + 1e-6), None},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := mustNewResolver(t, NewObstruction(3, tt.obs))
			got := r.Classify(bottom, top, r.Candidates(1, 2))
			assert.Equal(t, tt.want, got.Visibility, "Classify(...).Visibility")
			if tt.want == None {
				assert.Empty(t, got.Candidates)
			} else {
				assert.Equal(t, []int{0}, got.Candidates)
			}
		})
	}
}

func TestResolver_VisibleFraction(t *testing.T) {
	// Exchange area past the central plate [0.25, 0.75]² over that of the bare
	// squares, from the point-to-rectangle closed form minus the exact shadow.
	const want = 0.0995063 / 0.19982489569838732
	tests := []struct {
		level int
		delta float64
	}{
		{1, 5e-4},
		{2, 5e-5},
		{3, 5e-6},
	}
	for _, tt := range tests {
		r, err := NewResolver([]Obstruction{NewObstruction(3, square(0.25, 0.25, 0.5, 0.5, true))}, WithSampleLevel(tt.level))
		require.NoError(t, err)
		got := r.Classify(bottom, top, r.Candidates())
		require.Equal(t, Partial, got.Visibility)
		assert.InDelta(t, want, got.Visible, tt.delta, "Visible at sample level %d", tt.level)
		assert.False(t, got.Grazing)
	}

	plate := mustNewResolver(t, NewObstruction(3, square(0.25, 0.25, 0.5, 0.5, true)))
	larger := mustNewResolver(t, NewObstruction(3, square(0.1, 0.1, 0.8, 0.5, true)))
	got := plate.Classify(bottom, top, plate.Candidates())
	gotLarger := larger.Classify(bottom, top, larger.Candidates())
	require.Equal(t, Partial, gotLarger.Visibility)
	assert.Less(t, gotLarger.Visible, got.Visible, "a larger plate leaves less visible")
}

func TestResolver_Touching(t *testing.T) {
	// Obstructions touching the lines of sight stay candidates but cut nothing
	// out of the view.
	tests := []struct {
		name string
		obs  []r3.Vector
	}{
		{"touching top", square(0, 0, 1, 1, true)},
		{"wall on hull face", wall(1)},
		{"wall on other hull face", wall(0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := mustNewResolver(t, NewObstruction(3, tt.obs))
			got := r.Classify(bottom, top, r.Candidates())
			require.Equal(t, Partial, got.Visibility)
			assert.InDelta(t, 1, got.Visible, 1e-9)
			assert.True(t, got.Grazing)
		})
	}
}

func TestResolver_HullCulling(t *testing.T) {
	// A small top square leaves a frustum-shaped line-of-sight hull; the plate
	// sits inside the bounding box of the pair but outside the hull.
	small := square(0, 0, 0.2, 1, false)
	plate := square(0.8, 0.8, 0.15, 0.9, true)
	r := mustNewResolver(t, NewObstruction(3, plate))

	got := r.Filter(bottom, small, r.Candidates())
	assert.Empty(t, got)

	inside := mustNewResolver(t, NewObstruction(3, square(0.05, 0.05, 0.1, 0.9, true)))
	assert.Equal(t, []int{0}, inside.Filter(bottom, small, inside.Candidates()))
}

func TestResolver_SplitWall(t *testing.T) {
	// Lines of sight between halves on the same side of the wall stay clear and
	// carry most of the kernel.
	r := mustNewResolver(t, NewObstruction(3, wall(0.5)), NewObstruction(4, wall(0.5)))
	got := r.Classify(bottom, top, r.Candidates())
	require.Equal(t, Partial, got.Visibility)
	assert.Equal(t, []int{0, 1}, got.Candidates)
	assert.Greater(t, got.Visible, 0.5)
	assert.Less(t, got.Visible, 0.9)
	assert.False(t, got.Grazing)
}

func TestResolver_Stacked(t *testing.T) {
	// The wide plate hides the whole of top from every viewpoint but leaves the
	// lines along x = 0 clear. The small plate beneath it still casts a shadow.
	wide := []r3.Vector{{X: 0.05, Y: -1, Z: 0.5}, {X: 0.95, Y: -1, Z: 0.5}, {X: 0.95, Y: 2, Z: 0.5}, {X: 0.05, Y: 2, Z: 0.5}}
	r := mustNewResolver(t, NewObstruction(3, wide), NewObstruction(4, square(0.4, 0.4, 0.2, 0.25, true)))
	got := r.Classify(bottom, top, r.Candidates())
	require.Equal(t, Partial, got.Visibility)
	assert.Equal(t, []int{0, 1}, got.Candidates)
	assert.InDelta(t, 0, got.Visible, 1e-12)
	assert.False(t, got.Grazing)
}

func TestResolver_LowWall(t *testing.T) {
	// A wall reaching halfway up blocks only the steep crossing lines.
	lower := []r3.Vector{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 0}, {X: 0, Y: 1, Z: 0}}
	edge := []r3.Vector{{X: -1, Y: 0.5, Z: -1}, {X: 2, Y: 0.5, Z: -1}, {X: 2, Y: 0.5, Z: 0.5}, {X: -1, Y: 0.5, Z: 0.5}}
	upper := []r3.Vector{{X: 0, Y: 0, Z: 1}, {X: 0, Y: 1, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: 1, Y: 0, Z: 1}}
	r := mustNewResolver(t, NewObstruction(3, edge))
	got := r.Classify(lower, upper, r.Candidates())
	require.Equal(t, Partial, got.Visibility)
	assert.Less(t, got.Visible, 1.0)
}

func TestVisibility_String(t *testing.T) {
	assert.Equal(t, "none", None.String())
	assert.Equal(t, "partial", Partial.String())
	assert.Equal(t, "full", Full.String())
	assert.Equal(t, "unknown", Visibility(7).String())
}

// Benchmarks

func BenchmarkClassify(b *testing.B) {
	r, err := NewResolver([]Obstruction{NewObstruction(3, square(0.25, 0.25, 0.5, 0.5, true))})
	if err != nil {
		b.Fatalf("NewResolver(...) error = %v, want nil", err)
	}
	candidates := r.Candidates()
	b.ReportAllocs()
	for b.Loop() {
		r.Classify(bottom, top, candidates)
	}
}

// Helpers

func mustNewResolver(t *testing.T, obs ...Obstruction) *Resolver {
	t.Helper()
	r, err := NewResolver(obs)
	require.NoError(t, err)
	return r
}

// square returns the axis-aligned square [x, x+side] × [y, y+side] at height z,
// facing up or down.
func square(x, y, side, z float64, up bool) []r3.Vector {
	p := []r3.Vector{
		{X: x, Y: y, Z: z},
		{X: x + side, Y: y, Z: z},
		{X: x + side, Y: y + side, Z: z},
		{X: x, Y: y + side, Z: z},
	}
	if !up {
		p[1], p[3] = p[3], p[1]
	}
	return p
}

// wall returns a large vertical plate in the plane x = x0.
func wall(x0 float64) []r3.Vector {
	return []r3.Vector{
		{X: x0, Y: -1, Z: -0.5},
		{X: x0, Y: 2, Z: -0.5},
		{X: x0, Y: 2, Z: 1.5},
		{X: x0, Y: -1, Z: 1.5},
	}
}
