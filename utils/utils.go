// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package utils provides builders for canonical and random view-factor scenes.

package utils

import (
	"math"
	"math/rand"

	"github.com/2dChan/viewfactor/catalog"
	"github.com/golang/geo/r3"
)

// Scene accumulates vertices and surfaces for catalog.New.
type Scene struct {
	Vertices []r3.Vector
	Surfaces []catalog.Surface
}

// Add appends a surface with the given role over new vertices and returns its
// ID. Vertices are counter-clockwise seen from the front.
func (s *Scene) Add(role catalog.Role, poly ...r3.Vector) int {
	idx := make([]int, len(poly))
	for i, v := range poly {
		idx[i] = len(s.Vertices)
		s.Vertices = append(s.Vertices, v)
	}
	id := len(s.Surfaces) + 1
	s.Surfaces = append(s.Surfaces, catalog.Surface{ID: id, Vertices: idx, Role: role})
	return id
}

// Catalog validates the scene.
func (s *Scene) Catalog(opts ...catalog.Option) (*catalog.Catalog, error) {
	return catalog.New(s.Vertices, s.Surfaces, opts...)
}

// Mirror returns the reflection of s in the plane through the origin with
// normal n. Vertex order is reversed so surfaces keep facing the same
// geometry.
func (s *Scene) Mirror(n r3.Vector) *Scene {
	n = n.Normalize()
	out := &Scene{Vertices: make([]r3.Vector, len(s.Vertices))}
	for i, v := range s.Vertices {
		out.Vertices[i] = v.Sub(n.Mul(2 * n.Dot(v)))
	}
	for _, sf := range s.Surfaces {
		idx := make([]int, len(sf.Vertices))
		for i, v := range sf.Vertices {
			idx[len(idx)-1-i] = v
		}
		sf.Vertices = idx
		out.Surfaces = append(out.Surfaces, sf)
	}
	return out
}

// Rectangle returns the rectangle [x1, x2] × [y1, y2] at height z, facing up
// or down.
func Rectangle(x1, x2, y1, y2, z float64, up bool) []r3.Vector {
	p := []r3.Vector{{X: x1, Y: y1, Z: z}, {X: x2, Y: y1, Z: z}, {X: x2, Y: y2, Z: z}, {X: x1, Y: y2, Z: z}}
	if !up {
		p[1], p[3] = p[3], p[1]
	}
	return p
}

// ParallelSquares returns two directly opposed squares of the given side:
// surface 1 at z = 0 facing up and surface 2 at z = distance facing down.
func ParallelSquares(side, distance float64) *Scene {
	s := &Scene{}
	s.Add(catalog.RoleRadiating, Rectangle(0, side, 0, side, 0, true)...)
	s.Add(catalog.RoleRadiating, Rectangle(0, side, 0, side, distance, false)...)
	return s
}

// PerpendicularRectangles returns rectangle 1 in the plane z = 0 spanning
// [x1, x2] × [y1, y2] and facing +z, and rectangle 2 in the plane x = 0
// spanning [eta1, eta2] in y and [xi1, xi2] in z and facing +x.
func PerpendicularRectangles(x1, x2, y1, y2, eta1, eta2, xi1, xi2 float64) *Scene {
	s := &Scene{}
	s.Add(catalog.RoleRadiating, Rectangle(x1, x2, y1, y2, 0, true)...)
	s.Add(catalog.RoleRadiating,
		r3.Vector{X: 0, Y: eta1, Z: xi1},
		r3.Vector{X: 0, Y: eta2, Z: xi1},
		r3.Vector{X: 0, Y: eta2, Z: xi2},
		r3.Vector{X: 0, Y: eta1, Z: xi2},
	)
	return s
}

// Box returns the six inward-facing walls of the box [0, dx] × [0, dy] ×
// [0, dz] in the order floor, ceiling, y = 0, x = dx, y = dy, x = 0.
func Box(dx, dy, dz float64) *Scene {
	v := func(x, y, z float64) r3.Vector { return r3.Vector{X: x * dx, Y: y * dy, Z: z * dz} }
	s := &Scene{}
	s.Add(catalog.RoleRadiating, v(0, 0, 0), v(1, 0, 0), v(1, 1, 0), v(0, 1, 0))
	s.Add(catalog.RoleRadiating, v(0, 0, 1), v(0, 1, 1), v(1, 1, 1), v(1, 0, 1))
	s.Add(catalog.RoleRadiating, v(0, 0, 0), v(0, 0, 1), v(1, 0, 1), v(1, 0, 0))
	s.Add(catalog.RoleRadiating, v(1, 0, 0), v(1, 0, 1), v(1, 1, 1), v(1, 1, 0))
	s.Add(catalog.RoleRadiating, v(1, 1, 0), v(1, 1, 1), v(0, 1, 1), v(0, 1, 0))
	s.Add(catalog.RoleRadiating, v(0, 1, 0), v(0, 1, 1), v(0, 0, 1), v(0, 0, 0))
	return s
}

// GenerateRandomScene returns cnt random squares inside the unit cube with
// random orientations. Every third square also obstructs.
// The seed parameter ensures reproducibility.
func GenerateRandomScene(cnt int, seed int64) *Scene {
	//nolint:gosec
	random := rand.New(rand.NewSource(seed))
	s := &Scene{}

	for i := range cnt {
		c := r3.Vector{X: random.Float64(), Y: random.Float64(), Z: random.Float64()}
		half := 0.025 + 0.075*random.Float64()
		theta := math.Acos(2*random.Float64() - 1)
		phi := 2 * math.Pi * random.Float64()
		n := r3.Vector{X: math.Sin(theta) * math.Cos(phi), Y: math.Sin(theta) * math.Sin(phi), Z: math.Cos(theta)}
		u := n.Ortho()
		w := n.Cross(u)

		role := catalog.RoleRadiating
		if i%3 == 2 {
			role = catalog.RoleBoth
		}
		s.Add(role,
			c.Sub(u.Mul(half)).Sub(w.Mul(half)),
			c.Add(u.Mul(half)).Sub(w.Mul(half)),
			c.Add(u.Mul(half)).Add(w.Mul(half)),
			c.Sub(u.Mul(half)).Add(w.Mul(half)),
		)
	}
	return s
}
