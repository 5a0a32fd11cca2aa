// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package catalog holds the validated surface geometry of a view-factor model:
// a shared vertex table, the planar surfaces referencing it and their roles.
//
// A Catalog is immutable after New and safe for concurrent reads.
package catalog

import (
	"errors"
	"fmt"
	"math"

	"github.com/2dChan/viewfactor/geom"
	"github.com/golang/geo/r3"
)

const (
	defaultEps        = 1e-9
	defaultEmissivity = 0.9

	// Largest distance between a vertex and the polygon plane, relative to the
	// polygon radius.
	planarEps = 1e-6
)

var (
	// ErrDegenerateGeometry is returned for surfaces that are not simple planar
	// polygons of positive area, and for inconsistent surface attributes.
	ErrDegenerateGeometry = errors.New("catalog: degenerate geometry")
	// ErrUnknownSurface is returned by queries for an ID not in the catalog.
	ErrUnknownSurface = errors.New("catalog: unknown surface")
	// ErrInvalidOption is returned by options with out-of-range values.
	ErrInvalidOption = errors.New("catalog: invalid option")
)

// Role is the set of query sets a surface takes part in.
type Role uint8

const (
	// RoleRadiating surfaces get a row and a column in the view-factor matrix.
	RoleRadiating Role = 1 << iota
	// RoleObstruction surfaces may block the view between radiating surfaces.
	RoleObstruction

	// RoleBoth surfaces radiate and obstruct.
	RoleBoth = RoleRadiating | RoleObstruction
)

// Radiates reports whether r includes RoleRadiating.
func (r Role) Radiates() bool {
	return r&RoleRadiating != 0
}

// Obstructs reports whether r includes RoleObstruction.
func (r Role) Obstructs() bool {
	return r&RoleObstruction != 0
}

func (r Role) String() string {
	switch r {
	case RoleRadiating:
		return "radiating"
	case RoleObstruction:
		return "obstruction"
	case RoleBoth:
		return "both"
	}
	return fmt.Sprintf("Role(%d)", uint8(r))
}

// Surface describes one planar polygon of the model.
type Surface struct {
	// ID is unique and positive.
	ID int
	// Vertices are 3 or 4 indices into the catalog vertex table, counter-clockwise
	// when seen from the side the surface radiates to.
	Vertices []int
	Role     Role
	// Base is the ID of the surface this one is a subsurface of, or 0.
	Base int
	// Combine is the ID of the surface this one is merged into, or 0.
	Combine int
	// Emissivity in (0, 1]. Zero selects the default of 0.9.
	Emissivity float64
	Name       string
}

// Options configures a Catalog.
type Options struct {
	// Eps is the geometric tolerance relative to the model size.
	Eps float64
}

// Option sets a field of Options.
type Option func(*Options) error

// WithEps sets the relative geometric tolerance used for the validity checks.
// It must lie in (0, 1e-3].
func WithEps(eps float64) Option {
	return func(o *Options) error {
		if eps <= 0 || eps > 1e-3 || math.IsNaN(eps) {
			return ErrInvalidOption
		}
		o.Eps = eps
		return nil
	}
}

// shape caches the derived geometry of one surface.
type shape struct {
	polygon  []r3.Vector
	pieces   [][]r3.Vector
	area     float64
	normal   r3.Vector
	centroid r3.Vector
	radius   float64
	convex   bool
}

// Catalog is the validated model geometry.
type Catalog struct {
	vertices []r3.Vector
	surfaces []Surface
	shapes   []shape
	index    map[int]int

	radiating    []int
	obstructions []int

	scale float64
	eps   float64
}

// New validates the surfaces against the vertex table and returns a Catalog.
// Surfaces keep their order; matrices built from the catalog list radiating
// surfaces in that order. Inputs are copied.
func New(vertices []r3.Vector, surfaces []Surface, opts ...Option) (*Catalog, error) {
	o := Options{Eps: defaultEps}
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return nil, err
		}
	}

	c := &Catalog{
		vertices: append([]r3.Vector(nil), vertices...),
		surfaces: make([]Surface, len(surfaces)),
		shapes:   make([]shape, len(surfaces)),
		index:    make(map[int]int, len(surfaces)),
	}

	used := make([][]r3.Vector, 0, len(surfaces))
	for i, s := range surfaces {
		if s.ID <= 0 {
			return nil, fmt.Errorf("surface %d: non-positive ID: %w", s.ID, ErrDegenerateGeometry)
		}
		if _, ok := c.index[s.ID]; ok {
			return nil, fmt.Errorf("surface %d: duplicate ID: %w", s.ID, ErrDegenerateGeometry)
		}
		c.index[s.ID] = i
		s.Vertices = append([]int(nil), s.Vertices...)
		if s.Emissivity == 0 {
			s.Emissivity = defaultEmissivity
		}
		c.surfaces[i] = s

		p, err := c.resolve(s)
		if err != nil {
			return nil, err
		}
		used = append(used, p)
	}
	c.scale = geom.BoundOf(used...).Diagonal()
	c.eps = o.Eps * c.scale

	for i, s := range c.surfaces {
		if err := c.validate(i, s, used[i]); err != nil {
			return nil, err
		}
		if s.Role.Radiates() {
			c.radiating = append(c.radiating, s.ID)
		}
		if s.Role.Obstructs() {
			c.obstructions = append(c.obstructions, s.ID)
		}
	}
	for _, s := range c.surfaces {
		if err := c.validateLinks(s); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Catalog) resolve(s Surface) ([]r3.Vector, error) {
	if len(s.Vertices) != 3 && len(s.Vertices) != 4 {
		return nil, fmt.Errorf("surface %d: %d vertices, want 3 or 4: %w",
			s.ID, len(s.Vertices), ErrDegenerateGeometry)
	}
	p := make([]r3.Vector, len(s.Vertices))
	for k, idx := range s.Vertices {
		if idx < 0 || idx >= len(c.vertices) {
			return nil, fmt.Errorf("surface %d: vertex index %d out of range [0 %d): %w",
				s.ID, idx, len(c.vertices), ErrDegenerateGeometry)
		}
		for _, prev := range s.Vertices[:k] {
			if prev == idx {
				return nil, fmt.Errorf("surface %d: duplicate vertex index %d: %w",
					s.ID, idx, ErrDegenerateGeometry)
			}
		}
		p[k] = c.vertices[idx]
	}
	return p, nil
}

func (c *Catalog) validate(i int, s Surface, p []r3.Vector) error {
	if s.Role&^RoleBoth != 0 || s.Role == 0 {
		return fmt.Errorf("surface %d: invalid role %v: %w", s.ID, s.Role, ErrDegenerateGeometry)
	}
	if s.Emissivity <= 0 || s.Emissivity > 1 || math.IsNaN(s.Emissivity) {
		return fmt.Errorf("surface %d: emissivity %v outside (0, 1]: %w",
			s.ID, s.Emissivity, ErrDegenerateGeometry)
	}

	for a := range p {
		for b := a + 1; b < len(p); b++ {
			if p[a].Distance(p[b]) <= c.eps {
				return fmt.Errorf("surface %d: coincident vertices %d and %d: %w",
					s.ID, a, b, ErrDegenerateGeometry)
			}
		}
	}

	area := geom.Area(p)
	if area <= c.eps*c.scale {
		return fmt.Errorf("surface %d: area %v below threshold: %w", s.ID, area, ErrDegenerateGeometry)
	}
	n := geom.Normal(p)

	// The relative tolerance bounds the sine of each corner angle.
	const sinEps = 1e-9
	var right int
	for k := range p {
		turn := geom.Turn(p, k, n)
		if math.Abs(turn) <= sinEps {
			return fmt.Errorf("surface %d: collinear vertices at %d: %w", s.ID, k, ErrDegenerateGeometry)
		}
		if turn < 0 {
			right++
		}
	}
	if right > 1 {
		return fmt.Errorf("surface %d: self-intersecting polygon: %w", s.ID, ErrDegenerateGeometry)
	}

	centroid := geom.Centroid(p)
	radius := geom.Radius(p, centroid)
	pl := geom.PlaneOf(p)
	if lo, hi := pl.Extent(p); hi-lo > math.Max(c.eps, planarEps*radius) {
		return fmt.Errorf("surface %d: non-planar polygon (deviation %v): %w",
			s.ID, hi-lo, ErrDegenerateGeometry)
	}

	c.shapes[i] = shape{
		polygon:  p,
		pieces:   geom.ConvexPieces(p, sinEps),
		area:     area,
		normal:   n,
		centroid: centroid,
		radius:   radius,
		convex:   right == 0,
	}
	return nil
}

func (c *Catalog) validateLinks(s Surface) error {
	if s.Base != 0 && s.Combine != 0 {
		return fmt.Errorf("surface %d: both base and combine set: %w", s.ID, ErrDegenerateGeometry)
	}
	for _, link := range []struct {
		kind   string
		target int
	}{{"base", s.Base}, {"combine", s.Combine}} {
		if link.target == 0 {
			continue
		}
		if !s.Role.Radiates() {
			return fmt.Errorf("surface %d: %s set on a non-radiating surface: %w",
				s.ID, link.kind, ErrDegenerateGeometry)
		}
		j, ok := c.index[link.target]
		if !ok || link.target == s.ID {
			return fmt.Errorf("surface %d: invalid %s surface %d: %w",
				s.ID, link.kind, link.target, ErrDegenerateGeometry)
		}
		t := c.surfaces[j]
		if !t.Role.Radiates() || t.Base != 0 || t.Combine != 0 {
			return fmt.Errorf("surface %d: %s surface %d must be a radiating top-level surface: %w",
				s.ID, link.kind, link.target, ErrDegenerateGeometry)
		}
	}
	return nil
}

// NumSurfaces returns the number of surfaces of any role.
func (c *Catalog) NumSurfaces() int {
	return len(c.surfaces)
}

// NumVertices returns the size of the vertex table.
func (c *Catalog) NumVertices() int {
	return len(c.vertices)
}

// Vertex returns the vertex at index i of the vertex table.
func (c *Catalog) Vertex(i int) (r3.Vector, error) {
	if i < 0 || i >= len(c.vertices) {
		return r3.Vector{}, fmt.Errorf("Vertex: index %d out of range [0 %d)", i, len(c.vertices))
	}
	return c.vertices[i], nil
}

// Surfaces returns a copy of all surfaces in catalog order.
func (c *Catalog) Surfaces() []Surface {
	out := make([]Surface, len(c.surfaces))
	copy(out, c.surfaces)
	return out
}

// Surface returns the surface with the given ID.
func (c *Catalog) Surface(id int) (Surface, error) {
	i, err := c.lookup(id)
	if err != nil {
		return Surface{}, err
	}
	return c.surfaces[i], nil
}

// Radiating returns the IDs of radiating surfaces in catalog order.
func (c *Catalog) Radiating() []int {
	return append([]int(nil), c.radiating...)
}

// Obstructions returns the IDs of obstructing surfaces in catalog order.
func (c *Catalog) Obstructions() []int {
	return append([]int(nil), c.obstructions...)
}

// Polygon returns the vertex coordinates of a surface.
func (c *Catalog) Polygon(id int) ([]r3.Vector, error) {
	i, err := c.lookup(id)
	if err != nil {
		return nil, err
	}
	return append([]r3.Vector(nil), c.shapes[i].polygon...), nil
}

// Pieces returns the surface split into convex polygons: the polygon itself,
// or two triangles for a concave quadrilateral.
func (c *Catalog) Pieces(id int) ([][]r3.Vector, error) {
	i, err := c.lookup(id)
	if err != nil {
		return nil, err
	}
	out := make([][]r3.Vector, len(c.shapes[i].pieces))
	for k, p := range c.shapes[i].pieces {
		out[k] = append([]r3.Vector(nil), p...)
	}
	return out, nil
}

// Area returns the area of a surface.
func (c *Catalog) Area(id int) (float64, error) {
	i, err := c.lookup(id)
	if err != nil {
		return 0, err
	}
	return c.shapes[i].area, nil
}

// Normal returns the unit normal on the radiating side of a surface.
func (c *Catalog) Normal(id int) (r3.Vector, error) {
	i, err := c.lookup(id)
	if err != nil {
		return r3.Vector{}, err
	}
	return c.shapes[i].normal, nil
}

// Centroid returns the area centroid of a surface.
func (c *Catalog) Centroid(id int) (r3.Vector, error) {
	i, err := c.lookup(id)
	if err != nil {
		return r3.Vector{}, err
	}
	return c.shapes[i].centroid, nil
}

// Radius returns the largest distance from the centroid to a vertex of a surface.
func (c *Catalog) Radius(id int) (float64, error) {
	i, err := c.lookup(id)
	if err != nil {
		return 0, err
	}
	return c.shapes[i].radius, nil
}

// Convex reports whether a surface is convex.
func (c *Catalog) Convex(id int) (bool, error) {
	i, err := c.lookup(id)
	if err != nil {
		return false, err
	}
	return c.shapes[i].convex, nil
}

// Plane returns the oriented supporting plane of a surface.
func (c *Catalog) Plane(id int) (geom.Plane, error) {
	i, err := c.lookup(id)
	if err != nil {
		return geom.Plane{}, err
	}
	return geom.Plane{Normal: c.shapes[i].normal, Offset: c.shapes[i].normal.Dot(c.shapes[i].centroid)}, nil
}

// Scale returns the diagonal of the bounding box of all surfaces.
func (c *Catalog) Scale() float64 {
	return c.scale
}

// Eps returns the absolute geometric tolerance of the catalog.
func (c *Catalog) Eps() float64 {
	return c.eps
}

// EnclosureVolume returns the volume bounded by the radiating top-level
// surfaces, assuming they face into a closed enclosure. Subsurfaces lie on
// their base and are skipped. The result is meaningless for open geometry.
func (c *Catalog) EnclosureVolume() float64 {
	var v float64
	for i, s := range c.surfaces {
		if !s.Role.Radiates() || s.Base != 0 {
			continue
		}
		p := c.shapes[i].polygon
		for k := 1; k+1 < len(p); k++ {
			v += p[0].Dot(p[k].Cross(p[k+1]))
		}
	}
	return -v / 6
}

func (c *Catalog) lookup(id int) (int, error) {
	i, ok := c.index[id]
	if !ok {
		return 0, fmt.Errorf("surface %d: %w", id, ErrUnknownSurface)
	}
	return i, nil
}
