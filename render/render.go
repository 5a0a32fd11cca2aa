// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package render draws the surfaces of a catalog as an SVG image in parallel
// projection, optionally shading each surface by a value such as its view
// factor from a selected surface.
package render

import (
	"errors"
	"fmt"
	"io"
	"math"
	"slices"

	"github.com/2dChan/viewfactor/catalog"
	svg "github.com/ajstarks/svgo"
	"github.com/golang/geo/r3"
)

const (
	defaultWidth  = 800
	defaultHeight = 800
	margin        = 0.05

	backgroundStyle  = "fill:rgb(255,255,255)"
	radiatingStyle   = "fill:rgb(230,230,230);stroke:rgb(90,90,90);stroke-width:1"
	obstructionStyle = "fill:rgb(120,120,120);fill-opacity:0.6;stroke:rgb(60,60,60);stroke-width:1"
	valueStyle       = "fill:rgb(255,%d,%d);stroke:rgb(90,90,90);stroke-width:1"
)

// ErrInvalidOption is returned for invalid rendering options.
var ErrInvalidOption = errors.New("render: invalid option")

// Options configures WriteSVG.
type Options struct {
	Width, Height int
	// View is the direction the camera looks along.
	View r3.Vector
	// Values shades surfaces by ID, scaled by the largest value.
	Values map[int]float64
}

// Option sets a field of Options.
type Option func(*Options) error

// WithSize sets the image size in pixels.
func WithSize(width, height int) Option {
	return func(o *Options) error {
		if width <= 0 || height <= 0 {
			return fmt.Errorf("size %dx%d: %w", width, height, ErrInvalidOption)
		}
		o.Width, o.Height = width, height
		return nil
	}
}

// WithView sets the viewing direction. It must be non-zero.
func WithView(dir r3.Vector) Option {
	return func(o *Options) error {
		if dir.Norm2() == 0 {
			return fmt.Errorf("zero view direction: %w", ErrInvalidOption)
		}
		o.View = dir.Normalize()
		return nil
	}
}

// WithValues shades the surfaces with the given IDs from white to red.
func WithValues(values map[int]float64) Option {
	return func(o *Options) error {
		for id, v := range values {
			if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("value %v of surface %d: %w", v, id, ErrInvalidOption)
			}
		}
		o.Values = values
		return nil
	}
}

// face is one surface projected to the screen.
type face struct {
	pts    [][2]float64
	xs, ys []int
	depth  float64
	style  string
}

// WriteSVG draws all surfaces of cat to w, farthest first.
func WriteSVG(w io.Writer, cat *catalog.Catalog, opts ...Option) error {
	o := Options{
		Width:  defaultWidth,
		Height: defaultHeight,
		View:   r3.Vector{X: -1, Y: -2, Z: -1.5}.Normalize(),
	}
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return err
		}
	}

	u := o.View.Ortho()
	v := o.View.Cross(u)
	if v.Z < 0 {
		u, v = u.Mul(-1), v.Mul(-1)
	}

	var vmax float64
	for _, x := range o.Values {
		vmax = math.Max(vmax, x)
	}

	var faces []face
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, s := range cat.Surfaces() {
		poly, err := cat.Polygon(s.ID)
		if err != nil {
			return err
		}
		c, err := cat.Centroid(s.ID)
		if err != nil {
			return err
		}
		f := face{depth: c.Dot(o.View), style: style(s, o.Values, vmax)}
		for _, q := range poly {
			x, y := q.Dot(u), -q.Dot(v)
			minX, maxX = math.Min(minX, x), math.Max(maxX, x)
			minY, maxY = math.Min(minY, y), math.Max(maxY, y)
			f.pts = append(f.pts, [2]float64{x, y})
		}
		faces = append(faces, f)
	}

	span := math.Max(maxX-minX, maxY-minY)
	if span == 0 || math.IsInf(span, 0) {
		span = 1
	}
	scale := (1 - 2*margin) * float64(min(o.Width, o.Height)) / span
	offX := (float64(o.Width) - scale*(maxX-minX)) / 2
	offY := (float64(o.Height) - scale*(maxY-minY)) / 2

	for i := range faces {
		f := &faces[i]
		for _, q := range f.pts {
			f.xs = append(f.xs, int(math.Round(offX+scale*(q[0]-minX))))
			f.ys = append(f.ys, int(math.Round(offY+scale*(q[1]-minY))))
		}
	}
	slices.SortStableFunc(faces, func(a, b face) int {
		switch {
		case a.depth > b.depth:
			return -1
		case a.depth < b.depth:
			return 1
		}
		return 0
	})

	ew := &errWriter{w: w}
	canvas := svg.New(ew)
	canvas.Start(o.Width, o.Height)
	canvas.Rect(0, 0, o.Width, o.Height, backgroundStyle)
	for _, f := range faces {
		canvas.Polygon(f.xs, f.ys, f.style)
	}
	canvas.End()
	return ew.err
}

func style(s catalog.Surface, values map[int]float64, vmax float64) string {
	if x, ok := values[s.ID]; ok && s.Role.Radiates() {
		t := 0.0
		if vmax > 0 {
			t = x / vmax
		}
		g := int(math.Round(255 * (1 - t)))
		return fmt.Sprintf(valueStyle, g, g)
	}
	if s.Role.Radiates() {
		return radiatingStyle
	}
	return obstructionStyle
}

// errWriter keeps the first write error.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return len(p), nil
	}
	n, err := e.w.Write(p)
	if err != nil {
		e.err = err
	}
	return n, nil
}
