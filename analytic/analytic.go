// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package analytic provides closed-form view factors for canonical rectangle
// configurations. The functions are independent of the numerical engine and
// serve as reference values in tests and examples.
package analytic

import "math"

// ParallelSquares returns the view factor between two directly opposed
// parallel squares of the given side at the given distance.
func ParallelSquares(side, distance float64) float64 {
	w := side / distance
	x := math.Sqrt(1 + w*w)
	y := math.Atan(w/x)*x - math.Atan(w)
	return (math.Log(x*x*x*x/(1+2*w*w)) + 4*w*y) / (math.Pi * w * w)
}

// IdenticalRectangles returns the view factor between two directly opposed
// parallel a×b rectangles at distance c.
func IdenticalRectangles(a, b, c float64) float64 {
	x, y := a/c, b/c
	x2, y2 := 1+x*x, 1+y*y
	sx, sy := math.Sqrt(x2), math.Sqrt(y2)
	return 2 / (math.Pi * x * y) * (0.5*math.Log(x2*y2/(1+x*x+y*y)) +
		x*sy*math.Atan(x/sy) + y*sx*math.Atan(y/sx) -
		x*math.Atan(x) - y*math.Atan(y))
}

// PerpendicularRectangles returns the view factor from rectangle 1 to
// rectangle 2 lying in perpendicular planes. Both rectangles are aligned with
// the line where the planes meet: rectangle 1 spans [x1, x2] away from that
// line and [y1, y2] along it, rectangle 2 spans [xi1, xi2] away from it and
// [eta1, eta2] along it. The rectangles must not share an edge.
func PerpendicularRectangles(x1, x2, y1, y2, eta1, eta2, xi1, xi2 float64) float64 {
	g := func(x, y, eta, xi float64) float64 {
		s := x*x + xi*xi
		d := y - eta
		var t float64
		if d != 0 {
			t = d * math.Sqrt(s) * math.Atan(d/math.Sqrt(s))
		}
		return (t - 0.25*(s-d*d)*math.Log(s+d*d)) / (2 * math.Pi)
	}
	var sum float64
	for i, x := range [2]float64{x1, x2} {
		for j, y := range [2]float64{y1, y2} {
			for k, eta := range [2]float64{eta1, eta2} {
				for l, xi := range [2]float64{xi1, xi2} {
					sum += sign(i+j+k+l) * g(x, y, eta, xi)
				}
			}
		}
	}
	return sum / ((x2 - x1) * (y2 - y1))
}

// ParallelRectangles returns the view factor from rectangle 1, spanning
// [x1, x2] × [y1, y2], to the parallel rectangle 2 spanning [xi1, xi2] ×
// [eta1, eta2] at distance z.
func ParallelRectangles(x1, x2, y1, y2, xi1, xi2, eta1, eta2, z float64) float64 {
	g := func(x, y, eta, xi float64) float64 {
		dx, dy := x-xi, y-eta
		var t float64
		if dy != 0 {
			r := math.Sqrt(dx*dx + z*z)
			t += dy * r * math.Atan(dy/r)
		}
		if dx != 0 {
			r := math.Sqrt(dy*dy + z*z)
			t += dx * r * math.Atan(dx/r)
		}
		return (t - 0.5*z*z*math.Log(dx*dx+dy*dy+z*z)) / (2 * math.Pi)
	}
	var sum float64
	for i, x := range [2]float64{x1, x2} {
		for j, y := range [2]float64{y1, y2} {
			for k, xi := range [2]float64{xi1, xi2} {
				for l, eta := range [2]float64{eta1, eta2} {
					sum += sign(i+j+k+l) * g(x, y, eta, xi)
				}
			}
		}
	}
	return sum / ((x2 - x1) * (y2 - y1))
}

// CoaxialSquares returns the view factor from a square of side a to a parallel
// square of side b centered on the same axis at distance c.
func CoaxialSquares(a, b, c float64) float64 {
	return ParallelRectangles(-a/2, a/2, -a/2, a/2, -b/2, b/2, -b/2, b/2, c)
}

// CommonEdge returns the view factor from a w×l rectangle to an h×l rectangle
// meeting it at a right angle along their common edge of length l.
func CommonEdge(w, h, l float64) float64 {
	ww, hh := (w/l)*(w/l), (h/l)*(h/l)
	W, H := w/l, h/l
	r := math.Sqrt(ww + hh)
	a := (1 + ww) * (1 + hh) / (1 + ww + hh)
	b := math.Pow(ww*(1+ww+hh)/((1+ww)*(ww+hh)), ww)
	c := math.Pow(hh*(1+hh+ww)/((1+hh)*(hh+ww)), hh)
	return (W*math.Atan(1/W) + H*math.Atan(1/H) - r*math.Atan(1/r) + 0.25*math.Log(a*b*c)) / (math.Pi * W)
}

// PointToRectangle returns the view factor from a differential area to a
// parallel a×b rectangle at distance c whose corner lies on the normal of the
// area.
func PointToRectangle(a, b, c float64) float64 {
	x, y := a/c, b/c
	sx, sy := math.Sqrt(1+x*x), math.Sqrt(1+y*y)
	return (x/sx*math.Atan(y/sx) + y/sy*math.Atan(x/sy)) / (2 * math.Pi)
}

func sign(n int) float64 {
	if n%2 == 0 {
		return 1
	}
	return -1
}
