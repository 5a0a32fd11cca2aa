// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package utils

import (
	"math"
	"testing"

	"github.com/2dChan/viewfactor/catalog"
	"github.com/golang/geo/r3"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestGenerateRandomScene_Length(t *testing.T) {
	tests := []struct {
		name string
		cnt  int
		seed int64
	}{
		{"zero surfaces", 0, 42},
		{"one surface", 1, 42},
		{"ten surfaces", 10, 0},
		{"hundred surfaces", 100, 99},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := GenerateRandomScene(tt.cnt, tt.seed)
			if len(s.Surfaces) != tt.cnt {
				t.Errorf("GenerateRandomScene(%v, %v) len = %v, want %v", tt.cnt, tt.seed,
					len(s.Surfaces), tt.cnt)
			}
			if len(s.Vertices) != 4*tt.cnt {
				t.Errorf("GenerateRandomScene(%v, %v) vertices = %v, want %v", tt.cnt, tt.seed,
					len(s.Vertices), 4*tt.cnt)
			}
		})
	}
}

func TestGenerateRandomScene_Valid(t *testing.T) {
	const (
		cnt  = 100
		seed = 0
	)
	s := GenerateRandomScene(cnt, seed)
	c, err := s.Catalog()
	if err != nil {
		t.Fatalf("GenerateRandomScene(%v, %v).Catalog() error = %v, want nil", cnt, seed, err)
	}
	if got, want := len(c.Obstructions()), cnt/3; got != want {
		t.Errorf("len(Obstructions()) = %v, want %v", got, want)
	}
}

func TestGenerateRandomScene_Determinism(t *testing.T) {
	const (
		cnt  = 10
		seed = 0
	)
	a := GenerateRandomScene(cnt, seed)
	b := GenerateRandomScene(cnt, seed)
	if diff := cmp.Diff(b, a); diff != "" {
		t.Errorf("GenerateRandomScene(%v, %v) mismatch (-want +got):\n%v", cnt, seed, diff)
	}
}

func TestBox(t *testing.T) {
	c, err := Box(1, 2, 3).Catalog()
	if err != nil {
		t.Fatalf("Box(1, 2, 3).Catalog() error = %v, want nil", err)
	}
	if got := c.EnclosureVolume(); math.Abs(got-6) > 1e-12 {
		t.Errorf("EnclosureVolume() = %v, want 6", got)
	}
	// Every wall faces the box center.
	center := r3.Vector{X: 0.5, Y: 1, Z: 1.5}
	for _, id := range c.Radiating() {
		pl, err := c.Plane(id)
		if err != nil {
			t.Fatalf("Plane(%d) error = %v, want nil", id, err)
		}
		if d := pl.Distance(center); d <= 0 {
			t.Errorf("surface %d: center distance = %v, want > 0", id, d)
		}
	}
}

func TestMirror(t *testing.T) {
	s := PerpendicularRectangles(3, 4, 3, 4, 1, 2, 1, 2)
	m := s.Mirror(r3.Vector{X: 0, Y: 0, Z: 1})

	want := []r3.Vector{{X: 3, Y: 3, Z: 0}, {X: 4, Y: 3, Z: 0}, {X: 4, Y: 4, Z: 0}, {X: 3, Y: 4, Z: 0}}
	if diff := cmp.Diff(want, s.Vertices[:4]); diff != "" {
		t.Errorf("Mirror changed the original (-want +got):\n%v", diff)
	}
	c, err := m.Catalog()
	if err != nil {
		t.Fatalf("Mirror(...).Catalog() error = %v, want nil", err)
	}
	tests := []struct {
		id   int
		want r3.Vector
	}{
		{1, r3.Vector{X: 0, Y: 0, Z: -1}},
		{2, r3.Vector{X: 1, Y: 0, Z: 0}},
	}
	for _, tt := range tests {
		got, err := c.Normal(tt.id)
		if err != nil {
			t.Fatalf("Normal(%d) error = %v, want nil", tt.id, err)
		}
		if diff := cmp.Diff(tt.want, got, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
			t.Errorf("Normal(%d) mismatch (-want +got):\n%v", tt.id, diff)
		}
	}
}

func TestScene_Add(t *testing.T) {
	s := &Scene{}
	id1 := s.Add(catalog.RoleRadiating, Rectangle(0, 1, 0, 1, 0, true)...)
	id2 := s.Add(catalog.RoleObstruction, Rectangle(0, 1, 0, 1, 1, false)...)
	if id1 != 1 || id2 != 2 {
		t.Errorf("Add(...) IDs = %v, %v, want 1, 2", id1, id2)
	}
	want := catalog.Surface{ID: 2, Vertices: []int{4, 5, 6, 7}, Role: catalog.RoleObstruction}
	if diff := cmp.Diff(want, s.Surfaces[1]); diff != "" {
		t.Errorf("Surfaces[1] mismatch (-want +got):\n%v", diff)
	}
}

// Benchmarks

func BenchmarkGenerateRandomScene(b *testing.B) {
	for b.Loop() {
		GenerateRandomScene(1000, 0)
	}
}
