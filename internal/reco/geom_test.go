package reco

import (
	"math"
	"testing"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestVec3Basics(t *testing.T) {
	v := Vec3{1, 2, 3}
	w := Vec3{4, -2, 1}

	if got := v.Add(w); got != (Vec3{5, 0, 4}) {
		t.Errorf("Add = %v", got)
	}
	if got := v.Sub(w); got != (Vec3{-3, 4, 2}) {
		t.Errorf("Sub = %v", got)
	}
	if got := v.Dot(w); got != 3 {
		t.Errorf("Dot = %v, want 3", got)
	}
	if got := v.Scale(2); got != (Vec3{2, 4, 6}) {
		t.Errorf("Scale = %v", got)
	}
	cross := Vec3{1, 0, 0}.Cross(Vec3{0, 1, 0})
	if cross != (Vec3{0, 0, 1}) {
		t.Errorf("Cross = %v, want (0,0,1)", cross)
	}
}

func TestUnit(t *testing.T) {
	u := Vec3{0, 3, 4}.Unit()
	if !almostEqual(u.Norm(), 1, 1e-12) {
		t.Errorf("Unit norm = %v, want 1", u.Norm())
	}
	if got := (Vec3{}).Unit(); got != (Vec3{}) {
		t.Errorf("Unit of zero vector = %v, want zero", got)
	}
}

func TestOpeningAngleDeg(t *testing.T) {
	tests := []struct {
		name string
		v, w Vec3
		want float64
	}{
		{"parallel", Vec3{0, 0, 1}, Vec3{0, 0, 5}, 0},
		{"orthogonal", Vec3{1, 0, 0}, Vec3{0, 1, 0}, 90},
		{"antiparallel", Vec3{0, 0, 1}, Vec3{0, 0, -2}, 180},
		{"zero vector", Vec3{}, Vec3{1, 0, 0}, 0},
	}
	for _, tt := range tests {
		if got := OpeningAngleDeg(tt.v, tt.w); !almostEqual(got, tt.want, 1e-9) {
			t.Errorf("%s: OpeningAngleDeg = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestPolarAngleDeg(t *testing.T) {
	tests := []struct {
		name string
		v    Vec3
		want float64
	}{
		{"up", Vec3{0, 0, 1}, 0},
		{"horizontal", Vec3{1, 0, 0}, 90},
		{"down", Vec3{0, 0, -1}, 180},
		{"zero", Vec3{}, 0},
	}
	for _, tt := range tests {
		if got := PolarAngleDeg(tt.v); !almostEqual(got, tt.want, 1e-9) {
			t.Errorf("%s: PolarAngleDeg = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestPointLineDistance(t *testing.T) {
	// Line along z through origin; point at (3,4,17).
	d := PointLineDistance(Vec3{3, 4, 17}, Vec3{}, Vec3{0, 0, 1})
	if !almostEqual(d, 5, 1e-12) {
		t.Errorf("PointLineDistance = %v, want 5", d)
	}
	// Non-unit direction must not change the result.
	d = PointLineDistance(Vec3{3, 4, 17}, Vec3{}, Vec3{0, 0, 7})
	if !almostEqual(d, 5, 1e-12) {
		t.Errorf("PointLineDistance (scaled dir) = %v, want 5", d)
	}
	// Zero direction falls back to point distance.
	d = PointLineDistance(Vec3{0, 3, 4}, Vec3{}, Vec3{})
	if !almostEqual(d, 5, 1e-12) {
		t.Errorf("PointLineDistance (zero dir) = %v, want 5", d)
	}
}

func TestLineLineDistance(t *testing.T) {
	// Skew lines: the x axis and a line along y through (0,0,5).
	d := LineLineDistance(Vec3{}, Vec3{1, 0, 0}, Vec3{0, 0, 5}, Vec3{0, 1, 0})
	if !almostEqual(d, 5, 1e-12) {
		t.Errorf("skew LineLineDistance = %v, want 5", d)
	}
	// Parallel lines fall back to point-to-line distance.
	d = LineLineDistance(Vec3{}, Vec3{0, 0, 1}, Vec3{3, 4, -2}, Vec3{0, 0, 2})
	if !almostEqual(d, 5, 1e-12) {
		t.Errorf("parallel LineLineDistance = %v, want 5", d)
	}
}
