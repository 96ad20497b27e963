package phasewall

import (
	"math"
	"testing"

	"github.com/avasker/phasewall/internal/geometry"
)

const tol = 1e-12

func TestApplyToOffsetInsideUntouched(t *testing.T) {
	z := geometry.Vec{0.3, -0.4}
	out := ApplyToOffset(z, 1.0, 0.7)
	for i := range z {
		if out[i] != z[i] {
			t.Errorf("component %d changed: %g -> %g", i, z[i], out[i])
		}
	}
}

func TestApplyToOffsetShrinksOutside(t *testing.T) {
	z := geometry.Vec{3.0, 4.0} // norm 5
	out := ApplyToOffset(z, 1.0, 0.5)

	if out.Norm() >= z.Norm() {
		t.Errorf("norm should shrink: %g -> %g", z.Norm(), out.Norm())
	}

	// scale = 1 - 0.5*(1 - 1/5) = 0.6
	want := 3.0
	if math.Abs(out.Norm()-want) > 1e-9 {
		t.Errorf("expected norm %g, got %g", want, out.Norm())
	}
}

func TestApplyToOffsetStrengthSaturates(t *testing.T) {
	z := geometry.Vec{2.0, 0.0, 1.0}

	exact := ApplyToOffset(z, 1.0, 1.0)
	over := ApplyToOffset(z, 1.0, 3.5)

	for i := range exact {
		if exact[i] != over[i] {
			t.Fatalf("strength > 1 must behave as strength 1: %v vs %v", exact, over)
		}
	}

	if math.Abs(exact.Norm()-1.0) > 1e-9 {
		t.Errorf("full strength should clamp to r0, got norm %g", exact.Norm())
	}
}

func TestApplyToOffsetZeroStrengthIdentity(t *testing.T) {
	z := geometry.Vec{5.0, -7.0}
	out := ApplyToOffset(z, 1.0, 0.0)
	for i := range z {
		if out[i] != z[i] {
			t.Errorf("zero strength must be the identity: %v vs %v", z, out)
		}
	}
}

func TestHardProject(t *testing.T) {
	tests := []struct {
		name     string
		z        geometry.Vec
		r0       float64
		wantNorm float64
	}{
		{"outside", geometry.Vec{0, 4}, 1.0, 1.0},
		{"inside untouched", geometry.Vec{0.2, 0.1}, 1.0, math.Hypot(0.2, 0.1)},
		{"on boundary", geometry.Vec{1, 0}, 1.0, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := HardProject(tt.z, tt.r0)
			if math.Abs(out.Norm()-tt.wantNorm) > 1e-9 {
				t.Errorf("norm = %g, want %g", out.Norm(), tt.wantNorm)
			}
		})
	}
}

func TestDecomposeRadialTangential(t *testing.T) {
	v := geometry.Vec{1.0, 1.0}
	p := geometry.Vec{2.0, 0.0}

	radial, tangential := DecomposeRadialTangential(v, p)

	if math.Abs(radial[0]-1.0) > tol || math.Abs(radial[1]) > tol {
		t.Errorf("radial = %v, want [1 0]", radial)
	}
	if math.Abs(tangential[0]) > tol || math.Abs(tangential[1]-1.0) > tol {
		t.Errorf("tangential = %v, want [0 1]", tangential)
	}

	// components recompose to the original vector
	sum := radial.Add(tangential)
	for i := range v {
		if math.Abs(sum[i]-v[i]) > tol {
			t.Errorf("decomposition does not recompose: %v", sum)
		}
	}
}

func TestDecomposeAtOrigin(t *testing.T) {
	v := geometry.Vec{0.5, -0.5}
	p := geometry.Vec{0.0, 0.0}

	radial, tangential := DecomposeRadialTangential(v, p)
	if radial.Norm() != 0 {
		t.Errorf("radial at origin should vanish, got %v", radial)
	}
	sum := radial.Add(tangential)
	for i := range v {
		if math.Abs(sum[i]-v[i]) > tol {
			t.Errorf("decomposition does not recompose at origin: %v", sum)
		}
	}
}

func TestReshapeNoiseInsideUntouched(t *testing.T) {
	positions := []geometry.Vec{{0.5, 0.0}}
	noise := []geometry.Vec{{0.1, 0.2}}

	out := ReshapeNoise(positions, noise, 1.0, 0.8)
	for i := range noise[0] {
		if out[0][i] != noise[0][i] {
			t.Errorf("noise inside r0 must be untouched: %v vs %v", noise[0], out[0])
		}
	}
}

func TestReshapeNoiseDampsOutside(t *testing.T) {
	// agent on the x-axis outside r0; noise is purely tangential
	positions := []geometry.Vec{{2.0, 0.0}}
	noise := []geometry.Vec{{0.0, 1.0}}

	out := ReshapeNoise(positions, noise, 1.0, 1.0)

	// tangential scale = 1 - 1.0*0.8 = 0.2
	if math.Abs(out[0][1]-0.2) > 1e-9 {
		t.Errorf("tangential component = %g, want 0.2", out[0][1])
	}
	if math.Abs(out[0][0]) > tol {
		t.Errorf("radial component should stay zero, got %g", out[0][0])
	}
}

func TestReshapeNoiseDampsRadial(t *testing.T) {
	positions := []geometry.Vec{{2.0, 0.0}}
	noise := []geometry.Vec{{1.0, 0.0}}

	out := ReshapeNoise(positions, noise, 1.0, 1.0)

	// radial scale = 1 - 1.0*0.25 = 0.75
	if math.Abs(out[0][0]-0.75) > 1e-9 {
		t.Errorf("radial component = %g, want 0.75", out[0][0])
	}
}

func TestMahalanobisWallIdentityCovMatchesEuclidean(t *testing.T) {
	points := []geometry.Vec{{3.0, 0.0}, {0.0, 0.4}}
	mean := geometry.Vec{0.0, 0.0}
	cov := [2][2]float64{{1, 0}, {0, 1}}

	got, err := MahalanobisWall(points, mean, cov, 1.0, 0.5)
	if err != nil {
		t.Fatal(err)
	}

	for i, p := range points {
		want := ApplyToOffset(p, 1.0, 0.5)
		for j := range want {
			if math.Abs(got[i][j]-want[j]) > 1e-9 {
				t.Errorf("point %d: got %v, want %v", i, got[i], want)
			}
		}
	}
}

func TestMahalanobisWallAnisotropic(t *testing.T) {
	// stretched x-axis: a point far along x has small mahalanobis radius
	cov := [2][2]float64{{25, 0}, {0, 1}}
	mean := geometry.Vec{0.0, 0.0}
	points := []geometry.Vec{{4.0, 0.0}, {0.0, 4.0}}

	got, err := MahalanobisWall(points, mean, cov, 1.0, 1.0)
	if err != nil {
		t.Fatal(err)
	}

	// mahalanobis radius 4/5 < 1: untouched
	if math.Abs(got[0][0]-4.0) > 1e-9 {
		t.Errorf("inside point moved: %v", got[0])
	}
	// mahalanobis radius 4 > 1: clamped back to the unit ellipse
	radii, err := geometry.MahalanobisRadius(got[1:], mean, cov)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(radii[0]-1.0) > 1e-6 {
		t.Errorf("outside point should land on the r0 ellipse, radius %g", radii[0])
	}
}
