// Package phasewall implements the radius-dependent boundary transform shared
// by the walker and optimizer engines. Once a vector (or the point it is
// attached to) exceeds a reference radius r0, outward and tangential motion
// is damped while inward motion is boosted, containing trajectories without
// changing their direction of travel.
package phasewall

import (
	"math"

	"github.com/avasker/phasewall/internal/geometry"
)

const (
	// epsNorm guards radial decomposition against the coordinate origin.
	epsNorm = 1e-12

	tangentialDamping = 0.8
	radialBoost       = 0.25
)

func clampStrength(s float64) float64 {
	return math.Min(1.0, math.Max(0.0, s))
}

// ApplyToOffset soft-clamps the radial excursion of a single vector beyond
// r0. Strength 1 projects onto the r0 sphere, strength 0 is the identity;
// strengths outside [0,1] saturate. Direction is never changed.
func ApplyToOffset(z geometry.Vec, r0, strength float64) geometry.Vec {
	strength = clampStrength(strength)
	out := z.Clone()
	norm := out.Norm()
	if norm <= r0 {
		return out
	}
	scale := 1.0 - strength*(1.0-r0/norm)
	if scale < 0 {
		scale = 0
	} else if scale > 1 {
		scale = 1
	}
	for i := range out {
		out[i] *= scale
	}
	return out
}

// ApplyToOffsets applies the soft radial clamp to a batch of vectors.
func ApplyToOffsets(zs []geometry.Vec, r0, strength float64) []geometry.Vec {
	out := make([]geometry.Vec, len(zs))
	for i, z := range zs {
		out[i] = ApplyToOffset(z, r0, strength)
	}
	return out
}

// HardProject projects vectors outside radius r0 onto the r0 sphere.
func HardProject(z geometry.Vec, r0 float64) geometry.Vec {
	out := z.Clone()
	norm := out.Norm()
	if norm <= r0 {
		return out
	}
	scale := r0 / norm
	for i := range out {
		out[i] *= scale
	}
	return out
}

// DecomposeRadialTangential splits v into its component along the radial
// direction of position p and the tangential remainder.
func DecomposeRadialTangential(v, p geometry.Vec) (radial, tangential geometry.Vec) {
	norm := p.Norm()
	radialHat := make(geometry.Vec, len(p))
	if norm > epsNorm {
		for i := range p {
			radialHat[i] = p[i] / norm
		}
	} else {
		copy(radialHat, p)
	}

	mag := v.Dot(radialHat)
	radial = radialHat.Scale(mag)
	tangential = v.Sub(radial)
	return radial, tangential
}

// ReshapeNoise rebalances per-agent noise for agents outside radius r0:
// the tangential component is damped and the radial component is nudged
// inward. Agents inside r0 keep their noise untouched.
func ReshapeNoise(positions, noise []geometry.Vec, r0, strength float64) []geometry.Vec {
	strength = clampStrength(strength)
	out := make([]geometry.Vec, len(noise))
	for i, n := range noise {
		if positions[i].Norm() <= r0 {
			out[i] = n.Clone()
			continue
		}
		radial, tangential := DecomposeRadialTangential(n, positions[i])
		adjusted := make(geometry.Vec, len(n))
		radialScale := 1.0 - strength*radialBoost
		tangentialScale := 1.0 - strength*tangentialDamping
		for j := range adjusted {
			adjusted[j] = radial[j]*radialScale + tangential[j]*tangentialScale
		}
		out[i] = adjusted
	}
	return out
}

// MahalanobisWall applies the radial clamp in the whitened coordinates of a
// 2x2 covariance: points are centered, whitened via the eigendecomposition
// (eigenvalues floored at 1e-12), clamped, and mapped back.
func MahalanobisWall(points []geometry.Vec, mean geometry.Vec, cov [2][2]float64, r0, strength float64) ([]geometry.Vec, error) {
	radii, err := geometry.MahalanobisRadius(points, mean, cov)
	if err != nil {
		return nil, err
	}

	anyOutside := false
	for _, r := range radii {
		if r > r0 {
			anyOutside = true
			break
		}
	}
	if !anyOutside {
		out := make([]geometry.Vec, len(points))
		for i, p := range points {
			out[i] = p.Clone()
		}
		return out, nil
	}

	ev1, ev2, v1, v2 := eigh2x2(cov)
	ev1 = math.Max(ev1, epsNorm)
	ev2 = math.Max(ev2, epsNorm)
	s1, s2 := math.Sqrt(ev1), math.Sqrt(ev2)

	out := make([]geometry.Vec, len(points))
	for i, p := range points {
		dx := p[0] - mean[0]
		dy := p[1] - mean[1]
		w := geometry.Vec{
			(dx*v1[0] + dy*v1[1]) / s1,
			(dx*v2[0] + dy*v2[1]) / s2,
		}
		w = ApplyToOffset(w, r0, strength)
		restored := p.Clone()
		restored[0] = w[0]*s1*v1[0] + w[1]*s2*v2[0] + mean[0]
		restored[1] = w[0]*s1*v1[1] + w[1]*s2*v2[1] + mean[1]
		out[i] = restored
	}
	return out, nil
}

// eigh2x2 returns the eigenvalues and orthonormal eigenvectors of a
// symmetric 2x2 matrix in ascending eigenvalue order.
func eigh2x2(m [2][2]float64) (ev1, ev2 float64, v1, v2 [2]float64) {
	a, b, c := m[0][0], m[0][1], m[1][1]
	tr := a + c
	det := a*c - b*b
	disc := math.Sqrt(math.Max(0, tr*tr/4.0-det))
	ev1 = tr/2.0 - disc
	ev2 = tr/2.0 + disc

	if math.Abs(b) > epsNorm {
		v1 = normalize2(ev1-c, b)
		v2 = normalize2(ev2-c, b)
	} else {
		if a <= c {
			v1 = [2]float64{1, 0}
			v2 = [2]float64{0, 1}
		} else {
			v1 = [2]float64{0, 1}
			v2 = [2]float64{1, 0}
		}
	}
	return ev1, ev2, v1, v2
}

func normalize2(x, y float64) [2]float64 {
	n := math.Hypot(x, y)
	if n < epsNorm {
		return [2]float64{1, 0}
	}
	return [2]float64{x / n, y / n}
}
