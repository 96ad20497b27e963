package geometry

import (
	"fmt"
	"math"
)

// Hill evaluates the Gaussian bump exp(-(x^2+y^2) / 2*sigma^2).
func Hill(x, y, sigma float64) float64 {
	r2 := x*x + y*y
	return math.Exp(-r2 / (2.0 * sigma * sigma))
}

// HillGradient returns the gradient of the Gaussian bump at each point.
// The bump lives in the first two coordinates; higher dimensions are flat.
func HillGradient(points []Vec, sigma float64) ([]Vec, error) {
	if len(points) == 0 {
		return nil, nil
	}
	if len(points[0]) < 2 {
		return nil, fmt.Errorf("points must have at least 2 dimensions, got %d", len(points[0]))
	}

	s2 := sigma * sigma
	out := make([]Vec, len(points))
	for i, p := range points {
		r2 := p[0]*p[0] + p[1]*p[1]
		base := math.Exp(-r2 / (2.0 * s2))
		g := make(Vec, len(p))
		g[0] = -(p[0] / s2) * base
		g[1] = -(p[1] / s2) * base
		out[i] = g
	}
	return out, nil
}

// CurvatureSign classifies the Gaussian curvature regime at radius r:
// +1 inside the sigma ring (elliptic), 0 on it, -1 outside (hyperbolic).
func CurvatureSign(r, sigma float64) int {
	const tol = 1e-10
	val := sigma*sigma - r*r
	switch {
	case val > tol:
		return 1
	case val < -tol:
		return -1
	default:
		return 0
	}
}

// ExpectedChiNorm approximates E[|z|] for z ~ N(0, I_dim), the reference
// radius used by the optimizer engines.
func ExpectedChiNorm(dim int) float64 {
	return math.Sqrt(float64(dim) - 2.0/3.0)
}

// MahalanobisRadius computes sqrt((p-mean)^T cov^-1 (p-mean)) per point.
// Covariance must be 2x2; every caller works in the planar demo regime.
func MahalanobisRadius(points []Vec, mean Vec, cov [2][2]float64) ([]float64, error) {
	det := cov[0][0]*cov[1][1] - cov[0][1]*cov[1][0]
	if det == 0 {
		return nil, fmt.Errorf("singular covariance matrix")
	}
	inv := [2][2]float64{
		{cov[1][1] / det, -cov[0][1] / det},
		{-cov[1][0] / det, cov[0][0] / det},
	}

	out := make([]float64, len(points))
	for i, p := range points {
		if len(p) < 2 || len(mean) < 2 {
			return nil, fmt.Errorf("mahalanobis radius needs 2d points")
		}
		dx := p[0] - mean[0]
		dy := p[1] - mean[1]
		quad := dx*(inv[0][0]*dx+inv[0][1]*dy) + dy*(inv[1][0]*dx+inv[1][1]*dy)
		if quad < 0 {
			quad = 0
		}
		out[i] = math.Sqrt(quad)
	}
	return out, nil
}
