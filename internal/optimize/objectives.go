// Package optimize implements two toy stochastic optimizers (a simple
// evolution strategy and a diagonal-covariance CMA-style flow) used to probe
// the phase-wall perturbation under noisy evaluation.
package optimize

import (
	"math"
	"math/rand"

	"github.com/avasker/phasewall/internal/config"
	"github.com/avasker/phasewall/internal/geometry"
)

// evalClamp bounds evaluation points so the test functions stay finite.
const evalClamp = 50.0

func sphere(x geometry.Vec) float64 {
	sum := 0.0
	for _, v := range x {
		sum += v * v
	}
	return sum
}

func rosenbrock(x geometry.Vec) float64 {
	sum := 0.0
	for i := 0; i < len(x)-1; i++ {
		a := x[i+1] - x[i]*x[i]
		b := 1.0 - x[i]
		sum += 100.0*a*a + b*b
	}
	return sum
}

func rastrigin(x geometry.Vec) float64 {
	sum := 10.0 * float64(len(x))
	for _, v := range x {
		sum += v*v - 10.0*math.Cos(2.0*math.Pi*v)
	}
	return sum
}

func objectiveFunc(obj config.Objective) func(geometry.Vec) float64 {
	switch obj {
	case config.Rosenbrock:
		return rosenbrock
	case config.Rastrigin:
		return rastrigin
	default:
		return sphere
	}
}

// evaluate clamps x component-wise to [-50, 50], applies the objective, and
// adds Gaussian observation noise when noiseStd > 0.
func evaluate(fn func(geometry.Vec) float64, x geometry.Vec, noiseStd float64, rng *rand.Rand) float64 {
	safe := make(geometry.Vec, len(x))
	for i, v := range x {
		safe[i] = math.Min(evalClamp, math.Max(-evalClamp, v))
	}
	y := fn(safe)
	if noiseStd > 0 {
		y += rng.NormFloat64() * noiseStd
	}
	return y
}
