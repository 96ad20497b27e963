package optimize

import (
	"math"
	"math/rand"
	"sort"

	"github.com/avasker/phasewall/internal/config"
	"github.com/avasker/phasewall/internal/geometry"
	"github.com/avasker/phasewall/internal/phasewall"
)

// Run is the outcome of one optimizer invocation. Score is the best noisy
// value ever observed; History records it once per generation.
type Run struct {
	History []float64
	Best    float64
	Evals   int
}

// Params configures a single optimizer run. WallEnabled only has an effect
// when NoiseStd is strictly positive: in a deterministic setting the wall
// is a no-op, and callers are expected to gate it accordingly.
type Params struct {
	Objective    config.Objective
	Dim          int
	Budget       int
	Population   int
	NoiseStd     float64
	Seed         int64
	WallEnabled  bool
	WallStrength float64
}

// RunToyES minimizes the objective with a simple evolution strategy: sample
// an isotropic population, select the best half by noisy score, recenter the
// mean, and smooth sigma toward the elite spread. When the wall is on, the
// sampled offsets are reshaped for evaluation only; selection always uses
// the unperturbed points so the elite computation stays uncontaminated.
func RunToyES(p Params) *Run {
	rng := rand.New(rand.NewSource(p.Seed))

	mean := make(geometry.Vec, p.Dim)
	for i := range mean {
		mean[i] = 3.0
	}
	sigma := 2.0
	r0 := geometry.ExpectedChiNorm(p.Dim)
	fn := objectiveFunc(p.Objective)

	best := math.Inf(1)
	var history []float64
	evals := 0

	for evals < p.Budget {
		zs := make([]geometry.Vec, p.Population)
		for i := range zs {
			z := make(geometry.Vec, p.Dim)
			for j := range z {
				z[j] = rng.NormFloat64()
			}
			zs[i] = z
		}

		tells := make([]geometry.Vec, p.Population)
		for i, z := range zs {
			x := make(geometry.Vec, p.Dim)
			for j := range x {
				x[j] = mean[j] + sigma*z[j]
			}
			tells[i] = x
		}

		evalPoints := tells
		if p.WallEnabled {
			zEval := phasewall.ApplyToOffsets(zs, r0, p.WallStrength)
			evalPoints = make([]geometry.Vec, p.Population)
			for i, z := range zEval {
				x := make(geometry.Vec, p.Dim)
				for j := range x {
					x[j] = mean[j] + sigma*z[j]
				}
				evalPoints[i] = x
			}
		}

		ys := make([]float64, p.Population)
		for i, x := range evalPoints {
			ys[i] = evaluate(fn, x, p.NoiseStd, rng)
			if ys[i] < best {
				best = ys[i]
			}
		}

		order := argsort(ys)
		mu := p.Population / 2
		elite := make([]geometry.Vec, mu)
		for i := 0; i < mu; i++ {
			elite[i] = tells[order[i]]
		}
		mean = geometry.Mean(elite)

		spread := 0.0
		for _, e := range elite {
			spread += e.Sub(mean).Norm()
		}
		spread = spread / float64(mu) / math.Sqrt(float64(p.Dim))
		sigma = 0.85*sigma + 0.15*math.Max(1e-3, spread)

		// the final partial generation still runs in full
		evals += p.Population
		history = append(history, best)
	}

	return &Run{History: history, Best: best, Evals: evals}
}

func argsort(ys []float64) []int {
	order := make([]int, len(ys))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return ys[order[a]] < ys[order[b]] })
	return order
}
