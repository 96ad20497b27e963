package optimize

import (
	"math"
	"math/rand"
	"sort"

	"github.com/avasker/phasewall/internal/geometry"
	"github.com/avasker/phasewall/internal/phasewall"
)

// evalSeedOffset separates the evaluation-noise stream from the sampler.
const evalSeedOffset = 100000

// Candidate carries both the point handed to the objective and the point
// recorded for selection. The two are equal whenever the wall is off, so the
// tell step never sees the perturbation.
type Candidate struct {
	Eval geometry.Vec
	Tell geometry.Vec
}

type scored struct {
	tell geometry.Vec
	y    float64
}

// cmaesState is a lightweight ask/eval/tell optimizer with a diagonal
// covariance estimate.
type cmaesState struct {
	dim        int
	population int
	rng        *rand.Rand
	mean       geometry.Vec
	sigma      float64
	diagVar    geometry.Vec

	wallOn       bool
	wallStrength float64
	r0           float64
}

func newCmaesState(dim, population int, seed int64, wallOn bool, wallStrength float64) *cmaesState {
	mean := make(geometry.Vec, dim)
	diagVar := make(geometry.Vec, dim)
	for i := 0; i < dim; i++ {
		mean[i] = 3.0
		diagVar[i] = 1.0
	}
	return &cmaesState{
		dim:          dim,
		population:   population,
		rng:          rand.New(rand.NewSource(seed)),
		mean:         mean,
		sigma:        2.0,
		diagVar:      diagVar,
		wallOn:       wallOn,
		wallStrength: wallStrength,
		r0:           geometry.ExpectedChiNorm(dim),
	}
}

// ask samples one candidate from the diagonal-covariance Gaussian.
func (c *cmaesState) ask() Candidate {
	z := make(geometry.Vec, c.dim)
	for i := range z {
		z[i] = c.rng.NormFloat64()
	}

	scale := make(geometry.Vec, c.dim)
	for i, v := range c.diagVar {
		scale[i] = math.Sqrt(clip(v, 1e-8, 1e6))
	}

	tell := make(geometry.Vec, c.dim)
	for i := range tell {
		tell[i] = c.mean[i] + c.sigma*scale[i]*z[i]
	}

	if !c.wallOn {
		return Candidate{Eval: tell, Tell: tell}
	}

	zEval := phasewall.ApplyToOffset(z, c.r0, c.wallStrength)
	eval := make(geometry.Vec, c.dim)
	for i := range eval {
		eval[i] = c.mean[i] + c.sigma*scale[i]*zEval[i]
	}
	return Candidate{Eval: eval, Tell: tell}
}

// tell folds a full population of observed scores into the mean, the
// diagonal variance, and the step size, each by exponential smoothing.
func (c *cmaesState) tell(solutions []scored) {
	sort.SliceStable(solutions, func(a, b int) bool { return solutions[a].y < solutions[b].y })

	mu := c.population / 2
	elite := make([]geometry.Vec, mu)
	for i := 0; i < mu; i++ {
		elite[i] = solutions[i].tell
	}

	eliteMean := geometry.Mean(elite)
	eliteVar := geometry.Variance(elite)

	for i := range c.mean {
		c.mean[i] = clip(0.8*c.mean[i]+0.2*eliteMean[i], -1e3, 1e3)
		c.diagVar[i] = 0.9*c.diagVar[i] + 0.1*clip(eliteVar[i], 1e-8, 1e6)
	}

	trace := 0.0
	for _, v := range c.diagVar {
		trace += v
	}
	trace /= float64(c.dim)
	c.sigma = clip(0.9*c.sigma+0.1*math.Sqrt(trace), 1e-3, 10.0)
}

func clip(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

// RunCMAES drives the ask/eval/tell loop. Candidates are evaluated one at a
// time against a dedicated noise stream; the budget can cut a population
// short mid-ask, in which case no tell happens for that partial batch.
func RunCMAES(p Params) *Run {
	wallOn := p.WallEnabled && p.NoiseStd > 0
	opt := newCmaesState(p.Dim, p.Population, p.Seed, wallOn, p.WallStrength)
	evalRng := rand.New(rand.NewSource(p.Seed + evalSeedOffset))
	fn := objectiveFunc(p.Objective)

	best := math.Inf(1)
	var history []float64
	evals := 0

	for evals < p.Budget {
		solutions := make([]scored, 0, p.Population)
		for i := 0; i < opt.population; i++ {
			cand := opt.ask()
			y := evaluate(fn, cand.Eval, p.NoiseStd, evalRng)
			if y < best {
				best = y
			}
			solutions = append(solutions, scored{tell: cand.Tell, y: y})
			evals++
			if evals >= p.Budget {
				break
			}
		}

		if len(solutions) == opt.population {
			opt.tell(solutions)
		}

		history = append(history, best)
	}

	return &Run{History: history, Best: best, Evals: evals}
}
