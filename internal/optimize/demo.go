package optimize

import (
	"fmt"
	"math"
	"sort"

	"github.com/avasker/phasewall/internal/config"
)

const demoSeedBase = 10000

// PairDemo compares vanilla and phasewall variants of one optimizer engine
// over a fresh seed set, reporting median best-score trajectories and paired
// summary statistics for interactive display.
type PairDemo struct {
	VanillaFinal   float64
	WallFinal      float64
	VanillaHistory []float64
	WallHistory    []float64
	MedianRatio    float64
	WinRate        float64
}

// RunPairDemo executes seedCount paired runs of the given engine.
func RunPairDemo(engine config.Engine, p Params, seedCount int) (*PairDemo, error) {
	if !engine.IsOptimizer() {
		return nil, fmt.Errorf("optimize: unsupported engine: %s", engine)
	}

	run := func(seed int64, wall bool) *Run {
		rp := p
		rp.Seed = seed
		rp.WallEnabled = wall && p.NoiseStd > 0
		if engine == config.EngineToyES {
			return RunToyES(rp)
		}
		return RunCMAES(rp)
	}

	vanillaRuns := make([]*Run, seedCount)
	wallRuns := make([]*Run, seedCount)
	for i := 0; i < seedCount; i++ {
		seed := int64(demoSeedBase + i)
		vanillaRuns[i] = run(seed, false)
		wallRuns[i] = run(seed, true)
	}

	vanillaFinal := make([]float64, seedCount)
	wallFinal := make([]float64, seedCount)
	wins := 0
	for i := range vanillaRuns {
		vanillaFinal[i] = vanillaRuns[i].Best
		wallFinal[i] = wallRuns[i].Best
		if wallFinal[i] < vanillaFinal[i] {
			wins++
		}
	}

	histLen := math.MaxInt
	for _, r := range vanillaRuns {
		histLen = min(histLen, len(r.History))
	}
	for _, r := range wallRuns {
		histLen = min(histLen, len(r.History))
	}

	vMed := medianOf(vanillaFinal)
	ratio := medianOf(wallFinal) / math.Max(1e-12, vMed)

	return &PairDemo{
		VanillaFinal:   vMed,
		WallFinal:      medianOf(wallFinal),
		VanillaHistory: medianHistory(vanillaRuns, histLen),
		WallHistory:    medianHistory(wallRuns, histLen),
		MedianRatio:    ratio,
		WinRate:        float64(wins) / float64(seedCount),
	}, nil
}

func medianHistory(runs []*Run, length int) []float64 {
	out := make([]float64, length)
	col := make([]float64, len(runs))
	for i := 0; i < length; i++ {
		for j, r := range runs {
			col[j] = r.History[i]
		}
		out[i] = medianOf(col)
	}
	return out
}

func medianOf(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
