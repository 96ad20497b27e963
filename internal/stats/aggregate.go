// Package stats aggregates raw benchmark rows into per-method summaries
// with bootstrap confidence intervals and paired significance tests.
// Statistical degeneracy (missing baselines, zero-variance samples) is
// surfaced as NaN, never as an error.
package stats

import (
	"math"
	"math/rand"
	"sort"

	"github.com/avasker/phasewall/internal/bench"
)

const (
	bootstrapResamples = 2000
	// bootstrapSeed is fixed so CI bounds are themselves reproducible.
	bootstrapSeed = 0
)

// AggregateResult summarizes one (scenario, engine, method) group.
type AggregateResult struct {
	Scenario string
	Engine   string
	Method   string

	N           int
	MedianScore float64
	MeanScore   float64
	StdScore    float64
	CILow       float64
	CIHigh      float64

	WinRate        float64
	RatioVsVanilla float64
	WilcoxonP      float64
}

type groupKey struct {
	scenario string
	engine   string
}

// Aggregate groups rows by (scenario, engine), anchors each group on its
// vanilla rows, and emits one summary per method. Groups are ordered by
// (scenario, engine) and methods alphabetically within a group.
func Aggregate(results []bench.RunResult) []AggregateResult {
	byPair := make(map[groupKey]map[string][]bench.RunResult)
	for _, row := range results {
		key := groupKey{row.Scenario, row.Engine}
		if byPair[key] == nil {
			byPair[key] = make(map[string][]bench.RunResult)
		}
		byPair[key][row.Method] = append(byPair[key][row.Method], row)
	}

	keys := make([]groupKey, 0, len(byPair))
	for key := range byPair {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].scenario != keys[j].scenario {
			return keys[i].scenario < keys[j].scenario
		}
		return keys[i].engine < keys[j].engine
	})

	var out []AggregateResult
	for _, key := range keys {
		methodMap := byPair[key]

		baselineRows := methodMap[bench.MethodVanilla]
		baselineScores := scoresOf(baselineRows)
		baselineBySeed := make(map[int64]float64, len(baselineRows))
		for _, r := range baselineRows {
			baselineBySeed[r.Seed] = r.Score
		}

		methods := make([]string, 0, len(methodMap))
		for m := range methodMap {
			methods = append(methods, m)
		}
		sort.Strings(methods)

		for _, method := range methods {
			rows := methodMap[method]
			scores := scoresOf(rows)
			ciLow, ciHigh := BootstrapCI(scores)

			ratio := math.NaN()
			p := math.NaN()
			winRate := math.NaN()

			if len(baselineScores) > 0 {
				ratio = safeRatio(Median(scores), Median(baselineScores))

				var pairedBase, pairedCand []float64
				for _, r := range rows {
					if base, ok := baselineBySeed[r.Seed]; ok {
						pairedBase = append(pairedBase, base)
						pairedCand = append(pairedCand, r.Score)
					}
				}

				if method == bench.MethodVanilla {
					winRate = 0.5
				} else if len(pairedBase) >= 2 {
					p = WilcoxonGreater(pairedBase, pairedCand)
					wins := 0
					for i := range pairedCand {
						if pairedCand[i] < pairedBase[i] {
							wins++
						}
					}
					winRate = float64(wins) / float64(len(pairedCand))
				}
			}

			out = append(out, AggregateResult{
				Scenario:       key.scenario,
				Engine:         key.engine,
				Method:         method,
				N:              len(scores),
				MedianScore:    Median(scores),
				MeanScore:      mean(scores),
				StdScore:       stdPop(scores),
				CILow:          ciLow,
				CIHigh:         ciHigh,
				WinRate:        winRate,
				RatioVsVanilla: ratio,
				WilcoxonP:      p,
			})
		}
	}

	return out
}

func scoresOf(rows []bench.RunResult) []float64 {
	scores := make([]float64, len(rows))
	for i, r := range rows {
		scores[i] = r.Score
	}
	return scores
}

// safeRatio guards against meaningless ratios on degenerate score scales.
func safeRatio(value, baseline float64) float64 {
	if baseline <= 0 || value < 0 {
		return math.NaN()
	}
	return value / math.Max(1e-12, baseline)
}

// BootstrapCI returns the 2.5/97.5 percentile interval of resampled medians.
// The resampling generator is seeded per call so bounds are reproducible and
// concurrent aggregations never share random state.
func BootstrapCI(values []float64) (low, high float64) {
	if len(values) == 0 {
		return math.NaN(), math.NaN()
	}

	rng := rand.New(rand.NewSource(bootstrapSeed))
	medians := make([]float64, bootstrapResamples)
	draw := make([]float64, len(values))
	for b := range medians {
		for i := range draw {
			draw[i] = values[rng.Intn(len(values))]
		}
		medians[b] = Median(draw)
	}

	sort.Float64s(medians)
	return percentileSorted(medians, 2.5), percentileSorted(medians, 97.5)
}

// Median returns the middle value, averaging the two central elements for
// even-sized input.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// percentileSorted linearly interpolates the q-th percentile of a sorted
// slice.
func percentileSorted(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 {
		return sorted[0]
	}
	pos := q / 100 * float64(n-1)
	lo := int(math.Floor(pos))
	if lo >= n-1 {
		return sorted[n-1]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stdPop(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	mu := mean(values)
	sum := 0.0
	for _, v := range values {
		d := v - mu
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}
