package stats

import (
	"math"
	"sort"
)

// exactCutoff bounds the exact-distribution computation; above it (or with
// tied ranks) the normal approximation takes over.
const exactCutoff = 25

// WilcoxonGreater runs the paired signed-rank test, one-sided with the
// alternative that a tends to exceed b. Zero differences are discarded; an
// all-zero sample has no signal and yields NaN.
func WilcoxonGreater(a, b []float64) float64 {
	var diffs []float64
	for i := range a {
		if d := a[i] - b[i]; d != 0 {
			diffs = append(diffs, d)
		}
	}
	n := len(diffs)
	if n == 0 {
		return math.NaN()
	}

	ranks, tieSum, tied := rankAbs(diffs)
	wPlus := 0.0
	for i, d := range diffs {
		if d > 0 {
			wPlus += ranks[i]
		}
	}

	if n <= exactCutoff && !tied {
		return exactSurvival(n, int(math.Round(wPlus)))
	}

	mn := float64(n) * float64(n+1) / 4.0
	variance := float64(n)*float64(n+1)*float64(2*n+1)/24.0 - tieSum/48.0
	if variance <= 0 {
		return math.NaN()
	}
	z := (wPlus - mn) / math.Sqrt(variance)
	return 1.0 - normalCDF(z)
}

// rankAbs ranks |diffs| ascending with mid-ranks for ties, returning the
// tie correction term sum(t^3 - t).
func rankAbs(diffs []float64) (ranks []float64, tieSum float64, tied bool) {
	n := len(diffs)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return math.Abs(diffs[order[i]]) < math.Abs(diffs[order[j]])
	})

	ranks = make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j+1 < n && math.Abs(diffs[order[j+1]]) == math.Abs(diffs[order[i]]) {
			j++
		}
		// mid-rank over the tie group [i, j]
		avg := float64(i+j)/2.0 + 1.0
		for k := i; k <= j; k++ {
			ranks[order[k]] = avg
		}
		if t := j - i + 1; t > 1 {
			tied = true
			tieSum += float64(t*t*t - t)
		}
		i = j + 1
	}
	return ranks, tieSum, tied
}

// exactSurvival computes P(W+ >= w) over the exact null distribution of the
// signed-rank statistic for n untied ranks.
func exactSurvival(n, w int) float64 {
	maxW := n * (n + 1) / 2
	counts := make([]float64, maxW+1)
	counts[0] = 1
	for r := 1; r <= n; r++ {
		for s := maxW; s >= r; s-- {
			counts[s] += counts[s-r]
		}
	}

	tail := 0.0
	for s := w; s <= maxW; s++ {
		tail += counts[s]
	}
	return tail / math.Pow(2, float64(n))
}

// normalCDF evaluates the standard normal CDF via the Abramowitz-Stegun
// approximation.
func normalCDF(x float64) float64 {
	const (
		a1 = 0.254829592
		a2 = -0.284496736
		a3 = 1.421413741
		a4 = -1.453152027
		a5 = 1.061405429
		p  = 0.3275911
	)

	sign := 1.0
	if x < 0 {
		sign = -1.0
	}
	x = math.Abs(x) / math.Sqrt2

	t := 1.0 / (1.0 + p*x)
	y := 1.0 - (((((a5*t+a4)*t)+a3)*t+a2)*t+a1)*t*math.Exp(-x*x)

	return 0.5 * (1.0 + sign*y)
}
