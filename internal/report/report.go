// Package report writes the benchmark artifact bundle: a raw results table,
// a human-readable summary, and two SVG bar charts. It holds no business
// logic of its own.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/avasker/phasewall/internal/bench"
	"github.com/avasker/phasewall/internal/config"
	"github.com/avasker/phasewall/internal/stats"
)

// Artifact file names within the resolved output directory.
const (
	ResultsFile   = "results.csv"
	SummaryFile   = "summary.md"
	ScoreBarsFile = "score_bars.svg"
	WinRateFile   = "win_rate.svg"

	latestMarker = "latest"
)

// ResolveDir prepares the output directory. A directory named "latest" is a
// reserved marker: a fresh timestamp-named sibling is created instead, so
// repeated runs never overwrite each other in place.
func ResolveDir(out string) (string, error) {
	resolved := out
	if filepath.Base(out) == latestMarker {
		parent := filepath.Dir(out)
		if err := os.MkdirAll(parent, 0755); err != nil {
			return "", err
		}
		resolved = filepath.Join(parent, time.Now().Format("20060102-150405"))
	}
	if err := os.MkdirAll(resolved, 0755); err != nil {
		return "", err
	}
	return resolved, nil
}

// WriteBundle writes all four artifacts, aborting on the first failure.
func WriteBundle(dir string, results []bench.RunResult, aggregates []stats.AggregateResult, scenarios []config.ScenarioConfig, seedCount int) error {
	if err := writeResultsCSV(filepath.Join(dir, ResultsFile), results); err != nil {
		return fmt.Errorf("report: write results: %w", err)
	}
	if err := writeSummary(filepath.Join(dir, SummaryFile), aggregates, scenarios, seedCount); err != nil {
		return fmt.Errorf("report: write summary: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ScoreBarsFile), []byte(ScoreBarsSVG(aggregates)), 0644); err != nil {
		return fmt.Errorf("report: write score chart: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, WinRateFile), []byte(WinRateSVG(aggregates)), 0644); err != nil {
		return fmt.Errorf("report: write win-rate chart: %w", err)
	}
	return nil
}

func writeResultsCSV(path string, results []bench.RunResult) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"scenario", "engine", "method", "seed", "score", "metrics"}); err != nil {
		return err
	}

	for _, r := range results {
		metrics, err := json.Marshal(r.Metrics)
		if err != nil {
			return err
		}
		row := []string{
			r.Scenario,
			r.Engine,
			r.Method,
			strconv.FormatInt(r.Seed, 10),
			strconv.FormatFloat(r.Score, 'g', 12, 64),
			string(metrics),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func writeSummary(path string, aggregates []stats.AggregateResult, scenarios []config.ScenarioConfig, seedCount int) error {
	var b strings.Builder

	b.WriteString("# PhaseWall Benchmark Summary\n\n")
	fmt.Fprintf(&b, "Generated: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(&b, "Seeds per scenario: %d\n\n", seedCount)

	b.WriteString("## Configuration snapshot\n\n")
	for _, sc := range scenarios {
		fmt.Fprintf(&b, "- `%s`: engine=%s, objective=%s, dim=%d, noise=%g, budget=%d, pop=%d, wall_strength=%g\n",
			sc.Name, sc.Engine, sc.Objective, sc.Dim, sc.NoiseStd, sc.Budget, sc.Population, sc.WallStrength)
	}
	b.WriteString("\n")

	b.WriteString("## Aggregated results\n\n")
	b.WriteString("| scenario | engine | method | n | median | ratio_vs_vanilla | win_rate | wilcoxon_p |\n")
	b.WriteString("|---|---|---|---:|---:|---:|---:|---:|\n")
	for _, a := range aggregates {
		fmt.Fprintf(&b, "| %s | %s | %s | %d | %s | %s | %s | %s |\n",
			a.Scenario, a.Engine, a.Method, a.N,
			fmtStat(a.MedianScore, 6),
			fmtStat(a.RatioVsVanilla, 4),
			fmtStat(a.WinRate, 3),
			fmtStat(a.WilcoxonP, 4))
	}

	b.WriteString("\n## Interpretation\n\n")
	b.WriteString("- Lower score is better in all scenarios.\n")
	b.WriteString("- `ratio_vs_vanilla < 1` indicates improvement.\n")
	b.WriteString("- `wilcoxon_p < 0.05` indicates paired-seed significance for `phasewall` vs `vanilla`.\n")

	return os.WriteFile(path, []byte(b.String()), 0644)
}

// fmtStat renders a statistic at the given precision, with NaN shown as a
// degenerate-sample marker rather than crashing downstream consumers.
func fmtStat(v float64, prec int) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return strconv.FormatFloat(v, 'g', prec, 64)
}
