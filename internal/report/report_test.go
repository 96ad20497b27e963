package report

import (
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avasker/phasewall/internal/bench"
	"github.com/avasker/phasewall/internal/config"
	"github.com/avasker/phasewall/internal/stats"
)

func sampleResults() []bench.RunResult {
	return []bench.RunResult{
		{
			Scenario: "s1", Engine: "walker", Method: bench.MethodVanilla, Seed: 100,
			Score:   1.25,
			Metrics: map[string]float64{"escape_rate": 0.1, "inside_fraction": 0.9},
		},
		{
			Scenario: "s1", Engine: "walker", Method: bench.MethodPhasewall, Seed: 100,
			Score:   0.75,
			Metrics: map[string]float64{"escape_rate": 0.0, "inside_fraction": 1.0},
		},
	}
}

func sampleAggregates() []stats.AggregateResult {
	return []stats.AggregateResult{
		{
			Scenario: "s1", Engine: "walker", Method: bench.MethodPhasewall,
			N: 1, MedianScore: 0.75, MeanScore: 0.75,
			WinRate: 1.0, RatioVsVanilla: 0.6, WilcoxonP: math.NaN(),
		},
		{
			Scenario: "s1", Engine: "walker", Method: bench.MethodVanilla,
			N: 1, MedianScore: 1.25, MeanScore: 1.25,
			WinRate: 0.5, RatioVsVanilla: 1.0, WilcoxonP: math.NaN(),
		},
	}
}

func TestResolveDirExplicitPath(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "results", "run-a")

	resolved, err := ResolveDir(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, resolved)
	assert.DirExists(t, resolved)
}

func TestResolveDirLatestMarker(t *testing.T) {
	base := t.TempDir()
	resolved, err := ResolveDir(filepath.Join(base, "latest"))
	require.NoError(t, err)

	assert.NotEqual(t, "latest", filepath.Base(resolved))
	assert.Equal(t, base, filepath.Dir(resolved))
	assert.DirExists(t, resolved)
	// timestamp-shaped name
	assert.Regexp(t, `^\d{8}-\d{6}$`, filepath.Base(resolved))
}

func TestWriteBundle(t *testing.T) {
	dir := t.TempDir()
	scenarios := config.CoreScenarios(2)[:1]

	err := WriteBundle(dir, sampleResults(), sampleAggregates(), scenarios, 2)
	require.NoError(t, err)

	for _, name := range []string{ResultsFile, SummaryFile, ScoreBarsFile, WinRateFile} {
		assert.FileExists(t, filepath.Join(dir, name))
	}
}

func TestResultsCSVLayout(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ResultsFile)
	require.NoError(t, writeResultsCSV(path, sampleResults()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"scenario", "engine", "method", "seed", "score", "metrics"}, rows[0])
	assert.Equal(t, "s1", rows[1][0])
	assert.Equal(t, "vanilla", rows[1][2])
	assert.Equal(t, "100", rows[1][3])
	assert.Equal(t, "1.25", rows[1][4])
	// metrics render as compact sorted-key JSON
	assert.JSONEq(t, `{"escape_rate":0.1,"inside_fraction":0.9}`, rows[1][5])
}

func TestSummaryRendersNaN(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, SummaryFile)
	require.NoError(t, writeSummary(path, sampleAggregates(), config.CoreScenarios(2)[:1], 2))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)

	assert.Contains(t, text, "## Aggregated results")
	assert.Contains(t, text, "| s1 | walker | phasewall |")
	assert.Contains(t, text, "n/a", "NaN statistics must render as n/a")
	assert.NotContains(t, text, "NaN")
	assert.Contains(t, text, "Seeds per scenario: 2")
}

func TestScoreBarsSVG(t *testing.T) {
	svg := ScoreBarsSVG(sampleAggregates())

	assert.True(t, strings.HasPrefix(svg, `<?xml version="1.0"`))
	assert.Contains(t, svg, "<svg")
	assert.Contains(t, svg, "</svg>")
	assert.Contains(t, svg, vanillaFill)
	assert.Contains(t, svg, wallFill)
	assert.Contains(t, svg, "s1")
}

func TestWinRateSVGReferenceLine(t *testing.T) {
	svg := WinRateSVG(sampleAggregates())

	assert.Contains(t, svg, "stroke-dasharray")
	assert.Contains(t, svg, "win-rate")
	// only the phasewall rows are plotted
	assert.Equal(t, 1, strings.Count(svg, `fill="`+wallFill+`"`))
}

func TestFmtStat(t *testing.T) {
	assert.Equal(t, "n/a", fmtStat(math.NaN(), 4))
	assert.Equal(t, "0.5", fmtStat(0.5, 4))
	assert.Equal(t, "1.234", fmtStat(1.234, 4))
}
