package bench_test

import (
	"math"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/avasker/phasewall/internal/bench"
	"github.com/avasker/phasewall/internal/config"
	"github.com/avasker/phasewall/internal/report"
	"github.com/avasker/phasewall/internal/stats"
)

// End-to-end pipeline: scenarios -> runner -> aggregation -> artifact bundle.
var _ = Describe("benchmark pipeline", func() {
	var (
		scenarios  []config.ScenarioConfig
		results    []bench.RunResult
		aggregates []stats.AggregateResult
	)

	BeforeEach(func() {
		scenarios = []config.ScenarioConfig{
			{
				Name:         "walker_small",
				Dim:          2,
				NoiseStd:     0.25,
				Budget:       30,
				Seeds:        config.MakeSeeds(2, config.DefaultSeedBase),
				WallStrength: 0.4,
				Engine:       config.EngineWalker,
				Agents:       20,
				Sigma:        1.0,
			},
			{
				Name:         "toy_es_small",
				Dim:          3,
				NoiseStd:     0.1,
				Budget:       160,
				Seeds:        config.MakeSeeds(2, config.DefaultSeedBase),
				WallStrength: 0.4,
				Engine:       config.EngineToyES,
				Objective:    config.Sphere,
				Population:   8,
				Sigma:        1.0,
			},
		}

		var err error
		results, err = bench.NewRunner(nil).RunAll(scenarios)
		Expect(err).NotTo(HaveOccurred())
		aggregates = stats.Aggregate(results)
	})

	It("produces one row per scenario, seed, and method", func() {
		Expect(results).To(HaveLen(len(scenarios) * 2 * 2))
		for _, r := range results {
			Expect(r.Method).To(BeElementOf(bench.MethodVanilla, bench.MethodPhasewall))
			Expect(math.IsNaN(r.Score)).To(BeFalse())
		}
	})

	It("aggregates both methods per scenario with a vanilla baseline", func() {
		Expect(aggregates).To(HaveLen(len(scenarios) * 2))
		for _, a := range aggregates {
			Expect(a.N).To(Equal(2))
			if a.Method == bench.MethodVanilla {
				Expect(a.WinRate).To(Equal(0.5))
				Expect(a.RatioVsVanilla).To(Equal(1.0))
			} else {
				Expect(math.IsNaN(a.RatioVsVanilla)).To(BeFalse())
			}
		}
	})

	It("writes the full artifact bundle", func() {
		dir, err := report.ResolveDir(filepath.Join(GinkgoT().TempDir(), "latest"))
		Expect(err).NotTo(HaveOccurred())

		Expect(report.WriteBundle(dir, results, aggregates, scenarios, 2)).To(Succeed())

		for _, name := range []string{
			report.ResultsFile, report.SummaryFile,
			report.ScoreBarsFile, report.WinRateFile,
		} {
			info, err := os.Stat(filepath.Join(dir, name))
			Expect(err).NotTo(HaveOccurred())
			Expect(info.Size()).To(BeNumerically(">", 0))
		}

		data, err := os.ReadFile(filepath.Join(dir, report.ResultsFile))
		Expect(err).NotTo(HaveOccurred())
		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		Expect(lines).To(HaveLen(1 + len(results)))
	})

	It("is reproducible end to end", func() {
		again, err := bench.NewRunner(nil).RunAll(scenarios)
		Expect(err).NotTo(HaveOccurred())
		Expect(again).To(Equal(results))
	})
})
