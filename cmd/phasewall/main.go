package main

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/avasker/phasewall/internal/bench"
	"github.com/avasker/phasewall/internal/config"
	"github.com/avasker/phasewall/internal/geometry"
	"github.com/avasker/phasewall/internal/optimize"
	"github.com/avasker/phasewall/internal/report"
	"github.com/avasker/phasewall/internal/stats"
	"github.com/avasker/phasewall/internal/viz"
)

var (
	verbose       bool
	preset        string
	seedCount     int
	outDir        string
	scenarioFile  string
	parallel      int
	// compare parameters
	pairSeeds     int
	objectiveName string
	dim           int
	budget        int
	population    int
	noiseStd      float64
	wallStrength  float64
	// live parameters
	agents int
	sigma  float64
	seed   int64

	logger *zap.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "phasewall",
		Short: "phase-wall containment benchmark harness",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := zap.NewProductionConfig()
			if verbose {
				cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			var err error
			logger, err = cfg.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "run the benchmark and write the artifact bundle",
		RunE:  runBench,
	}
	benchCmd.Flags().StringVar(&preset, "preset", config.PresetCore, "scenario preset")
	benchCmd.Flags().IntVar(&seedCount, "seeds", 20, "seeds per scenario")
	benchCmd.Flags().StringVar(&outDir, "out", "artifacts/latest", "output directory")
	benchCmd.Flags().StringVar(&scenarioFile, "scenarios", "", "scenario file (yaml), overrides preset")
	benchCmd.Flags().IntVar(&parallel, "parallel", 0, "worker count (0 = sequential)")

	demoCmd := &cobra.Command{
		Use:   "demo",
		Short: "quick 6-seed benchmark of the core preset",
		RunE:  runDemo,
	}

	compareCmd := &cobra.Command{
		Use:   "compare [engine]",
		Short: "vanilla vs phasewall paired runs for one optimizer engine",
		Args:  cobra.ExactArgs(1),
		RunE:  runCompare,
	}
	compareCmd.Flags().StringVar(&objectiveName, "objective", "sphere", "objective function")
	compareCmd.Flags().IntVar(&dim, "dim", 10, "problem dimension")
	compareCmd.Flags().IntVar(&budget, "budget", 1200, "evaluation budget")
	compareCmd.Flags().IntVar(&population, "pop", config.DefaultPopulation, "population size")
	compareCmd.Flags().Float64Var(&noiseStd, "noise", 0.1, "evaluation noise std")
	compareCmd.Flags().Float64Var(&wallStrength, "strength", config.DefaultWallStrength, "wall strength")
	compareCmd.Flags().IntVar(&pairSeeds, "seeds", 8, "paired seeds")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "side-by-side walker arena (vanilla vs phasewall)",
		RunE:  runLive,
	}
	liveCmd.Flags().IntVar(&agents, "agents", config.DefaultAgents, "agent count")
	liveCmd.Flags().Float64Var(&noiseStd, "noise", 0.25, "step noise std")
	liveCmd.Flags().Float64Var(&sigma, "sigma", config.DefaultSigma, "containment radius")
	liveCmd.Flags().Float64Var(&wallStrength, "strength", config.DefaultWallStrength, "wall strength")
	liveCmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano()%100000, "random seed")

	surfaceCmd := &cobra.Command{
		Use:   "surface",
		Short: "radial profile of the gaussian bump with curvature regimes",
		RunE:  runSurface,
	}
	surfaceCmd.Flags().Float64Var(&sigma, "sigma", config.DefaultSigma, "bump width")

	scenariosCmd := &cobra.Command{
		Use:   "scenarios",
		Short: "print the active scenario set as yaml",
		RunE:  runScenarios,
	}
	scenariosCmd.Flags().StringVar(&preset, "preset", config.PresetCore, "scenario preset")
	scenariosCmd.Flags().IntVar(&seedCount, "seeds", 20, "seeds per scenario")
	scenariosCmd.Flags().StringVar(&scenarioFile, "scenarios", "", "scenario file (yaml), overrides preset")

	rootCmd.AddCommand(benchCmd, demoCmd, compareCmd, liveCmd, surfaceCmd, scenariosCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadScenarios() ([]config.ScenarioConfig, error) {
	if scenarioFile != "" {
		return config.LoadScenarios(scenarioFile)
	}
	return config.Scenarios(preset, seedCount)
}

// runPipeline executes scenarios, aggregates, and writes the bundle.
func runPipeline(scenarios []config.ScenarioConfig) ([]stats.AggregateResult, string, error) {
	runner := bench.NewRunner(logger)

	start := time.Now()
	var results []bench.RunResult
	var err error
	if parallel > 1 {
		results, err = runner.RunAllParallel(scenarios, parallel)
	} else {
		results, err = runner.RunAll(scenarios)
	}
	if err != nil {
		return nil, "", err
	}
	logger.Info("benchmark finished",
		zap.Int("runs", len(results)),
		zap.Duration("elapsed", time.Since(start)))

	aggs := stats.Aggregate(results)

	dir, err := report.ResolveDir(outDir)
	if err != nil {
		return nil, "", err
	}
	if err := report.WriteBundle(dir, results, aggs, scenarios, seedCount); err != nil {
		return nil, "", err
	}
	return aggs, dir, nil
}

func runBench(cmd *cobra.Command, args []string) error {
	scenarios, err := loadScenarios()
	if err != nil {
		return err
	}

	fmt.Printf("running %d scenarios, %d seeds each...\n", len(scenarios), seedCount)
	aggs, dir, err := runPipeline(scenarios)
	if err != nil {
		return err
	}

	printAggregates(aggs, false)
	fmt.Printf("\nartifacts written to: %s\n", dir)
	return nil
}

func runDemo(cmd *cobra.Command, args []string) error {
	preset = config.PresetCore
	seedCount = 6
	outDir = "artifacts/latest"
	scenarioFile = ""

	fmt.Println("running quick demo benchmark (core preset, 6 seeds)...")
	scenarios, err := loadScenarios()
	if err != nil {
		return err
	}

	aggs, dir, err := runPipeline(scenarios)
	if err != nil {
		return err
	}

	fmt.Printf("demo artifacts: %s\n", dir)
	fmt.Println("summary (phasewall rows):")
	printAggregates(aggs, true)
	return nil
}

func printAggregates(aggs []stats.AggregateResult, wallOnly bool) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCENARIO\tENGINE\tMETHOD\tN\tMEDIAN\tRATIO\tWIN\tP")
	for _, a := range aggs {
		if wallOnly && a.Method != bench.MethodPhasewall {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\t%s\t%s\n",
			a.Scenario, a.Engine, a.Method, a.N,
			cell(a.MedianScore, 5),
			cell(a.RatioVsVanilla, 4),
			cell(a.WinRate, 3),
			cell(a.WilcoxonP, 4))
	}
	_ = w.Flush()
}

func cell(v float64, prec int) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return strconv.FormatFloat(v, 'g', prec, 64)
}

func runCompare(cmd *cobra.Command, args []string) error {
	engine, err := config.ParseEngine(args[0])
	if err != nil {
		return err
	}
	objective, err := config.ParseObjective(objectiveName)
	if err != nil {
		return err
	}

	p := optimize.Params{
		Objective:    objective,
		Dim:          dim,
		Budget:       budget,
		Population:   population,
		NoiseStd:     noiseStd,
		WallStrength: wallStrength,
	}

	fmt.Printf("comparing %s on %s (dim=%d, noise=%.2f, %d seeds)\n\n",
		engine, objective, dim, noiseStd, pairSeeds)

	demo, err := optimize.RunPairDemo(engine, p, pairSeeds)
	if err != nil {
		return err
	}

	fmt.Println(asciigraph.Plot(demo.VanillaHistory,
		asciigraph.Height(10), asciigraph.Width(70),
		asciigraph.Caption("vanilla median best-so-far")))
	fmt.Println()
	fmt.Println(asciigraph.Plot(demo.WallHistory,
		asciigraph.Height(10), asciigraph.Width(70),
		asciigraph.Caption("phasewall median best-so-far")))
	fmt.Println()

	fmt.Printf("median final: vanilla=%.5g phasewall=%.5g\n", demo.VanillaFinal, demo.WallFinal)
	fmt.Printf("median ratio (phasewall/vanilla): %.4f\n", demo.MedianRatio)
	fmt.Printf("win rate: %.3f\n", demo.WinRate)
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	arena, err := viz.NewArena(viz.ArenaConfig{
		Agents:       agents,
		NoiseStd:     noiseStd,
		Sigma:        sigma,
		WallStrength: wallStrength,
		Seed:         seed,
	})
	if err != nil {
		return err
	}

	p := tea.NewProgram(arena)
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func runSurface(cmd *cobra.Command, args []string) error {
	const (
		extent  = 3.0
		samples = 70
	)

	profile := make([]float64, samples)
	regime := make([]rune, samples)
	for i := range profile {
		r := extent * float64(i) / float64(samples-1)
		profile[i] = geometry.Hill(r, 0, sigma)
		switch geometry.CurvatureSign(r, sigma) {
		case 1:
			regime[i] = '+'
		case -1:
			regime[i] = '-'
		default:
			regime[i] = '|'
		}
	}

	fmt.Printf("gaussian bump profile (sigma=%.2f, r in [0, %.1f])\n\n", sigma, extent)
	fmt.Println(asciigraph.Plot(profile,
		asciigraph.Height(12), asciigraph.Width(samples),
		asciigraph.Caption("height vs radius")))
	fmt.Println()
	fmt.Printf("curvature regime: %s\n", string(regime))
	fmt.Printf("elliptic (+) inside r=%.2f, hyperbolic (-) outside\n", sigma)
	return nil
}

func runScenarios(cmd *cobra.Command, args []string) error {
	scenarios, err := loadScenarios()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(scenarios)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}
