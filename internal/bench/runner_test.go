package bench_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/avasker/phasewall/internal/bench"
	"github.com/avasker/phasewall/internal/config"
)


func smallWalkerScenario() config.ScenarioConfig {
	return config.ScenarioConfig{
		Name:         "walker_test",
		Dim:          2,
		NoiseStd:     0.25,
		Budget:       40,
		Seeds:        config.MakeSeeds(3, 100),
		WallStrength: 0.4,
		Engine:       config.EngineWalker,
		Agents:       30,
		Sigma:        1.0,
	}
}

func smallOptimizerScenario(engine config.Engine, noise float64) config.ScenarioConfig {
	return config.ScenarioConfig{
		Name:         "opt_test",
		Dim:          3,
		NoiseStd:     noise,
		Budget:       240,
		Seeds:        config.MakeSeeds(3, 100),
		WallStrength: 0.4,
		Engine:       engine,
		Objective:    config.Sphere,
		Population:   12,
	}
}

func TestRunScenarioDeterministic(t *testing.T) {
	scenarios := []config.ScenarioConfig{
		smallWalkerScenario(),
		smallOptimizerScenario(config.EngineToyES, 0.1),
		smallOptimizerScenario(config.EngineCMAESStyle, 0.1),
	}

	runner := bench.NewRunner(nil)
	for _, cfg := range scenarios {
		t.Run(cfg.Engine.String(), func(t *testing.T) {
			a, err := runner.RunScenario(cfg)
			if err != nil {
				t.Fatal(err)
			}
			b, err := runner.RunScenario(cfg)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(a, b); diff != "" {
				t.Errorf("reruns must be bit-identical (-first +second):\n%s", diff)
			}
		})
	}
}

func TestRunScenarioOrdering(t *testing.T) {
	cfg := smallOptimizerScenario(config.EngineToyES, 0.1)
	runner := bench.NewRunner(nil)

	results, err := runner.RunScenario(cfg)
	if err != nil {
		t.Fatal(err)
	}

	if len(results) != len(cfg.Seeds)*2 {
		t.Fatalf("expected %d rows, got %d", len(cfg.Seeds)*2, len(results))
	}

	// seed outer, method inner, vanilla first
	for i, seed := range cfg.Seeds {
		v := results[2*i]
		p := results[2*i+1]
		if v.Seed != seed || v.Method != bench.MethodVanilla {
			t.Errorf("row %d: got (%d, %s), want (%d, vanilla)", 2*i, v.Seed, v.Method, seed)
		}
		if p.Seed != seed || p.Method != bench.MethodPhasewall {
			t.Errorf("row %d: got (%d, %s), want (%d, phasewall)", 2*i+1, p.Seed, p.Method, seed)
		}
	}
}

func TestRunScenarioInvalidConfig(t *testing.T) {
	cfg := smallWalkerScenario()
	cfg.Budget = 0

	_, err := bench.NewRunner(nil).RunScenario(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !errors.Is(err, config.ErrInvalidScenario) {
		t.Errorf("error should wrap ErrInvalidScenario, got %v", err)
	}
}

func TestRunAllParallelMatchesSequential(t *testing.T) {
	defer goleak.VerifyNone(t)

	scenarios := []config.ScenarioConfig{
		smallWalkerScenario(),
		smallOptimizerScenario(config.EngineToyES, 0.1),
		smallOptimizerScenario(config.EngineCMAESStyle, 0.1),
	}
	scenarios[1].Name = "opt_es"
	scenarios[2].Name = "opt_cmaes"

	runner := bench.NewRunner(nil)

	seq, err := runner.RunAll(scenarios)
	if err != nil {
		t.Fatal(err)
	}
	par, err := runner.RunAllParallel(scenarios, 3)
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff(seq, par); diff != "" {
		t.Errorf("parallel run must be observationally identical (-seq +par):\n%s", diff)
	}
}

func TestNoNoiseWallFallsBackToVanilla(t *testing.T) {
	for _, engine := range []config.Engine{config.EngineToyES, config.EngineCMAESStyle} {
		t.Run(engine.String(), func(t *testing.T) {
			cfg := smallOptimizerScenario(engine, 0)
			results, err := bench.NewRunner(nil).RunScenario(cfg)
			if err != nil {
				t.Fatal(err)
			}

			// with noise_std = 0 the wall is silently disabled, so the
			// phasewall rows must match their vanilla pairs exactly
			for i := 0; i < len(results); i += 2 {
				if results[i].Score != results[i+1].Score {
					t.Errorf("seed %d: phasewall score %g differs from vanilla %g",
						results[i].Seed, results[i+1].Score, results[i].Score)
				}
			}
		})
	}
}

func TestWalkerEscapeRateMonotonic(t *testing.T) {
	cfg := smallWalkerScenario()
	cfg.Seeds = config.MakeSeeds(6, 100)

	results, err := bench.NewRunner(nil).RunScenario(cfg)
	if err != nil {
		t.Fatal(err)
	}

	var vanillaSum, wallSum float64
	var n int
	for _, r := range results {
		if r.Method == bench.MethodVanilla {
			vanillaSum += r.Metrics["escape_rate"]
			n++
		} else {
			wallSum += r.Metrics["escape_rate"]
		}
	}

	if wallSum/float64(n) > vanillaSum/float64(n) {
		t.Errorf("mean escape rate with wall (%g) exceeds vanilla (%g)",
			wallSum/float64(n), vanillaSum/float64(n))
	}
}
