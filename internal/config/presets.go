package config

import "fmt"

// PresetCore is the only built-in scenario set.
const PresetCore = "core"

// Scenarios resolves a preset name to its scenario list. Unknown names fail
// before any simulation work begins.
func Scenarios(preset string, seedCount int) ([]ScenarioConfig, error) {
	switch preset {
	case PresetCore:
		return CoreScenarios(seedCount), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPreset, preset)
	}
}

// ListPresets returns the available preset names.
func ListPresets() []string {
	return []string{PresetCore}
}

// CoreScenarios builds the core benchmark set: one noisy walker scenario plus
// both optimizer engines over every objective in 2 and 10 dimensions.
func CoreScenarios(seedCount int) []ScenarioConfig {
	seeds := MakeSeeds(seedCount, DefaultSeedBase)

	out := []ScenarioConfig{
		{
			Name:         "walker_2d_noisy",
			Dim:          2,
			NoiseStd:     0.25,
			Budget:       120,
			Seeds:        seeds,
			WallStrength: DefaultWallStrength,
			Engine:       EngineWalker,
			Objective:    Sphere,
			Population:   DefaultPopulation,
			Agents:       140,
			Sigma:        DefaultSigma,
		},
	}

	for _, dim := range []int{2, 10} {
		for _, objective := range []Objective{Sphere, Rosenbrock, Rastrigin} {
			for _, engine := range []Engine{EngineToyES, EngineCMAESStyle} {
				out = append(out, ScenarioConfig{
					Name:         fmt.Sprintf("%s_%s_%dd", engine, objective, dim),
					Dim:          dim,
					NoiseStd:     0.1,
					Budget:       1200,
					Seeds:        seeds,
					WallStrength: DefaultWallStrength,
					Engine:       engine,
					Objective:    objective,
					Population:   DefaultPopulation,
					Agents:       DefaultAgents,
					Sigma:        DefaultSigma,
				})
			}
		}
	}

	return out
}
