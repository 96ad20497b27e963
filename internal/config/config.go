package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultWallStrength = 0.4
	DefaultSigma        = 1.0
	DefaultPopulation   = 24
	DefaultAgents       = 120
	DefaultSeedBase     = 100
)

// Domain errors for benchmark configuration.
var (
	// ErrUnknownPreset indicates a preset name with no registered scenario set.
	ErrUnknownPreset = errors.New("config: unknown preset")

	// ErrUnknownEngine indicates an engine name outside the fixed enumeration.
	ErrUnknownEngine = errors.New("config: unknown engine")

	// ErrUnknownObjective indicates an objective name outside the fixed enumeration.
	ErrUnknownObjective = errors.New("config: unknown objective")

	// ErrInvalidScenario indicates a scenario with out-of-range parameters.
	ErrInvalidScenario = errors.New("config: invalid scenario")
)

// Engine selects which simulation family a scenario runs.
type Engine int

const (
	EngineWalker Engine = iota
	EngineToyES
	EngineCMAESStyle
)

var engineNames = map[Engine]string{
	EngineWalker:     "walker",
	EngineToyES:      "toy_es",
	EngineCMAESStyle: "cmaes_style",
}

func (e Engine) String() string {
	if name, ok := engineNames[e]; ok {
		return name
	}
	return fmt.Sprintf("engine(%d)", int(e))
}

// IsOptimizer reports whether the engine minimizes an objective function
// rather than simulating a walker swarm.
func (e Engine) IsOptimizer() bool {
	return e == EngineToyES || e == EngineCMAESStyle
}

// ParseEngine resolves an engine name once at configuration-parse time.
func ParseEngine(name string) (Engine, error) {
	for e, n := range engineNames {
		if n == name {
			return e, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownEngine, name)
}

func (e Engine) MarshalYAML() (any, error) {
	return e.String(), nil
}

func (e *Engine) UnmarshalYAML(node *yaml.Node) error {
	var name string
	if err := node.Decode(&name); err != nil {
		return err
	}
	parsed, err := ParseEngine(name)
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

// Objective selects the benchmark function minimized by the optimizer engines.
type Objective int

const (
	Sphere Objective = iota
	Rosenbrock
	Rastrigin
)

var objectiveNames = map[Objective]string{
	Sphere:     "sphere",
	Rosenbrock: "rosenbrock",
	Rastrigin:  "rastrigin",
}

func (o Objective) String() string {
	if name, ok := objectiveNames[o]; ok {
		return name
	}
	return fmt.Sprintf("objective(%d)", int(o))
}

// ParseObjective resolves an objective name once at configuration-parse time.
func ParseObjective(name string) (Objective, error) {
	for o, n := range objectiveNames {
		if n == name {
			return o, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownObjective, name)
}

func (o Objective) MarshalYAML() (any, error) {
	return o.String(), nil
}

func (o *Objective) UnmarshalYAML(node *yaml.Node) error {
	var name string
	if err := node.Decode(&name); err != nil {
		return err
	}
	parsed, err := ParseObjective(name)
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// ScenarioConfig describes one benchmark experiment. It is built once per
// experiment definition and never mutated afterwards.
type ScenarioConfig struct {
	Name         string    `yaml:"name"`
	Dim          int       `yaml:"dim"`
	NoiseStd     float64   `yaml:"noise_std"`
	Budget       int       `yaml:"budget"`
	Seeds        []int64   `yaml:"seeds"`
	WallStrength float64   `yaml:"wall_strength"`
	Engine       Engine    `yaml:"engine"`
	Objective    Objective `yaml:"objective"`
	Population   int       `yaml:"population"`
	Agents       int       `yaml:"agents"`
	Sigma        float64   `yaml:"sigma"`
}

// Validate checks the scenario before any simulation work begins.
func (c ScenarioConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidScenario)
	}
	if c.Dim < 1 {
		return fmt.Errorf("%w: %s: dim must be positive, got %d", ErrInvalidScenario, c.Name, c.Dim)
	}
	if c.Engine == EngineWalker && c.Dim < 2 {
		return fmt.Errorf("%w: %s: walker needs dim >= 2, got %d", ErrInvalidScenario, c.Name, c.Dim)
	}
	if c.NoiseStd < 0 {
		return fmt.Errorf("%w: %s: noise_std must be non-negative, got %g", ErrInvalidScenario, c.Name, c.NoiseStd)
	}
	if c.Budget < 1 {
		return fmt.Errorf("%w: %s: budget must be positive, got %d", ErrInvalidScenario, c.Name, c.Budget)
	}
	if len(c.Seeds) == 0 {
		return fmt.Errorf("%w: %s: seed list is empty", ErrInvalidScenario, c.Name)
	}
	if c.Engine.IsOptimizer() && c.Population < 2 {
		return fmt.Errorf("%w: %s: population must be >= 2, got %d", ErrInvalidScenario, c.Name, c.Population)
	}
	if c.Engine == EngineWalker && c.Agents < 1 {
		return fmt.Errorf("%w: %s: agents must be positive, got %d", ErrInvalidScenario, c.Name, c.Agents)
	}
	if c.Engine == EngineWalker && c.Sigma <= 0 {
		return fmt.Errorf("%w: %s: sigma must be positive, got %g", ErrInvalidScenario, c.Name, c.Sigma)
	}
	return nil
}

// MakeSeeds returns count consecutive seeds starting at base. The order is
// the deterministic run order.
func MakeSeeds(count int, base int64) []int64 {
	seeds := make([]int64, count)
	for i := range seeds {
		seeds[i] = base + int64(i)
	}
	return seeds
}

// LoadScenarios reads a YAML scenario list, replacing the built-in presets.
func LoadScenarios(path string) ([]ScenarioConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var scenarios []ScenarioConfig
	if err := yaml.Unmarshal(data, &scenarios); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	for i := range scenarios {
		if scenarios[i].Sigma == 0 {
			scenarios[i].Sigma = DefaultSigma
		}
		if err := scenarios[i].Validate(); err != nil {
			return nil, err
		}
	}
	return scenarios, nil
}

// SaveScenarios writes a scenario list as YAML.
func SaveScenarios(path string, scenarios []ScenarioConfig) error {
	data, err := yaml.Marshal(scenarios)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
