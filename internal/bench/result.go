// Package bench executes configured scenarios across seeds and method
// variants, producing one RunResult per simulation call.
package bench

// Method names for the two variants of every engine.
const (
	MethodVanilla   = "vanilla"
	MethodPhasewall = "phasewall"
)

// Methods lists the variants in run order: the baseline always comes first
// so every phasewall row has its paired anchor.
var Methods = []string{MethodVanilla, MethodPhasewall}

// RunResult is one simulation outcome. Immutable once produced.
type RunResult struct {
	Scenario string
	Engine   string
	Method   string
	Seed     int64
	Score    float64
	Metrics  map[string]float64
}
