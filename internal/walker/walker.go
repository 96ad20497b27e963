// Package walker simulates a swarm of overdamped agents diffusing on a
// Gaussian bump potential, with an optional phase-wall containment variant.
package walker

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/avasker/phasewall/internal/geometry"
	"github.com/avasker/phasewall/internal/phasewall"
)

const (
	gradWeight = 0.28
	initRadMin = 1.1
	initRadMax = 2.5
)

// Params configures one walker run. All randomness derives from Seed:
// identical params produce bit-identical traces.
type Params struct {
	Dim          int
	Agents       int
	Steps        int
	NoiseStd     float64
	Seed         int64
	Sigma        float64
	WallEnabled  bool
	WallStrength float64
}

// Trace is the outcome of a finished walker run.
type Trace struct {
	// Trajectories[t][a] is agent a's position after step t; index 0 is
	// the initial placement.
	Trajectories [][]geometry.Vec
	Radii        [][]float64

	EscapeRate        float64
	InsideFraction    float64
	AngularDispersion float64
	Score             float64
}

// Sim steps a walker swarm incrementally; the arena view drives it one step
// per frame while Simulate runs it to completion.
type Sim struct {
	p            Params
	rng          *rand.Rand
	positions    []geometry.Vec
	historyLimit int

	stepCount   int
	escapes     int
	insideObs   int
	angleDeltas []float64

	trajectories [][]geometry.Vec
	radii        [][]float64
}

// NewSim validates params and places the swarm at random directions on a
// hypersphere with radii uniform in [1.1, 2.5].
func NewSim(p Params) (*Sim, error) {
	if err := validate(p); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(p.Seed))
	positions := initPositions(p.Agents, p.Dim, rng)

	s := &Sim{
		p:            p,
		rng:          rng,
		positions:    positions,
		trajectories: make([][]geometry.Vec, 0, p.Steps+1),
		radii:        make([][]float64, 0, p.Steps+1),
	}
	s.record()
	return s, nil
}

func validate(p Params) error {
	if p.Dim < 2 {
		return fmt.Errorf("walker: dim must be >= 2, got %d", p.Dim)
	}
	if p.Agents < 1 {
		return fmt.Errorf("walker: agents must be positive, got %d", p.Agents)
	}
	if p.Sigma <= 0 {
		return fmt.Errorf("walker: sigma must be positive, got %g", p.Sigma)
	}
	return nil
}

func initPositions(agents, dim int, rng *rand.Rand) []geometry.Vec {
	positions := make([]geometry.Vec, agents)
	for a := range positions {
		dir := make(geometry.Vec, dim)
		for j := range dir {
			dir[j] = rng.NormFloat64()
		}
		norm := dir.Norm() + 1e-12
		radius := initRadMin + rng.Float64()*(initRadMax-initRadMin)
		for j := range dir {
			dir[j] = dir[j] / norm * radius
		}
		positions[a] = dir
	}
	return positions
}

// SetHistoryLimit caps retained snapshots so an open-ended live run keeps
// memory flat. Zero means unlimited. Metrics that window over history, like
// angular dispersion, become running-window estimates under a limit.
func (s *Sim) SetHistoryLimit(n int) { s.historyLimit = n }

func (s *Sim) record() {
	snap := make([]geometry.Vec, len(s.positions))
	rad := make([]float64, len(s.positions))
	for i, p := range s.positions {
		snap[i] = p.Clone()
		rad[i] = p.Norm()
	}
	s.trajectories = append(s.trajectories, snap)
	s.radii = append(s.radii, rad)

	if s.historyLimit > 0 && len(s.radii) > s.historyLimit {
		s.trajectories = s.trajectories[1:]
		s.radii = s.radii[1:]
		if limit := s.historyLimit * len(s.positions); len(s.angleDeltas) > limit {
			s.angleDeltas = s.angleDeltas[len(s.angleDeltas)-limit:]
		}
	}
}

// Step advances every agent once: potential gradient plus (optionally
// reshaped) noise, then the hard radial clamp when the wall is on.
func (s *Sim) Step() error {
	prev := make([]geometry.Vec, len(s.positions))
	for i, p := range s.positions {
		prev[i] = p.Clone()
	}

	grads, err := geometry.HillGradient(s.positions, s.p.Sigma)
	if err != nil {
		return err
	}

	noise := make([]geometry.Vec, len(s.positions))
	for i := range noise {
		n := make(geometry.Vec, s.p.Dim)
		for j := range n {
			n[j] = s.rng.NormFloat64() * s.p.NoiseStd
		}
		noise[i] = n
	}
	if s.p.WallEnabled {
		noise = phasewall.ReshapeNoise(s.positions, noise, s.p.Sigma, s.p.WallStrength)
	}

	for i := range s.positions {
		for j := range s.positions[i] {
			s.positions[i][j] += gradWeight*grads[i][j] + noise[i][j]
		}
	}
	if s.p.WallEnabled {
		s.positions = phasewall.ApplyToOffsets(s.positions, s.p.Sigma, 1.0)
	}

	for i := range s.positions {
		prevR := prev[i].Norm()
		currR := s.positions[i].Norm()
		if prevR <= s.p.Sigma {
			s.insideObs++
			if currR > s.p.Sigma {
				s.escapes++
			}
		}

		prevAng := math.Atan2(prev[i][1], prev[i][0])
		currAng := math.Atan2(s.positions[i][1], s.positions[i][0])
		s.angleDeltas = append(s.angleDeltas, math.Abs(wrapPi(currAng-prevAng)))
	}

	s.stepCount++
	s.record()
	return nil
}

// wrapPi maps an angle difference into (-pi, pi].
func wrapPi(d float64) float64 {
	for d > math.Pi {
		d -= 2 * math.Pi
	}
	for d <= -math.Pi {
		d += 2 * math.Pi
	}
	return d
}

// Positions exposes the live swarm for rendering. Callers must not mutate.
func (s *Sim) Positions() []geometry.Vec { return s.positions }

// StepCount returns the number of completed steps.
func (s *Sim) StepCount() int { return s.stepCount }

// EscapeRate returns the running rate of inside-to-outside transitions per
// inside observation.
func (s *Sim) EscapeRate() float64 {
	return float64(s.escapes) / math.Max(1, float64(s.insideObs))
}

// InsideFraction returns the fraction of agents currently within sigma.
func (s *Sim) InsideFraction() float64 {
	inside := 0
	for _, p := range s.positions {
		if p.Norm() <= s.p.Sigma {
			inside++
		}
	}
	return float64(inside) / float64(len(s.positions))
}

// Trace summarizes the run so far.
func (s *Sim) Trace() *Trace {
	final := s.radii[len(s.radii)-1]
	insideFinal := 0
	sum := 0.0
	for _, r := range final {
		if r <= s.p.Sigma {
			insideFinal++
		}
		sum += r
	}

	return &Trace{
		Trajectories:      s.trajectories,
		Radii:             s.radii,
		EscapeRate:        s.EscapeRate(),
		InsideFraction:    float64(insideFinal) / float64(len(final)),
		AngularDispersion: stdPop(s.angleDeltas),
		Score:             sum / float64(len(final)),
	}
}

func stdPop(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	mean := 0.0
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))
	sum := 0.0
	for _, x := range xs {
		d := x - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(xs)))
}

// Simulate runs a walker to completion.
func Simulate(p Params) (*Trace, error) {
	s, err := NewSim(p)
	if err != nil {
		return nil, err
	}
	for i := 0; i < p.Steps; i++ {
		if err := s.Step(); err != nil {
			return nil, err
		}
	}
	return s.Trace(), nil
}
