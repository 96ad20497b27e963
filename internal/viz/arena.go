// Package viz renders walker swarms in the terminal: a braille canvas for
// agent positions and a bubbletea arena that runs the vanilla and phase-wall
// variants side by side from the same seed.
package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/avasker/phasewall/internal/walker"
)

const (
	arenaWidth  = 36
	arenaHeight = 14
	worldExtent = 3.0 // world units mapped to the canvas half-width

	rateHistoryCap = 240

	noiseStep    = 0.02
	strengthStep = 0.05
)

type TickMsg time.Time

// ArenaConfig seeds the paired simulation shown in the arena.
type ArenaConfig struct {
	Agents       int
	NoiseStd     float64
	Sigma        float64
	WallStrength float64
	Seed         int64
}

// Arena is the live side-by-side view. Both sims share a seed so every
// difference on screen comes from the wall alone.
type Arena struct {
	cfg ArenaConfig

	plain  *walker.Sim
	walled *walker.Sim

	plainCanvas  *Canvas
	walledCanvas *Canvas

	plainRates  []float64
	walledRates []float64

	running bool
	err     error
}

// NewArena builds the paired sims and their canvases.
func NewArena(cfg ArenaConfig) (Arena, error) {
	a := Arena{
		cfg:          cfg,
		plainCanvas:  NewCanvas(arenaWidth, arenaHeight),
		walledCanvas: NewCanvas(arenaWidth, arenaHeight),
		running:      true,
	}
	if err := a.rebuild(); err != nil {
		return Arena{}, err
	}
	return a, nil
}

// rebuild restarts both sims from the current config.
func (a *Arena) rebuild() error {
	base := walker.Params{
		Dim:          2,
		Agents:       a.cfg.Agents,
		NoiseStd:     a.cfg.NoiseStd,
		Seed:         a.cfg.Seed,
		Sigma:        a.cfg.Sigma,
		WallStrength: a.cfg.WallStrength,
	}

	plain, err := walker.NewSim(base)
	if err != nil {
		return err
	}
	walled := base
	walled.WallEnabled = true
	sim, err := walker.NewSim(walled)
	if err != nil {
		return err
	}
	plain.SetHistoryLimit(rateHistoryCap)
	sim.SetHistoryLimit(rateHistoryCap)

	a.plain = plain
	a.walled = sim
	a.plainRates = a.plainRates[:0]
	a.walledRates = a.walledRates[:0]
	return nil
}

func (a Arena) Init() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Update handles input events and steps both sims in lockstep.
func (a Arena) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return a, tea.Quit
		case " ":
			a.running = !a.running
		case "r":
			a.cfg.Seed++
			a.err = a.rebuild()
		case "up", "k":
			a.cfg.NoiseStd += noiseStep
			a.err = a.rebuild()
		case "down", "j":
			a.cfg.NoiseStd -= noiseStep
			if a.cfg.NoiseStd < 0 {
				a.cfg.NoiseStd = 0
			}
			a.err = a.rebuild()
		case "right", "l":
			a.cfg.WallStrength += strengthStep
			if a.cfg.WallStrength > 1 {
				a.cfg.WallStrength = 1
			}
			a.err = a.rebuild()
		case "left", "h":
			a.cfg.WallStrength -= strengthStep
			if a.cfg.WallStrength < 0 {
				a.cfg.WallStrength = 0
			}
			a.err = a.rebuild()
		}
	case TickMsg:
		if a.running && a.err == nil {
			if err := a.plain.Step(); err != nil {
				a.err = err
			} else if err := a.walled.Step(); err != nil {
				a.err = err
			}
			a.plainRates = pushRate(a.plainRates, a.plain.EscapeRate())
			a.walledRates = pushRate(a.walledRates, a.walled.EscapeRate())
		}
		return a, tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return a, nil
}

func pushRate(hist []float64, v float64) []float64 {
	hist = append(hist, v)
	if len(hist) > rateHistoryCap {
		hist = hist[1:]
	}
	return hist
}

// View renders the two swarms with their containment ring and a stats strip.
func (a Arena) View() string {
	if a.err != nil {
		return "error: " + a.err.Error() + "\n"
	}

	drawSwarm(a.plainCanvas, a.plain, a.cfg.Sigma)
	drawSwarm(a.walledCanvas, a.walled, a.cfg.Sigma)

	left := panelStyle.Render(
		headerStyle.Render("VANILLA") + "\n" +
			a.plainCanvas.String() +
			simStats(a.plain, a.plainRates))
	right := panelStyle.Render(
		wallHeaderStyle.Render("PHASEWALL") + "\n" +
			a.walledCanvas.String() +
			simStats(a.walled, a.walledRates))

	status := statusRunning.Render("RUNNING")
	if !a.running {
		status = statusPaused.Render("PAUSED")
	}

	var s strings.Builder
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right))
	s.WriteString("\n" + status)
	s.WriteString(fmt.Sprintf("  seed=%d  noise=%.2f  strength=%.2f  sigma=%.1f",
		a.cfg.Seed, a.cfg.NoiseStd, a.cfg.WallStrength, a.cfg.Sigma))
	s.WriteString(helpStyle.Render("\nSP:Pause  R:Reseed  ↑↓:Noise  ←→:Strength  Q:Quit"))
	return s.String()
}

// drawSwarm projects agent positions and the sigma ring onto a canvas.
func drawSwarm(c *Canvas, s *walker.Sim, sigma float64) {
	c.Clear()

	cw, ch := c.Width*2, c.Height*4
	cx, cy := cw/2, ch/2
	scaleX := float64(cw) / (2 * worldExtent)
	scaleY := float64(ch) / (2 * worldExtent)

	c.DrawEllipse(cx, cy, int(sigma*scaleX), int(sigma*scaleY))

	for _, p := range s.Positions() {
		x := cx + int(p[0]*scaleX)
		y := cy - int(p[1]*scaleY)
		c.Set(x, y)
	}
}

func simStats(s *walker.Sim, rates []float64) string {
	var b strings.Builder
	b.WriteString(labelStyle.Render("step") + valueStyle.Render(fmt.Sprintf("%d", s.StepCount())) + "\n")
	b.WriteString(labelStyle.Render("escape rate") + valueStyle.Render(fmt.Sprintf("%.3f", s.EscapeRate())) + "\n")
	b.WriteString(labelStyle.Render("inside") + valueStyle.Render(fmt.Sprintf("%.0f%%", 100*s.InsideFraction())) + "\n")
	b.WriteString(SparklineChart(rates, arenaWidth))
	return b.String()
}
