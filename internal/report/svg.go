package report

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/avasker/phasewall/internal/bench"
	"github.com/avasker/phasewall/internal/stats"
)

const (
	chartHeight  = 320
	plotTop      = 40
	plotBottom   = 70
	marginLeft   = 60
	marginRight  = 20
	groupWidth   = 90
	barWidth     = 30
	vanillaFill  = "#4488cc"
	wallFill     = "#2ecc71"
	bgFill       = "#0a0a0a"
	axisStroke   = "#888899"
	labelFill    = "#ccccdd"
	refLineColor = "#ff4444"
)

type chartGroup struct {
	scenario string
	engine   string
	vanilla  float64
	wall     float64
}

func collectGroups(aggregates []stats.AggregateResult) []chartGroup {
	byKey := make(map[string]*chartGroup)
	var keys []string
	for _, a := range aggregates {
		key := a.Scenario + "\x00" + a.Engine
		g, ok := byKey[key]
		if !ok {
			g = &chartGroup{scenario: a.Scenario, engine: a.Engine, vanilla: math.NaN(), wall: math.NaN()}
			byKey[key] = g
			keys = append(keys, key)
		}
		switch a.Method {
		case bench.MethodVanilla:
			g.vanilla = a.MedianScore
		case bench.MethodPhasewall:
			g.wall = a.MedianScore
		}
	}

	sort.Strings(keys)
	groups := make([]chartGroup, len(keys))
	for i, key := range keys {
		groups[i] = *byKey[key]
	}
	return groups
}

// ScoreBarsSVG renders median score per scenario/engine, vanilla and
// phasewall side by side.
func ScoreBarsSVG(aggregates []stats.AggregateResult) string {
	groups := collectGroups(aggregates)

	width := marginLeft + marginRight + len(groups)*groupWidth
	if width < 400 {
		width = 400
	}
	plotH := float64(chartHeight - plotTop - plotBottom)

	maxVal := 0.0
	for _, g := range groups {
		for _, v := range []float64{g.vanilla, g.wall} {
			if !math.IsNaN(v) && v > maxVal {
				maxVal = v
			}
		}
	}
	if maxVal <= 0 {
		maxVal = 1
	}

	var sb strings.Builder
	svgHeader(&sb, width, chartHeight)
	svgTitle(&sb, width, "Median score by scenario (lower is better)")

	baseY := chartHeight - plotBottom
	for i, g := range groups {
		x := marginLeft + i*groupWidth
		drawBar(&sb, x+10, baseY, g.vanilla/maxVal*plotH, vanillaFill)
		drawBar(&sb, x+10+barWidth+5, baseY, g.wall/maxVal*plotH, wallFill)
		drawGroupLabel(&sb, x+groupWidth/2, baseY, g)
	}

	svgAxis(&sb, width, baseY, maxVal)
	svgLegend(&sb, width)
	sb.WriteString("</svg>\n")
	return sb.String()
}

// WinRateSVG renders the phasewall paired-seed win-rate per scenario/engine
// with the 0.5 coin-flip reference line.
func WinRateSVG(aggregates []stats.AggregateResult) string {
	var rows []stats.AggregateResult
	for _, a := range aggregates {
		if a.Method == bench.MethodPhasewall {
			rows = append(rows, a)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Engine != rows[j].Engine {
			return rows[i].Engine < rows[j].Engine
		}
		return rows[i].Scenario < rows[j].Scenario
	})

	width := marginLeft + marginRight + len(rows)*groupWidth
	if width < 400 {
		width = 400
	}
	plotH := float64(chartHeight - plotTop - plotBottom)
	baseY := chartHeight - plotBottom

	var sb strings.Builder
	svgHeader(&sb, width, chartHeight)
	svgTitle(&sb, width, "PhaseWall paired-seed win-rate")

	for i, a := range rows {
		x := marginLeft + i*groupWidth
		drawBar(&sb, x+(groupWidth-barWidth)/2, baseY, a.WinRate*plotH, wallFill)
		drawGroupLabel(&sb, x+groupWidth/2, baseY, chartGroup{scenario: a.Scenario, engine: a.Engine})
	}

	// reference line at win-rate 0.5
	refY := float64(baseY) - 0.5*plotH
	fmt.Fprintf(&sb, `<line x1="%d" y1="%.1f" x2="%d" y2="%.1f" stroke="%s" stroke-width="1" stroke-dasharray="6,4"/>`+"\n",
		marginLeft, refY, width-marginRight, refY, refLineColor)

	svgAxis(&sb, width, baseY, 1.0)
	sb.WriteString("</svg>\n")
	return sb.String()
}

func svgHeader(sb *strings.Builder, width, height int) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>`+"\n")
	fmt.Fprintf(sb, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n",
		width, height, width, height)
	fmt.Fprintf(sb, `<rect width="100%%" height="100%%" fill="%s"/>`+"\n", bgFill)
}

func svgTitle(sb *strings.Builder, width int, title string) {
	fmt.Fprintf(sb, `<text x="%d" y="22" fill="%s" font-size="14" text-anchor="middle" font-family="monospace">%s</text>`+"\n",
		width/2, labelFill, title)
}

func drawBar(sb *strings.Builder, x, baseY int, h float64, fill string) {
	if math.IsNaN(h) || h < 0 {
		return
	}
	fmt.Fprintf(sb, `<rect x="%d" y="%.1f" width="%d" height="%.1f" fill="%s"/>`+"\n",
		x, float64(baseY)-h, barWidth, h, fill)
}

func drawGroupLabel(sb *strings.Builder, cx, baseY int, g chartGroup) {
	fmt.Fprintf(sb, `<text x="%d" y="%d" fill="%s" font-size="9" text-anchor="middle" font-family="monospace">%s</text>`+"\n",
		cx, baseY+16, labelFill, g.scenario)
	fmt.Fprintf(sb, `<text x="%d" y="%d" fill="%s" font-size="9" text-anchor="middle" font-family="monospace">(%s)</text>`+"\n",
		cx, baseY+28, labelFill, g.engine)
}

func svgAxis(sb *strings.Builder, width, baseY int, maxVal float64) {
	fmt.Fprintf(sb, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s" stroke-width="1"/>`+"\n",
		marginLeft, baseY, width-marginRight, baseY, axisStroke)
	fmt.Fprintf(sb, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s" stroke-width="1"/>`+"\n",
		marginLeft, plotTop, marginLeft, baseY, axisStroke)
	fmt.Fprintf(sb, `<text x="%d" y="%d" fill="%s" font-size="10" text-anchor="end" font-family="monospace">%.3g</text>`+"\n",
		marginLeft-6, plotTop+4, labelFill, maxVal)
	fmt.Fprintf(sb, `<text x="%d" y="%d" fill="%s" font-size="10" text-anchor="end" font-family="monospace">0</text>`+"\n",
		marginLeft-6, baseY+4, labelFill)
}

func svgLegend(sb *strings.Builder, width int) {
	x := width - marginRight - 150
	fmt.Fprintf(sb, `<rect x="%d" y="%d" width="10" height="10" fill="%s"/>`+"\n", x, plotTop-6, vanillaFill)
	fmt.Fprintf(sb, `<text x="%d" y="%d" fill="%s" font-size="10" font-family="monospace">vanilla</text>`+"\n", x+14, plotTop+3, labelFill)
	fmt.Fprintf(sb, `<rect x="%d" y="%d" width="10" height="10" fill="%s"/>`+"\n", x+80, plotTop-6, wallFill)
	fmt.Fprintf(sb, `<text x="%d" y="%d" fill="%s" font-size="10" font-family="monospace">phasewall</text>`+"\n", x+94, plotTop+3, labelFill)
}
