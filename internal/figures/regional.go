package figures

import (
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/aquaneuron/aquaneuron-sim/internal/catalog"
	"github.com/aquaneuron/aquaneuron-sim/internal/render"
	"github.com/aquaneuron/aquaneuron-sim/internal/sink"
	"github.com/aquaneuron/aquaneuron-sim/internal/summary"
)

// RegionRisk is a region with its derived risk figures.
type RegionRisk struct {
	catalog.Region
	Combined  float64 // mean of the three hazard indices
	PopAtRisk float64 // millions
}

// Dominant returns the analyte with the highest hazard index.
func (r RegionRisk) Dominant() catalog.Analyte {
	switch {
	case r.Arsenic >= r.Fluoride && r.Arsenic >= r.Lead:
		return catalog.Arsenic
	case r.Fluoride >= r.Lead:
		return catalog.Fluoride
	default:
		return catalog.Lead
	}
}

// RankRegions derives the combined index and the population at risk of
// every region and orders them by combined index, highest first. Ties keep
// the table order.
func RankRegions(regions []catalog.Region) []RegionRisk {
	out := make([]RegionRisk, len(regions))
	for i, r := range regions {
		combined := (r.Arsenic + r.Fluoride + r.Lead) / 3
		out[i] = RegionRisk{Region: r, Combined: combined, PopAtRisk: r.Population * combined / 10}
	}
	slices.SortStableFunc(out, func(a, b RegionRisk) int {
		switch {
		case a.Combined > b.Combined:
			return -1
		case a.Combined < b.Combined:
			return 1
		}
		return 0
	})
	return out
}

// RegionalData backs figure 3.
type RegionalData struct {
	Ranked []RegionRisk
}

const (
	riskLo, riskHi = 2.0, 7.0
	stackedStates  = 10
	populationBars = 8
)

func buildRegional(_ context.Context, _ Env) (Data, error) {
	regions, err := catalog.Regions()
	if err != nil {
		return nil, err
	}
	d := &RegionalData{Ranked: RankRegions(regions)}
	logf("india", "%d regions, highest combined index %.2f (%s)", len(d.Ranked), d.Ranked[0].Combined, d.Ranked[0].State)
	return d, nil
}

func (d *RegionalData) Metrics() []summary.Metric {
	total, high := 0.0, 0
	for _, r := range d.Ranked {
		total += r.PopAtRisk
		if r.Combined > catalog.HighRisk {
			high++
		}
	}
	top := d.Ranked[0]
	return []summary.Metric{
		summary.M("top_combined_index", top.Combined, ""),
		summary.M("top_population_at_risk", top.PopAtRisk, "million"),
		summary.M("total_population_at_risk", total, "million"),
		summary.M("states_above_high_risk", float64(high), ""),
	}
}

func (d *RegionalData) Render(s *sink.Surface) error {
	area := body(s, "India Groundwater Contamination — Multi-Hazard Risk Analysis",
		fmt.Sprintf("Based on CGWB (2023) district-level data; %d major states", len(d.Ranked)), 20)
	g := render.Grid{Bounds: area, Rows: 2, Cols: 3, Gap: 28}
	return compose(s.Canvas,
		placed{g.Span(0, 0, 2, 1), d.riskPlot()},
		placed{g.Span(0, 1, 1, 3), d.stackPlot()},
		placed{g.Cell(1, 1), d.bubblePlot()},
		placed{g.Cell(1, 2), d.populationPlot()},
	)
}

func (d *RegionalData) riskPlot() drawer {
	n := len(d.Ranked)
	bars := render.Bars{}
	p := render.Plot{
		Title:      "(A) Combined Contamination Risk Index by State",
		XLabel:     "Combined Risk Index (0-10)",
		Horizontal: true,
		FontSize:   13,
		XRange:     &render.Range{Min: 0, Max: 11},
		VRules: []render.Rule{
			{Name: "High risk (>5.0)", At: catalog.HighRisk, Color: hex(catalog.Red), Width: 2, Dashed: true},
			{Name: "Moderate risk (>3.5)", At: catalog.ModerateRisk, Color: hex(catalog.Orange), Dashed: true},
		},
		Legend: render.BottomRight,
	}
	for i, r := range d.Ranked {
		p.Categories = append(p.Categories, r.State)
		bars.Values = append(bars.Values, r.Combined)
		bars.Colors = append(bars.Colors, render.RiskMap.Norm(r.Combined, riskLo, riskHi))
		p.Notes = append(p.Notes, render.Note{
			X: r.Combined + 0.1, Y: float64(n-1-i) - 0.15,
			Text:  fmt.Sprintf("%.1f  (%.0fM at risk)", r.Combined, r.PopAtRisk),
			Color: hex(catalog.Body), Size: 11,
		})
	}
	bars.Edge = hex(catalog.White)
	p.Bars = []render.Bars{bars}
	return barred{plot: p, cmap: render.RiskMap, lo: riskLo, hi: riskHi, ticks: []float64{2, 3, 4, 5, 6, 7}, title: "Risk"}
}

func (d *RegionalData) stackPlot() render.Plot {
	top := d.Ranked[:min(stackedStates, len(d.Ranked))]
	p := render.Plot{
		Title:   fmt.Sprintf("(B) Top %d States — Contaminant Breakdown", len(top)),
		YLabel:  "Contamination Index Score",
		Stacked: true,
		Legend:  render.TopRight,
	}
	series := []struct {
		a   catalog.Analyte
		get func(RegionRisk) float64
	}{
		{catalog.Arsenic, func(r RegionRisk) float64 { return r.Arsenic }},
		{catalog.Fluoride, func(r RegionRisk) float64 { return r.Fluoride }},
		{catalog.Lead, func(r RegionRisk) float64 { return r.Lead }},
	}
	for _, r := range top {
		p.Categories = append(p.Categories, r.State)
	}
	for _, s := range series {
		c, _ := catalog.Lookup(s.a)
		b := render.Bars{Name: c.Label, Color: hex(c.Color), Edge: hex(catalog.White)}
		for _, r := range top {
			b.Values = append(b.Values, s.get(r))
		}
		p.Bars = append(p.Bars, b)
	}
	return p
}

func (d *RegionalData) bubblePlot() drawer {
	line := render.Line{Color: hex(catalog.Slate)}
	p := render.Plot{
		Title:  "(C) As vs F Risk Space (bubble size = population)",
		XLabel: "Arsenic Risk Index",
		YLabel: "Fluoride Risk Index",
		XRange: &render.Range{Min: 1, Max: 10.5},
		YRange: &render.Range{Min: 1, Max: 10},
	}
	for _, r := range d.Ranked {
		line.X = append(line.X, r.Arsenic)
		line.Y = append(line.Y, r.Fluoride)
		line.Sizes = append(line.Sizes, 1.2*math.Sqrt(r.Population))
		line.Colors = append(line.Colors, render.TrafficMap.Norm(r.Combined, riskLo, riskHi).WithAlpha(204))
		p.Notes = append(p.Notes, render.Note{
			X: r.Arsenic + 0.08, Y: r.Fluoride + 0.12,
			Text: abbreviate(r.State, 8), Color: hex(catalog.Body), Size: 10,
		})
	}
	line.Dots = 4
	p.Lines = []render.Line{line}
	return barred{plot: p, cmap: render.TrafficMap, lo: riskLo, hi: riskHi, ticks: []float64{2, 3, 4, 5, 6, 7}, title: "Combined"}
}

func (d *RegionalData) populationPlot() render.Plot {
	top := d.Ranked[:min(populationBars, len(d.Ranked))]
	bars := render.Bars{Labels: "%.0fM", Edge: hex(catalog.White)}
	p := render.Plot{
		Title:      "(D) Estimated Affected Population by State",
		XLabel:     "Estimated Population at Risk (millions)",
		Horizontal: true,
		FontSize:   13,
	}
	for _, r := range top {
		p.Categories = append(p.Categories, r.State)
		bars.Values = append(bars.Values, r.PopAtRisk)
		bars.Colors = append(bars.Colors, analyteColor(r.Dominant()))
	}
	p.Bars = []render.Bars{bars}
	return p
}

func analyteColor(a catalog.Analyte) drawing.Color {
	c, ok := catalog.Lookup(a)
	if !ok {
		return hex(catalog.Slate)
	}
	return hex(c.Color)
}

// abbreviate keeps the first n runes of s.
func abbreviate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
