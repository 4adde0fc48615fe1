package figures

import (
	"context"
	"fmt"
	"math"

	"github.com/aquaneuron/aquaneuron-sim/internal/catalog"
	"github.com/aquaneuron/aquaneuron-sim/internal/fit"
	"github.com/aquaneuron/aquaneuron-sim/internal/model"
	"github.com/aquaneuron/aquaneuron-sim/internal/render"
	"github.com/aquaneuron/aquaneuron-sim/internal/sink"
	"github.com/aquaneuron/aquaneuron-sim/internal/stats"
	"github.com/aquaneuron/aquaneuron-sim/internal/summary"
)

const (
	experimentalNoise = 2.8
	linearisedNoise   = 1.5
)

// Child stream ids of the isotherm figure.
const (
	streamBootstrap = iota + 1
	streamExperimental
	streamLinearised
)

// IsothermPanel is the binding analysis of one contaminant.
type IsothermPanel struct {
	Contaminant catalog.Contaminant

	Grid                 []float64
	Langmuir, Freundlich []float64 // reference curves over Grid

	LangmuirBand, FreundlichBand fit.Band
	Kept, Attempted              int

	// Experimental points and the goodness of fit of both models to them.
	ExpX, ExpY                 []float64
	LangmuirFit, FreundlichFit []float64
	LangmuirR2, FreundlichR2   float64
}

// Linearised is the C/Q against C regression of one contaminant.
type Linearised struct {
	Contaminant catalog.Contaminant
	C, CQ       []float64
	Fit         stats.Regression
}

// QmaxEstimate is 1/slope of the linearised plot.
func (l Linearised) QmaxEstimate() float64 { return 1 / l.Fit.Slope }

// IsothermData backs figure 1.
type IsothermData struct {
	Replicates int
	Panels     []IsothermPanel
	Linear     []Linearised
	DeltaG     []float64 // kJ/mol, per contaminant
}

func buildIsotherms(ctx context.Context, env Env) (Data, error) {
	cfg := env.Config
	d := &IsothermData{Replicates: cfg.Bootstrap.Replicates}
	grid := model.LinSpace(0.1, 520, 600)
	bootRng := env.Rand.Derive(streamBootstrap)
	expRng := env.Rand.Derive(streamExperimental)
	linRng := env.Rand.Derive(streamLinearised)

	for _, c := range catalog.Contaminants {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		iso := c.Isotherm
		truth := model.LangmuirCurve(catalog.ExperimentalGrid, iso.Qmax, iso.Kd)
		ens, err := fit.Bootstrap(bootRng, fit.BootstrapSpec{
			Label:        "isotherms",
			X:            catalog.ExperimentalGrid,
			Truth:        truth,
			NoiseSD:      cfg.Bootstrap.NoiseSD,
			Replicates:   cfg.Bootstrap.Replicates,
			MinSuccesses: cfg.Bootstrap.MinSuccesses,
			Grid:         grid,
			Candidates: []fit.Candidate{
				{Model: fit.Langmuir, P0: []float64{iso.Qmax * 0.9, iso.Kd * 1.1}},
				{Model: fit.Freundlich, P0: []float64{iso.Kf, iso.N}, Skip: 1},
			},
			Options: fit.DefaultOptions,
		})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", c.Label, err)
		}
		lb, err := fit.PercentileBand(ens.Curves[0], 2.5, 97.5)
		if err != nil {
			return nil, fmt.Errorf("%s langmuir band: %w", c.Label, err)
		}
		fb, err := fit.PercentileBand(ens.Curves[1], 2.5, 97.5)
		if err != nil {
			return nil, fmt.Errorf("%s freundlich band: %w", c.Label, err)
		}

		p := IsothermPanel{
			Contaminant:    c,
			Grid:           grid,
			Langmuir:       model.LangmuirCurve(grid, iso.Qmax, iso.Kd),
			Freundlich:     model.FreundlichCurve(grid, iso.Kf, iso.N),
			LangmuirBand:   lb,
			FreundlichBand: fb,
			Kept:           ens.Succeeded,
			Attempted:      ens.Attempted,
			ExpX:           catalog.ExperimentalGrid,
			ExpY:           expRng.Jitter(truth, experimentalNoise),
		}
		if err := p.fitExperimental(); err != nil {
			return nil, fmt.Errorf("%s: %w", c.Label, err)
		}
		d.Panels = append(d.Panels, p)
		logf("isotherms", "%s: kept %d/%d, langmuir R²=%.4f freundlich R²=%.4f",
			c.Analyte, p.Kept, p.Attempted, p.LangmuirR2, p.FreundlichR2)
	}

	for _, c := range catalog.Contaminants {
		cs := model.LinSpace(2, 500, 50)
		q := linRng.Jitter(model.LangmuirCurve(cs, c.Isotherm.Qmax, c.Isotherm.Kd), linearisedNoise)
		cq := make([]float64, len(cs))
		for i := range cs {
			cq[i] = cs[i] / q[i]
		}
		reg, err := stats.LinRegress(cs, cq)
		if err != nil {
			return nil, fmt.Errorf("%s linearised fit: %w", c.Label, err)
		}
		d.Linear = append(d.Linear, Linearised{Contaminant: c, C: cs, CQ: cq, Fit: reg})
		d.DeltaG = append(d.DeltaG, model.DeltaG(c.Isotherm.Kd, c.MolarMass))
	}
	return d, nil
}

// fitExperimental fits both isotherms to the experimental points and
// records their coefficients of determination.
func (p *IsothermPanel) fitExperimental() error {
	iso := p.Contaminant.Isotherm
	l, err := fit.LeastSquares(fit.Langmuir, p.ExpX, p.ExpY, []float64{iso.Qmax, iso.Kd}, fit.DefaultOptions)
	if err != nil {
		return fmt.Errorf("langmuir fit: %w", err)
	}
	f, err := fit.LeastSquares(fit.Freundlich, p.ExpX, p.ExpY, []float64{iso.Kf, iso.N}, fit.DefaultOptions)
	if err != nil {
		return fmt.Errorf("freundlich fit: %w", err)
	}
	p.LangmuirFit, p.FreundlichFit = l.Params, f.Params
	p.LangmuirR2 = stats.R2(p.ExpY, fit.Langmuir.Curve(p.ExpX, l.Params))
	p.FreundlichR2 = stats.R2(p.ExpY, fit.Freundlich.Curve(p.ExpX, f.Params))
	return nil
}

func (d *IsothermData) Metrics() []summary.Metric {
	var out []summary.Metric
	for i, p := range d.Panels {
		k := key(p.Contaminant.Analyte)
		mid := len(p.Grid) / 2
		out = append(out,
			summary.M(k+"_langmuir_r2", p.LangmuirR2, ""),
			summary.M(k+"_freundlich_r2", p.FreundlichR2, ""),
			summary.M(k+"_bootstrap_members", float64(p.Kept), ""),
			summary.M(k+"_band_width_mid", p.LangmuirBand.Upper[mid]-p.LangmuirBand.Lower[mid], "nM"),
			summary.M(k+"_qmax_linearised", d.Linear[i].QmaxEstimate(), "nM"),
			summary.M(k+"_linearised_r2", d.Linear[i].Fit.R2, ""),
			summary.M(k+"_delta_g", d.DeltaG[i], "kJ/mol"),
		)
	}
	return out
}

func (d *IsothermData) Render(s *sink.Surface) error {
	area := body(s, "Langmuir vs Freundlich Isotherm Analysis — GO-Aptamer Surface Binding",
		fmt.Sprintf("Dual-model comparison with Monte Carlo uncertainty bands (n=%d bootstrap replicates)", d.Replicates), 20)
	g := render.Grid{Bounds: area, Rows: 2, Cols: 3, Gap: 28}

	var items []placed
	for i, p := range d.Panels {
		items = append(items, placed{g.Cell(0, i), p.plot()})
	}
	items = append(items,
		placed{g.Span(1, 0, 2, 2), d.linearisedPlot()},
		placed{g.Cell(1, 2), d.energyPlot()},
	)
	return compose(s.Canvas, items...)
}

func (p IsothermPanel) plot() render.Plot {
	c := p.Contaminant
	iso := c.Isotherm
	col := hex(c.Color)
	pl := render.Plot{
		Title:  c.Name,
		XLabel: "Concentration (ppb)",
		YLabel: "Surface Coverage Q (nM)",
		XRange: &render.Range{Min: -5, Max: 530},
		YRange: &render.Range{Min: -3, Max: iso.Qmax * 1.18},
		Bands: []render.Band{
			{X: p.Grid, Lower: p.LangmuirBand.Lower, Upper: p.LangmuirBand.Upper, Color: render.Alpha(c.Color, 46)},
			{X: p.Grid, Lower: p.FreundlichBand.Lower, Upper: p.FreundlichBand.Upper, Color: render.Alpha(catalog.Slate, 26)},
		},
		Lines: []render.Line{
			{Name: fmt.Sprintf("Langmuir (R²=%.3f)", p.LangmuirR2), X: p.Grid, Y: p.Langmuir, Color: col, Width: 2.5},
			{Name: fmt.Sprintf("Freundlich (R²=%.3f)", p.FreundlichR2), X: p.Grid, Y: p.Freundlich, Color: render.Alpha(c.Color, 180), Width: 2, Dashed: true},
			{Name: "Experimental", X: p.ExpX, Y: p.ExpY, Color: col, Dots: 5},
		},
		HRules: []render.Rule{{At: iso.Qmax, Color: render.Alpha(c.Color, 100), Width: 1, Dashed: true}},
		Notes: []render.Note{
			{X: iso.Kd + max(30, iso.Kd*1.5), Y: iso.Qmax * 0.38, Text: fmt.Sprintf("Kd = %g ppb", iso.Kd), Color: col},
			{X: 520 * 0.98, Y: iso.Qmax * 1.04, Text: fmt.Sprintf("Qmax=%gnM", iso.Qmax), Color: col, Align: render.Right},
		},
		Legend: render.BottomRight,
	}
	// the fluoride limit lies beyond the plotted range
	if c.WHOLimit < 530 {
		pl.VRules = []render.Rule{{At: c.WHOLimit, Color: hex(catalog.Rule), Dashed: true}}
		pl.Notes = append(pl.Notes, render.Note{X: c.WHOLimit * 1.08, Y: iso.Qmax * 0.15, Text: "WHO " + ppb(c.WHOLimit), Color: hex(catalog.Rule)})
	}
	return pl
}

func (d *IsothermData) linearisedPlot() render.Plot {
	pl := render.Plot{
		Title:  "Linearised Langmuir Plot (C/Q vs C)",
		XLabel: "Concentration C (ppb)",
		YLabel: "C/Q (ppb·nM⁻¹)",
		Legend: render.TopLeft,
	}
	for _, l := range d.Linear {
		c := l.Contaminant
		pl.Lines = append(pl.Lines,
			render.Line{X: l.C, Y: l.CQ, Color: render.Alpha(c.Color, 150), Dots: 3},
			render.Line{
				Name:  fmt.Sprintf("%s: 1/Qmax=%.4f, R²=%.4f", c.Short, l.Fit.Slope, l.Fit.R2),
				X:     []float64{0, 520},
				Y:     []float64{l.Fit.Intercept, l.Fit.Predict(520)},
				Color: hex(c.Color), Width: 2,
			})
	}
	return pl
}

func (d *IsothermData) energyPlot() render.Plot {
	n := len(d.Panels)
	pl := render.Plot{
		Title:      "Binding Free Energy ΔG°",
		XLabel:     "|ΔG°| (kJ/mol)",
		Horizontal: true,
	}
	bars := render.Bars{}
	top := 0.0
	for i, p := range d.Panels {
		v := math.Abs(d.DeltaG[i])
		top = max(top, v)
		pl.Categories = append(pl.Categories, p.Contaminant.Short)
		bars.Values = append(bars.Values, v)
		bars.Colors = append(bars.Colors, hex(p.Contaminant.Color))
		pl.Notes = append(pl.Notes, render.Note{
			X: v + 0.3, Y: float64(n-1-i) - 0.05,
			Text:  fmt.Sprintf("ΔG = %.1f kJ/mol", d.DeltaG[i]),
			Color: hex(catalog.Body),
		})
	}
	pl.Bars = []render.Bars{bars}
	pl.XRange = &render.Range{Min: 0, Max: top * 1.4}
	return pl
}
