package figures

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/aquaneuron/aquaneuron-sim/internal/catalog"
	"github.com/aquaneuron/aquaneuron-sim/internal/model"
	"github.com/aquaneuron/aquaneuron-sim/internal/render"
	"github.com/aquaneuron/aquaneuron-sim/internal/sink"
	"github.com/aquaneuron/aquaneuron-sim/internal/stats"
	"github.com/aquaneuron/aquaneuron-sim/internal/summary"
)

// Comparison is one analyte measured by the sensor and by ICP-MS.
type Comparison struct {
	Set       catalog.ValidationSet
	Reference []float64
	Measured  []float64
	Agreement stats.Agreement
	R         float64
	Fit       stats.Regression
	Residuals stats.ResidualSet
}

// ValidationData backs figure 8.
type ValidationData struct {
	Sets []Comparison
}

// Child stream ids of the validation figure.
const (
	streamReference = iota + 1
	streamGain
	streamNoise
)

func buildValidation(ctx context.Context, env Env) (Data, error) {
	d := &ValidationData{}
	n := catalog.ValidationSamples
	refRng := env.Rand.Derive(streamReference)
	gainRng := env.Rand.Derive(streamGain)
	noiseRng := env.Rand.Derive(streamNoise)
	for _, set := range catalog.ValidationSets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		icp := refRng.UniformN(n, set.RefLo, set.RefHi)
		gain := gainRng.NormalN(n, set.Gain.Mean, set.Gain.SD)
		noise := noiseRng.NormalN(n, 0, set.NoiseSD)
		aq := make([]float64, n)
		for i := range aq {
			aq[i] = icp[i]*gain[i] + noise[i]
		}

		c := Comparison{Set: set, Reference: icp, Measured: aq}
		var err error
		if c.Agreement, err = stats.BlandAltman(icp, aq); err != nil {
			return nil, fmt.Errorf("%s agreement: %w", set.Label, err)
		}
		if c.R, err = stats.Pearson(icp, aq); err != nil {
			return nil, fmt.Errorf("%s correlation: %w", set.Label, err)
		}
		if c.Fit, err = stats.LinRegress(icp, aq); err != nil {
			return nil, fmt.Errorf("%s calibration: %w", set.Label, err)
		}
		if c.Residuals, err = stats.Residuals(icp, aq, c.Fit); err != nil {
			return nil, fmt.Errorf("%s residuals: %w", set.Label, err)
		}
		d.Sets = append(d.Sets, c)
	}
	logf("validation", "%d analytes, %d paired samples each", len(d.Sets), n)
	return d, nil
}

func (d *ValidationData) Metrics() []summary.Metric {
	var out []summary.Metric
	for _, c := range d.Sets {
		k := key(c.Set.Analyte)
		out = append(out,
			summary.M(k+"_bias", c.Agreement.Bias, "ppb"),
			summary.M(k+"_loa_lower", c.Agreement.LowerLoA, "ppb"),
			summary.M(k+"_loa_upper", c.Agreement.UpperLoA, "ppb"),
			summary.M(k+"_pearson_r", c.R, ""),
			summary.M(k+"_r2", c.Fit.R2, ""),
			summary.M(k+"_slope", c.Fit.Slope, ""),
			summary.M(k+"_intercept", c.Fit.Intercept, "ppb"),
			summary.M(k+"_residual_sd", c.Residuals.SD, "ppb"),
		)
	}
	return out
}

func (d *ValidationData) Render(s *sink.Surface) error {
	area := body(s, "Statistical Validation: AquaNeuron vs ICP-MS Reference",
		fmt.Sprintf("%d paired field samples per analyte", catalog.ValidationSamples), 20)
	g := render.Grid{Bounds: area, Rows: 3, Cols: 3, Gap: 24}
	var items []placed
	for row, c := range d.Sets {
		items = append(items,
			placed{g.Cell(row, 0), c.blandAltman()},
			placed{g.Cell(row, 1), c.calibration()},
			placed{g.Cell(row, 2), c.residualPlot()},
		)
	}
	return compose(s.Canvas, items...)
}

func (c Comparison) blandAltman() render.Plot {
	a := c.Agreement
	lo, hi := floats.Min(a.Means), floats.Max(a.Means)
	return render.Plot{
		Title:  c.Set.Label + " — Bland-Altman",
		XLabel: "Mean of AquaNeuron & ICP-MS (ppb)",
		YLabel: "Difference (ppb)",
		Lines: []render.Line{{
			X: a.Means, Y: a.Diffs, Color: render.Alpha(c.Set.Color, 160), Dots: 3.5,
		}},
		Bands: []render.Band{{
			X:     []float64{lo, hi},
			Lower: []float64{a.LowerLoA, a.LowerLoA},
			Upper: []float64{a.UpperLoA, a.UpperLoA},
			Color: render.Alpha(catalog.Green, 18),
		}},
		HRules: []render.Rule{
			{Name: fmt.Sprintf("Mean bias=%+.2fppb", a.Bias), At: a.Bias, Color: hex(catalog.Green), Width: 2},
			{Name: fmt.Sprintf("+1.96SD=%.2fppb", a.UpperLoA), At: a.UpperLoA, Color: hex(catalog.Red), Width: 1.5, Dashed: true},
			{Name: fmt.Sprintf("-1.96SD=%.2fppb", a.LowerLoA), At: a.LowerLoA, Color: hex(catalog.Red), Width: 1.5, Dashed: true},
		},
		Legend:   render.TopRight,
		FontSize: 11,
	}
}

func (c Comparison) calibration() render.Plot {
	lo, hi := floats.Min(c.Reference), floats.Max(c.Reference)
	xs := model.LinSpace(lo*0.9, hi*1.05, 100)
	fit := make([]float64, len(xs))
	for i, x := range xs {
		fit[i] = c.Fit.Predict(x)
	}
	return render.Plot{
		Title:  fmt.Sprintf("%s — Calibration r=%.4f, R²=%.4f", c.Set.Label, c.R, c.Fit.R2),
		XLabel: "ICP-MS Reference (ppb)",
		YLabel: "AquaNeuron (ppb)",
		Lines: []render.Line{
			{X: c.Reference, Y: c.Measured, Color: render.Alpha(c.Set.Color, 160), Dots: 3.5},
			{
				Name: fmt.Sprintf("y=%.3fx%+.2f", c.Fit.Slope, c.Fit.Intercept),
				X:    xs, Y: fit, Color: hex(c.Set.Color), Width: 2.5,
			},
			{Name: "Identity (y=x)", X: []float64{xs[0], xs[len(xs)-1]}, Y: []float64{xs[0], xs[len(xs)-1]}, Color: hex(catalog.Slate), Width: 1.5, Dashed: true},
		},
		Notes: []render.Note{{
			X: lo + 0.05*(hi-lo), Y: floats.Max(c.Measured) * 0.92,
			Text: fmt.Sprintf("R²=%.4f", c.Fit.R2), Color: hex(c.Set.Color), Size: 13,
		}},
		Legend:   render.BottomRight,
		FontSize: 11,
	}
}

func (c Comparison) residualPlot() render.Plot {
	rs := c.Residuals
	return render.Plot{
		Title:  c.Set.Label + " — Residual Plot (no systematic bias pattern)",
		XLabel: "ICP-MS Reference (ppb)",
		YLabel: "Residual (ppb)",
		Lines: []render.Line{{
			X: c.Reference, Y: rs.Values, Color: render.Alpha(c.Set.Color, 160), Dots: 3.5,
		}},
		HRules: []render.Rule{
			{At: 0, Color: hex(catalog.Green), Width: 2},
			{Name: "±2SD", At: rs.Upper, Color: hex(catalog.Red), Width: 1.5, Dashed: true},
			{At: rs.Lower, Color: hex(catalog.Red), Width: 1.5, Dashed: true},
		},
		Legend:   render.TopRight,
		FontSize: 11,
	}
}
