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

// Simulation constants of the stability and dynamic range panels.
const (
	lodCeiling     = 20.0 // ppb, upper bound of plausible Monte Carlo LODs
	driftRateLo    = 0.008
	driftRateHi    = 0.014
	driftNoise     = 0.5
	retentionOK    = 95.0
	retentionWarn  = 80.0
	dynamicPoints  = 100
	dynamicNoiseK  = 0.3 // noise sd as a fraction of the signal at the LOD
	kineticsWindow = 180.0
)

// Child stream ids of the sensor figure.
const (
	streamLOD = iota + 1
	streamDrift
	streamDynamicRange
)

// Nyquist is one electrode state of the impedance panel.
type Nyquist struct {
	Config catalog.ImpedanceConfig
	Points []model.NyquistPoint
}

// DynamicRange is the simulated linear calibration of one channel.
type DynamicRange struct {
	Contaminant catalog.Contaminant
	C, Signal   []float64
	Fit         stats.Regression
}

// SensorData backs figure 2.
type SensorData struct {
	Conc     []float64
	Response [][]float64 // ΔR/R0 in percent, per contaminant

	Nyquist []Nyquist

	Time     []float64
	Kinetics [][]float64 // percent of the final signal
	T90      []float64

	LOD []stats.LOD

	Days       []float64
	DriftRates []float64
	Drift      [][]float64

	Dynamic []DynamicRange
}

func buildSensor(ctx context.Context, env Env) (Data, error) {
	d := &SensorData{
		Conc: model.LinSpace(0.1, 200, 500),
		Time: model.LinSpace(0, kineticsWindow, 500),
		Days: model.LinSpace(0, 30, 200),
	}
	for _, c := range catalog.Contaminants {
		s := c.Sensor
		d.Response = append(d.Response, model.ResponseCurve(d.Conc, s.R0, s.Sensitivity, c.Isotherm.Kd))

		k := make([]float64, len(d.Time))
		for i, t := range d.Time {
			k[i] = 100 * model.FirstOrder(t, s.Tau)
		}
		d.Kinetics = append(d.Kinetics, k)
		d.T90 = append(d.T90, model.T90(s.Tau))
	}

	freqs := model.LogSpace(-2, 6, 300)
	for _, ic := range catalog.ImpedanceConfigs {
		circuit := model.Circuit{
			Rs:    catalog.SeriesResistance,
			Rct:   ic.Rct,
			T:     catalog.CPECoefficient,
			N:     catalog.CPEExponent,
			Sigma: catalog.WarburgSigma,
		}
		pts := circuit.Nyquist(freqs)
		if len(pts) == 0 {
			return nil, fmt.Errorf("nyquist %q: no points in the physical quadrant", ic.Label)
		}
		d.Nyquist = append(d.Nyquist, Nyquist{Config: ic, Points: pts})
	}

	lodRng := env.Rand.Derive(streamLOD)
	driftRng := env.Rand.Derive(streamDrift)
	rangeRng := env.Rand.Derive(streamDynamicRange)

	for _, c := range catalog.Contaminants {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		lod, err := stats.MonteCarloLOD(lodRng, stats.LODBudget(c.LODBudget), env.Config.MonteCarloDraws, 0, lodCeiling)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", c.Label, err)
		}
		logf("sensor", "%s LOD median %.3f ppb [%.3f, %.3f] from %d/%d draws",
			c.Analyte, lod.Interval.Median, lod.Interval.Lower, lod.Interval.Upper, len(lod.Samples), lod.Drawn)
		d.LOD = append(d.LOD, lod)
	}

	for range catalog.Contaminants {
		rate := driftRng.Uniform(driftRateLo, driftRateHi)
		clean := make([]float64, len(d.Days))
		for i, day := range d.Days {
			clean[i] = model.Retention(day, rate)
		}
		d.DriftRates = append(d.DriftRates, rate)
		d.Drift = append(d.Drift, driftRng.Jitter(clean, driftNoise))
	}

	for _, c := range catalog.Contaminants {
		s := c.Sensor
		cs := model.LinSpace(s.LOD, s.UpperLimit, dynamicPoints)
		signal := rangeRng.Jitter(scale(cs, s.Slope), s.Slope*s.LOD*dynamicNoiseK)
		reg, err := stats.LinRegress(cs, signal)
		if err != nil {
			return nil, fmt.Errorf("%s dynamic range: %w", c.Label, err)
		}
		d.Dynamic = append(d.Dynamic, DynamicRange{Contaminant: c, C: cs, Signal: signal, Fit: reg})
	}
	return d, nil
}

func (d *SensorData) Metrics() []summary.Metric {
	var out []summary.Metric
	for i, c := range catalog.Contaminants {
		k := key(c.Analyte)
		iv := d.LOD[i].Interval
		out = append(out,
			summary.M(k+"_t90", d.T90[i], "s"),
			summary.M(k+"_lod_median", iv.Median, "ppb"),
			summary.M(k+"_lod_ci_lower", iv.Lower, "ppb"),
			summary.M(k+"_lod_ci_upper", iv.Upper, "ppb"),
			summary.M(k+"_drift_rate", d.DriftRates[i], "1/day"),
			summary.M(k+"_retention_day30", model.Retention(30, d.DriftRates[i]), "%"),
			summary.M(k+"_dynamic_r2", d.Dynamic[i].Fit.R2, ""),
		)
	}
	return out
}

func (d *SensorData) Render(s *sink.Surface) error {
	area := body(s, "AquaNeuron — Sensor Characterisation Suite",
		"Electrical response, impedance spectroscopy, and long-term stability analysis", 20)
	g := render.Grid{Bounds: area, Rows: 2, Cols: 3, Gap: 28}
	return compose(s.Canvas,
		placed{g.Cell(0, 0), d.responsePlot()},
		placed{g.Cell(0, 1), d.nyquistPlot()},
		placed{g.Cell(0, 2), d.kineticsPlot()},
		placed{g.Cell(1, 0), d.lodPlot()},
		placed{g.Cell(1, 1), d.driftPlot()},
		placed{g.Cell(1, 2), d.dynamicPlot()},
	)
}

func (d *SensorData) responsePlot() render.Plot {
	top := 0.0
	for _, r := range d.Response {
		top = max(top, floats.Max(r))
	}
	p := render.Plot{
		Title:  "(A) Sensor Response Curves",
		XLabel: "Concentration (ppb)",
		YLabel: "ΔR/R₀ (%)",
		Bands: []render.Band{{
			X:     []float64{0, 10},
			Lower: []float64{0, 0},
			Upper: []float64{top * 1.05, top * 1.05},
			Color: render.Alpha(catalog.Green, 16),
		}},
		Legend: render.BottomRight,
	}
	for i, c := range catalog.Contaminants {
		col := hex(c.Color)
		p.Lines = append(p.Lines, render.Line{Name: c.Label, X: d.Conc, Y: d.Response[i], Color: col, Width: 2.5})
		p.VRules = append(p.VRules, render.Rule{At: c.Sensor.LOD, Color: render.Alpha(c.Color, 150), Width: 1, Dashed: true})
		p.Notes = append(p.Notes, render.Note{
			X: c.Sensor.LOD*1.15 + 4, Y: 3 + float64(i)*4,
			Text: fmt.Sprintf("LOD=%gppb", c.Sensor.LOD), Color: col, Size: 12,
		})
	}
	// legend entry for the shaded zone; it has no points of its own
	p.Lines = append(p.Lines, render.Line{Name: "WHO safe zone (<10 ppb)", Color: render.Alpha(catalog.Green, 90), Width: 6})
	return p
}

func (d *SensorData) nyquistPlot() render.Plot {
	p := render.Plot{
		Title:  "(B) EIS Nyquist Plot (Randles Circuit)",
		XLabel: "Z' (Re) / Ω",
		YLabel: "-Z'' (Im) / Ω",
		Legend: render.TopLeft,
	}
	for _, n := range d.Nyquist {
		x := make([]float64, len(n.Points))
		y := make([]float64, len(n.Points))
		for i, pt := range n.Points {
			x[i], y[i] = pt.Re, pt.NegIm
		}
		p.Lines = append(p.Lines, render.Line{
			Name: n.Config.Label, X: x, Y: y,
			Color: hex(n.Config.Color), Width: 2, Dashed: n.Config.Dashed,
		})
	}
	return p
}

func (d *SensorData) kineticsPlot() render.Plot {
	p := render.Plot{
		Title:  "(C) First-Order Response Kinetics",
		XLabel: "Time (s)",
		YLabel: "Signal Response (%)",
		XRange: &render.Range{Min: 0, Max: kineticsWindow},
		HRules: []render.Rule{{Name: "90% threshold", At: 90, Color: hex(catalog.Rule), Dashed: true}},
		Legend: render.BottomRight,
	}
	for i, c := range catalog.Contaminants {
		col := hex(c.Color)
		t90 := d.T90[i]
		p.Lines = append(p.Lines,
			render.Line{Name: fmt.Sprintf("%s (τ=%gs)", c.Label, c.Sensor.Tau), X: d.Time, Y: d.Kinetics[i], Color: col, Width: 2.5},
			render.Line{X: []float64{t90}, Y: []float64{90}, Color: col, Dots: 6},
		)
		p.Notes = append(p.Notes, render.Note{
			X: t90 + 8, Y: 84 - float64(i)*6,
			Text: fmt.Sprintf("t90=%.0fs", t90), Color: col, Size: 12,
		})
	}
	return p
}

func (d *SensorData) lodPlot() render.Plot {
	p := render.Plot{
		Title:  fmt.Sprintf("(D) Monte Carlo LOD Uncertainty (n=%d)", d.LOD[0].Drawn),
		XLabel: "LOD (ppb)",
		YLabel: "Probability Density",
		Legend: render.TopRight,
	}
	for i, c := range catalog.Contaminants {
		lod := d.LOD[i]
		h := lod.Histogram
		centres := make([]float64, len(h.Heights))
		for j := range centres {
			centres[j] = (h.Edges[j] + h.Edges[j+1]) / 2
		}
		iv := lod.Interval
		p.Bars = append(p.Bars, render.Bars{
			Name:   fmt.Sprintf("%s: %.2f ppb [CI: %.2f-%.2f]", c.Analyte, iv.Median, iv.Lower, iv.Upper),
			X:      centres,
			Width:  h.Edges[1] - h.Edges[0],
			Values: h.Heights,
			Color:  render.Alpha(c.Color, 166),
		})
		p.VRules = append(p.VRules, render.Rule{At: iv.Median, Color: hex(c.Color), Width: 2, Dashed: true})
	}
	return p
}

func (d *SensorData) driftPlot() render.Plot {
	p := render.Plot{
		Title:  "(E) Sensor Stability & Drift (30-Day Simulation)",
		XLabel: "Storage Time (days)",
		YLabel: "Signal Retention (%)",
		YRange: &render.Range{Min: 72, Max: 103},
		Bands: []render.Band{{
			X:     []float64{d.Days[0], d.Days[len(d.Days)-1]},
			Lower: []float64{retentionOK, retentionOK},
			Upper: []float64{100.5, 100.5},
			Color: render.Alpha(catalog.Green, 18),
		}},
		HRules: []render.Rule{
			{Name: "95% retention threshold", At: retentionOK, Color: hex(catalog.Green), Dashed: true},
			{Name: "80% warning threshold", At: retentionWarn, Color: hex(catalog.Orange), Dashed: true},
		},
		Legend: render.BottomLeft,
	}
	for i, c := range catalog.Contaminants {
		p.Lines = append(p.Lines, render.Line{Name: c.Label + " channel", X: d.Days, Y: d.Drift[i], Color: hex(c.Color), Width: 2.2})
	}
	return p
}

func (d *SensorData) dynamicPlot() render.Plot {
	p := render.Plot{
		Title:  "(F) Linear Dynamic Range (markers = LOD and upper limit)",
		XLabel: "Concentration (ppb)",
		YLabel: "ΔR/R₀ (a.u.)",
		Legend: render.TopLeft,
	}
	for _, dr := range d.Dynamic {
		c := dr.Contaminant
		s := c.Sensor
		col := hex(c.Color)
		p.Lines = append(p.Lines,
			render.Line{Name: fmt.Sprintf("%s (R²=%.4f)", c.Analyte, dr.Fit.R2), X: dr.C, Y: dr.Signal, Color: col, Width: 2.5},
			render.Line{X: []float64{s.LOD, s.UpperLimit}, Y: []float64{s.Slope * s.LOD, s.Slope * s.UpperLimit}, Color: col, Dots: 7},
		)
	}
	return p
}
