package figures

import (
	"context"
	"fmt"
	"slices"

	"github.com/aquaneuron/aquaneuron-sim/internal/apperr"
	"github.com/aquaneuron/aquaneuron-sim/internal/catalog"
	"github.com/aquaneuron/aquaneuron-sim/internal/render"
	"github.com/aquaneuron/aquaneuron-sim/internal/sink"
	"github.com/aquaneuron/aquaneuron-sim/internal/summary"
)

// SelectivityData backs figure 6.
type SelectivityData struct {
	Analytes []string
	Channels []string
	Matrix   [][]float64

	Interferents []string
	// Factors[ch][k] is 1 - cross-reactivity of channel ch to interferent k.
	Factors [][]float64
}

// SelectivityFactors derives 1 - cross-reactivity for every channel over
// the interferent columns of the matrix.
func SelectivityFactors(analytes []string, matrix [][]float64, interferents []string) ([][]float64, error) {
	cols := make([]int, len(interferents))
	for k, name := range interferents {
		j := slices.Index(analytes, name)
		if j < 0 {
			return nil, apperr.Table("selectivity", "interferent %q is not a tested analyte", name)
		}
		cols[k] = j
	}
	out := make([][]float64, len(matrix))
	for ch, row := range matrix {
		if len(row) != len(analytes) {
			return nil, apperr.Table("selectivity", "channel %d has %d responses for %d analytes", ch, len(row), len(analytes))
		}
		out[ch] = make([]float64, len(cols))
		for k, j := range cols {
			out[ch][k] = 1 - row[j]
		}
	}
	return out, nil
}

func buildSelectivity(_ context.Context, _ Env) (Data, error) {
	factors, err := SelectivityFactors(catalog.SelectivityAnalytes, catalog.CrossReactivity, catalog.Interferents)
	if err != nil {
		return nil, err
	}
	return &SelectivityData{
		Analytes:     catalog.SelectivityAnalytes,
		Channels:     catalog.SelectivityChannels,
		Matrix:       catalog.CrossReactivity,
		Interferents: catalog.Interferents,
		Factors:      factors,
	}, nil
}

// Worst returns the lowest selectivity factor of channel ch and the
// interferent it belongs to.
func (d *SelectivityData) Worst(ch int) (float64, string) {
	f := d.Factors[ch]
	k := 0
	for i, v := range f {
		if v < f[k] {
			k = i
		}
	}
	return f[k], d.Interferents[k]
}

func (d *SelectivityData) Metrics() []summary.Metric {
	var out []summary.Metric
	for ch, name := range d.Channels {
		v, _ := d.Worst(ch)
		below := 0
		for _, f := range d.Factors[ch] {
			if f < catalog.SelectivityThreshold {
				below++
			}
		}
		out = append(out,
			summary.M(name+"_min_selectivity", v, ""),
			summary.M(name+"_interferents_below_threshold", float64(below), ""),
		)
	}
	return out
}

func (d *SelectivityData) Render(s *sink.Surface) error {
	area := body(s, "Aptamer Selectivity — Cross-Reactivity Analysis", "", 16)
	g := render.Grid{Bounds: area, Rows: 1, Cols: 2, Gap: 36}
	return compose(s.Canvas,
		placed{g.Cell(0, 0), d.matrixMap()},
		placed{g.Cell(0, 1), d.factorPlot()},
	)
}

func (d *SelectivityData) matrixMap() render.Heatmap {
	return render.Heatmap{
		Title:     fmt.Sprintf("(A) Cross-Reactivity Matrix (%d analytes, %d channels)", len(d.Analytes), len(d.Channels)),
		XLabel:    "Tested Analyte",
		YLabel:    "Aptamer Channel",
		Values:    d.Matrix,
		Min:       0,
		Max:       1,
		Map:       render.SelectivityMap,
		RowLabels: d.Channels,
		ColLabels: d.Analytes,
		BarTicks:  []float64{0, 0.2, 0.4, 0.6, 0.8, 1},
		BarFormat: "%.1f",
		BarLabel:  "Response",
	}
}

func (d *SelectivityData) factorPlot() render.Plot {
	p := render.Plot{
		Title:      "(B) Per-Interferent Selectivity Factors (higher = more selective)",
		YLabel:     "Selectivity Factor (1 - cross-reactivity)",
		Categories: d.Interferents,
		YRange:     &render.Range{Min: 0.7, Max: 1.02},
		HRules: []render.Rule{{
			Name: fmt.Sprintf("%.0f%% threshold", catalog.SelectivityThreshold*100),
			At:   catalog.SelectivityThreshold, Color: render.Alpha(catalog.Red, 153), Dashed: true,
		}},
		Legend: render.BottomLeft,
	}
	for ch, name := range d.Channels {
		p.Bars = append(p.Bars, render.Bars{
			Name:   name,
			Values: d.Factors[ch],
			Color:  render.Alpha(catalog.SelectivityColors[ch], 217),
			Edge:   hex(catalog.White),
		})
	}
	return p
}
