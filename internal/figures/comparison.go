package figures

import (
	"context"
	"fmt"
	"image"
	"strconv"

	"github.com/aquaneuron/aquaneuron-sim/internal/catalog"
	"github.com/aquaneuron/aquaneuron-sim/internal/render"
	"github.com/aquaneuron/aquaneuron-sim/internal/sink"
	"github.com/aquaneuron/aquaneuron-sim/internal/summary"
)

// ComparisonData backs figure 5: the literal method comparison table.
type ComparisonData struct {
	Methods []catalog.Method
	Rows    []catalog.Metric
}

func buildComparison(_ context.Context, _ Env) (Data, error) {
	for _, m := range catalog.Metrics {
		if len(m.Values) != len(catalog.Methods) {
			return nil, fmt.Errorf("metric %q has %d values for %d methods", m.Name, len(m.Values), len(catalog.Methods))
		}
	}
	return &ComparisonData{Methods: catalog.Methods, Rows: catalog.Metrics}, nil
}

// Advantage is how many times better this work is than the best field
// method on a metric where lower is better.
func (d *ComparisonData) Advantage(metric int) float64 {
	vals := d.Rows[metric].Values
	ours := vals[len(vals)-1]
	best := 0.0
	for i, m := range d.Methods[:len(d.Methods)-1] {
		if m.Kind != catalog.KindField {
			continue
		}
		if best == 0 || vals[i] < best {
			best = vals[i]
		}
	}
	if ours == 0 {
		return 0
	}
	return best / ours
}

func (d *ComparisonData) Metrics() []summary.Metric {
	var out []summary.Metric
	for i, m := range d.Rows {
		out = append(out, summary.M("aquaneuron "+m.Name, m.Values[len(m.Values)-1], ""))
		// the first three dimensions are lower-is-better
		if i < 3 {
			out = append(out, summary.M("field_advantage "+m.Name, d.Advantage(i), "x"))
		}
	}
	return out
}

func (d *ComparisonData) Render(s *sink.Surface) error {
	area := body(s, "AquaNeuron vs Existing Detection Methods — Comprehensive Comparison", "", 70)
	g := render.Grid{Bounds: area, Rows: 2, Cols: 3, Gap: 28}

	var items []placed
	for i := range d.Rows {
		items = append(items, placed{g.Cell(i/3, i%3), d.metricPlot(i)})
	}
	if err := compose(s.Canvas, items...); err != nil {
		return err
	}
	d.legend(s, area.Max.Y+16)
	return nil
}

func (d *ComparisonData) metricPlot(i int) render.Plot {
	m := d.Rows[i]
	ours := len(d.Methods) - 1
	bars := render.Bars{Edge: hex(catalog.White)}
	p := render.Plot{
		Title:      m.Name,
		XLabel:     m.Name,
		Horizontal: true,
		FontSize:   13,
	}
	top := 0.0
	for j, meth := range d.Methods {
		p.Categories = append(p.Categories, meth.Name)
		bars.Values = append(bars.Values, m.Values[j])
		bars.Colors = append(bars.Colors, hex(meth.Color))
		top = max(top, m.Values[j])
	}
	if top == 0 {
		top = 1
	}
	for j, v := range m.Values {
		col := hex(catalog.Rule)
		if j == ours {
			col = hex(catalog.Green)
		}
		p.Notes = append(p.Notes, render.Note{
			X: v + top*0.02, Y: float64(len(m.Values)-1-j) - 0.1,
			Text: strconv.FormatFloat(v, 'g', -1, 64), Color: col, Size: 12,
		})
	}
	p.XRange = &render.Range{Min: 0, Max: top * 1.2}
	p.Bars = []render.Bars{bars}
	return p
}

// legend draws the method-kind key centred below the panels.
func (d *ComparisonData) legend(s *sink.Surface, y int) {
	kinds := []struct{ label, color string }{
		{catalog.KindOurs, catalog.Green},
		{catalog.KindField, catalog.SkyBlue},
		{catalog.KindLab, catalog.Silver},
	}
	st := render.Style{Color: hex(catalog.Body), Size: 18}
	total := 0
	for _, k := range kinds {
		total += 40 + st.Width(k.label) + 40
	}
	b := s.Bounds()
	x := b.Min.X + (b.Dx()-total)/2
	for _, k := range kinds {
		render.FillRect(s.Canvas, image.Rect(x, y, x+28, y+18), hex(k.color))
		render.Text(s.Canvas, x+40, y+16, k.label, st)
		x += 40 + st.Width(k.label) + 40
	}
}
