package render

import (
	"fmt"
	"math"

	"github.com/wcharczuk/go-chart/v2"
)

// The series below plug into go-chart's Series interface so that bands,
// bars and notes share the chart's ranges and canvas box with the line
// series. All of them sit on the secondary y axis, see Plot.Render.

// bandSeries fills between two curves with go-chart's bounded-series
// drawing.
type bandSeries struct {
	x, lo, hi []float64
	style     chart.Style
}

func (b bandSeries) GetName() string { return "" }

func (b bandSeries) GetYAxis() chart.YAxisType { return chart.YAxisSecondary }

func (b bandSeries) GetStyle() chart.Style { return b.style }

func (b bandSeries) Len() int { return len(b.x) }

func (b bandSeries) GetBoundedValues(i int) (float64, float64, float64) {
	return b.x[i], b.hi[i], b.lo[i]
}

func (b bandSeries) Validate() error {
	if len(b.x) == 0 || len(b.x) != len(b.lo) || len(b.x) != len(b.hi) {
		return fmt.Errorf("band series: %d x, %d lower, %d upper", len(b.x), len(b.lo), len(b.hi))
	}
	return nil
}

func (b bandSeries) Render(r chart.Renderer, box chart.Box, xr, yr chart.Range, _ chart.Style) {
	chart.Draw.BoundedSeries(r, box, xr, yr, b.style, b)
}

type barSlot struct {
	pos, width, base float64
}

// barSeries draws filled rectangles, optional error whiskers and value
// labels.
type barSeries struct {
	bars       Bars
	slots      []barSlot
	horizontal bool
	fontSize   float64
}

func (b barSeries) GetName() string { return b.bars.Name }

func (b barSeries) GetYAxis() chart.YAxisType { return chart.YAxisSecondary }

func (b barSeries) GetStyle() chart.Style { return chart.Style{FillColor: b.bars.Color} }

func (b barSeries) Validate() error {
	if len(b.slots) != len(b.bars.Values) {
		return fmt.Errorf("bar series %q: %d slots for %d values", b.bars.Name, len(b.slots), len(b.bars.Values))
	}
	return nil
}

func (b barSeries) Render(r chart.Renderer, box chart.Box, xr, yr chart.Range, defaults chart.Style) {
	values := yr
	if b.horizontal {
		values = xr
	}
	lo, hi := values.GetMin(), values.GetMax()
	clamp := func(v float64) float64 { return math.Max(lo, math.Min(hi, v)) }

	// point maps (category position, value) to pixels.
	point := func(c, v float64) (int, int) {
		if b.horizontal {
			return box.Left + xr.Translate(v), box.Bottom - yr.Translate(c)
		}
		return box.Left + xr.Translate(c), box.Bottom - yr.Translate(v)
	}

	text := chart.Style{Font: defaults.Font, FontSize: b.fontSize, FontColor: Hex("1E293B")}
	whisker := chart.Style{StrokeColor: Hex("1E293B"), StrokeWidth: 1.5}

	for i, v := range b.bars.Values {
		if math.IsNaN(v) {
			continue
		}
		s := b.slots[i]
		x0, y0 := point(s.pos-s.width/2, clamp(s.base))
		x1, y1 := point(s.pos+s.width/2, clamp(s.base+v))
		fill := b.bars.colorAt(i)
		edge := b.bars.Edge
		if edge.IsZero() {
			edge = fill
		}
		chart.Draw.Box(r, chart.Box{
			Left: min(x0, x1), Right: max(x0, x1),
			Top: min(y0, y1), Bottom: max(y0, y1),
		}, chart.Style{FillColor: fill, StrokeColor: edge, StrokeWidth: 1})

		top := s.base + v
		if i < len(b.bars.Errors) && b.bars.Errors[i] > 0 {
			e := b.bars.Errors[i]
			capW := s.width / 4
			whisker.GetStrokeOptions().WriteToRenderer(r)
			ax, ay := point(s.pos, clamp(top-e))
			bx, by := point(s.pos, clamp(top+e))
			r.MoveTo(ax, ay)
			r.LineTo(bx, by)
			for _, end := range []float64{top - e, top + e} {
				cx0, cy0 := point(s.pos-capW, clamp(end))
				cx1, cy1 := point(s.pos+capW, clamp(end))
				r.MoveTo(cx0, cy0)
				r.LineTo(cx1, cy1)
			}
			r.Stroke()
			r.ResetStyle()
			if v >= 0 {
				top += e
			}
		}

		if b.bars.Labels == "" {
			continue
		}
		label := Plain(fmt.Sprintf(b.bars.Labels, v))
		tb := chart.Draw.MeasureText(r, label, text)
		tx, ty := point(s.pos, clamp(top))
		if b.horizontal {
			tx += 5
			ty += tb.Height() / 2
		} else {
			tx -= tb.Width() / 2
			ty -= 5
		}
		chart.Draw.Text(r, label, tx, ty, text)
	}
}

// noteSeries writes free text at data coordinates.
type noteSeries struct {
	notes    []Note
	fontSize float64
}

func (n noteSeries) GetName() string { return "" }

func (n noteSeries) GetYAxis() chart.YAxisType { return chart.YAxisSecondary }

func (n noteSeries) GetStyle() chart.Style { return chart.Style{} }

func (n noteSeries) Validate() error { return nil }

func (n noteSeries) Render(r chart.Renderer, box chart.Box, xr, yr chart.Range, defaults chart.Style) {
	for _, note := range n.notes {
		size := note.Size
		if size == 0 {
			size = n.fontSize
		}
		c := note.Color
		if c.IsZero() {
			c = Hex("1E293B")
		}
		st := chart.Style{Font: defaults.Font, FontSize: size, FontColor: c}
		label := Plain(note.Text)
		tb := chart.Draw.MeasureText(r, label, st)
		x := box.Left + xr.Translate(note.X)
		y := box.Bottom - yr.Translate(note.Y)
		switch note.Align {
		case Center:
			x -= tb.Width() / 2
		case Right:
			x -= tb.Width()
		}
		chart.Draw.Text(r, label, x, y, st)
	}
}
