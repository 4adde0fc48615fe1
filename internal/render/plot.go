package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrNoData is returned when a plot has nothing to draw.
var ErrNoData = errors.New("render: no data")

// Line is a polyline, or a scatter when Dots is set and Width is zero.
// Sizes and Colors, when set, give every point its own dot radius and
// colour.
type Line struct {
	Name   string
	X, Y   []float64
	Color  drawing.Color
	Width  float64
	Dashed bool
	Dots   float64
	Sizes  []float64
	Colors []drawing.Color
}

// Band is a filled envelope between Lower and Upper.
type Band struct {
	X, Lower, Upper []float64
	Color           drawing.Color
}

// Bars is one series of bars. Without X the bars sit on the plot's
// categories, side by side with the other series; with X they are placed at
// those positions with the given Width in data units.
type Bars struct {
	Name   string
	X      []float64
	Width  float64
	Values []float64
	Errors []float64 // optional ± half-widths
	Color  drawing.Color
	Colors []drawing.Color // per-bar override of Color
	Edge   drawing.Color
	Labels string // fmt verb for value labels, empty for none
}

func (b Bars) colorAt(i int) drawing.Color {
	if i < len(b.Colors) {
		return b.Colors[i]
	}
	return b.Color
}

// Rule is a horizontal or vertical reference line across the whole plot.
type Rule struct {
	Name   string
	At     float64
	Color  drawing.Color
	Width  float64
	Dashed bool
}

// Note is a text label placed in data coordinates.
type Note struct {
	X, Y  float64
	Text  string
	Color drawing.Color
	Size  float64
	Align Align
}

// Range pins an axis; a nil *Range means fit to the data.
type Range struct{ Min, Max float64 }

// Plot is one cartesian panel rendered by go-chart.
type Plot struct {
	Title          string
	XLabel, YLabel string
	XRange, YRange *Range

	Lines []Line
	Bands []Band
	Bars  []Bars
	Notes []Note

	// Categories label the bar slots. Horizontal puts the categories on the
	// y axis, first category on top. Stacked piles the bar series instead of
	// grouping them.
	Categories []string
	Horizontal bool
	Stacked    bool

	HRules, VRules []Rule
	Legend         Corner
	FontSize       float64
}

// Corner places the legend. NoLegend hides it.
type Corner int

const (
	NoLegend Corner = iota
	TopLeft
	TopRight
	BottomRight
	BottomLeft
)

var dashed = []float64{8, 5}

func lineStyle(l Line) chart.Style {
	st := chart.Style{StrokeColor: l.Color, StrokeWidth: l.Width}
	if l.Width == 0 {
		st.StrokeWidth = chart.Disabled
	}
	if l.Dashed {
		st.StrokeDashArray = dashed
	}
	if l.Dots > 0 {
		st.DotColor = l.Color
		st.DotWidth = l.Dots
	}
	if sizes := l.Sizes; len(sizes) > 0 {
		st.DotWidthProvider = func(_, _ chart.Range, i int, _, _ float64) float64 { return sizes[i] }
	}
	if colors := l.Colors; len(colors) > 0 {
		st.DotColorProvider = func(_, _ chart.Range, i int, _, _ float64) drawing.Color { return colors[i] }
	}
	return st
}

func ruleStyle(r Rule) chart.Style {
	st := chart.Style{StrokeColor: r.Color, StrokeWidth: r.Width}
	if st.StrokeWidth == 0 {
		st.StrokeWidth = 1.5
	}
	if r.Dashed {
		st.StrokeDashArray = dashed
	}
	return st
}

// extent returns the finite data range of the given slices.
func extent(sets ...[]float64) (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, s := range sets {
		for _, v := range s {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
	}
	return lo, hi, lo <= hi
}

// slots returns the category count of the plot.
func (p Plot) slots() int {
	n := len(p.Categories)
	for _, b := range p.Bars {
		if b.X == nil {
			n = max(n, len(b.Values))
		}
	}
	return n
}

// barGeometry returns the centre and width of bar i of series s along the
// category axis, and its base along the value axis.
func (p Plot) barGeometry(s, i int, bases [][]float64) (pos, width, base float64) {
	b := p.Bars[s]
	if b.X != nil {
		return b.X[i], b.Width, bases[s][i]
	}
	n := p.slots()
	pos = float64(i)
	if p.Horizontal {
		pos = float64(n - 1 - i)
	}
	if p.Stacked {
		return pos, 0.7, bases[s][i]
	}
	grouped := 0
	for _, o := range p.Bars {
		if o.X == nil {
			grouped++
		}
	}
	width = 0.8 / float64(grouped)
	k := 0
	for j := 0; j < s; j++ {
		if p.Bars[j].X == nil {
			k++
		}
	}
	return pos + (float64(k)-float64(grouped-1)/2)*width, width, bases[s][i]
}

// barBases returns the value each bar starts from: zero, or the running top
// of the stack when Stacked.
func (p Plot) barBases() [][]float64 {
	bases := make([][]float64, len(p.Bars))
	var top []float64
	for s, b := range p.Bars {
		bases[s] = make([]float64, len(b.Values))
		if !p.Stacked || b.X != nil {
			continue
		}
		if len(top) < len(b.Values) {
			top = append(top, make([]float64, len(b.Values)-len(top))...)
		}
		for i, v := range b.Values {
			bases[s][i] = top[i]
			top[i] += v
		}
	}
	return bases
}

// extents returns the x and y data ranges, honouring pinned ranges.
func (p Plot) extents() (xr, yr Range, err error) {
	var xs, ys, cats, vals [][]float64
	for _, l := range p.Lines {
		xs, ys = append(xs, l.X), append(ys, l.Y)
	}
	for _, b := range p.Bands {
		xs, ys = append(xs, b.X), append(ys, b.Lower, b.Upper)
	}
	for _, r := range p.VRules {
		xs = append(xs, []float64{r.At})
	}
	for _, r := range p.HRules {
		ys = append(ys, []float64{r.At})
	}
	for _, n := range p.Notes {
		xs, ys = append(xs, []float64{n.X}), append(ys, []float64{n.Y})
	}

	bases := p.barBases()
	hasBars := false
	for s, b := range p.Bars {
		for i, v := range b.Values {
			pos, w, base := p.barGeometry(s, i, bases)
			hi, lo := base+v, base
			if i < len(b.Errors) {
				hi += b.Errors[i]
			}
			cats = append(cats, []float64{pos - w/2, pos + w/2})
			vals = append(vals, []float64{lo, hi})
			hasBars = true
		}
	}
	if n := p.slots(); n > 0 && hasBars {
		cats = append(cats, []float64{-0.5, float64(n) - 0.5})
	}
	if p.Horizontal {
		xs, ys = append(xs, vals...), append(ys, cats...)
	} else {
		xs, ys = append(xs, cats...), append(ys, vals...)
	}

	x0, x1, okx := extent(xs...)
	y0, y1, oky := extent(ys...)
	if !okx || !oky {
		return Range{}, Range{}, ErrNoData
	}
	// headroom for value labels on bars
	if hasBars {
		if p.Horizontal {
			x1 += (x1 - x0) * 0.08
		} else {
			y1 += (y1 - y0) * 0.08
		}
	}
	if p.XRange != nil {
		x0, x1 = p.XRange.Min, p.XRange.Max
	}
	if p.YRange != nil {
		y0, y1 = p.YRange.Min, p.YRange.Max
	}
	if x1 == x0 {
		x0, x1 = x0-1, x1+1
	}
	if y1 == y0 {
		y0, y1 = y0-1, y1+1
	}
	return Range{x0, x1}, Range{y0, y1}, nil
}

// finite returns the indices of points with finite coordinates.
func finite(x, y []float64) []int {
	var idx []int
	for i := range x {
		if i >= len(y) {
			break
		}
		if math.IsNaN(x[i]) || math.IsInf(x[i], 0) || math.IsNaN(y[i]) || math.IsInf(y[i], 0) {
			continue
		}
		idx = append(idx, i)
	}
	return idx
}

func pick[T any](xs []T, idx []int) []T {
	if len(xs) == 0 {
		return nil
	}
	out := make([]T, len(idx))
	for k, i := range idx {
		out[k] = xs[i]
	}
	return out
}

func (p Plot) fontSize() float64 {
	if p.FontSize == 0 {
		return 14
	}
	return p.FontSize
}

// categoryTicks labels the slots, with unlabelled ticks half a slot beyond
// either end so the axis keeps room for the outer bars.
func (p Plot) categoryTicks() []chart.Tick {
	n := len(p.Categories)
	ticks := []chart.Tick{{Value: -0.5}}
	for i, c := range p.Categories {
		pos := float64(i)
		if p.Horizontal {
			pos = float64(n - 1 - i)
		}
		ticks = append(ticks, chart.Tick{Value: pos, Label: Plain(c)})
	}
	return append(ticks, chart.Tick{Value: float64(n) - 0.5})
}

// padding is the space around the canvas. Horizontal bar plots reserve the
// width of their longest category label on the left, since go-chart does
// not always make room for long tick labels on the secondary axis.
func (p Plot) padding(fs float64) chart.Box {
	pad := chart.Box{Top: int(3 * fs), Left: 16, Right: 24, Bottom: 12}
	if !p.Horizontal || len(p.Categories) == 0 {
		return pad
	}
	st := Style{Size: fs - 1}
	widest := 0
	for _, c := range p.Categories {
		widest = max(widest, st.Width(c))
	}
	pad.Left += widest + 2*chart.DefaultYAxisMargin
	if p.YLabel != "" {
		pad.Left += int(fs) + chart.DefaultYAxisMargin
	}
	return pad
}

// Render draws the plot into a w×h image.
func (p Plot) Render(w, h int) (*image.RGBA, error) {
	xr, yr, err := p.extents()
	if err != nil {
		return nil, fmt.Errorf("plot %q: %w", p.Title, err)
	}
	fs := p.fontSize()

	var series []chart.Series
	for _, b := range p.Bands {
		series = append(series, bandSeries{x: b.X, lo: b.Lower, hi: b.Upper, style: chart.Style{
			FillColor:   b.Color,
			StrokeColor: b.Color,
			StrokeWidth: 0.5,
		}})
	}
	bases := p.barBases()
	for s, b := range p.Bars {
		bs := barSeries{bars: b, horizontal: p.Horizontal, fontSize: fs - 2}
		for i := range b.Values {
			pos, width, base := p.barGeometry(s, i, bases)
			bs.slots = append(bs.slots, barSlot{pos: pos, width: width, base: base})
		}
		series = append(series, bs)
	}
	for _, r := range p.HRules {
		series = append(series, chart.ContinuousSeries{
			Name: r.Name, YAxis: chart.YAxisSecondary, Style: ruleStyle(r),
			XValues: []float64{xr.Min, xr.Max}, YValues: []float64{r.At, r.At},
		})
	}
	for _, r := range p.VRules {
		series = append(series, chart.ContinuousSeries{
			Name: r.Name, YAxis: chart.YAxisSecondary, Style: ruleStyle(r),
			XValues: []float64{r.At, r.At}, YValues: []float64{yr.Min, yr.Max},
		})
	}
	for _, l := range p.Lines {
		idx := finite(l.X, l.Y)
		if len(idx) == 0 {
			continue
		}
		l.Sizes, l.Colors = pick(l.Sizes, idx), pick(l.Colors, idx)
		series = append(series, chart.ContinuousSeries{
			Name: l.Name, YAxis: chart.YAxisSecondary, Style: lineStyle(l),
			XValues: pick(l.X, idx), YValues: pick(l.Y, idx),
		})
	}
	if len(p.Notes) > 0 {
		series = append(series, noteSeries{notes: p.Notes, fontSize: fs - 1})
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("plot %q: %w", p.Title, ErrNoData)
	}

	ink := Hex("334155")
	xaxis := chart.XAxis{
		Name:           Plain(p.XLabel),
		NameStyle:      chart.Style{FontSize: fs, FontColor: ink},
		Style:          chart.Style{FontSize: fs - 1, FontColor: ink, StrokeColor: Hex("94A3B8"), StrokeWidth: 1},
		Range:          &chart.ContinuousRange{Min: xr.Min, Max: xr.Max},
		ValueFormatter: tickFormat,
		GridMajorStyle: gridStyle,
	}
	yaxis := chart.YAxis{
		Name:           Plain(p.YLabel),
		NameStyle:      chart.Style{FontSize: fs, FontColor: ink},
		Style:          chart.Style{FontSize: fs - 1, FontColor: ink, StrokeColor: Hex("94A3B8"), StrokeWidth: 1},
		Range:          &chart.ContinuousRange{Min: yr.Min, Max: yr.Max},
		ValueFormatter: tickFormat,
		GridMajorStyle: gridStyle,
	}
	// every series lives on the secondary axis so the value labels sit on
	// the left; the primary axis only needs a valid range.
	primary := chart.YAxis{Style: chart.Hidden(), Range: &chart.ContinuousRange{Min: 0, Max: 1}}
	if len(p.Categories) > 0 {
		ticks := p.categoryTicks()
		if p.Horizontal {
			yaxis.Ticks = ticks
			yaxis.GridMajorStyle = chart.Hidden()
		} else {
			xaxis.Ticks = ticks
			xaxis.GridMajorStyle = chart.Hidden()
		}
	}

	graph := chart.Chart{
		Title:      Plain(p.Title),
		TitleStyle: chart.Style{FontSize: fs + 2, FontColor: Hex("1A3F6F")},
		Width:      w,
		Height:     h,
		DPI:        72,
		Font:       chartFont(),
		Background: chart.Style{
			FillColor: Hex("F8FAFC"),
			Padding:   p.padding(fs),
		},
		Canvas:         chart.Style{FillColor: Hex("FFFFFF")},
		XAxis:          xaxis,
		YAxis:          primary,
		YAxisSecondary: yaxis,
		Series:         series,
	}

	img, err := rasterize(graph.Render, w, h)
	if err != nil {
		return nil, fmt.Errorf("plot %q: %w", p.Title, err)
	}
	if p.Legend != NoLegend {
		if err := DrawLegend(img, img.Bounds().Inset(int(3*fs)), p.Legend, p.legendEntries(), fs-1); err != nil {
			return nil, err
		}
	}
	return img, nil
}

// Draw renders the plot at the size of r and places it there.
func (p Plot) Draw(dst draw.Image, r image.Rectangle) error {
	img, err := p.Render(r.Dx(), r.Dy())
	if err != nil {
		return err
	}
	Place(dst, r, img)
	return nil
}

func (p Plot) legendEntries() []LegendEntry {
	var entries []LegendEntry
	for _, b := range p.Bars {
		if b.Name != "" {
			entries = append(entries, LegendEntry{Label: b.Name, Color: b.Color, Patch: true})
		}
	}
	for _, l := range p.Lines {
		if l.Name != "" {
			entries = append(entries, LegendEntry{Label: l.Name, Color: l.Color, Dashed: l.Dashed, Dot: l.Width == 0})
		}
	}
	for _, r := range append(append([]Rule{}, p.HRules...), p.VRules...) {
		if r.Name != "" {
			entries = append(entries, LegendEntry{Label: r.Name, Color: r.Color, Dashed: r.Dashed})
		}
	}
	return entries
}

var gridStyle = chart.Style{StrokeColor: Hex("E2E8F0"), StrokeWidth: 0.8}

func tickFormat(v any) string {
	f, ok := v.(float64)
	if !ok {
		return fmt.Sprint(v)
	}
	a := math.Abs(f)
	switch {
	case a < 1e-9:
		return "0"
	case a >= 10:
		return fmt.Sprintf("%.0f", f)
	case a >= 1:
		return fmt.Sprintf("%.1f", f)
	default:
		return fmt.Sprintf("%.2f", f)
	}
}

// rasterize runs a go-chart render into PNG bytes and decodes them back into
// an RGBA image of the requested size.
func rasterize(renderFn func(chart.RendererProvider, io.Writer) error, w, h int) (*image.RGBA, error) {
	var buf bytes.Buffer
	if err := renderFn(chart.PNG, &buf); err != nil {
		return nil, err
	}
	decoded, err := png.Decode(&buf)
	if err != nil {
		return nil, fmt.Errorf("decode chart: %w", err)
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), decoded, decoded.Bounds().Min, draw.Src)
	return img, nil
}
