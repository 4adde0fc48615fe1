package figures

import (
	"fmt"
	"image"
	"image/draw"
	"strings"

	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/aquaneuron/aquaneuron-sim/internal/catalog"
	"github.com/aquaneuron/aquaneuron-sim/internal/render"
	"github.com/aquaneuron/aquaneuron-sim/internal/sink"
)

func hex(s string) drawing.Color { return render.Hex(s) }

// drawer is anything that paints itself into a rectangle: plots and
// heat-maps.
type drawer interface {
	Draw(dst draw.Image, r image.Rectangle) error
}

type placed struct {
	r image.Rectangle
	d drawer
}

func compose(dst draw.Image, items ...placed) error {
	for _, it := range items {
		if err := it.d.Draw(dst, it.r); err != nil {
			return err
		}
	}
	return nil
}

// body draws the header and returns the area left for panels.
func body(s *sink.Surface, title, subtitle string, bottom int) image.Rectangle {
	top := render.Header(s.Canvas, title, subtitle)
	b := s.Bounds()
	return image.Rect(b.Min.X+30, top, b.Max.X-30, b.Max.Y-bottom)
}

// key lowercases an analyte for metric names.
func key(a catalog.Analyte) string { return strings.ToLower(string(a)) }

func scale(xs []float64, k float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = x * k
	}
	return out
}

func ppb(v float64) string { return fmt.Sprintf("%g ppb", v) }

// barred draws a plot with a vertical colour bar along its right edge.
type barred struct {
	plot   render.Plot
	cmap   render.Colormap
	lo, hi float64
	ticks  []float64
	title  string
}

func (b barred) Draw(dst draw.Image, r image.Rectangle) error {
	const strip = 90
	if err := b.plot.Draw(dst, image.Rect(r.Min.X, r.Min.Y, r.Max.X-strip, r.Max.Y)); err != nil {
		return err
	}
	render.FillRect(dst, image.Rect(r.Max.X-strip, r.Min.Y, r.Max.X, r.Max.Y), hex(catalog.Paper))
	x := r.Max.X - strip + 14
	render.Colorbar(dst, image.Rect(x, r.Min.Y+r.Dy()/5, x+18, r.Max.Y-r.Dy()/5), b.cmap, b.lo, b.hi, b.ticks, "%.0f", b.title)
	return nil
}
