package render

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Grid divides Bounds into Rows×Cols equal cells separated by Gap pixels.
type Grid struct {
	Bounds     image.Rectangle
	Rows, Cols int
	Gap        int
}

// Cell returns the rectangle of one cell.
func (g Grid) Cell(row, col int) image.Rectangle {
	return g.Span(row, col, row+1, col+1)
}

// Span returns the rectangle covering rows [r0, r1) and columns [c0, c1).
func (g Grid) Span(r0, c0, r1, c1 int) image.Rectangle {
	cw := (g.Bounds.Dx() - g.Gap*(g.Cols-1)) / g.Cols
	rh := (g.Bounds.Dy() - g.Gap*(g.Rows-1)) / g.Rows
	return image.Rect(
		g.Bounds.Min.X+c0*(cw+g.Gap),
		g.Bounds.Min.Y+r0*(rh+g.Gap),
		g.Bounds.Min.X+c1*(cw+g.Gap)-g.Gap,
		g.Bounds.Min.Y+r1*(rh+g.Gap)-g.Gap,
	)
}

// Place copies src into r of dst, clipped to r.
func Place(dst draw.Image, r image.Rectangle, src image.Image) {
	draw.Draw(dst, r, src, src.Bounds().Min, draw.Src)
}

// Header draws the figure title and subtitle centred at the top of dst and
// returns the y coordinate below them.
func Header(dst draw.Image, title, subtitle string) int {
	b := dst.Bounds()
	cx := b.Min.X + b.Dx()/2
	y := b.Min.Y + 52
	Text(dst, cx, y, title, Style{Color: Hex("1A3F6F"), Weight: Bold, Size: 34, Align: Center})
	if subtitle != "" {
		y += 36
		Text(dst, cx, y, subtitle, Style{Color: Hex("64748B"), Weight: Italic, Size: 20, Align: Center})
	}
	y += 18
	FillRect(dst, image.Rect(b.Min.X+60, y, b.Max.X-60, y+2), Hex("CBD5E1"))
	return y + 14
}

// Footer draws a one-line note centred at the bottom of dst.
func Footer(dst draw.Image, note string) {
	b := dst.Bounds()
	Text(dst, b.Min.X+b.Dx()/2, b.Max.Y-18, note, Style{Color: Hex("64748B"), Weight: Italic, Size: 16, Align: Center})
}

// LegendEntry is one row of a legend box.
type LegendEntry struct {
	Label  string
	Color  drawing.Color
	Dashed bool
	Dot    bool
	Patch  bool
}

// DrawLegend draws entries in a boxed list anchored to corner of area.
func DrawLegend(img *image.RGBA, area image.Rectangle, corner Corner, entries []LegendEntry, fs float64) error {
	if len(entries) == 0 || corner == NoLegend {
		return nil
	}
	st := Style{Color: Hex("1E293B"), Size: fs}
	row := int(fs * 1.6)
	swatch := int(fs * 2.2)
	pad := int(fs * 0.6)
	w := 0
	for _, e := range entries {
		w = max(w, st.Width(e.Label))
	}
	bw := 3*pad + swatch + w
	bh := 2*pad + row*len(entries)

	var x, y int
	switch corner {
	case TopLeft:
		x, y = area.Min.X, area.Min.Y
	case TopRight:
		x, y = area.Max.X-bw, area.Min.Y
	case BottomRight:
		x, y = area.Max.X-bw, area.Max.Y-bh
	default:
		x, y = area.Min.X, area.Max.Y-bh
	}
	box := image.Rect(x, y, x+bw, y+bh)
	if err := RoundedRect(img, box, fs*0.4, Pen{Stroke: Hex("CBD5E1"), Fill: Alpha("FFFFFF", 235), Width: 1}); err != nil {
		return fmt.Errorf("legend: %w", err)
	}

	for i, e := range entries {
		cy := y + pad + row*i + row/2
		sx := x + pad
		var err error
		switch {
		case e.Patch:
			FillRect(img, image.Rect(sx, cy-row/3, sx+swatch, cy+row/3), e.Color)
		case e.Dot:
			err = Circle(img, float64(sx+swatch/2), float64(cy), fs*0.35, Pen{Fill: e.Color})
		default:
			p := Pen{Stroke: e.Color, Width: 2.5}
			if e.Dashed {
				p.Dash = dashed
			}
			err = Segment(img, float64(sx), float64(cy), float64(sx+swatch), float64(cy), p)
		}
		if err != nil {
			return fmt.Errorf("legend: %w", err)
		}
		Text(img, sx+swatch+pad, cy+int(fs*0.35), e.Label, st)
	}
	return nil
}

// Colorbar draws a vertical gradient of m for values lo (bottom) to hi
// (top) inside r, with labelled ticks to its right and a title above.
func Colorbar(dst draw.Image, r image.Rectangle, m Colormap, lo, hi float64, ticks []float64, format, title string) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		t := 1 - float64(y-r.Min.Y)/float64(max(r.Dy()-1, 1))
		FillRect(dst, image.Rect(r.Min.X, y, r.Max.X, y+1), m.At(t))
	}
	edge := Hex("94A3B8")
	FillRect(dst, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1), edge)
	FillRect(dst, image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y), edge)
	FillRect(dst, image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y), edge)
	FillRect(dst, image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y), edge)

	st := Style{Color: Hex("334155"), Size: 14}
	for _, v := range ticks {
		if hi == lo || v < lo || v > hi {
			continue
		}
		y := r.Max.Y - int((v-lo)/(hi-lo)*float64(r.Dy()))
		FillRect(dst, image.Rect(r.Max.X, y, r.Max.X+5, y+1), edge)
		Text(dst, r.Max.X+8, y+5, fmt.Sprintf(format, v), st)
	}
	if title != "" {
		Text(dst, r.Min.X+r.Dx()/2, r.Min.Y-10, title, Style{Color: Hex("334155"), Size: 14, Weight: Bold, Align: Center})
	}
}
