package figures

import (
	"context"
	"fmt"
	"image"

	"github.com/aquaneuron/aquaneuron-sim/internal/apperr"
	"github.com/aquaneuron/aquaneuron-sim/internal/catalog"
	"github.com/aquaneuron/aquaneuron-sim/internal/render"
	"github.com/aquaneuron/aquaneuron-sim/internal/sink"
	"github.com/aquaneuron/aquaneuron-sim/internal/summary"
)

// Board size of the diagram in layout units.
const (
	boardW = 22.0
	boardH = 10.0
)

// ArchitectureData backs figure 7.
type ArchitectureData struct {
	Blocks    []catalog.Block
	Arrows    []catalog.Arrow
	Power     catalog.Block
	Headlines []catalog.Headline
}

func buildArchitecture(_ context.Context, _ Env) (Data, error) {
	if len(catalog.ArchitectureBlocks) == 0 {
		return nil, apperr.Table("architecture", "no blocks")
	}
	return &ArchitectureData{
		Blocks:    catalog.ArchitectureBlocks,
		Arrows:    catalog.ArchitectureArrows,
		Power:     catalog.PowerSubsystem,
		Headlines: catalog.HeadlineMetrics,
	}, nil
}

func (d *ArchitectureData) Metrics() []summary.Metric {
	return []summary.Metric{
		summary.M("stages", float64(len(d.Blocks)), ""),
		summary.M("connections", float64(len(d.Arrows)), ""),
		summary.M("headline_tiles", float64(len(d.Headlines)), ""),
	}
}

// board maps layout units onto pixels, y pointing up.
type board struct {
	r      image.Rectangle
	sx, sy float64
}

func newBoard(r image.Rectangle) board {
	return board{r: r, sx: float64(r.Dx()) / boardW, sy: float64(r.Dy()) / boardH}
}

func (b board) pt(x, y float64) (float64, float64) {
	return float64(b.r.Min.X) + x*b.sx, float64(b.r.Max.Y) - y*b.sy
}

func (b board) rect(x, y, w, h float64) image.Rectangle {
	x0, y1 := b.pt(x, y)
	x1, y0 := b.pt(x+w, y+h)
	return image.Rect(int(x0), int(y0), int(x1), int(y1))
}

func (d *ArchitectureData) Render(s *sink.Surface) error {
	img := s.Canvas
	render.Text(img, s.Bounds().Dx()/2, 56, "AquaNeuron — Complete System Architecture & Data Flow",
		render.Style{Color: hex(catalog.Navy), Weight: render.Bold, Size: 34, Align: render.Center})
	b := newBoard(image.Rect(20, 50, s.Bounds().Dx()-20, s.Bounds().Dy()-10))

	for i, h := range d.Headlines {
		if err := drawHeadline(img, b, i, h); err != nil {
			return err
		}
	}
	for _, blk := range d.Blocks {
		if err := drawBlock(img, b, blk); err != nil {
			return err
		}
	}
	if err := drawPower(img, b, d.Power); err != nil {
		return err
	}
	for _, a := range d.Arrows {
		x0, y0 := b.pt(a.X1, a.Y1)
		x1, y1 := b.pt(a.X2, a.Y2)
		pen := render.Pen{Stroke: hex(a.Color), Width: 3}
		if a.Dashed {
			pen.Width = 2
			pen.Dash = []float64{8, 5}
		}
		if err := render.Arrow(img, x0, y0, x1, y1, pen); err != nil {
			return fmt.Errorf("arrow: %w", err)
		}
	}
	return nil
}

func drawBlock(img *image.RGBA, b board, blk catalog.Block) error {
	col := hex(blk.Color)
	r := b.rect(blk.X, blk.Y, blk.W, blk.H)
	radius := 0.12 * b.sy

	shadow := r.Add(image.Pt(int(0.07*b.sx), int(0.07*b.sy)))
	if err := render.RoundedRect(img, shadow, radius, render.Pen{Fill: render.Alpha(catalog.Shadow, 115)}); err != nil {
		return err
	}
	if err := render.RoundedRect(img, r, radius, render.Pen{Fill: hex(catalog.White), Stroke: col, Width: 2.5}); err != nil {
		return err
	}
	strip := image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+int(0.72*b.sy))
	if err := render.RoundedRect(img, strip, radius, render.Pen{Fill: col}); err != nil {
		return err
	}

	title := render.Style{Color: hex(catalog.White), Weight: render.Bold, Size: 19, Align: render.Center}
	lh := int(title.Size * 1.15)
	ty := (strip.Min.Y+strip.Max.Y)/2 - (len(blk.Title)-1)*lh/2
	for i, t := range blk.Title {
		render.Middle(img, r.Min.X+r.Dx()/2, ty+i*lh, t, title)
	}

	detail := render.Style{Color: hex(catalog.Navy), Size: 16}
	step := (float64(r.Max.Y-strip.Max.Y) - 0.1*b.sy) / float64(len(blk.Details))
	for i, line := range blk.Details {
		y := float64(strip.Max.Y) + (float64(i)+0.5)*step
		render.Text(img, r.Min.X+int(0.18*b.sx), int(y)+6, line, detail)
	}
	return nil
}

func drawPower(img *image.RGBA, b board, p catalog.Block) error {
	r := b.rect(p.X, p.Y, p.W, p.H)
	if err := render.RoundedRect(img, r, 0.1*b.sy, render.Pen{Fill: hex(catalog.Cream), Stroke: hex(p.Color), Width: 1.8}); err != nil {
		return err
	}
	tx, ty := b.pt(p.X+p.W/2, p.Y+p.H-0.3)
	for _, t := range p.Title {
		render.Middle(img, int(tx), int(ty), t, render.Style{Color: hex(p.Color), Weight: render.Bold, Size: 19})
	}
	for i, line := range p.Details {
		x, y := b.pt(p.X+0.3, p.Y+p.H-0.8-float64(i)*0.4)
		render.Text(img, int(x), int(y)+6, "• "+line, render.Style{Color: hex(catalog.Umber), Size: 16})
	}
	return nil
}

func drawHeadline(img *image.RGBA, b board, i int, h catalog.Headline) error {
	xm := 0.6 + float64(i)*3.5
	r := b.rect(xm, 8.3, 3.0, 1.3)
	fill := render.Alpha(h.Color, 235)
	if err := render.RoundedRect(img, r, 0.1*b.sy, render.Pen{Fill: fill}); err != nil {
		return err
	}
	cx, vy := b.pt(xm+1.5, 9.1)
	_, my := b.pt(xm+1.5, 8.55)
	render.Middle(img, int(cx), int(vy), h.Value, render.Style{Color: hex(catalog.White), Weight: render.Bold, Size: 26})
	render.Middle(img, int(cx), int(my), h.Metric, render.Style{Color: render.Alpha(catalog.White, 230), Size: 17})
	return nil
}
