package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Pen describes how a shape is stroked and filled. A zero Fill or a zero
// Width disables that part.
type Pen struct {
	Stroke drawing.Color
	Fill   drawing.Color
	Width  float64
	Dash   []float64
}

func newContext(dst *image.RGBA, p Pen) (*drawing.RasterGraphicContext, error) {
	gc, err := drawing.NewRasterGraphicContext(dst)
	if err != nil {
		return nil, err
	}
	gc.SetStrokeColor(p.Stroke)
	gc.SetFillColor(p.Fill)
	gc.SetLineWidth(p.Width)
	if len(p.Dash) > 0 {
		gc.SetLineDash(p.Dash, 0)
	}
	return gc, nil
}

func paint(gc *drawing.RasterGraphicContext, p Pen) {
	switch {
	case !p.Fill.IsZero() && p.Width > 0:
		gc.FillStroke()
	case !p.Fill.IsZero():
		gc.Fill()
	case p.Width > 0:
		gc.Stroke()
	}
}

// FillRect paints r with c, blending when c is translucent.
func FillRect(dst draw.Image, r image.Rectangle, c color.Color) {
	draw.Draw(dst, r, image.NewUniform(c), image.Point{}, draw.Over)
}

// Segment draws a straight line between two points.
func Segment(dst *image.RGBA, x0, y0, x1, y1 float64, p Pen) error {
	gc, err := newContext(dst, p)
	if err != nil {
		return err
	}
	gc.MoveTo(x0, y0)
	gc.LineTo(x1, y1)
	gc.Stroke()
	return nil
}

// Arrow draws a segment from (x0, y0) with a filled head at (x1, y1).
func Arrow(dst *image.RGBA, x0, y0, x1, y1 float64, p Pen) error {
	angle := math.Atan2(y1-y0, x1-x0)
	head := 4*p.Width + 6
	// stop the shaft at the base of the head so a thick line stays hidden
	bx := x1 - head*0.8*math.Cos(angle)
	by := y1 - head*0.8*math.Sin(angle)
	if err := Segment(dst, x0, y0, bx, by, p); err != nil {
		return err
	}

	gc, err := newContext(dst, Pen{Fill: p.Stroke})
	if err != nil {
		return err
	}
	const spread = 0.45
	gc.MoveTo(x1, y1)
	gc.LineTo(x1-head*math.Cos(angle-spread), y1-head*math.Sin(angle-spread))
	gc.LineTo(x1-head*math.Cos(angle+spread), y1-head*math.Sin(angle+spread))
	gc.Close()
	gc.Fill()
	return nil
}

// RoundedRect draws r with corners of the given radius.
func RoundedRect(dst *image.RGBA, r image.Rectangle, radius float64, p Pen) error {
	gc, err := newContext(dst, p)
	if err != nil {
		return err
	}
	x0, y0 := float64(r.Min.X), float64(r.Min.Y)
	x1, y1 := float64(r.Max.X), float64(r.Max.Y)
	radius = math.Min(radius, math.Min(x1-x0, y1-y0)/2)

	gc.MoveTo(x0+radius, y0)
	gc.LineTo(x1-radius, y0)
	gc.ArcTo(x1-radius, y0+radius, radius, radius, -math.Pi/2, math.Pi/2)
	gc.LineTo(x1, y1-radius)
	gc.ArcTo(x1-radius, y1-radius, radius, radius, 0, math.Pi/2)
	gc.LineTo(x0+radius, y1)
	gc.ArcTo(x0+radius, y1-radius, radius, radius, math.Pi/2, math.Pi/2)
	gc.LineTo(x0, y0+radius)
	gc.ArcTo(x0+radius, y0+radius, radius, radius, math.Pi, math.Pi/2)
	gc.Close()
	paint(gc, p)
	return nil
}

// Circle draws a disc centred on (cx, cy).
func Circle(dst *image.RGBA, cx, cy, radius float64, p Pen) error {
	gc, err := newContext(dst, p)
	if err != nil {
		return err
	}
	gc.ArcTo(cx, cy, radius, radius, 0, 2*math.Pi)
	gc.Close()
	paint(gc, p)
	return nil
}
