package render

import (
	"image/color"
	"math"

	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Hex parses a palette entry such as "1A3F6F" (a leading '#' is accepted).
func Hex(s string) drawing.Color {
	return drawing.ColorFromHex(s)
}

// Alpha returns the palette entry s with opacity a.
func Alpha(s string, a uint8) drawing.Color {
	return Hex(s).WithAlpha(a)
}

// Colormap is a piecewise-linear gradient between evenly spaced stops.
type Colormap []drawing.Color

// NewColormap builds a gradient from palette entries.
func NewColormap(stops ...string) Colormap {
	m := make(Colormap, len(stops))
	for i, s := range stops {
		m[i] = Hex(s)
	}
	return m
}

// At maps t in [0, 1] onto the gradient; t is clamped.
func (m Colormap) At(t float64) drawing.Color {
	switch {
	case len(m) == 0:
		return drawing.ColorBlack
	case len(m) == 1 || math.IsNaN(t) || t <= 0:
		return m[0]
	case t >= 1:
		return m[len(m)-1]
	}
	pos := t * float64(len(m)-1)
	i := int(pos)
	f := pos - float64(i)
	a, b := m[i], m[i+1]
	lerp := func(x, y uint8) uint8 { return uint8(math.Round(float64(x) + f*(float64(y)-float64(x)))) }
	return drawing.Color{R: lerp(a.R, b.R), G: lerp(a.G, b.G), B: lerp(a.B, b.B), A: lerp(a.A, b.A)}
}

// Norm maps v linearly from [lo, hi] onto [0, 1] and reads the gradient.
func (m Colormap) Norm(v, lo, hi float64) drawing.Color {
	if hi == lo {
		return m.At(0)
	}
	return m.At((v - lo) / (hi - lo))
}

// Luminance is the relative brightness of c in [0, 1], used to pick a
// readable text colour over a filled cell.
func Luminance(c color.Color) float64 {
	r, g, b, _ := c.RGBA()
	return (0.2126*float64(r) + 0.7152*float64(g) + 0.0722*float64(b)) / 0xffff
}

// Gradients used by the heat-map and risk panels.
var (
	RiskMap        = NewColormap("DCFCE7", "FEF3C7", "FEE2E2", "991B1B")
	RecallMap      = NewColormap("EFF6FF", "1E3A8A")
	SelectivityMap = NewColormap("14532D", "86EFAC", "FEF9C3", "FCA5A5", "7F1D1D")
	TrafficMap     = NewColormap("1A9850", "91CF60", "FEE08B", "FC8D59", "D73027")
)
