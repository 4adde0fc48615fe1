package render

import (
	"image"
	"image/color"
	"image/draw"
	"strings"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Weight selects one of the embedded Go font faces.
type Weight int

const (
	Regular Weight = iota
	Bold
	Italic
)

// Align is the horizontal anchor of a text run.
type Align int

const (
	Left Align = iota
	Center
	Right
)

type faceKey struct {
	weight Weight
	size   float64
}

var (
	fontsOnce sync.Once
	fonts     map[Weight]*opentype.Font

	facesMu sync.Mutex
	faces   = map[faceKey]font.Face{}
)

func loadFonts() {
	fonts = map[Weight]*opentype.Font{}
	for w, ttf := range map[Weight][]byte{Regular: goregular.TTF, Bold: gobold.TTF, Italic: goitalic.TTF} {
		if f, err := opentype.Parse(ttf); err == nil {
			fonts[w] = f
		}
	}
}

// Face returns a cached face of the given weight and pixel size. If the
// embedded fonts cannot be parsed it falls back to the 7x13 bitmap face.
func Face(w Weight, size float64) font.Face {
	fontsOnce.Do(loadFonts)

	key := faceKey{w, size}
	facesMu.Lock()
	defer facesMu.Unlock()
	if f, ok := faces[key]; ok {
		return f
	}
	var face font.Face = basicfont.Face7x13
	if f, ok := fonts[w]; ok {
		if ff, err := opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull}); err == nil {
			face = ff
		}
	}
	faces[key] = face
	return face
}

var (
	chartFontOnce sync.Once
	chartTTF      *truetype.Font
)

// chartFont is the regular Go font in the form go-chart draws with, so axis
// text matches the captions. A nil result makes go-chart fall back to its
// own default.
func chartFont() *truetype.Font {
	chartFontOnce.Do(func() {
		if f, err := truetype.Parse(goregular.TTF); err == nil {
			chartTTF = f
		}
	})
	return chartTTF
}

// glyphs the embedded faces do not carry.
var plain = strings.NewReplacer(
	"⁺", "+", "⁻", "-", "⁴", "4",
	"₀", "0", "₁", "1", "₂", "2", "₃", "3", "₄", "4", "₉", "9",
	"–", "-", "—", "-", "₹", "Rs ",
)

// Plain rewrites superscript charges and subscripts the fonts lack into
// their ASCII forms, e.g. "As³⁺" becomes "As³+".
func Plain(s string) string { return plain.Replace(s) }

// Style is a text colour, weight and pixel size.
type Style struct {
	Color  color.Color
	Weight Weight
	Size   float64
	Align  Align
}

// Width measures s in pixels.
func (st Style) Width(s string) int {
	return font.MeasureString(Face(st.Weight, st.Size), Plain(s)).Ceil()
}

// Text draws s with its baseline at y. The x anchor follows st.Align.
func Text(dst draw.Image, x, y int, s string, st Style) {
	s = Plain(s)
	face := Face(st.Weight, st.Size)
	switch st.Align {
	case Center:
		x -= font.MeasureString(face, s).Ceil() / 2
	case Right:
		x -= font.MeasureString(face, s).Ceil()
	}
	c := st.Color
	if c == nil {
		c = Hex("0F172A")
	}
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(s)
}

// Lines draws each line of text below the previous, starting with the
// first baseline at y, and returns the baseline after the last line.
func Lines(dst draw.Image, x, y int, lines []string, st Style) int {
	step := int(st.Size * 1.3)
	for _, l := range lines {
		Text(dst, x, y, l, st)
		y += step
	}
	return y
}

// Middle draws s centred on (x, y) in both directions.
func Middle(dst draw.Image, x, y int, s string, st Style) {
	m := Face(st.Weight, st.Size).Metrics()
	h := (m.Ascent + m.Descent).Ceil()
	st.Align = Center
	Text(dst, x, y+h/2-m.Descent.Ceil(), s, st)
}

// Tag draws a small label on a filled box, the way annotations on the
// panels are marked. (x, y) is the top left corner of the box.
func Tag(dst draw.Image, x, y int, label string, fg, border, bg color.Color) {
	face := basicfont.Face7x13
	label = Plain(label)
	w := font.MeasureString(face, label).Ceil()
	h := 13

	box := image.Rect(x-4, y-4, x+w+4, y+h+4)
	draw.Draw(dst, box, image.NewUniform(border), image.Point{}, draw.Over)
	draw.Draw(dst, box.Inset(1), image.NewUniform(bg), image.Point{}, draw.Over)

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(fg),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y + face.Ascent)},
	}
	d.DrawString(label)
}
