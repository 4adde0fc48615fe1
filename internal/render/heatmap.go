package render

import (
	"fmt"
	"image"
	"image/draw"
)

// Heatmap is a labelled matrix of coloured cells with a colour bar.
type Heatmap struct {
	Title          string
	XLabel, YLabel string
	Values         [][]float64
	Min, Max       float64
	Map            Colormap

	RowLabels, ColLabels []string

	// Cell returns the text of cell (i, j); nil prints the value with %.2f.
	Cell func(i, j int) string

	BarTicks  []float64
	BarFormat string
	BarLabel  string
}

// Draw renders the heat-map into r of dst.
func (h Heatmap) Draw(dst draw.Image, r image.Rectangle) error {
	rows := len(h.Values)
	if rows == 0 || len(h.Values[0]) == 0 {
		return fmt.Errorf("heatmap %q: %w", h.Title, ErrNoData)
	}
	cols := len(h.Values[0])
	for i, row := range h.Values {
		if len(row) != cols {
			return fmt.Errorf("heatmap %q: row %d has %d cells, want %d", h.Title, i, len(row), cols)
		}
	}

	FillRect(dst, r, Hex("F8FAFC"))
	label := Style{Color: Hex("334155"), Size: 15}
	y := r.Min.Y + 30
	if h.Title != "" {
		Text(dst, r.Min.X+r.Dx()/2, y, h.Title, Style{Color: Hex("1A3F6F"), Size: 18, Weight: Bold, Align: Center})
		y += 20
	}

	left := 0
	for _, l := range h.RowLabels {
		left = max(left, label.Width(l))
	}
	left += 16
	bar := 90
	grid := image.Rect(r.Min.X+left, y+16, r.Max.X-bar, r.Max.Y-60)
	if grid.Dx() < cols || grid.Dy() < rows {
		return fmt.Errorf("heatmap %q: %v too small for %dx%d cells", h.Title, r, rows, cols)
	}
	cw := float64(grid.Dx()) / float64(cols)
	ch := float64(grid.Dy()) / float64(rows)

	if h.YLabel != "" {
		Text(dst, r.Min.X+8, y+8, h.YLabel, Style{Color: Hex("334155"), Size: 14, Weight: Italic})
	}
	for i, row := range h.Values {
		y0 := grid.Min.Y + int(float64(i)*ch)
		y1 := grid.Min.Y + int(float64(i+1)*ch)
		if i < len(h.RowLabels) {
			st := label
			st.Align = Right
			Text(dst, grid.Min.X-8, (y0+y1)/2+5, h.RowLabels[i], st)
		}
		for j, v := range row {
			x0 := grid.Min.X + int(float64(j)*cw)
			x1 := grid.Min.X + int(float64(j+1)*cw)
			fill := h.Map.Norm(v, h.Min, h.Max)
			cell := image.Rect(x0, y0, x1, y1)
			FillRect(dst, cell, fill)
			// white separators between cells
			FillRect(dst, image.Rect(x1-1, y0, x1+1, y1), Hex("FFFFFF"))
			FillRect(dst, image.Rect(x0, y1-1, x1, y1+1), Hex("FFFFFF"))

			text := fmt.Sprintf("%.2f", v)
			if h.Cell != nil {
				text = h.Cell(i, j)
			}
			ink := Hex("0F172A")
			if Luminance(fill) < 0.5 {
				ink = Hex("FFFFFF")
			}
			Middle(dst, (x0+x1)/2, (y0+y1)/2, text, Style{Color: ink, Size: min(16, ch/3), Weight: Bold})
		}
	}
	for j := 0; j < cols && j < len(h.ColLabels); j++ {
		x := grid.Min.X + int((float64(j)+0.5)*cw)
		st := label
		st.Align = Center
		Text(dst, x, grid.Max.Y+22, h.ColLabels[j], st)
	}
	if h.XLabel != "" {
		Text(dst, grid.Min.X+grid.Dx()/2, grid.Max.Y+48, h.XLabel, Style{Color: Hex("334155"), Size: 15, Weight: Italic, Align: Center})
	}

	format := h.BarFormat
	if format == "" {
		format = "%.1f"
	}
	bar0 := grid.Max.X + 20
	Colorbar(dst, image.Rect(bar0, grid.Min.Y+20, bar0+20, grid.Max.Y), h.Map, h.Min, h.Max, h.BarTicks, format, h.BarLabel)
	return nil
}
