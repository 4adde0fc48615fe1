package ui

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// StatsReport mirrors the numeric summary of a run to avoid importing it.
type StatsReport struct {
	Seed    uint64
	Figures []FigureStats
}

// FigureStats is the metric list of one figure.
type FigureStats struct {
	ID      string
	File    string
	Metrics []MetricLine
}

// MetricLine is one named value. Score marks values on [0, 1] that are
// drawn with a bar.
type MetricLine struct {
	Name  string
	Value float64
	Unit  string
	Score bool
}

// StatsUI renders the numeric summary for the terminal.
type StatsUI struct {
	writer io.Writer
}

func NewStatsUI(w io.Writer) *StatsUI { return &StatsUI{writer: w} }

// PrintReport prints one boxed section per figure.
func (s *StatsUI) PrintReport(report StatsReport) {
	fmt.Fprintln(s.writer, FormatKeyValue("Seed", strconv.FormatUint(report.Seed, 10)))
	for _, f := range report.Figures {
		fmt.Fprintln(s.writer, Box.Render(s.renderFigure(f)))
	}
}

func (s *StatsUI) renderFigure(f FigureStats) string {
	var sb strings.Builder
	sb.WriteString(SectionHeader.Render(f.ID))
	sb.WriteString(" ")
	sb.WriteString(Dim.Render(f.File))

	width := 0
	for _, m := range f.Metrics {
		width = max(width, len(m.Name))
	}
	for _, m := range f.Metrics {
		sb.WriteString("\n")
		sb.WriteString(Dim.Render(fmt.Sprintf("%-*s ", width, m.Name)))
		value := strconv.FormatFloat(m.Value, 'g', 6, 64)
		if m.Unit != "" {
			value += " " + m.Unit
		}
		if m.Score {
			sb.WriteString(renderProgressBar(m.Value, 20) + " ")
		}
		sb.WriteString(value)
	}
	return sb.String()
}

// renderProgressBar draws score on [0, 1] as a bar coloured by how close it
// is to 1.
func renderProgressBar(score float64, width int) string {
	score = min(max(score, 0), 1)
	filled := int(score * float64(width))
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	switch {
	case score >= 0.8:
		return Success.Render(bar)
	case score >= 0.5:
		return Warning.Render(bar)
	}
	return Error.Render(bar)
}
