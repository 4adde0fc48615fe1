package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/aquaneuron/aquaneuron-sim/internal/ui"
)

// Logger is a tiny opt-in logger used across internal packages.
// When Writer is nil, logging is disabled.
//
// The output format is:
//
//	<ColoredPrefix> figure=<figureID> <formattedMessage>\n
//
// where <figureID> is trimmed and defaults to "(pipeline)".
type Logger struct {
	Writer io.Writer

	PrefixText  string
	PrefixColor string

	// OmitFigure controls whether the figure field is written.
	OmitFigure bool
}

func (l *Logger) SetWriter(w io.Writer) { l.Writer = w }

func (l *Logger) Enabled() bool { return l != nil && l.Writer != nil }

func (l *Logger) Logf(figureID string, format string, args ...any) {
	if l == nil || l.Writer == nil {
		return
	}
	prefix := l.PrefixText
	if prefix == "" {
		prefix = "Log:"
	}
	if l.PrefixColor != "" {
		prefix = ui.Color(prefix, l.PrefixColor)
	}
	msg := fmt.Sprintf(format, args...)
	if l.OmitFigure {
		fmt.Fprintf(l.Writer, "%s %s\n", prefix, msg)
		return
	}

	id := strings.TrimSpace(figureID)
	if id == "" {
		id = "(pipeline)"
	}
	fmt.Fprintf(l.Writer, "%s figure=%s %s\n", prefix, id, msg)
}
