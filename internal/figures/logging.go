package figures

import (
	"io"

	"github.com/aquaneuron/aquaneuron-sim/internal/logging"
	"github.com/aquaneuron/aquaneuron-sim/internal/ui"
)

var logger = &logging.Logger{PrefixText: "Figures:", PrefixColor: ui.FgMagenta}

// SetLogger sets an optional destination for figure logs.
func SetLogger(w io.Writer) { logger.SetWriter(w) }

func logf(figureID string, format string, args ...any) {
	logger.Logf(figureID, format, args...)
}
