package manifest

import (
	"io"

	"github.com/aquaneuron/aquaneuron-sim/internal/logging"
	"github.com/aquaneuron/aquaneuron-sim/internal/ui"
)

var logger = &logging.Logger{PrefixText: "Manifest:", PrefixColor: ui.FgGreen, OmitFigure: true}

// SetLogger sets an optional destination for manifest logs.
func SetLogger(w io.Writer) { logger.SetWriter(w) }

func logf(format string, args ...any) { logger.Logf("", format, args...) }
