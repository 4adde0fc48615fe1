package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/aquaneuron/aquaneuron-sim/internal/apperr"
)

// runForm is replaced in tests.
var runForm = func(f *huh.Form) error { return f.Run() }

// ConfirmOverwrite lists the artifacts that already exist in dir and asks
// whether to replace them. It returns true without prompting when nothing
// would be overwritten. Aborting the prompt returns apperr.ErrCancelled.
func ConfirmOverwrite(dir string, existing []string) (bool, error) {
	if len(existing) == 0 {
		return true, nil
	}

	var sb strings.Builder
	sb.WriteString(Warning.Bold(true).Render(fmt.Sprintf("%d artifact(s) already exist", len(existing))))
	sb.WriteString("\n")
	sb.WriteString(FormatKeyValue("Output directory", dir))
	for _, name := range existing {
		sb.WriteString("\n")
		sb.WriteString(GetBullet() + " " + name)
	}
	fmt.Println(Box.Render(sb.String()))

	var confirm bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Overwrite existing figures?").
				Description("Regenerated figures replace the files listed above.").
				Value(&confirm).
				Affirmative("Yes").
				Negative("No"),
		),
	)

	if err := runForm(form); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, apperr.ErrCancelled
		}
		return false, err
	}
	return confirm, nil
}
