package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aquaneuron/aquaneuron-sim/internal/figures"
	"github.com/aquaneuron/aquaneuron-sim/internal/ui"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the figures in generation order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		for _, f := range figures.All() {
			fmt.Fprintf(w, "%s %-13s %-28s %s\n",
				ui.Highlight.Render(fmt.Sprintf("%d.", f.Index)), f.ID, ui.Dim.Render(f.File), f.Title)
		}
		return nil
	},
}
