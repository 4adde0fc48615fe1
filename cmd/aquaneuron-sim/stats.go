package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aquaneuron/aquaneuron-sim/internal/apperr"
	"github.com/aquaneuron/aquaneuron-sim/internal/catalog"
	"github.com/aquaneuron/aquaneuron-sim/internal/config"
	"github.com/aquaneuron/aquaneuron-sim/internal/figures"
	"github.com/aquaneuron/aquaneuron-sim/internal/summary"
	"github.com/aquaneuron/aquaneuron-sim/internal/ui"
)

var statsFormat string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print the numeric summary without rendering",
	Long:  "Runs the simulations behind the selected figures and prints their key statistics, as YAML or as a table. Nothing is written to disk.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(viper.GetViper())
		if err != nil {
			return err
		}
		if cfg.Debug() {
			setLoggers(cmd.ErrOrStderr())
			defer setLoggers(nil)
		}
		if statsFormat != "yaml" && statsFormat != "table" {
			return apperr.Userf("invalid --format %q (must be yaml or table)", statsFormat)
		}
		if err := catalog.Validate(); err != nil {
			return err
		}
		figs, err := figures.Select(cfg.Figures)
		if err != nil {
			return err
		}
		rep, err := figures.BuildAll(commandContext(cmd), cfg, figs)
		if err != nil {
			return err
		}
		doc := rep.Summary("aquaneuron-sim", version, cfg)
		if statsFormat == "table" {
			ui.NewStatsUI(cmd.OutOrStdout()).PrintReport(statsReport(doc))
			return nil
		}
		return doc.Encode(cmd.OutOrStdout())
	},
}

// scoreSuffixes mark metrics that live on [0, 1], where 1 is best.
var scoreSuffixes = []string{"accuracy", "accuracy_mean", "_r2", "roc_auc", "average_precision", "pr_auc", "_selectivity"}

func statsReport(doc summary.Document) ui.StatsReport {
	rep := ui.StatsReport{Seed: doc.Seed}
	for _, f := range doc.Figures {
		fs := ui.FigureStats{ID: f.ID, File: f.File}
		for _, m := range f.Metrics {
			fs.Metrics = append(fs.Metrics, ui.MetricLine{
				Name:  m.Name,
				Value: m.Value,
				Unit:  m.Unit,
				Score: isScore(m.Name),
			})
		}
		rep.Figures = append(rep.Figures, fs)
	}
	return rep
}

func isScore(name string) bool {
	for _, s := range scoreSuffixes {
		if strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}

func init() {
	statsCmd.Flags().StringVar(&statsFormat, "format", "yaml", "Output format: yaml|table")
}
