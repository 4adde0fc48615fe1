package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aquaneuron/aquaneuron-sim/internal/apperr"
	"github.com/aquaneuron/aquaneuron-sim/internal/catalog"
	"github.com/aquaneuron/aquaneuron-sim/internal/classify"
	"github.com/aquaneuron/aquaneuron-sim/internal/config"
	"github.com/aquaneuron/aquaneuron-sim/internal/figures"
	"github.com/aquaneuron/aquaneuron-sim/internal/fit"
	"github.com/aquaneuron/aquaneuron-sim/internal/manifest"
	"github.com/aquaneuron/aquaneuron-sim/internal/sink"
	"github.com/aquaneuron/aquaneuron-sim/internal/ui"
)

// SummaryName is the numeric summary written next to the figures.
const SummaryName = "summary.yaml"

var (
	generateFigures     []string
	generateOutput      string
	generateSeed        uint64
	generateInteractive bool
	generateFailFast    bool
	generateManifest    bool
	generateSummary     bool
	generateLogLevel    string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Simulate and render figures",
	Long:  "Runs the simulations behind the selected figures (all by default) and writes them as PNG files, optionally with a CycloneDX run manifest and a YAML numeric summary.",
	Args:  cobra.NoArgs,
	RunE:  runGenerate,
}

// setLoggers routes every package logger to w; nil disables them.
func setLoggers(w io.Writer) {
	fit.SetLogger(w)
	classify.SetLogger(w)
	figures.SetLogger(w)
	sink.SetLogger(w)
	manifest.SetLogger(w)
}

func selectFigures(cfg config.Config) ([]figures.Figure, error) {
	if !cfg.Interactive {
		return figures.Select(cfg.Figures)
	}
	var choices []ui.FigureChoice
	for _, f := range figures.All() {
		choices = append(choices, ui.FigureChoice{ID: f.ID, Title: fmt.Sprintf("%d. %s", f.Index, f.Title), File: f.File})
	}
	ids, err := ui.RunFigureSelector(choices)
	if err != nil {
		return nil, err
	}
	return figures.Select(ids)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}
	if cfg.Debug() {
		setLoggers(cmd.ErrOrStderr())
		defer setLoggers(nil)
	}
	if err := catalog.Validate(); err != nil {
		return err
	}

	figs, err := selectFigures(cfg)
	if err != nil {
		return err
	}
	out := sink.New(cfg.OutputDir, cfg.Scale)
	if cfg.Interactive {
		ok, err := ui.ConfirmOverwrite(out.Dir(), out.Existing(figures.Files(figs)))
		if err != nil {
			return err
		}
		if !ok {
			return apperr.ErrCancelled
		}
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt)
	defer stop()

	genUI := ui.NewGenerateUI(cmd.OutOrStdout(), cfg.Quiet())
	genUI.PrintBanner()
	titles := make([]string, len(figs))
	for i, f := range figs {
		titles[i] = f.Title
	}
	genUI.StartWorkflow(titles, !cfg.Debug())
	rep, runErr := figures.Run(ctx, cfg, figs, out, genUI)
	genUI.FinishWorkflow()

	extras, err := writeExtras(cfg, rep, out)
	if err != nil {
		runErr = errors.Join(runErr, err)
	}

	if runErr != nil {
		genUI.PrintFailures(rep.Failures(), titles)
		return runErr
	}
	genUI.PrintSummary(out.Dir(), extras...)
	return nil
}

// writeExtras writes the summary and the manifest when enabled and returns
// summary-box lines naming them.
func writeExtras(cfg config.Config, rep figures.Report, out *sink.Sink) ([]string, error) {
	var lines []string
	if cfg.Summary {
		path := out.Path(SummaryName)
		if err := rep.Summary("aquaneuron-sim", version, cfg).Write(path); err != nil {
			return lines, fmt.Errorf("summary: %w", err)
		}
		lines = append(lines, ui.FormatKeyValue("Summary", path))
	}
	if cfg.Manifest {
		bom, err := manifest.Build(rep, cfg, version)
		if err != nil {
			return lines, fmt.Errorf("manifest: %w", err)
		}
		path := filepath.Join(out.Dir(), manifest.DefaultName)
		if err := manifest.Write(bom, path, ""); err != nil {
			return lines, fmt.Errorf("manifest: %w", err)
		}
		lines = append(lines, ui.FormatKeyValue("Manifest", path))
	}
	return lines, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func init() {
	// Persistent on the root so that the bare command, generate and stats
	// all accept them.
	f := rootCmd.PersistentFlags()
	f.StringSliceVarP(&generateFigures, "figure", "f", nil, "Figure(s) by id, number or file name (default: all)")
	f.StringVarP(&generateOutput, "output", "o", "", "Output directory")
	f.Uint64Var(&generateSeed, "seed", 0, "Base random seed")
	f.BoolVar(&generateInteractive, "interactive", false, "Pick figures interactively (cannot be used with --figure)")
	f.BoolVar(&generateFailFast, "fail-fast", false, "Stop at the first failing figure")
	f.BoolVar(&generateManifest, "manifest", false, "Write a CycloneDX run manifest ("+manifest.DefaultName+")")
	f.BoolVar(&generateSummary, "summary", false, "Write a YAML numeric summary ("+SummaryName+")")
	f.StringVar(&generateLogLevel, "log-level", "", "Log level: quiet|standard|debug")

	// Bind all flags to viper for config file support
	viper.BindPFlag(config.KeyFigures, f.Lookup("figure"))
	viper.BindPFlag(config.KeyOutput, f.Lookup("output"))
	viper.BindPFlag(config.KeySeed, f.Lookup("seed"))
	viper.BindPFlag(config.KeyInteractive, f.Lookup("interactive"))
	viper.BindPFlag(config.KeyFailFast, f.Lookup("fail-fast"))
	viper.BindPFlag(config.KeyManifest, f.Lookup("manifest"))
	viper.BindPFlag(config.KeySummary, f.Lookup("summary"))
	viper.BindPFlag(config.KeyLogLevel, f.Lookup("log-level"))
}
