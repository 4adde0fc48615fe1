package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aquaneuron/aquaneuron-sim/internal/manifest"
	"github.com/aquaneuron/aquaneuron-sim/internal/ui"
)

// rootCmd runs every figure when invoked without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "aquaneuron-sim",
	Short: "Simulate the AquaNeuron sensor and render its figures",
	Long:  longDescription,
	Args:  cobra.NoArgs,

	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		ui.Init(noColor)
	},
	RunE: runGenerate,
}

var (
	cfgFile string
	noColor bool
	version string
)

// SetVersion sets the version for the CLI. "dev" and "" fall back to the
// build information.
func SetVersion(v string) {
	if v == "" || v == "dev" {
		v = manifest.GeneratorVersion()
	}
	version = v
	rootCmd.Version = v
}

// GetRootCmd returns the root command for use with fang
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/defaults.yaml or $HOME/.aquaneuron-sim.yaml)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(generateCmd, listCmd, statsCmd)
}

func initConfig() {
	// AQUANEURON_GENERATE_OUTPUT overrides generate.output, and so on.
	viper.SetEnvPrefix("AQUANEURON")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			cobra.CheckErr(fmt.Errorf("read config %s: %w", cfgFile, err))
		}
		reportConfig()
		return
	}

	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.SetConfigName("defaults")
	err := viper.ReadInConfig()

	notFound := &viper.ConfigFileNotFoundError{}
	if err != nil && errors.As(err, notFound) {
		if home, herr := os.UserHomeDir(); herr == nil {
			viper.AddConfigPath(home)
			viper.SetConfigName(".aquaneuron-sim")
			err = viper.ReadInConfig()
		}
	}

	switch {
	case err != nil && !errors.As(err, notFound):
		cobra.CheckErr(err)
	case err == nil:
		reportConfig()
	}
}

func reportConfig() {
	fmt.Fprintln(os.Stderr, ui.Dim.Render("Using config file: ")+ui.Secondary.Render(viper.ConfigFileUsed()))
}

const longDescription = "Simulates the AquaNeuron graphene-oxide aptamer sensor from published constants and " +
	"renders the eight analysis figures: isotherms, sensor characterisation, regional risk, the edge classifier, " +
	"method comparison, selectivity, system architecture and field validation."
