// Package config resolves the run configuration from viper (flags, environment
// and optional config file) into one explicit value that is passed to every
// figure builder. Nothing below reads global state after Load returns.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/aquaneuron/aquaneuron-sim/internal/apperr"
)

// Log levels accepted by --log-level.
const (
	LogQuiet    = "quiet"
	LogStandard = "standard"
	LogDebug    = "debug"
)

// Viper keys. Flags of the generate command bind to the generate.* keys.
const (
	KeyOutput         = "generate.output"
	KeyFigures        = "generate.figures"
	KeyInteractive    = "generate.interactive"
	KeySeed           = "generate.seed"
	KeyFailFast       = "generate.fail-fast"
	KeyManifest       = "generate.manifest"
	KeySummary        = "generate.summary"
	KeyLogLevel       = "generate.log-level"
	KeyScale          = "render.scale"
	KeyClassifierSeed = "simulation.classifier-seed"
	KeyValidationSeed = "simulation.validation-seed"
	KeyBootstrapN     = "simulation.bootstrap.replicates"
	KeyBootstrapNoise = "simulation.bootstrap.noise-sd"
	KeyBootstrapMin   = "simulation.bootstrap.min-successes"
	KeyMonteCarloN    = "simulation.monte-carlo.samples"
	KeyTrees          = "simulation.forest.trees"
	KeyMaxDepth       = "simulation.forest.max-depth"
	KeyMinLeaf        = "simulation.forest.min-samples-leaf"
	KeyWorkers        = "simulation.forest.workers"
	KeyFolds          = "simulation.forest.cv-folds"
	KeyPerplexity     = "simulation.tsne.perplexity"
	KeyIterations     = "simulation.tsne.iterations"
	KeyEmbedSample    = "simulation.tsne.sample"
)

// Bootstrap controls the isotherm refit ensembles.
type Bootstrap struct {
	Replicates   int
	NoiseSD      float64
	MinSuccesses int
}

// Forest controls the random-forest classifier.
type Forest struct {
	Trees          int
	MaxDepth       int
	MinSamplesLeaf int
	Workers        int
	Folds          int
}

// Embedding controls the t-SNE projection.
type Embedding struct {
	Perplexity float64
	Iterations int
	Sample     int
}

// Config is the fully resolved run configuration.
type Config struct {
	OutputDir   string
	Figures     []string
	Interactive bool
	FailFast    bool
	Manifest    bool
	Summary     bool
	LogLevel    string
	Scale       float64

	Seed           uint64
	ClassifierSeed uint64
	ValidationSeed uint64

	Bootstrap       Bootstrap
	MonteCarloDraws int
	Forest          Forest
	Embedding       Embedding
}

// Default returns the configuration that reproduces the reference figures.
func Default() Config {
	return Config{
		OutputDir:      "output",
		LogLevel:       LogStandard,
		Scale:          1,
		Seed:           2026,
		ClassifierSeed: 42,
		ValidationSeed: 99,
		Bootstrap: Bootstrap{
			Replicates:   300,
			NoiseSD:      3.5,
			MinSuccesses: 1,
		},
		MonteCarloDraws: 5000,
		Forest: Forest{
			Trees:          500,
			MaxDepth:       12,
			MinSamplesLeaf: 2,
			Folds:          5,
		},
		Embedding: Embedding{
			Perplexity: 35,
			Iterations: 1000,
			Sample:     500,
		},
	}
}

// SetDefaults registers Default() under the viper keys so that config files
// and environment variables only need to name what they change.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault(KeyOutput, d.OutputDir)
	v.SetDefault(KeyLogLevel, d.LogLevel)
	v.SetDefault(KeyScale, d.Scale)
	v.SetDefault(KeySeed, d.Seed)
	v.SetDefault(KeyClassifierSeed, d.ClassifierSeed)
	v.SetDefault(KeyValidationSeed, d.ValidationSeed)
	v.SetDefault(KeyBootstrapN, d.Bootstrap.Replicates)
	v.SetDefault(KeyBootstrapNoise, d.Bootstrap.NoiseSD)
	v.SetDefault(KeyBootstrapMin, d.Bootstrap.MinSuccesses)
	v.SetDefault(KeyMonteCarloN, d.MonteCarloDraws)
	v.SetDefault(KeyTrees, d.Forest.Trees)
	v.SetDefault(KeyMaxDepth, d.Forest.MaxDepth)
	v.SetDefault(KeyMinLeaf, d.Forest.MinSamplesLeaf)
	v.SetDefault(KeyWorkers, d.Forest.Workers)
	v.SetDefault(KeyFolds, d.Forest.Folds)
	v.SetDefault(KeyPerplexity, d.Embedding.Perplexity)
	v.SetDefault(KeyIterations, d.Embedding.Iterations)
	v.SetDefault(KeyEmbedSample, d.Embedding.Sample)
}

// Load reads the configuration from v and validates it. Invalid values are
// reported as apperr.UserError.
func Load(v *viper.Viper) (Config, error) {
	SetDefaults(v)

	var figures []string
	for _, f := range v.GetStringSlice(KeyFigures) {
		for _, part := range strings.Split(f, ",") {
			if p := strings.ToLower(strings.TrimSpace(part)); p != "" {
				figures = append(figures, p)
			}
		}
	}

	cfg := Config{
		OutputDir:      strings.TrimSpace(v.GetString(KeyOutput)),
		Figures:        figures,
		Interactive:    v.GetBool(KeyInteractive),
		FailFast:       v.GetBool(KeyFailFast),
		Manifest:       v.GetBool(KeyManifest),
		Summary:        v.GetBool(KeySummary),
		LogLevel:       strings.ToLower(strings.TrimSpace(v.GetString(KeyLogLevel))),
		Scale:          v.GetFloat64(KeyScale),
		Seed:           v.GetUint64(KeySeed),
		ClassifierSeed: v.GetUint64(KeyClassifierSeed),
		ValidationSeed: v.GetUint64(KeyValidationSeed),
		Bootstrap: Bootstrap{
			Replicates:   v.GetInt(KeyBootstrapN),
			NoiseSD:      v.GetFloat64(KeyBootstrapNoise),
			MinSuccesses: v.GetInt(KeyBootstrapMin),
		},
		MonteCarloDraws: v.GetInt(KeyMonteCarloN),
		Forest: Forest{
			Trees:          v.GetInt(KeyTrees),
			MaxDepth:       v.GetInt(KeyMaxDepth),
			MinSamplesLeaf: v.GetInt(KeyMinLeaf),
			Workers:        v.GetInt(KeyWorkers),
			Folds:          v.GetInt(KeyFolds),
		},
		Embedding: Embedding{
			Perplexity: v.GetFloat64(KeyPerplexity),
			Iterations: v.GetInt(KeyIterations),
			Sample:     v.GetInt(KeyEmbedSample),
		},
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = LogStandard
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch c.LogLevel {
	case LogQuiet, LogStandard, LogDebug:
	default:
		return apperr.Userf("invalid --log-level %q (expected quiet|standard|debug)", c.LogLevel)
	}
	if c.OutputDir == "" {
		return apperr.User("output directory must not be empty")
	}
	if c.Scale <= 0 || c.Scale > 4 {
		return apperr.Userf("render.scale must be in (0, 4], got %g", c.Scale)
	}
	if c.Interactive && len(c.Figures) > 0 {
		return apperr.User("--interactive cannot be used with --figure")
	}

	checks := []struct {
		name string
		ok   bool
	}{
		{"bootstrap replicates must be positive", c.Bootstrap.Replicates > 0},
		{"bootstrap noise sd must be non-negative", c.Bootstrap.NoiseSD >= 0},
		{"bootstrap min-successes must be in [1, replicates]", c.Bootstrap.MinSuccesses >= 1 && c.Bootstrap.MinSuccesses <= c.Bootstrap.Replicates},
		{"monte-carlo samples must be positive", c.MonteCarloDraws > 0},
		{"forest trees must be positive", c.Forest.Trees > 0},
		{"forest max-depth must be positive", c.Forest.MaxDepth > 0},
		{"forest min-samples-leaf must be positive", c.Forest.MinSamplesLeaf > 0},
		{"forest workers must be non-negative", c.Forest.Workers >= 0},
		{"cv folds must be at least 2", c.Forest.Folds >= 2},
		{"tsne perplexity must be positive", c.Embedding.Perplexity > 0},
		{"tsne iterations must be positive", c.Embedding.Iterations > 0},
		{"tsne sample must exceed 3*perplexity", float64(c.Embedding.Sample) > 3*c.Embedding.Perplexity},
	}
	for _, chk := range checks {
		if !chk.ok {
			return apperr.User(chk.name)
		}
	}
	return nil
}

// Quiet reports whether console output is suppressed.
func (c Config) Quiet() bool { return c.LogLevel == LogQuiet }

// Debug reports whether package loggers are enabled.
func (c Config) Debug() bool { return c.LogLevel == LogDebug }

// String is a one-line description used in debug logs.
func (c Config) String() string {
	return fmt.Sprintf("output=%s seed=%d classifier-seed=%d validation-seed=%d bootstrap=%d mc=%d trees=%d",
		c.OutputDir, c.Seed, c.ClassifierSeed, c.ValidationSeed, c.Bootstrap.Replicates, c.MonteCarloDraws, c.Forest.Trees)
}
