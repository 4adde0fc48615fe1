// Package figures builds the data behind each poster figure and renders it.
//
// Every figure is built from an Env holding the resolved configuration and
// a random stream of its own, so figures can be generated in any order, or
// alone, and still produce the same numbers.
package figures

import (
	"context"
	"fmt"
	"image"
	"slices"
	"strconv"
	"strings"

	"github.com/aquaneuron/aquaneuron-sim/internal/apperr"
	"github.com/aquaneuron/aquaneuron-sim/internal/config"
	"github.com/aquaneuron/aquaneuron-sim/internal/randx"
	"github.com/aquaneuron/aquaneuron-sim/internal/sink"
	"github.com/aquaneuron/aquaneuron-sim/internal/summary"
)

// Env is everything a figure builder may depend on.
type Env struct {
	Config config.Config
	Rand   *randx.Stream
}

// Data is the computed content of a figure. Builders return plain numbers;
// Render turns them into pixels.
type Data interface {
	Render(s *sink.Surface) error
	Metrics() []summary.Metric
}

// Figure is one entry of the registry.
type Figure struct {
	Index int // 1-based position, also the random stream id
	ID    string
	Title string
	File  string
	Size  image.Point

	seed  func(config.Config) uint64
	build func(ctx context.Context, env Env) (Data, error)
}

// Seed returns the seed the figure's random stream is created from.
func (f Figure) Seed(cfg config.Config) uint64 {
	if f.seed != nil {
		return f.seed(cfg)
	}
	return cfg.Seed
}

// NewEnv prepares the environment of f.
func NewEnv(cfg config.Config, f Figure) Env {
	return Env{Config: cfg, Rand: randx.New(f.Seed(cfg), uint64(f.Index))}
}

// Build computes the figure's data in a fresh environment.
func (f Figure) Build(ctx context.Context, cfg config.Config) (Data, error) {
	if f.build == nil {
		return nil, fmt.Errorf("figure %s has no builder", f.ID)
	}
	logf(f.ID, "building with seed %d", f.Seed(cfg))
	return f.build(ctx, NewEnv(cfg, f))
}

var registry = []Figure{
	{
		Index: 1, ID: "isotherms", File: "fig1_isotherms_.png", Size: image.Pt(1800, 1200),
		Title: "Langmuir vs Freundlich isotherms",
		build: buildIsotherms,
	},
	{
		Index: 2, ID: "sensor", File: "fig2_sensor_.png", Size: image.Pt(2000, 1300),
		Title: "Sensor characterisation suite",
		build: buildSensor,
	},
	{
		Index: 3, ID: "india", File: "fig3_india_.png", Size: image.Pt(2200, 1400),
		Title: "Groundwater contamination risk across India",
		build: buildRegional,
	},
	{
		Index: 4, ID: "ai", File: "fig4_ai_.png", Size: image.Pt(2200, 1600),
		Title: "Edge AI water-quality classifier",
		seed:  func(c config.Config) uint64 { return c.ClassifierSeed },
		build: buildClassifier,
	},
	{
		Index: 5, ID: "comparison", File: "fig5_comparison_.png", Size: image.Pt(1800, 1100),
		Title: "Comparison with existing detection methods",
		build: buildComparison,
	},
	{
		Index: 6, ID: "selectivity", File: "fig6_selectivity_.png", Size: image.Pt(1800, 600),
		Title: "Aptamer selectivity",
		build: buildSelectivity,
	},
	{
		Index: 7, ID: "architecture", File: "fig7_architecture_.png", Size: image.Pt(2200, 1000),
		Title: "System architecture and data flow",
		build: buildArchitecture,
	},
	{
		Index: 8, ID: "validation", File: "fig8_validation_.png", Size: image.Pt(2200, 1400),
		Title: "Field validation against ICP-MS",
		seed:  func(c config.Config) uint64 { return c.ValidationSeed },
		build: buildValidation,
	},
}

// All returns every figure in generation order.
func All() []Figure { return slices.Clone(registry) }

// Lookup finds a figure by id, file name, number ("3") or "fig3".
func Lookup(key string) (Figure, bool) {
	key = strings.ToLower(strings.TrimSpace(key))
	n, err := strconv.Atoi(strings.TrimPrefix(key, "fig"))
	for _, f := range registry {
		if f.ID == key || f.File == key || (err == nil && f.Index == n) {
			return f, true
		}
	}
	return Figure{}, false
}

// Select resolves keys into figures, in registry order and without
// duplicates. No keys selects everything.
func Select(keys []string) ([]Figure, error) {
	if len(keys) == 0 {
		return All(), nil
	}
	want := map[int]bool{}
	var unknown []string
	for _, k := range keys {
		f, ok := Lookup(k)
		if !ok {
			unknown = append(unknown, k)
			continue
		}
		want[f.Index] = true
	}
	if len(unknown) > 0 {
		ids := make([]string, len(registry))
		for i, f := range registry {
			ids[i] = f.ID
		}
		return nil, apperr.Userf("unknown figure(s) %s (available: %s)", strings.Join(unknown, ", "), strings.Join(ids, ", "))
	}
	var out []Figure
	for _, f := range registry {
		if want[f.Index] {
			out = append(out, f)
		}
	}
	return out, nil
}

// Files returns the artifact names of figs.
func Files(figs []Figure) []string {
	out := make([]string, len(figs))
	for i, f := range figs {
		out[i] = f.File
	}
	return out
}
