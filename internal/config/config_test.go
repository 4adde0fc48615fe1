package config

import (
	"testing"

	"github.com/spf13/viper"

	"github.com/aquaneuron/aquaneuron-sim/internal/apperr"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(viper.New())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	d := Default()
	if cfg.OutputDir != "output" || cfg.Seed != 2026 || cfg.ClassifierSeed != 42 || cfg.ValidationSeed != 99 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Bootstrap != d.Bootstrap || cfg.Forest != d.Forest || cfg.Embedding != d.Embedding {
		t.Fatalf("nested defaults differ: %+v", cfg)
	}
	if cfg.LogLevel != LogStandard || cfg.Quiet() || cfg.Debug() {
		t.Fatalf("unexpected log level %q", cfg.LogLevel)
	}
}

func TestLoad_FiguresSplitAndNormalised(t *testing.T) {
	v := viper.New()
	v.Set(KeyFigures, []string{" Sensor,india ", "", "AI"})
	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := []string{"sensor", "india", "ai"}
	if len(cfg.Figures) != len(want) {
		t.Fatalf("figures = %v, want %v", cfg.Figures, want)
	}
	for i := range want {
		if cfg.Figures[i] != want[i] {
			t.Fatalf("figures = %v, want %v", cfg.Figures, want)
		}
	}
}

func TestLoad_InvalidValues_AreUserErrors(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  any
	}{
		{"log level", KeyLogLevel, "verbose"},
		{"empty output", KeyOutput, "  "},
		{"scale", KeyScale, 0.0},
		{"replicates", KeyBootstrapN, 0},
		{"min successes above replicates", KeyBootstrapMin, 1000},
		{"folds", KeyFolds, 1},
		{"tsne sample", KeyEmbedSample, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			v.Set(tt.key, tt.val)
			_, err := Load(v)
			if err == nil {
				t.Fatalf("expected error for %s=%v", tt.key, tt.val)
			}
			if !apperr.IsUser(err) {
				t.Fatalf("expected UserError, got %T: %v", err, err)
			}
		})
	}
}

func TestValidate_InteractiveWithFigures(t *testing.T) {
	cfg := Default()
	cfg.Interactive = true
	cfg.Figures = []string{"sensor"}
	if err := cfg.Validate(); !apperr.IsUser(err) {
		t.Fatalf("expected UserError, got %v", err)
	}
}

func TestLoad_OverridesSeed(t *testing.T) {
	v := viper.New()
	v.Set(KeySeed, 7)
	v.Set(KeyLogLevel, "DEBUG")
	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Seed != 7 {
		t.Fatalf("seed = %d, want 7", cfg.Seed)
	}
	if !cfg.Debug() {
		t.Fatalf("expected debug level, got %q", cfg.LogLevel)
	}
}
