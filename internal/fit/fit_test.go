package fit

import (
	"bytes"
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/aquaneuron/aquaneuron-sim/internal/model"
	"github.com/aquaneuron/aquaneuron-sim/internal/randx"
	"github.com/aquaneuron/aquaneuron-sim/internal/ui"
)

var grid = []float64{2, 5, 10, 20, 40, 70, 110, 160, 230, 320, 420, 500}

func TestLeastSquares_RecoversLangmuir(t *testing.T) {
	y := model.LangmuirCurve(grid, 142.8, 18.5)
	res, err := LeastSquares(Langmuir, grid, y, []float64{142.8 * 0.9, 18.5 * 1.1}, DefaultOptions)
	if err != nil {
		t.Fatalf("LeastSquares: %v", err)
	}
	if math.Abs(res.Params[0]-142.8) > 1e-4 || math.Abs(res.Params[1]-18.5) > 1e-4 {
		t.Fatalf("params = %v", res.Params)
	}
	if res.SSE > 1e-8 {
		t.Fatalf("SSE = %v", res.SSE)
	}
}

func TestLeastSquares_RecoversFreundlich(t *testing.T) {
	y := model.FreundlichCurve(grid[1:], 19.7, 2.8)
	res, err := LeastSquares(Freundlich, grid[1:], y, []float64{15, 2}, DefaultOptions)
	if err != nil {
		t.Fatalf("LeastSquares: %v", err)
	}
	if math.Abs(res.Params[0]-19.7) > 1e-3 || math.Abs(res.Params[1]-2.8) > 1e-3 {
		t.Fatalf("params = %v", res.Params)
	}
}

func TestLeastSquares_NonFiniteStart(t *testing.T) {
	broken := Model{Name: "nan", Params: []string{"a"}, Eval: func(float64, []float64) float64 { return math.NaN() }}
	_, err := LeastSquares(broken, grid, grid, []float64{1}, DefaultOptions)
	if !errors.Is(err, ErrNoConvergence) {
		t.Fatalf("expected ErrNoConvergence, got %v", err)
	}
}

func TestLeastSquares_ArgumentErrors(t *testing.T) {
	if _, err := LeastSquares(Langmuir, grid, grid[:3], []float64{1, 1}, DefaultOptions); err == nil {
		t.Fatalf("expected length mismatch error")
	}
	if _, err := LeastSquares(Langmuir, grid, grid, []float64{1}, DefaultOptions); err == nil {
		t.Fatalf("expected parameter count error")
	}
}

func langmuirSpec(replicates, min int) BootstrapSpec {
	return BootstrapSpec{
		Label:        "isotherms",
		X:            grid,
		Truth:        model.LangmuirCurve(grid, 142.8, 18.5),
		NoiseSD:      3.5,
		Replicates:   replicates,
		MinSuccesses: min,
		Grid:         model.LinSpace(0.1, 520, 60),
		Candidates: []Candidate{
			{Model: Langmuir, P0: []float64{142.8 * 0.9, 18.5 * 1.1}},
			{Model: Freundlich, P0: []float64{28.4, 3.1}, Skip: 1},
		},
		Options: DefaultOptions,
	}
}

func TestBootstrap_BandOrdering(t *testing.T) {
	ens, err := Bootstrap(randx.New(2026, 1), langmuirSpec(60, 1))
	if err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	if ens.Succeeded == 0 || ens.Succeeded > ens.Attempted {
		t.Fatalf("succeeded %d of %d", ens.Succeeded, ens.Attempted)
	}
	for ci := range ens.Curves {
		if len(ens.Curves[ci]) != ens.Succeeded {
			t.Fatalf("candidate %d has %d curves, want %d", ci, len(ens.Curves[ci]), ens.Succeeded)
		}
		band, err := PercentileBand(ens.Curves[ci], 2.5, 97.5)
		if err != nil {
			t.Fatalf("PercentileBand: %v", err)
		}
		for j := range band.Median {
			if !(band.Lower[j] <= band.Median[j] && band.Median[j] <= band.Upper[j]) {
				t.Fatalf("candidate %d point %d: %v <= %v <= %v violated", ci, j, band.Lower[j], band.Median[j], band.Upper[j])
			}
		}
	}
}

func TestBootstrap_Reproducible(t *testing.T) {
	a, err := Bootstrap(randx.New(2026, 1), langmuirSpec(20, 1))
	if err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	b, err := Bootstrap(randx.New(2026, 1), langmuirSpec(20, 1))
	if err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("ensembles differ across identical runs")
	}
}

func TestBootstrap_InsufficientEnsemble(t *testing.T) {
	ui.Init(true)
	var buf bytes.Buffer
	SetLogger(&buf)
	defer SetLogger(nil)

	spec := langmuirSpec(5, 1)
	spec.Candidates = []Candidate{{
		Model: Model{Name: "nan", Params: []string{"a"}, Eval: func(float64, []float64) float64 { return math.NaN() }},
		P0:    []float64{1},
	}}
	ens, err := Bootstrap(randx.New(1, 1), spec)
	if !errors.Is(err, ErrInsufficientEnsemble) {
		t.Fatalf("expected ErrInsufficientEnsemble, got %v", err)
	}
	if ens.Succeeded != 0 || ens.Attempted != 5 {
		t.Fatalf("ensemble = %d/%d", ens.Succeeded, ens.Attempted)
	}
	if !strings.Contains(buf.String(), "figure=isotherms") || !strings.Contains(buf.String(), "dropped") {
		t.Fatalf("expected drop log, got %q", buf.String())
	}
}

func TestBootstrap_MinSuccessesMustBePositive(t *testing.T) {
	if _, err := Bootstrap(randx.New(1, 1), langmuirSpec(5, 0)); err == nil {
		t.Fatalf("expected error for MinSuccesses=0")
	}
}

func TestPercentileBand_Empty(t *testing.T) {
	if _, err := PercentileBand(nil, 2.5, 97.5); !errors.Is(err, ErrInsufficientEnsemble) {
		t.Fatalf("expected ErrInsufficientEnsemble, got %v", err)
	}
}
