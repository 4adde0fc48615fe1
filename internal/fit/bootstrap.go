package fit

import (
	"errors"
	"fmt"

	"github.com/aquaneuron/aquaneuron-sim/internal/randx"
	"github.com/aquaneuron/aquaneuron-sim/internal/stats"
)

// ErrInsufficientEnsemble is returned when fewer replicates than the
// configured minimum produced a successful fit.
var ErrInsufficientEnsemble = errors.New("fit: insufficient bootstrap ensemble")

// Candidate is one model refitted on every replicate. Skip drops that many
// leading points from the fit, e.g. to avoid c = 0 for Freundlich.
type Candidate struct {
	Model Model
	P0    []float64
	Skip  int
}

// BootstrapSpec describes a noise-injection refit ensemble.
type BootstrapSpec struct {
	Label        string    // figure id used in logs
	X            []float64 // design points
	Truth        []float64 // noise-free response at X
	NoiseSD      float64
	Replicates   int
	MinSuccesses int
	Grid         []float64 // where fitted curves are evaluated
	Candidates   []Candidate
	Options      Options
}

// Ensemble holds, per candidate, the fitted parameters and curves of every
// replicate in which all candidates converged.
type Ensemble struct {
	Params    [][][]float64 // [candidate][member][param]
	Curves    [][][]float64 // [candidate][member][grid point]
	Attempted int
	Succeeded int
}

// Bootstrap repeats noise injection and refit spec.Replicates times. A
// replicate is kept only if every candidate converged; failures are dropped
// and logged. Fewer than spec.MinSuccesses kept replicates is an error.
func Bootstrap(rng *randx.Stream, spec BootstrapSpec) (Ensemble, error) {
	if len(spec.X) != len(spec.Truth) {
		return Ensemble{}, fmt.Errorf("bootstrap %s: %d design points, %d responses", spec.Label, len(spec.X), len(spec.Truth))
	}
	if spec.MinSuccesses < 1 {
		return Ensemble{}, fmt.Errorf("bootstrap %s: min successes must be at least 1", spec.Label)
	}
	for _, c := range spec.Candidates {
		if c.Skip < 0 || c.Skip >= len(spec.X) {
			return Ensemble{}, fmt.Errorf("bootstrap %s: skip %d out of range for %s", spec.Label, c.Skip, c.Model.Name)
		}
	}

	nc := len(spec.Candidates)
	ens := Ensemble{
		Params:    make([][][]float64, nc),
		Curves:    make([][][]float64, nc),
		Attempted: spec.Replicates,
	}

	results := make([]Result, nc)
	dropped := 0
	for rep := 0; rep < spec.Replicates; rep++ {
		noisy := rng.Jitter(spec.Truth, spec.NoiseSD)

		ok := true
		for ci, c := range spec.Candidates {
			res, err := LeastSquares(c.Model, spec.X[c.Skip:], noisy[c.Skip:], c.P0, spec.Options)
			if err != nil {
				if logger.Enabled() {
					logf(spec.Label, "replicate %d dropped: %v", rep, err)
				}
				ok = false
				break
			}
			results[ci] = res
		}
		if !ok {
			dropped++
			continue
		}
		for ci, c := range spec.Candidates {
			ens.Params[ci] = append(ens.Params[ci], results[ci].Params)
			ens.Curves[ci] = append(ens.Curves[ci], c.Model.Curve(spec.Grid, results[ci].Params))
		}
		ens.Succeeded++
	}

	logf(spec.Label, "bootstrap kept %d of %d replicates (%d dropped)", ens.Succeeded, ens.Attempted, dropped)
	if ens.Succeeded < spec.MinSuccesses {
		return ens, fmt.Errorf("bootstrap %s: %d of %d replicates converged, need %d: %w",
			spec.Label, ens.Succeeded, ens.Attempted, spec.MinSuccesses, ErrInsufficientEnsemble)
	}
	return ens, nil
}

// Band is a pointwise percentile envelope over an ensemble of curves.
type Band struct {
	Lower  []float64
	Median []float64
	Upper  []float64
}

// PercentileBand reduces curves pointwise to the lo, 50th and hi
// percentiles.
func PercentileBand(curves [][]float64, lo, hi float64) (Band, error) {
	if len(curves) == 0 {
		return Band{}, fmt.Errorf("percentile band: %w", ErrInsufficientEnsemble)
	}
	width := len(curves[0])
	b := Band{
		Lower:  make([]float64, width),
		Median: make([]float64, width),
		Upper:  make([]float64, width),
	}
	column := make([]float64, len(curves))
	for j := 0; j < width; j++ {
		for i, c := range curves {
			if len(c) != width {
				return Band{}, fmt.Errorf("percentile band: member %d has %d points, want %d", i, len(c), width)
			}
			column[i] = c[j]
		}
		iv, err := stats.CentralInterval(column, lo, hi)
		if err != nil {
			return Band{}, err
		}
		b.Lower[j], b.Median[j], b.Upper[j] = iv.Lower, iv.Median, iv.Upper
	}
	return b, nil
}
