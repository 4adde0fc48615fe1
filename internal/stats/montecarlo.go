package stats

import (
	"fmt"

	"github.com/aquaneuron/aquaneuron-sim/internal/randx"
)

// LODBudget is the noise model of a detection-limit estimate.
type LODBudget struct {
	Baseline      float64
	BaselineNoise float64
	Sensitivity   float64
}

// Relative spreads of the Monte Carlo draws.
const (
	baselineSpread    = 0.10
	noiseSpread       = 0.15
	sensitivitySpread = 0.08
)

// LOD is the Monte Carlo limit-of-detection distribution after filtering.
type LOD struct {
	Samples   []float64
	Drawn     int
	Interval  Interval
	Histogram Histogram
}

// MonteCarloLOD draws n (baseline, noise, sensitivity) triples, forms
// (baseline + 3·noise)/sensitivity, keeps values in the open range (lo, hi)
// and summarises them with the median, the 95 % interval and a 50-bin
// density histogram.
func MonteCarloLOD(rng *randx.Stream, b LODBudget, n int, lo, hi float64) (LOD, error) {
	if n <= 0 {
		return LOD{}, fmt.Errorf("monte carlo lod: %w", ErrEmpty)
	}
	baseline := rng.NormalN(n, b.Baseline, b.Baseline*baselineSpread)
	noise := rng.NormalN(n, b.BaselineNoise, b.BaselineNoise*noiseSpread)
	sens := rng.NormalN(n, b.Sensitivity, b.Sensitivity*sensitivitySpread)

	kept := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		lod := (baseline[i] + 3*noise[i]) / sens[i]
		if lod > lo && lod < hi {
			kept = append(kept, lod)
		}
	}
	if len(kept) == 0 {
		return LOD{}, fmt.Errorf("monte carlo lod: no draws inside (%g, %g): %w", lo, hi, ErrEmpty)
	}

	iv, err := CentralInterval(kept, 2.5, 97.5)
	if err != nil {
		return LOD{}, err
	}
	hist, err := NewHistogram(kept, 50, true)
	if err != nil {
		return LOD{}, err
	}
	return LOD{Samples: kept, Drawn: n, Interval: iv, Histogram: hist}, nil
}
