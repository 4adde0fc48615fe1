// Package stats implements the descriptive statistics used by the figures:
// ordinary least squares, correlation, percentiles, histograms, Monte Carlo
// detection limits and Bland-Altman agreement.
package stats

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var (
	// ErrEmpty is returned when a reduction is asked of an empty sample.
	ErrEmpty = errors.New("stats: empty sample")
	// ErrLength is returned for paired samples of different length.
	ErrLength = errors.New("stats: length mismatch")
	// ErrDegenerate is returned when x has no spread.
	ErrDegenerate = errors.New("stats: degenerate input")
)

// Regression is an ordinary least-squares line y = Slope·x + Intercept.
type Regression struct {
	Slope     float64
	Intercept float64
	R         float64
	R2        float64
	StdErr    float64 // standard error of the slope
	N         int
}

// Predict evaluates the line at x.
func (r Regression) Predict(x float64) float64 { return r.Slope*x + r.Intercept }

// LinRegress fits y on x by ordinary least squares.
func LinRegress(x, y []float64) (Regression, error) {
	if len(x) != len(y) {
		return Regression{}, fmt.Errorf("%w: x has %d, y has %d", ErrLength, len(x), len(y))
	}
	if len(x) < 3 {
		return Regression{}, fmt.Errorf("%w: need at least 3 points, got %d", ErrEmpty, len(x))
	}
	if floats.Max(x) == floats.Min(x) {
		return Regression{}, fmt.Errorf("%w: constant x", ErrDegenerate)
	}

	alpha, beta := stat.LinearRegression(x, y, nil, false)
	r := stat.Correlation(x, y, nil)

	mx := stat.Mean(x, nil)
	var ssx, sse float64
	for i := range x {
		ssx += (x[i] - mx) * (x[i] - mx)
		e := y[i] - (alpha + beta*x[i])
		sse += e * e
	}
	n := len(x)
	return Regression{
		Slope:     beta,
		Intercept: alpha,
		R:         r,
		R2:        r * r,
		StdErr:    math.Sqrt(sse/float64(n-2)) / math.Sqrt(ssx),
		N:         n,
	}, nil
}

// Pearson returns the sample correlation coefficient of x and y.
func Pearson(x, y []float64) (float64, error) {
	if len(x) != len(y) {
		return 0, fmt.Errorf("%w: x has %d, y has %d", ErrLength, len(x), len(y))
	}
	if len(x) < 2 {
		return 0, ErrEmpty
	}
	return stat.Correlation(x, y, nil), nil
}

// R2 is the coefficient of determination of predictions against observations.
func R2(observed, predicted []float64) float64 {
	return stat.RSquaredFrom(predicted, observed, nil)
}

// PopStd returns the mean and population standard deviation of xs.
func PopStd(xs []float64) (mean, sd float64) {
	return stat.PopMeanStdDev(xs, nil)
}

// Percentile returns the p-th percentile (0 ≤ p ≤ 100) of xs using linear
// interpolation between the closest ranks. xs is not modified.
func Percentile(xs []float64, p float64) (float64, error) {
	if len(xs) == 0 {
		return math.NaN(), ErrEmpty
	}
	sorted := slices.Clone(xs)
	slices.Sort(sorted)
	return percentileSorted(sorted, p), nil
}

func percentileSorted(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	h := (float64(n) - 1) * p / 100
	lo := math.Floor(h)
	i := int(lo)
	if i >= n-1 {
		return sorted[n-1]
	}
	if i < 0 {
		return sorted[0]
	}
	return sorted[i] + (h-lo)*(sorted[i+1]-sorted[i])
}

// Interval is a median with a central percentile interval.
type Interval struct {
	Median float64
	Lower  float64
	Upper  float64
}

// Width is Upper - Lower.
func (iv Interval) Width() float64 { return iv.Upper - iv.Lower }

// CentralInterval returns the median and the [lo, hi] percentiles of xs.
func CentralInterval(xs []float64, lo, hi float64) (Interval, error) {
	if len(xs) == 0 {
		return Interval{}, ErrEmpty
	}
	sorted := slices.Clone(xs)
	slices.Sort(sorted)
	return Interval{
		Median: percentileSorted(sorted, 50),
		Lower:  percentileSorted(sorted, lo),
		Upper:  percentileSorted(sorted, hi),
	}, nil
}

// Histogram is a binned sample. With Density set, Heights integrate to 1.
type Histogram struct {
	Edges   []float64
	Counts  []float64
	Heights []float64
}

// NewHistogram bins xs into n equal-width bins spanning [min, max].
func NewHistogram(xs []float64, n int, density bool) (Histogram, error) {
	if len(xs) == 0 || n <= 0 {
		return Histogram{}, ErrEmpty
	}
	sorted := slices.Clone(xs)
	slices.Sort(sorted)
	lo, hi := sorted[0], sorted[len(sorted)-1]
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	edges := floats.Span(make([]float64, n+1), lo, hi)
	// stat.Histogram treats the last divider as exclusive.
	dividers := slices.Clone(edges)
	dividers[n] = math.Nextafter(hi, math.Inf(1))
	counts := stat.Histogram(nil, dividers, sorted, nil)

	h := Histogram{Edges: edges, Counts: counts, Heights: slices.Clone(counts)}
	if density {
		width := (hi - lo) / float64(n)
		floats.Scale(1/(float64(len(xs))*width), h.Heights)
	}
	return h, nil
}
