package stats

import (
	"errors"
	"math"
	"testing"

	"github.com/aquaneuron/aquaneuron-sim/internal/randx"
)

func near(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func TestLinRegress_ExactLine(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	y := []float64{3, 5, 7, 9, 11}
	reg, err := LinRegress(x, y)
	if err != nil {
		t.Fatalf("LinRegress: %v", err)
	}
	if !near(reg.Slope, 2, 1e-12) || !near(reg.Intercept, 1, 1e-12) {
		t.Fatalf("got slope=%v intercept=%v", reg.Slope, reg.Intercept)
	}
	if !near(reg.R2, 1, 1e-12) || !near(reg.StdErr, 0, 1e-12) {
		t.Fatalf("got R2=%v stderr=%v", reg.R2, reg.StdErr)
	}
	if got := reg.Predict(10); !near(got, 21, 1e-12) {
		t.Fatalf("Predict(10) = %v", got)
	}
}

func TestLinRegress_StdErrMatchesClosedForm(t *testing.T) {
	// y = x plus alternating ±1 noise; residual SS and Sxx computed by hand.
	x := []float64{0, 1, 2, 3}
	y := []float64{1, 0, 3, 2}
	reg, err := LinRegress(x, y)
	if err != nil {
		t.Fatalf("LinRegress: %v", err)
	}
	if !near(reg.Slope, 0.6, 1e-12) || !near(reg.Intercept, 0.6, 1e-12) {
		t.Fatalf("slope=%v intercept=%v", reg.Slope, reg.Intercept)
	}
	// residuals: 0.4, -1.2, 1.2, -0.4 → SSE 3.2; Sxx = 5.
	want := math.Sqrt(3.2/2) / math.Sqrt(5)
	if !near(reg.StdErr, want, 1e-12) {
		t.Fatalf("stderr=%v want %v", reg.StdErr, want)
	}
}

func TestLinRegress_Errors(t *testing.T) {
	if _, err := LinRegress([]float64{1, 2}, []float64{1}); !errors.Is(err, ErrLength) {
		t.Fatalf("expected ErrLength, got %v", err)
	}
	if _, err := LinRegress([]float64{1, 1, 1}, []float64{1, 2, 3}); !errors.Is(err, ErrDegenerate) {
		t.Fatalf("expected ErrDegenerate, got %v", err)
	}
}

func TestPearson(t *testing.T) {
	r, err := Pearson([]float64{1, 2, 3, 4}, []float64{8, 6, 4, 2})
	if err != nil || !near(r, -1, 1e-12) {
		t.Fatalf("Pearson = %v, %v", r, err)
	}
}

func TestPercentile_LinearInterpolation(t *testing.T) {
	xs := []float64{4, 1, 3, 2, 5}
	tests := []struct{ p, want float64 }{
		{0, 1}, {50, 3}, {100, 5}, {25, 2}, {2.5, 1.1}, {97.5, 4.9},
	}
	for _, tt := range tests {
		got, err := Percentile(xs, tt.p)
		if err != nil || !near(got, tt.want, 1e-12) {
			t.Fatalf("Percentile(%v) = %v, %v; want %v", tt.p, got, err, tt.want)
		}
	}
	if xs[0] != 4 {
		t.Fatalf("input was reordered")
	}
	if _, err := Percentile(nil, 50); !errors.Is(err, ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
}

func TestHistogram_CountsAndDensity(t *testing.T) {
	xs := []float64{0, 0.5, 1, 1.5, 2, 2, 3, 4}
	h, err := NewHistogram(xs, 4, true)
	if err != nil {
		t.Fatalf("NewHistogram: %v", err)
	}
	var total, area float64
	for i, c := range h.Counts {
		total += c
		area += h.Heights[i] * (h.Edges[i+1] - h.Edges[i])
	}
	if total != float64(len(xs)) {
		t.Fatalf("counts sum %v, want %d (max must land in last bin)", total, len(xs))
	}
	if !near(area, 1, 1e-12) {
		t.Fatalf("density area = %v", area)
	}
}

func TestMonteCarloLOD_MedianInRangeAndIntervalPositive(t *testing.T) {
	budgets := []LODBudget{{2.0, 0.4, 0.82}, {3.0, 0.6, 0.61}, {1.5, 0.3, 0.91}}
	for i, b := range budgets {
		res, err := MonteCarloLOD(randx.New(2026, uint64(i)), b, 5000, 0, 20)
		if err != nil {
			t.Fatalf("MonteCarloLOD: %v", err)
		}
		iv := res.Interval
		if iv.Median <= 0 || iv.Median >= 20 {
			t.Fatalf("median %v outside (0, 20)", iv.Median)
		}
		if !(iv.Lower <= iv.Median && iv.Median <= iv.Upper) || iv.Width() <= 0 {
			t.Fatalf("bad interval %+v", iv)
		}
		if len(res.Samples) == 0 || len(res.Samples) > res.Drawn {
			t.Fatalf("kept %d of %d", len(res.Samples), res.Drawn)
		}
		if len(res.Histogram.Counts) != 50 {
			t.Fatalf("histogram bins = %d", len(res.Histogram.Counts))
		}
		// Nominal LOD is (bl + 3σ)/s.
		nominal := (b.Baseline + 3*b.BaselineNoise) / b.Sensitivity
		if math.Abs(iv.Median-nominal)/nominal > 0.05 {
			t.Fatalf("median %v far from nominal %v", iv.Median, nominal)
		}
	}
}

func TestMonteCarloLOD_EmptyAfterFilter(t *testing.T) {
	_, err := MonteCarloLOD(randx.New(1, 1), LODBudget{100, 1, 1}, 100, 0, 20)
	if !errors.Is(err, ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
}

func TestBlandAltman(t *testing.T) {
	ref := []float64{10, 20, 30, 40}
	test := []float64{11, 19, 32, 42}
	a, err := BlandAltman(ref, test)
	if err != nil {
		t.Fatalf("BlandAltman: %v", err)
	}
	// diffs 1, -1, 2, 2 → bias 1, population sd sqrt(1.5).
	if !near(a.Bias, 1, 1e-12) || !near(a.SD, math.Sqrt(1.5), 1e-12) {
		t.Fatalf("bias=%v sd=%v", a.Bias, a.SD)
	}
	if !near(a.UpperLoA-a.Bias, 1.96*a.SD, 1e-12) || !near(a.Bias-a.LowerLoA, 1.96*a.SD, 1e-12) {
		t.Fatalf("limits %v..%v", a.LowerLoA, a.UpperLoA)
	}
	if a.Means[0] != 10.5 || a.Diffs[1] != -1 {
		t.Fatalf("means=%v diffs=%v", a.Means, a.Diffs)
	}
}

func TestResiduals(t *testing.T) {
	x := []float64{0, 1, 2, 3}
	y := []float64{1, 0, 3, 2}
	reg, _ := LinRegress(x, y)
	rs, err := Residuals(x, y, reg)
	if err != nil {
		t.Fatalf("Residuals: %v", err)
	}
	want := []float64{0.4, -1.2, 1.2, -0.4}
	for i := range want {
		if !near(rs.Values[i], want[i], 1e-12) {
			t.Fatalf("residuals = %v", rs.Values)
		}
	}
	if !near(rs.Upper, 2*rs.SD, 0) || !near(rs.Lower, -2*rs.SD, 0) {
		t.Fatalf("limits %v %v", rs.Lower, rs.Upper)
	}
}
