package model

import (
	"math"
	"testing"
)

func almost(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func TestLangmuir_HalfCapacityAtKd(t *testing.T) {
	if got := Langmuir(18.5, 142.8, 18.5); got != 71.4 {
		t.Fatalf("Langmuir(18.5, 142.8, 18.5) = %v, want exactly 71.4", got)
	}
}

func TestLangmuir_ZeroAtOrigin(t *testing.T) {
	for _, p := range [][2]float64{{142.8, 18.5}, {98.3, 32.1}, {1, 1e-3}, {1e4, 1e4}} {
		if got := Langmuir(0, p[0], p[1]); got != 0 {
			t.Fatalf("Langmuir(0, %v, %v) = %v", p[0], p[1], got)
		}
	}
}

func TestLangmuir_NonNegativeMonotoneAsymptotic(t *testing.T) {
	cs := LinSpace(0, 1000, 500)
	qs := LangmuirCurve(cs, 117.6, 12.4)
	for i, q := range qs {
		if q < 0 {
			t.Fatalf("negative coverage %v at c=%v", q, cs[i])
		}
		if i > 0 && q < qs[i-1] {
			t.Fatalf("not monotone at c=%v", cs[i])
		}
	}
	if got := Langmuir(1e6, 100, 10); math.Abs(got-100)/100 > 0.01 {
		t.Fatalf("Langmuir(1e6, 100, 10) = %v, want within 1%% of 100", got)
	}
}

func TestFreundlich_ConcaveIncreasing(t *testing.T) {
	cs := LinSpace(0.1, 500, 200)
	for _, n := range []float64{1.5, 2.8, 3.1, 3.4} {
		qs := FreundlichCurve(cs, 28.4, n)
		for i := 1; i < len(qs); i++ {
			if qs[i] <= qs[i-1] {
				t.Fatalf("n=%v not strictly increasing at c=%v", n, cs[i])
			}
		}
		for i := 1; i+1 < len(qs); i++ {
			// Equal spacing: second difference must be negative.
			if qs[i+1]-2*qs[i]+qs[i-1] >= 0 {
				t.Fatalf("n=%v not concave at c=%v", n, cs[i])
			}
		}
	}
}

func TestFreundlich_NegativeIsNaN(t *testing.T) {
	if !math.IsNaN(Freundlich(-1, 1, 2)) {
		t.Fatalf("expected NaN for negative concentration")
	}
}

func TestT90(t *testing.T) {
	for _, tau := range []float64{1, 22, 28, 42, 1000} {
		if got := FirstOrder(T90(tau), tau); !almost(got, 0.9, 1e-12) {
			t.Fatalf("FirstOrder(T90(%v)) = %v, want 0.9", tau, got)
		}
	}
	if got := T90(28); !almost(got, 64.47, 0.01) {
		t.Fatalf("T90(28) = %v, want ~64.5", got)
	}
}

func TestResponsePercent(t *testing.T) {
	if got := ResponsePercent(1000, 0.68, 18.5, 0); got != 0 {
		t.Fatalf("response at zero = %v", got)
	}
	if got := ResponsePercent(1000, 0.68, 18.5, 18.5); !almost(got, 34, 1e-9) {
		t.Fatalf("response at Kd = %v, want 34", got)
	}
}

func TestDeltaG(t *testing.T) {
	if got := DeltaG(18.5, 75); !almost(got, -37.70, 0.01) {
		t.Fatalf("DeltaG(As) = %v", got)
	}
	if DeltaG(12.4, 207) >= DeltaG(32.1, 19) {
		t.Fatalf("expected Pb binding to be more favourable than F")
	}
}

func TestGrids(t *testing.T) {
	ls := LinSpace(0.1, 520, 600)
	if len(ls) != 600 || ls[0] != 0.1 || ls[599] != 520 {
		t.Fatalf("LinSpace endpoints: %v .. %v (%d)", ls[0], ls[len(ls)-1], len(ls))
	}
	lg := LogSpace(-2, 6, 300)
	if len(lg) != 300 || !almost(lg[0], 0.01, 1e-12) || !almost(lg[299], 1e6, 1e-3) {
		t.Fatalf("LogSpace endpoints: %v .. %v", lg[0], lg[len(lg)-1])
	}
}

func TestNyquist_Quadrant(t *testing.T) {
	c := Circuit{Rs: 50, Rct: 3200, T: 1.2e-7, N: 0.88, Sigma: 80}
	pts := c.Nyquist(LogSpace(-2, 6, 300))
	if len(pts) == 0 {
		t.Fatalf("expected points in the quadrant")
	}
	for _, p := range pts {
		if p.Re <= 0 || p.NegIm <= 0 || p.Re >= 1.6*c.Rct {
			t.Fatalf("point outside quadrant: %+v", p)
		}
	}
}

func TestImpedance_HighFrequencyApproachesRs(t *testing.T) {
	c := Circuit{Rs: 50, Rct: 2000, T: 1.2e-7, N: 0.88, Sigma: 80}
	z := c.Impedance(1e9)
	if real(z) < 50 || real(z) > 60 {
		t.Fatalf("Re(Z) at 1 GHz = %v, want close to Rs", real(z))
	}
}
