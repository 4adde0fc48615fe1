package stats

import "fmt"

// Agreement holds Bland-Altman statistics of a test method against a
// reference.
type Agreement struct {
	Means    []float64
	Diffs    []float64
	Bias     float64
	SD       float64 // population standard deviation of Diffs
	LowerLoA float64
	UpperLoA float64
}

// BlandAltman compares test against ref pairwise: mean of each pair against
// test-ref, with limits of agreement at bias ± 1.96·SD.
func BlandAltman(ref, test []float64) (Agreement, error) {
	if len(ref) != len(test) {
		return Agreement{}, fmt.Errorf("%w: ref has %d, test has %d", ErrLength, len(ref), len(test))
	}
	if len(ref) == 0 {
		return Agreement{}, ErrEmpty
	}
	a := Agreement{Means: make([]float64, len(ref)), Diffs: make([]float64, len(ref))}
	for i := range ref {
		a.Means[i] = (ref[i] + test[i]) / 2
		a.Diffs[i] = test[i] - ref[i]
	}
	a.Bias, a.SD = PopStd(a.Diffs)
	a.LowerLoA = a.Bias - 1.96*a.SD
	a.UpperLoA = a.Bias + 1.96*a.SD
	return a, nil
}

// ResidualSet is y minus the fitted line, with ±2 population SD limits.
type ResidualSet struct {
	Values []float64
	SD     float64
	Upper  float64
	Lower  float64
}

// Residuals returns y - reg(x).
func Residuals(x, y []float64, reg Regression) (ResidualSet, error) {
	if len(x) != len(y) {
		return ResidualSet{}, fmt.Errorf("%w: x has %d, y has %d", ErrLength, len(x), len(y))
	}
	if len(x) == 0 {
		return ResidualSet{}, ErrEmpty
	}
	rs := ResidualSet{Values: make([]float64, len(x))}
	for i := range x {
		rs.Values[i] = y[i] - reg.Slope*x[i] - reg.Intercept
	}
	_, rs.SD = PopStd(rs.Values)
	rs.Upper, rs.Lower = 2*rs.SD, -2*rs.SD
	return rs, nil
}
