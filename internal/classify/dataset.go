// Package classify implements the water-quality classifier: a synthetic
// labelled dataset, standard scaling, stratified splitting, a random forest
// of CART trees and its evaluation metrics, plus a t-SNE embedding for
// visual inspection.
package classify

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/aquaneuron/aquaneuron-sim/internal/catalog"
	"github.com/aquaneuron/aquaneuron-sim/internal/randx"
)

// Dataset is a set of labelled feature vectors.
type Dataset struct {
	X       [][]float64
	Y       []int
	Classes int
}

// Len returns the number of samples.
func (d Dataset) Len() int { return len(d.Y) }

// Subset returns the rows at idx, in order.
func (d Dataset) Subset(idx []int) Dataset {
	out := Dataset{X: make([][]float64, len(idx)), Y: make([]int, len(idx)), Classes: d.Classes}
	for i, j := range idx {
		out.X[i] = d.X[j]
		out.Y[i] = d.Y[j]
	}
	return out
}

// ClassCounts returns the number of samples per class.
func (d Dataset) ClassCounts() []int {
	counts := make([]int, d.Classes)
	for _, y := range d.Y {
		counts[y]++
	}
	return counts
}

// Synthesize draws perClass samples for every class, class by class and
// feature by feature, from the per-class Gaussian generators.
func Synthesize(rng *randx.Stream, classes []catalog.WaterClass, perClass int) (Dataset, error) {
	if len(classes) == 0 || perClass <= 0 {
		return Dataset{}, fmt.Errorf("synthesize: need classes and a positive sample count")
	}
	width := len(classes[0].Features)
	d := Dataset{Classes: len(classes)}
	for label, c := range classes {
		if len(c.Features) != width {
			return Dataset{}, fmt.Errorf("synthesize: class %q has %d features, want %d", c.Name, len(c.Features), width)
		}
		for s := 0; s < perClass; s++ {
			row := make([]float64, width)
			for j, g := range c.Features {
				row[j] = rng.Normal(g.Mean, g.SD)
			}
			d.X = append(d.X, row)
			d.Y = append(d.Y, label)
		}
	}
	return d, nil
}

// Scaler standardises each feature to zero mean and unit population
// variance.
type Scaler struct {
	Mean  []float64
	Scale []float64
}

// FitScaler learns column means and standard deviations from X.
func FitScaler(X [][]float64) Scaler {
	if len(X) == 0 {
		return Scaler{}
	}
	width := len(X[0])
	s := Scaler{Mean: make([]float64, width), Scale: make([]float64, width)}
	col := make([]float64, len(X))
	for j := 0; j < width; j++ {
		for i, row := range X {
			col[i] = row[j]
		}
		s.Mean[j], s.Scale[j] = stat.PopMeanStdDev(col, nil)
		if s.Scale[j] == 0 {
			s.Scale[j] = 1
		}
	}
	return s
}

// Transform returns a standardised copy of X.
func (s Scaler) Transform(X [][]float64) [][]float64 {
	out := make([][]float64, len(X))
	for i, row := range X {
		r := make([]float64, len(row))
		for j, v := range row {
			r[j] = (v - s.Mean[j]) / s.Scale[j]
		}
		out[i] = r
	}
	return out
}

// byClass groups sample indices by label.
func byClass(y []int, classes int) [][]int {
	groups := make([][]int, classes)
	for i, label := range y {
		groups[label] = append(groups[label], i)
	}
	return groups
}

// StratifiedSplit shuffles each class and holds out round(testFrac·n_c) of
// its samples. Both index sets are returned in ascending order.
func StratifiedSplit(rng *randx.Stream, y []int, classes int, testFrac float64) (train, test []int, err error) {
	if testFrac <= 0 || testFrac >= 1 {
		return nil, nil, fmt.Errorf("stratified split: test fraction %g outside (0, 1)", testFrac)
	}
	for c, idx := range byClass(y, classes) {
		nTest := int(float64(len(idx))*testFrac + 0.5)
		if nTest == 0 || nTest == len(idx) {
			return nil, nil, fmt.Errorf("stratified split: class %d with %d samples cannot be split at %g", c, len(idx), testFrac)
		}
		rng.Shuffle(idx)
		test = append(test, idx[:nTest]...)
		train = append(train, idx[nTest:]...)
	}
	sort.Ints(train)
	sort.Ints(test)
	return train, test, nil
}

// Fold is one train/test partition of a k-fold split.
type Fold struct {
	Train []int
	Test  []int
}

// StratifiedKFold shuffles each class and deals its samples round-robin
// into k folds, so every fold keeps the class proportions.
func StratifiedKFold(rng *randx.Stream, y []int, classes, k int) ([]Fold, error) {
	if k < 2 {
		return nil, fmt.Errorf("k-fold: need at least 2 folds, got %d", k)
	}
	member := make([]int, len(y))
	for c, idx := range byClass(y, classes) {
		if len(idx) < k {
			return nil, fmt.Errorf("k-fold: class %d has %d samples for %d folds", c, len(idx), k)
		}
		rng.Shuffle(idx)
		for i, j := range idx {
			member[j] = i % k
		}
	}
	folds := make([]Fold, k)
	for i, f := range member {
		for j := range folds {
			if j == f {
				folds[j].Test = append(folds[j].Test, i)
			} else {
				folds[j].Train = append(folds[j].Train, i)
			}
		}
	}
	return folds, nil
}
