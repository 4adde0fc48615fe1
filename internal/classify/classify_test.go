package classify

import (
	"context"
	"math"
	"reflect"
	"testing"

	"github.com/aquaneuron/aquaneuron-sim/internal/catalog"
	"github.com/aquaneuron/aquaneuron-sim/internal/randx"
)

func waterData(t *testing.T, perClass int) Dataset {
	t.Helper()
	d, err := Synthesize(randx.New(42, 0), catalog.WaterClasses, perClass)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	d.X = FitScaler(d.X).Transform(d.X)
	return d
}

func TestSynthesize_Shape(t *testing.T) {
	d := waterData(t, 30)
	if d.Len() != 150 || d.Classes != 5 || len(d.X[0]) != 6 {
		t.Fatalf("dataset %d×%d with %d classes", d.Len(), len(d.X[0]), d.Classes)
	}
	for k, c := range d.ClassCounts() {
		if c != 30 {
			t.Fatalf("class %d has %d samples", k, c)
		}
	}
}

func TestScaler_ZeroMeanUnitVariance(t *testing.T) {
	X := [][]float64{{1, 10}, {2, 10}, {3, 10}}
	s := FitScaler(X)
	got := s.Transform(X)
	want := math.Sqrt(1.5)
	if math.Abs(got[0][0]+want) > 1e-12 || got[1][0] != 0 || math.Abs(got[2][0]-want) > 1e-12 {
		t.Fatalf("column 0 = %v, %v, %v", got[0][0], got[1][0], got[2][0])
	}
	if got[0][1] != 0 {
		t.Fatalf("constant column should map to 0, got %v", got[0][1])
	}
}

func TestStratifiedSplit_KeepsProportions(t *testing.T) {
	d := waterData(t, 300)
	train, test, err := StratifiedSplit(randx.New(42, 1), d.Y, d.Classes, 0.2)
	if err != nil {
		t.Fatalf("StratifiedSplit: %v", err)
	}
	if len(train) != 1200 || len(test) != 300 {
		t.Fatalf("train=%d test=%d", len(train), len(test))
	}
	for k, c := range d.Subset(test).ClassCounts() {
		if c != 60 {
			t.Fatalf("class %d has %d test samples, want 60", k, c)
		}
	}
	seen := map[int]bool{}
	for _, i := range append(append([]int(nil), train...), test...) {
		if seen[i] {
			t.Fatalf("index %d in both sets", i)
		}
		seen[i] = true
	}
}

func TestStratifiedKFold_Partition(t *testing.T) {
	d := waterData(t, 20)
	folds, err := StratifiedKFold(randx.New(42, 2), d.Y, d.Classes, 5)
	if err != nil {
		t.Fatalf("StratifiedKFold: %v", err)
	}
	count := make([]int, d.Len())
	for _, f := range folds {
		if len(f.Test)+len(f.Train) != d.Len() {
			t.Fatalf("fold does not cover the data")
		}
		for k, c := range d.Subset(f.Test).ClassCounts() {
			if c != 4 {
				t.Fatalf("class %d has %d samples in a fold, want 4", k, c)
			}
		}
		for _, i := range f.Test {
			count[i]++
		}
	}
	for i, c := range count {
		if c != 1 {
			t.Fatalf("sample %d tested %d times", i, c)
		}
	}
}

func smallForest(workers int) Forest {
	return Forest{Trees: 25, MaxDepth: 12, MinSamplesLeaf: 2, Workers: workers}
}

func TestForest_FitsSeparableClasses(t *testing.T) {
	d := waterData(t, 100)
	train, test, err := StratifiedSplit(randx.New(42, 1), d.Y, d.Classes, 0.2)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	m, err := smallForest(0).Fit(context.Background(), randx.New(42, 3), d.Subset(train))
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	te := d.Subset(test)
	pred := m.Predict(te.X)
	if acc := Accuracy(te.Y, pred); acc < 0.9 || acc > 1 {
		t.Fatalf("accuracy = %v", acc)
	}

	cm, err := NewConfusion(te.Y, pred, d.Classes)
	if err != nil {
		t.Fatalf("NewConfusion: %v", err)
	}
	if !reflect.DeepEqual(cm.RowSums(), te.ClassCounts()) {
		t.Fatalf("row sums %v, class counts %v", cm.RowSums(), te.ClassCounts())
	}

	rocs, prs, err := OneVsRest(te.Y, m.PredictProba(te.X), d.Classes)
	if err != nil {
		t.Fatalf("OneVsRest: %v", err)
	}
	for k := range rocs {
		if rocs[k].AUC < 0 || rocs[k].AUC > 1 || prs[k].AP < 0 || prs[k].AP > 1 {
			t.Fatalf("class %d: AUC=%v AP=%v", k, rocs[k].AUC, prs[k].AP)
		}
	}

	mean, sd := m.Importances()
	var sum float64
	for j := range mean {
		sum += mean[j]
		if sd[j] < 0 {
			t.Fatalf("negative spread")
		}
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Fatalf("importances sum to %v", sum)
	}
	// The three sensor channels carry the class signal.
	for j := catalog.SensorFeatures; j < len(mean); j++ {
		if mean[j] > mean[0] && mean[j] > mean[1] && mean[j] > mean[2] {
			t.Fatalf("auxiliary feature %d outranks every sensor channel: %v", j, mean)
		}
	}
}

func TestForest_IndependentOfWorkerCount(t *testing.T) {
	d := waterData(t, 40)
	a, err := smallForest(1).Fit(context.Background(), randx.New(7, 7), d)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	b, err := smallForest(8).Fit(context.Background(), randx.New(7, 7), d)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if !reflect.DeepEqual(a.PredictProba(d.X), b.PredictProba(d.X)) {
		t.Fatalf("predictions depend on worker count")
	}
}

func TestForest_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := smallForest(1).Fit(ctx, randx.New(1, 1), waterData(t, 10)); err == nil {
		t.Fatalf("expected error from cancelled context")
	}
}

func TestCrossValidate_AccuracyInUnitInterval(t *testing.T) {
	d := waterData(t, 30)
	folds, err := StratifiedKFold(randx.New(42, 2), d.Y, d.Classes, 5)
	if err != nil {
		t.Fatalf("StratifiedKFold: %v", err)
	}
	cv, err := smallForest(0).CrossValidate(context.Background(), randx.New(42, 4), d, folds)
	if err != nil {
		t.Fatalf("CrossValidate: %v", err)
	}
	if len(cv.Scores) != 5 || cv.Mean < 0 || cv.Mean > 1 || cv.SD < 0 {
		t.Fatalf("cv = %+v", cv)
	}
	for _, s := range cv.Scores {
		if s < 0 || s > 1 {
			t.Fatalf("fold accuracy %v", s)
		}
	}
}

func TestROC_KnownExample(t *testing.T) {
	roc, err := NewROC([]bool{false, false, true, true}, []float64{0.1, 0.4, 0.35, 0.8})
	if err != nil {
		t.Fatalf("NewROC: %v", err)
	}
	if math.Abs(roc.AUC-0.75) > 1e-12 {
		t.Fatalf("AUC = %v, want 0.75", roc.AUC)
	}
	pr, err := NewPR([]bool{false, false, true, true}, []float64{0.1, 0.4, 0.35, 0.8})
	if err != nil {
		t.Fatalf("NewPR: %v", err)
	}
	if math.Abs(pr.AP-5.0/6) > 1e-12 {
		t.Fatalf("AP = %v, want 0.8333", pr.AP)
	}
	if pr.Recall[len(pr.Recall)-1] != 0 || pr.Precision[len(pr.Precision)-1] != 1 {
		t.Fatalf("curve not closed at (0, 1)")
	}
}

func TestROC_RandomScoresNearHalf(t *testing.T) {
	rng := randx.New(3, 3)
	n := 4000
	pos := make([]bool, n)
	scores := make([]float64, n)
	for i := range pos {
		pos[i] = rng.Float64() < 0.5
		scores[i] = rng.Float64()
	}
	roc, err := NewROC(pos, scores)
	if err != nil {
		t.Fatalf("NewROC: %v", err)
	}
	if math.Abs(roc.AUC-0.5) > 0.05 {
		t.Fatalf("random AUC = %v", roc.AUC)
	}
}

func TestROC_SingleClassIsError(t *testing.T) {
	if _, err := NewROC([]bool{true, true}, []float64{0.1, 0.2}); err == nil {
		t.Fatalf("expected error without negatives")
	}
}

func TestTSNE_SeparatesClusters(t *testing.T) {
	rng := randx.New(5, 5)
	var X [][]float64
	for c := 0; c < 2; c++ {
		for i := 0; i < 30; i++ {
			X = append(X, []float64{float64(c)*20 + rng.Normal(0, 1), rng.Normal(0, 1), rng.Normal(0, 1)})
		}
	}
	emb, err := TSNE{Perplexity: 5, Iterations: 300}.Embed(X)
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	centroid := func(lo, hi int) [2]float64 {
		var c [2]float64
		for _, p := range emb.Points[lo:hi] {
			c[0] += p[0] / float64(hi-lo)
			c[1] += p[1] / float64(hi-lo)
		}
		return c
	}
	a, b := centroid(0, 30), centroid(30, 60)
	between := math.Hypot(a[0]-b[0], a[1]-b[1])
	var within float64
	for _, p := range emb.Points[:30] {
		within = math.Max(within, math.Hypot(p[0]-a[0], p[1]-a[1]))
	}
	if between <= within {
		t.Fatalf("clusters overlap: between=%v within=%v", between, within)
	}

	again, _ := TSNE{Perplexity: 5, Iterations: 300}.Embed(X)
	if !reflect.DeepEqual(emb, again) {
		t.Fatalf("embedding not reproducible")
	}
}

func TestTSNE_TooFewSamples(t *testing.T) {
	if _, err := (TSNE{Perplexity: 35, Iterations: 10}).Embed([][]float64{{1, 2}, {3, 4}}); err == nil {
		t.Fatalf("expected error")
	}
}
