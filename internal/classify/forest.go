package classify

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/aquaneuron/aquaneuron-sim/internal/randx"
)

// Forest configures a random forest.
type Forest struct {
	Trees          int
	MaxDepth       int
	MinSamplesLeaf int
	MaxFeatures    int // 0 means floor(sqrt(features))
	Workers        int // 0 means GOMAXPROCS
	Label          string
}

// Model is a fitted random forest.
type Model struct {
	Trees    []*Tree
	Classes  int
	Features int
}

// Fit grows f.Trees trees on bootstrap samples of d. Every tree gets a
// child stream derived from rng before any work starts, so the fitted model
// does not depend on how the trees are scheduled across workers.
func (f Forest) Fit(ctx context.Context, rng *randx.Stream, d Dataset) (*Model, error) {
	if f.Trees <= 0 {
		return nil, fmt.Errorf("forest: need at least one tree")
	}
	if d.Len() == 0 {
		return nil, fmt.Errorf("forest: empty training set")
	}
	width := len(d.X[0])
	params := TreeParams{MaxDepth: f.MaxDepth, MinSamplesLeaf: f.MinSamplesLeaf, MaxFeatures: f.MaxFeatures}
	if params.MaxFeatures == 0 {
		params.MaxFeatures = SqrtFeatures(width)
	}
	workers := f.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	streams := make([]*randx.Stream, f.Trees)
	for i := range streams {
		streams[i] = rng.Derive(uint64(i))
	}

	m := &Model{Trees: make([]*Tree, f.Trees), Classes: d.Classes, Features: width}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range m.Trees {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			s := streams[i]
			sample := make([]int, d.Len())
			for k := range sample {
				sample[k] = s.IntN(d.Len())
			}
			m.Trees[i] = GrowTree(s, d.X, d.Y, d.Classes, sample, params)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("forest: %w", err)
	}

	if logger.Enabled() {
		var depth, leaves int
		for _, t := range m.Trees {
			depth = max(depth, t.Depth())
			leaves += t.Leaves()
		}
		logf(f.Label, "grew %d trees on %d samples (max depth %d, %.1f leaves/tree, %d workers)",
			f.Trees, d.Len(), depth, float64(leaves)/float64(f.Trees), workers)
	}
	return m, nil
}

// PredictProba averages the leaf class fractions of every tree.
func (m *Model) PredictProba(X [][]float64) [][]float64 {
	out := make([][]float64, len(X))
	for i, x := range X {
		p := make([]float64, m.Classes)
		for _, t := range m.Trees {
			for k, v := range t.PredictProba(x) {
				p[k] += v
			}
		}
		for k := range p {
			p[k] /= float64(len(m.Trees))
		}
		out[i] = p
	}
	return out
}

// Predict returns the most probable class per row; ties go to the lower
// class index.
func (m *Model) Predict(X [][]float64) []int {
	return argmax(m.PredictProba(X))
}

func argmax(proba [][]float64) []int {
	out := make([]int, len(proba))
	for i, p := range proba {
		best := 0
		for k := range p {
			if p[k] > p[best] {
				best = k
			}
		}
		out[i] = best
	}
	return out
}

// Importances returns the mean decrease in impurity per feature, averaged
// over trees and renormalised, with the population standard deviation of
// the per-tree importances.
func (m *Model) Importances() (mean, sd []float64) {
	mean = make([]float64, m.Features)
	sd = make([]float64, m.Features)
	col := make([]float64, 0, len(m.Trees))
	for j := 0; j < m.Features; j++ {
		col = col[:0]
		for _, t := range m.Trees {
			col = append(col, t.Importance()[j])
		}
		mean[j], sd[j] = stat.PopMeanStdDev(col, nil)
	}
	var sum float64
	for _, v := range mean {
		sum += v
	}
	if sum > 0 {
		for j := range mean {
			mean[j] /= sum
		}
	}
	return mean, sd
}

// Accuracy is the fraction of predictions equal to the truth.
func Accuracy(truth, pred []int) float64 {
	if len(truth) == 0 {
		return 0
	}
	hit := 0
	for i := range truth {
		if truth[i] == pred[i] {
			hit++
		}
	}
	return float64(hit) / float64(len(truth))
}

// CVResult summarises k-fold cross-validation accuracy.
type CVResult struct {
	Scores []float64
	Mean   float64
	SD     float64 // population standard deviation
}

// CrossValidate fits a fresh forest on each fold's training rows and scores
// it on the held-out rows. Each fold uses its own child stream.
func (f Forest) CrossValidate(ctx context.Context, rng *randx.Stream, d Dataset, folds []Fold) (CVResult, error) {
	res := CVResult{Scores: make([]float64, len(folds))}
	streams := make([]*randx.Stream, len(folds))
	for i := range folds {
		streams[i] = rng.Derive(uint64(i))
	}
	for i, fold := range folds {
		m, err := f.Fit(ctx, streams[i], d.Subset(fold.Train))
		if err != nil {
			return CVResult{}, fmt.Errorf("fold %d: %w", i+1, err)
		}
		test := d.Subset(fold.Test)
		res.Scores[i] = Accuracy(test.Y, m.Predict(test.X))
		logf(f.Label, "fold %d/%d accuracy %.4f", i+1, len(folds), res.Scores[i])
	}
	res.Mean, res.SD = stat.PopMeanStdDev(res.Scores, nil)
	return res, nil
}
