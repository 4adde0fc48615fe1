package figures

import (
	"context"
	"fmt"
	"slices"

	"github.com/aquaneuron/aquaneuron-sim/internal/catalog"
	"github.com/aquaneuron/aquaneuron-sim/internal/classify"
	"github.com/aquaneuron/aquaneuron-sim/internal/render"
	"github.com/aquaneuron/aquaneuron-sim/internal/sink"
	"github.com/aquaneuron/aquaneuron-sim/internal/summary"
)

// Child stream ids of the classifier figure, one per random stage.
const (
	streamData = iota + 1
	streamSplit
	streamForest
	streamFolds
	streamCV
	streamEmbedSample
)

const testFraction = 0.2

// ClassifierData backs figure 4. It also carries what the run manifest
// needs to describe the model.
type ClassifierData struct {
	Forest     classify.Forest
	Classes    []catalog.WaterClass
	Features   []string
	TrainSize  int
	TestSize   int
	TestCounts []int // test samples per class

	TestAccuracy float64
	CV           classify.CVResult
	Confusion    classify.Confusion
	ROC          []classify.ROC
	PR           []classify.PR

	Importance, ImportanceSD []float64

	Embedding      classify.Embedding
	EmbeddedLabels []int
}

func buildClassifier(ctx context.Context, env Env) (Data, error) {
	cfg := env.Config
	raw, err := classify.Synthesize(env.Rand.Derive(streamData), catalog.WaterClasses, catalog.SamplesPerClass)
	if err != nil {
		return nil, err
	}
	ds := classify.Dataset{X: classify.FitScaler(raw.X).Transform(raw.X), Y: raw.Y, Classes: raw.Classes}

	train, test, err := classify.StratifiedSplit(env.Rand.Derive(streamSplit), ds.Y, ds.Classes, testFraction)
	if err != nil {
		return nil, err
	}
	forest := classify.Forest{
		Trees:          cfg.Forest.Trees,
		MaxDepth:       cfg.Forest.MaxDepth,
		MinSamplesLeaf: cfg.Forest.MinSamplesLeaf,
		Workers:        cfg.Forest.Workers,
		Label:          "ai",
	}
	m, err := forest.Fit(ctx, env.Rand.Derive(streamForest), ds.Subset(train))
	if err != nil {
		return nil, err
	}

	held := ds.Subset(test)
	proba := m.PredictProba(held.X)
	pred := m.Predict(held.X)
	conf, err := classify.NewConfusion(held.Y, pred, ds.Classes)
	if err != nil {
		return nil, err
	}
	rocs, prs, err := classify.OneVsRest(held.Y, proba, ds.Classes)
	if err != nil {
		return nil, err
	}
	imp, impSD := m.Importances()

	folds, err := classify.StratifiedKFold(env.Rand.Derive(streamFolds), ds.Y, ds.Classes, cfg.Forest.Folds)
	if err != nil {
		return nil, err
	}
	cv, err := forest.CrossValidate(ctx, env.Rand.Derive(streamCV), ds, folds)
	if err != nil {
		return nil, err
	}

	pick := env.Rand.Derive(streamEmbedSample).Perm(ds.Len())[:min(cfg.Embedding.Sample, ds.Len())]
	sub := ds.Subset(pick)
	emb, err := classify.TSNE{Perplexity: cfg.Embedding.Perplexity, Iterations: cfg.Embedding.Iterations, Label: "ai"}.Embed(sub.X)
	if err != nil {
		return nil, err
	}

	d := &ClassifierData{
		Forest:         forest,
		Classes:        catalog.WaterClasses,
		Features:       catalog.FeatureNames,
		TrainSize:      len(train),
		TestSize:       len(test),
		TestCounts:     held.ClassCounts(),
		TestAccuracy:   classify.Accuracy(held.Y, pred),
		CV:             cv,
		Confusion:      conf,
		ROC:            rocs,
		PR:             prs,
		Importance:     imp,
		ImportanceSD:   impSD,
		Embedding:      emb,
		EmbeddedLabels: sub.Y,
	}
	logf("ai", "test accuracy %.4f, cv %.4f ± %.4f, t-SNE KL %.3f", d.TestAccuracy, cv.Mean, cv.SD, emb.KL)
	return d, nil
}

// MeanAUC is the unweighted mean of the one-vs-rest ROC AUCs.
func (d *ClassifierData) MeanAUC() float64 {
	if len(d.ROC) == 0 {
		return 0
	}
	var s float64
	for _, r := range d.ROC {
		s += r.AUC
	}
	return s / float64(len(d.ROC))
}

func (d *ClassifierData) Metrics() []summary.Metric {
	out := []summary.Metric{
		summary.M("test_accuracy", d.TestAccuracy, ""),
		summary.M("cv_accuracy_mean", d.CV.Mean, ""),
		summary.M("cv_accuracy_sd", d.CV.SD, ""),
		summary.M("mean_roc_auc", d.MeanAUC(), ""),
		summary.M("tsne_kl", d.Embedding.KL, ""),
	}
	for i, c := range d.Classes {
		out = append(out,
			summary.M(c.Name+"_roc_auc", d.ROC[i].AUC, ""),
			summary.M(c.Name+"_average_precision", d.PR[i].AP, ""),
			summary.M(c.Name+"_pr_auc", d.PR[i].AUC, ""),
		)
	}
	for j, f := range d.Features {
		out = append(out, summary.M("importance_"+f, d.Importance[j], ""))
	}
	return out
}

func (d *ClassifierData) Render(s *sink.Surface) error {
	area := body(s, "AquaNeuron — AI Classification Engine",
		fmt.Sprintf("Random Forest (%d trees) | %d-Fold CV Accuracy: %.4f ± %.4f",
			d.Forest.Trees, len(d.CV.Scores), d.CV.Mean, d.CV.SD), 20)
	g := render.Grid{Bounds: area, Rows: 2, Cols: 3, Gap: 28}
	return compose(s.Canvas,
		placed{g.Span(0, 0, 1, 2), d.confusionMap()},
		placed{g.Cell(0, 2), d.rocPlot()},
		placed{g.Cell(1, 0), d.importancePlot()},
		placed{g.Cell(1, 1), d.embeddingPlot()},
		placed{g.Cell(1, 2), d.prPlot()},
	)
}

func (d *ClassifierData) classNames() []string {
	out := make([]string, len(d.Classes))
	for i, c := range d.Classes {
		out[i] = c.Name
	}
	return out
}

func (d *ClassifierData) confusionMap() render.Heatmap {
	return render.Heatmap{
		Title:     fmt.Sprintf("(A) Normalised Confusion Matrix | %d-Fold CV Accuracy: %.2f%%", len(d.CV.Scores), d.CV.Mean*100),
		XLabel:    "Predicted Class",
		YLabel:    "True Class",
		Values:    d.Confusion.Percent,
		Min:       0,
		Max:       100,
		Map:       render.RecallMap,
		RowLabels: d.classNames(),
		ColLabels: d.classNames(),
		Cell: func(i, j int) string {
			return fmt.Sprintf("%d (%.1f%%)", d.Confusion.Counts[i][j], d.Confusion.Percent[i][j])
		},
		BarTicks:  []float64{0, 20, 40, 60, 80, 100},
		BarFormat: "%.0f",
		BarLabel:  "Recall (%)",
	}
}

func (d *ClassifierData) rocPlot() render.Plot {
	p := render.Plot{
		Title:  "(B) Multi-Class ROC Curves (One-vs-Rest)",
		XLabel: "False Positive Rate",
		YLabel: "True Positive Rate",
		XRange: &render.Range{Min: -0.01, Max: 1.01},
		YRange: &render.Range{Min: -0.01, Max: 1.05},
		Bands: []render.Band{{
			X: []float64{0, 1}, Lower: []float64{0, 1}, Upper: []float64{1, 1},
			Color: render.Alpha(catalog.Green, 10),
		}},
		Legend: render.BottomRight,
	}
	for i, c := range d.Classes {
		p.Lines = append(p.Lines, render.Line{
			Name: fmt.Sprintf("%s (AUC=%.4f)", c.Name, d.ROC[i].AUC),
			X:    d.ROC[i].FPR, Y: d.ROC[i].TPR, Color: hex(c.Color), Width: 2.2,
		})
	}
	p.Lines = append(p.Lines, render.Line{
		Name: "Random (AUC=0.5)", X: []float64{0, 1}, Y: []float64{0, 1},
		Color: hex(catalog.Slate), Width: 1.5, Dashed: true,
	})
	return p
}

func (d *ClassifierData) importancePlot() render.Plot {
	order := make([]int, len(d.Importance))
	for i := range order {
		order[i] = i
	}
	// most important first, i.e. on top
	slices.SortStableFunc(order, func(a, b int) int {
		switch {
		case d.Importance[a] > d.Importance[b]:
			return -1
		case d.Importance[a] < d.Importance[b]:
			return 1
		}
		return 0
	})
	bars := render.Bars{Edge: hex(catalog.White)}
	p := render.Plot{
		Title:      "(C) Feature Importance (Mean Decrease in Impurity)",
		XLabel:     "Feature Importance (MDI ± 2σ)",
		Horizontal: true,
	}
	for _, j := range order {
		p.Categories = append(p.Categories, d.Features[j])
		bars.Values = append(bars.Values, d.Importance[j])
		bars.Errors = append(bars.Errors, 2*d.ImportanceSD[j])
		col := catalog.Slate
		if j < catalog.SensorFeatures {
			col = catalog.Navy
		}
		bars.Colors = append(bars.Colors, hex(col))
	}
	p.Bars = []render.Bars{bars}
	return p
}

func (d *ClassifierData) embeddingPlot() render.Plot {
	p := render.Plot{
		Title:  fmt.Sprintf("(D) t-SNE Feature Space (n=%d samples)", len(d.EmbeddedLabels)),
		XLabel: "t-SNE Component 1",
		YLabel: "t-SNE Component 2",
		Legend: render.TopRight,
	}
	for k, c := range d.Classes {
		l := render.Line{Name: c.Name, Color: render.Alpha(c.Color, 184), Dots: 3.5}
		for i, y := range d.EmbeddedLabels {
			if y == k {
				l.X = append(l.X, d.Embedding.Points[i][0])
				l.Y = append(l.Y, d.Embedding.Points[i][1])
			}
		}
		p.Lines = append(p.Lines, l)
	}
	return p
}

func (d *ClassifierData) prPlot() render.Plot {
	p := render.Plot{
		Title:  "(E) Precision-Recall Curves (Average Precision per class)",
		XLabel: "Recall",
		YLabel: "Precision",
		XRange: &render.Range{Min: -0.01, Max: 1.02},
		YRange: &render.Range{Min: 0, Max: 1.05},
		Legend: render.BottomLeft,
	}
	for i, c := range d.Classes {
		p.Lines = append(p.Lines, render.Line{
			Name: fmt.Sprintf("%s (AP=%.4f)", c.Name, d.PR[i].AP),
			X:    d.PR[i].Recall, Y: d.PR[i].Precision, Color: hex(c.Color), Width: 2.2,
		})
	}
	return p
}
