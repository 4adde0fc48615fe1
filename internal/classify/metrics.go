package classify

import (
	"fmt"
	"sort"
)

// Confusion is a confusion matrix with rows indexed by the true class and
// columns by the predicted class.
type Confusion struct {
	Counts  [][]int
	Percent [][]float64 // each row normalised to 100
}

// NewConfusion tabulates truth against pred.
func NewConfusion(truth, pred []int, classes int) (Confusion, error) {
	if len(truth) != len(pred) {
		return Confusion{}, fmt.Errorf("confusion: %d labels, %d predictions", len(truth), len(pred))
	}
	c := Confusion{Counts: make([][]int, classes), Percent: make([][]float64, classes)}
	for k := range c.Counts {
		c.Counts[k] = make([]int, classes)
		c.Percent[k] = make([]float64, classes)
	}
	for i := range truth {
		c.Counts[truth[i]][pred[i]]++
	}
	for k, row := range c.Counts {
		total := 0
		for _, v := range row {
			total += v
		}
		if total == 0 {
			continue
		}
		for j, v := range row {
			c.Percent[k][j] = float64(v) / float64(total) * 100
		}
	}
	return c, nil
}

// RowSums returns the number of true samples per class.
func (c Confusion) RowSums() []int {
	out := make([]int, len(c.Counts))
	for k, row := range c.Counts {
		for _, v := range row {
			out[k] += v
		}
	}
	return out
}

// ROC is a receiver operating characteristic curve.
type ROC struct {
	FPR []float64
	TPR []float64
	AUC float64
}

// PR is a precision-recall curve, ordered by increasing threshold (recall
// falls from 1 to 0).
type PR struct {
	Precision []float64
	Recall    []float64
	AP        float64 // step-wise average precision
	AUC       float64 // trapezoidal area under the curve
}

type scored struct {
	score float64
	pos   bool
}

// cumulative walks scores in decreasing order and returns true and false
// positive counts at every distinct threshold.
func cumulative(positive []bool, scores []float64) (tps, fps []float64, err error) {
	if len(positive) != len(scores) {
		return nil, nil, fmt.Errorf("curve: %d labels, %d scores", len(positive), len(scores))
	}
	pairs := make([]scored, len(scores))
	for i := range scores {
		pairs[i] = scored{scores[i], positive[i]}
	}
	sort.SliceStable(pairs, func(a, b int) bool { return pairs[a].score > pairs[b].score })

	var tp, fp float64
	for i, p := range pairs {
		if p.pos {
			tp++
		} else {
			fp++
		}
		if i == len(pairs)-1 || pairs[i+1].score != p.score {
			tps = append(tps, tp)
			fps = append(fps, fp)
		}
	}
	return tps, fps, nil
}

// Trapezoid integrates y over x with the trapezoidal rule. x must be
// monotone; a decreasing x yields a positive area as well.
func Trapezoid(x, y []float64) float64 {
	var area float64
	for i := 1; i < len(x); i++ {
		area += (x[i] - x[i-1]) * (y[i] + y[i-1]) / 2
	}
	if area < 0 {
		return -area
	}
	return area
}

// NewROC computes the one-class ROC curve of scores against positive.
func NewROC(positive []bool, scores []float64) (ROC, error) {
	tps, fps, err := cumulative(positive, scores)
	if err != nil {
		return ROC{}, err
	}
	P, N := tps[len(tps)-1], fps[len(fps)-1]
	if P == 0 || N == 0 {
		return ROC{}, fmt.Errorf("roc: need both classes (positives=%g negatives=%g)", P, N)
	}
	r := ROC{FPR: []float64{0}, TPR: []float64{0}}
	for i := range tps {
		r.FPR = append(r.FPR, fps[i]/N)
		r.TPR = append(r.TPR, tps[i]/P)
	}
	r.AUC = Trapezoid(r.FPR, r.TPR)
	return r, nil
}

// NewPR computes the precision-recall curve of scores against positive.
func NewPR(positive []bool, scores []float64) (PR, error) {
	tps, fps, err := cumulative(positive, scores)
	if err != nil {
		return PR{}, err
	}
	P := tps[len(tps)-1]
	if P == 0 {
		return PR{}, fmt.Errorf("precision-recall: no positive samples")
	}

	// Stop once full recall is reached; later thresholds only add false
	// positives.
	last := len(tps) - 1
	for i, tp := range tps {
		if tp == P {
			last = i
			break
		}
	}

	var pr PR
	prevRecall := 0.0
	for i := 0; i <= last; i++ {
		prec := tps[i] / (tps[i] + fps[i])
		rec := tps[i] / P
		pr.AP += (rec - prevRecall) * prec
		prevRecall = rec
		pr.Precision = append(pr.Precision, prec)
		pr.Recall = append(pr.Recall, rec)
	}
	// Reverse to increasing threshold and close the curve at (recall 0, precision 1).
	for i, j := 0, len(pr.Precision)-1; i < j; i, j = i+1, j-1 {
		pr.Precision[i], pr.Precision[j] = pr.Precision[j], pr.Precision[i]
		pr.Recall[i], pr.Recall[j] = pr.Recall[j], pr.Recall[i]
	}
	pr.Precision = append(pr.Precision, 1)
	pr.Recall = append(pr.Recall, 0)
	pr.AUC = Trapezoid(pr.Recall, pr.Precision)
	return pr, nil
}

// OneVsRest returns the ROC and PR curves of every class, treating that
// class as positive and all others as negative.
func OneVsRest(truth []int, proba [][]float64, classes int) ([]ROC, []PR, error) {
	rocs := make([]ROC, classes)
	prs := make([]PR, classes)
	scores := make([]float64, len(truth))
	positive := make([]bool, len(truth))
	for k := 0; k < classes; k++ {
		for i := range truth {
			positive[i] = truth[i] == k
			scores[i] = proba[i][k]
		}
		var err error
		if rocs[k], err = NewROC(positive, scores); err != nil {
			return nil, nil, fmt.Errorf("class %d: %w", k, err)
		}
		if prs[k], err = NewPR(positive, scores); err != nil {
			return nil, nil, fmt.Errorf("class %d: %w", k, err)
		}
	}
	return rocs, prs, nil
}
