package classify

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// TSNE configures an exact t-SNE embedding into two dimensions.
type TSNE struct {
	Perplexity float64
	Iterations int
	Label      string
}

// Embedding is the 2-D projection of a sample.
type Embedding struct {
	Points [][2]float64
	KL     float64
}

const (
	exaggeration     = 12.0
	exaggerationIter = 250
	minGain          = 0.01
)

// Embed projects X with t-SNE, initialised from the first two principal
// components scaled to a standard deviation of 1e-4. The result depends only
// on X and the parameters.
func (t TSNE) Embed(X [][]float64) (Embedding, error) {
	n := len(X)
	if n == 0 {
		return Embedding{}, errors.New("tsne: empty input")
	}
	if float64(n-1) < 3*t.Perplexity {
		return Embedding{}, fmt.Errorf("tsne: %d samples too few for perplexity %g", n, t.Perplexity)
	}

	P := t.affinities(X)
	Y, err := pcaInit(X)
	if err != nil {
		return Embedding{}, err
	}

	lr := math.Max(float64(n)/exaggeration/4, 50)
	update := make([][2]float64, n)
	gains := make([][2]float64, n)
	for i := range gains {
		gains[i] = [2]float64{1, 1}
	}
	num := make([]float64, n*n)
	grad := make([][2]float64, n)

	for iter := 0; iter < t.Iterations; iter++ {
		exag, momentum := 1.0, 0.8
		if iter < exaggerationIter {
			exag, momentum = exaggeration, 0.5
		}

		var sumQ float64
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				dx, dy := Y[i][0]-Y[j][0], Y[i][1]-Y[j][1]
				v := 1 / (1 + dx*dx + dy*dy)
				num[i*n+j], num[j*n+i] = v, v
				sumQ += 2 * v
			}
		}
		for i := 0; i < n; i++ {
			var gx, gy float64
			for j := 0; j < n; j++ {
				if i == j {
					continue
				}
				v := num[i*n+j]
				m := (exag*P[i*n+j] - math.Max(v/sumQ, 1e-12)) * v
				gx += m * (Y[i][0] - Y[j][0])
				gy += m * (Y[i][1] - Y[j][1])
			}
			grad[i] = [2]float64{4 * gx, 4 * gy}
		}

		for i := 0; i < n; i++ {
			for d := 0; d < 2; d++ {
				if (grad[i][d] > 0) != (update[i][d] > 0) {
					gains[i][d] += 0.2
				} else {
					gains[i][d] *= 0.8
				}
				gains[i][d] = math.Max(gains[i][d], minGain)
				update[i][d] = momentum*update[i][d] - lr*gains[i][d]*grad[i][d]
				Y[i][d] += update[i][d]
			}
		}
	}

	kl := klDivergence(P, Y)
	logf(t.Label, "t-SNE of %d samples: perplexity %g, %d iterations, KL %.4f", n, t.Perplexity, t.Iterations, kl)
	return Embedding{Points: Y, KL: kl}, nil
}

// affinities returns the symmetrised joint probabilities P (row-major n×n).
// Each row's Gaussian bandwidth is found by bisection so that its entropy
// matches log(perplexity).
func (t TSNE) affinities(X [][]float64) []float64 {
	n := len(X)
	D := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			var s float64
			for k := range X[i] {
				d := X[i][k] - X[j][k]
				s += d * d
			}
			D[i*n+j], D[j*n+i] = s, s
		}
	}

	target := math.Log(t.Perplexity)
	cond := make([]float64, n*n)
	row := make([]float64, n)
	for i := 0; i < n; i++ {
		beta, lo, hi := 1.0, math.Inf(-1), math.Inf(1)
		for step := 0; step < 100; step++ {
			var sum, dsum float64
			for j := 0; j < n; j++ {
				if j == i {
					row[j] = 0
					continue
				}
				row[j] = math.Exp(-D[i*n+j] * beta)
				sum += row[j]
			}
			if sum == 0 {
				sum = 1e-12
			}
			for j := 0; j < n; j++ {
				row[j] /= sum
				dsum += D[i*n+j] * row[j]
			}
			h := math.Log(sum) + beta*dsum
			diff := h - target
			if math.Abs(diff) < 1e-5 {
				break
			}
			if diff > 0 {
				lo = beta
				if math.IsInf(hi, 1) {
					beta *= 2
				} else {
					beta = (beta + hi) / 2
				}
			} else {
				hi = beta
				if math.IsInf(lo, -1) {
					beta /= 2
				} else {
					beta = (beta + lo) / 2
				}
			}
		}
		copy(cond[i*n:(i+1)*n], row)
	}

	P := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			P[i*n+j] = math.Max((cond[i*n+j]+cond[j*n+i])/(2*float64(n)), 1e-12)
		}
	}
	return P
}

// pcaInit projects the centred data onto its first two principal axes,
// with signs fixed so the largest loading of each axis is positive.
func pcaInit(X [][]float64) ([][2]float64, error) {
	n, width := len(X), len(X[0])
	if width < 2 {
		return nil, fmt.Errorf("tsne: need at least 2 features, got %d", width)
	}
	xc := mat.NewDense(n, width, nil)
	col := make([]float64, n)
	for j := 0; j < width; j++ {
		for i := range X {
			col[i] = X[i][j]
		}
		mean := stat.Mean(col, nil)
		for i := range X {
			xc.Set(i, j, X[i][j]-mean)
		}
	}

	var svd mat.SVD
	if ok := svd.Factorize(xc, mat.SVDThin); !ok {
		return nil, errors.New("tsne: SVD of the sample failed")
	}
	var v mat.Dense
	svd.VTo(&v)

	for c := 0; c < 2; c++ {
		big := 0
		for j := 0; j < width; j++ {
			if math.Abs(v.At(j, c)) > math.Abs(v.At(big, c)) {
				big = j
			}
		}
		if v.At(big, c) < 0 {
			for j := 0; j < width; j++ {
				v.Set(j, c, -v.At(j, c))
			}
		}
	}

	var proj mat.Dense
	proj.Mul(xc, v.Slice(0, width, 0, 2))

	Y := make([][2]float64, n)
	for i := range Y {
		col[i] = proj.At(i, 0)
	}
	sd := stat.StdDev(col, nil)
	if sd == 0 {
		sd = 1
	}
	for i := range Y {
		Y[i] = [2]float64{proj.At(i, 0) / sd * 1e-4, proj.At(i, 1) / sd * 1e-4}
	}
	return Y, nil
}

func klDivergence(P []float64, Y [][2]float64) float64 {
	n := len(Y)
	var sumQ float64
	q := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			dx, dy := Y[i][0]-Y[j][0], Y[i][1]-Y[j][1]
			q[i*n+j] = 1 / (1 + dx*dx + dy*dy)
			sumQ += q[i*n+j]
		}
	}
	var kl float64
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			p := P[i*n+j]
			kl += p * math.Log(p/math.Max(q[i*n+j]/sumQ, 1e-12))
		}
	}
	return kl
}
