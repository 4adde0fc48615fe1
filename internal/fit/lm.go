// Package fit provides nonlinear least squares (Levenberg-Marquardt),
// bootstrap refit ensembles and pointwise percentile bands.
package fit

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/aquaneuron/aquaneuron-sim/internal/model"
)

// ErrNoConvergence is returned when a fit exhausts its evaluation budget or
// leaves the finite parameter space.
var ErrNoConvergence = errors.New("fit: no convergence")

// Model is a parametric curve y = Eval(x, p).
type Model struct {
	Name   string
	Params []string
	Eval   func(x float64, p []float64) float64
}

// Curve evaluates the model over xs.
func (m Model) Curve(xs, p []float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = m.Eval(x, p)
	}
	return out
}

// Langmuir is Qmax·c/(Kd+c) with p = [Qmax, Kd].
var Langmuir = Model{
	Name:   "langmuir",
	Params: []string{"Qmax", "Kd"},
	Eval:   func(c float64, p []float64) float64 { return model.Langmuir(c, p[0], p[1]) },
}

// Freundlich is Kf·c^(1/n) with p = [Kf, n].
var Freundlich = Model{
	Name:   "freundlich",
	Params: []string{"Kf", "n"},
	Eval:   func(c float64, p []float64) float64 { return model.Freundlich(c, p[0], p[1]) },
}

// Options bound the Levenberg-Marquardt iteration.
type Options struct {
	MaxEval int     // model evaluations over the whole data set
	Tol     float64 // relative tolerance on step size and cost reduction
}

// DefaultOptions mirrors a budget of 2000 function evaluations.
var DefaultOptions = Options{MaxEval: 2000, Tol: 1.49012e-8}

// Result is a converged fit.
type Result struct {
	Params      []float64
	SSE         float64
	Iterations  int
	Evaluations int
}

// LeastSquares minimises Σ(y - m(x, p))² starting from p0.
func LeastSquares(m Model, x, y, p0 []float64, opts Options) (Result, error) {
	if len(x) != len(y) {
		return Result{}, fmt.Errorf("fit %s: x has %d points, y has %d", m.Name, len(x), len(y))
	}
	k := len(p0)
	if k != len(m.Params) {
		return Result{}, fmt.Errorf("fit %s: %d initial values for %d parameters", m.Name, k, len(m.Params))
	}
	if len(x) < k {
		return Result{}, fmt.Errorf("fit %s: %d points for %d parameters", m.Name, len(x), k)
	}
	if opts.MaxEval <= 0 {
		opts = DefaultOptions
	}

	n := len(x)
	p := append([]float64(nil), p0...)
	evals := 0

	residuals := func(p []float64, dst []float64) float64 {
		evals++
		var sse float64
		for i := range x {
			dst[i] = y[i] - m.Eval(x[i], p)
			sse += dst[i] * dst[i]
		}
		return sse
	}

	r := make([]float64, n)
	sse := residuals(p, r)
	if math.IsNaN(sse) || math.IsInf(sse, 0) {
		return Result{}, fmt.Errorf("fit %s: non-finite cost at p0: %w", m.Name, ErrNoConvergence)
	}

	jac := mat.NewDense(n, k, nil)
	trial := make([]float64, k)
	rTrial := make([]float64, n)
	lambda := 1e-3
	eps := math.Sqrt(2.220446049250313e-16)

	for iter := 1; ; iter++ {
		// Forward-difference Jacobian of the model (negative Jacobian of r).
		for j := 0; j < k; j++ {
			h := eps * math.Max(math.Abs(p[j]), 1)
			copy(trial, p)
			trial[j] += h
			evals++
			for i := range x {
				jac.Set(i, j, (m.Eval(x[i], trial)-m.Eval(x[i], p))/h)
			}
		}

		var jtj mat.Dense
		jtj.Mul(jac.T(), jac)
		var g mat.VecDense
		g.MulVec(jac.T(), mat.NewVecDense(n, r))

		for {
			if evals >= opts.MaxEval {
				return Result{}, fmt.Errorf("fit %s: %d evaluations: %w", m.Name, evals, ErrNoConvergence)
			}
			a := mat.DenseCopyOf(&jtj)
			for j := 0; j < k; j++ {
				d := jtj.At(j, j)
				if d == 0 {
					d = 1
				}
				a.Set(j, j, d*(1+lambda))
			}

			var step mat.VecDense
			if err := step.SolveVec(a, &g); err != nil {
				var cond mat.Condition
				if !errors.As(err, &cond) {
					lambda *= 10
					continue
				}
			}

			for j := 0; j < k; j++ {
				trial[j] = p[j] + step.AtVec(j)
			}
			sseTrial := residuals(trial, rTrial)
			if !floats.HasNaN(trial) && !math.IsNaN(sseTrial) && !math.IsInf(sseTrial, 0) && sseTrial <= sse {
				stepNorm := floats.Norm(step.RawVector().Data, 2)
				pNorm := floats.Norm(p, 2)
				reduction := sse - sseTrial

				copy(p, trial)
				copy(r, rTrial)
				sse = sseTrial
				lambda = math.Max(lambda/10, 1e-12)

				if stepNorm <= opts.Tol*(pNorm+opts.Tol) || reduction <= opts.Tol*sse {
					return Result{Params: p, SSE: sse, Iterations: iter, Evaluations: evals}, nil
				}
				break
			}
			lambda *= 10
			if lambda > 1e16 {
				// No downhill step exists: p is a local minimum.
				return Result{Params: p, SSE: sse, Iterations: iter, Evaluations: evals}, nil
			}
		}
	}
}
