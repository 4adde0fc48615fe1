package model

import (
	"math"
	"math/cmplx"
)

// Circuit is a Randles equivalent circuit: series resistance Rs, a
// constant-phase element (T, N) in parallel with the charge-transfer
// resistance Rct, and a Warburg diffusion element with coefficient Sigma.
type Circuit struct {
	Rs    float64
	Rct   float64
	T     float64
	N     float64
	Sigma float64
}

// Impedance returns the complex impedance at frequency f in Hz.
func (c Circuit) Impedance(f float64) complex128 {
	omega := 2 * math.Pi * f
	zcpe := 1 / (complex(c.T, 0) * cmplx.Pow(complex(0, omega), complex(c.N, 0)))
	rct := complex(c.Rct, 0)
	zpar := rct * zcpe / (rct + zcpe)
	zw := complex(c.Sigma, 0) * complex(1, -1) / complex(math.Sqrt(omega), 0)
	return complex(c.Rs, 0) + zpar + zw
}

// NyquistPoint is one point of a Nyquist plot: Re(Z) and -Im(Z).
type NyquistPoint struct {
	Re, NegIm float64
}

// Nyquist evaluates the circuit over freqs and keeps only points in the
// physically meaningful quadrant: -Im(Z) > 0, 0 < Re(Z) < 1.6·Rct.
func (c Circuit) Nyquist(freqs []float64) []NyquistPoint {
	var out []NyquistPoint
	for _, f := range freqs {
		z := c.Impedance(f)
		p := NyquistPoint{Re: real(z), NegIm: -imag(z)}
		if p.NegIm > 0 && p.Re > 0 && p.Re < 1.6*c.Rct {
			out = append(out, p)
		}
	}
	return out
}
