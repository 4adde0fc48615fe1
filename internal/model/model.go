// Package model holds the closed-form chemistry and physics formulas behind
// every figure. All functions are pure; the vector forms evaluate the scalar
// form element-wise.
package model

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Gas constant and temperature used for binding free energies.
const (
	GasConstant = 8.314 // J/(mol·K)
	Temperature = 298.0 // K
)

// Langmuir returns the surface coverage qmax·c/(kd+c).
func Langmuir(c, qmax, kd float64) float64 {
	return qmax * c / (kd + c)
}

// Freundlich returns kf·c^(1/n). It is NaN for c < 0.
func Freundlich(c, kf, n float64) float64 {
	if c < 0 {
		return math.NaN()
	}
	return kf * math.Pow(c, 1/n)
}

// LangmuirCurve evaluates Langmuir at each concentration.
func LangmuirCurve(cs []float64, qmax, kd float64) []float64 {
	return mapf(cs, func(c float64) float64 { return Langmuir(c, qmax, kd) })
}

// FreundlichCurve evaluates Freundlich at each concentration.
func FreundlichCurve(cs []float64, kf, n float64) []float64 {
	return mapf(cs, func(c float64) float64 { return Freundlich(c, kf, n) })
}

// BindingFraction is the Langmuir-shaped fraction of occupied sites scaled
// by the sensor's maximum relative change s.
func BindingFraction(c, s, kd float64) float64 {
	return s * c / (kd + c)
}

// Resistance is the chemiresistor resistance at concentration c.
func Resistance(r0, s, kd, c float64) float64 {
	return r0 * (1 - BindingFraction(c, s, kd))
}

// ResponsePercent is the fractional resistance change (R0-R)/R0 in percent.
func ResponsePercent(r0, s, kd, c float64) float64 {
	return (r0 - Resistance(r0, s, kd, c)) / r0 * 100
}

// ResponseCurve evaluates ResponsePercent at each concentration.
func ResponseCurve(cs []float64, r0, s, kd float64) []float64 {
	return mapf(cs, func(c float64) float64 { return ResponsePercent(r0, s, kd, c) })
}

// FirstOrder is the normalised first-order step response 1-exp(-t/tau).
func FirstOrder(t, tau float64) float64 {
	return 1 - math.Exp(-t/tau)
}

// T90 is the time at which FirstOrder reaches 0.9.
func T90(tau float64) float64 {
	return -tau * math.Log(0.1)
}

// Retention is the percent signal left after days of storage at the given
// exponential decay rate.
func Retention(days, rate float64) float64 {
	return 100 * math.Exp(-rate*days)
}

// DeltaG returns the standard binding free energy in kJ/mol for a
// dissociation constant given in ppb of a species with the given molar mass.
func DeltaG(kdPPB, molarMass float64) float64 {
	kdMolar := kdPPB * 1e-6 / molarMass
	return GasConstant * Temperature * math.Log(kdMolar) / 1000
}

// LinSpace returns n evenly spaced values over [a, b].
func LinSpace(a, b float64, n int) []float64 {
	if n == 1 {
		return []float64{a}
	}
	return floats.Span(make([]float64, n), a, b)
}

// LogSpace returns n values evenly spaced in log10 between 10^a and 10^b.
func LogSpace(a, b float64, n int) []float64 {
	if n == 1 {
		return []float64{math.Pow(10, a)}
	}
	return floats.LogSpan(make([]float64, n), math.Pow(10, a), math.Pow(10, b))
}

func mapf(xs []float64, f func(float64) float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = f(x)
	}
	return out
}
