package catalog

import (
	"fmt"
	"slices"
	"sort"

	"github.com/aquaneuron/aquaneuron-sim/internal/apperr"
)

// Validate checks every literal table once at startup. The first problem is
// returned wrapped around apperr.ErrMalformedTable.
func Validate() error {
	checks := []func() error{
		validateContaminants,
		validateGrid,
		validateImpedance,
		func() error { _, err := Regions(); return err },
		validateComparison,
		validateSelectivity,
		validateClasses,
		validateValidationSets,
		validateArchitecture,
	}
	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

func sameLength(table string, want int, cols map[string]int) error {
	names := make([]string, 0, len(cols))
	for name := range cols {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if cols[name] != want {
			return apperr.Table(table, "column %q has %d entries, want %d", name, cols[name], want)
		}
	}
	return nil
}

func positive(table, field string, v float64) error {
	if !(v > 0) {
		return apperr.Table(table, "%s must be positive, got %g", field, v)
	}
	return nil
}

func validateContaminants() error {
	if len(Contaminants) != len(Analytes) {
		return apperr.Table("contaminants", "%d entries for %d analytes", len(Contaminants), len(Analytes))
	}
	for i, c := range Contaminants {
		if c.Analyte != Analytes[i] {
			return apperr.Table("contaminants", "entry %d is %q, want %q", i, c.Analyte, Analytes[i])
		}
		t := "contaminants." + string(c.Analyte)
		for _, f := range []struct {
			name string
			v    float64
		}{
			{"WHO limit", c.WHOLimit}, {"molar mass", c.MolarMass},
			{"Qmax", c.Isotherm.Qmax}, {"Kd", c.Isotherm.Kd}, {"Kf", c.Isotherm.Kf},
			{"R0", c.Sensor.R0}, {"LOD", c.Sensor.LOD}, {"tau", c.Sensor.Tau}, {"slope", c.Sensor.Slope},
			{"baseline", c.LODBudget.Baseline}, {"baseline noise", c.LODBudget.BaselineNoise},
			{"LOD sensitivity", c.LODBudget.Sensitivity},
		} {
			if err := positive(t, f.name, f.v); err != nil {
				return err
			}
		}
		if c.Isotherm.N <= 1 {
			return apperr.Table(t, "Freundlich n must exceed 1, got %g", c.Isotherm.N)
		}
		if c.Sensor.Sensitivity <= 0 || c.Sensor.Sensitivity >= 1 {
			return apperr.Table(t, "sensitivity must be in (0, 1), got %g", c.Sensor.Sensitivity)
		}
		if c.Sensor.UpperLimit <= c.Sensor.LOD {
			return apperr.Table(t, "upper limit %g must exceed LOD %g", c.Sensor.UpperLimit, c.Sensor.LOD)
		}
	}
	return nil
}

func validateGrid() error {
	if len(ExperimentalGrid) < 3 {
		return apperr.Table("experimental grid", "need at least 3 points, got %d", len(ExperimentalGrid))
	}
	for i, c := range ExperimentalGrid {
		if c < 0 {
			return apperr.Table("experimental grid", "negative concentration %g", c)
		}
		if i > 0 && c <= ExperimentalGrid[i-1] {
			return apperr.Table("experimental grid", "not strictly increasing at index %d", i)
		}
	}
	return nil
}

func validateImpedance() error {
	for _, c := range ImpedanceConfigs {
		if err := positive("impedance", c.Label+" Rct", c.Rct); err != nil {
			return err
		}
	}
	if CPEExponent <= 0 || CPEExponent > 1 {
		return apperr.Table("impedance", "CPE exponent must be in (0, 1], got %g", CPEExponent)
	}
	return nil
}

func validateComparison() error {
	for _, m := range Metrics {
		if len(m.Values) != len(Methods) {
			return apperr.Table("comparison", "metric %q has %d values for %d methods", m.Name, len(m.Values), len(Methods))
		}
	}
	return nil
}

func validateSelectivity() error {
	if len(CrossReactivity) != len(SelectivityChannels) {
		return apperr.Table("selectivity", "%d rows for %d channels", len(CrossReactivity), len(SelectivityChannels))
	}
	if len(SelectivityColors) != len(SelectivityChannels) {
		return apperr.Table("selectivity", "%d colours for %d channels", len(SelectivityColors), len(SelectivityChannels))
	}
	for i, row := range CrossReactivity {
		if len(row) != len(SelectivityAnalytes) {
			return apperr.Table("selectivity", "row %q has %d values for %d analytes", SelectivityChannels[i], len(row), len(SelectivityAnalytes))
		}
		for j, v := range row {
			if v < 0 || v > 1 {
				return apperr.Table("selectivity", "%s/%s = %g outside [0, 1]", SelectivityChannels[i], SelectivityAnalytes[j], v)
			}
		}
	}
	for _, name := range Interferents {
		if !slices.Contains(SelectivityAnalytes, name) {
			return apperr.Table("selectivity", "interferent %q is not a tested analyte", name)
		}
	}
	return nil
}

func validateClasses() error {
	if len(WaterClasses) < 2 {
		return apperr.Table("classes", "need at least two classes")
	}
	for _, c := range WaterClasses {
		if len(c.Features) != len(FeatureNames) {
			return apperr.Table("classes", "class %q has %d generators for %d features", c.Name, len(c.Features), len(FeatureNames))
		}
		for j, g := range c.Features {
			if err := positive("classes."+c.Name, fmt.Sprintf("sd of %s", FeatureNames[j]), g.SD); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateValidationSets() error {
	for _, v := range ValidationSets {
		t := "validation." + string(v.Analyte)
		if v.RefHi <= v.RefLo {
			return apperr.Table(t, "empty reference range [%g, %g)", v.RefLo, v.RefHi)
		}
		if err := positive(t, "gain sd", v.Gain.SD); err != nil {
			return err
		}
		if err := positive(t, "noise sd", v.NoiseSD); err != nil {
			return err
		}
	}
	return nil
}

func validateArchitecture() error {
	for _, b := range append(slices.Clone(ArchitectureBlocks), PowerSubsystem) {
		if len(b.Title) == 0 || len(b.Details) == 0 {
			return apperr.Table("architecture", "block at (%g, %g) needs a title and details", b.X, b.Y)
		}
		if b.X < 0 || b.Y < 0 || b.X+b.W > 22 || b.Y+b.H > 10 {
			return apperr.Table("architecture", "block %q leaves the board", b.Title[0])
		}
	}
	return nil
}
