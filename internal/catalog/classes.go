package catalog

// Gaussian is a normal generator N(Mean, SD²).
type Gaussian struct {
	Mean, SD float64
}

// WaterClass is one label of the classification dataset with a generator per
// feature, in FeatureNames order.
type WaterClass struct {
	Name     string
	Color    string
	Features []Gaussian
}

// FeatureNames are the classifier inputs.
var FeatureNames = []string{"ΔR_As(%)", "ΔR_F(%)", "ΔR_Pb(%)", "pH", "TDS(ppm)", "Temp(°C)"}

// SensorFeatures is the number of leading features read from the aptamer
// channels; the rest are auxiliary probes.
const SensorFeatures = 3

// SamplesPerClass is the number of synthetic samples drawn per class.
const SamplesPerClass = 300

// WaterClasses lists the labels in class-index order.
var WaterClasses = []WaterClass{
	{Name: "Safe", Color: Navy, Features: []Gaussian{{2, 1.2}, {3, 1.5}, {1.5, 0.9}, {7.2, 0.3}, {320, 40}, {28, 3}}},
	{Name: "As-High", Color: Red, Features: []Gaussian{{54, 7}, {3.5, 1.5}, {2, 0.9}, {7.0, 0.4}, {380, 50}, {27, 3}}},
	{Name: "F-High", Color: Orange, Features: []Gaussian{{2.5, 1.1}, {50, 7}, {1.8, 0.8}, {7.5, 0.4}, {410, 60}, {29, 3}}},
	{Name: "Pb-High", Color: Violet, Features: []Gaussian{{3, 1.2}, {3.2, 1.5}, {60, 8}, {6.8, 0.5}, {450, 70}, {28, 3}}},
	{Name: "Multi-Cont.", Color: Green, Features: []Gaussian{{46, 7}, {44, 7}, {52, 7}, {6.5, 0.5}, {520, 80}, {30, 3}}},
}

// ValidationSet parameterises the paired reference/sensor measurements: a
// reference drawn from U[RefLo, RefHi), a multiplicative gain N(Gain) and an
// additive error N(0, NoiseSD²).
type ValidationSet struct {
	Analyte      Analyte
	Label        string
	Color        string
	RefLo, RefHi float64
	Gain         Gaussian
	NoiseSD      float64
}

// ValidationSamples is the number of paired measurements per analyte.
const ValidationSamples = 80

// ValidationSets lists the analytes compared against ICP-MS.
var ValidationSets = []ValidationSet{
	{Analyte: Arsenic, Label: "Arsenic", Color: Navy, RefLo: 1, RefHi: 80, Gain: Gaussian{1.009, 0.035}, NoiseSD: 1.1},
	{Analyte: Fluoride, Label: "Fluoride", Color: Orange, RefLo: 10, RefHi: 800, Gain: Gaussian{1.012, 0.04}, NoiseSD: 5},
	{Analyte: Lead, Label: "Lead", Color: Red, RefLo: 1, RefHi: 70, Gain: Gaussian{1.007, 0.033}, NoiseSD: 0.9},
}
