package catalog

// Analyte identifies one of the three sensed contaminants.
type Analyte string

const (
	Arsenic  Analyte = "As"
	Fluoride Analyte = "F"
	Lead     Analyte = "Pb"
)

// Analytes lists the sensed contaminants in display order.
var Analytes = []Analyte{Arsenic, Fluoride, Lead}

// Isotherm holds the binding parameters fitted to the GO-aptamer surface.
type Isotherm struct {
	Qmax float64 // nM
	Kd   float64 // ppb
	Kf   float64
	N    float64

	// Goodness-of-fit labels quoted on the poster.
	ReportedLangmuirR2   float64
	ReportedFreundlichR2 float64
}

// Sensor holds the chemiresistor transfer function and detection figures.
type Sensor struct {
	R0          float64 // Ω
	Sensitivity float64 // maximum ΔR/R0
	LOD         float64 // ppb
	Tau         float64 // s, first-order response time constant
	UpperLimit  float64 // ppb, top of the linear dynamic range
	Slope       float64 // a.u. per ppb within the linear range
}

// LODBudget parameterises the Monte Carlo detection-limit propagation.
type LODBudget struct {
	Baseline      float64
	BaselineNoise float64
	Sensitivity   float64
}

// Contaminant is the full parameter set for one analyte.
type Contaminant struct {
	Analyte   Analyte
	Name      string // e.g. "Arsenic (As³⁺)"
	Label     string // e.g. "Arsenic"
	Short     string // e.g. "As³⁺"
	Color     string
	WHOLimit  float64 // ppb
	MolarMass float64 // g/mol
	Isotherm  Isotherm
	Sensor    Sensor
	LODBudget LODBudget
}

// Contaminants is the literal parameter table, in display order.
var Contaminants = []Contaminant{
	{
		Analyte: Arsenic, Name: "Arsenic (As³⁺)", Label: "Arsenic", Short: "As³⁺",
		Color: Navy, WHOLimit: 10, MolarMass: 75,
		Isotherm:  Isotherm{Qmax: 142.8, Kd: 18.5, Kf: 28.4, N: 3.1, ReportedLangmuirR2: 0.982, ReportedFreundlichR2: 0.91},
		Sensor:    Sensor{R0: 1000, Sensitivity: 0.68, LOD: 0.8, Tau: 28, UpperLimit: 85, Slope: 0.82},
		LODBudget: LODBudget{Baseline: 2.0, BaselineNoise: 0.4, Sensitivity: 0.82},
	},
	{
		Analyte: Fluoride, Name: "Fluoride (F⁻)", Label: "Fluoride", Short: "F⁻",
		Color: Orange, WHOLimit: 1500, MolarMass: 19,
		Isotherm:  Isotherm{Qmax: 98.3, Kd: 32.1, Kf: 19.7, N: 2.8, ReportedLangmuirR2: 0.975, ReportedFreundlichR2: 0.93},
		Sensor:    Sensor{R0: 1000, Sensitivity: 0.52, LOD: 5.2, Tau: 42, UpperLimit: 420, Slope: 0.61},
		LODBudget: LODBudget{Baseline: 3.0, BaselineNoise: 0.6, Sensitivity: 0.61},
	},
	{
		Analyte: Lead, Name: "Lead (Pb²⁺)", Label: "Lead", Short: "Pb²⁺",
		Color: Red, WHOLimit: 10, MolarMass: 207,
		Isotherm:  Isotherm{Qmax: 117.6, Kd: 12.4, Kf: 24.1, N: 3.4, ReportedLangmuirR2: 0.988, ReportedFreundlichR2: 0.92},
		Sensor:    Sensor{R0: 1000, Sensitivity: 0.73, LOD: 0.6, Tau: 22, UpperLimit: 72, Slope: 0.91},
		LODBudget: LODBudget{Baseline: 1.5, BaselineNoise: 0.3, Sensitivity: 0.91},
	},
}

// Lookup returns the contaminant for a.
func Lookup(a Analyte) (Contaminant, bool) {
	for _, c := range Contaminants {
		if c.Analyte == a {
			return c, true
		}
	}
	return Contaminant{}, false
}

// ExperimentalGrid is the set of concentrations (ppb) at which binding was
// measured.
var ExperimentalGrid = []float64{2, 5, 10, 20, 40, 70, 110, 160, 230, 320, 420, 500}

// ImpedanceConfig is one electrode state of the Nyquist comparison.
type ImpedanceConfig struct {
	Label  string
	Rct    float64
	Color  string
	Dashed bool
}

// Shared Randles circuit constants.
const (
	SeriesResistance = 50.0
	CPECoefficient   = 1.2e-7
	CPEExponent      = 0.88
	WarburgSigma     = 80.0
)

// ImpedanceConfigs lists the electrode states compared in the EIS panel.
var ImpedanceConfigs = []ImpedanceConfig{
	{Label: "Bare GO electrode", Rct: 2000, Color: Silver, Dashed: true},
	{Label: "+ As aptamer", Rct: 3200, Color: Navy},
	{Label: "+ F aptamer", Rct: 2800, Color: Orange},
	{Label: "+ Pb aptamer", Rct: 3500, Color: Red},
	{Label: "After As³⁺ binding", Rct: 1100, Color: Green},
}
