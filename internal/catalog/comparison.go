package catalog

// Method is one detection method in the comparison chart.
type Method struct {
	Name  string
	Color string
	Kind  string
}

// Method kinds, used for the comparison legend.
const (
	KindLab   = "Laboratory Reference Methods"
	KindField = "Commercial Field Methods"
	KindOurs  = "AquaNeuron (This Work)"
)

// Methods lists the compared methods; the last entry is this work.
var Methods = []Method{
	{Name: "ICP-MS (Lab)", Color: Silver, Kind: KindLab},
	{Name: "AAS (Lab)", Color: Silver, Kind: KindLab},
	{Name: "Field Kit (Strip)", Color: SkyBlue, Kind: KindField},
	{Name: "Commercial Electrode", Color: SkyBlue, Kind: KindField},
	{Name: "Colorimetric Kit", Color: SkyBlue, Kind: KindField},
	{Name: "AquaNeuron", Color: Green, Kind: KindOurs},
}

// Metric is one comparison dimension with a value per Method.
type Metric struct {
	Name   string
	Values []float64
}

// Metrics holds one value per entry of Methods.
var Metrics = []Metric{
	{Name: "Detection Limit (ppb)", Values: []float64{0.1, 0.5, 10, 5, 8, 0.8}},
	{Name: "Analysis Time (min)", Values: []float64{240, 180, 10, 30, 20, 3}},
	{Name: "Cost per Test (₹)", Values: []float64{2500, 1800, 150, 800, 350, 12}},
	{Name: "Simultaneous Analytes", Values: []float64{20, 5, 1, 1, 1, 3}},
	{Name: "Portability (1=portable)", Values: []float64{0, 0, 1, 1, 1, 1}},
	{Name: "AI-Enabled (0/1)", Values: []float64{0, 0, 0, 0, 0, 1}},
}
