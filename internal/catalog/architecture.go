package catalog

// Block is one stage of the system architecture diagram. Geometry is in
// diagram units on a 22×10 board with the origin at the bottom left.
type Block struct {
	X, Y, W, H float64
	Color      string
	Title      []string
	Details    []string
}

// ArchitectureBlocks are drawn left to right along the signal path, with the
// IoT relay hanging below the output stage.
var ArchitectureBlocks = []Block{
	{0.4, 3.5, 2.8, 3.0, Navy, []string{"SAMPLE", "INPUT"}, []string{"0.5 mL groundwater", "Syringe injection", "Microfluidic PDMS", "chamber (500µL)"}},
	{4.0, 3.5, 3.2, 3.0, LightBlue, []string{"GO-APTAMER", "ARRAY"}, []string{"3-channel IDE chip", "As/F/Pb aptamers", "Kd: 12–32 ppb", "LOD: 0.6–5.2 ppb"}},
	{8.1, 3.5, 3.2, 3.0, Teal, []string{"SIGNAL", "CONDITION"}, []string{"Wheatstone bridge", "ADS1115 16-bit ADC", "50 Hz sampling", "pH + TDS + Temp"}},
	{12.2, 3.5, 3.2, 3.0, Violet, []string{"EDGE AI", "ENGINE"}, []string{"Random Forest 500T", "6 input features", "5 output classes", "<2s inference"}},
	{16.3, 3.5, 3.2, 3.0, Green, []string{"OUTPUT &", "DISPLAY"}, []string{"16×2 LCD display", "RGB LED indicator", "80 dB buzzer alert", "IP67 enclosure"}},
	{16.3, 0.2, 3.2, 2.5, Gold, []string{"IoT RELAY"}, []string{"LoRa SX1276 868MHz", "12 km range", "ThingSpeak cloud", "15-min intervals"}},
}

// Arrow is a straight connector between two diagram points.
type Arrow struct {
	X1, Y1, X2, Y2 float64
	Color          string
	Dashed         bool
}

// ArchitectureArrows connect the blocks, the relay and the power subsystem.
var ArchitectureArrows = []Arrow{
	{3.2, 5.0, 4.0, 5.0, Navy, false},
	{7.2, 5.0, 8.1, 5.0, Navy, false},
	{11.3, 5.0, 12.2, 5.0, Navy, false},
	{15.4, 5.0, 16.3, 5.0, Navy, false},
	{17.9, 3.5, 17.9, 2.7, Gold, false},
	{2.6, 2.7, 4.0, 5.0, Gold, true},
}

// PowerSubsystem is the boxed note in the lower left of the diagram.
var PowerSubsystem = Block{
	X: 0.4, Y: 0.2, W: 5.5, H: 2.5, Color: Gold,
	Title: []string{"POWER SUBSYSTEM"},
	Details: []string{
		"10W Polycrystalline Solar Panel",
		"TP4056 Charge Controller",
		"3.7V / 10,000 mAh LiPo Battery",
		"48h autonomous operation",
	},
}

// Headline is one metric tile along the top of the diagram.
type Headline struct {
	Metric string
	Value  string
	Color  string
}

// HeadlineMetrics are the tiles along the top of the diagram.
var HeadlineMetrics = []Headline{
	{"LOD As", "0.8 ppb", Navy},
	{"LOD F", "5.2 ppb", Orange},
	{"LOD Pb", "0.6 ppb", Red},
	{"AI Acc.", "97.3%", Violet},
	{"Response", "<3 min", Teal},
	{"Cost", "₹12/test", Green},
}
