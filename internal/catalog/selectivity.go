package catalog

// Cross-reactivity of each aptamer channel (rows) against each tested
// analyte (columns), normalised to the target response.
var (
	SelectivityAnalytes = []string{"As³⁺", "Sb³⁺", "Se⁴⁺", "F⁻", "Cl⁻", "NO₃⁻", "SO₄²⁻", "Pb²⁺", "Cd²⁺", "Cu²⁺", "Zn²⁺", "Hg²⁺"}
	SelectivityChannels = []string{"As-Aptamer", "F-Aptamer", "Pb-Aptamer"}
	SelectivityColors   = []string{Navy, Orange, Red}
	CrossReactivity     = [][]float64{
		{1.00, 0.12, 0.08, 0.02, 0.01, 0.01, 0.01, 0.04, 0.03, 0.05, 0.02, 0.03},
		{0.02, 0.03, 0.04, 1.00, 0.11, 0.07, 0.08, 0.02, 0.01, 0.03, 0.01, 0.02},
		{0.03, 0.04, 0.02, 0.01, 0.01, 0.02, 0.01, 1.00, 0.14, 0.09, 0.06, 0.11},
	}
	// Interferents are the off-target analytes scored in the selectivity bars.
	// SO₄²⁻ is measured but not scored.
	Interferents = []string{"Sb³⁺", "Se⁴⁺", "Cl⁻", "NO₃⁻", "Cd²⁺", "Cu²⁺", "Zn²⁺", "Hg²⁺"}
)

// SelectivityThreshold is the minimum acceptable selectivity factor.
const SelectivityThreshold = 0.9
