package catalog

// Region is one state of the groundwater risk table. Hazard indices are on a
// 0-10 scale and population is in millions.
type Region struct {
	State      string
	Arsenic    float64
	Fluoride   float64
	Lead       float64
	Population float64
}

var (
	regionStates = []string{"Uttar Pradesh", "West Bengal", "Bihar", "Assam", "Jharkhand",
		"Andhra Pradesh", "Telangana", "Rajasthan", "Gujarat", "Punjab",
		"Haryana", "Madhya Pradesh", "Chhattisgarh", "Maharashtra", "Karnataka",
		"Tamil Nadu", "Odisha", "Delhi", "Himachal Pradesh", "Uttarakhand"}
	regionArsenic  = []float64{7.2, 9.2, 7.8, 8.5, 6.1, 4.2, 3.9, 2.1, 2.8, 3.1, 3.4, 3.8, 4.2, 2.3, 1.9, 2.1, 5.1, 4.5, 2.1, 1.8}
	regionFluoride = []float64{4.2, 2.1, 2.3, 1.8, 3.1, 8.1, 7.2, 8.9, 7.2, 5.8, 6.1, 7.1, 4.8, 5.2, 6.9, 7.8, 3.2, 4.1, 3.1, 2.9}
	regionLead     = []float64{5.8, 4.2, 5.1, 3.8, 6.2, 3.9, 4.2, 3.2, 4.8, 4.1, 3.9, 4.2, 4.1, 5.1, 2.8, 3.1, 3.8, 6.8, 2.1, 1.9}
	regionPop      = []float64{231, 91, 128, 35, 38, 53, 39, 79, 68, 30, 29, 85, 30, 124, 67, 77, 46, 32, 8, 11}
)

// Regions assembles the typed region records from the parallel source
// columns. It fails with apperr.ErrMalformedTable if the columns disagree.
func Regions() ([]Region, error) {
	return zipRegions(regionStates, regionArsenic, regionFluoride, regionLead, regionPop)
}

func zipRegions(states []string, as, f, pb, pop []float64) ([]Region, error) {
	if err := sameLength("regions", len(states), map[string]int{
		"arsenic": len(as), "fluoride": len(f), "lead": len(pb), "population": len(pop),
	}); err != nil {
		return nil, err
	}
	out := make([]Region, len(states))
	for i, s := range states {
		out[i] = Region{State: s, Arsenic: as[i], Fluoride: f[i], Lead: pb[i], Population: pop[i]}
	}
	return out, nil
}

// Risk thresholds drawn on the combined index.
const (
	HighRisk     = 5.0
	ModerateRisk = 3.5
)
