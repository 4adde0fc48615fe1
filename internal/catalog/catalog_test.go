package catalog

import (
	"errors"
	"testing"

	"github.com/aquaneuron/aquaneuron-sim/internal/apperr"
)

func TestValidate_LiteralTablesAreConsistent(t *testing.T) {
	if err := Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestRegions_ZipsColumns(t *testing.T) {
	rs, err := Regions()
	if err != nil {
		t.Fatalf("Regions: %v", err)
	}
	if len(rs) != 20 {
		t.Fatalf("got %d regions, want 20", len(rs))
	}
	up := rs[0]
	if up.State != "Uttar Pradesh" || up.Arsenic != 7.2 || up.Fluoride != 4.2 || up.Lead != 5.8 || up.Population != 231 {
		t.Fatalf("first region = %+v", up)
	}
}

func TestZipRegions_MismatchedColumns(t *testing.T) {
	_, err := zipRegions([]string{"A", "B"}, []float64{1, 2}, []float64{1}, []float64{1, 2}, []float64{1, 2})
	if !errors.Is(err, apperr.ErrMalformedTable) {
		t.Fatalf("expected ErrMalformedTable, got %v", err)
	}
}

func TestLookup(t *testing.T) {
	c, ok := Lookup(Fluoride)
	if !ok || c.Isotherm.Kd != 32.1 || c.WHOLimit != 1500 {
		t.Fatalf("Lookup(F) = %+v, %v", c, ok)
	}
	if _, ok := Lookup("Hg"); ok {
		t.Fatalf("unexpected hit for unknown analyte")
	}
}

func TestSelectivityInterferentsExcludeTargets(t *testing.T) {
	for _, name := range Interferents {
		for _, target := range []string{"As³⁺", "F⁻", "Pb²⁺"} {
			if name == target {
				t.Fatalf("target %q listed as interferent", target)
			}
		}
	}
}

func TestMethods_LastIsThisWork(t *testing.T) {
	if Methods[len(Methods)-1].Kind != KindOurs {
		t.Fatalf("last method kind = %q", Methods[len(Methods)-1].Kind)
	}
}
