package figures

import (
	"context"
	"errors"
	"image"
	"os"
	"reflect"
	"testing"

	"github.com/aquaneuron/aquaneuron-sim/internal/apperr"
	"github.com/aquaneuron/aquaneuron-sim/internal/catalog"
	"github.com/aquaneuron/aquaneuron-sim/internal/config"
	"github.com/aquaneuron/aquaneuron-sim/internal/sink"
	"github.com/aquaneuron/aquaneuron-sim/internal/summary"
)

// quick keeps the simulated figures fast enough for unit tests.
func quick() config.Config {
	cfg := config.Default()
	cfg.Bootstrap.Replicates = 40
	cfg.MonteCarloDraws = 500
	cfg.Forest.Trees = 20
	cfg.Forest.MaxDepth = 8
	cfg.Forest.Folds = 3
	cfg.Embedding.Sample = 120
	cfg.Embedding.Perplexity = 30
	cfg.Embedding.Iterations = 250
	return cfg
}

func mustLookup(t *testing.T, key string) Figure {
	t.Helper()
	f, ok := Lookup(key)
	if !ok {
		t.Fatalf("Lookup(%q) found nothing", key)
	}
	return f
}

func TestRegistry_Order(t *testing.T) {
	want := []string{"isotherms", "sensor", "india", "ai", "comparison", "selectivity", "architecture", "validation"}
	all := All()
	if len(all) != len(want) {
		t.Fatalf("got %d figures, want %d", len(all), len(want))
	}
	for i, f := range all {
		if f.ID != want[i] || f.Index != i+1 {
			t.Fatalf("figure %d = %s (index %d), want %s", i, f.ID, f.Index, want[i])
		}
		if f.File == "" || f.Size.X <= 0 || f.Size.Y <= 0 {
			t.Fatalf("figure %s has no file or size", f.ID)
		}
	}
}

func TestLookup_Keys(t *testing.T) {
	india := mustLookup(t, "india")
	for _, k := range []string{"3", "fig3", "FIG3", " india ", india.File} {
		if f := mustLookup(t, k); f.ID != "india" {
			t.Fatalf("Lookup(%q) = %s, want india", k, f.ID)
		}
	}
	if _, ok := Lookup("fig9"); ok {
		t.Fatalf("fig9 should not resolve")
	}
}

func TestSelect(t *testing.T) {
	figs, err := Select([]string{"validation", "1", "isotherms"})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(figs) != 2 || figs[0].ID != "isotherms" || figs[1].ID != "validation" {
		t.Fatalf("Select order/dedupe wrong: %v", Files(figs))
	}

	all, err := Select(nil)
	if err != nil || len(all) != len(registry) {
		t.Fatalf("Select(nil) = %d figures, %v", len(all), err)
	}

	_, err = Select([]string{"sensor", "nope"})
	if !apperr.IsUser(err) {
		t.Fatalf("expected user error for unknown figure, got %v", err)
	}
}

func TestRankRegions(t *testing.T) {
	regions, err := catalog.Regions()
	if err != nil {
		t.Fatalf("Regions: %v", err)
	}
	ranked := RankRegions(regions)
	if len(ranked) != len(regions) {
		t.Fatalf("ranked %d regions, want %d", len(ranked), len(regions))
	}
	for i, r := range ranked {
		want := (r.Arsenic + r.Fluoride + r.Lead) / 3
		if r.Combined != want {
			t.Fatalf("%s combined = %v, want %v", r.State, r.Combined, want)
		}
		if r.PopAtRisk != r.Population*r.Combined/10 {
			t.Fatalf("%s population at risk = %v", r.State, r.PopAtRisk)
		}
		if i > 0 && ranked[i-1].Combined < r.Combined {
			t.Fatalf("not descending at %d: %v < %v", i, ranked[i-1].Combined, r.Combined)
		}
	}
}

func TestRankRegions_TiesKeepTableOrder(t *testing.T) {
	in := []catalog.Region{
		{State: "a", Arsenic: 3, Fluoride: 3, Lead: 3},
		{State: "b", Arsenic: 9, Fluoride: 9, Lead: 9},
		{State: "c", Arsenic: 1, Fluoride: 5, Lead: 3},
	}
	got := RankRegions(in)
	if got[0].State != "b" || got[1].State != "a" || got[2].State != "c" {
		t.Fatalf("order = %s %s %s, want b a c", got[0].State, got[1].State, got[2].State)
	}
	if got[2].Dominant() != catalog.Fluoride {
		t.Fatalf("dominant of c = %s", got[2].Dominant())
	}
}

func TestComparison_Metrics(t *testing.T) {
	data, err := buildComparison(context.Background(), NewEnv(quick(), mustLookup(t, "comparison")))
	if err != nil {
		t.Fatal(err)
	}
	d := data.(*ComparisonData)
	if len(d.Rows) != len(catalog.Metrics) {
		t.Fatalf("rows = %d, want %d", len(d.Rows), len(catalog.Metrics))
	}
	// one value per metric plus an advantage for the three lower-is-better ones
	if got, want := len(d.Metrics()), len(catalog.Metrics)+3; got != want {
		t.Fatalf("metrics = %d, want %d", got, want)
	}
	for i := 0; i < 3; i++ {
		if a := d.Advantage(i); a <= 0 {
			t.Fatalf("advantage on %s = %v", d.Rows[i].Name, a)
		}
	}
}

func TestSelectivityFactors(t *testing.T) {
	analytes := []string{"As", "F", "Pb", "Cu"}
	matrix := [][]float64{{1, 0.1, 0.2, 0.05}, {0.1, 1, 0.04, 0.02}}
	f, err := SelectivityFactors(analytes, matrix, []string{"F", "Cu"})
	if err != nil {
		t.Fatalf("SelectivityFactors: %v", err)
	}
	want := [][]float64{{0.9, 0.95}, {0, 0.98}}
	for ch := range want {
		for i := range want[ch] {
			if d := f[ch][i] - want[ch][i]; d > 1e-12 || d < -1e-12 {
				t.Fatalf("factor[%d][%d] = %v, want %v", ch, i, f[ch][i], want[ch][i])
			}
		}
	}

	if _, err := SelectivityFactors(analytes, matrix, []string{"Hg"}); !errors.Is(err, apperr.ErrMalformedTable) {
		t.Fatalf("expected malformed table for unknown interferent, got %v", err)
	}
	if _, err := SelectivityFactors(analytes, [][]float64{{1, 0}}, []string{"F"}); !errors.Is(err, apperr.ErrMalformedTable) {
		t.Fatalf("expected malformed table for short row, got %v", err)
	}
}

func TestIsotherms_BandsOrdered(t *testing.T) {
	data, err := mustLookup(t, "isotherms").Build(context.Background(), quick())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	d := data.(*IsothermData)
	if len(d.Panels) != len(catalog.Contaminants) {
		t.Fatalf("got %d panels", len(d.Panels))
	}
	for _, p := range d.Panels {
		if p.Kept < 1 || p.Kept > p.Attempted {
			t.Fatalf("%s kept %d of %d", p.Contaminant.Analyte, p.Kept, p.Attempted)
		}
		for _, b := range []struct {
			lo, mid, hi []float64
		}{
			{p.LangmuirBand.Lower, p.LangmuirBand.Median, p.LangmuirBand.Upper},
			{p.FreundlichBand.Lower, p.FreundlichBand.Median, p.FreundlichBand.Upper},
		} {
			for i := range b.mid {
				if b.lo[i] > b.mid[i] || b.mid[i] > b.hi[i] {
					t.Fatalf("%s band out of order at %d: %v %v %v", p.Contaminant.Analyte, i, b.lo[i], b.mid[i], b.hi[i])
				}
			}
		}
	}
}

func TestBuild_Reproducible(t *testing.T) {
	cfg := quick()
	for _, id := range []string{"isotherms", "sensor", "validation"} {
		f := mustLookup(t, id)
		a, err := f.Build(context.Background(), cfg)
		if err != nil {
			t.Fatalf("%s: %v", id, err)
		}
		b, err := f.Build(context.Background(), cfg)
		if err != nil {
			t.Fatalf("%s: %v", id, err)
		}
		if !reflect.DeepEqual(a, b) {
			t.Fatalf("%s: two builds with the same seed differ", id)
		}
	}
}

func TestBuild_StagesDrawIndependently(t *testing.T) {
	ctx := context.Background()
	small, large := quick(), quick()
	large.Bootstrap.Replicates = 60
	large.MonteCarloDraws = 800

	iso := mustLookup(t, "isotherms")
	a, err := iso.Build(ctx, small)
	if err != nil {
		t.Fatal(err)
	}
	b, err := iso.Build(ctx, large)
	if err != nil {
		t.Fatal(err)
	}
	ia, ib := a.(*IsothermData), b.(*IsothermData)
	for i := range ia.Panels {
		if !reflect.DeepEqual(ia.Panels[i].ExpY, ib.Panels[i].ExpY) {
			t.Fatalf("experimental points depend on the bootstrap size")
		}
		if !reflect.DeepEqual(ia.Linear[i].CQ, ib.Linear[i].CQ) {
			t.Fatalf("linearised data depend on the bootstrap size")
		}
	}

	sensor := mustLookup(t, "sensor")
	a, err = sensor.Build(ctx, small)
	if err != nil {
		t.Fatal(err)
	}
	b, err = sensor.Build(ctx, large)
	if err != nil {
		t.Fatal(err)
	}
	sa, sb := a.(*SensorData), b.(*SensorData)
	if !reflect.DeepEqual(sa.DriftRates, sb.DriftRates) || !reflect.DeepEqual(sa.Drift, sb.Drift) {
		t.Fatalf("drift depends on the Monte Carlo draw count")
	}
}

func TestBuild_SeedChangesValidation(t *testing.T) {
	cfg := quick()
	f := mustLookup(t, "validation")
	a, err := f.Build(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	cfg.ValidationSeed++
	b, err := f.Build(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if reflect.DeepEqual(a, b) {
		t.Fatalf("different validation seeds produced identical data")
	}
}

func TestValidation_Agreement(t *testing.T) {
	data, err := mustLookup(t, "validation").Build(context.Background(), quick())
	if err != nil {
		t.Fatal(err)
	}
	d := data.(*ValidationData)
	if len(d.Sets) != len(catalog.ValidationSets) {
		t.Fatalf("got %d sets", len(d.Sets))
	}
	for _, c := range d.Sets {
		if len(c.Reference) != catalog.ValidationSamples {
			t.Fatalf("%s: %d samples", c.Set.Label, len(c.Reference))
		}
		for _, x := range c.Reference {
			if x < c.Set.RefLo || x >= c.Set.RefHi {
				t.Fatalf("%s reference %v outside [%v, %v)", c.Set.Label, x, c.Set.RefLo, c.Set.RefHi)
			}
		}
		a := c.Agreement
		if a.LowerLoA > a.Bias || a.Bias > a.UpperLoA {
			t.Fatalf("%s limits of agreement out of order", c.Set.Label)
		}
		if c.R < 0.95 || c.Fit.Slope < 0.9 || c.Fit.Slope > 1.1 {
			t.Fatalf("%s: r=%v slope=%v, expected close agreement", c.Set.Label, c.R, c.Fit.Slope)
		}
	}
}

func TestClassifier_Consistent(t *testing.T) {
	data, err := mustLookup(t, "ai").Build(context.Background(), quick())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	d := data.(*ClassifierData)
	for i, row := range d.Confusion.Counts {
		sum := 0
		for _, v := range row {
			sum += v
		}
		if sum != d.TestCounts[i] {
			t.Fatalf("confusion row %d sums to %d, want %d", i, sum, d.TestCounts[i])
		}
	}
	if d.TrainSize+d.TestSize != len(catalog.WaterClasses)*catalog.SamplesPerClass {
		t.Fatalf("split sizes %d+%d", d.TrainSize, d.TestSize)
	}
	for _, v := range []float64{d.TestAccuracy, d.CV.Mean, d.MeanAUC()} {
		if v < 0 || v > 1 {
			t.Fatalf("score %v outside [0, 1]", v)
		}
	}
	if len(d.Embedding.Points) != len(d.EmbeddedLabels) {
		t.Fatalf("%d embedded points for %d labels", len(d.Embedding.Points), len(d.EmbeddedLabels))
	}
}

func TestRun_WritesCheapFigures(t *testing.T) {
	figs, err := Select([]string{"comparison", "selectivity", "india", "architecture"})
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	rep, err := Run(context.Background(), quick(), figs, sink.New(dir, 0.5), nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	arts := rep.Artifacts()
	if len(arts) != len(figs) {
		t.Fatalf("wrote %d artifacts, want %d", len(arts), len(figs))
	}
	for _, a := range arts {
		if fi, err := os.Stat(a.Path); err != nil || fi.Size() != a.Bytes {
			t.Fatalf("artifact %s missing or wrong size: %v", a.Name, err)
		}
	}

	doc := rep.Summary("aquaneuron-sim", "test", quick())
	if _, ok := doc.Lookup("india", "states_above_high_risk"); !ok {
		t.Fatalf("summary misses india metrics: %+v", doc.Figures)
	}
}

type recorder struct {
	nopObserver
	failed, skipped []string
}

func (r *recorder) FailFigure(name string, _ error) { r.failed = append(r.failed, name) }
func (r *recorder) SkipFigure(name, _ string)      { r.skipped = append(r.skipped, name) }

type noData struct{}

func (noData) Render(*sink.Surface) error { return nil }
func (noData) Metrics() []summary.Metric  { return nil }

func TestRun_FailurePolicy(t *testing.T) {
	boom := errors.New("boom")
	mk := func(i int, id string, err error) Figure {
		return Figure{
			Index: i, ID: id, Title: id, File: id + ".png", Size: image.Pt(40, 30),
			seed:  func(c config.Config) uint64 { return c.Seed },
			build: func(context.Context, Env) (Data, error) { return noData{}, err },
		}
	}
	figs := []Figure{mk(1, "a", nil), mk(2, "b", boom), mk(3, "c", nil)}

	cases := []struct {
		name     string
		failFast bool
		written  int
		skipped  int
	}{
		{"continue", false, 2, 0},
		{"fail-fast", true, 1, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := quick()
			cfg.FailFast = tc.failFast
			obs := &recorder{}
			rep, err := Run(context.Background(), cfg, figs, sink.New(t.TempDir(), 1), obs)
			if !errors.Is(err, boom) {
				t.Fatalf("expected joined build error, got %v", err)
			}
			if len(rep.Artifacts()) != tc.written || len(obs.skipped) != tc.skipped {
				t.Fatalf("written=%d skipped=%d, want %d and %d", len(rep.Artifacts()), len(obs.skipped), tc.written, tc.skipped)
			}
			if len(obs.failed) != 1 || obs.failed[0] != "b" {
				t.Fatalf("failed = %v", obs.failed)
			}
			if _, ok := rep.Failures()["b"]; !ok {
				t.Fatalf("report has no failure for b")
			}
		})
	}
}

func TestRun_CancelledSkipsEverything(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	obs := &recorder{}
	figs, _ := Select([]string{"comparison", "selectivity"})
	rep, err := Run(ctx, quick(), figs, sink.New(t.TempDir(), 1), obs)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(obs.skipped) != 2 || len(rep.Artifacts()) != 0 {
		t.Fatalf("skipped=%v artifacts=%d", obs.skipped, len(rep.Artifacts()))
	}
}
