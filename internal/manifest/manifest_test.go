package manifest

import (
	"bytes"
	"path/filepath"
	"runtime/debug"
	"strings"
	"testing"
	"time"

	cdx "github.com/CycloneDX/cyclonedx-go"

	"github.com/aquaneuron/aquaneuron-sim/internal/catalog"
	"github.com/aquaneuron/aquaneuron-sim/internal/classify"
	"github.com/aquaneuron/aquaneuron-sim/internal/config"
	"github.com/aquaneuron/aquaneuron-sim/internal/figures"
	"github.com/aquaneuron/aquaneuron-sim/internal/sink"
)

func fixtureReport() figures.Report {
	fig := func(id, file string) figures.Figure { return figures.Figure{ID: id, Title: id, File: file} }
	art := func(name, sum string) sink.Artifact {
		return sink.Artifact{Name: name, Path: "/out/" + name, Width: 10, Height: 5, Bytes: 42, SHA256: sum}
	}
	cd := &figures.ClassifierData{
		Forest:       classify.Forest{Trees: 500, MaxDepth: 12, MinSamplesLeaf: 2},
		Classes:      catalog.WaterClasses,
		Features:     catalog.FeatureNames,
		TrainSize:    1200,
		TestSize:     300,
		TestAccuracy: 0.95,
		CV:           classify.CVResult{Mean: 0.94, SD: 0.01},
	}
	for range catalog.WaterClasses {
		cd.ROC = append(cd.ROC, classify.ROC{AUC: 0.99})
	}
	return figures.Report{Outcomes: []figures.Outcome{
		{Figure: fig("ai", "fig4_ai.png"), Data: cd, Artifact: art("fig4_ai.png", "aa")},
		{Figure: fig("validation", "fig8_validation.png"), Data: &figures.ValidationData{}, Artifact: art("fig8_validation.png", "bb")},
		{Figure: fig("sensor", "fig2_sensor.png"), Skipped: true},
	}}
}

func findComponent(bom *cdx.BOM, typ cdx.ComponentType) []cdx.Component {
	var out []cdx.Component
	for _, c := range *bom.Components {
		if c.Type == typ {
			out = append(out, c)
		}
	}
	return out
}

func TestBuild_Components(t *testing.T) {
	now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	defer func() { now = time.Now }()

	bom, err := Build(fixtureReport(), config.Default(), "1.0.0")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !strings.HasPrefix(bom.SerialNumber, "urn:uuid:") {
		t.Fatalf("serial number = %q", bom.SerialNumber)
	}
	if bom.Metadata.Timestamp != "2026-01-02T03:04:05Z" {
		t.Fatalf("timestamp = %q", bom.Metadata.Timestamp)
	}
	if c := bom.Metadata.Component; c.Name != ToolName || c.Version != "1.0.0" {
		t.Fatalf("metadata component = %+v", c)
	}

	files := findComponent(bom, cdx.ComponentTypeFile)
	if len(files) != 2 {
		t.Fatalf("got %d file components, want 2 (skipped figures are left out)", len(files))
	}
	if h := (*files[0].Hashes)[0]; h.Algorithm != cdx.HashAlgoSHA256 || h.Value != "aa" {
		t.Fatalf("file hash = %+v", h)
	}
	if data := findComponent(bom, cdx.ComponentTypeData); len(data) != 2 {
		t.Fatalf("got %d dataset components, want 2", len(data))
	}

	models := findComponent(bom, cdx.ComponentTypeMachineLearningModel)
	if len(models) != 1 || models[0].ModelCard == nil {
		t.Fatalf("expected one model with a card, got %d", len(models))
	}
	card := models[0].ModelCard
	if card.ModelParameters.Task != "classification" || len(*card.ModelParameters.Inputs) != len(catalog.FeatureNames) {
		t.Fatalf("model parameters = %+v", card.ModelParameters)
	}
	metrics := *card.QuantitativeAnalysis.PerformanceMetrics
	if metrics[0].Type != "accuracy" || metrics[0].Value != "0.9500" {
		t.Fatalf("first metric = %+v", metrics[0])
	}
	if len(metrics) != 4+len(catalog.WaterClasses) {
		t.Fatalf("got %d metrics", len(metrics))
	}

	deps := *bom.Dependencies
	if deps[0].Ref != bom.Metadata.Component.BOMRef || len(*deps[0].Dependencies) != 4 {
		t.Fatalf("root dependency = %+v", deps[0])
	}
}

func TestBuild_WithoutClassifier(t *testing.T) {
	rep := figures.Report{Outcomes: []figures.Outcome{{
		Figure:   figures.Figure{ID: "india", File: "fig3_india.png"},
		Artifact: sink.Artifact{Name: "fig3_india.png", Path: "/out/fig3_india.png", SHA256: "cc"},
	}}}
	bom, err := Build(rep, config.Default(), "")
	if err != nil {
		t.Fatal(err)
	}
	if len(findComponent(bom, cdx.ComponentTypeMachineLearningModel)) != 0 {
		t.Fatalf("model card without figure 4")
	}
	if bom.Metadata.Component.Version != "devel" {
		t.Fatalf("empty version should read devel, got %q", bom.Metadata.Component.Version)
	}
}

func TestRef_Stable(t *testing.T) {
	if ref("file", "a.png") != ref("file", "a.png") {
		t.Fatalf("ref not stable")
	}
	if ref("file", "a.png") == ref("file", "b.png") || ref("file", "a.png") == ref("dataset", "a.png") {
		t.Fatalf("refs collide")
	}
}

func TestWriteRead(t *testing.T) {
	bom, err := Build(fixtureReport(), config.Default(), "1.0.0")
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"m.cdx.json", "m.cdx.xml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			if err := Write(bom, path, ""); err != nil {
				t.Fatalf("Write: %v", err)
			}
			got, err := Read(path)
			if err != nil {
				t.Fatalf("Read: %v", err)
			}
			if got.SerialNumber != bom.SerialNumber || len(*got.Components) != len(*bom.Components) {
				t.Fatalf("read back %s with %d components", got.SerialNumber, len(*got.Components))
			}
		})
	}
}

func TestWrite_Errors(t *testing.T) {
	bom := cdx.NewBOM()
	dir := t.TempDir()
	if err := Write(bom, filepath.Join(dir, "m.yaml"), ""); err == nil {
		t.Fatalf("expected error for unsupported extension")
	}
	if err := Write(bom, filepath.Join(dir, "m.json"), "1.2"); err == nil {
		t.Fatalf("expected error for spec without model cards")
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(&buf)
	defer SetLogger(nil)

	path := filepath.Join(t.TempDir(), DefaultName)
	if err := Write(cdx.NewBOM(), path, "1.6"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "wrote "+path) {
		t.Fatalf("missing log line: %q", buf.String())
	}
}

func TestGeneratorVersion(t *testing.T) {
	origVersion, origCommit, origRead := Version, Commit, readBuildInfo
	defer func() { Version, Commit, readBuildInfo = origVersion, origCommit, origRead }()
	readBuildInfo = func() (*debug.BuildInfo, bool) { return nil, false }
	t.Setenv("PATH", t.TempDir())

	tests := []struct {
		name, version, commit, want string
	}{
		{"ldflags", "1.2.3", "", "1.2.3"},
		{"commit fallback", "", "deadbeef", "commit-deadbeef"},
		{"devel fallback", "", "", "devel"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Version, Commit = tt.version, tt.commit
			if got := GeneratorVersion(); got != tt.want {
				t.Fatalf("GeneratorVersion() = %q, want %q", got, tt.want)
			}
		})
	}
}
