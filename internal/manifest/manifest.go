// Package manifest describes a generation run as a CycloneDX BOM: the
// generator, the classifier behind figure 4 as an ML model card, the
// synthetic datasets it was trained and validated on, and every written
// figure with its SHA-256 hash.
package manifest

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	cdx "github.com/CycloneDX/cyclonedx-go"
	"github.com/google/uuid"

	"github.com/aquaneuron/aquaneuron-sim/internal/catalog"
	"github.com/aquaneuron/aquaneuron-sim/internal/config"
	"github.com/aquaneuron/aquaneuron-sim/internal/figures"
	"github.com/aquaneuron/aquaneuron-sim/internal/sink"
)

const (
	ToolName   = "aquaneuron-sim"
	ToolVendor = "AquaNeuron"

	propertyPrefix = "aquaneuron:"
)

var now = time.Now

// Build assembles the manifest of a run from its report. Figures that were
// not written are left out; the model card is present only when figure 4
// was built.
func Build(rep figures.Report, cfg config.Config, version string) (*cdx.BOM, error) {
	if version == "" {
		version = "devel"
	}
	app := &cdx.Component{
		BOMRef:      ref("application", ToolName),
		Type:        cdx.ComponentTypeApplication,
		Name:        ToolName,
		Version:     version,
		Description: "Synthetic-data simulation and figure generation for the AquaNeuron water-quality sensor",
		Manufacturer: &cdx.OrganizationalEntity{
			Name: ToolVendor,
		},
	}

	bom := cdx.NewBOM()
	bom.SerialNumber = "urn:uuid:" + uuid.New().String()
	bom.Metadata = &cdx.Metadata{
		Timestamp:  now().Format(time.RFC3339),
		Component:  app,
		Properties: configProperties(cfg),
	}

	var comps []cdx.Component
	var fileRefs []string
	for _, a := range rep.Artifacts() {
		c := fileComponent(a)
		comps = append(comps, c)
		fileRefs = append(fileRefs, c.BOMRef)
	}

	deps := []cdx.Dependency{}
	appDeps := append([]string{}, fileRefs...)

	if data, ok := rep.Data("ai"); ok {
		cd, ok := data.(*figures.ClassifierData)
		if !ok {
			return nil, fmt.Errorf("figure ai: unexpected data %T", data)
		}
		train := datasetComponent(cd)
		model := modelComponent(cd, cfg, train.BOMRef)
		comps = append(comps, model, train)
		appDeps = append(appDeps, model.BOMRef)
		deps = append(deps,
			cdx.Dependency{Ref: model.BOMRef, Dependencies: &[]string{train.BOMRef}},
			cdx.Dependency{Ref: train.BOMRef},
		)
	}
	if _, ok := rep.Data("validation"); ok {
		v := validationComponent()
		comps = append(comps, v)
		appDeps = append(appDeps, v.BOMRef)
		deps = append(deps, cdx.Dependency{Ref: v.BOMRef})
	}
	for _, r := range fileRefs {
		deps = append(deps, cdx.Dependency{Ref: r})
	}
	deps = append([]cdx.Dependency{{Ref: app.BOMRef, Dependencies: &appDeps}}, deps...)

	bom.Components = &comps
	bom.Dependencies = &deps
	logf("built manifest with %d components", len(comps))
	return bom, nil
}

// ref is a bom-ref that is stable across runs for the same kind and name.
func ref(kind, name string) string {
	return "urn:uuid:" + uuid.NewSHA1(uuid.NameSpaceURL, []byte(ToolName+"/"+kind+"/"+name)).String()
}

func prop(name, value string) cdx.Property {
	return cdx.Property{Name: propertyPrefix + name, Value: value}
}

func configProperties(cfg config.Config) *[]cdx.Property {
	u := func(v uint64) string { return strconv.FormatUint(v, 10) }
	i := strconv.Itoa
	return &[]cdx.Property{
		prop("seed", u(cfg.Seed)),
		prop("classifier-seed", u(cfg.ClassifierSeed)),
		prop("validation-seed", u(cfg.ValidationSeed)),
		prop("bootstrap-replicates", i(cfg.Bootstrap.Replicates)),
		prop("monte-carlo-samples", i(cfg.MonteCarloDraws)),
		prop("render-scale", strconv.FormatFloat(cfg.Scale, 'g', -1, 64)),
	}
}

func fileComponent(a sink.Artifact) cdx.Component {
	return cdx.Component{
		BOMRef: ref("file", a.Name),
		Type:   cdx.ComponentTypeFile,
		Name:   a.Name,
		Hashes: &[]cdx.Hash{{Algorithm: cdx.HashAlgoSHA256, Value: a.SHA256}},
		Properties: &[]cdx.Property{
			prop("width", strconv.Itoa(a.Width)),
			prop("height", strconv.Itoa(a.Height)),
			prop("bytes", strconv.FormatInt(a.Bytes, 10)),
		},
	}
}

func classNames(cd *figures.ClassifierData) []string {
	out := make([]string, len(cd.Classes))
	for i, c := range cd.Classes {
		out[i] = c.Name
	}
	return out
}

func datasetComponent(cd *figures.ClassifierData) cdx.Component {
	name := "water-quality-synthetic"
	summary := fmt.Sprintf("%d classes x %d samples, features: %s",
		len(cd.Classes), catalog.SamplesPerClass, strings.Join(cd.Features, ", "))
	return cdx.Component{
		BOMRef:      ref("dataset", name),
		Type:        cdx.ComponentTypeData,
		Name:        name,
		Description: "Class-conditional Gaussian sensor readings, standardised before training",
		Data: &[]cdx.ComponentData{{
			Type:        cdx.ComponentDataTypeDataset,
			Description: "Synthetic training and test samples",
			Contents: &cdx.ComponentDataContents{
				Attachment: &cdx.AttachedText{Content: summary, ContentType: "text/plain"},
			},
		}},
		Properties: &[]cdx.Property{
			prop("classes", strings.Join(classNames(cd), ", ")),
			prop("train-size", strconv.Itoa(cd.TrainSize)),
			prop("test-size", strconv.Itoa(cd.TestSize)),
		},
	}
}

func validationComponent() cdx.Component {
	name := "icp-ms-paired-synthetic"
	var ranges []string
	for _, v := range catalog.ValidationSets {
		ranges = append(ranges, fmt.Sprintf("%s %g-%g ppb", v.Label, v.RefLo, v.RefHi))
	}
	return cdx.Component{
		BOMRef:      ref("dataset", name),
		Type:        cdx.ComponentTypeData,
		Name:        name,
		Description: "Simulated sensor readings paired with ICP-MS reference values",
		Data: &[]cdx.ComponentData{{
			Type:        cdx.ComponentDataTypeDataset,
			Description: "Synthetic paired measurements",
		}},
		Properties: &[]cdx.Property{
			prop("samples-per-analyte", strconv.Itoa(catalog.ValidationSamples)),
			prop("reference-ranges", strings.Join(ranges, "; ")),
		},
	}
}

func metric(typ string, v float64) cdx.MLPerformanceMetric {
	return cdx.MLPerformanceMetric{Type: typ, Value: strconv.FormatFloat(v, 'f', 4, 64)}
}

func modelComponent(cd *figures.ClassifierData, cfg config.Config, datasetRef string) cdx.Component {
	metrics := []cdx.MLPerformanceMetric{
		metric("accuracy", cd.TestAccuracy),
		metric(fmt.Sprintf("cv-accuracy-mean (%d-fold)", cfg.Forest.Folds), cd.CV.Mean),
		metric("cv-accuracy-sd", cd.CV.SD),
		metric("roc-auc-macro", cd.MeanAUC()),
	}
	for i, c := range cd.Classes {
		if i < len(cd.ROC) {
			metrics = append(metrics, metric("roc-auc "+c.Name, cd.ROC[i].AUC))
		}
	}

	inputs := make([]cdx.MLInputOutputParameters, len(cd.Features))
	for i, f := range cd.Features {
		inputs[i] = cdx.MLInputOutputParameters{Format: f}
	}
	card := &cdx.MLModelCard{
		ModelParameters: &cdx.MLModelParameters{
			Approach:           &cdx.MLModelParametersApproach{Type: cdx.MLModelParametersApproachType("supervised")},
			Task:               "classification",
			ArchitectureFamily: "random forest",
			ModelArchitecture: fmt.Sprintf("%d trees, max depth %d, min samples per leaf %d, gini impurity",
				cd.Forest.Trees, cd.Forest.MaxDepth, cd.Forest.MinSamplesLeaf),
			Datasets: &[]cdx.MLDatasetChoice{{Ref: datasetRef}},
			Inputs:   &inputs,
			Outputs:  &[]cdx.MLInputOutputParameters{{Format: strings.Join(classNames(cd), " | ")}},
		},
		QuantitativeAnalysis: &cdx.MLQuantitativeAnalysis{
			PerformanceMetrics: &metrics,
		},
		Considerations: &cdx.MLModelCardConsiderations{
			UseCases:             &[]string{"Groundwater contamination class from a three-channel aptamer sensor with pH, TDS and temperature"},
			TechnicalLimitations: &[]string{"Trained and evaluated on synthetic class-conditional data only"},
		},
	}
	return cdx.Component{
		BOMRef:    ref("model", "edge-classifier"),
		Type:      cdx.ComponentTypeMachineLearningModel,
		Name:      "aquaneuron-edge-classifier",
		Version:   "seed-" + strconv.FormatUint(cfg.ClassifierSeed, 10),
		ModelCard: card,
	}
}
