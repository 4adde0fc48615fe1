// Package summary exports the key numbers behind every figure as YAML, so a
// run can be compared with another without looking at the images.
package summary

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"

	yaml "go.yaml.in/yaml/v3"
)

// Metric is one named number of a figure.
type Metric struct {
	Name  string  `yaml:"name"`
	Value float64 `yaml:"value"`
	Unit  string  `yaml:"unit,omitempty"`
}

// M builds a Metric.
func M(name string, value float64, unit string) Metric {
	return Metric{Name: name, Value: value, Unit: unit}
}

// Figure groups the metrics of one figure.
type Figure struct {
	ID      string   `yaml:"id"`
	File    string   `yaml:"file"`
	Metrics []Metric `yaml:"metrics"`
}

// Document is the whole summary of a run.
type Document struct {
	Generator string   `yaml:"generator"`
	Version   string   `yaml:"version,omitempty"`
	Seed      uint64   `yaml:"seed"`
	Figures   []Figure `yaml:"figures"`
}

// Encode writes d as YAML. Non-finite values cannot be represented
// portably and are rejected.
func (d Document) Encode(w io.Writer) error {
	for _, f := range d.Figures {
		for _, m := range f.Metrics {
			if math.IsNaN(m.Value) || math.IsInf(m.Value, 0) {
				return fmt.Errorf("summary: %s/%s is not finite", f.ID, m.Name)
			}
		}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("summary: encode: %w", err)
	}
	return enc.Close()
}

// Write encodes d into path.
func (d Document) Write(path string) error {
	var buf bytes.Buffer
	if err := d.Encode(&buf); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("summary: write %s: %w", path, err)
	}
	return nil
}

// Read decodes a summary previously written by Write.
func Read(r io.Reader) (Document, error) {
	var d Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&d); err != nil {
		return Document{}, fmt.Errorf("summary: decode: %w", err)
	}
	return d, nil
}

// Lookup returns the value of metric name in figure id.
func (d Document) Lookup(id, name string) (float64, bool) {
	for _, f := range d.Figures {
		if f.ID != id {
			continue
		}
		for _, m := range f.Metrics {
			if m.Name == name {
				return m.Value, true
			}
		}
	}
	return 0, false
}
