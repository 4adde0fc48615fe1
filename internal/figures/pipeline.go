package figures

import (
	"context"
	"errors"
	"fmt"

	"github.com/aquaneuron/aquaneuron-sim/internal/config"
	"github.com/aquaneuron/aquaneuron-sim/internal/sink"
	"github.com/aquaneuron/aquaneuron-sim/internal/summary"
)

// Observer is told about the progress of a run. Figures are named by their
// Title.
type Observer interface {
	StartFigure(name, stage string)
	CompleteFigure(name, path string)
	FailFigure(name string, err error)
	SkipFigure(name, reason string)
}

type nopObserver struct{}

func (nopObserver) StartFigure(string, string)    {}
func (nopObserver) CompleteFigure(string, string) {}
func (nopObserver) FailFigure(string, error)      {}
func (nopObserver) SkipFigure(string, string)     {}

// Outcome is the result of one figure. Err is set when it failed; Skipped
// when it was never attempted.
type Outcome struct {
	Figure   Figure
	Data     Data
	Artifact sink.Artifact
	Err      error
	Skipped  bool
}

// Report collects the outcomes of a run in generation order.
type Report struct {
	Outcomes []Outcome
}

// Artifacts returns the files written by the run.
func (r Report) Artifacts() []sink.Artifact {
	var out []sink.Artifact
	for _, o := range r.Outcomes {
		if o.Err == nil && !o.Skipped && o.Artifact.Path != "" {
			out = append(out, o.Artifact)
		}
	}
	return out
}

// Failures maps figure titles to their errors.
func (r Report) Failures() map[string]error {
	out := map[string]error{}
	for _, o := range r.Outcomes {
		if o.Err != nil {
			out[o.Figure.Title] = o.Err
		}
	}
	return out
}

// Data returns the built data of figure id, if it was built.
func (r Report) Data(id string) (Data, bool) {
	for _, o := range r.Outcomes {
		if o.Figure.ID == id && o.Data != nil {
			return o.Data, true
		}
	}
	return nil, false
}

// Run builds and saves figs one after another. By default every figure is
// attempted and the failures are joined; with cfg.FailFast the first
// failure stops the run and the remaining figures are skipped. A cancelled
// ctx skips what is left and is reported in the returned error.
func Run(ctx context.Context, cfg config.Config, figs []Figure, s *sink.Sink, obs Observer) (Report, error) {
	if obs == nil {
		obs = nopObserver{}
	}
	if err := s.EnsureDir(); err != nil {
		return Report{}, err
	}
	logf("", "run: %s", cfg)

	var (
		rep  Report
		errs []error
		stop error
	)
	for _, f := range figs {
		if stop == nil {
			stop = ctx.Err()
		}
		if stop != nil {
			obs.SkipFigure(f.Title, "not attempted")
			rep.Outcomes = append(rep.Outcomes, Outcome{Figure: f, Skipped: true})
			continue
		}

		o := runOne(ctx, cfg, f, s, obs)
		rep.Outcomes = append(rep.Outcomes, o)
		if o.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", f.File, o.Err))
			if cfg.FailFast {
				stop = o.Err
			}
		}
	}
	if err := ctx.Err(); err != nil {
		errs = append(errs, err)
	}
	return rep, errors.Join(errs...)
}

func runOne(ctx context.Context, cfg config.Config, f Figure, s *sink.Sink, obs Observer) Outcome {
	o := Outcome{Figure: f}

	obs.StartFigure(f.Title, "simulating")
	data, err := f.Build(ctx, cfg)
	if err != nil {
		o.Err = err
		obs.FailFigure(f.Title, err)
		logf(f.ID, "build failed: %v", err)
		return o
	}
	o.Data = data

	obs.StartFigure(f.Title, "rendering")
	a, err := s.Save(f.File, f.Size, data.Render)
	if err != nil {
		o.Err = err
		obs.FailFigure(f.Title, err)
		logf(f.ID, "save failed: %v", err)
		return o
	}
	o.Artifact = a
	obs.CompleteFigure(f.Title, a.Path)
	return o
}

// BuildAll computes the data of figs without rendering anything. It stops
// at the first error.
func BuildAll(ctx context.Context, cfg config.Config, figs []Figure) (Report, error) {
	var rep Report
	for _, f := range figs {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		data, err := f.Build(ctx, cfg)
		if err != nil {
			return rep, fmt.Errorf("%s: %w", f.ID, err)
		}
		rep.Outcomes = append(rep.Outcomes, Outcome{Figure: f, Data: data})
	}
	return rep, nil
}

// Summary collects the metrics of every built figure of r.
func (r Report) Summary(generator, version string, cfg config.Config) summary.Document {
	doc := summary.Document{Generator: generator, Version: version, Seed: cfg.Seed}
	for _, o := range r.Outcomes {
		if o.Data == nil {
			continue
		}
		doc.Figures = append(doc.Figures, summary.Figure{
			ID:      o.Figure.ID,
			File:    o.Figure.File,
			Metrics: o.Data.Metrics(),
		})
	}
	return doc
}
