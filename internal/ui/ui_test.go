package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/charmbracelet/huh"

	"github.com/aquaneuron/aquaneuron-sim/internal/apperr"
)

func TestColorAppliesANSICodes(t *testing.T) {
	got := Color("hello", FgGreen)
	want := FgGreen + "hello" + Reset
	if got != want {
		t.Fatalf("Color() = %q, want %q", got, want)
	}
}

func TestColorDisabled(t *testing.T) {
	Init(true)
	defer Init(false)
	if got := Color("hello", FgRed); got != "hello" {
		t.Fatalf("Color() with colours disabled = %q", got)
	}
}

func TestGenerateUI_Quiet(t *testing.T) {
	var buf bytes.Buffer
	g := NewGenerateUI(&buf, true)
	g.PrintBanner()
	g.StartWorkflow([]string{"a"}, false)
	g.StartFigure("a", "simulating")
	g.CompleteFigure("a", "/out/a.png")
	g.FinishWorkflow()
	g.PrintSummary("/out")
	if buf.Len() != 0 {
		t.Fatalf("quiet UI wrote %q", buf.String())
	}
	if s := g.Saved(); len(s) != 1 || s[0] != "/out/a.png" {
		t.Fatalf("Saved() = %v", s)
	}
}

func TestGenerateUI_RunWithoutAnimation(t *testing.T) {
	Init(true)
	defer Init(false)

	var buf bytes.Buffer
	g := NewGenerateUI(&buf, false)
	g.StartWorkflow([]string{"Isotherms", "Sensor", "Regional"}, false)
	g.StartFigure("Isotherms", "simulating")
	g.CompleteFigure("Isotherms", "/out/fig1.png")
	g.FailFigure("Sensor", errors.New("no convergence"))
	g.SkipFigure("Regional", "not attempted")
	g.FinishWorkflow()
	g.PrintFailures(map[string]error{"Sensor": errors.New("no convergence")}, []string{"Isotherms", "Sensor", "Regional"})

	out := buf.String()
	for _, want := range []string{"Saved: /out/fig1.png", "no convergence", "not attempted", "1 figure(s) failed"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output misses %q:\n%s", want, out)
		}
	}
}

func TestGenerateUI_Summary(t *testing.T) {
	Init(true)
	defer Init(false)

	var buf bytes.Buffer
	g := NewGenerateUI(&buf, false)
	g.CompleteFigure("a", "/out/a.png")
	g.CompleteFigure("b", "/out/b.png")
	g.PrintSummary("/out", FormatKeyValue("Manifest", "/out/manifest.cdx.json"))
	out := buf.String()
	for _, want := range []string{"All 2 figures generated successfully.", "Output directory: /out", "Manifest: /out/manifest.cdx.json"} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary misses %q:\n%s", want, out)
		}
	}
}

func TestWorkflow_Status(t *testing.T) {
	wf := NewWorkflow(&bytes.Buffer{})
	wf.Animate = false
	a := wf.AddTask("a")
	b := wf.AddTask("b")
	wf.Start()
	wf.StartTask(a, "")
	wf.CompleteTask(a, "done")
	wf.SkipTask(b, "later")
	wf.Stop()
	if wf.Status(a) != TaskDone || wf.Status(b) != TaskSkipped {
		t.Fatalf("statuses = %v %v", wf.Status(a), wf.Status(b))
	}
	if wf.Status(7) != TaskPending {
		t.Fatalf("unknown task should read as pending")
	}
}

func TestStatsUI_PrintReport(t *testing.T) {
	Init(true)
	defer Init(false)

	var buf bytes.Buffer
	NewStatsUI(&buf).PrintReport(StatsReport{
		Seed: 2026,
		Figures: []FigureStats{{
			ID:   "ai",
			File: "fig4.png",
			Metrics: []MetricLine{
				{Name: "test_accuracy", Value: 0.973, Score: true},
				{Name: "tsne_kl", Value: 1.25},
				{Name: "as_lod_median", Value: 0.8, Unit: "ppb"},
			},
		}},
	})
	out := buf.String()
	for _, want := range []string{"Seed: 2026", "ai", "fig4.png", "0.973", "1.25", "0.8 ppb", "█"} {
		if !strings.Contains(out, want) {
			t.Fatalf("report misses %q:\n%s", want, out)
		}
	}
}

func TestRenderProgressBar(t *testing.T) {
	Init(true)
	defer Init(false)

	tests := []struct {
		name   string
		score  float64
		width  int
		filled int
	}{
		{"full", 1.0, 10, 10},
		{"half", 0.5, 10, 5},
		{"empty", 0.0, 10, 0},
		{"clamped", 1.7, 20, 20},
		{"negative", -1, 8, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := renderProgressBar(tt.score, tt.width)
			if n := utf8.RuneCountInString(bar); n != tt.width {
				t.Fatalf("bar has %d runes, want %d", n, tt.width)
			}
			if n := strings.Count(bar, "░"); n != tt.width-tt.filled {
				t.Fatalf("bar has %d empty cells, want %d", n, tt.width-tt.filled)
			}
			if n := strings.Count(bar, "█"); n != tt.filled {
				t.Fatalf("bar has %d filled cells, want %d", n, tt.filled)
			}
		})
	}
}

func TestConfirmOverwrite_NothingToOverwrite(t *testing.T) {
	ok, err := ConfirmOverwrite("/out", nil)
	if err != nil || !ok {
		t.Fatalf("ConfirmOverwrite(nil) = %v, %v", ok, err)
	}
}

func TestConfirmOverwrite_AbortIsCancellation(t *testing.T) {
	Init(true)
	defer Init(false)
	orig := runForm
	defer func() { runForm = orig }()

	runForm = func(*huh.Form) error { return huh.ErrUserAborted }
	ok, err := ConfirmOverwrite(t.TempDir(), []string{"fig1_isotherms_.png"})
	if ok || !errors.Is(err, apperr.ErrCancelled) {
		t.Fatalf("ConfirmOverwrite() = %v, %v; want false, ErrCancelled", ok, err)
	}

	boom := errors.New("terminal gone")
	runForm = func(*huh.Form) error { return boom }
	if _, err := ConfirmOverwrite(t.TempDir(), []string{"fig1_isotherms_.png"}); !errors.Is(err, boom) {
		t.Fatalf("other form errors should pass through, got %v", err)
	}
}
