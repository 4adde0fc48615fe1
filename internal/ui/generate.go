package ui

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// GenerateUI prints the console output of a figure run: the start banner,
// one confirmation line per saved artifact and the completion summary.
type GenerateUI struct {
	writer    io.Writer
	quiet     bool
	workflow  *Workflow
	tasks     map[string]int
	startTime time.Time
	saved     []string
}

// NewGenerateUI creates a new UI handler for the generate command
func NewGenerateUI(w io.Writer, quiet bool) *GenerateUI {
	return &GenerateUI{
		writer:    w,
		quiet:     quiet,
		tasks:     map[string]int{},
		startTime: time.Now(),
	}
}

// PrintBanner prints the start banner.
func (g *GenerateUI) PrintBanner() {
	if g.quiet {
		return
	}
	fmt.Fprintln(g.writer)
	fmt.Fprintln(g.writer, RenderBanner())
}

// StartWorkflow registers one task per figure title. With animate false the
// task list is only printed once, when the workflow finishes.
func (g *GenerateUI) StartWorkflow(figures []string, animate bool) {
	if g.quiet {
		return
	}
	g.startTime = time.Now()
	g.workflow = NewWorkflow(g.writer)
	g.workflow.Animate = animate
	for _, name := range figures {
		g.tasks[name] = g.workflow.AddTask(name)
	}
	g.workflow.Start()
}

// StartFigure marks a figure as running.
func (g *GenerateUI) StartFigure(name, stage string) {
	if g.quiet || g.workflow == nil {
		return
	}
	g.workflow.StartTask(g.tasks[name], stage)
}

// CompleteFigure marks a figure as saved at path.
func (g *GenerateUI) CompleteFigure(name, path string) {
	g.saved = append(g.saved, path)
	if g.quiet || g.workflow == nil {
		return
	}
	g.workflow.CompleteTask(g.tasks[name], path)
}

// FailFigure marks a figure as failed.
func (g *GenerateUI) FailFigure(name string, err error) {
	if g.quiet || g.workflow == nil {
		return
	}
	g.workflow.FailTask(g.tasks[name], err.Error())
}

// SkipFigure marks a figure as not attempted.
func (g *GenerateUI) SkipFigure(name, reason string) {
	if g.quiet || g.workflow == nil {
		return
	}
	g.workflow.SkipTask(g.tasks[name], reason)
}

// FinishWorkflow stops the task list and prints one line per saved artifact.
func (g *GenerateUI) FinishWorkflow() {
	if g.quiet {
		return
	}
	if g.workflow != nil {
		g.workflow.Stop()
	}
	fmt.Fprintln(g.writer)
	for _, p := range g.saved {
		fmt.Fprintf(g.writer, "%s Saved: %s\n", GetCheckMark(), p)
	}
}

// Saved returns the artifact paths reported so far.
func (g *GenerateUI) Saved() []string { return append([]string(nil), g.saved...) }

// PrintSummary prints the completion banner and summary box.
func (g *GenerateUI) PrintSummary(outputDir string, extras ...string) {
	if g.quiet {
		return
	}
	elapsed := time.Since(g.startTime)

	var summary strings.Builder
	summary.WriteString(Success.Bold(true).Render(fmt.Sprintf("All %d figures generated successfully.", len(g.saved))))
	summary.WriteString("\n\n")
	summary.WriteString(FormatKeyValue("Output directory", outputDir))
	for _, e := range extras {
		summary.WriteString("\n")
		summary.WriteString(e)
	}
	summary.WriteString("\n")
	summary.WriteString(FormatKeyValue("Duration", elapsed.Round(time.Millisecond).String()))

	fmt.Fprintln(g.writer)
	fmt.Fprintln(g.writer, SuccessBox.Render(summary.String()))
	fmt.Fprintln(g.writer, Secondary.Render(BannerRule))
}

// PrintFailures prints a failure box listing the figures that did not save.
func (g *GenerateUI) PrintFailures(failures map[string]error, order []string) {
	if g.quiet || len(failures) == 0 {
		return
	}
	var b strings.Builder
	b.WriteString(Error.Bold(true).Render(fmt.Sprintf("%d figure(s) failed", len(failures))))
	for _, name := range order {
		err, ok := failures[name]
		if !ok {
			continue
		}
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("%s %s: %v", GetCrossMark(), name, err))
	}
	fmt.Fprintln(g.writer)
	fmt.Fprintln(g.writer, ErrorBox.Render(b.String()))
}

// LogStep prints a simple log message (non-workflow mode)
func (g *GenerateUI) LogStep(icon, message string) {
	if g.quiet {
		return
	}
	fmt.Fprintln(g.writer, FormatStatus(icon, message))
}
