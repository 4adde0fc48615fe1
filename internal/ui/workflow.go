package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// TaskStatus represents the status of a task
type TaskStatus int

const (
	TaskPending TaskStatus = iota
	TaskRunning
	TaskDone
	TaskFailed
	TaskSkipped
)

// Task is one figure (or the manifest/summary step) in a run.
type Task struct {
	Name    string
	Status  TaskStatus
	Message string
	Details string // shown when complete
}

// Workflow renders a list of tasks with a spinner on the running one.
// With Animate false nothing is drawn until Stop, which suits pipes and tests.
type Workflow struct {
	writer     io.Writer
	tasks      []*Task
	mu         sync.Mutex
	spinnerIdx int
	stopChan   chan struct{}
	doneChan   chan struct{}
	running    bool
	lastRender string
	startTime  time.Time

	Animate bool
}

// NewWorkflow creates a new workflow tracker
func NewWorkflow(w io.Writer) *Workflow {
	return &Workflow{
		writer:   w,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
		Animate:  true,
	}
}

// AddTask adds a new task to the workflow and returns its index.
func (wf *Workflow) AddTask(name string) int {
	wf.mu.Lock()
	defer wf.mu.Unlock()

	wf.tasks = append(wf.tasks, &Task{Name: name, Status: TaskPending})
	return len(wf.tasks) - 1
}

func (wf *Workflow) set(idx int, fn func(*Task)) {
	wf.mu.Lock()
	defer wf.mu.Unlock()
	if idx >= 0 && idx < len(wf.tasks) {
		fn(wf.tasks[idx])
	}
}

// StartTask marks a task as running
func (wf *Workflow) StartTask(idx int, message string) {
	wf.set(idx, func(t *Task) { t.Status, t.Message = TaskRunning, message })
}

// CompleteTask marks a task as done
func (wf *Workflow) CompleteTask(idx int, details string) {
	wf.set(idx, func(t *Task) { t.Status, t.Details = TaskDone, details })
}

// FailTask marks a task as failed
func (wf *Workflow) FailTask(idx int, errMsg string) {
	wf.set(idx, func(t *Task) { t.Status, t.Message = TaskFailed, errMsg })
}

// SkipTask marks a task as skipped
func (wf *Workflow) SkipTask(idx int, reason string) {
	wf.set(idx, func(t *Task) { t.Status, t.Message = TaskSkipped, reason })
}

// Status returns the status of task idx.
func (wf *Workflow) Status(idx int) TaskStatus {
	wf.mu.Lock()
	defer wf.mu.Unlock()
	if idx < 0 || idx >= len(wf.tasks) {
		return TaskPending
	}
	return wf.tasks[idx].Status
}

// Start begins the workflow display
func (wf *Workflow) Start() {
	wf.mu.Lock()
	if wf.running {
		wf.mu.Unlock()
		return
	}
	wf.running = true
	wf.startTime = time.Now()
	animate := wf.Animate
	wf.mu.Unlock()

	if !animate {
		close(wf.doneChan)
		return
	}

	go func() {
		defer close(wf.doneChan)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for {
			select {
			case <-wf.stopChan:
				return
			case <-ticker.C:
				wf.mu.Lock()
				wf.spinnerIdx = (wf.spinnerIdx + 1) % len(spinnerFrames)
				wf.mu.Unlock()
				wf.render(false)
			}
		}
	}()
}

// Stop ends the animation and prints the final state of every task.
func (wf *Workflow) Stop() {
	wf.mu.Lock()
	if !wf.running {
		wf.mu.Unlock()
		return
	}
	wf.running = false
	wf.mu.Unlock()

	close(wf.stopChan)
	<-wf.doneChan
	wf.render(true)
}

// Elapsed reports the time since Start.
func (wf *Workflow) Elapsed() time.Duration {
	wf.mu.Lock()
	defer wf.mu.Unlock()
	if wf.startTime.IsZero() {
		return 0
	}
	return time.Since(wf.startTime)
}

func (wf *Workflow) render(final bool) {
	wf.mu.Lock()
	defer wf.mu.Unlock()

	var b strings.Builder

	// Move up over the previous frame and clear it.
	if wf.lastRender != "" {
		lineCount := strings.Count(wf.lastRender, "\n") + 1
		for i := 0; i < lineCount; i++ {
			b.WriteString("\033[A\033[K")
		}
	}

	for _, task := range wf.tasks {
		b.WriteString(wf.renderTask(task, final))
		b.WriteString("\n")
	}

	output := b.String()
	if final {
		wf.lastRender = ""
	} else {
		wf.lastRender = strings.TrimSuffix(output, "\n")
	}
	fmt.Fprint(wf.writer, output)
}

func (wf *Workflow) renderTask(task *Task, final bool) string {
	var icon string
	var nameStyle styleWrapper
	msgStyle := Dim

	switch task.Status {
	case TaskRunning:
		if final {
			icon, nameStyle = Muted.Render("○"), StepPending
			break
		}
		icon, nameStyle, msgStyle = Secondary.Render(spinnerFrames[wf.spinnerIdx]), StepRunning, Secondary
	case TaskDone:
		icon, nameStyle = GetCheckMark(), StepComplete
	case TaskFailed:
		icon, nameStyle, msgStyle = GetCrossMark(), StepFailed, Error
	case TaskSkipped:
		icon, nameStyle, msgStyle = Warning.Render("⊘"), StepSkipped, Warning
	default:
		icon, nameStyle = Muted.Render("○"), StepPending
	}

	line := fmt.Sprintf("%s %s", icon, nameStyle.Render(task.Name))
	switch {
	case final && task.Status == TaskDone && task.Details != "":
		line += " " + Dim.Render("→ "+task.Details)
	case final && task.Message != "" && task.Status != TaskRunning:
		line += " " + msgStyle.Render("→ "+task.Message)
	case !final && task.Message != "":
		line += " " + msgStyle.Render(task.Message)
	}
	return line
}
