package controller

import (
	"fmt"
	"io"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	m "github.com/mouse-blink/guardwrap/internal/model"
)

// TUI implements UI using Bubble Tea for interactive display.
type TUI struct {
	output io.Writer
	input  io.Reader

	mu      sync.Mutex
	program *tea.Program
	started bool
	closed  bool
	done    chan struct{}
}

// NewTUI creates a new TUI.
func NewTUI(output io.Writer) *TUI {
	return &TUI{output: output, input: os.Stdin}
}

// Start launches the Bubble Tea program in the requested mode. Run mode is
// the default.
func (t *TUI) Start(options ...StartOption) error {
	cfg := &StartConfig{mode: ModeRun}
	for _, opt := range options {
		opt(cfg)
	}

	var model tea.Model

	switch cfg.mode {
	case ModePlan:
		model = newPlanModel()
	default:
		model = newRunModel()
	}

	return t.startWithModel(model, tea.WithMouseCellMotion())
}

func (t *TUI) startWithModel(model tea.Model, opts ...tea.ProgramOption) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.started {
		return nil
	}

	opts = append([]tea.ProgramOption{tea.WithOutput(t.output), tea.WithInput(t.input)}, opts...)

	t.program = tea.NewProgram(model, opts...)
	t.done = make(chan struct{})
	t.started = true

	go func(program *tea.Program, done chan struct{}) {
		defer close(done)

		_, _ = program.Run()
	}(t.program, t.done)

	return nil
}

// ensureStarted starts the run view when a display method is called first.
func (t *TUI) ensureStarted() {
	t.mu.Lock()
	started := t.started
	t.mu.Unlock()

	if !started {
		_ = t.Start()
	}
}

// send forwards msg to the running program. It is a no-op before start.
func (t *TUI) send(msg tea.Msg) {
	t.mu.Lock()
	program := t.program
	t.mu.Unlock()

	if program == nil {
		return
	}

	program.Send(msg)
}

// Close stops the program and restores the terminal. It is safe to call
// more than once.
func (t *TUI) Close() {
	t.mu.Lock()

	if !t.started || t.closed || t.program == nil {
		t.mu.Unlock()
		return
	}

	t.closed = true
	program, done := t.program, t.done
	t.mu.Unlock()

	program.Quit()
	<-done
}

// Wait blocks until the user quits the program.
func (t *TUI) Wait() {
	t.mu.Lock()
	done := t.done
	t.mu.Unlock()

	if done == nil {
		return
	}

	<-done
}

// DisplayRunInfo shows the batch settings.
func (t *TUI) DisplayRunInfo(info RunInfo) {
	t.ensureStarted()
	t.send(runInfoMsg{info: info})
}

// FileStarted marks path as in progress on worker.
func (t *TUI) FileStarted(path m.Path, worker int) {
	t.ensureStarted()
	t.send(fileStartedMsg{worker: worker, path: string(path)})
}

// FileDone records a processed file.
func (t *TUI) FileDone(res m.FileResult) {
	t.ensureStarted()
	t.send(fileDoneMsg{result: res})
}

// DisplayReport switches the view to the final results.
func (t *TUI) DisplayReport(report *m.BatchReport) error {
	if report == nil {
		return fmt.Errorf("no report to display")
	}

	t.ensureStarted()
	t.send(reportMsg{report: report})

	return nil
}

// DisplayPlan shows what a run would wrap.
func (t *TUI) DisplayPlan(report *m.BatchReport) error {
	if report == nil {
		return fmt.Errorf("no plan to display")
	}

	t.ensureStarted()
	t.send(planMsg{report: report})

	return nil
}
