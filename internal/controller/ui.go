// Package controller provides output adapters for displaying wrapping
// progress and batch reports.
package controller

import (
	m "github.com/mouse-blink/guardwrap/internal/model"
)

// StartMode defines the mode of operation for the UI.
type StartMode int

// Available StartMode values.
const (
	ModePlan StartMode = iota
	ModeRun
)

// StartOption is a functional option for Start method.
type StartOption func(*StartConfig)

// StartConfig holds configuration for starting the UI.
type StartConfig struct {
	mode StartMode
}

// WithPlanMode sets the UI to plan listing mode.
func WithPlanMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModePlan
	}
}

// WithRunMode sets the UI to batch execution mode.
func WithRunMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeRun
	}
}

// RunInfo describes a batch about to start.
type RunInfo struct {
	Kind     string
	Files    int
	Parallel int
	DryRun   bool
}

// UI defines the interface for displaying batch progress and results.
// Implementations can use different output methods (simple text, TUI, etc).
// FileStarted and FileDone make every UI usable as a domain.Observer.
type UI interface {
	Start(options ...StartOption) error
	Close()
	Wait() // Wait for UI to finish (user closes it)
	DisplayRunInfo(info RunInfo)
	FileStarted(path m.Path, worker int)
	FileDone(res m.FileResult)
	DisplayReport(report *m.BatchReport) error
	DisplayPlan(report *m.BatchReport) error
}
