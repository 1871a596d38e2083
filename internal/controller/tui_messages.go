package controller

import (
	"time"

	m "github.com/mouse-blink/guardwrap/internal/model"
)

// Message types.
type tickMsg time.Time

type planMsg struct {
	report *m.BatchReport
}

type runInfoMsg struct {
	info RunInfo
}

type fileStartedMsg struct {
	worker int
	path   string
}

type fileDoneMsg struct {
	result m.FileResult
}

type reportMsg struct {
	report *m.BatchReport
}

// List item types.
type fileItem struct {
	path      string
	outcome   m.Outcome
	functions string
	count     int
	diff      string
	detail    string
}

func (f fileItem) FilterValue() string {
	return f.path + " " + string(f.outcome) + " " + f.functions
}

func newFileItem(res m.FileResult) fileItem {
	return fileItem{
		path:      string(res.Path),
		outcome:   res.Outcome,
		functions: functionNames(res.Functions),
		count:     len(res.Functions),
		diff:      res.Diff,
		detail:    res.Detail,
	}
}
