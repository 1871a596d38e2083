package controller

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	m "github.com/mouse-blink/guardwrap/internal/model"
)

func TestRunModel_Lifecycle(t *testing.T) {
	rm := newRunModel()

	cmd := rm.Init()
	if cmd == nil {
		t.Fatalf("Init() returned nil")
	}

	if _, ok := cmd().(tickMsg); !ok {
		t.Fatalf("Init() cmd did not return tickMsg")
	}

	if view := rm.View(); !strings.Contains(view, "Preparing") {
		t.Fatalf("View before render = %q", view)
	}

	model, _ := rm.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	model, _ = model.Update(runInfoMsg{info: RunInfo{Kind: "ratelimit", Files: 2, Parallel: 2}})
	model, _ = model.Update(fileStartedMsg{worker: 1, path: "src/actions/a.ts"})

	rm = model.(runModel)
	if rm.workerFiles[1] != "src/actions/a.ts" {
		t.Fatalf("worker file not tracked: %v", rm.workerFiles)
	}

	view := rm.View()
	for _, want := range []string{"guardwrap ratelimit", "Worker 1", "src/actions/a.ts", "idle"} {
		if !strings.Contains(view, want) {
			t.Fatalf("progress view missing %q\n%s", want, view)
		}
	}

	model, _ = rm.Update(fileDoneMsg{result: m.FileResult{Path: "src/actions/a.ts", Outcome: m.OutcomeSuccess}})

	rm = model.(runModel)
	if rm.completedCount != 1 || rm.progressPercent != 0.5 {
		t.Fatalf("progress = %d/%v, want 1/0.5", rm.completedCount, rm.progressPercent)
	}

	if _, busy := rm.workerFiles[1]; busy {
		t.Fatalf("worker still busy after file done")
	}

	model, _ = rm.Update(reportMsg{report: sampleReport(true)})

	rm = model.(runModel)
	if !rm.finished || len(rm.results) != 3 {
		t.Fatalf("report not applied: finished=%v results=%d", rm.finished, len(rm.results))
	}

	view = rm.View()
	for _, want := range []string{"guardwrap results (dry run)", "Wrapped:", "wrap_failed", "Outcome"} {
		if !strings.Contains(view, want) {
			t.Fatalf("results view missing %q\n%s", want, view)
		}
	}

	model, cmd = rm.Update(tickMsg(time.Now()))
	if cmd == nil {
		t.Fatalf("tick did not return cmd")
	}

	if model.(runModel).animOffset != 1 {
		t.Fatalf("animOffset not advanced")
	}

	if _, cmd = rm.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}); cmd == nil {
		t.Fatalf("quit key did not return cmd")
	}
}

func TestRunModel_DiffToggle(t *testing.T) {
	rm := newRunModel()
	model, _ := rm.Update(reportMsg{report: sampleReport(true)})
	rm = model.(runModel)

	model, _ = rm.Update(tea.KeyMsg{Type: tea.KeyEnter})

	rm = model.(runModel)
	if !rm.showDiff || !strings.Contains(rm.selectedDiff, "withActionRateLimit") {
		t.Fatalf("enter did not show diff: %+v", rm.selectedDiff)
	}

	if !strings.Contains(rm.View(), "Diff • src/actions/jobs/create-job.ts") {
		t.Fatalf("view missing diff box\n%s", rm.View())
	}

	model, _ = rm.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if model.(runModel).showDiff {
		t.Fatalf("second enter did not hide diff")
	}

	model, _ = rm.Update(tea.KeyMsg{Type: tea.KeyDown})

	rm = model.(runModel)
	if rm.showDiff || rm.lastSelected != 1 {
		t.Fatalf("selection change did not reset diff: show=%v selected=%d", rm.showDiff, rm.lastSelected)
	}

	model, _ = rm.Update(tea.KeyMsg{Type: tea.KeyDown})
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyEnter})

	rm = model.(runModel)
	if !rm.showDiff || rm.selectedDiff != "function body boundaries not found" {
		t.Fatalf("failure detail not shown: %q", rm.selectedDiff)
	}
}

func TestRunModel_IgnoresKeysWhileRunning(t *testing.T) {
	rm := newRunModel()

	model, cmd := rm.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil || model.(runModel).showDiff {
		t.Fatalf("enter handled before results")
	}

	if _, cmd = rm.Update(tea.MouseMsg{Button: tea.MouseButtonLeft, Action: tea.MouseActionRelease}); cmd != nil {
		t.Fatalf("mouse handled before results")
	}
}

func TestRunModel_DiffBoxLimits(t *testing.T) {
	rm := newRunModel()
	rm.height = 30
	rm.showDiff = true
	rm.selectedDiffPath = "a.ts"
	rm.selectedDiff = strings.Repeat("+ line\n", 40) + "+ last"

	if got := rm.diffBoxHeight(); got != rm.diffMaxLines()+3 {
		t.Fatalf("diffBoxHeight() = %d, want %d", got, rm.diffMaxLines()+3)
	}

	box := rm.renderDiffBox("6", 60)
	if !strings.Contains(box, "…") || strings.Contains(box, "last") {
		t.Fatalf("long diff not truncated\n%s", box)
	}

	rm.showDiff = false
	if rm.renderDiffBox("6", 60) != "" || rm.diffBoxHeight() != 0 {
		t.Fatalf("hidden diff rendered")
	}
}

func TestResultDelegate_Render(t *testing.T) {
	delegate := resultDelegate{}
	items := []list.Item{fileItem{path: "src/actions/jobs/create-job.ts", outcome: m.OutcomeWrapFailed}}
	lm := list.New(items, delegate, 60, 5)

	var buf bytes.Buffer

	delegate.Render(&buf, lm, 0, items[0])

	if !strings.Contains(buf.String(), "wrap_failed") {
		t.Fatalf("render output missing outcome: %q", buf.String())
	}

	buf.Reset()
	delegate.Render(&buf, lm, 1, items[0])

	if !strings.Contains(buf.String(), "src/actions") {
		t.Fatalf("render output missing path: %q", buf.String())
	}

	buf.Reset()
	delegate.Render(&buf, lm, 0, struct{ list.Item }{})

	if buf.Len() != 0 {
		t.Fatalf("bad item rendered %q", buf.String())
	}
}

func TestRenderDiffLine(t *testing.T) {
	for _, line := range []string{"+++ a", "--- a", "+x", "-x", " ", "ctx"} {
		if got := renderDiffLine(line, 40); !strings.Contains(got, strings.TrimSpace(line)) {
			t.Fatalf("renderDiffLine(%q) = %q", line, got)
		}
	}
}

func TestOutcomeColor(t *testing.T) {
	if outcomeColor(m.OutcomeSuccess) == outcomeColor(m.OutcomeWrapFailed) {
		t.Fatalf("success and failure share a color")
	}

	if outcomeColor(m.OutcomeNotFound) != outcomeColor(m.OutcomeError) {
		t.Fatalf("not_found should render as a failure")
	}
}
