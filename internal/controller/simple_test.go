package controller

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	m "github.com/mouse-blink/guardwrap/internal/model"
)

func newTestCommand() (*cobra.Command, *bytes.Buffer) {
	var buf bytes.Buffer

	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)

	return cmd, &buf
}

func sampleReport(dryRun bool) *m.BatchReport {
	report := m.NewBatchReport("ratelimit")
	report.DryRun = dryRun
	report.Add(m.FileResult{
		Path:      "src/actions/jobs/create-job.ts",
		Outcome:   m.OutcomeSuccess,
		Functions: []m.WrappedFunction{{Name: "createJob", Category: m.CategoryCreate}},
		Diff:      "--- src/actions/jobs/create-job.ts\n+++ src/actions/jobs/create-job.ts\n+  return withActionRateLimit('create', async () => {\n",
	})
	report.Add(m.FileResult{Path: "src/actions/jobs/types.ts", Outcome: m.OutcomeNoFunction})
	report.Add(m.FileResult{Path: "src/actions/jobs/broken.ts", Outcome: m.OutcomeWrapFailed, Detail: "function body boundaries not found"})

	return report
}

func TestSimpleUI_DisplayReport_PrintsTables(t *testing.T) {
	cmd, buf := newTestCommand()
	ui := NewSimpleUI(cmd)

	if err := ui.DisplayReport(sampleReport(false)); err != nil {
		t.Fatalf("DisplayReport() error = %v", err)
	}

	output := buf.String()

	for _, want := range []string{
		"success",
		"no_function",
		"wrap_failed",
		"ATTEMPTED",
		"3",
		"create",
		"1 file(s) failed",
	} {
		if !strings.Contains(output, want) {
			t.Fatalf("output missing %q\noutput:\n%s", want, output)
		}
	}

	if strings.Contains(output, "+++") {
		t.Fatalf("diff printed outside dry run\noutput:\n%s", output)
	}
}

func TestSimpleUI_DisplayReport_DryRunPrintsDiffs(t *testing.T) {
	cmd, buf := newTestCommand()
	ui := NewSimpleUI(cmd)

	if err := ui.DisplayReport(sampleReport(true)); err != nil {
		t.Fatalf("DisplayReport() error = %v", err)
	}

	if !strings.Contains(buf.String(), "+  return withActionRateLimit('create', async () => {") {
		t.Fatalf("dry run output missing diff\noutput:\n%s", buf.String())
	}
}

func TestSimpleUI_DisplayReport_Nil(t *testing.T) {
	cmd, _ := newTestCommand()

	if err := NewSimpleUI(cmd).DisplayReport(nil); err == nil {
		t.Fatalf("DisplayReport(nil) expected error")
	}
}

func TestSimpleUI_DisplayPlan(t *testing.T) {
	cmd, buf := newTestCommand()
	ui := NewSimpleUI(cmd)

	if err := ui.DisplayPlan(sampleReport(true)); err != nil {
		t.Fatalf("DisplayPlan() error = %v", err)
	}

	output := buf.String()

	for _, want := range []string{
		"src/actions/jobs/create-job.ts",
		"createJob[create]",
		"src/actions/jobs/types.ts",
		"TOTAL FILES 3",
		"WRAPPABLE 1",
		"FUNCTIONS 1",
	} {
		if !strings.Contains(output, want) {
			t.Fatalf("output missing %q\noutput:\n%s", want, output)
		}
	}
}

func TestSimpleUI_Progress(t *testing.T) {
	cmd, buf := newTestCommand()
	ui := NewSimpleUI(cmd)

	if err := ui.Start(WithRunMode()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	ui.DisplayRunInfo(RunInfo{Kind: "csrf", Files: 4, Parallel: 2, DryRun: true})
	ui.FileStarted("src/actions/a.ts", 0)
	ui.FileDone(m.FileResult{Path: "src/actions/a.ts", Outcome: m.OutcomeMissingPrecondition, Detail: "requires withActionRateLimit"})
	ui.Wait()
	ui.Close()

	output := buf.String()

	for _, want := range []string{
		"Applying csrf to 4 file(s) with 2 worker(s) (dry run)",
		"missing_precondition",
		"src/actions/a.ts",
		"(requires withActionRateLimit)",
	} {
		if !strings.Contains(output, want) {
			t.Fatalf("output missing %q\noutput:\n%s", want, output)
		}
	}
}

func TestFunctionNames(t *testing.T) {
	got := functionNames([]m.WrappedFunction{
		{Name: "createJob", Category: m.CategoryCreate},
		{Name: "deleteJob"},
		{},
	})

	if want := "createJob[create], deleteJob, <anonymous>"; got != want {
		t.Fatalf("functionNames() = %q, want %q", got, want)
	}
}
