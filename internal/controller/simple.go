package controller

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	m "github.com/mouse-blink/guardwrap/internal/model"
)

// SimpleUI implements UI using cobra Command's output writer.
type SimpleUI struct {
	cmd *cobra.Command
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// Start initializes the UI.
func (s *SimpleUI) Start(_ ...StartOption) error {
	return nil
}

// Close finalizes the UI.
func (s *SimpleUI) Close() {
}

// Wait returns immediately; there is nothing interactive to wait for.
func (s *SimpleUI) Wait() {
}

// DisplayRunInfo prints the batch settings.
func (s *SimpleUI) DisplayRunInfo(info RunInfo) {
	mode := ""
	if info.DryRun {
		mode = " (dry run)"
	}

	s.printf("Applying %s to %d file(s) with %d worker(s)%s\n", info.Kind, info.Files, info.Parallel, mode)
}

// FileStarted is silent in plain output.
func (s *SimpleUI) FileStarted(_ m.Path, _ int) {
}

// FileDone prints one line per processed file.
func (s *SimpleUI) FileDone(res m.FileResult) {
	line := fmt.Sprintf("%-20s %s", res.Outcome, res.Path)
	if names := functionNames(res.Functions); names != "" {
		line += "  " + names
	}

	if res.Detail != "" {
		line += "  (" + res.Detail + ")"
	}

	s.printf("%s\n", line)
}

// DisplayReport prints dry-run diffs followed by the outcome and category
// summaries.
func (s *SimpleUI) DisplayReport(report *m.BatchReport) error {
	if report == nil {
		return fmt.Errorf("no report to display")
	}

	if report.DryRun {
		for _, f := range report.Files {
			if f.Diff != "" {
				s.printf("\n%s", f.Diff)
			}
		}
	}

	s.printf("\n%s", outcomeTable(report))

	if len(report.Categories) > 0 {
		s.printf("\n%s", categoryTable(report))
	}

	if n := report.Failures(); n > 0 {
		s.printf("\n%d file(s) failed\n", n)
	}

	return nil
}

// DisplayPlan prints what a run would wrap, one row per file.
func (s *SimpleUI) DisplayPlan(report *m.BatchReport) error {
	if report == nil {
		return fmt.Errorf("no plan to display")
	}

	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Path", "Outcome", "Functions"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT})

	wraps := 0

	for _, f := range report.Files {
		table.Append([]string{string(f.Path), string(f.Outcome), functionNames(f.Functions)})
		wraps += len(f.Functions)
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total Files %d", report.Attempted),
		fmt.Sprintf("Wrappable %d", report.Succeeded()),
		fmt.Sprintf("Functions %d", wraps),
	})

	table.Render()
	s.printf("\n%s", tableBuffer.String())

	return nil
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}

func outcomeTable(report *m.BatchReport) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Outcome", "Files"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER})

	for _, outcome := range m.Outcomes {
		if count := report.Outcomes[outcome]; count > 0 {
			table.Append([]string{string(outcome), fmt.Sprintf("%d", count)})
		}
	}

	table.SetFooter([]string{"Attempted", fmt.Sprintf("%d", report.Attempted)})
	table.Render()

	return tableBuffer.String()
}

func categoryTable(report *m.BatchReport) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Category", "Functions"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER})

	for _, category := range m.Categories {
		if count := report.Categories[category]; count > 0 {
			table.Append([]string{string(category), fmt.Sprintf("%d", count)})
		}
	}

	table.Render()

	return tableBuffer.String()
}

// functionNames renders "name[category]" pairs for a result.
func functionNames(functions []m.WrappedFunction) string {
	parts := make([]string, 0, len(functions))

	for _, fn := range functions {
		name := fn.Name
		if name == "" {
			name = "<anonymous>"
		}

		if fn.Category != "" {
			name += "[" + string(fn.Category) + "]"
		}

		parts = append(parts, name)
	}

	return strings.Join(parts, ", ")
}
