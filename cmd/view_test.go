package cmd

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "github.com/mouse-blink/guardwrap/internal/model"
)

func TestViewCmd_DisplaysSavedReport(t *testing.T) {
	report := m.NewBatchReport("csrf")
	report.Add(m.FileResult{Path: "src/actions/jobs/create-job.ts", Outcome: m.OutcomeSuccess})
	report.Add(m.FileResult{Path: "src/actions/jobs/update-job.ts", Outcome: m.OutcomeMissingPrecondition})

	path := filepath.Join(t.TempDir(), "csrf.yaml")
	require.NoError(t, reportStore.SaveReport(m.Path(path), report))

	cmd, buf := newTestRootCmd(t)
	cmd.SetArgs([]string{"view", path})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "missing_precondition")
	assert.Contains(t, buf.String(), "success")
}

func TestViewCmd_Errors(t *testing.T) {
	cmd, _ := newTestRootCmd(t)
	cmd.SetArgs([]string{"view"})
	require.Error(t, cmd.Execute(), "report path is required")

	cmd, _ = newTestRootCmd(t)
	cmd.SetArgs([]string{"view", filepath.Join(t.TempDir(), "missing.yaml")})
	require.Error(t, cmd.Execute())
}
