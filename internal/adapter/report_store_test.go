package adapter

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	m "github.com/mouse-blink/guardwrap/internal/model"
)

func sampleReport() *m.BatchReport {
	report := m.NewBatchReport("ratelimit")
	report.Add(m.FileResult{
		Path:    "src/actions/create-job.ts",
		Outcome: m.OutcomeSuccess,
		Functions: []m.WrappedFunction{
			{Name: "createJob", Category: m.CategoryCreate},
		},
		Before: "aaa",
		After:  "bbb",
	})
	report.Add(m.FileResult{
		Path:    "src/actions/broken.ts",
		Outcome: m.OutcomeWrapFailed,
		Detail:  "unbalanced output",
		Err:     errors.New("unbalanced output"),
	})

	return report
}

func TestLocalReportStore_SaveReport_WritesYAML(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	rs := NewReportStore(nil)
	path := filepath.Join(dir, "reports", "run.yaml")

	require.NoError(t, rs.SaveReport(m.Path(path), sampleReport()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(data, &decoded))

	assert.Equal(t, "ratelimit", decoded["kind"])
	assert.Equal(t, 2, decoded["attempted"])
	assert.False(t, strings.Contains(string(data), "err:"), "errors are carried by detail only")
}

func TestLocalReportStore_LoadReport_RoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	rs := NewReportStore(NewLocalSourceFSAdapter())
	path := m.Path(filepath.Join(dir, "run.yaml"))

	require.NoError(t, rs.SaveReport(path, sampleReport()))

	got, err := rs.LoadReport(path)
	require.NoError(t, err)

	assert.Equal(t, "ratelimit", got.Kind)
	assert.Equal(t, 2, got.Attempted)
	assert.Equal(t, 1, got.Outcomes[m.OutcomeSuccess])
	assert.Equal(t, 1, got.Outcomes[m.OutcomeWrapFailed])
	assert.Equal(t, 1, got.Categories[m.CategoryCreate])
	require.Len(t, got.Files, 2)
	assert.Equal(t, "createJob", got.Files[0].Functions[0].Name)
	assert.Equal(t, "unbalanced output", got.Files[1].Detail)
}

func TestLocalReportStore_Errors(t *testing.T) {
	t.Parallel()

	rs := NewReportStore(nil)

	assert.Error(t, rs.SaveReport("", sampleReport()))
	assert.Error(t, rs.SaveReport(m.Path(filepath.Join(t.TempDir(), "r.yaml")), nil))

	_, err := rs.LoadReport(m.Path(filepath.Join(t.TempDir(), "missing.yaml")))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("outcomes: [\n"), 0o600))

	_, err = rs.LoadReport(m.Path(bad))
	assert.Error(t, err)
}
