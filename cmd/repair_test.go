package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	malformedSource = "export async function f() {\n  return g(async () => {\n    return 1\n  })\n}\n\n  })\n}\n"
	repairedSource  = "export async function f() {\n  return g(async () => {\n    return 1\n  })\n}\n"
)

func TestRepairCmd(t *testing.T) {
	root := writeProject(t, map[string]string{
		"src/actions/jobs/malformed.ts": malformedSource,
		"src/actions/jobs/clean.ts":     repairedSource,
	})

	dry, buf := newTestRootCmd(t)
	dry.SetArgs([]string{"--root", root, "repair", "--dry-run"})

	require.NoError(t, dry.Execute())
	assert.Equal(t, malformedSource, readProjectFile(t, root, "src/actions/jobs/malformed.ts"))
	assert.Contains(t, buf.String(), "Applying repair to 2 file(s)")

	cmd, buf := newTestRootCmd(t)
	cmd.SetArgs([]string{"--root", root, "repair"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, repairedSource, readProjectFile(t, root, "src/actions/jobs/malformed.ts"))
	assert.Equal(t, repairedSource, readProjectFile(t, root, "src/actions/jobs/clean.ts"))
	assert.Contains(t, buf.String(), "collapsed 1")
	assert.Contains(t, buf.String(), "unchanged")
}

func TestRepairCmd_RejectsArgs(t *testing.T) {
	cmd, _ := newTestRootCmd(t)
	cmd.SetArgs([]string{"--root", t.TempDir(), "repair", "ratelimit"})

	assert.Error(t, cmd.Execute())
}
