package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/mouse-blink/guardwrap/internal/controller"
)

const (
	createJobSource = "'use server'\n\n" +
		"export async function createJob(data) {\n" +
		"  return db.insert(data)\n" +
		"}\n"
	typesSource  = "export type Job = { id: string }\n"
	brokenSource = "export async function brokenJob() {\n  if (x) {\n"
)

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()

	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("MkdirAll() error = %v", err)
		}

		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
	}

	return root
}

func readProjectFile(t *testing.T, root, rel string) string {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	return string(data)
}

// newTestRootCmd builds a fresh command tree whose UI writes to a buffer.
func newTestRootCmd(t *testing.T) (*cobra.Command, *bytes.Buffer) {
	t.Helper()

	var buf bytes.Buffer

	cmd := newRootCmd()
	cmd.AddCommand(newWrapCmd(), newRepairCmd(), newListCmd(), newViewCmd())
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)

	originalUI := ui
	ui = controller.NewSimpleUI(cmd)

	t.Cleanup(func() { ui = originalUI })

	return cmd, &buf
}

func TestNewRootCmd(t *testing.T) {
	cmd := newRootCmd()

	if cmd.Use != "guardwrap" {
		t.Fatalf("Use = %q, want guardwrap", cmd.Use)
	}

	for _, name := range []string{"root", "config", "verbose", "log-file"} {
		if cmd.PersistentFlags().Lookup(name) == nil {
			t.Fatalf("persistent flag %q not registered", name)
		}
	}

	if got := cmd.PersistentFlags().Lookup("root").DefValue; got != "." {
		t.Fatalf("root default = %q, want .", got)
	}
}

func TestRootCmd_RegistersSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, sub := range rootCmd.Commands() {
		names[sub.Name()] = true
	}

	for _, want := range []string{"wrap", "repair", "list", "view"} {
		if !names[want] {
			t.Fatalf("rootCmd missing subcommand %q", want)
		}
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("missing default file uses defaults", func(t *testing.T) {
		got, err := loadConfig(t.TempDir(), "")
		if err != nil {
			t.Fatalf("loadConfig() error = %v", err)
		}

		if got.Subtree != "src/actions" {
			t.Fatalf("Subtree = %q, want src/actions", got.Subtree)
		}
	})

	t.Run("file at root is read", func(t *testing.T) {
		root := writeProject(t, map[string]string{".guardwrap.yaml": "subtree: app/actions\n"})

		got, err := loadConfig(root, "")
		if err != nil {
			t.Fatalf("loadConfig() error = %v", err)
		}

		if got.Subtree != "app/actions" {
			t.Fatalf("Subtree = %q, want app/actions", got.Subtree)
		}
	})

	t.Run("explicit file must exist", func(t *testing.T) {
		if _, err := loadConfig(t.TempDir(), filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
			t.Fatalf("loadConfig() expected error for missing explicit file")
		}
	})
}

func TestNewLogger(t *testing.T) {
	quiet, err := newLogger(false, "")
	if err != nil {
		t.Fatalf("newLogger() error = %v", err)
	}

	if quiet.Core().Enabled(zapcore.InfoLevel) {
		t.Fatalf("default logger should not log info")
	}

	logFile := filepath.Join(t.TempDir(), "guardwrap.log")

	verbose, err := newLogger(true, logFile)
	if err != nil {
		t.Fatalf("newLogger() error = %v", err)
	}

	if !verbose.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("verbose logger should log debug")
	}

	verbose.Debug("file decision")
	_ = verbose.Sync()

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	if !strings.Contains(string(data), "file decision") {
		t.Fatalf("log file missing entry: %q", data)
	}
}

func TestCompileExcludes(t *testing.T) {
	exclude, err := compileExcludes([]string{`/ai/`, `\.gen\.ts$`})
	if err != nil {
		t.Fatalf("compileExcludes() error = %v", err)
	}

	if len(exclude) != 2 || !exclude[1].MatchString("src/actions/x.gen.ts") {
		t.Fatalf("compileExcludes() = %v", exclude)
	}

	if _, err := compileExcludes([]string{"["}); err == nil {
		t.Fatalf("compileExcludes() expected error for invalid regex")
	}
}
