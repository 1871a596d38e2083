// Package cmd provides the root command and CLI setup for guardwrap.
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mouse-blink/guardwrap/internal/adapter"
	"github.com/mouse-blink/guardwrap/internal/config"
	"github.com/mouse-blink/guardwrap/internal/controller"
	"github.com/mouse-blink/guardwrap/internal/domain"
	m "github.com/mouse-blink/guardwrap/internal/model"
)

var fsAdapter adapter.SourceFSAdapter
var syntaxAdapter adapter.SyntaxAdapter
var reportStore adapter.ReportStore
var ui controller.UI
var logger *zap.Logger
var cfg config.Config

// newWorkflow builds the batch engine for one invocation.
var newWorkflow = func(c config.Config, l *zap.Logger) domain.Workflow {
	return domain.NewWorkflow(fsAdapter, syntaxAdapter, c, l)
}

func init() {
	ui = controller.NewUI(rootCmd, controller.IsTTY(os.Stdout))
	fsAdapter = adapter.NewLocalSourceFSAdapter()
	syntaxAdapter = adapter.NewTreeSitterSyntaxAdapter()
	reportStore = adapter.NewReportStore(fsAdapter)
	logger = zap.NewNop()
	cfg = config.Default()
}

var rootDirFlag string
var configFlag string
var verboseFlag bool
var logFileFlag string

// rootCmd represents the base command when called without any subcommands.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "guardwrap",
		Short: "Wrap TypeScript server actions with protective middleware",
		Long: `Guardwrap rewrites exported server actions so that their bodies run inside
a wrapper call such as withActionRateLimit or withCSRFProtection.

Files are discovered below the configured subtree of the project root
(src/actions by default). Each file is rewritten in place only when the
result validates; a file that already carries the wrapper is left alone.

Configuration is read from <root>/.guardwrap.yaml when present.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			l, err := newLogger(verboseFlag, logFileFlag)
			if err != nil {
				return err
			}

			logger = l

			loaded, err := loadConfig(rootDirFlag, configFlag)
			if err != nil {
				return err
			}

			cfg = loaded

			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			_ = logger.Sync()
		},
	}
	cmd.PersistentFlags().StringVarP(&rootDirFlag, "root", "r", ".", "project root containing the action subtree")
	cmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "config file (default <root>/.guardwrap.yaml)")
	cmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "log every file decision")
	cmd.PersistentFlags().StringVar(&logFileFlag, "log-file", "", "write logs to this file instead of stderr")

	return cmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func newLogger(verbose bool, logFile string) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	zc.Encoding = "console"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if verbose {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	if logFile != "" {
		zc.OutputPaths = []string{logFile}
		zc.ErrorOutputPaths = []string{logFile}
	}

	l, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	return l, nil
}

// loadConfig reads an explicit config file, or the optional one at the
// project root.
func loadConfig(root, path string) (config.Config, error) {
	if path != "" {
		return config.Load(path, false)
	}

	return config.Load(filepath.Join(root, ".guardwrap.yaml"), true)
}

func compileExcludes(patterns []string) ([]*regexp.Regexp, error) {
	exclude := make([]*regexp.Regexp, 0, len(patterns))

	for _, pattern := range patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}

		exclude = append(exclude, re)
	}

	return exclude, nil
}

// batchOptions are the flags shared by the commands that walk the project.
type batchOptions struct {
	kind         string
	parallel     int
	exclude      []string
	dryRun       bool
	allFunctions bool
	report       string
	strict       bool
}

type batchFunc func(ctx context.Context, wf domain.Workflow, args domain.RunArgs) (*m.BatchReport, error)

// runBatch drives one batch through the UI: discover, announce, process,
// report.
func runBatch(ctx context.Context, label string, opts batchOptions, fn batchFunc) error {
	if ctx == nil {
		ctx = context.Background()
	}

	exclude, err := compileExcludes(opts.exclude)
	if err != nil {
		return err
	}

	runCfg := cfg
	if opts.allFunctions {
		runCfg.AllFunctions = true
	}

	wf := newWorkflow(runCfg, logger)
	root := m.Path(rootDirFlag)

	files, err := wf.Discover(root, exclude)
	if err != nil {
		return err
	}

	if err := ui.Start(controller.WithRunMode()); err != nil {
		return err
	}
	defer ui.Close()

	ui.DisplayRunInfo(controller.RunInfo{
		Kind:     label,
		Files:    len(files),
		Parallel: opts.parallel,
		DryRun:   opts.dryRun,
	})

	report, err := fn(ctx, wf, domain.RunArgs{
		Root:     root,
		Kind:     opts.kind,
		Parallel: opts.parallel,
		DryRun:   opts.dryRun,
		Exclude:  exclude,
		Observer: ui,
	})
	if err != nil {
		return err
	}

	if err := ui.DisplayReport(report); err != nil {
		return err
	}

	if opts.report != "" {
		if err := reportStore.SaveReport(m.Path(opts.report), report); err != nil {
			return err
		}
	}

	ui.Wait()

	if n := report.Failures(); opts.strict && n > 0 {
		return fmt.Errorf("%d file(s) failed", n)
	}

	return nil
}
