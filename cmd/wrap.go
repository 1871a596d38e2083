package cmd

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mouse-blink/guardwrap/internal/domain"
	m "github.com/mouse-blink/guardwrap/internal/model"
)

const wrapLongDescription = `Wrap the exported server actions of every discovered file with the named
wrapper kind.

Built-in kinds:
  ratelimit   return withActionRateLimit('<category>', async () => { ... })
  csrf        nest withCSRFProtection inside an existing rate-limit closure

Additional kinds can be declared in the config file. Files that are already
protected, lack a required wrapper, or opt out with a guardwrap:ignore
directive are reported and left untouched.`

// wrapCmd represents the wrap command.
var wrapCmd = newWrapCmd()
var wrapParallelFlag int
var wrapExcludeFlags []string
var wrapDryRunFlag bool
var wrapAllFunctionsFlag bool
var wrapReportFlag string
var wrapStrictFlag bool

func newWrapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wrap <kind>",
		Short: "Wrap server actions with a wrapper kind",
		Long:  wrapLongDescription,
		Args:  cobra.ExactArgs(1),
		ValidArgsFunction: func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
			return cfg.KindNames(), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := strings.TrimSpace(args[0])
			if _, err := cfg.Kind(kind); err != nil {
				return err
			}

			opts := batchOptions{
				kind:         kind,
				parallel:     wrapParallelFlag,
				exclude:      wrapExcludeFlags,
				dryRun:       wrapDryRunFlag,
				allFunctions: wrapAllFunctionsFlag,
				report:       wrapReportFlag,
				strict:       wrapStrictFlag,
			}

			return runBatch(cmd.Context(), kind, opts, func(ctx context.Context, wf domain.Workflow, args domain.RunArgs) (*m.BatchReport, error) {
				return wf.Run(ctx, args)
			})
		},
	}
	cmd.Flags().IntVarP(&wrapParallelFlag, "parallel", "p", 1, "number of files processed concurrently")
	cmd.Flags().StringArrayVarP(&wrapExcludeFlags, "exclude", "x", nil, "exclude files matching regex (can be repeated)")
	cmd.Flags().BoolVarP(&wrapDryRunFlag, "dry-run", "n", false, "show diffs without writing files")
	cmd.Flags().BoolVarP(&wrapAllFunctionsFlag, "all-functions", "a", false, "wrap every exported function instead of the first")
	cmd.Flags().StringVar(&wrapReportFlag, "report", "", "write the batch report as YAML to this path")
	cmd.Flags().BoolVar(&wrapStrictFlag, "strict", false, "exit with an error when any file fails")

	return cmd
}

func init() {
	rootCmd.AddCommand(wrapCmd)
}
