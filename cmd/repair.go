package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mouse-blink/guardwrap/internal/domain"
	m "github.com/mouse-blink/guardwrap/internal/model"
)

const repairLongDescription = `Collapse the malformed closing regions left behind by earlier wrapper runs.

A run that located the wrong closing brace leaves the function closed early,
followed by blank lines and stray "})" lines before a second brace. Repair
rewrites each such region to a single "})" and "}" pair and validates the
result the same way wrap does.`

// repairCmd represents the repair command.
var repairCmd = newRepairCmd()
var repairParallelFlag int
var repairExcludeFlags []string
var repairDryRunFlag bool
var repairReportFlag string

func newRepairCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repair",
		Short: "Fix doubled wrapper closings",
		Long:  repairLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := batchOptions{
				parallel: repairParallelFlag,
				exclude:  repairExcludeFlags,
				dryRun:   repairDryRunFlag,
				report:   repairReportFlag,
			}

			return runBatch(cmd.Context(), "repair", opts, func(ctx context.Context, wf domain.Workflow, args domain.RunArgs) (*m.BatchReport, error) {
				return wf.Repair(ctx, args)
			})
		},
	}
	cmd.Flags().IntVarP(&repairParallelFlag, "parallel", "p", 1, "number of files processed concurrently")
	cmd.Flags().StringArrayVarP(&repairExcludeFlags, "exclude", "x", nil, "exclude files matching regex (can be repeated)")
	cmd.Flags().BoolVarP(&repairDryRunFlag, "dry-run", "n", false, "show diffs without writing files")
	cmd.Flags().StringVar(&repairReportFlag, "report", "", "write the batch report as YAML to this path")

	return cmd
}

func init() {
	rootCmd.AddCommand(repairCmd)
}
