package cmd

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mouse-blink/guardwrap/internal/controller"
	"github.com/mouse-blink/guardwrap/internal/domain"
	m "github.com/mouse-blink/guardwrap/internal/model"
)

const listLongDescription = `List the files a wrap run would touch and the functions it would wrap.

Nothing is written. Every discovered file is shown with its expected
outcome, so files that would be skipped are visible too.`

// listCmd represents the list command.
var listCmd = newListCmd()
var listExcludeFlags []string
var listAllFunctionsFlag bool

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <kind>",
		Short: "Show what a wrap run would change",
		Long:  listLongDescription,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := strings.TrimSpace(args[0])

			report, err := plan(cmd.Context(), kind)
			if err != nil {
				return err
			}

			if err := ui.Start(controller.WithPlanMode()); err != nil {
				return err
			}
			defer ui.Close()

			if err := ui.DisplayPlan(report); err != nil {
				return err
			}

			ui.Wait()

			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&listExcludeFlags, "exclude", "x", nil, "exclude files matching regex (can be repeated)")
	cmd.Flags().BoolVarP(&listAllFunctionsFlag, "all-functions", "a", false, "plan every exported function instead of the first")

	return cmd
}

// plan performs a dry run without reporting progress.
func plan(ctx context.Context, kind string) (*m.BatchReport, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	exclude, err := compileExcludes(listExcludeFlags)
	if err != nil {
		return nil, err
	}

	runCfg := cfg
	if listAllFunctionsFlag {
		runCfg.AllFunctions = true
	}

	return newWorkflow(runCfg, logger).Run(ctx, domain.RunArgs{
		Root:    m.Path(rootDirFlag),
		Kind:    kind,
		DryRun:  true,
		Exclude: exclude,
	})
}

func init() {
	rootCmd.AddCommand(listCmd)
}
