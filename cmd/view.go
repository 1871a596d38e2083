package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mouse-blink/guardwrap/internal/controller"
	m "github.com/mouse-blink/guardwrap/internal/model"
)

// viewCmd represents the view command.
var viewCmd = newViewCmd()

func newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view <report.yaml>",
		Short: "View a previously saved batch report",
		Long:  "View a batch report written by wrap --report or repair --report.",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			report, err := reportStore.LoadReport(m.Path(args[0]))
			if err != nil {
				return err
			}

			if err := ui.Start(controller.WithRunMode()); err != nil {
				return err
			}
			defer ui.Close()

			if err := ui.DisplayReport(report); err != nil {
				return err
			}

			ui.Wait()

			return nil
		},
	}

	return cmd
}

func init() {
	rootCmd.AddCommand(viewCmd)
}
