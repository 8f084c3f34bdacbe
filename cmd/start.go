package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/lanekit/fleetctl/internal/errors"
)

var startCmd = &cobra.Command{
	Use:   "start [name]",
	Short: "Start an instance (or all instances)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	c := controller()

	if len(args) == 1 {
		name := args[0]
		if err := c.Start(ctx, name); err != nil {
			return err
		}
		logSuccess("Started %s", name)
		return nil
	}

	outcomes, err := c.StartAll(ctx)
	if err != nil {
		return err
	}
	if len(outcomes) == 0 {
		logInfo("No instances registered")
		return nil
	}
	if reportOutcomes("Started", outcomes) {
		return errors.New(errors.ExitGeneralError, "some instances failed to start")
	}
	return nil
}
