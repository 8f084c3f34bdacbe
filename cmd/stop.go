package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/lanekit/fleetctl/internal/errors"
)

var stopCmd = &cobra.Command{
	Use:   "stop [name]",
	Short: "Stop an instance (or all instances)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStop,
}

func init() {
	rootCmd.AddCommand(stopCmd)
}

func runStop(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	c := controller()

	if len(args) == 1 {
		name := args[0]
		if err := c.Stop(ctx, name); err != nil {
			return err
		}
		logSuccess("Stopped %s", name)
		return nil
	}

	outcomes, err := c.StopAll(ctx)
	if err != nil {
		return err
	}
	if len(outcomes) == 0 {
		logInfo("No instances registered")
		return nil
	}
	if reportOutcomes("Stopped", outcomes) {
		return errors.New(errors.ExitGeneralError, "some instances failed to stop")
	}
	return nil
}
