package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/lanekit/fleetctl/internal/errors"
)

var updateCmd = &cobra.Command{
	Use:   "update [name]",
	Short: "Pull the latest image and recreate an instance (or all instances)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runUpdate,
}

func init() {
	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	c := controller()

	if len(args) == 1 {
		name := args[0]
		logInfo("Updating instance %s...", name)
		if err := c.Update(ctx, name); err != nil {
			return err
		}
		logSuccess("Updated %s", name)
		return nil
	}

	outcomes, err := c.UpdateAll(ctx)
	if err != nil {
		return err
	}
	if len(outcomes) == 0 {
		logInfo("No instances registered")
		return nil
	}
	if reportOutcomes("Updated", outcomes) {
		return errors.New(errors.ExitGeneralError, "some instances failed to update")
	}
	return nil
}
