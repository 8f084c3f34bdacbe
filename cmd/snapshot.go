package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lanekit/fleetctl/internal/app"
	"github.com/lanekit/fleetctl/internal/instance"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot <name>",
	Short: "Capture an instance's container data into a tarball",
	Args:  cobra.ExactArgs(1),
	RunE:  runSnapshot,
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	name := args[0]
	ctx := context.Background()

	logInfo("Snapshotting instance %s...", name)

	a := app.Default
	snapshotter := instance.NewSnapshotter(a.Store, a.FS, a.Surface, a.Paths, a.HostConfig, a.Audit)
	dest, err := snapshotter.Snapshot(ctx, name)
	if err != nil {
		return err
	}

	logSuccess("Snapshot written")
	fmt.Printf("  %s\n", dest)
	return nil
}
