package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lanekit/fleetctl/internal/app"
	"github.com/lanekit/fleetctl/internal/instance"
	"github.com/lanekit/fleetctl/internal/tui"
)

var destroyCmd = &cobra.Command{
	Use:   "destroy <name>",
	Short: "Remove an instance, its container, volumes, and files",
	Args:  cobra.ExactArgs(1),
	RunE:  runDestroy,
}

var (
	destroyForce   bool
	destroyArchive bool
)

// confirmDestroy is swapped out in tests; the prompt needs a terminal.
var confirmDestroy = tui.ConfirmDestroy

func init() {
	destroyCmd.Flags().BoolVarP(&destroyForce, "force", "f", false, "Skip the interactive confirmation")
	destroyCmd.Flags().BoolVar(&destroyArchive, "archive", false, "Archive the instance directory before removal")
	rootCmd.AddCommand(destroyCmd)
}

func runDestroy(cmd *cobra.Command, args []string) error {
	name := args[0]
	ctx := context.Background()

	rec, err := store().Get(name)
	if err != nil {
		return err
	}

	if !destroyForce {
		details := []string{fmt.Sprintf("port %d", rec.Port)}
		if rec.Remote() {
			details = append(details, "host "+rec.SSHDestination())
		}
		if destroyArchive {
			details = append(details, "archive before removal")
		}

		confirmed, err := confirmDestroy(name, details)
		if err != nil {
			return err
		}
		if !confirmed {
			logInfo("Aborted")
			return nil
		}
	}

	logInfo("Destroying instance %s...", name)

	a := app.Default
	destroyer := instance.NewDestroyer(a.Store, a.FS, a.Surface, a.Exec, a.Paths, a.HostConfig, a.Audit)
	if err := destroyer.Destroy(ctx, name, instance.DestroyOptions{Archive: destroyArchive}); err != nil {
		return err
	}

	logSuccess("Destroyed %s", name)
	return nil
}
