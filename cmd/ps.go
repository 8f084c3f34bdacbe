package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lanekit/fleetctl/internal/compose"
	"github.com/lanekit/fleetctl/internal/lifecycle"
)

var psCmd = &cobra.Command{
	Use:   "ps",
	Short: "List all instances",
	RunE:  runPs,
}

func init() {
	rootCmd.AddCommand(psCmd)
}

func runPs(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	instances, err := store().List()
	if err != nil {
		return err
	}

	if len(instances) == 0 {
		logInfo("No instances found. Create one with: fleetctl create <name>")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tPORT\tHOST\tSTATE\tUPTIME\tCREATED")
	fmt.Fprintln(w, "----\t----\t----\t-----\t------\t-------")

	for _, inst := range instances {
		host := "local"
		if inst.Record.Remote() {
			host = inst.Record.SSHDestination()
		}

		state := string(compose.StateNotCreated)
		uptime := "-"
		if target, targetErr := loadTarget(inst.Name); targetErr == nil {
			if info, statusErr := surface().Status(ctx, target); statusErr == nil {
				state = string(info.State)
				uptime = lifecycle.FormatUptime(info.Uptime())
			}
		}

		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%s\n",
			inst.Name, inst.Record.Port, host, state, uptime, inst.Record.Created)
	}

	return w.Flush()
}
