package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lanekit/fleetctl/internal/errors"
	"github.com/lanekit/fleetctl/internal/lifecycle"
)

var statusCmd = &cobra.Command{
	Use:   "status [name]",
	Short: "Show instance registration and container state",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		instances, err := store().List()
		if err != nil {
			return err
		}
		if len(instances) == 0 {
			logInfo("No instances registered")
			return nil
		}
		for i, inst := range instances {
			if i > 0 {
				fmt.Println()
			}
			if err := showStatus(inst.Name); err != nil {
				return err
			}
		}
		return nil
	}
	return showStatus(args[0])
}

func showStatus(name string) error {
	ctx := context.Background()

	rec, err := store().Get(name)
	if err != nil {
		return err
	}
	target, err := loadTarget(name)
	if err != nil {
		return err
	}

	info, err := surface().Status(ctx, target)
	if err != nil {
		return errors.ComposeFailed("status", err)
	}

	fmt.Printf("Instance: %s\n", name)
	fmt.Printf("  Port:      %d\n", rec.Port)
	if rec.Remote() {
		fmt.Printf("  Host:      %s\n", rec.SSHDestination())
		fmt.Printf("  Directory: %s\n", target.Dir)
	} else {
		fmt.Printf("  Directory: %s\n", target.Dir)
	}
	fmt.Printf("  Created:   %s\n", rec.Created)
	fmt.Printf("  Container: %s\n", target.ContainerName())
	fmt.Printf("  State:     %s\n", info.State)
	if info.Running() {
		fmt.Printf("  Uptime:    %s\n", lifecycle.FormatUptime(info.Uptime()))
	}

	return nil
}
