package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lanekit/fleetctl/internal/app"
	"github.com/lanekit/fleetctl/internal/deploy"
	"github.com/lanekit/fleetctl/internal/errors"
	"github.com/lanekit/fleetctl/internal/instance"
	"github.com/lanekit/fleetctl/internal/logging"
)

var createCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Scaffold and register a new instance",
	Args:  cobra.ExactArgs(1),
	RunE:  runCreate,
}

var (
	createPort       int
	createSSHHost    string
	createSSHUser    string
	createRemotePath string
	createChannels   string
)

func init() {
	createCmd.Flags().IntVarP(&createPort, "port", "p", 0, "Host port to pin (default: auto-assign)")
	createCmd.Flags().StringVar(&createSSHHost, "ssh-host", "", "Deploy to this remote host")
	createCmd.Flags().StringVar(&createSSHUser, "ssh-user", "", "SSH user for the remote host")
	createCmd.Flags().StringVar(&createRemotePath, "remote-path", "", "Remote project directory (default: <remote_root>/<name>)")
	createCmd.Flags().StringVar(&createChannels, "channels", "", "Channel export file to seed into the instance config")
	rootCmd.AddCommand(createCmd)
}

func runCreate(cmd *cobra.Command, args []string) error {
	name := args[0]
	ctx := context.Background()

	opts := instance.CreateOptions{
		Name:       name,
		Port:       createPort,
		SSHHost:    createSSHHost,
		SSHUser:    createSSHUser,
		RemotePath: createRemotePath,
	}
	if createChannels != "" {
		data, err := os.ReadFile(createChannels)
		if err != nil {
			return errors.ValidationError(fmt.Sprintf("cannot read channel export %s: %v", createChannels, err))
		}
		opts.ChannelExport = data
	}

	logging.Debug("creating instance", "name", name, "port", createPort, "ssh_host", createSSHHost)
	logInfo("Creating instance %s...", name)

	a := app.Default
	deployer := deploy.NewDeployer(a.Exec, a.Surface)
	creator := instance.NewCreator(a.Store, a.FS, deployer, a.Paths, a.HostConfig, a.Audit)

	rec, err := creator.Create(ctx, opts)
	if err != nil {
		return err
	}

	logSuccess("Instance %s created", name)
	fmt.Printf("  Port: %d\n", rec.Port)
	if rec.Remote() {
		fmt.Printf("  Host: %s\n", rec.SSHDestination())
	}
	fmt.Printf("  Start: fleetctl start %s\n", name)

	return nil
}
