package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/lanekit/fleetctl/internal/logging"
)

var (
	verbose    bool
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "fleetctl",
	Short: "Fleet registry and instance lifecycle CLI",
	Long: `fleetctl manages a fleet of containerized service instances.

Each instance gets:
  - A unique host port from the registry
  - A scaffolded directory with compose descriptor and seeded config
  - Lifecycle control (start, stop, update, logs) local or over SSH
  - Health probing on its /health endpoint`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Setup(verbose, jsonOutput, os.Stderr)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output logs in JSON format")
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// Helper aliases for user-facing output (delegates to logging package)
var (
	logInfo    = logging.UserInfo
	logSuccess = logging.UserSuccess
	logWarning = logging.UserWarning
	logError   = logging.UserError
)
