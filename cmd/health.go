package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/lanekit/fleetctl/internal/app"
	"github.com/lanekit/fleetctl/internal/errors"
	"github.com/lanekit/fleetctl/internal/health"
)

var healthCmd = &cobra.Command{
	Use:   "health [name]",
	Short: "Probe instance health endpoints",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHealth,
}

var healthJSON bool

func init() {
	healthCmd.Flags().BoolVar(&healthJSON, "output-json", false, "Print the probe result as JSON")
	rootCmd.AddCommand(healthCmd)
}

func runHealth(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	// Without a name, run one pass over every running instance.
	if len(args) == 0 {
		a := app.Default
		mon := health.NewMonitor(a.Store, a.Surface, health.NewProber(a.Exec), a.Paths, a.HostConfig.RemoteRoot)
		report, err := mon.Check(ctx)
		if err != nil {
			return err
		}
		printReportAs(report, healthJSON)
		if !report.Pass {
			return errors.New(errors.ExitGeneralError, "one or more instances are unhealthy")
		}
		return nil
	}

	name := args[0]

	target, err := loadTarget(name)
	if err != nil {
		return err
	}

	prober := health.NewProber(app.Default.Exec)
	result := prober.Probe(ctx, target)

	if healthJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(result); err != nil {
			return err
		}
	} else {
		printProbeResult(result)
	}

	if !result.Healthy() {
		return errors.New(errors.ExitGeneralError, fmt.Sprintf("instance %s is %s", name, result.Status))
	}
	return nil
}

func printProbeResult(r health.Result) {
	switch r.Status {
	case health.StatusHealthy:
		logSuccess("%s healthy (%d, %s)", r.Instance, r.Code, r.Latency.Round(time.Millisecond))
	case health.StatusUnhealthy:
		logWarning("%s unhealthy (HTTP %d)", r.Instance, r.Code)
	default:
		logError("%s unreachable: %s", r.Instance, r.Detail)
	}
}
