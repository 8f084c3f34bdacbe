package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/lanekit/fleetctl/internal/app"
	"github.com/lanekit/fleetctl/internal/errors"
	"github.com/lanekit/fleetctl/internal/health"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Probe the health of every running instance",
	Long: `Runs one health pass over all running instances and reports the
results. Stopped instances are skipped. With --interval the pass repeats
until interrupted, suitable for wrapping in a systemd service.`,
	RunE: runMonitor,
}

var (
	monitorInterval int
	monitorJSON     bool
)

func init() {
	monitorCmd.Flags().IntVar(&monitorInterval, "interval", 0, "Repeat every N seconds (0 for a single pass)")
	monitorCmd.Flags().BoolVar(&monitorJSON, "output-json", false, "Print each report as JSON")
	rootCmd.AddCommand(monitorCmd)
}

var (
	monitorHealthyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	monitorFailStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	monitorSkipStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func runMonitor(cmd *cobra.Command, args []string) error {
	a := app.Default
	prober := health.NewProber(a.Exec)
	mon := health.NewMonitor(a.Store, a.Surface, prober, a.Paths, a.HostConfig.RemoteRoot,
		health.WithAuditLogger(a.Audit))

	if monitorInterval <= 0 {
		report, err := mon.Check(context.Background())
		if err != nil {
			return err
		}
		printReport(report)
		if !report.Pass {
			return errors.New(errors.ExitGeneralError, "one or more instances are unhealthy")
		}
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logInfo("Starting health monitor (interval: %ds)", monitorInterval)

	ticker := time.NewTicker(time.Duration(monitorInterval) * time.Second)
	defer ticker.Stop()

	for {
		report, err := mon.Check(ctx)
		if err != nil {
			if ctx.Err() != nil {
				logInfo("Monitor stopped")
				return nil
			}
			return err
		}
		printReport(report)

		select {
		case <-ctx.Done():
			logInfo("Monitor stopped")
			return nil
		case <-ticker.C:
		}
	}
}

func printReport(report *health.Report) {
	printReportAs(report, monitorJSON)
}

func printReportAs(report *health.Report, asJSON bool) {
	if asJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		_ = encoder.Encode(report)
		return
	}

	for _, r := range report.Results {
		switch r.Status {
		case health.StatusHealthy:
			fmt.Printf("  %s %s (%d, %s)\n",
				monitorHealthyStyle.Render("✓"), r.Instance, r.Code, r.Latency.Round(time.Millisecond))
		case health.StatusUnhealthy:
			fmt.Printf("  %s %s (HTTP %d)\n", monitorFailStyle.Render("✗"), r.Instance, r.Code)
		default:
			fmt.Printf("  %s %s (%s)\n", monitorFailStyle.Render("✗"), r.Instance, r.Detail)
		}
	}
	for _, name := range report.Skipped {
		fmt.Printf("  %s %s (not running)\n", monitorSkipStyle.Render("○"), name)
	}

	if report.Pass {
		logSuccess("All running instances healthy (%d probed, %d skipped)",
			len(report.Results), len(report.Skipped))
	} else {
		logWarning("Health check failed (%d probed, %d skipped)",
			len(report.Results), len(report.Skipped))
	}
}
