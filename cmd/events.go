package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/lanekit/fleetctl/internal/app"
)

var eventsCmd = &cobra.Command{
	Use:   "events <name>",
	Short: "Show the recorded lifecycle events for an instance",
	Args:  cobra.ExactArgs(1),
	RunE:  runEvents,
}

func init() {
	rootCmd.AddCommand(eventsCmd)
}

func runEvents(cmd *cobra.Command, args []string) error {
	name := args[0]

	// Verify the instance is (or was) known before reading its event log.
	if _, err := store().Get(name); err != nil {
		return err
	}

	events, err := app.Default.Audit.Events(name)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		logInfo("No events recorded for %s", name)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tEVENT\tDETAILS")
	for _, e := range events {
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.Timestamp.Format(time.RFC3339), e.Type, e.Details)
	}
	return w.Flush()
}
