package main

import (
	"os"

	"github.com/lanekit/fleetctl/cmd"
	"github.com/lanekit/fleetctl/internal/errors"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(errors.GetExitCode(err))
	}
}
