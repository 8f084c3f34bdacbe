package cmd

import (
	"github.com/lanekit/fleetctl/internal/app"
	"github.com/lanekit/fleetctl/internal/compose"
	"github.com/lanekit/fleetctl/internal/config"
	"github.com/lanekit/fleetctl/internal/lifecycle"
	"github.com/lanekit/fleetctl/internal/registry"
)

// paths returns the fleet root layout.
// This is a helper to reduce repetition in commands.
func paths() *config.Paths {
	return app.Default.Paths
}

// hostConfig returns the loaded operator configuration.
func hostConfig() *config.HostConfig {
	return app.Default.HostConfig
}

// store returns the instance registry.
func store() *registry.Store {
	return app.Default.Store
}

// surface returns the container engine surface.
func surface() compose.Surface {
	return app.Default.Surface
}

// controller builds the lifecycle controller over the app context.
func controller() *lifecycle.Controller {
	a := app.Default
	return lifecycle.NewController(a.Store, a.Surface, a.Paths, a.HostConfig.RemoteRoot, a.Audit)
}

// loadTarget resolves an instance name to its engine target.
func loadTarget(name string) (compose.Target, error) {
	a := app.Default
	rec, err := a.Store.Get(name)
	if err != nil {
		return compose.Target{}, err
	}
	return compose.NewTarget(name, rec, a.Paths, a.HostConfig.RemoteRoot)
}

// reportOutcomes prints per-instance results of a batch operation and
// reports whether any of them failed.
func reportOutcomes(verb string, outcomes []lifecycle.Outcome) bool {
	failed := false
	for _, o := range outcomes {
		if o.Err != nil {
			failed = true
			logError("%s %s: %v", verb, o.Instance, o.Err)
		} else {
			logSuccess("%s %s", verb, o.Instance)
		}
	}
	return failed
}
