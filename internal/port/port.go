// Package port assigns host ports to instances.
package port

import (
	"fmt"

	"github.com/lanekit/fleetctl/internal/errors"
	"github.com/lanekit/fleetctl/internal/registry"
)

// MaxScan bounds the auto-assignment scan. A registry that somehow has this
// many consecutive ports assigned is treated as an error rather than scanned
// indefinitely.
const MaxScan = 256

// Allocate returns the first free port at or above base, scanning in strictly
// ascending order and skipping every port already present in the registry.
func Allocate(reg *registry.Registry, base int) (int, error) {
	used := make(map[int]bool, len(reg.Instances))
	for _, rec := range reg.Instances {
		used[rec.Port] = true
	}

	for p := base; p < base+MaxScan; p++ {
		if !used[p] {
			return p, nil
		}
	}

	return 0, errors.PortAllocationFailed(
		fmt.Errorf("no free port in range %d-%d", base, base+MaxScan-1))
}

// Claim validates an explicitly requested port. A port already assigned to
// another instance is a conflict; no substitute is chosen.
func Claim(reg *registry.Registry, port int) error {
	if port < 1024 || port > 65535 {
		return errors.ValidationError(fmt.Sprintf("port %d out of range (1024-65535)", port))
	}

	for name, rec := range reg.Instances {
		if rec.Port == port {
			return errors.Wrap(errors.ExitConflict,
				fmt.Sprintf("Port %d already assigned", port),
				fmt.Errorf("held by instance %s", name))
		}
	}

	return nil
}
