// Package compose defines the container-control surface for fleetctl.
// Each instance is one docker-compose project; the surface drives it locally
// or over SSH for instances placed on remote hosts. Implementations must
// never cache run state: every query goes to the engine.
package compose

import (
	"context"
	"path"
	"time"

	"github.com/lanekit/fleetctl/internal/config"
	"github.com/lanekit/fleetctl/internal/registry"
)

// State is the runtime state of an instance's container as reported by the
// engine. It is derived on every query and never persisted.
type State string

const (
	StateNotCreated State = "not-created"
	StateCreated    State = "created"
	StateRunning    State = "running"
	StateExited     State = "exited"
	StateRestarting State = "restarting"
	StatePaused     State = "paused"
	StateDead       State = "dead"
)

// ContainerInfo holds the engine's view of one instance container.
type ContainerInfo struct {
	Name      string
	State     State
	StartedAt time.Time // zero unless the engine reported a start time
}

// Running reports whether the container is currently running.
func (i *ContainerInfo) Running() bool {
	return i.State == StateRunning
}

// Uptime returns the time since the container started, or zero.
func (i *ContainerInfo) Uptime() time.Duration {
	if i.StartedAt.IsZero() {
		return 0
	}
	return time.Since(i.StartedAt)
}

// Target resolves one instance to the compose project the surface operates
// on: the project directory (local path, or the deterministic remote path for
// SSH-placed instances) plus the placement record.
type Target struct {
	Name   string
	Dir    string
	Record *registry.Record
}

// NewTarget builds the Target for an instance. Remote instances resolve to
// the project directory recorded at deploy time, falling back to the
// deterministic <remoteRoot>/<name> path.
func NewTarget(name string, rec *registry.Record, paths *config.Paths, remoteRoot string) (Target, error) {
	if rec.Remote() {
		dir := rec.RemotePath
		if dir == "" {
			dir = path.Join(remoteRoot, name)
		}
		return Target{
			Name:   name,
			Dir:    dir,
			Record: rec,
		}, nil
	}

	dir, err := paths.InstanceDir(name)
	if err != nil {
		return Target{}, err
	}
	return Target{Name: name, Dir: dir, Record: rec}, nil
}

// ContainerName returns the container name for this target.
func (t Target) ContainerName() string {
	return config.ContainerName(t.Name)
}

// Surface is the container-control interface consumed by lifecycle, health,
// destroy, and snapshot operations.
type Surface interface {
	// Up builds and starts the instance's composition.
	Up(ctx context.Context, t Target) error

	// Start starts an existing, stopped composition.
	Start(ctx context.Context, t Target) error

	// Stop stops a running composition without removing it.
	Stop(ctx context.Context, t Target) error

	// Down stops and removes the composition; with removeVolumes it also
	// removes its ephemeral runtime volumes.
	Down(ctx context.Context, t Target, removeVolumes bool) error

	// Logs streams the composition's logs to the terminal until interrupted.
	Logs(ctx context.Context, t Target) error

	// Pull fetches the latest images for the composition.
	Pull(ctx context.Context, t Target) error

	// Recreate restarts the composition so freshly pulled images take effect.
	Recreate(ctx context.Context, t Target) error

	// Status returns the engine's current view of the instance container.
	Status(ctx context.Context, t Target) (*ContainerInfo, error)

	// CopyFrom copies a path out of the running container to the local
	// filesystem.
	CopyFrom(ctx context.Context, t Target, containerPath, hostPath string) error
}
