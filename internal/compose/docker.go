package compose

import (
	"context"
	"fmt"
	"strings"
	"time"

	shellquote "github.com/kballard/go-shellquote"

	"github.com/lanekit/fleetctl/internal/logging"
	"github.com/lanekit/fleetctl/internal/system"
)

// DockerCompose drives instances through the docker CLI. Compose-level
// operations run `docker compose --project-directory <dir> ...`, locally or
// wrapped in ssh for remote targets. Engine-level operations (inspect, cp)
// reach remote engines with `docker -H ssh://...` instead of a shell hop.
type DockerCompose struct {
	exec system.CommandExecutor
}

// NewDockerCompose creates the docker-CLI backed surface.
func NewDockerCompose(executor system.CommandExecutor) *DockerCompose {
	return &DockerCompose{exec: executor}
}

// composeArgs builds the full local argv for a compose subcommand.
func composeArgs(t Target, sub ...string) []string {
	args := []string{"compose", "--project-directory", t.Dir}
	return append(args, sub...)
}

// runCompose executes a compose subcommand against the target, routing
// through ssh for remote targets. The remote command is assembled from an
// argument vector with shellquote.
func (d *DockerCompose) runCompose(ctx context.Context, t Target, sub ...string) error {
	var out []byte
	var err error

	if t.Record.Remote() {
		remote := append([]string{"docker"}, composeArgs(t, sub...)...)
		out, err = d.exec.Execute(ctx, "ssh",
			"-o", "BatchMode=yes",
			t.Record.SSHDestination(),
			shellquote.Join(remote...))
	} else {
		out, err = d.exec.Execute(ctx, "docker", composeArgs(t, sub...)...)
	}

	if err != nil {
		return fmt.Errorf("docker compose %s failed for %s: %s: %w", sub[0], t.Name, strings.TrimSpace(string(out)), err)
	}
	return nil
}

// engineArgs builds the argv for an engine-level docker subcommand,
// addressing the remote engine over ssh when needed.
func engineArgs(t Target, sub ...string) []string {
	if t.Record.Remote() {
		return append([]string{"-H", "ssh://" + t.Record.SSHDestination()}, sub...)
	}
	return sub
}

func (d *DockerCompose) Up(ctx context.Context, t Target) error {
	logging.Debug("compose up", "instance", t.Name, "dir", t.Dir)
	return d.runCompose(ctx, t, "up", "-d", "--build")
}

func (d *DockerCompose) Start(ctx context.Context, t Target) error {
	logging.Debug("compose start", "instance", t.Name)
	return d.runCompose(ctx, t, "start")
}

func (d *DockerCompose) Stop(ctx context.Context, t Target) error {
	logging.Debug("compose stop", "instance", t.Name)
	return d.runCompose(ctx, t, "stop")
}

func (d *DockerCompose) Down(ctx context.Context, t Target, removeVolumes bool) error {
	logging.Debug("compose down", "instance", t.Name, "volumes", removeVolumes)
	sub := []string{"down"}
	if removeVolumes {
		sub = append(sub, "--volumes")
	}
	return d.runCompose(ctx, t, sub...)
}

func (d *DockerCompose) Logs(ctx context.Context, t Target) error {
	if t.Record.Remote() {
		remote := append([]string{"docker"}, composeArgs(t, "logs", "-f", "--tail", "100")...)
		return d.exec.ExecuteStreaming(ctx, "ssh", "-t", t.Record.SSHDestination(), shellquote.Join(remote...))
	}
	return d.exec.ExecuteStreaming(ctx, "docker", composeArgs(t, "logs", "-f", "--tail", "100")...)
}

func (d *DockerCompose) Pull(ctx context.Context, t Target) error {
	logging.Debug("compose pull", "instance", t.Name)
	return d.runCompose(ctx, t, "pull")
}

func (d *DockerCompose) Recreate(ctx context.Context, t Target) error {
	logging.Debug("compose recreate", "instance", t.Name)
	return d.runCompose(ctx, t, "up", "-d")
}

// inspectFormat extracts state and start time in one round trip.
const inspectFormat = "{{.State.Status}}|{{.State.StartedAt}}"

func (d *DockerCompose) Status(ctx context.Context, t Target) (*ContainerInfo, error) {
	info := &ContainerInfo{
		Name:  t.ContainerName(),
		State: StateNotCreated,
	}

	args := engineArgs(t, "inspect", "--format", inspectFormat, t.ContainerName())
	out, err := d.exec.Execute(ctx, "docker", args...)
	if err != nil {
		// A missing container is a state, not an error.
		return info, nil
	}

	status, startedAt, _ := strings.Cut(strings.TrimSpace(string(out)), "|")
	info.State = parseState(status)

	if info.State == StateRunning && startedAt != "" {
		if ts, err := time.Parse(time.RFC3339Nano, startedAt); err == nil {
			info.StartedAt = ts
		}
	}

	return info, nil
}

// parseState maps the engine's status string onto the State set.
func parseState(s string) State {
	switch s {
	case "created":
		return StateCreated
	case "running":
		return StateRunning
	case "exited":
		return StateExited
	case "restarting":
		return StateRestarting
	case "paused":
		return StatePaused
	case "dead":
		return StateDead
	default:
		return StateNotCreated
	}
}

func (d *DockerCompose) CopyFrom(ctx context.Context, t Target, containerPath, hostPath string) error {
	args := engineArgs(t, "cp", t.ContainerName()+":"+containerPath, hostPath)
	if out, err := d.exec.Execute(ctx, "docker", args...); err != nil {
		return fmt.Errorf("docker cp from %s failed: %s: %w", t.Name, strings.TrimSpace(string(out)), err)
	}
	return nil
}
