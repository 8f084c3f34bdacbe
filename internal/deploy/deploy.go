// Package deploy pushes scaffolded instances to remote hosts and brings
// their containers up.
package deploy

import (
	"context"
	"regexp"

	"github.com/lanekit/fleetctl/internal/compose"
	"github.com/lanekit/fleetctl/internal/errors"
	"github.com/lanekit/fleetctl/internal/logging"
	"github.com/lanekit/fleetctl/internal/ssh"
	"github.com/lanekit/fleetctl/internal/system"
)

// remotePathPattern constrains remote project directories to absolute paths
// built from a conservative character set. Anything else is rejected before
// it reaches a shell.
var remotePathPattern = regexp.MustCompile(`^/[A-Za-z0-9][A-Za-z0-9._/-]*$`)

// ValidateRemotePath rejects remote project directories outside the allowed
// character set.
func ValidateRemotePath(path string) error {
	if !remotePathPattern.MatchString(path) {
		return errors.ValidationError("remote path must be absolute and contain only [A-Za-z0-9._/-]: " + path)
	}
	return nil
}

// Deployer syncs an instance directory to its remote host and starts the
// container there.
type Deployer struct {
	ssh     *ssh.Client
	surface compose.Surface
}

// NewDeployer creates a Deployer.
func NewDeployer(executor system.CommandExecutor, surface compose.Surface) *Deployer {
	return &Deployer{
		ssh:     ssh.NewClient(executor),
		surface: surface,
	}
}

// Deploy creates the remote project directory, syncs localDir into it, and
// runs the compose stack there. A mkdir or sync failure aborts before any
// container is started. A start failure after a successful sync returns a
// distinct error: the files are on the host but the instance is not running.
func (d *Deployer) Deploy(ctx context.Context, t compose.Target, localDir string) error {
	if !t.Record.Remote() {
		return errors.ValidationError("instance " + t.Name + " has no remote host")
	}
	if err := ValidateRemotePath(t.Dir); err != nil {
		return err
	}

	dest := t.Record.SSHDestination()
	logging.Info("deploying instance", "instance", t.Name, "destination", dest, "dir", t.Dir)

	if err := d.ssh.MkdirAll(ctx, dest, t.Dir); err != nil {
		return errors.SSHError("remote directory creation failed", err)
	}
	if err := d.ssh.Sync(ctx, localDir, dest, t.Dir); err != nil {
		return errors.SSHError("sync to remote host failed", err)
	}

	if err := d.surface.Up(ctx, t); err != nil {
		return errors.RemoteStartFailed(t.Name, dest, err)
	}
	return nil
}
