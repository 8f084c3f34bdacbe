package instance

import (
	"context"
	"path/filepath"
	"time"

	"github.com/lanekit/fleetctl/internal/archive"
	"github.com/lanekit/fleetctl/internal/audit"
	"github.com/lanekit/fleetctl/internal/compose"
	"github.com/lanekit/fleetctl/internal/config"
	"github.com/lanekit/fleetctl/internal/deploy"
	"github.com/lanekit/fleetctl/internal/errors"
	"github.com/lanekit/fleetctl/internal/logging"
	"github.com/lanekit/fleetctl/internal/registry"
	"github.com/lanekit/fleetctl/internal/ssh"
	"github.com/lanekit/fleetctl/internal/system"
)

// Destroyer tears instances down: container and volumes, registry record,
// and the instance directory, with an optional pre-deletion archive.
type Destroyer struct {
	store    *registry.Store
	fs       system.FileSystem
	surface  compose.Surface
	ssh      *ssh.Client
	paths    *config.Paths
	cfg      *config.HostConfig
	auditLog *audit.Logger
}

// NewDestroyer creates a Destroyer. The audit logger may be nil.
func NewDestroyer(store *registry.Store, filesystem system.FileSystem, surface compose.Surface, executor system.CommandExecutor, paths *config.Paths, cfg *config.HostConfig, auditLog *audit.Logger) *Destroyer {
	return &Destroyer{
		store:    store,
		fs:       filesystem,
		surface:  surface,
		ssh:      ssh.NewClient(executor),
		paths:    paths,
		cfg:      cfg,
		auditLog: auditLog,
	}
}

// Destroy removes an instance. The container and its volumes go first, so a
// requested archive captures quiesced data. The archive is then written and
// verified before the registry record or any files are deleted; a failed
// archive aborts with nothing deleted.
func (d *Destroyer) Destroy(ctx context.Context, name string, opts DestroyOptions) error {
	rec, err := d.store.Get(name)
	if err != nil {
		return err
	}

	dir, err := d.paths.InstanceDir(name)
	if err != nil {
		return errors.ValidationError(err.Error())
	}

	target, err := compose.NewTarget(name, rec, d.paths, d.cfg.RemoteRoot)
	if err != nil {
		return err
	}
	if err := d.surface.Down(ctx, target, true); err != nil {
		return errors.ComposeFailed("down", err)
	}

	if opts.Archive {
		dest := filepath.Join(d.paths.ArchivesDir, archive.Name(name, time.Now()))
		if err := archive.Create(name, dir, dest); err != nil {
			return err
		}
		logging.Info("instance archived", "instance", name, "archive", dest)
	}

	if rec.Remote() {
		if err := d.removeRemoteDir(ctx, rec, target.Dir); err != nil {
			return err
		}
	}

	if err := d.store.Delete(name); err != nil {
		return err
	}
	if err := d.fs.RemoveAll(dir); err != nil {
		return errors.Wrap(errors.ExitGeneralError,
			"Instance unregistered but its directory could not be removed: "+dir, err)
	}

	d.logEvent(audit.EventDestroy, name, "")
	logging.Info("instance destroyed", "instance", name)
	return nil
}

func (d *Destroyer) removeRemoteDir(ctx context.Context, rec *registry.Record, remoteDir string) error {
	if err := deploy.ValidateRemotePath(remoteDir); err != nil {
		return err
	}
	if _, err := d.ssh.Exec(ctx, rec.SSHDestination(), "rm", "-rf", remoteDir); err != nil {
		return errors.SSHError("remote directory removal failed", err)
	}
	return nil
}

func (d *Destroyer) logEvent(eventType audit.EventType, name, details string) {
	if d.auditLog == nil {
		return
	}
	if err := d.auditLog.LogEvent(eventType, name, details); err != nil {
		logging.Debug("audit log write failed", "instance", name, "error", err)
	}
}
