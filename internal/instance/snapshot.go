package instance

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/lanekit/fleetctl/internal/archive"
	"github.com/lanekit/fleetctl/internal/audit"
	"github.com/lanekit/fleetctl/internal/compose"
	"github.com/lanekit/fleetctl/internal/config"
	"github.com/lanekit/fleetctl/internal/errors"
	"github.com/lanekit/fleetctl/internal/logging"
	"github.com/lanekit/fleetctl/internal/registry"
	"github.com/lanekit/fleetctl/internal/system"
)

// Snapshotter captures an instance's live data directory out of its
// container into a timestamped tarball.
type Snapshotter struct {
	store    *registry.Store
	fs       system.FileSystem
	surface  compose.Surface
	paths    *config.Paths
	cfg      *config.HostConfig
	auditLog *audit.Logger
}

// NewSnapshotter creates a Snapshotter. The audit logger may be nil.
func NewSnapshotter(store *registry.Store, filesystem system.FileSystem, surface compose.Surface, paths *config.Paths, cfg *config.HostConfig, auditLog *audit.Logger) *Snapshotter {
	return &Snapshotter{
		store:    store,
		fs:       filesystem,
		surface:  surface,
		paths:    paths,
		cfg:      cfg,
		auditLog: auditLog,
	}
}

// containerDataPath is where instances keep mutable state inside their
// containers.
const containerDataPath = "/app/data"

// Snapshot copies the container data directory of a currently running
// instance into a staging area and packs it into the snapshots directory.
// The staging area is removed whether or not the snapshot succeeds.
// Returns the snapshot path.
func (s *Snapshotter) Snapshot(ctx context.Context, name string) (string, error) {
	rec, err := s.store.Get(name)
	if err != nil {
		return "", err
	}
	target, err := s.snapshotTarget(name, rec)
	if err != nil {
		return "", err
	}

	info, err := s.surface.Status(ctx, target)
	if err != nil {
		return "", errors.ComposeFailed("status", err)
	}
	if !info.Running() {
		return "", errors.InstanceNotRunning(name)
	}

	now := time.Now()
	staging := filepath.Join(s.paths.StagingDir, fmt.Sprintf("%s-%s", name, now.UTC().Format("20060102-150405")))
	if err := s.fs.MkdirAll(staging, 0755); err != nil {
		return "", errors.ArchiveFailed(name, err)
	}
	defer func() {
		if err := s.fs.RemoveAll(staging); err != nil {
			logging.Warn("staging cleanup failed", "path", staging, "error", err)
		}
	}()

	if err := s.surface.CopyFrom(ctx, target, containerDataPath, staging); err != nil {
		return "", errors.ComposeFailed("cp", err)
	}

	dest := filepath.Join(s.paths.SnapshotsDir, archive.Name(name, now))
	if err := archive.Create(name, staging, dest); err != nil {
		return "", err
	}

	s.logEvent(audit.EventSnapshot, name, dest)
	logging.Info("snapshot written", "instance", name, "snapshot", dest)
	return dest, nil
}

// snapshotTarget resolves the target whose engine holds the snapshot source.
// Remote instances are reached through the configured managed host rather
// than the instance's own ssh credentials; without a managed host the
// record's own destination is used.
func (s *Snapshotter) snapshotTarget(name string, rec *registry.Record) (compose.Target, error) {
	target, err := compose.NewTarget(name, rec, s.paths, s.cfg.RemoteRoot)
	if err != nil || !rec.Remote() || s.cfg.ManagedHost == "" {
		return target, err
	}

	routed := *rec
	routed.SSHHost = s.cfg.ManagedHost
	routed.SSHUser = s.cfg.ManagedUser
	target.Record = &routed
	return target, nil
}

func (s *Snapshotter) logEvent(eventType audit.EventType, name, details string) {
	if s.auditLog == nil {
		return
	}
	if err := s.auditLog.LogEvent(eventType, name, details); err != nil {
		logging.Debug("audit log write failed", "instance", name, "error", err)
	}
}
