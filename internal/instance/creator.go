// Package instance scaffolds, destroys, and snapshots fleet instances.
package instance

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/lanekit/fleetctl/internal/audit"
	"github.com/lanekit/fleetctl/internal/compose"
	"github.com/lanekit/fleetctl/internal/config"
	"github.com/lanekit/fleetctl/internal/deploy"
	"github.com/lanekit/fleetctl/internal/errors"
	"github.com/lanekit/fleetctl/internal/generator"
	"github.com/lanekit/fleetctl/internal/logging"
	"github.com/lanekit/fleetctl/internal/port"
	"github.com/lanekit/fleetctl/internal/registry"
	"github.com/lanekit/fleetctl/internal/system"
)

// Creator scaffolds new instances: directory skeleton, compose descriptor,
// seeded configuration, registry record, and the optional remote deployment.
type Creator struct {
	store    *registry.Store
	fs       system.FileSystem
	deployer Deployer
	paths    *config.Paths
	cfg      *config.HostConfig
	auditLog *audit.Logger
}

// Deployer is the remote deployment dependency of Creator.
type Deployer interface {
	Deploy(ctx context.Context, t compose.Target, localDir string) error
}

// NewCreator creates a Creator. The audit logger may be nil.
func NewCreator(store *registry.Store, filesystem system.FileSystem, deployer Deployer, paths *config.Paths, cfg *config.HostConfig, auditLog *audit.Logger) *Creator {
	return &Creator{
		store:    store,
		fs:       filesystem,
		deployer: deployer,
		paths:    paths,
		cfg:      cfg,
		auditLog: auditLog,
	}
}

// Create scaffolds an instance and commits it to the registry. The registry
// commit comes last on the local side, so a failure partway through never
// leaves a registered instance without files. It can leave files without a
// registration; the returned error names the directory to remove.
//
// For remote instances the scaffold is committed locally first, then synced
// and started on the remote host.
func (c *Creator) Create(ctx context.Context, opts CreateOptions) (*registry.Record, error) {
	if err := config.ValidateInstanceName(opts.Name); err != nil {
		return nil, errors.ValidationError(err.Error())
	}
	if opts.SSHUser != "" && opts.SSHHost == "" {
		return nil, errors.ValidationError("--ssh-user requires --ssh-host")
	}
	if opts.RemotePath != "" {
		if opts.SSHHost == "" {
			return nil, errors.ValidationError("--remote-path requires --ssh-host")
		}
		if err := deploy.ValidateRemotePath(opts.RemotePath); err != nil {
			return nil, err
		}
	}

	var channels []generator.ChannelRecord
	if len(opts.ChannelExport) > 0 {
		var err error
		channels, err = generator.ParseChannelExport(opts.ChannelExport)
		if err != nil {
			return nil, errors.ValidationError(err.Error())
		}
	}

	reg, err := c.store.Load()
	if err != nil {
		return nil, err
	}
	if _, exists := reg.Instances[opts.Name]; exists {
		return nil, errors.InstanceExists(opts.Name)
	}

	dir, err := c.paths.InstanceDir(opts.Name)
	if err != nil {
		return nil, errors.ValidationError(err.Error())
	}
	if c.fs.Exists(dir) {
		return nil, errors.Wrap(errors.ExitConflict,
			fmt.Sprintf("Instance directory %s already exists", dir), nil)
	}

	assigned := opts.Port
	if assigned == 0 {
		assigned, err = port.Allocate(reg, c.cfg.BasePort)
		if err != nil {
			return nil, err
		}
	} else if err := port.Claim(reg, assigned); err != nil {
		return nil, err
	}

	rec := registry.NewRecord(assigned)
	rec.SSHHost = opts.SSHHost
	rec.SSHUser = opts.SSHUser
	rec.RemotePath = opts.RemotePath

	if err := c.scaffold(opts.Name, dir, rec, channels); err != nil {
		return nil, orphanError(dir, err)
	}

	// Registry commit. The port is validated again inside the mutation so a
	// concurrent creation of the same name or port surfaces as a conflict.
	err = c.store.Mutate(func(reg *registry.Registry) error {
		if _, exists := reg.Instances[opts.Name]; exists {
			return errors.InstanceExists(opts.Name)
		}
		if opts.Port != 0 {
			if err := port.Claim(reg, assigned); err != nil {
				return err
			}
		}
		reg.Instances[opts.Name] = rec
		return nil
	})
	if err != nil {
		return nil, orphanError(dir, err)
	}

	c.logEvent(audit.EventCreate, opts.Name, fmt.Sprintf("port=%d", assigned))
	logging.Info("instance scaffolded", "instance", opts.Name, "port", assigned, "dir", dir)

	if rec.Remote() {
		if err := c.deployRemote(ctx, opts, rec, dir); err != nil {
			return rec, err
		}
		c.logEvent(audit.EventDeploy, opts.Name, rec.SSHDestination())
	}

	return rec, nil
}

func (c *Creator) scaffold(name, dir string, rec *registry.Record, channels []generator.ChannelRecord) error {
	for _, sub := range []string{
		dir,
		filepath.Join(dir, "workspace"),
		filepath.Join(dir, "workspace", "config"),
		filepath.Join(dir, "data"),
	} {
		if err := c.fs.MkdirAll(sub, 0755); err != nil {
			return err
		}
	}

	if err := c.copyTemplates(dir); err != nil {
		return err
	}

	descriptor, err := generator.ComposeDescriptor(&generator.ComposeConfig{
		Name:    name,
		Port:    rec.Port,
		AppPort: c.cfg.AppPort,
		Image:   c.cfg.Image,
	})
	if err != nil {
		return err
	}
	if err := c.fs.WriteFile(filepath.Join(dir, "docker-compose.yml"), descriptor, 0644); err != nil {
		return err
	}

	configDir := filepath.Join(dir, "workspace", "config")

	settings, err := generator.SeedSettings(name, rec.Port)
	if err != nil {
		return err
	}
	if err := c.fs.WriteFile(filepath.Join(configDir, "settings.json"), settings, 0644); err != nil {
		return err
	}
	if err := c.fs.WriteFile(filepath.Join(dir, "workspace", "persona.md"), generator.SeedPersona(name), 0644); err != nil {
		return err
	}

	if channels != nil {
		data, err := generator.SeedChannels(channels)
		if err != nil {
			return err
		}
		if err := c.fs.WriteFile(filepath.Join(configDir, "channels.json"), data, 0644); err != nil {
			return err
		}
	}

	return nil
}

// copyTemplates copies top-level regular files from the templates directory
// into a new instance directory. A missing templates directory is fine.
func (c *Creator) copyTemplates(dir string) error {
	if !c.fs.IsDir(c.paths.TemplatesDir) {
		return nil
	}

	entries, err := c.fs.ReadDir(c.paths.TemplatesDir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		src := filepath.Join(c.paths.TemplatesDir, entry.Name())
		dst := filepath.Join(dir, entry.Name())
		if err := c.fs.CopyFile(src, dst); err != nil {
			return fmt.Errorf("template %s: %w", entry.Name(), err)
		}
	}
	return nil
}

func (c *Creator) deployRemote(ctx context.Context, opts CreateOptions, rec *registry.Record, localDir string) error {
	target, err := compose.NewTarget(opts.Name, rec, c.paths, c.cfg.RemoteRoot)
	if err != nil {
		return err
	}
	return c.deployer.Deploy(ctx, target, localDir)
}

func (c *Creator) logEvent(eventType audit.EventType, name, details string) {
	if c.auditLog == nil {
		return
	}
	if err := c.auditLog.LogEvent(eventType, name, details); err != nil {
		logging.Debug("audit log write failed", "instance", name, "error", err)
	}
}

// orphanError wraps a scaffold failure with the manual-cleanup contract:
// nothing was registered, and the named directory may hold partial files.
func orphanError(dir string, cause error) error {
	return errors.Wrap(errors.GetExitCode(cause),
		fmt.Sprintf("Instance creation failed; remove the orphaned directory %s before retrying", dir),
		cause)
}
