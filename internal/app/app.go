// Package app provides the application context for fleetctl.
// It allows dependency injection for testing.
package app

import (
	"github.com/lanekit/fleetctl/internal/audit"
	"github.com/lanekit/fleetctl/internal/compose"
	"github.com/lanekit/fleetctl/internal/config"
	"github.com/lanekit/fleetctl/internal/logging"
	"github.com/lanekit/fleetctl/internal/registry"
	"github.com/lanekit/fleetctl/internal/system"
)

// App holds the application dependencies
type App struct {
	// Paths holds the fleet root layout
	Paths *config.Paths

	// HostConfig is the loaded operator configuration
	HostConfig *config.HostConfig

	// Store is the instance registry
	Store *registry.Store

	// Surface drives the container engine
	Surface compose.Surface

	// Exec runs external commands (ssh, rsync)
	Exec system.CommandExecutor

	// FS performs file operations
	FS system.FileSystem

	// Audit records per-instance lifecycle events
	Audit *audit.Logger
}

// Option is a function that configures the App
type Option func(*App)

// WithPaths sets custom paths
func WithPaths(paths *config.Paths) Option {
	return func(a *App) {
		a.Paths = paths
	}
}

// WithHostConfig sets a custom host config
func WithHostConfig(cfg *config.HostConfig) Option {
	return func(a *App) {
		a.HostConfig = cfg
	}
}

// WithStore sets a custom registry store
func WithStore(store *registry.Store) Option {
	return func(a *App) {
		a.Store = store
	}
}

// WithSurface sets a custom container surface
func WithSurface(surface compose.Surface) Option {
	return func(a *App) {
		a.Surface = surface
	}
}

// WithExecutor sets a custom command executor
func WithExecutor(executor system.CommandExecutor) Option {
	return func(a *App) {
		a.Exec = executor
	}
}

// WithFileSystem sets a custom filesystem
func WithFileSystem(filesystem system.FileSystem) Option {
	return func(a *App) {
		a.FS = filesystem
	}
}

// New creates a new App with the given options. Unset dependencies fall back
// to the real config file, filesystem, and engine.
func New(opts ...Option) *App {
	a := &App{}

	for _, opt := range opts {
		opt(a)
	}

	if a.HostConfig == nil {
		cfg, err := config.LoadHostConfig()
		if err != nil {
			logging.Debug("host config unavailable, using defaults", "error", err)
			cfg, err = config.DefaultHostConfig()
			if err != nil {
				cfg = &config.HostConfig{FleetRoot: ".", BasePort: config.DefaultBasePort}
			}
		}
		a.HostConfig = cfg
	}
	if a.Paths == nil {
		a.Paths = config.NewPaths(a.HostConfig.FleetRoot)
	}
	if a.Exec == nil {
		a.Exec = system.DefaultExecutor()
	}
	if a.FS == nil {
		a.FS = system.DefaultFS()
	}
	if a.Store == nil {
		a.Store = registry.NewStoreFS(a.Paths.RegistryPath, a.FS)
	}
	if a.Surface == nil {
		a.Surface = compose.NewDockerCompose(a.Exec)
	}
	if a.Audit == nil {
		a.Audit = audit.NewLogger(a.Paths.StateDir)
	}

	return a
}

// Default is the default application instance
var Default = New()

// SetDefault replaces the default application instance (for tests)
func SetDefault(a *App) {
	Default = a
}

// ResetDefault restores the default application instance
func ResetDefault() {
	Default = New()
}
