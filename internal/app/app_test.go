package app

import (
	"testing"

	"github.com/lanekit/fleetctl/internal/compose"
	"github.com/lanekit/fleetctl/internal/config"
	"github.com/lanekit/fleetctl/internal/registry"
	"github.com/lanekit/fleetctl/internal/system"
)

func TestNew(t *testing.T) {
	a := New(WithHostConfig(&config.HostConfig{FleetRoot: t.TempDir(), BasePort: config.DefaultBasePort}))

	if a.Paths == nil {
		t.Error("Paths should not be nil")
	}
	if a.Store == nil {
		t.Error("Store should not be nil")
	}
	if a.Surface == nil {
		t.Error("Surface should not be nil")
	}
	if a.Audit == nil {
		t.Error("Audit should not be nil")
	}
}

func TestNew_WithOptions(t *testing.T) {
	root := t.TempDir()
	paths := config.NewPaths(root)
	cfg := &config.HostConfig{FleetRoot: root, BasePort: config.DefaultBasePort}
	store := registry.NewStore(paths.RegistryPath)
	surface := compose.NewMock()
	exec := system.NewMockExecutor()

	a := New(
		WithPaths(paths),
		WithHostConfig(cfg),
		WithStore(store),
		WithSurface(surface),
		WithExecutor(exec),
	)

	if a.Paths != paths {
		t.Error("Paths not set")
	}
	if a.HostConfig != cfg {
		t.Error("HostConfig not set")
	}
	if a.Store != store {
		t.Error("Store not set")
	}
	if a.Surface != surface {
		t.Error("Surface not set")
	}
	if a.Exec != exec {
		t.Error("Exec not set")
	}
}

func TestSetDefault(t *testing.T) {
	original := Default
	defer func() { Default = original }()

	custom := New(WithHostConfig(&config.HostConfig{FleetRoot: t.TempDir(), BasePort: config.DefaultBasePort}))
	SetDefault(custom)

	if Default != custom {
		t.Error("SetDefault did not update Default")
	}
}
