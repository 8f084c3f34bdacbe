// Package testutil provides a shared test environment for command and
// integration tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lanekit/fleetctl/internal/app"
	"github.com/lanekit/fleetctl/internal/compose"
	"github.com/lanekit/fleetctl/internal/config"
	"github.com/lanekit/fleetctl/internal/registry"
	"github.com/lanekit/fleetctl/internal/system"
)

// TestEnv holds a fleet root under a temp directory with mock engine and
// executor doubles.
type TestEnv struct {
	T          *testing.T
	TmpDir     string
	Paths      *config.Paths
	HostConfig *config.HostConfig
	Store      *registry.Store
	Surface    *compose.Mock
	Exec       *system.MockExecutor
	App        *app.App
}

// NewTestEnv creates a fleet root with the standard directory layout and
// installs it as the default app context.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	tmpDir := t.TempDir()
	paths := config.NewPaths(tmpDir)

	for _, dir := range []string{
		paths.InstancesDir,
		paths.TemplatesDir,
		paths.ArchivesDir,
		paths.SnapshotsDir,
		paths.StagingDir,
		paths.StateDir,
	} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}

	hostConfig := &config.HostConfig{
		FleetRoot:  tmpDir,
		BasePort:   config.DefaultBasePort,
		AppPort:    config.DefaultAppPort,
		Image:      config.DefaultImage,
		RemoteRoot: config.DefaultRemoteRoot,
	}

	store := registry.NewStore(paths.RegistryPath)
	surface := compose.NewMock()
	exec := system.NewMockExecutor()

	testApp := app.New(
		app.WithPaths(paths),
		app.WithHostConfig(hostConfig),
		app.WithStore(store),
		app.WithSurface(surface),
		app.WithExecutor(exec),
	)

	originalDefault := app.Default
	app.SetDefault(testApp)
	t.Cleanup(func() { app.SetDefault(originalDefault) })

	return &TestEnv{
		T:          t,
		TmpDir:     tmpDir,
		Paths:      paths,
		HostConfig: hostConfig,
		Store:      store,
		Surface:    surface,
		Exec:       exec,
		App:        testApp,
	}
}

// AddInstance registers a local instance and scaffolds a minimal directory.
func (e *TestEnv) AddInstance(name string, port int) *registry.Record {
	e.T.Helper()

	rec := registry.NewRecord(port)
	e.commit(name, rec)
	return rec
}

// AddRemoteInstance registers an instance placed on a remote host.
func (e *TestEnv) AddRemoteInstance(name string, port int, sshHost, sshUser string) *registry.Record {
	e.T.Helper()

	rec := registry.NewRecord(port)
	rec.SSHHost = sshHost
	rec.SSHUser = sshUser
	e.commit(name, rec)
	return rec
}

func (e *TestEnv) commit(name string, rec *registry.Record) {
	if err := e.Store.Upsert(name, rec); err != nil {
		e.T.Fatalf("Failed to register instance %s: %v", name, err)
	}

	dir, err := e.Paths.InstanceDir(name)
	if err != nil {
		e.T.Fatalf("Instance dir for %s: %v", name, err)
	}
	for _, sub := range []string{
		dir,
		filepath.Join(dir, "workspace", "config"),
		filepath.Join(dir, "data"),
	} {
		if err := os.MkdirAll(sub, 0755); err != nil {
			e.T.Fatalf("Failed to create %s: %v", sub, err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "docker-compose.yml"), []byte("services: {}\n"), 0644); err != nil {
		e.T.Fatalf("Failed to write compose file: %v", err)
	}
}

// InstanceExists reports whether an instance is registered.
func (e *TestEnv) InstanceExists(name string) bool {
	_, err := e.Store.Get(name)
	return err == nil
}

// InstanceDir returns the on-disk directory for an instance.
func (e *TestEnv) InstanceDir(name string) string {
	e.T.Helper()

	dir, err := e.Paths.InstanceDir(name)
	if err != nil {
		e.T.Fatalf("Instance dir for %s: %v", name, err)
	}
	return dir
}
