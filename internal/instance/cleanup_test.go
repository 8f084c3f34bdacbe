package instance

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lanekit/fleetctl/internal/archive"
	"github.com/lanekit/fleetctl/internal/compose"
	"github.com/lanekit/fleetctl/internal/config"
	"github.com/lanekit/fleetctl/internal/registry"
	"github.com/lanekit/fleetctl/internal/system"
)

type destroyerEnv struct {
	destroyer *Destroyer
	store     *registry.Store
	surface   *compose.Mock
	exec      *system.MockExecutor
	paths     *config.Paths
}

func newDestroyerEnv(t *testing.T) *destroyerEnv {
	t.Helper()

	root := t.TempDir()
	paths := config.NewPaths(root)
	store := registry.NewStore(paths.RegistryPath)
	cfg := &config.HostConfig{
		FleetRoot:  root,
		BasePort:   config.DefaultBasePort,
		RemoteRoot: config.DefaultRemoteRoot,
	}
	surface := compose.NewMock()
	exec := system.NewMockExecutor()

	return &destroyerEnv{
		destroyer: NewDestroyer(store, system.DefaultFS(), surface, exec, paths, cfg, nil),
		store:     store,
		surface:   surface,
		exec:      exec,
		paths:     paths,
	}
}

func (e *destroyerEnv) seed(t *testing.T, name string, rec *registry.Record) string {
	t.Helper()

	if err := e.store.Upsert(name, rec); err != nil {
		t.Fatal(err)
	}
	dir, err := e.paths.InstanceDir(name)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "docker-compose.yml"), []byte("services: {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestDestroy_RemovesEverything(t *testing.T) {
	env := newDestroyerEnv(t)
	dir := env.seed(t, "alpha", registry.NewRecord(18789))
	env.surface.SetState("alpha", compose.StateRunning)

	if err := env.destroyer.Destroy(context.Background(), "alpha", DestroyOptions{}); err != nil {
		t.Fatalf("Destroy: %v", err)
	}

	if calls := env.surface.CallsFor("down-volumes"); len(calls) != 1 {
		t.Error("down --volumes not run")
	}
	if _, err := env.store.Get("alpha"); err == nil {
		t.Error("record still registered")
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Error("instance directory still present")
	}
}

func TestDestroy_ArchiveBeforeDeletion(t *testing.T) {
	env := newDestroyerEnv(t)
	env.seed(t, "alpha", registry.NewRecord(18789))

	if err := env.destroyer.Destroy(context.Background(), "alpha", DestroyOptions{Archive: true}); err != nil {
		t.Fatalf("Destroy: %v", err)
	}

	names, err := archive.List(env.paths.ArchivesDir, "alpha")
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 1 {
		t.Fatalf("archives = %v", names)
	}
}

func TestDestroy_FailedArchiveAborts(t *testing.T) {
	env := newDestroyerEnv(t)
	if err := env.store.Upsert("alpha", registry.NewRecord(18789)); err != nil {
		t.Fatal(err)
	}
	// No instance directory on disk, so the archive cannot be written.

	err := env.destroyer.Destroy(context.Background(), "alpha", DestroyOptions{Archive: true})
	if err == nil {
		t.Fatal("expected archive failure")
	}

	if _, getErr := env.store.Get("alpha"); getErr != nil {
		t.Error("record deleted despite failed archive")
	}
}

func TestDestroy_StopsContainerBeforeArchive(t *testing.T) {
	env := newDestroyerEnv(t)
	env.seed(t, "alpha", registry.NewRecord(18789))
	env.surface.SetState("alpha", compose.StateRunning)
	env.surface.SetError("down-volumes", fmt.Errorf("engine unreachable"))

	err := env.destroyer.Destroy(context.Background(), "alpha", DestroyOptions{Archive: true})
	if err == nil {
		t.Fatal("expected down failure")
	}

	names, listErr := archive.List(env.paths.ArchivesDir, "alpha")
	if listErr != nil {
		t.Fatal(listErr)
	}
	if len(names) != 0 {
		t.Errorf("archive written before the container was stopped: %v", names)
	}
	if _, getErr := env.store.Get("alpha"); getErr != nil {
		t.Error("record deleted despite failed down")
	}
}

func TestDestroy_UnknownInstance(t *testing.T) {
	env := newDestroyerEnv(t)
	if err := env.destroyer.Destroy(context.Background(), "ghost", DestroyOptions{}); err == nil {
		t.Fatal("expected not-found error")
	}
}

func TestDestroy_RemoteRemovesRemoteDir(t *testing.T) {
	env := newDestroyerEnv(t)
	rec := registry.NewRecord(18789)
	rec.SSHHost = "bots.example.net"
	rec.SSHUser = "ops"
	env.seed(t, "alpha", rec)

	if err := env.destroyer.Destroy(context.Background(), "alpha", DestroyOptions{}); err != nil {
		t.Fatalf("Destroy: %v", err)
	}

	var sawRemove bool
	for _, c := range env.exec.Commands {
		if c.Name == "ssh" && strings.Contains(strings.Join(c.Args, " "), "rm -rf /opt/fleetctl/alpha") {
			sawRemove = true
		}
	}
	if !sawRemove {
		t.Errorf("remote dir not removed: %+v", env.exec.Commands)
	}
}

func TestDestroy_RemoteHonorsRecordedPath(t *testing.T) {
	env := newDestroyerEnv(t)
	rec := registry.NewRecord(18789)
	rec.SSHHost = "bots.example.net"
	rec.RemotePath = "/srv/bots/alpha"
	env.seed(t, "alpha", rec)

	if err := env.destroyer.Destroy(context.Background(), "alpha", DestroyOptions{}); err != nil {
		t.Fatalf("Destroy: %v", err)
	}

	for _, c := range env.exec.Commands {
		joined := strings.Join(c.Args, " ")
		if c.Name == "ssh" && strings.Contains(joined, "rm -rf /srv/bots/alpha") {
			return
		}
		if strings.Contains(joined, "/opt/fleetctl/alpha") {
			t.Fatalf("derived path used instead of the recorded one: %v", c.Args)
		}
	}
	t.Errorf("recorded remote dir not removed: %+v", env.exec.Commands)
}
