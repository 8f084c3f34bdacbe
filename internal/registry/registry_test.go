package registry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lanekit/fleetctl/internal/errors"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "instances.json"))
}

func TestStore_LoadMissing(t *testing.T) {
	s := newTestStore(t)

	reg, err := s.Load()
	if err != nil {
		t.Fatalf("Load on missing file: %v", err)
	}
	if len(reg.Instances) != 0 {
		t.Errorf("expected empty registry, got %d instances", len(reg.Instances))
	}
	if reg.Revision != 0 {
		t.Errorf("expected revision 0, got %d", reg.Revision)
	}
}

func TestStore_LoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "instances.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	s := NewStore(path)
	_, err := s.Load()
	if err == nil {
		t.Fatal("corrupt registry must be a fatal error")
	}
	if errors.GetExitCode(err) != errors.ExitRegistryCorrupt {
		t.Errorf("exit code = %d, want %d", errors.GetExitCode(err), errors.ExitRegistryCorrupt)
	}

	// The document must not have been reset.
	data, _ := os.ReadFile(path)
	if string(data) != "{not json" {
		t.Error("corrupt registry was rewritten")
	}
}

func TestStore_UpsertGetDelete(t *testing.T) {
	s := newTestStore(t)

	rec := NewRecord(18789)
	if err := s.Upsert("alpha", rec); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	got, err := s.Get("alpha")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Port != 18789 {
		t.Errorf("Port = %d, want 18789", got.Port)
	}

	if _, err := time.Parse(time.RFC3339, got.Created); err != nil {
		t.Errorf("Created %q is not RFC3339: %v", got.Created, err)
	}

	if err := s.Delete("alpha"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get("alpha"); err == nil {
		t.Error("Get after Delete should fail")
	}
}

func TestStore_GetUnknown(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get("ghost")
	if err == nil {
		t.Fatal("expected error for unknown instance")
	}
	if errors.GetExitCode(err) != errors.ExitInstanceNotFound {
		t.Errorf("exit code = %d, want %d", errors.GetExitCode(err), errors.ExitInstanceNotFound)
	}
}

func TestStore_DeleteUnknown(t *testing.T) {
	s := newTestStore(t)

	if err := s.Delete("ghost"); err == nil {
		t.Error("deleting an unknown instance should fail")
	}
}

func TestStore_ListSorted(t *testing.T) {
	s := newTestStore(t)

	for _, name := range []string{"zulu", "alpha", "mike"} {
		if err := s.Upsert(name, NewRecord(18789)); err != nil {
			t.Fatal(err)
		}
	}

	instances, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(instances) != 3 {
		t.Fatalf("List returned %d instances, want 3", len(instances))
	}
	for i, want := range []string{"alpha", "mike", "zulu"} {
		if instances[i].Name != want {
			t.Errorf("instances[%d] = %q, want %q", i, instances[i].Name, want)
		}
	}
}

func TestStore_RevisionAdvances(t *testing.T) {
	s := newTestStore(t)

	_ = s.Upsert("alpha", NewRecord(18789))
	_ = s.Upsert("beta", NewRecord(18790))

	reg, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if reg.Revision != 2 {
		t.Errorf("revision = %d, want 2", reg.Revision)
	}
}

func TestStore_PersistedShape(t *testing.T) {
	s := newTestStore(t)

	rec := NewRecord(18789)
	rec.SSHHost = "bots.example.net"
	rec.SSHUser = "ops"
	if err := s.Upsert("alpha", rec); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatal(err)
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("persisted document is not JSON: %v", err)
	}

	instances, ok := doc["instances"].(map[string]any)
	if !ok {
		t.Fatal("missing top-level instances map")
	}
	alpha, ok := instances["alpha"].(map[string]any)
	if !ok {
		t.Fatal("missing alpha record")
	}
	for _, key := range []string{"port", "created", "ssh_host", "ssh_user"} {
		if _, ok := alpha[key]; !ok {
			t.Errorf("record missing key %q", key)
		}
	}
	if _, ok := alpha["host"]; ok {
		t.Error("empty host should be omitted")
	}
}

func TestStore_ConcurrentWriterConflict(t *testing.T) {
	s := newTestStore(t)
	_ = s.Upsert("alpha", NewRecord(18789))

	// Simulate a second invocation sneaking in a write between this
	// mutation's read and its rename: the mutation function writes through a
	// second store handle.
	intruder := NewStore(s.Path())

	err := s.Mutate(func(reg *Registry) error {
		return intruder.Upsert("beta", NewRecord(18790))
	})
	if err == nil {
		t.Fatal("expected revision conflict")
	}
	if errors.GetExitCode(err) != errors.ExitConflict {
		t.Errorf("exit code = %d, want %d", errors.GetExitCode(err), errors.ExitConflict)
	}

	// The intruder's write must have survived.
	if _, err := s.Get("beta"); err != nil {
		t.Errorf("concurrent writer's update was lost: %v", err)
	}
}

func TestRecord_Remote(t *testing.T) {
	rec := NewRecord(18789)
	if rec.Remote() {
		t.Error("record without ssh_host should be local")
	}

	rec.SSHHost = "bots.example.net"
	if !rec.Remote() {
		t.Error("record with ssh_host should be remote")
	}
	if rec.SSHDestination() != "bots.example.net" {
		t.Errorf("SSHDestination = %q", rec.SSHDestination())
	}

	rec.SSHUser = "ops"
	if rec.SSHDestination() != "ops@bots.example.net" {
		t.Errorf("SSHDestination = %q", rec.SSHDestination())
	}
}
