package registry

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/lanekit/fleetctl/internal/errors"
	"github.com/lanekit/fleetctl/internal/logging"
	"github.com/lanekit/fleetctl/internal/system"
)

// Record is the placement metadata for one instance. Run state (running,
// stopped) is deliberately absent: it is always derived from the container
// engine at query time.
type Record struct {
	Port    int    `json:"port"`
	Created string `json:"created"` // RFC3339, UTC
	Host    string `json:"host,omitempty"`
	SSHHost string `json:"ssh_host,omitempty"`
	SSHUser string `json:"ssh_user,omitempty"`

	// RemotePath is the deployed project directory on the remote host when it
	// was overridden at creation time. Empty means the deterministic
	// <remote_root>/<name> path.
	RemotePath string `json:"remote_path,omitempty"`
}

// Remote reports whether lifecycle and health operations for this instance
// are routed over SSH.
func (r *Record) Remote() bool {
	return r.SSHHost != ""
}

// SSHDestination returns the user@host destination, or just the host when no
// user is recorded.
func (r *Record) SSHDestination() string {
	if r.SSHUser != "" {
		return r.SSHUser + "@" + r.SSHHost
	}
	return r.SSHHost
}

// NewRecord builds a Record with the created timestamp set to now (UTC).
func NewRecord(port int) *Record {
	return &Record{
		Port:    port,
		Created: time.Now().UTC().Format(time.RFC3339),
	}
}

// Registry is the singleton placement document. The revision counter backs
// optimistic concurrency control between independent invocations.
type Registry struct {
	Revision  int64              `json:"revision"`
	Instances map[string]*Record `json:"instances"`
}

// Instance pairs a name with its record for sorted listings.
type Instance struct {
	Name   string
	Record *Record
}

// Store reads and writes the registry document. Every mutation is a full
// read-modify-write with an atomic temp-file-and-rename persist, guarded by a
// revision compare before the rename.
type Store struct {
	path string
	fs   system.FileSystem
}

// NewStore creates a Store for the registry document at path.
func NewStore(path string) *Store {
	return NewStoreFS(path, system.DefaultFS())
}

// NewStoreFS creates a Store with an explicit filesystem (for tests).
func NewStoreFS(path string, filesystem system.FileSystem) *Store {
	return &Store{path: path, fs: filesystem}
}

// Path returns the registry document location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the registry document. A missing file yields an empty registry;
// an unreadable or malformed one is fatal and is never silently reset.
func (s *Store) Load() (*Registry, error) {
	data, err := s.fs.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) || errors.Is(err, fs.ErrNotExist) {
			return &Registry{Instances: make(map[string]*Record)}, nil
		}
		return nil, errors.RegistryCorrupt(s.path, err)
	}

	var reg Registry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, errors.RegistryCorrupt(s.path, err)
	}
	if reg.Instances == nil {
		reg.Instances = make(map[string]*Record)
	}

	return &reg, nil
}

// Get returns the record for one instance.
func (s *Store) Get(name string) (*Record, error) {
	reg, err := s.Load()
	if err != nil {
		return nil, err
	}

	rec, ok := reg.Instances[name]
	if !ok {
		return nil, errors.InstanceNotFound(name)
	}
	return rec, nil
}

// List returns all instances sorted by name.
func (s *Store) List() ([]Instance, error) {
	reg, err := s.Load()
	if err != nil {
		return nil, err
	}

	instances := make([]Instance, 0, len(reg.Instances))
	for name, rec := range reg.Instances {
		instances = append(instances, Instance{Name: name, Record: rec})
	}
	sort.Slice(instances, func(i, j int) bool {
		return instances[i].Name < instances[j].Name
	})

	return instances, nil
}

// Mutate applies fn to the current document and persists the result. Before
// the atomic rename the document on disk is re-read; if another writer bumped
// the revision in the meantime the mutation fails with a conflict error and
// nothing is written.
func (s *Store) Mutate(fn func(*Registry) error) error {
	reg, err := s.Load()
	if err != nil {
		return err
	}
	loadedRevision := reg.Revision

	if err := fn(reg); err != nil {
		return err
	}
	reg.Revision = loadedRevision + 1

	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}

	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create registry directory: %w", err)
	}

	tmpPath := fmt.Sprintf("%s.tmp.%d", s.path, os.Getpid())
	if err := s.fs.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write registry: %w", err)
	}

	// Optimistic concurrency check: fail if a concurrent writer moved the
	// revision since our read.
	current, err := s.Load()
	if err != nil {
		_ = s.fs.Remove(tmpPath)
		return err
	}
	if current.Revision != loadedRevision {
		_ = s.fs.Remove(tmpPath)
		return errors.RegistryConflict(loadedRevision, current.Revision)
	}

	if err := s.fs.Rename(tmpPath, s.path); err != nil {
		_ = s.fs.Remove(tmpPath)
		return fmt.Errorf("failed to persist registry: %w", err)
	}

	logging.Debug("registry persisted", "path", s.path, "revision", reg.Revision, "instances", len(reg.Instances))
	return nil
}

// Upsert inserts or replaces the record for an instance.
func (s *Store) Upsert(name string, rec *Record) error {
	return s.Mutate(func(reg *Registry) error {
		reg.Instances[name] = rec
		return nil
	})
}

// Delete removes the record for an instance. Deleting an unknown name fails.
func (s *Store) Delete(name string) error {
	return s.Mutate(func(reg *Registry) error {
		if _, ok := reg.Instances[name]; !ok {
			return errors.InstanceNotFound(name)
		}
		delete(reg.Instances, name)
		return nil
	})
}
