package compose

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Mock is an in-memory Surface for testing. It tracks container state per
// instance, records every call, and supports per-operation error injection.
type Mock struct {
	mu sync.Mutex

	// Containers tracks the state of mock containers by instance name.
	Containers map[string]*ContainerInfo

	// Errors maps operation names ("up", "stop", "down", ...) to injected errors.
	Errors map[string]error

	// Calls records all method calls for verification.
	Calls []MockCall

	// CopiedPaths records CopyFrom destinations so tests can stage files.
	CopiedPaths []string

	// CopyFixture, when non-empty, is written as a data file under each
	// CopyFrom destination to emulate the engine materializing files.
	CopyFixture string
}

// MockCall records one Surface method call.
type MockCall struct {
	Method   string
	Instance string
	Args     []string
}

// NewMock creates an empty mock surface.
func NewMock() *Mock {
	return &Mock{
		Containers: make(map[string]*ContainerInfo),
		Errors:     make(map[string]error),
	}
}

// SetState seeds the mock with a container in the given state.
func (m *Mock) SetState(name string, state State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	info := &ContainerInfo{Name: "fleet-" + name, State: state}
	if state == StateRunning {
		info.StartedAt = time.Now().Add(-time.Minute)
	}
	m.Containers[name] = info
}

// SetError injects an error for an operation.
func (m *Mock) SetError(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors[op] = err
}

// CallsFor returns the recorded calls for one method.
func (m *Mock) CallsFor(method string) []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	var calls []MockCall
	for _, c := range m.Calls {
		if c.Method == method {
			calls = append(calls, c)
		}
	}
	return calls
}

func (m *Mock) record(method, instance string, args ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, MockCall{Method: method, Instance: instance, Args: args})
	return m.Errors[method]
}

func (m *Mock) setStateLocked(name string, state State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	info, ok := m.Containers[name]
	if !ok {
		info = &ContainerInfo{Name: "fleet-" + name}
		m.Containers[name] = info
	}
	info.State = state
	if state == StateRunning && info.StartedAt.IsZero() {
		info.StartedAt = time.Now()
	}
}

func (m *Mock) Up(ctx context.Context, t Target) error {
	if err := m.record("up", t.Name); err != nil {
		return err
	}
	m.setStateLocked(t.Name, StateRunning)
	return nil
}

func (m *Mock) Start(ctx context.Context, t Target) error {
	if err := m.record("start", t.Name); err != nil {
		return err
	}
	m.setStateLocked(t.Name, StateRunning)
	return nil
}

func (m *Mock) Stop(ctx context.Context, t Target) error {
	if err := m.record("stop", t.Name); err != nil {
		return err
	}
	m.setStateLocked(t.Name, StateExited)
	return nil
}

func (m *Mock) Down(ctx context.Context, t Target, removeVolumes bool) error {
	op := "down"
	if removeVolumes {
		op = "down-volumes"
	}
	if err := m.record(op, t.Name); err != nil {
		return err
	}
	m.mu.Lock()
	delete(m.Containers, t.Name)
	m.mu.Unlock()
	return nil
}

func (m *Mock) Logs(ctx context.Context, t Target) error {
	return m.record("logs", t.Name)
}

func (m *Mock) Pull(ctx context.Context, t Target) error {
	return m.record("pull", t.Name)
}

func (m *Mock) Recreate(ctx context.Context, t Target) error {
	if err := m.record("recreate", t.Name); err != nil {
		return err
	}
	m.setStateLocked(t.Name, StateRunning)
	return nil
}

func (m *Mock) Status(ctx context.Context, t Target) (*ContainerInfo, error) {
	if err := m.record("status", t.Name); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if info, ok := m.Containers[t.Name]; ok {
		dup := *info
		return &dup, nil
	}
	return &ContainerInfo{Name: "fleet-" + t.Name, State: StateNotCreated}, nil
}

func (m *Mock) CopyFrom(ctx context.Context, t Target, containerPath, hostPath string) error {
	if err := m.record("copy-from", t.Name, containerPath, hostPath); err != nil {
		return err
	}
	m.mu.Lock()
	m.CopiedPaths = append(m.CopiedPaths, hostPath)
	fixture := m.CopyFixture
	m.mu.Unlock()

	if fixture != "" {
		if err := os.MkdirAll(hostPath, 0o755); err != nil {
			return err
		}
		return os.WriteFile(filepath.Join(hostPath, "data.json"), []byte(fixture), 0o644)
	}
	return nil
}
