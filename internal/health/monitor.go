package health

import (
	"context"
	"time"

	"github.com/lanekit/fleetctl/internal/audit"
	"github.com/lanekit/fleetctl/internal/compose"
	"github.com/lanekit/fleetctl/internal/config"
	"github.com/lanekit/fleetctl/internal/logging"
	"github.com/lanekit/fleetctl/internal/registry"
)

// Report aggregates one monitoring pass over the fleet.
type Report struct {
	CheckedAt time.Time `json:"checkedAt"`
	Results   []Result  `json:"results"`
	Skipped   []string  `json:"skipped,omitempty"` // instances not currently running
	Pass      bool      `json:"pass"`
}

// Monitor probes every running instance and aggregates the results.
type Monitor struct {
	store      *registry.Store
	surface    compose.Surface
	prober     *Prober
	paths      *config.Paths
	remoteRoot string
	auditLog   *audit.Logger
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithAuditLogger records a health event per probed instance.
func WithAuditLogger(logger *audit.Logger) Option {
	return func(m *Monitor) {
		m.auditLog = logger
	}
}

// NewMonitor creates a Monitor.
func NewMonitor(store *registry.Store, surface compose.Surface, prober *Prober, paths *config.Paths, remoteRoot string, opts ...Option) *Monitor {
	m := &Monitor{
		store:      store,
		surface:    surface,
		prober:     prober,
		paths:      paths,
		remoteRoot: remoteRoot,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Check runs one monitoring pass. Only instances observed running are
// probed; the rest are reported as skipped. The pass flag is the conjunction
// of all probed results.
func (m *Monitor) Check(ctx context.Context) (*Report, error) {
	instances, err := m.store.List()
	if err != nil {
		return nil, err
	}

	report := &Report{
		CheckedAt: time.Now().UTC(),
		Pass:      true,
	}

	for _, inst := range instances {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}

		target, err := compose.NewTarget(inst.Name, inst.Record, m.paths, m.remoteRoot)
		if err != nil {
			return nil, err
		}

		info, err := m.surface.Status(ctx, target)
		if err != nil || !info.Running() {
			logging.Debug("monitor skipping instance", "instance", inst.Name, "error", err)
			report.Skipped = append(report.Skipped, inst.Name)
			continue
		}

		result := m.prober.Probe(ctx, target)
		report.Results = append(report.Results, result)
		if !result.Healthy() {
			report.Pass = false
		}

		if m.auditLog != nil {
			_ = m.auditLog.LogEvent(audit.EventHealth, inst.Name, string(result.Status))
		}
	}

	return report, nil
}
