// Package lifecycle drives instance start, stop, update and log operations
// across the fleet.
package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/lanekit/fleetctl/internal/audit"
	"github.com/lanekit/fleetctl/internal/compose"
	"github.com/lanekit/fleetctl/internal/config"
	"github.com/lanekit/fleetctl/internal/errors"
	"github.com/lanekit/fleetctl/internal/logging"
	"github.com/lanekit/fleetctl/internal/registry"
)

// Outcome records the result of one operation against one instance.
type Outcome struct {
	Instance string `json:"instance"`
	Err      error  `json:"-"`
}

// Failed reports whether any outcome carries an error.
func Failed(outcomes []Outcome) bool {
	for _, o := range outcomes {
		if o.Err != nil {
			return true
		}
	}
	return false
}

// Controller runs lifecycle operations. Batch variants walk the registry
// sequentially and keep going past failures so one broken instance cannot
// shadow the rest.
type Controller struct {
	store      *registry.Store
	surface    compose.Surface
	paths      *config.Paths
	remoteRoot string
	auditLog   *audit.Logger
}

// NewController creates a Controller. The audit logger may be nil.
func NewController(store *registry.Store, surface compose.Surface, paths *config.Paths, remoteRoot string, auditLog *audit.Logger) *Controller {
	return &Controller{
		store:      store,
		surface:    surface,
		paths:      paths,
		remoteRoot: remoteRoot,
		auditLog:   auditLog,
	}
}

func (c *Controller) target(name string) (compose.Target, error) {
	rec, err := c.store.Get(name)
	if err != nil {
		return compose.Target{}, err
	}
	return compose.NewTarget(name, rec, c.paths, c.remoteRoot)
}

// Start brings an instance's container up.
func (c *Controller) Start(ctx context.Context, name string) error {
	t, err := c.target(name)
	if err != nil {
		return err
	}
	if err := c.surface.Start(ctx, t); err != nil {
		return errors.ComposeFailed("start", err)
	}
	c.logEvent(audit.EventStart, name, "")
	return nil
}

// Stop halts an instance's container. The container and its volumes are
// kept so the instance can be started again.
func (c *Controller) Stop(ctx context.Context, name string) error {
	t, err := c.target(name)
	if err != nil {
		return err
	}
	if err := c.surface.Stop(ctx, t); err != nil {
		return errors.ComposeFailed("stop", err)
	}
	c.logEvent(audit.EventStop, name, "")
	return nil
}

// Update pulls the latest image for an instance and recreates its container.
func (c *Controller) Update(ctx context.Context, name string) error {
	t, err := c.target(name)
	if err != nil {
		return err
	}
	if err := c.surface.Pull(ctx, t); err != nil {
		return errors.ComposeFailed("pull", err)
	}
	if err := c.surface.Recreate(ctx, t); err != nil {
		return errors.ComposeFailed("recreate", err)
	}
	c.logEvent(audit.EventUpdate, name, "")
	return nil
}

// Logs follows an instance's container logs until interrupted.
func (c *Controller) Logs(ctx context.Context, name string) error {
	t, err := c.target(name)
	if err != nil {
		return err
	}
	if err := c.surface.Logs(ctx, t); err != nil {
		return errors.ComposeFailed("logs", err)
	}
	return nil
}

// StartAll starts every registered instance in name order.
func (c *Controller) StartAll(ctx context.Context) ([]Outcome, error) {
	return c.each(ctx, "start", c.Start)
}

// StopAll stops every registered instance in name order.
func (c *Controller) StopAll(ctx context.Context) ([]Outcome, error) {
	return c.each(ctx, "stop", c.Stop)
}

// UpdateAll updates every registered instance in name order.
func (c *Controller) UpdateAll(ctx context.Context) ([]Outcome, error) {
	return c.each(ctx, "update", c.Update)
}

func (c *Controller) each(ctx context.Context, op string, fn func(context.Context, string) error) ([]Outcome, error) {
	instances, err := c.store.List()
	if err != nil {
		return nil, err
	}

	outcomes := make([]Outcome, 0, len(instances))
	for _, inst := range instances {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}

		err := fn(ctx, inst.Name)
		if err != nil {
			logging.Warn("batch operation failed", "op", op, "instance", inst.Name, "error", err)
		}
		outcomes = append(outcomes, Outcome{Instance: inst.Name, Err: err})
	}
	return outcomes, nil
}

func (c *Controller) logEvent(eventType audit.EventType, name, details string) {
	if c.auditLog == nil {
		return
	}
	if err := c.auditLog.LogEvent(eventType, name, details); err != nil {
		logging.Debug("audit log write failed", "instance", name, "error", err)
	}
}

// FormatUptime renders a container uptime the way ps output shows it.
func FormatUptime(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
	default:
		days := int(d.Hours()) / 24
		return fmt.Sprintf("%dd%dh", days, int(d.Hours())%24)
	}
}
