// Package health probes instance health endpoints and aggregates fleet-wide
// results.
package health

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/lanekit/fleetctl/internal/compose"
	"github.com/lanekit/fleetctl/internal/logging"
	"github.com/lanekit/fleetctl/internal/ssh"
	"github.com/lanekit/fleetctl/internal/system"
)

// Status classifies one probe outcome.
type Status string

const (
	// StatusHealthy means the endpoint answered HTTP 200.
	StatusHealthy Status = "healthy"

	// StatusUnhealthy means the endpoint answered with any other code.
	StatusUnhealthy Status = "unhealthy"

	// StatusUnreachable is the sentinel for no response at all (timeout,
	// refused connection, failed tunnel). It is a result, not an error.
	StatusUnreachable Status = "unreachable"
)

// ProbeTimeout bounds one probe end to end.
const ProbeTimeout = 5 * time.Second

// Result is the outcome of probing one instance.
type Result struct {
	Instance string        `json:"instance"`
	Status   Status        `json:"status"`
	Code     int           `json:"code,omitempty"` // HTTP status code, 0 when unreachable
	Latency  time.Duration `json:"latencyNs"`
	Detail   string        `json:"detail,omitempty"` // condition behind an unreachable result
}

// Healthy reports whether the probe saw exactly HTTP 200.
func (r Result) Healthy() bool {
	return r.Status == StatusHealthy
}

// Prober issues bounded /health requests, tunneling to remote instances.
type Prober struct {
	client *http.Client
	exec   system.CommandExecutor
}

// NewProber creates a Prober using the given executor for tunnels.
func NewProber(executor system.CommandExecutor) *Prober {
	return &Prober{
		client: &http.Client{Timeout: ProbeTimeout},
		exec:   executor,
	}
}

// Probe checks one instance. Local instances are probed on
// localhost:<port>; remote ones through an ephemeral SSH tunnel that is
// closed whether or not the probe succeeds.
func (p *Prober) Probe(ctx context.Context, t compose.Target) Result {
	result := Result{Instance: t.Name}

	host := "localhost"
	if t.Record.Host != "" {
		host = t.Record.Host
	}
	port := t.Record.Port

	if t.Record.Remote() {
		tunnel, err := ssh.OpenTunnel(ctx, p.exec, t.Record.SSHDestination(), t.Record.Port)
		if err != nil {
			result.Status = StatusUnreachable
			result.Detail = err.Error()
			return result
		}
		defer tunnel.Close()

		host = "127.0.0.1"
		port = tunnel.LocalPort
	}

	url := fmt.Sprintf("http://%s:%d/health", host, port)
	logging.Debug("probing", "instance", t.Name, "url", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		result.Status = StatusUnreachable
		result.Detail = err.Error()
		return result
	}

	start := time.Now()
	resp, err := p.client.Do(req)
	result.Latency = time.Since(start)
	if err != nil {
		result.Status = StatusUnreachable
		result.Detail = err.Error()
		return result
	}
	defer resp.Body.Close()

	result.Code = resp.StatusCode
	if resp.StatusCode == http.StatusOK {
		result.Status = StatusHealthy
	} else {
		result.Status = StatusUnhealthy
	}

	return result
}
