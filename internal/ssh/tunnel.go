package ssh

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/lanekit/fleetctl/internal/logging"
	"github.com/lanekit/fleetctl/internal/system"
)

// Tunnel is an ephemeral local port-forward to a remote instance. It is
// opened for a single probe and closed unconditionally afterwards.
type Tunnel struct {
	LocalPort   int
	destination string
	controlPath string
	exec        system.CommandExecutor
}

// freeLocalPort asks the kernel for an unused localhost port.
func freeLocalPort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, err
	}
	port := l.Addr().(*net.TCPAddr).Port
	_ = l.Close()
	return port, nil
}

// OpenTunnel forwards a fresh local port to remotePort on the destination
// host. The control socket name includes the pid and a nanosecond nonce so
// concurrent invocations never collide.
func OpenTunnel(ctx context.Context, executor system.CommandExecutor, destination string, remotePort int) (*Tunnel, error) {
	localPort, err := freeLocalPort()
	if err != nil {
		return nil, fmt.Errorf("no free local port for tunnel: %w", err)
	}

	controlPath := filepath.Join(os.TempDir(),
		fmt.Sprintf("fleetctl-tunnel-%d-%d.sock", os.Getpid(), time.Now().UnixNano()))

	opts := DefaultOptions(destination)
	args := opts.BaseArgs()
	args = append(args,
		"-f", "-N",
		"-M", "-S", controlPath,
		"-o", "ExitOnForwardFailure=yes",
		"-L", fmt.Sprintf("127.0.0.1:%d:localhost:%d", localPort, remotePort),
		destination,
	)

	if out, err := executor.Execute(ctx, "ssh", args...); err != nil {
		return nil, fmt.Errorf("tunnel to %s failed: %s: %w", destination, string(out), err)
	}

	logging.Debug("tunnel opened", "destination", destination, "localPort", localPort, "remotePort", remotePort)

	return &Tunnel{
		LocalPort:   localPort,
		destination: destination,
		controlPath: controlPath,
		exec:        executor,
	}, nil
}

// Close tears the tunnel down via its control socket. Safe to call exactly
// once from a defer; errors are logged, not returned, since the probe result
// must not depend on teardown.
func (t *Tunnel) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if out, err := t.exec.Execute(ctx, "ssh", "-S", t.controlPath, "-O", "exit", t.destination); err != nil {
		logging.Warn("tunnel close failed", "destination", t.destination, "output", string(out), "error", err)
	}
}
