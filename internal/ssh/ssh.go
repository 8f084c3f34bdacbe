// Package ssh provides remote execution, file synchronization, and port
// forwarding for instances placed on remote hosts.
package ssh

import (
	"context"
	"fmt"

	shellquote "github.com/kballard/go-shellquote"

	"github.com/lanekit/fleetctl/internal/system"
)

// Default SSH configuration values.
const (
	DefaultConnectTimeout = 5
)

// Options configures SSH connection parameters.
type Options struct {
	Destination    string // user@host or host
	BatchMode      bool
	ConnectTimeout int
}

// DefaultOptions returns Options for non-interactive fleet operations.
func DefaultOptions(destination string) Options {
	return Options{
		Destination:    destination,
		BatchMode:      true,
		ConnectTimeout: DefaultConnectTimeout,
	}
}

// BaseArgs returns the common SSH arguments (options only, no destination).
func (o Options) BaseArgs() []string {
	var args []string

	if o.BatchMode {
		args = append(args, "-o", "BatchMode=yes")
	}
	if o.ConnectTimeout > 0 {
		args = append(args, "-o", fmt.Sprintf("ConnectTimeout=%d", o.ConnectTimeout))
	}

	return args
}

// BuildArgs returns complete SSH arguments for executing a remote command.
// The remote command is passed as an argument vector and joined with
// shellquote, never interpolated into a format string.
func (o Options) BuildArgs(command ...string) []string {
	args := o.BaseArgs()
	args = append(args, o.Destination)
	if len(command) > 0 {
		args = append(args, shellquote.Join(command...))
	}
	return args
}

// Client executes remote operations through a CommandExecutor.
type Client struct {
	exec system.CommandExecutor
}

// NewClient creates a Client backed by the given executor.
func NewClient(executor system.CommandExecutor) *Client {
	return &Client{exec: executor}
}

// Exec runs a command on the remote host and returns its combined output.
func (c *Client) Exec(ctx context.Context, destination string, command ...string) ([]byte, error) {
	opts := DefaultOptions(destination)
	return c.exec.Execute(ctx, "ssh", opts.BuildArgs(command...)...)
}

// MkdirAll creates a directory (and parents) on the remote host.
func (c *Client) MkdirAll(ctx context.Context, destination, path string) error {
	if _, err := c.Exec(ctx, destination, "mkdir", "-p", path); err != nil {
		return fmt.Errorf("remote mkdir %s failed: %w", path, err)
	}
	return nil
}

// Sync pushes a local directory tree to a remote path. The synchronization is
// one-way and local-authoritative: remote files not present locally are
// deleted.
func (c *Client) Sync(ctx context.Context, localDir, destination, remotePath string) error {
	args := []string{
		"-az", "--delete",
		"-e", "ssh -o BatchMode=yes -o ConnectTimeout=" + fmt.Sprintf("%d", DefaultConnectTimeout),
		localDir + "/",
		destination + ":" + remotePath + "/",
	}

	if out, err := c.exec.Execute(ctx, "rsync", args...); err != nil {
		return fmt.Errorf("rsync to %s:%s failed: %s: %w", destination, remotePath, string(out), err)
	}
	return nil
}
