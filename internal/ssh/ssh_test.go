package ssh

import (
	"context"
	"strings"
	"testing"

	"github.com/lanekit/fleetctl/internal/system"
)

func TestOptions_BuildArgs(t *testing.T) {
	opts := DefaultOptions("ops@bots.example.net")
	args := opts.BuildArgs("mkdir", "-p", "/opt/fleetctl/alpha")

	joined := strings.Join(args, " ")
	if !strings.Contains(joined, "BatchMode=yes") {
		t.Errorf("missing batch mode: %v", args)
	}
	if !strings.Contains(joined, "ConnectTimeout=5") {
		t.Errorf("missing connect timeout: %v", args)
	}

	// The remote command must be a single shell-quoted argument after the
	// destination, not interpolated text.
	last := args[len(args)-1]
	if last != "mkdir -p /opt/fleetctl/alpha" {
		t.Errorf("remote command = %q", last)
	}
	if args[len(args)-2] != "ops@bots.example.net" {
		t.Errorf("destination misplaced: %v", args)
	}
}

func TestOptions_BuildArgs_QuotesSpecials(t *testing.T) {
	opts := DefaultOptions("host")
	args := opts.BuildArgs("echo", "two words", "a;b")

	last := args[len(args)-1]
	if !strings.Contains(last, "'two words'") {
		t.Errorf("argument with space not quoted: %q", last)
	}
	if !strings.Contains(last, "'a;b'") {
		t.Errorf("argument with separator not quoted: %q", last)
	}
}

func TestClient_Exec(t *testing.T) {
	m := system.NewMockExecutor()
	c := NewClient(m)

	_, err := c.Exec(context.Background(), "host", "docker", "compose", "ps")
	if err != nil {
		t.Fatalf("Exec: %v", err)
	}

	last, _ := m.LastCommand()
	if last.Name != "ssh" {
		t.Errorf("command = %q, want ssh", last.Name)
	}
}

func TestClient_Sync(t *testing.T) {
	m := system.NewMockExecutor()
	c := NewClient(m)

	err := c.Sync(context.Background(), "/tmp/fleet/instances/alpha", "ops@host", "/opt/fleetctl/alpha")
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}

	last, _ := m.LastCommand()
	if last.Name != "rsync" {
		t.Fatalf("command = %q, want rsync", last.Name)
	}
	joined := strings.Join(last.Args, " ")
	if !strings.Contains(joined, "--delete") {
		t.Errorf("sync is not local-authoritative: %v", last.Args)
	}
	if !strings.Contains(joined, "/tmp/fleet/instances/alpha/ ops@host:/opt/fleetctl/alpha/") {
		t.Errorf("unexpected rsync endpoints: %v", last.Args)
	}
}

func TestOpenTunnel_CloseUsesControlSocket(t *testing.T) {
	m := system.NewMockExecutor()

	tunnel, err := OpenTunnel(context.Background(), m, "ops@host", 18790)
	if err != nil {
		t.Fatalf("OpenTunnel: %v", err)
	}
	if tunnel.LocalPort == 0 {
		t.Error("tunnel has no local port")
	}

	openCmd := m.Commands[0]
	openJoined := strings.Join(openCmd.Args, " ")
	if !strings.Contains(openJoined, "-L ") && !strings.Contains(openJoined, "-L") {
		t.Errorf("missing forward flag: %v", openCmd.Args)
	}
	if !strings.Contains(openJoined, "ExitOnForwardFailure=yes") {
		t.Errorf("missing ExitOnForwardFailure: %v", openCmd.Args)
	}

	tunnel.Close()

	closeCmd, _ := m.LastCommand()
	joined := strings.Join(closeCmd.Args, " ")
	if !strings.Contains(joined, "-O exit") {
		t.Errorf("close did not use control socket exit: %v", closeCmd.Args)
	}
	if !strings.Contains(joined, tunnel.controlPath) {
		t.Errorf("close used a different control socket: %v", closeCmd.Args)
	}
}

func TestOpenTunnel_UniqueControlSockets(t *testing.T) {
	m := system.NewMockExecutor()

	t1, err := OpenTunnel(context.Background(), m, "host", 18790)
	if err != nil {
		t.Fatal(err)
	}
	t2, err := OpenTunnel(context.Background(), m, "host", 18790)
	if err != nil {
		t.Fatal(err)
	}

	if t1.controlPath == t2.controlPath {
		t.Error("concurrent tunnels share a control socket")
	}
}
