package deploy

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/lanekit/fleetctl/internal/compose"
	"github.com/lanekit/fleetctl/internal/errors"
	"github.com/lanekit/fleetctl/internal/registry"
	"github.com/lanekit/fleetctl/internal/system"
)

func remoteTarget() compose.Target {
	return compose.Target{
		Name: "alpha",
		Dir:  "/opt/fleetctl/alpha",
		Record: &registry.Record{
			Port:    18789,
			SSHHost: "bots.example.net",
			SSHUser: "ops",
		},
	}
}

func TestValidateRemotePath(t *testing.T) {
	for _, path := range []string{"/opt/fleetctl/alpha", "/srv/bots/a-1", "/var/lib/x_y.z"} {
		if err := ValidateRemotePath(path); err != nil {
			t.Errorf("ValidateRemotePath(%q): %v", path, err)
		}
	}
	for _, path := range []string{"", "relative/path", "/opt/$(rm -rf)", "/opt/a b", "/;ls", "/opt/\nx"} {
		if err := ValidateRemotePath(path); err == nil {
			t.Errorf("ValidateRemotePath(%q) accepted", path)
		}
	}
}

func TestDeploy_SyncsThenStarts(t *testing.T) {
	m := system.NewMockExecutor()
	surface := compose.NewMock()
	d := NewDeployer(m, surface)

	if err := d.Deploy(context.Background(), remoteTarget(), "/var/lib/fleetctl/instances/alpha"); err != nil {
		t.Fatalf("Deploy: %v", err)
	}

	if len(m.Commands) != 2 {
		t.Fatalf("commands = %+v, want mkdir then rsync", m.Commands)
	}
	if m.Commands[0].Name != "ssh" || !strings.Contains(strings.Join(m.Commands[0].Args, " "), "mkdir -p /opt/fleetctl/alpha") {
		t.Errorf("first command = %+v, want remote mkdir", m.Commands[0])
	}
	if m.Commands[1].Name != "rsync" {
		t.Errorf("second command = %+v, want rsync", m.Commands[1])
	}
	if calls := surface.CallsFor("up"); len(calls) != 1 {
		t.Errorf("up calls = %d", len(calls))
	}
}

func TestDeploy_SyncFailureAbortsBeforeStart(t *testing.T) {
	m := system.NewMockExecutor()
	m.AddResponse("rsync", nil, fmt.Errorf("connection closed"))
	surface := compose.NewMock()
	d := NewDeployer(m, surface)

	err := d.Deploy(context.Background(), remoteTarget(), "/var/lib/fleetctl/instances/alpha")
	if err == nil {
		t.Fatal("expected sync failure")
	}
	if errors.GetExitCode(err) != errors.ExitSSHError {
		t.Errorf("exit code = %d", errors.GetExitCode(err))
	}
	if calls := surface.CallsFor("up"); len(calls) != 0 {
		t.Error("container started after failed sync")
	}
}

func TestDeploy_StartFailureIsDistinct(t *testing.T) {
	m := system.NewMockExecutor()
	surface := compose.NewMock()
	surface.SetError("up", fmt.Errorf("image build failed"))
	d := NewDeployer(m, surface)

	err := d.Deploy(context.Background(), remoteTarget(), "/var/lib/fleetctl/instances/alpha")
	if err == nil {
		t.Fatal("expected start failure")
	}
	if errors.GetExitCode(err) != errors.ExitRemoteStart {
		t.Errorf("exit code = %d, want synced-but-not-running error", errors.GetExitCode(err))
	}
}

func TestDeploy_RejectsLocalTarget(t *testing.T) {
	d := NewDeployer(system.NewMockExecutor(), compose.NewMock())
	local := compose.Target{Name: "alpha", Dir: "/var/lib/x", Record: &registry.Record{Port: 18789}}

	if err := d.Deploy(context.Background(), local, "/var/lib/x"); err == nil {
		t.Fatal("local target must be rejected")
	}
}

func TestDeploy_RejectsBadRemotePath(t *testing.T) {
	m := system.NewMockExecutor()
	d := NewDeployer(m, compose.NewMock())

	target := remoteTarget()
	target.Dir = "/opt/$(whoami)"

	if err := d.Deploy(context.Background(), target, "/var/lib/x"); err == nil {
		t.Fatal("unsafe remote path must be rejected")
	}
	if len(m.Commands) != 0 {
		t.Error("no remote command may run for a rejected path")
	}
}
