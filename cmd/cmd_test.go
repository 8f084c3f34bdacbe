package cmd

import (
	"os"
	"testing"

	"github.com/lanekit/fleetctl/internal/compose"
	"github.com/lanekit/fleetctl/internal/errors"
	"github.com/lanekit/fleetctl/internal/testutil"
)

func execute(t *testing.T, args ...string) error {
	t.Helper()

	// Flag values persist between Execute calls; reset the ones tests touch.
	createPort = 0
	createSSHHost = ""
	createSSHUser = ""
	createRemotePath = ""
	createChannels = ""
	destroyForce = false
	destroyArchive = false

	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)
	return rootCmd.Execute()
}

func TestCreateAndStart(t *testing.T) {
	env := testutil.NewTestEnv(t)

	if err := execute(t, "create", "alpha"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if !env.InstanceExists("alpha") {
		t.Fatal("alpha not registered")
	}
	if _, err := os.Stat(env.InstanceDir("alpha")); err != nil {
		t.Fatalf("instance dir: %v", err)
	}

	if err := execute(t, "start", "alpha"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if env.Surface.Containers["alpha"].State != compose.StateRunning {
		t.Error("alpha not running after start")
	}
}

func TestCreateDuplicateFails(t *testing.T) {
	testutil.NewTestEnv(t)

	if err := execute(t, "create", "alpha"); err != nil {
		t.Fatal(err)
	}
	err := execute(t, "create", "alpha")
	if err == nil {
		t.Fatal("duplicate create accepted")
	}
	if errors.GetExitCode(err) != errors.ExitConflict {
		t.Errorf("exit code = %d", errors.GetExitCode(err))
	}
}

func TestCreateExplicitPort(t *testing.T) {
	env := testutil.NewTestEnv(t)

	if err := execute(t, "create", "alpha", "--port", "19000"); err != nil {
		t.Fatal(err)
	}
	rec, err := env.Store.Get("alpha")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Port != 19000 {
		t.Errorf("port = %d", rec.Port)
	}
}

func TestStopAllContinuesPastFailures(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.AddInstance("alpha", 18789)
	env.AddInstance("beta", 18790)
	env.Surface.SetState("alpha", compose.StateRunning)
	env.Surface.SetState("beta", compose.StateRunning)

	if err := execute(t, "stop"); err != nil {
		t.Fatalf("stop all: %v", err)
	}
	if calls := env.Surface.CallsFor("stop"); len(calls) != 2 {
		t.Errorf("stop calls = %d", len(calls))
	}
}

func TestStartUnknownInstance(t *testing.T) {
	testutil.NewTestEnv(t)

	err := execute(t, "start", "ghost")
	if err == nil {
		t.Fatal("unknown instance accepted")
	}
	if errors.GetExitCode(err) != errors.ExitInstanceNotFound {
		t.Errorf("exit code = %d", errors.GetExitCode(err))
	}
}

func TestDestroyForce(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.AddInstance("alpha", 18789)
	env.Surface.SetState("alpha", compose.StateRunning)

	if err := execute(t, "destroy", "alpha", "--force"); err != nil {
		t.Fatalf("destroy: %v", err)
	}
	if env.InstanceExists("alpha") {
		t.Error("alpha still registered")
	}
	if _, err := os.Stat(env.InstanceDir("alpha")); !os.IsNotExist(err) {
		t.Error("instance dir still present")
	}
}

func TestDestroyDeclinedLeavesStateUntouched(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.AddInstance("alpha", 18789)
	env.Surface.SetState("alpha", compose.StateRunning)

	orig := confirmDestroy
	confirmDestroy = func(instance string, details []string) (bool, error) {
		return false, nil
	}
	defer func() { confirmDestroy = orig }()

	if err := execute(t, "destroy", "alpha"); err != nil {
		t.Fatalf("declined destroy must not error: %v", err)
	}
	if !env.InstanceExists("alpha") {
		t.Error("alpha unregistered despite declined prompt")
	}
	if _, err := os.Stat(env.InstanceDir("alpha")); err != nil {
		t.Error("instance dir removed despite declined prompt")
	}
	if calls := env.Surface.CallsFor("down-volumes"); len(calls) != 0 {
		t.Error("container removed despite declined prompt")
	}
}

func TestSnapshotCommand(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.AddInstance("alpha", 18789)
	env.Surface.SetState("alpha", compose.StateRunning)
	env.Surface.CopyFixture = "{}"

	if err := execute(t, "snapshot", "alpha"); err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	entries, err := os.ReadDir(env.Paths.SnapshotsDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("snapshots = %d", len(entries))
	}
}

func TestPsEmpty(t *testing.T) {
	testutil.NewTestEnv(t)

	if err := execute(t, "ps"); err != nil {
		t.Fatalf("ps: %v", err)
	}
}

func TestStatusCommand(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.AddInstance("alpha", 18789)
	env.Surface.SetState("alpha", compose.StateRunning)

	if err := execute(t, "status", "alpha"); err != nil {
		t.Fatalf("status: %v", err)
	}
}

func TestUpdateCommand(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.AddInstance("alpha", 18789)
	env.Surface.SetState("alpha", compose.StateRunning)

	if err := execute(t, "update", "alpha"); err != nil {
		t.Fatalf("update: %v", err)
	}
	if calls := env.Surface.CallsFor("pull"); len(calls) != 1 {
		t.Error("pull not called")
	}
	if calls := env.Surface.CallsFor("recreate"); len(calls) != 1 {
		t.Error("recreate not called")
	}
}
