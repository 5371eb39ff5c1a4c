package vm

import (
	"context"
	"errors"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/storagelab/storagelab/internal/config"
	"github.com/storagelab/storagelab/internal/logger"
	"github.com/storagelab/storagelab/internal/testutil"
)

// fakeGuest is a scriptable Guest for controller tests.
type fakeGuest struct {
	reachable bool
	readyErr  error
	execErr   error
	onExec    func(command string)
	execCmds  []string
}

func (f *fakeGuest) Check() bool { return f.reachable }

func (f *fakeGuest) WaitReady(ctx context.Context, timeout time.Duration) error {
	return f.readyErr
}

func (f *fakeGuest) Exec(ctx context.Context, command string) (string, int, error) {
	f.execCmds = append(f.execCmds, command)
	if f.onExec != nil {
		f.onExec(command)
	}
	return "", 0, f.execErr
}

func newTestController(t *testing.T, paths *config.Paths, g Guest) *Controller {
	t.Helper()

	c := New(testutil.TestConfig(t), paths, g, logger.Discard())
	c.gracefulWindow = 500 * time.Millisecond
	c.gracefulInterval = 10 * time.Millisecond
	c.quitWindow = 200 * time.Millisecond
	c.termWindow = 200 * time.Millisecond
	c.killWindow = 500 * time.Millisecond
	return c
}

func TestStartRefusesWithoutArtifacts(t *testing.T) {
	paths := testutil.TestPaths(t)
	c := newTestController(t, paths, &fakeGuest{})
	c.lookupBinary = func() (string, error) {
		t.Fatal("binary lookup reached despite missing artifacts")
		return "", nil
	}

	err := c.Start(context.Background(), false)
	if !errors.Is(err, ErrSetupIncomplete) {
		t.Errorf("Start() error = %v, want ErrSetupIncomplete", err)
	}
	if _, statErr := os.Stat(paths.PIDFile()); !os.IsNotExist(statErr) {
		t.Error("failed precondition check left a pid record behind")
	}
}

func TestStartIdempotentWhenRunning(t *testing.T) {
	paths := testutil.TestPaths(t)
	testutil.TouchArtifacts(t, paths)
	pid := testutil.SpawnSleeper(t)
	testutil.WritePIDRecord(t, paths, testutil.PIDString(pid))

	c := newTestController(t, paths, &fakeGuest{reachable: true})
	launched := false
	c.runCommand = func(ctx context.Context, name string, args []string) error {
		launched = true
		return nil
	}

	if err := c.Start(context.Background(), false); err != nil {
		t.Fatalf("Start() on running VM failed: %v", err)
	}
	if launched {
		t.Error("Start() relaunched an already-running VM")
	}
}

func TestStartLaunchesAndWaitsForGuest(t *testing.T) {
	paths := testutil.TestPaths(t)
	testutil.TouchArtifacts(t, paths)
	pid := testutil.SpawnSleeper(t)

	c := newTestController(t, paths, &fakeGuest{reachable: true})
	c.lookupBinary = func() (string, error) { return "/usr/bin/qemu-system-x86_64", nil }
	c.runCommand = func(ctx context.Context, name string, args []string) error {
		// Stand in for QEMU's daemonize handshake: the pid record exists
		// by the time the launch command returns.
		testutil.WritePIDRecord(t, paths, testutil.PIDString(pid))
		return nil
	}

	if err := c.Start(context.Background(), false); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if !c.IsRunning() {
		t.Error("IsRunning() = false after successful Start")
	}
}

func TestStartWrapsLaunchFailure(t *testing.T) {
	paths := testutil.TestPaths(t)
	testutil.TouchArtifacts(t, paths)

	c := newTestController(t, paths, &fakeGuest{})
	c.lookupBinary = func() (string, error) { return "/usr/bin/qemu-system-x86_64", nil }
	c.runCommand = func(ctx context.Context, name string, args []string) error {
		return errors.New("exit status 1")
	}

	err := c.Start(context.Background(), false)
	if !errors.Is(err, ErrLaunchFailed) {
		t.Errorf("Start() error = %v, want ErrLaunchFailed", err)
	}
}

func TestStartDetectsMissingProcess(t *testing.T) {
	paths := testutil.TestPaths(t)
	testutil.TouchArtifacts(t, paths)

	c := newTestController(t, paths, &fakeGuest{})
	c.lookupBinary = func() (string, error) { return "/usr/bin/qemu-system-x86_64", nil }
	c.runCommand = func(ctx context.Context, name string, args []string) error {
		// Launch "succeeds" but no pid record ever appears.
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	err := c.Start(ctx, false)
	if !errors.Is(err, ErrProcessNotStarted) {
		t.Errorf("Start() error = %v, want ErrProcessNotStarted", err)
	}
}

func TestStartLeavesVMRunningOnUnreachableGuest(t *testing.T) {
	paths := testutil.TestPaths(t)
	testutil.TouchArtifacts(t, paths)
	pid := testutil.SpawnSleeper(t)

	g := &fakeGuest{readyErr: errors.New("wait for guest: timed out")}
	c := newTestController(t, paths, g)
	c.lookupBinary = func() (string, error) { return "/usr/bin/qemu-system-x86_64", nil }
	c.runCommand = func(ctx context.Context, name string, args []string) error {
		testutil.WritePIDRecord(t, paths, testutil.PIDString(pid))
		return nil
	}

	err := c.Start(context.Background(), false)
	if !errors.Is(err, ErrGuestUnreachable) {
		t.Fatalf("Start() error = %v, want ErrGuestUnreachable", err)
	}
	if !c.IsRunning() {
		t.Error("VM was torn down after guest readiness failure; it should be left for inspection")
	}
}

func TestStopWhenNotRunning(t *testing.T) {
	paths := testutil.TestPaths(t)
	c := newTestController(t, paths, &fakeGuest{})

	method, err := c.Stop(context.Background())
	if err != nil {
		t.Fatalf("Stop() on stopped VM failed: %v", err)
	}
	if method != ShutdownNone {
		t.Errorf("Stop() method = %v, want ShutdownNone", method)
	}
}

func TestStopGracefulViaGuest(t *testing.T) {
	paths := testutil.TestPaths(t)
	pid := testutil.SpawnSleeper(t)
	testutil.WritePIDRecord(t, paths, testutil.PIDString(pid))

	g := &fakeGuest{reachable: true}
	g.onExec = func(command string) {
		// The guest "powers off": the host process dies shortly after.
		_ = syscall.Kill(pid, syscall.SIGKILL)
	}

	c := newTestController(t, paths, g)
	method, err := c.Stop(context.Background())
	if err != nil {
		t.Fatalf("Stop() failed: %v", err)
	}
	if method != ShutdownGraceful {
		t.Errorf("Stop() method = %v, want ShutdownGraceful", method)
	}
	if len(g.execCmds) != 1 || g.execCmds[0] != "sudo poweroff" {
		t.Errorf("guest commands = %v, want [sudo poweroff]", g.execCmds)
	}
	if _, statErr := os.Stat(paths.PIDFile()); !os.IsNotExist(statErr) {
		t.Error("pid record not removed after stop")
	}
}

func TestStopEscalatesToSignal(t *testing.T) {
	paths := testutil.TestPaths(t)
	pid := testutil.SpawnSleeper(t)
	testutil.WritePIDRecord(t, paths, testutil.PIDString(pid))

	// Guest unreachable, no management socket: straight to signals.
	c := newTestController(t, paths, &fakeGuest{reachable: false})

	var sent []syscall.Signal
	c.sendSignal = func(p int, sig syscall.Signal) error {
		sent = append(sent, sig)
		return syscall.Kill(p, sig)
	}

	method, err := c.Stop(context.Background())
	if err != nil {
		t.Fatalf("Stop() failed: %v", err)
	}
	if method != ShutdownSignal {
		t.Errorf("Stop() method = %v, want ShutdownSignal", method)
	}
	if len(sent) != 1 || sent[0] != syscall.SIGTERM {
		t.Errorf("signals sent = %v, want [SIGTERM]", sent)
	}
}

func TestStopEscalatesToKill(t *testing.T) {
	paths := testutil.TestPaths(t)
	pid := testutil.SpawnSleeper(t)
	testutil.WritePIDRecord(t, paths, testutil.PIDString(pid))

	c := newTestController(t, paths, &fakeGuest{reachable: false})

	var sent []syscall.Signal
	c.sendSignal = func(p int, sig syscall.Signal) error {
		sent = append(sent, sig)
		if sig == syscall.SIGTERM {
			// Process ignores SIGTERM; only SIGKILL lands.
			return nil
		}
		return syscall.Kill(p, sig)
	}

	method, err := c.Stop(context.Background())
	if err != nil {
		t.Fatalf("Stop() failed: %v", err)
	}
	if method != ShutdownKilled {
		t.Errorf("Stop() method = %v, want ShutdownKilled", method)
	}
	want := []syscall.Signal{syscall.SIGTERM, syscall.SIGKILL}
	if len(sent) != 2 || sent[0] != want[0] || sent[1] != want[1] {
		t.Errorf("signals sent = %v, want %v", sent, want)
	}
	if c.IsRunning() {
		t.Error("VM still reported running after SIGKILL")
	}
}

func TestStopIsIdempotent(t *testing.T) {
	paths := testutil.TestPaths(t)
	pid := testutil.SpawnSleeper(t)
	testutil.WritePIDRecord(t, paths, testutil.PIDString(pid))

	c := newTestController(t, paths, &fakeGuest{reachable: false})
	if _, err := c.Stop(context.Background()); err != nil {
		t.Fatalf("first Stop() failed: %v", err)
	}

	method, err := c.Stop(context.Background())
	if err != nil {
		t.Fatalf("second Stop() failed: %v", err)
	}
	if method != ShutdownNone {
		t.Errorf("second Stop() method = %v, want ShutdownNone", method)
	}
}

func TestStatusComposition(t *testing.T) {
	paths := testutil.TestPaths(t)

	t.Run("stopped", func(t *testing.T) {
		c := newTestController(t, paths, &fakeGuest{reachable: true})
		snap := c.Status()
		if snap.Running || snap.SSHReachable {
			t.Errorf("Status() = %+v, want stopped and unreachable", snap)
		}
	})

	t.Run("running reachable", func(t *testing.T) {
		pid := testutil.SpawnSleeper(t)
		testutil.WritePIDRecord(t, paths, testutil.PIDString(pid))

		c := newTestController(t, paths, &fakeGuest{reachable: true})
		snap := c.Status()
		if !snap.Running || snap.PID != pid || !snap.SSHReachable {
			t.Errorf("Status() = %+v, want running pid %d reachable", snap, pid)
		}
	})
}
