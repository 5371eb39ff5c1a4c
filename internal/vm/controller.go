// Package vm supervises the lifecycle of the single QEMU process backing one
// lab session: start with readiness wait, liveness via the pid record, and an
// escalating shutdown protocol that always terminates the process.
package vm

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/storagelab/storagelab/internal/config"
)

// Guest is the transport surface the controller depends on. Implemented by
// guest.Client; faked in tests.
type Guest interface {
	// Check reports whether the guest executes commands over SSH right now.
	Check() bool

	// WaitReady blocks until Check succeeds, the timeout elapses, or ctx is
	// canceled.
	WaitReady(ctx context.Context, timeout time.Duration) error

	// Exec runs a command in the guest, returning combined output and the
	// remote exit status.
	Exec(ctx context.Context, command string) (string, int, error)
}

// Snapshot is a point-in-time view of the session, composed from the pid
// record and a transport probe. Pure read, no mutation.
type Snapshot struct {
	Running      bool
	PID          int
	SSHReachable bool
}

// Shutdown escalation windows. Each stage is attempted only if the previous
// one did not observe process death within its own window.
const (
	gracefulWindow   = 30 * time.Second
	gracefulInterval = 2 * time.Second
	quitWindow       = 3 * time.Second
	termWindow       = 2 * time.Second
	killWindow       = 2 * time.Second

	// QEMU's daemonizing parent returns after the pid file is written, but a
	// short grace period covers slow filesystems.
	pidFileWindow   = 2 * time.Second
	pidFileInterval = 100 * time.Millisecond
)

// Controller owns start/stop/status of exactly one VM process per lab session.
type Controller struct {
	cfg    *config.Config
	paths  *config.Paths
	guest  Guest
	record *Record
	qmp    *qmpClient
	log    *logrus.Entry

	// Escalation windows, overridable in tests.
	gracefulWindow   time.Duration
	gracefulInterval time.Duration
	quitWindow       time.Duration
	termWindow       time.Duration
	killWindow       time.Duration

	// Spawn seams, overridable in tests.
	lookupBinary func() (string, error)
	runCommand   func(ctx context.Context, name string, args []string) error
	sendSignal   func(pid int, sig syscall.Signal) error
}

// New creates a controller for the session described by cfg and paths.
func New(cfg *config.Config, paths *config.Paths, guest Guest, log *logrus.Entry) *Controller {
	return &Controller{
		cfg:              cfg,
		paths:            paths,
		guest:            guest,
		record:           NewRecord(paths.PIDFile()),
		qmp:              newQMPClient(paths.QMPSocket()),
		log:              log,
		gracefulWindow:   gracefulWindow,
		gracefulInterval: gracefulInterval,
		quitWindow:       quitWindow,
		termWindow:       termWindow,
		killWindow:       killWindow,
		lookupBinary:     findQemuBinary,
		runCommand:       runCommand,
		sendSignal:       sendSignal,
	}
}

func runCommand(ctx context.Context, name string, args []string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func sendSignal(pid int, sig syscall.Signal) error {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return proc.Signal(sig)
}

// IsRunning reports whether the recorded VM process is alive. Stale records
// are deleted as a side effect; the call never fails.
func (c *Controller) IsRunning() bool {
	_, alive := c.record.Probe()
	return alive
}

// Status composes the pid record probe with a transport check.
func (c *Controller) Status() Snapshot {
	pid, alive := c.record.Probe()
	snap := Snapshot{Running: alive, PID: pid}
	if alive {
		snap.SSHReachable = c.guest.Check()
	}
	return snap
}

// Start launches the VM and waits for guest SSH readiness.
//
// Preconditions: the system disk and seed image must exist (ErrSetupIncomplete
// otherwise, with no side effects). Already-running sessions return success
// without relaunching. On ErrGuestUnreachable the process is left running so
// the operator can inspect the guest instead of destroying the evidence.
func (c *Controller) Start(ctx context.Context, console bool) error {
	if _, err := os.Stat(c.paths.SystemDisk()); err != nil {
		return fmt.Errorf("%w: system disk %s missing", ErrSetupIncomplete, c.paths.SystemDisk())
	}
	if _, err := os.Stat(c.paths.SeedImage()); err != nil {
		return fmt.Errorf("%w: seed image %s missing", ErrSetupIncomplete, c.paths.SeedImage())
	}

	if pid, alive := c.record.Probe(); alive {
		c.log.WithField("pid", pid).Info("VM already running")
		return nil
	}

	binary, err := c.lookupBinary()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLaunchFailed, err)
	}

	// A dead session may have left its management socket behind.
	c.qmp.Remove()

	args := buildQemuArgs(c.cfg, c.paths, console)
	c.log.WithFields(logrus.Fields{
		"binary":  binary,
		"memory":  c.cfg.MemoryMB,
		"cpus":    c.cfg.CPUs,
		"sshPort": c.cfg.SSHPort,
	}).Info("launching VM")

	if err := c.runCommand(ctx, binary, args); err != nil {
		return fmt.Errorf("%w: %v", ErrLaunchFailed, err)
	}

	pid, err := c.awaitPIDRecord(ctx)
	if err != nil {
		return err
	}
	c.log.WithField("pid", pid).Info("VM process up, waiting for guest SSH")

	timeout := time.Duration(c.cfg.ReadyTimeoutSec) * time.Second
	if err := c.guest.WaitReady(ctx, timeout); err != nil {
		return fmt.Errorf("%w: %v (VM left running for inspection, use 'storagelab stop' to tear down)",
			ErrGuestUnreachable, err)
	}

	c.log.Info("guest ready")
	return nil
}

// awaitPIDRecord polls for the QEMU-written pid record and verifies the pid
// is alive. Covers the race where the daemonized child dies immediately.
func (c *Controller) awaitPIDRecord(ctx context.Context) (int, error) {
	deadline := time.Now().Add(pidFileWindow)
	for {
		if pid, alive := c.record.Probe(); alive {
			return pid, nil
		}
		if time.Now().After(deadline) {
			return 0, fmt.Errorf("%w: no live pid recorded in %s", ErrProcessNotStarted, c.record.Path())
		}
		select {
		case <-ctx.Done():
			return 0, fmt.Errorf("%w: %v", ErrProcessNotStarted, ctx.Err())
		case <-time.After(pidFileInterval):
		}
	}
}

// Stop tears the VM down through the escalating shutdown protocol and reports
// which stage succeeded. It never fails for a process we own: the final stage
// is an unconditional SIGKILL, so the session can always be torn down.
func (c *Controller) Stop(ctx context.Context) (ShutdownMethod, error) {
	pid, alive := c.record.Probe()
	if !alive {
		c.log.Info("VM not running")
		return ShutdownNone, nil
	}

	method := c.escalate(ctx, pid)

	c.record.Remove()
	c.qmp.Remove()
	c.log.WithFields(logrus.Fields{"pid": pid, "method": method.String()}).Info("VM stopped")
	return method, nil
}

func (c *Controller) escalate(ctx context.Context, pid int) ShutdownMethod {
	// Stage 1: in-guest poweroff, when the guest is reachable at all.
	if c.guest.Check() {
		c.log.Debug("requesting in-guest poweroff")
		if _, _, err := c.guest.Exec(ctx, "sudo poweroff"); err != nil {
			c.log.WithError(err).Debug("poweroff command did not complete")
		}
		if c.waitForExit(ctx, pid, c.gracefulWindow, c.gracefulInterval) {
			return ShutdownGraceful
		}
	}

	// Stage 2: quit over the management socket, when one exists.
	if c.qmp.Available() {
		c.log.Debug("sending quit over management socket")
		if err := c.qmp.Quit(); err != nil {
			c.log.WithError(err).Debug("qmp quit failed")
		}
		if c.waitForExit(ctx, pid, c.quitWindow, c.gracefulInterval) {
			return ShutdownControlSocket
		}
	}

	// Stage 3: signal escalation.
	c.log.Debug("sending SIGTERM")
	_ = c.sendSignal(pid, syscall.SIGTERM)
	if c.waitForExit(ctx, pid, c.termWindow, c.gracefulInterval) {
		return ShutdownSignal
	}

	c.log.Debug("sending SIGKILL")
	_ = c.sendSignal(pid, syscall.SIGKILL)
	c.waitForExit(ctx, pid, c.killWindow, c.gracefulInterval)
	return ShutdownKilled
}

// waitForExit polls process liveness until death or the window elapses.
// Context cancellation cuts the wait short; the caller escalates regardless.
func (c *Controller) waitForExit(ctx context.Context, pid int, window, interval time.Duration) bool {
	deadline := time.Now().Add(window)
	for {
		if !processAlive(pid) {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(interval):
		}
	}
}
