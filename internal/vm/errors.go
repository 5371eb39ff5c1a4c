package vm

import "errors"

// Error kinds surfaced by Controller.Start. The CLI maps each to a specific
// actionable message instead of a generic failure.
var (
	// ErrSetupIncomplete means a required disk artifact (system disk or seed
	// image) is missing. Run `storagelab setup` first.
	ErrSetupIncomplete = errors.New("vm: setup incomplete")

	// ErrLaunchFailed means the QEMU process could not be spawned at all.
	ErrLaunchFailed = errors.New("vm: launch failed")

	// ErrProcessNotStarted means the spawn appeared to succeed but no live
	// process id could be observed afterward.
	ErrProcessNotStarted = errors.New("vm: process not started")

	// ErrGuestUnreachable means the VM process is alive but the guest never
	// accepted SSH within the readiness timeout. The process is left running
	// so an operator can inspect it.
	ErrGuestUnreachable = errors.New("vm: guest unreachable")
)

// ShutdownMethod reports which stage of the shutdown escalation terminated
// the VM process.
type ShutdownMethod int

const (
	// ShutdownNone means there was nothing to stop.
	ShutdownNone ShutdownMethod = iota

	// ShutdownGraceful means the guest honored the in-guest poweroff command.
	ShutdownGraceful

	// ShutdownControlSocket means the QMP quit command terminated the process.
	ShutdownControlSocket

	// ShutdownSignal means SIGTERM terminated the process.
	ShutdownSignal

	// ShutdownKilled means SIGKILL was required.
	ShutdownKilled
)

func (m ShutdownMethod) String() string {
	switch m {
	case ShutdownNone:
		return "none"
	case ShutdownGraceful:
		return "graceful"
	case ShutdownControlSocket:
		return "control-socket"
	case ShutdownSignal:
		return "signal"
	case ShutdownKilled:
		return "killed"
	default:
		return "unknown"
	}
}
