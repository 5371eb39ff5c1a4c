package vm

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
)

// Record is the host-side marker that a VM process was launched and what its
// pid is. The file is written by QEMU itself (-pidfile with -daemonize), so
// its presence plus a successful liveness probe of the recorded pid is the
// entire "a VM is running" contract.
type Record struct {
	path string
}

// NewRecord creates a record handle for the given pid-file path.
func NewRecord(path string) *Record {
	return &Record{path: path}
}

// Path returns the pid-file path.
func (r *Record) Path() string {
	return r.path
}

// Read parses the recorded pid. Returns os.ErrNotExist when no record exists.
func (r *Record) Read() (int, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("malformed pid record %s: %q", r.path, strings.TrimSpace(string(data)))
	}
	return pid, nil
}

// Probe returns the recorded pid and whether that process is alive.
// A record pointing at a dead or unparseable pid is stale: it is removed as a
// side effect and (0, false) is returned. Probe never fails; inconsistent
// state self-heals.
func (r *Record) Probe() (int, bool) {
	pid, err := r.Read()
	if err != nil {
		if !os.IsNotExist(err) {
			// Unreadable or malformed record is as stale as a dead pid.
			r.Remove()
		}
		return 0, false
	}
	if !processAlive(pid) {
		r.Remove()
		return 0, false
	}
	return pid, true
}

// Remove deletes the record file. Missing files are not an error.
func (r *Record) Remove() {
	_ = os.Remove(r.path)
}

// processAlive probes a pid with the zero signal. The probe has no effect on
// the target; it only reports whether the pid names a live process we may
// signal.
func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	// EPERM means the process exists but belongs to someone else. That is
	// not our VM (we spawned it), so treat it as not running.
	return err == nil
}
