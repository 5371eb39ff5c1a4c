package lab

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// Poll re-runs a check command until its output matches the probe or the
// timeout elapses. Used for guest-internal processes that take time to
// settle, like RAID resync after a simulated disk failure.
type Poll struct {
	Command  string
	Probe    TextProbe
	Interval time.Duration
	Timeout  time.Duration
}

// Step is one command of an exercise plus the assertions graded against its
// output.
type Step struct {
	// Title is shown to the student before the command runs.
	Title string

	// Command is executed verbatim in the guest.
	Command string

	// Probes are matched against the command's combined output.
	Probes []TextProbe

	// Poll, if set, runs after the command and contributes one more
	// pass/fail result for its probe.
	Poll *Poll
}

// Exercise is a named, ordered sequence of steps.
type Exercise struct {
	Name        string
	Title       string
	Description string
	Steps       []Step
}

var (
	catalog     = make(map[string]Exercise)
	catalogLock sync.RWMutex
)

// Register adds an exercise to the catalog. Called from init() functions in
// the per-topic files.
func Register(ex Exercise) {
	catalogLock.Lock()
	defer catalogLock.Unlock()
	catalog[ex.Name] = ex
}

// Get returns an exercise by name.
func Get(name string) (Exercise, error) {
	catalogLock.RLock()
	defer catalogLock.RUnlock()

	ex, ok := catalog[name]
	if !ok {
		return Exercise{}, fmt.Errorf("unknown exercise %q, see 'storagelab lab list'", name)
	}
	return ex, nil
}

// All returns the catalog sorted by name.
func All() []Exercise {
	catalogLock.RLock()
	defer catalogLock.RUnlock()

	out := make([]Exercise, 0, len(catalog))
	for _, ex := range catalog {
		out = append(out, ex)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
