// Package timing tracks how long provisioning and boot phases take, for the
// --timing flag on setup and start.
package timing

import (
	"fmt"
	"io"
	"time"
)

// Phase is one named span of the session startup.
type Phase struct {
	Name     string
	Duration time.Duration
}

// Timer accumulates phases from its creation onward.
type Timer struct {
	start  time.Time
	last   time.Time
	phases []Phase
}

// New starts a timer now.
func New() *Timer {
	now := time.Now()
	return &Timer{start: now, last: now}
}

// Mark closes the current phase under the given name.
func (t *Timer) Mark(name string) {
	now := time.Now()
	t.phases = append(t.phases, Phase{Name: name, Duration: now.Sub(t.last)})
	t.last = now
}

// Total returns the elapsed time since the timer started.
func (t *Timer) Total() time.Duration {
	return time.Since(t.start)
}

// Phases returns the recorded phases in order.
func (t *Timer) Phases() []Phase {
	return t.phases
}

// Report writes a phase breakdown to w.
func (t *Timer) Report(w io.Writer) {
	fmt.Fprintln(w, "\nTiming:")
	for _, p := range t.phases {
		fmt.Fprintf(w, "  %-18s %s\n", p.Name, formatDuration(p.Duration))
	}
	fmt.Fprintf(w, "  %-18s %s\n", "total", formatDuration(t.Total()))
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}
