package lab

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Guest is the slice of the transport the runner needs.
type Guest interface {
	Exec(ctx context.Context, command string) (string, int, error)
}

// Report sums up one exercise run. A guest command's non-zero exit is not
// itself a failure; only unmatched probes are.
type Report struct {
	Exercise     string
	Steps        int
	ProbesPassed int
	ProbesFailed int
}

// Passed reports whether every probe matched.
func (r *Report) Passed() bool {
	return r.ProbesFailed == 0
}

// Runner executes exercises over the guest transport and prints progress and
// per-probe results to out.
type Runner struct {
	guest Guest
	out   io.Writer
	log   *logrus.Entry
}

// NewRunner creates a runner writing student-facing output to out.
func NewRunner(guest Guest, out io.Writer, log *logrus.Entry) *Runner {
	return &Runner{guest: guest, out: out, log: log}
}

// Run executes one exercise. It returns an error only when the transport
// itself fails; grading outcomes live in the report.
func (r *Runner) Run(ctx context.Context, ex Exercise) (*Report, error) {
	report := &Report{Exercise: ex.Name, Steps: len(ex.Steps)}

	fmt.Fprintf(r.out, "=== %s ===\n%s\n", ex.Title, ex.Description)

	for i, step := range ex.Steps {
		fmt.Fprintf(r.out, "\n[%d/%d] %s\n  $ %s\n", i+1, len(ex.Steps), step.Title, step.Command)

		output, exit, err := r.guest.Exec(ctx, step.Command)
		if err != nil {
			return report, fmt.Errorf("step %d (%s): %w", i+1, step.Title, err)
		}
		r.printOutput(output)
		if exit != 0 {
			r.log.WithFields(logrus.Fields{"step": step.Title, "exit": exit}).Debug("command exited non-zero")
		}

		for _, probe := range step.Probes {
			r.grade(report, probe, probe.Match(output))
		}

		if step.Poll != nil {
			matched, err := r.poll(ctx, step.Poll)
			if err != nil {
				return report, fmt.Errorf("step %d (%s): %w", i+1, step.Title, err)
			}
			r.grade(report, step.Poll.Probe, matched)
		}
	}

	fmt.Fprintf(r.out, "\n=== %s: %d passed, %d failed ===\n", ex.Name, report.ProbesPassed, report.ProbesFailed)
	return report, nil
}

func (r *Runner) grade(report *Report, probe TextProbe, passed bool) {
	if passed {
		report.ProbesPassed++
		fmt.Fprintf(r.out, "  PASS  %s\n", probe.Description)
	} else {
		report.ProbesFailed++
		fmt.Fprintf(r.out, "  FAIL  %s\n", probe.Description)
	}
}

// poll re-runs the check command until its probe matches or the budget runs
// out. A timeout grades the probe as failed instead of aborting the run; the
// remaining steps still execute (and typically clean up).
func (r *Runner) poll(ctx context.Context, p *Poll) (bool, error) {
	deadline := time.Now().Add(p.Timeout)
	fmt.Fprintf(r.out, "  ... waiting: %s\n", p.Probe.Description)

	for {
		output, _, err := r.guest.Exec(ctx, p.Command)
		if err != nil {
			return false, err
		}
		if p.Probe.Match(output) {
			return true, nil
		}
		if time.Now().After(deadline) {
			return false, nil
		}
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(p.Interval):
		}
	}
}

func (r *Runner) printOutput(output string) {
	output = strings.TrimRight(output, "\n")
	if output == "" {
		return
	}
	for _, line := range strings.Split(output, "\n") {
		fmt.Fprintf(r.out, "  | %s\n", line)
	}
}
