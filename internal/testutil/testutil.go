// Package testutil provides common test helpers for storagelab tests.
package testutil

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/storagelab/storagelab/internal/config"
)

// TestPaths returns a Paths rooted in a fresh temp dir, cleaned up with the
// test.
func TestPaths(t *testing.T) *config.Paths {
	t.Helper()

	dir := t.TempDir()
	p := &config.Paths{
		DataDir:    dir,
		CacheDir:   filepath.Join(dir, "cache"),
		ConfigFile: filepath.Join(dir, "config.yaml"),
	}
	if err := p.EnsureDirectories(); err != nil {
		t.Fatalf("create test directories: %v", err)
	}
	return p
}

// TestConfig returns a Config with small, valid values for tests.
func TestConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.DataDisks = 2
	cfg.DataDiskSizeMB = 64
	if err := cfg.Validate(); err != nil {
		t.Fatalf("test config is invalid: %v", err)
	}
	return cfg
}

// TouchArtifacts creates empty stand-ins for the system disk and seed image
// so Start's preconditions hold.
func TouchArtifacts(t *testing.T, paths *config.Paths) {
	t.Helper()

	for _, path := range []string{paths.SystemDisk(), paths.SeedImage()} {
		if err := os.WriteFile(path, nil, 0o644); err != nil {
			t.Fatalf("create artifact %s: %v", path, err)
		}
	}
}

// WritePIDRecord writes an arbitrary pid record, bypassing the supervisor.
// Used to simulate stale or malformed records.
func WritePIDRecord(t *testing.T, paths *config.Paths, content string) {
	t.Helper()

	if err := os.WriteFile(paths.PIDFile(), []byte(content), 0o644); err != nil {
		t.Fatalf("write pid record: %v", err)
	}
}

// SpawnSleeper starts a long-running child process and returns its pid. The
// child is reaped as soon as it dies, so liveness probes see its death
// promptly instead of a zombie. It is killed when the test ends.
func SpawnSleeper(t *testing.T) int {
	t.Helper()

	cmd := exec.Command("sleep", "600")
	if err := cmd.Start(); err != nil {
		t.Fatalf("spawn sleeper: %v", err)
	}
	reaped := make(chan struct{})
	go func() {
		_ = cmd.Wait()
		close(reaped)
	}()
	t.Cleanup(func() {
		_ = cmd.Process.Kill()
		<-reaped
	})
	return cmd.Process.Pid
}

// DeadPID returns a pid that is guaranteed not to name a live process: the
// pid of a child that has already been spawned, exited and reaped.
func DeadPID(t *testing.T) int {
	t.Helper()

	cmd := exec.Command("true")
	if err := cmd.Run(); err != nil {
		t.Fatalf("spawn short-lived process: %v", err)
	}
	return cmd.Process.Pid
}

// PIDString formats a pid the way the record file stores it.
func PIDString(pid int) string {
	return fmt.Sprintf("%d\n", pid)
}
