package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetPathsHonorsOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("STORAGELAB_DATA_DIR", dir)

	p, err := GetPaths()
	if err != nil {
		t.Fatalf("GetPaths() failed: %v", err)
	}
	if p.DataDir != dir {
		t.Errorf("DataDir = %q, want %q", p.DataDir, dir)
	}
	if p.CacheDir != filepath.Join(dir, "cache") {
		t.Errorf("CacheDir = %q, want under DataDir", p.CacheDir)
	}
}

func TestGetPathsDefaultsToHome(t *testing.T) {
	t.Setenv("STORAGELAB_DATA_DIR", "")
	home := t.TempDir()
	t.Setenv("HOME", home)

	p, err := GetPaths()
	if err != nil {
		t.Fatalf("GetPaths() failed: %v", err)
	}
	if p.DataDir != filepath.Join(home, ".storagelab") {
		t.Errorf("DataDir = %q, want dotdir under home", p.DataDir)
	}
}

func TestDataDisksScan(t *testing.T) {
	p := testPaths(t)

	if got := p.DataDisks(); len(got) != 0 {
		t.Errorf("DataDisks() on empty dir = %v, want none", got)
	}

	for n := 0; n < 3; n++ {
		if err := os.WriteFile(p.DataDisk(n), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if got := p.DataDisks(); len(got) != 3 {
		t.Fatalf("DataDisks() = %v, want 3 disks", got)
	}

	// A gap ends the scan: removing disk 1 hides disk 2 as well, so guest
	// device naming never silently shifts.
	if err := os.Remove(p.DataDisk(1)); err != nil {
		t.Fatal(err)
	}
	got := p.DataDisks()
	if len(got) != 1 || got[0] != p.DataDisk(0) {
		t.Errorf("DataDisks() after gap = %v, want only disk 0", got)
	}
}

func TestEnsureDirectories(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	p := &Paths{
		DataDir:    dir,
		CacheDir:   filepath.Join(dir, "cache"),
		ConfigFile: filepath.Join(dir, "config.yaml"),
	}

	if err := p.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories() failed: %v", err)
	}
	for _, d := range []string{p.DataDir, p.CacheDir} {
		info, err := os.Stat(d)
		if err != nil || !info.IsDir() {
			t.Errorf("directory %s not created", d)
		}
	}
}
