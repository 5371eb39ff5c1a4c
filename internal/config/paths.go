// Package config provides configuration management for storagelab.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths holds the directory layout for one lab installation.
type Paths struct {
	// DataDir holds disks, the seed image, the pid record and the QMP socket.
	// Defaults to ~/.storagelab, overridable via STORAGELAB_DATA_DIR.
	DataDir string

	// CacheDir holds downloaded base cloud images, shared across sessions.
	CacheDir string

	// ConfigFile is the path to the main config file.
	ConfigFile string
}

// GetPaths returns the path layout, honoring STORAGELAB_DATA_DIR.
func GetPaths() (*Paths, error) {
	dataDir := os.Getenv("STORAGELAB_DATA_DIR")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dataDir = filepath.Join(home, ".storagelab")
	}

	return &Paths{
		DataDir:    dataDir,
		CacheDir:   filepath.Join(dataDir, "cache"),
		ConfigFile: filepath.Join(dataDir, "config.yaml"),
	}, nil
}

// EnsureDirectories creates the data and cache directories if they don't exist.
func (p *Paths) EnsureDirectories() error {
	if err := os.MkdirAll(p.DataDir, 0o755); err != nil {
		return err
	}
	return os.MkdirAll(p.CacheDir, 0o755)
}

// SystemDisk returns the path of the bootable system disk image.
func (p *Paths) SystemDisk() string {
	return filepath.Join(p.DataDir, "system.qcow2")
}

// SeedImage returns the path of the cloud-init seed ISO.
func (p *Paths) SeedImage() string {
	return filepath.Join(p.DataDir, "seed.iso")
}

// DataDisk returns the path of the n-th lab data disk (0-based).
func (p *Paths) DataDisk(n int) string {
	return filepath.Join(p.DataDir, fmt.Sprintf("data%d.img", n))
}

// DataDisks returns the paths of the data disks that exist on disk, in order.
// A gap in the sequence ends the scan so device naming inside the guest
// stays stable.
func (p *Paths) DataDisks() []string {
	var disks []string
	for i := 0; ; i++ {
		path := p.DataDisk(i)
		if _, err := os.Stat(path); err != nil {
			break
		}
		disks = append(disks, path)
	}
	return disks
}

// PIDFile returns the path of the VM process-id record.
func (p *Paths) PIDFile() string {
	return filepath.Join(p.DataDir, "vm.pid")
}

// QMPSocket returns the path of the QEMU management socket.
func (p *Paths) QMPSocket() string {
	return filepath.Join(p.DataDir, "qmp.sock")
}
