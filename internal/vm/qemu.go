package vm

import (
	"fmt"
	"os/exec"

	"github.com/storagelab/storagelab/internal/config"
)

// findQemuBinary locates the system emulator. Distributions disagree on both
// name and location, so a list of candidates is tried in order.
func findQemuBinary() (string, error) {
	locations := []string{
		"qemu-system-x86_64",    // standard (in PATH)
		"/usr/libexec/qemu-kvm", // RHEL/CentOS
		"/usr/bin/qemu-kvm",
	}
	for _, loc := range locations {
		if path, err := exec.LookPath(loc); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("qemu-system-x86_64 not found; install the qemu-kvm package")
}

// buildQemuArgs constructs the launch argument list. The console flag only
// changes the display device; daemonization and the readiness contract are
// identical in both modes.
func buildQemuArgs(cfg *config.Config, paths *config.Paths, console bool) []string {
	args := []string{
		"-machine", "accel=kvm",
		"-cpu", "host",
		"-smp", fmt.Sprintf("%d", cfg.CPUs),
		"-m", fmt.Sprintf("%d", cfg.MemoryMB),
	}

	// System disk boots first, then the cloud-init seed.
	args = append(args,
		"-drive", fmt.Sprintf("file=%s,format=qcow2,if=virtio", paths.SystemDisk()),
		"-drive", fmt.Sprintf("file=%s,format=raw,if=virtio,media=cdrom,readonly=on", paths.SeedImage()),
	)

	// Whatever data disks exist are attached in order; the guest sees them
	// as /dev/vdc, /dev/vdd, ... after the system disk and seed.
	for i, disk := range paths.DataDisks() {
		args = append(args,
			"-drive", fmt.Sprintf("file=%s,format=raw,if=virtio,id=lab%d", disk, i),
		)
	}

	// User-mode networking with the guest's SSH port forwarded to loopback.
	args = append(args,
		"-netdev", fmt.Sprintf("user,id=net0,hostfwd=tcp:127.0.0.1:%d-:22", cfg.SSHPort),
		"-device", "virtio-net-pci,netdev=net0",
	)

	// Management socket, shutdown fallback only.
	args = append(args,
		"-qmp", fmt.Sprintf("unix:%s,server=on,wait=off", paths.QMPSocket()),
	)

	if console {
		args = append(args, "-display", "gtk")
	} else {
		args = append(args, "-display", "none")
	}

	// QEMU daemonizes and writes the pid record itself; the parent process
	// does not return until the child is initialized.
	args = append(args,
		"-daemonize",
		"-pidfile", paths.PIDFile(),
	)

	return args
}
