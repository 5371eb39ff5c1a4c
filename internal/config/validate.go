package config

import "fmt"

// Validate checks configuration values for internal consistency.
func (c *Config) Validate() error {
	if c.MemoryMB < 512 {
		return fmt.Errorf("memory_mb must be at least 512, got %d", c.MemoryMB)
	}
	if c.CPUs < 1 {
		return fmt.Errorf("cpus must be at least 1, got %d", c.CPUs)
	}
	if c.SSHPort < 1024 || c.SSHPort > 65535 {
		return fmt.Errorf("ssh_port must be an unprivileged port (1024-65535), got %d", c.SSHPort)
	}
	if c.GuestUser == "" {
		return fmt.Errorf("guest_user must not be empty")
	}
	if c.GuestPassword == "" {
		return fmt.Errorf("guest_password must not be empty")
	}
	if c.DataDisks < 2 || c.DataDisks > 8 {
		// RAID exercises need at least two member disks; the guided material
		// addresses them as /dev/vdc onward.
		return fmt.Errorf("data_disks must be between 2 and 8, got %d", c.DataDisks)
	}
	if c.DataDiskSizeMB < 64 {
		return fmt.Errorf("data_disk_size_mb must be at least 64, got %d", c.DataDiskSizeMB)
	}
	if c.SystemDiskSizeGB < 4 {
		return fmt.Errorf("system_disk_size_gb must be at least 4, got %d", c.SystemDiskSizeGB)
	}
	if c.ReadyTimeoutSec < 30 {
		return fmt.Errorf("ready_timeout_sec must be at least 30, got %d", c.ReadyTimeoutSec)
	}
	return nil
}
