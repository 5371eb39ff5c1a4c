package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all storagelab configuration.
type Config struct {
	// MemoryMB is the amount of RAM in megabytes allocated to the lab VM.
	MemoryMB int `mapstructure:"memory_mb"`

	// CPUs is the number of virtual CPUs allocated to the lab VM.
	CPUs int `mapstructure:"cpus"`

	// SSHPort is the host port forwarded to the guest's SSH port.
	SSHPort int `mapstructure:"ssh_port"`

	// GuestUser is the username created in the guest via cloud-init.
	GuestUser string `mapstructure:"guest_user"`

	// GuestPassword is the password for GuestUser. The guest is a disposable
	// sandbox on a loopback port, not a trust boundary.
	GuestPassword string `mapstructure:"guest_password"`

	// BaseImage selects the base cloud image (see internal/image).
	BaseImage string `mapstructure:"base_image"`

	// DataDisks is the number of blank disks attached for RAID/LVM/ZFS practice.
	DataDisks int `mapstructure:"data_disks"`

	// DataDiskSizeMB is the size of each data disk in megabytes.
	DataDiskSizeMB int64 `mapstructure:"data_disk_size_mb"`

	// SystemDiskSizeGB is the virtual size of the system disk overlay.
	SystemDiskSizeGB int `mapstructure:"system_disk_size_gb"`

	// ReadyTimeoutSec bounds the wait for guest SSH readiness after start.
	ReadyTimeoutSec int `mapstructure:"ready_timeout_sec"`

	// LogLevel is the logrus level name (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level"`
}

// DefaultConfig returns a Config with sensible defaults for a teaching VM.
func DefaultConfig() *Config {
	return &Config{
		MemoryMB:         1024,
		CPUs:             1,
		SSHPort:          2222,
		GuestUser:        "labuser",
		GuestPassword:    "labpass",
		BaseImage:        "ubuntu",
		DataDisks:        4,
		DataDiskSizeMB:   1024,
		SystemDiskSizeGB: 10,
		ReadyTimeoutSec:  300,
		LogLevel:         "info",
	}
}

// Load reads configuration from file, environment, and defaults.
func Load(paths *Paths) (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("memory_mb", defaults.MemoryMB)
	v.SetDefault("cpus", defaults.CPUs)
	v.SetDefault("ssh_port", defaults.SSHPort)
	v.SetDefault("guest_user", defaults.GuestUser)
	v.SetDefault("guest_password", defaults.GuestPassword)
	v.SetDefault("base_image", defaults.BaseImage)
	v.SetDefault("data_disks", defaults.DataDisks)
	v.SetDefault("data_disk_size_mb", defaults.DataDiskSizeMB)
	v.SetDefault("system_disk_size_gb", defaults.SystemDiskSizeGB)
	v.SetDefault("ready_timeout_sec", defaults.ReadyTimeoutSec)
	v.SetDefault("log_level", defaults.LogLevel)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(paths.DataDir)

	// Environment variable support: STORAGELAB_MEMORY_MB, STORAGELAB_CPUS, etc.
	v.SetEnvPrefix("STORAGELAB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// Config file not found is OK - we use defaults
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
