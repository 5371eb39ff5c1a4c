package config

import "testing"

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"minimum memory", func(c *Config) { c.MemoryMB = 512 }, false},
		{"too little memory", func(c *Config) { c.MemoryMB = 256 }, true},
		{"zero cpus", func(c *Config) { c.CPUs = 0 }, true},
		{"privileged ssh port", func(c *Config) { c.SSHPort = 22 }, true},
		{"port out of range", func(c *Config) { c.SSHPort = 70000 }, true},
		{"empty user", func(c *Config) { c.GuestUser = "" }, true},
		{"empty password", func(c *Config) { c.GuestPassword = "" }, true},
		{"one data disk", func(c *Config) { c.DataDisks = 1 }, true},
		{"eight data disks", func(c *Config) { c.DataDisks = 8 }, false},
		{"nine data disks", func(c *Config) { c.DataDisks = 9 }, true},
		{"tiny data disk", func(c *Config) { c.DataDiskSizeMB = 32 }, true},
		{"tiny system disk", func(c *Config) { c.SystemDiskSizeGB = 2 }, true},
		{"short ready timeout", func(c *Config) { c.ReadyTimeoutSec = 10 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
