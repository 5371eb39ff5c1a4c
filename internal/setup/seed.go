package setup

import (
	"bytes"
	"fmt"
	"os"

	"github.com/kdomanski/iso9660"
	"gopkg.in/yaml.v3"

	"github.com/storagelab/storagelab/internal/config"
)

// userData is the cloud-config document baked into the seed. Marshaled to
// YAML and prefixed with the "#cloud-config" header.
type userData struct {
	Hostname string     `yaml:"hostname"`
	Users    []seedUser `yaml:"users"`
	// Password auth is the whole access model for the disposable lab guest.
	SSHPasswordAuth bool     `yaml:"ssh_pwauth"`
	Packages        []string `yaml:"packages"`
	PackageUpdate   bool     `yaml:"package_update"`
}

type seedUser struct {
	Name string `yaml:"name"`
	// PlainTextPasswd is acceptable here: the credential guards a throwaway
	// VM listening on loopback only.
	PlainTextPasswd string   `yaml:"plain_text_passwd"`
	LockPasswd      bool     `yaml:"lock_passwd"`
	Groups          string   `yaml:"groups"`
	Shell           string   `yaml:"shell"`
	Sudo            []string `yaml:"sudo"`
}

// metaData is the NoCloud instance metadata document.
type metaData struct {
	InstanceID    string `yaml:"instance-id"`
	LocalHostname string `yaml:"local-hostname"`
}

// labPackages are installed on first boot. The exercises shell out to these
// inside the guest; nothing on the host depends on them.
var labPackages = []string{"mdadm", "lvm2", "zfsutils-linux"}

// GenerateUserData renders the cloud-config user-data file content.
func GenerateUserData(cfg *config.Config) (string, error) {
	doc := userData{
		Hostname: "storagelab",
		Users: []seedUser{{
			Name:            cfg.GuestUser,
			PlainTextPasswd: cfg.GuestPassword,
			LockPasswd:      false,
			Groups:          "sudo",
			Shell:           "/bin/bash",
			// Passwordless sudo: the graceful shutdown path and every
			// exercise run privileged storage commands non-interactively.
			Sudo: []string{"ALL=(ALL) NOPASSWD:ALL"},
		}},
		SSHPasswordAuth: true,
		Packages:        labPackages,
		PackageUpdate:   true,
	}

	out, err := yaml.Marshal(&doc)
	if err != nil {
		return "", fmt.Errorf("marshal user-data: %w", err)
	}
	return "#cloud-config\n" + string(out), nil
}

// GenerateMetaData renders the NoCloud meta-data file content.
func GenerateMetaData() (string, error) {
	doc := metaData{
		InstanceID:    "storagelab-vm",
		LocalHostname: "storagelab",
	}
	out, err := yaml.Marshal(&doc)
	if err != nil {
		return "", fmt.Errorf("marshal meta-data: %w", err)
	}
	return string(out), nil
}

// GenerateSeedISO builds the cloud-init NoCloud seed image. The volume label
// must be CIDATA for the datasource to pick it up.
func GenerateSeedISO(cfg *config.Config) ([]byte, error) {
	user, err := GenerateUserData(cfg)
	if err != nil {
		return nil, err
	}
	meta, err := GenerateMetaData()
	if err != nil {
		return nil, err
	}

	writer, err := iso9660.NewWriter()
	if err != nil {
		return nil, fmt.Errorf("create iso writer: %w", err)
	}
	defer func() {
		_ = writer.Cleanup()
	}()

	if err := writer.AddFile(bytes.NewReader([]byte(user)), "user-data"); err != nil {
		return nil, fmt.Errorf("add user-data: %w", err)
	}
	if err := writer.AddFile(bytes.NewReader([]byte(meta)), "meta-data"); err != nil {
		return nil, fmt.Errorf("add meta-data: %w", err)
	}

	var buf bytes.Buffer
	if err := writer.WriteTo(&buf, "CIDATA"); err != nil {
		return nil, fmt.Errorf("write iso: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteSeedISO generates the seed and writes it to path.
func WriteSeedISO(cfg *config.Config, path string) error {
	iso, err := GenerateSeedISO(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, iso, 0o644); err != nil {
		return fmt.Errorf("write seed image: %w", err)
	}
	return nil
}
