// Package setup builds the disk artifacts a lab session boots from: the base
// cloud image, a qcow2 overlay system disk, blank data disks for storage
// exercises, and the cloud-init seed ISO.
package setup

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/storagelab/storagelab/internal/config"
	"github.com/storagelab/storagelab/internal/image"
)

// Builder provisions and tears down the on-disk artifacts of one lab session.
type Builder struct {
	cfg   *config.Config
	paths *config.Paths
	log   *logrus.Entry

	// qemuImg runs `qemu-img args...`; overridable in tests.
	qemuImg func(args ...string) error
}

// NewBuilder creates a builder for the given configuration.
func NewBuilder(cfg *config.Config, paths *config.Paths, log *logrus.Entry) *Builder {
	return &Builder{
		cfg:   cfg,
		paths: paths,
		log:   log,
		qemuImg: func(args ...string) error {
			cmd := exec.Command("qemu-img", args...)
			out, err := cmd.CombinedOutput()
			if err != nil {
				return fmt.Errorf("qemu-img %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(string(out)))
			}
			return nil
		},
	}
}

// Complete reports whether the artifacts start() requires exist.
func (b *Builder) Complete() bool {
	if _, err := os.Stat(b.paths.SystemDisk()); err != nil {
		return false
	}
	if _, err := os.Stat(b.paths.SeedImage()); err != nil {
		return false
	}
	return true
}

// Run provisions everything that is missing. Idempotent: existing artifacts
// are kept, so a re-run after a partial failure picks up where it stopped.
func (b *Builder) Run() error {
	if err := b.paths.EnsureDirectories(); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}

	provider, err := image.Get(image.ID(b.cfg.BaseImage))
	if err != nil {
		return err
	}

	base, err := b.ensureBaseImage(provider)
	if err != nil {
		return err
	}

	if err := b.ensureSystemDisk(base); err != nil {
		return err
	}

	if err := b.ensureDataDisks(); err != nil {
		return err
	}

	if err := b.ensureSeed(); err != nil {
		return err
	}

	b.log.Info("setup complete")
	return nil
}

// ensureBaseImage downloads and verifies the base cloud image unless cached.
func (b *Builder) ensureBaseImage(provider image.Provider) (string, error) {
	path := filepath.Join(b.paths.CacheDir, provider.Filename())
	if _, err := os.Stat(path); err == nil {
		b.log.WithField("image", provider.Filename()).Info("base image cached")
		return path, nil
	}

	b.log.WithFields(logrus.Fields{
		"image": provider.Name(),
		"url":   provider.ImageURL(),
	}).Info("downloading base image")

	if err := downloadFile(provider.ImageURL(), path); err != nil {
		return "", fmt.Errorf("download base image: %w", err)
	}

	if sumsURL := provider.ChecksumURL(); sumsURL != "" {
		if err := verifySHA256(path, provider.Filename(), sumsURL); err != nil {
			os.Remove(path)
			return "", fmt.Errorf("verify base image: %w", err)
		}
		b.log.Info("base image checksum verified")
	} else {
		b.log.Warn("publisher offers no sha256 manifest, skipping verification")
	}

	return path, nil
}

// ensureSystemDisk creates the qcow2 overlay backed by the base image. The
// base stays pristine in the cache; a session writes only to its overlay, so
// destroy-and-setup yields a factory-fresh guest without re-downloading.
func (b *Builder) ensureSystemDisk(base string) error {
	path := b.paths.SystemDisk()
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	b.log.WithField("disk", path).Info("creating system disk")
	return b.qemuImg("create",
		"-f", "qcow2",
		"-b", base,
		"-F", "qcow2",
		path,
		fmt.Sprintf("%dG", b.cfg.SystemDiskSizeGB),
	)
}

// ensureDataDisks creates the blank raw disks the exercises consume.
func (b *Builder) ensureDataDisks() error {
	for i := 0; i < b.cfg.DataDisks; i++ {
		path := b.paths.DataDisk(i)
		if _, err := os.Stat(path); err == nil {
			continue
		}
		b.log.WithField("disk", path).Info("creating data disk")
		if err := b.qemuImg("create", "-f", "raw", path, fmt.Sprintf("%dM", b.cfg.DataDiskSizeMB)); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) ensureSeed() error {
	path := b.paths.SeedImage()
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	b.log.WithField("seed", path).Info("generating cloud-init seed")
	return WriteSeedISO(b.cfg, path)
}

// Destroy removes all session artifacts: disks, seed, pid record and socket.
// The cached base image is kept.
func (b *Builder) Destroy() error {
	targets := []string{
		b.paths.SystemDisk(),
		b.paths.SeedImage(),
		b.paths.PIDFile(),
		b.paths.QMPSocket(),
	}
	targets = append(targets, b.paths.DataDisks()...)

	for _, path := range targets {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove %s: %w", path, err)
		}
	}
	b.log.Info("session artifacts removed")
	return nil
}

// downloadFile fetches url into path via a temp file, so a partial download
// never masquerades as a cached image.
func downloadFile(url, path string) error {
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s for %s", resp.Status, url)
	}

	tmp := path + ".partial"
	out, err := os.Create(tmp)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// verifySHA256 checks path against the entry for filename in an upstream
// SHA256SUMS manifest (lines of "<hex>  <name>", the name possibly *-prefixed).
func verifySHA256(path, filename, sumsURL string) error {
	resp, err := http.Get(sumsURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s for %s", resp.Status, sumsURL)
	}

	want, err := findChecksum(resp.Body, filename)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return err
	}
	got := hex.EncodeToString(h.Sum(nil))

	if got != want {
		return fmt.Errorf("checksum mismatch for %s: got %s, want %s", filename, got, want)
	}
	return nil
}

func findChecksum(manifest io.Reader, filename string) (string, error) {
	scanner := bufio.NewScanner(manifest)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) != 2 {
			continue
		}
		if strings.TrimPrefix(fields[1], "*") == filename {
			return strings.ToLower(fields[0]), nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", fmt.Errorf("no checksum entry for %s", filename)
}
