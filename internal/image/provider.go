// Package image catalogs the base cloud images a lab VM can boot from.
package image

// ID identifies a base image.
type ID string

const (
	Ubuntu ID = "ubuntu"
	Debian ID = "debian"
)

// Provider describes where to fetch one base cloud image and how to verify it.
type Provider interface {
	// ID returns the unique identifier for this image.
	ID() ID

	// Name returns the human-readable name.
	Name() string

	// Filename is the name the downloaded image is cached under.
	Filename() string

	// ImageURL is the download location of the qcow2 cloud image.
	ImageURL() string

	// ChecksumURL points at an upstream SHA256SUMS manifest covering
	// Filename. Empty means the publisher offers no sha256 manifest and
	// verification is skipped.
	ChecksumURL() string
}
