package image

func init() {
	Register(&debianProvider{})
}

// debianProvider serves the Debian 12 generic cloud image. Note: ZFS exercises
// need zfs-dkms from contrib on Debian, which the seed's package list installs.
type debianProvider struct{}

func (p *debianProvider) ID() ID {
	return Debian
}

func (p *debianProvider) Name() string {
	return "Debian 12 (Bookworm)"
}

func (p *debianProvider) Filename() string {
	return "debian-12-genericcloud-amd64.qcow2"
}

func (p *debianProvider) ImageURL() string {
	return "https://cloud.debian.org/images/cloud/bookworm/latest/debian-12-genericcloud-amd64.qcow2"
}

// ChecksumURL is empty: Debian publishes SHA512SUMS only, which the sha256
// based verifier does not consume.
func (p *debianProvider) ChecksumURL() string {
	return ""
}
