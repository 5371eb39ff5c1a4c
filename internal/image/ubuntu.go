package image

func init() {
	Register(&ubuntuProvider{})
}

// ubuntuProvider serves the Ubuntu 24.04 LTS server cloud image. The "current"
// build moves, so the image is verified against the SHA256SUMS manifest
// published next to it rather than a pinned digest.
type ubuntuProvider struct{}

func (p *ubuntuProvider) ID() ID {
	return Ubuntu
}

func (p *ubuntuProvider) Name() string {
	return "Ubuntu 24.04 LTS (Noble)"
}

func (p *ubuntuProvider) Filename() string {
	return "noble-server-cloudimg-amd64.img"
}

func (p *ubuntuProvider) ImageURL() string {
	return "https://cloud-images.ubuntu.com/noble/current/noble-server-cloudimg-amd64.img"
}

func (p *ubuntuProvider) ChecksumURL() string {
	return "https://cloud-images.ubuntu.com/noble/current/SHA256SUMS"
}
