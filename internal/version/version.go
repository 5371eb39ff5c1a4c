// Package version provides build-time version information.
package version

// These variables are set at build time using ldflags:
//
//	go build -ldflags "-X github.com/storagelab/storagelab/internal/version.Version=1.0.0 \
//	                   -X github.com/storagelab/storagelab/internal/version.Commit=$(git rev-parse HEAD)"
var (
	// Version is the semantic version of the application.
	Version = "dev"

	// Commit is the git commit SHA at build time.
	Commit = "unknown"
)

// Info returns a single-line human readable version string.
func Info() string {
	return "storagelab " + Version + " (" + Commit + ")"
}
