// Package version exposes the build metadata stamped into release binaries
// via -ldflags "-X slab-mapper/internal/version.<var>=...".
package version

var (
	// Version is the semantic version.
	Version = "0.1.0"

	// BuildTime is the UTC time when the binary was built.
	BuildTime = "unknown"

	// GitCommit is the git commit hash.
	GitCommit = "unknown"
)

// String renders the version for logs and the about dialog, appending the
// commit only when one was stamped in.
func String() string {
	s := "v" + Version
	if GitCommit != "unknown" {
		s += " (" + GitCommit + ")"
	}
	return s
}
