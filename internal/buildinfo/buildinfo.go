// Package buildinfo holds the version metadata cmd/version.go prints. It
// replaces the teacher's internal/stats package, which bundled this
// alongside a live connection/throughput stats manager this engine has no
// use for (see DESIGN.md).
package buildinfo

// These are overridden at link time via -ldflags, matching the teacher's
// cmd/version.go convention.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)
