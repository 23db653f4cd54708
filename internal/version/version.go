// Package version exposes the binary's release and build metadata. All values
// default to "unknown" and are overridden at link time, e.g.:
//
//	go build -ldflags "-X git.home.luguber.info/inful/prerender/internal/version.Version=v1.2.0"
package version

// Version is the release version reported by the --version flag.
var Version = "unknown"

// Build metadata, also injected via ldflags.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)
