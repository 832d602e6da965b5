// Package version carries the build identity stamped in at link time via
// -ldflags "-X".
package version

var (
	// Version is the release tag of this build.
	Version = "dev"
	// GitSHA is the commit the build was produced from.
	GitSHA = "unknown"
	// BuildTime is the build timestamp.
	BuildTime = "unknown"
)
