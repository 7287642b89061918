// Package version exposes the build version injected via ldflags.
package version

// version is overridden at build time:
//
//	-ldflags "-X github.com/bkyoung/pr-reviewer/internal/version.version=v1.2.3"
var version = "dev"

// Value returns the build version.
func Value() string {
	return version
}
