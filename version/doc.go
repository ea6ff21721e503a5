// Package version exposes the module's build version for startup
// reporting.
//
// Version, commit, and build date are set at compile time via -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/wirekit/version.Version=1.2.0"
//
// Gaps are filled from the VCS metadata Go embeds in the binary, so a
// plain `go build` from a git checkout still reports a usable commit.
package version
