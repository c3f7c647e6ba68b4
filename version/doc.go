// Package version reports build information for aemctl.
//
// Version, git commit, branch and build time are set at link time:
//
//	go build -ldflags "-X github.com/kbukum/aemkit/version.Version=1.0.0" ./cmd/aemctl
//
// Values left empty are filled from the module build info embedded by the Go
// toolchain.
package version
