// Package version holds the build version, set at link time with
// -ldflags "-X contigr/internal/version.Version=...".
package version

var Version = "dev"
