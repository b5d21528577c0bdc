// Package version holds build metadata set with -ldflags at link time:
//
//	go build -ldflags "-X github.com/kailas-cloud/nearby/internal/version.Version=v1.2.0"
package version

import "fmt"

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String renders the build metadata for startup logs.
func String() string {
	return fmt.Sprintf("nearby %s (commit %s, built %s)", Version, Commit, Date)
}
