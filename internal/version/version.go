// Package version holds build metadata stamped at build time:
//
//	go build -ldflags "-X github.com/kailas-cloud/logsift/internal/version.Version=v1.0.0"
package version

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)
