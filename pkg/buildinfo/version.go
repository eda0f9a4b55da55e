// Package buildinfo holds version information injected at build time:
//
//	go build -ldflags "-X github.com/matzehuels/graphmorph/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/graphmorph/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/matzehuels/graphmorph/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	    ./cmd/graphmorph
package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String returns the build information on three lines.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Version, Commit, Date)
}

// Template returns the cobra version template.
func Template() string {
	return "{{.Name}} " + String() + "\n"
}
