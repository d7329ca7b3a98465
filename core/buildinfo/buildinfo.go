// Package buildinfo carries version stamps injected by the linker:
//
//	go build -ldflags "-X github.com/uyizlang/uyizlangbot/core/buildinfo.Version=v1.0.0 \
//	  -X github.com/uyizlang/uyizlangbot/core/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	  -X github.com/uyizlang/uyizlangbot/core/buildinfo.Date=$(date -u +%FT%TZ)"
package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = "local"
	// Date is RFC3339; empty for local builds.
	Date = ""
)

// String formats the stamps as "version (commit, date)".
func String() string {
	if Date == "" {
		return fmt.Sprintf("%s (%s)", Version, Commit)
	}
	return fmt.Sprintf("%s (%s, %s)", Version, Commit, Date)
}
