// Package version reports build information for the typeforge binary.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/teranos/typeforge/irfile"
)

// Build information, set at build time via ldflags:
//
//	-X github.com/teranos/typeforge/version.Version=v1.2.0
var (
	CommitHash = "dev"
	BuildTime  = "unknown"
	Version    = "dev"
)

// Info contains version and build information
type Info struct {
	Version    string `json:"version"`
	CommitHash string `json:"commit_hash"`
	BuildTime  string `json:"build_time"`
	GoVersion  string `json:"go_version"`
	Platform   string `json:"platform"`
	// IRVersions is the range of IR document versions this build reads.
	IRVersions string `json:"ir_versions"`
}

// Get returns the current version information. Without ldflags, the
// module version recorded by `go install` is used when available.
func Get() Info {
	v := Version
	if v == "dev" {
		if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			v = bi.Main.Version
		}
	}
	return Info{
		Version:    v,
		CommitHash: CommitHash,
		BuildTime:  BuildTime,
		GoVersion:  runtime.Version(),
		Platform:   fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
		IRVersions: irfile.SupportedVersions,
	}
}

// String returns a human-readable version string
func (i Info) String() string {
	return fmt.Sprintf("typeforge %s (commit %s, built %s, IR %s)", i.Version, i.Short(), i.BuildTime, i.IRVersions)
}

// Short returns a short version string with just the commit hash
func (i Info) Short() string {
	if len(i.CommitHash) >= 7 {
		return i.CommitHash[:7]
	}
	return i.CommitHash
}

// Generator identifies this build in lock manifests.
func (i Info) Generator() string {
	return "typeforge " + i.Version
}
