// Package version exposes build metadata for the rpcgen binary.
//
// The variables are overridden at release time with -ldflags, e.g.
//
//	go build -ldflags "-X go.eggybyte.com/egg/rpcgen/internal/version.Version=v0.2.0"
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Version is the release version.
var Version = "dev"

// Commit is the git commit hash.
var Commit = "unknown"

// BuildTime is the build timestamp in RFC3339 format.
var BuildTime = "unknown"

// Info is the structured form printed by "rpcgen version --json".
type Info struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	BuildTime string `json:"build_time" yaml:"build_time"`
	GoVersion string `json:"go_version" yaml:"go_version"`
	Platform  string `json:"platform" yaml:"platform"`
}

// Get returns the build metadata. When no release values were injected the
// module version and VCS revision recorded by the Go toolchain are used.
func Get() Info {
	info := Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}

	if bi, ok := debug.ReadBuildInfo(); ok {
		if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			info.Version = bi.Main.Version
		}
		for _, s := range bi.Settings {
			switch {
			case s.Key == "vcs.revision" && info.Commit == "unknown" && len(s.Value) >= 7:
				info.Commit = s.Value[:7]
			case s.Key == "vcs.time" && info.BuildTime == "unknown":
				info.BuildTime = s.Value
			}
		}
	}

	return info
}

// String returns the one-line form:
// rpcgen version v0.2.0 (commit 4a9b2c1, built 2026-10-01T12:00:00Z)
func (i Info) String() string {
	return fmt.Sprintf("rpcgen version %s (commit %s, built %s)", i.Version, i.Commit, i.BuildTime)
}
