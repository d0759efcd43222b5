// Package version reports the rack build.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set at build time via ldflags:
//
//	-X github.com/rnwolfe/rack/internal/version.Version=v0.3.0
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Build describes the running binary.
type Build struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
	Go      string `json:"go"`
}

// Current returns the build info of the running binary.
func Current() Build {
	return Build{Version: Version, Commit: Commit, Date: Date, Go: runtime.Version()}
}

func (b Build) String() string {
	return fmt.Sprintf("rack %s (%s) %s", b.Version, b.Commit, b.Date)
}

// Full returns "rack <version> (<commit>) <date>".
func Full() string {
	return Current().String()
}

// Short returns the bare version.
func Short() string {
	return Version
}

func init() {
	if info, ok := debug.ReadBuildInfo(); ok {
		backfill(info)
	}
}

// backfill fills Version, Commit and Date from build info for `go install`
// builds. Values passed through ldflags win.
func backfill(info *debug.BuildInfo) {
	if info == nil {
		return
	}
	// HEAD builds without a tag report "(devel)"; keep "dev" for those.
	if Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}
	for _, s := range info.Settings {
		if s.Value == "" {
			continue
		}
		switch s.Key {
		case "vcs.revision":
			if Commit == "none" {
				Commit = s.Value[:min(7, len(s.Value))]
			}
		case "vcs.time":
			if Date == "unknown" {
				Date = s.Value
			}
		}
	}
}
