// Package version exposes build metadata for the version command.
package version

import (
	"runtime"
	"runtime/debug"
)

// Set at build time via -ldflags; the VCS stamp in the build info fills the
// commit when the linker flags are absent.
var (
	Version = "dev"
	Commit  = ""
	Date    = "unknown"
)

func String() string {
	return "nudge " + Version + " (commit=" + commit() + ", date=" + Date + ", go=" + runtime.Version() + ")"
}

func commit() string {
	if Commit != "" {
		return Commit
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" {
				return s.Value
			}
		}
	}
	return "none"
}
