// Package version exposes build metadata for the version command.
package version

import (
	"runtime"
	"runtime/debug"
)

// Set at build time via -ldflags. When absent, commit falls back to the
// vcs revision embedded by the Go toolchain.
var (
	Version = "dev"
	Commit  = ""
	Date    = "unknown"
)

func String() string {
	return "sobotta " + Version + " (commit=" + commit() + ", date=" + Date + ", go=" + runtime.Version() + ")"
}

func commit() string {
	if Commit != "" {
		return Commit
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" {
				return setting.Value
			}
		}
	}
	return "none"
}
