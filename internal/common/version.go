package common

import (
	"fmt"
	"runtime/debug"
)

// Version metadata, set via -ldflags at release build time. Development
// builds fall back to the VCS revision the Go toolchain embeds in the
// binary.
var (
	Version   = "dev"
	Build     = "unknown"
	GitCommit = "unknown"
)

// GetVersion returns the version string. When no release version was
// linked in, the embedded VCS revision identifies the dev build.
func GetVersion() string {
	if Version != "dev" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" && len(setting.Value) >= 8 {
				return "dev-" + setting.Value[:8]
			}
		}
	}
	return Version
}

// GetFullVersion returns the version with build metadata, used by the
// crash report header and --version output.
func GetFullVersion() string {
	return fmt.Sprintf("%s (build: %s, commit: %s)", GetVersion(), Build, GitCommit)
}
