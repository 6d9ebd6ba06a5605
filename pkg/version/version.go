package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set with -ldflags "-X github.com/MacroPower/acctsim/pkg/version.Version=...".
var (
	Version   = "0.0.0-dev"
	Revision  = "unknown"
	BuildDate = "unknown"
)

func init() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if Revision == "unknown" && s.Value != "" {
				Revision = s.Value
			}
		case "vcs.time":
			if BuildDate == "unknown" && s.Value != "" {
				BuildDate = s.Value
			}
		}
	}
}

// String returns a human-readable version string.
func String() string {
	return fmt.Sprintf("%s (revision %s, built %s, %s)", Version, Revision, BuildDate, runtime.Version())
}
