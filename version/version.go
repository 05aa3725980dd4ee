package version

import "fmt"

// set via ldflags during release builds
var (
	Version     = "dev"
	GitCommit   = "none"
	BuildDate   = "unknown"
	FullVersion = fmt.Sprintf("%s (commit %s, built %s)", Version, GitCommit, BuildDate)
)
