package version

import "fmt"

// set via ldflags on release builds
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"

	FullVersion = fmt.Sprintf("%s (%s) built %s", Version, Commit, Date)
)
