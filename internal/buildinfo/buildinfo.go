package buildinfo

import "time"

// Stamped via -ldflags at build time; empty in dev builds
var (
	BuildTime  string // when the binary was compiled
	CommitHash string // short git commit hash
)

// StartTime is recorded when the process starts
var StartTime = time.Now().UTC().Format(time.RFC3339)
