// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// Package version holds the minasign build stamp.
package version

import (
	"fmt"
	"runtime"
)

// Set with -ldflags, e.g.
// go build -ldflags "-X github.com/aplane-algo/minasign/internal/version.Version=0.4.0" ./cmd/minasign
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// String is the long form printed by -version.
func String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s, %s/%s)",
		Version, GitCommit, BuildTime, runtime.GOOS, runtime.GOARCH)
}

// Short is the version with the commit appended when it is known.
func Short() string {
	if GitCommit == "" || GitCommit == "unknown" {
		return Version
	}
	return Version + "+" + GitCommit
}
