// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package util

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// ANSI color codes keyed by what is being printed.
const (
	ColorAddress = "36" // cyan
	ColorHash    = "33" // yellow
	ColorError   = "31" // red
)

// SupportsColor checks if stdout is a terminal that understands ANSI codes.
func SupportsColor() bool {
	if !term.IsTerminal(int(os.Stdout.Fd())) { // #nosec G115 - file descriptors are small integers
		return false
	}

	termEnv := os.Getenv("TERM")
	if termEnv == "" || termEnv == "dumb" {
		return false
	}
	return os.Getenv("NO_COLOR") == ""
}

// Colorize wraps s in the given ANSI color when stdout supports it.
func Colorize(s, colorCode string) string {
	if !SupportsColor() || colorCode == "" {
		return s
	}
	return fmt.Sprintf("\033[%sm%s\033[0m", colorCode, s)
}
