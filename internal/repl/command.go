// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// Package repl implements the interactive minasign shell: a command
// registry, the built-in commands and a readline loop.
package repl

// Command represents a REPL command with metadata
type Command struct {
	Name        string   // Primary command name
	Aliases     []string // Alternative names (e.g., "h" for "help")
	Usage       string   // Usage string: "pay to=<addr> amount=<MINA>"
	Description string   // One-line description
	LongHelp    string   // Multi-line detailed help (optional)
	Category    string   // "Signing", "Key Management", etc.
	Handler     Handler  // Command execution handler
}

// Handler is the interface all command handlers must implement
type Handler interface {
	Execute(args []string, ctx *Context) error
}

// Category constants for organizing commands
const (
	CategorySession   = "Session"
	CategoryKeyMgmt   = "Key Management"
	CategorySigning   = "Signing"
	CategoryHashing   = "Hashing"
	CategoryEncoding  = "Encoding"
	CategoryScripting = "Scripting"
)

// categoryOrder is the order ShowHelp lists categories in.
var categoryOrder = []string{
	CategorySession,
	CategoryKeyMgmt,
	CategorySigning,
	CategoryHashing,
	CategoryEncoding,
	CategoryScripting,
}
