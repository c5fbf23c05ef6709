// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// Package scripting runs JavaScript against the minasign client.
// It abstracts the underlying VM behind a common interface.
package scripting

import (
	"context"
	"fmt"
	"io"
	"os"
)

// ScriptError represents an error that occurred during script execution.
type ScriptError struct {
	Message string
}

func (e *ScriptError) Error() string {
	return e.Message
}

// Result holds the outcome of running a script.
type Result struct {
	// Value is the exported result value (nil if IsEmpty is true)
	Value interface{}
	// IsEmpty is true if the script returned undefined/null/void
	IsEmpty bool
}

// Runner is the low-level VM abstraction for executing scripts.
// It handles code execution within an embedded interpreter and is used
// both by the REPL (persistent runtime, line-by-line execution) and by
// the script command.
//
// It does NOT handle file I/O; see ReadScript and Watch.
type Runner interface {
	// Run executes the given code and returns the result.
	// Errors include syntax errors, runtime exceptions, etc.
	Run(code string) (Result, error)

	// SetOutput sets the function used for print() output.
	// Must be called before Run() if custom output handling is needed.
	SetOutput(fn func(string))

	// Interrupt stops the currently running script.
	// Safe to call from another goroutine.
	Interrupt()
}

// ContextRunner is a Runner that can be cancelled through a context.
type ContextRunner interface {
	Runner
	RunContext(ctx context.Context, code string) (Result, error)
}

// ReadScript loads a script from path, or from stdin when path is "-".
func ReadScript(path string) (string, error) {
	var content []byte
	var err error
	if path == "-" {
		content, err = io.ReadAll(os.Stdin)
	} else {
		content, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read script: %w", err)
	}
	return string(content), nil
}

// RunFile reads and runs a script in a fresh call of r.
func RunFile(ctx context.Context, r ContextRunner, path string) (Result, error) {
	code, err := ReadScript(path)
	if err != nil {
		return Result{}, err
	}
	return r.RunContext(ctx, code)
}
