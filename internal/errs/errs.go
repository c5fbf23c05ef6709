// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// Package errs defines the error kinds shared by the encoding packages.
//
// Every fallible codec step returns an *Error carrying one of the sentinel
// kinds below, so callers can branch with errors.Is regardless of how deeply
// the error was wrapped.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrDecode indicates malformed encoded input: bad base58check checksum,
	// version or length, invalid hex, or an out-of-range big integer.
	ErrDecode = errors.New("decode error")

	// ErrParse indicates malformed JSON or an unparsable numeric string.
	ErrParse = errors.New("parse error")

	// ErrValidation indicates structurally valid input that is missing a
	// required part (e.g. neither payment nor delegation present).
	ErrValidation = errors.New("validation error")

	// ErrKey indicates invalid public or private key material.
	ErrKey = errors.New("key error")
)

// Error is a typed codec failure.
type Error struct {
	Kind error  // One of ErrDecode, ErrParse, ErrValidation, ErrKey
	Op   string // Operation that failed (e.g. "base58check.Decode")
	Msg  string
	Err  error // Underlying cause, may be nil
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Msg != "" {
		msg += ": " + e.Msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Decode returns an ErrDecode failure for op.
func Decode(op string, format string, args ...any) error {
	return &Error{Kind: ErrDecode, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Parse returns an ErrParse failure for op.
func Parse(op string, format string, args ...any) error {
	return &Error{Kind: ErrParse, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Validation returns an ErrValidation failure for op.
func Validation(op string, format string, args ...any) error {
	return &Error{Kind: ErrValidation, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Key returns an ErrKey failure for op.
func Key(op string, format string, args ...any) error {
	return &Error{Kind: ErrKey, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches kind and op to an underlying error.
// Returns nil if err is nil.
func Wrap(kind error, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}
