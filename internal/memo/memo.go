// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// Package memo implements the fixed-width user command memo.
//
// A memo is always 34 bytes: a format tag, a length byte, up to 32 payload
// bytes, and zero padding. Text longer than 32 bytes is truncated, not
// rejected.
package memo

import (
	"unicode/utf8"

	"github.com/aplane-algo/minasign/internal/base58check"
	"github.com/aplane-algo/minasign/internal/errs"
)

const (
	// Size is the encoded memo length.
	Size = 34

	// MaxLength is the maximum payload length in bytes.
	MaxLength = 32

	// FormatTag marks a user-supplied byte-string memo.
	FormatTag byte = 0x01
)

// Memo is the encoded form.
type Memo [Size]byte

// Empty returns the memo for "no memo".
func Empty() Memo {
	var m Memo
	m[0] = FormatTag
	return m
}

// FromString encodes s, keeping at most MaxLength bytes.
func FromString(s string) Memo {
	m := Empty()
	n := len(s)
	if n > MaxLength {
		n = MaxLength
	}
	m[1] = byte(n)
	copy(m[2:], s[:n])
	return m
}

// Encode encodes an optional string; nil yields Empty.
func Encode(s *string) Memo {
	if s == nil {
		return Empty()
	}
	return FromString(*s)
}

// Decode returns the memo text, or ok=false when the length byte is zero.
//
// The payload bytes are returned as-is without UTF-8 validation; a memo
// truncated in the middle of a multi-byte sequence decodes to a string that
// is not valid UTF-8. Use Valid to detect that case.
func (m Memo) Decode() (text string, ok bool) {
	n := int(m[1])
	if n == 0 {
		return "", false
	}
	if n > MaxLength {
		n = MaxLength
	}
	return string(m[2 : 2+n]), true
}

// String returns the decoded text or "" for an empty memo.
func (m Memo) String() string {
	s, _ := m.Decode()
	return s
}

// Len returns the payload length recorded in the memo.
func (m Memo) Len() int {
	return int(m[1])
}

// Valid reports whether the memo is well formed and its payload is UTF-8.
func (m Memo) Valid() bool {
	if m[0] != FormatTag || m[1] > MaxLength {
		return false
	}
	for _, b := range m[2+int(m[1]):] {
		if b != 0 {
			return false
		}
	}
	return utf8.Valid(m[2 : 2+int(m[1])])
}

// Base58 encodes the memo for JSON interchange (version 0x14).
func (m Memo) Base58() string {
	return base58check.Encode(m[:], base58check.VersionUserCommandMemo)
}

// ParseBase58 decodes a base58check memo.
func ParseBase58(s string) (Memo, error) {
	payload, err := base58check.Decode(s, base58check.VersionUserCommandMemo)
	if err != nil {
		return Memo{}, err
	}
	if len(payload) != Size {
		return Memo{}, errs.Decode("memo.ParseBase58", "expected %d bytes, got %d", Size, len(payload))
	}
	var m Memo
	copy(m[:], payload)
	return m, nil
}

// FromBytes copies a raw 34-byte memo.
func FromBytes(b []byte) (Memo, error) {
	if len(b) != Size {
		return Memo{}, errs.Decode("memo.FromBytes", "expected %d bytes, got %d", Size, len(b))
	}
	var m Memo
	copy(m[:], b)
	return m, nil
}
