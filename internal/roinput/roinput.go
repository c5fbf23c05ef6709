// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// Package roinput builds random-oracle inputs: the exact ordered sequence of
// typed values a signer hashes together with a domain-separation string.
//
// The sequence is kept as tagged entries rather than a flat buffer so that
// the append order is an explicit, inspectable contract. Signer backends may
// consume the entries directly or use the legacy packed view (Fields + Bits).
package roinput

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/aplane-algo/minasign/internal/field"
	"github.com/aplane-algo/minasign/internal/network"
)

// Kind tags an entry.
type Kind uint8

const (
	KindField Kind = iota + 1
	KindU32
	KindU64
	KindBool
	KindBytes
)

// FieldBits is the number of bits a base-field element contributes when
// packed as bits.
const FieldBits = 255

func (k Kind) String() string {
	switch k {
	case KindField:
		return "field"
	case KindU32:
		return "u32"
	case KindU64:
		return "u64"
	case KindBool:
		return "bool"
	case KindBytes:
		return "bytes"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Entry is one typed value. Exactly one payload field is meaningful,
// selected by Kind.
type Entry struct {
	Kind  Kind
	Field field.Element
	U64   uint64 // also holds U32 values
	Bool  bool
	Bytes []byte
}

// String renders the entry compactly for diagnostics and golden tests.
func (e Entry) String() string {
	switch e.Kind {
	case KindField:
		return "field:" + e.Field.Decimal()
	case KindU32, KindU64:
		return fmt.Sprintf("%s:%d", e.Kind, e.U64)
	case KindBool:
		if e.Bool {
			return "bool:1"
		}
		return "bool:0"
	case KindBytes:
		return fmt.Sprintf("bytes:%x", e.Bytes)
	default:
		return e.Kind.String()
	}
}

// Input accumulates entries in append order.
// The zero value is ready to use.
type Input struct {
	entries []Entry
}

// New returns an empty input.
func New() *Input {
	return &Input{}
}

// AppendField appends a base-field element.
func (in *Input) AppendField(e field.Element) *Input {
	in.entries = append(in.entries, Entry{Kind: KindField, Field: e})
	return in
}

// AppendU32 appends a 32-bit unsigned integer.
func (in *Input) AppendU32(v uint32) *Input {
	in.entries = append(in.entries, Entry{Kind: KindU32, U64: uint64(v)})
	return in
}

// AppendU64 appends a 64-bit unsigned integer.
func (in *Input) AppendU64(v uint64) *Input {
	in.entries = append(in.entries, Entry{Kind: KindU64, U64: v})
	return in
}

// AppendBool appends a single bit.
func (in *Input) AppendBool(b bool) *Input {
	in.entries = append(in.entries, Entry{Kind: KindBool, Bool: b})
	return in
}

// AppendBools appends each bit in order.
func (in *Input) AppendBools(bits ...bool) *Input {
	for _, b := range bits {
		in.AppendBool(b)
	}
	return in
}

// AppendBytes appends a raw byte string. The slice is copied.
func (in *Input) AppendBytes(b []byte) *Input {
	cp := make([]byte, len(b))
	copy(cp, b)
	in.entries = append(in.entries, Entry{Kind: KindBytes, Bytes: cp})
	return in
}

// Len returns the number of entries.
func (in *Input) Len() int {
	return len(in.entries)
}

// Entries returns a copy of the entry sequence.
func (in *Input) Entries() []Entry {
	out := make([]Entry, len(in.entries))
	copy(out, in.entries)
	return out
}

// Fields returns the field entries in append order.
func (in *Input) Fields() []field.Element {
	var out []field.Element
	for _, e := range in.entries {
		if e.Kind == KindField {
			out = append(out, e.Field)
		}
	}
	return out
}

// Bits returns every non-field entry as bits in append order. Integers and
// bytes are expanded least significant bit first.
func (in *Input) Bits() []bool {
	var out []bool
	for _, e := range in.entries {
		switch e.Kind {
		case KindU32:
			out = appendUintBits(out, e.U64, 32)
		case KindU64:
			out = appendUintBits(out, e.U64, 64)
		case KindBool:
			out = append(out, e.Bool)
		case KindBytes:
			for _, b := range e.Bytes {
				out = appendUintBits(out, uint64(b), 8)
			}
		}
	}
	return out
}

// BitString renders Bits as a string of '0' and '1'.
func (in *Input) BitString() string {
	var sb strings.Builder
	for _, b := range in.Bits() {
		if b {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// Serialize returns a deterministic byte rendering of the entries, each
// prefixed by its kind. Intended for digesting and equality checks, not as
// a wire format.
func (in *Input) Serialize() []byte {
	var out []byte
	for _, e := range in.entries {
		out = append(out, byte(e.Kind))
		switch e.Kind {
		case KindField:
			out = append(out, e.Field[:]...)
		case KindU32:
			out = binary.LittleEndian.AppendUint32(out, uint32(e.U64))
		case KindU64:
			out = binary.LittleEndian.AppendUint64(out, e.U64)
		case KindBool:
			if e.Bool {
				out = append(out, 1)
			} else {
				out = append(out, 0)
			}
		case KindBytes:
			out = binary.LittleEndian.AppendUint32(out, uint32(len(e.Bytes)))
			out = append(out, e.Bytes...)
		}
	}
	return out
}

func appendUintBits(out []bool, v uint64, n int) []bool {
	for i := 0; i < n; i++ {
		out = append(out, v>>uint(i)&1 == 1)
	}
	return out
}

// Hashable is anything with a canonical random-oracle input and a
// per-network domain string.
type Hashable interface {
	ROInput() *Input
	DomainString(id network.ID) string
}
