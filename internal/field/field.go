// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// Package field represents elements of the two Pallas prime fields as
// canonical 32-byte little-endian values.
//
// Only representation and range checking live here; arithmetic belongs to the
// external signer.
package field

import (
	"math/big"

	"github.com/aplane-algo/minasign/internal/errs"
)

// Size is the byte length of a serialized element.
const Size = 32

// Element is a field element in canonical little-endian form.
type Element [Size]byte

// Field describes one of the Pallas prime fields.
type Field struct {
	name    string
	modulus *big.Int
}

var (
	// Base is the Pallas base field Fp (public key x-coordinates, signature rx).
	Base = newField("base", "40000000000000000000000000000000224698fc094cf91b992d30ed00000001")

	// Scalar is the Pallas scalar field Fq (private keys, signature s).
	Scalar = newField("scalar", "40000000000000000000000000000000224698fc0994a8dd8c46eb2100000001")
)

func newField(name, hexModulus string) Field {
	m, ok := new(big.Int).SetString(hexModulus, 16)
	if !ok {
		panic("invalid modulus for " + name + " field")
	}
	return Field{name: name, modulus: m}
}

// Name returns "base" or "scalar".
func (f Field) Name() string { return f.name }

// Modulus returns a copy of the field modulus.
func (f Field) Modulus() *big.Int { return new(big.Int).Set(f.modulus) }

// FromBig converts v into an element, rejecting negatives, values wider than
// 256 bits, and values not below the modulus.
func (f Field) FromBig(v *big.Int) (Element, error) {
	op := "field." + f.name
	if v.Sign() < 0 {
		return Element{}, errs.Decode(op, "negative value")
	}
	if v.BitLen() > 8*Size {
		return Element{}, errs.Decode(op, "value does not fit in 256 bits")
	}
	if v.Cmp(f.modulus) >= 0 {
		return Element{}, errs.Decode(op, "value is not below the field modulus")
	}
	var e Element
	v.FillBytes(e[:])
	reverse(e[:])
	return e, nil
}

// FromDecimal parses an unsigned base-10 string.
func (f Field) FromDecimal(s string) (Element, error) {
	if s == "" {
		return Element{}, errs.Parse("field."+f.name, "empty decimal string")
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return Element{}, errs.Parse("field."+f.name, "invalid decimal string %q", s)
		}
	}
	v, _ := new(big.Int).SetString(s, 10)
	return f.FromBig(v)
}

// FromBytesLE reads a little-endian value of at most Size bytes.
// Shorter inputs are zero-extended.
func (f Field) FromBytesLE(b []byte) (Element, error) {
	if len(b) > Size {
		return Element{}, errs.Decode("field."+f.name, "expected at most %d bytes, got %d", Size, len(b))
	}
	be := make([]byte, len(b))
	copy(be, b)
	reverse(be)
	return f.FromBig(new(big.Int).SetBytes(be))
}

// Contains reports whether e is a canonical element of f.
func (f Field) Contains(e Element) bool {
	return e.Big().Cmp(f.modulus) < 0
}

// One returns the multiplicative identity.
func One() Element {
	var e Element
	e[0] = 1
	return e
}

// Big returns the element as an unsigned integer.
func (e Element) Big() *big.Int {
	be := make([]byte, Size)
	copy(be, e[:])
	reverse(be)
	return new(big.Int).SetBytes(be)
}

// Decimal renders the element in base 10.
func (e Element) Decimal() string {
	return e.Big().Text(10)
}

// BytesLE returns a copy of the little-endian encoding.
func (e Element) BytesLE() []byte {
	out := make([]byte, Size)
	copy(out, e[:])
	return out
}

// BytesBE returns the big-endian encoding.
func (e Element) BytesBE() []byte {
	out := e.BytesLE()
	reverse(out)
	return out
}

// Bits returns the low n bits of the element, least significant first.
func (e Element) Bits(n int) []bool {
	bits := make([]bool, n)
	for i := 0; i < n; i++ {
		bits[i] = e[i/8]>>(uint(i)%8)&1 == 1
	}
	return bits
}

// IsZero reports whether the element is zero.
func (e Element) IsZero() bool {
	return e == Element{}
}

func reverse(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}
