// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// Package signature converts Schnorr signature values between their
// interchange forms: decimal strings, little-endian byte pairs, and the
// concatenated big-endian hex used by Rosetta.
package signature

import (
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/aplane-algo/minasign/internal/base58check"
	"github.com/aplane-algo/minasign/internal/errs"
	"github.com/aplane-algo/minasign/internal/field"
)

// Signature is the pair (r_x, s). Field lives in the base field and Scalar
// in the scalar field.
type Signature struct {
	Field  field.Element
	Scalar field.Element
}

// Dummy is the (1, 1) placeholder used when hashing unsigned commands.
func Dummy() Signature {
	return Signature{Field: field.One(), Scalar: field.One()}
}

// New validates both halves against their moduli.
func New(f, s field.Element) (Signature, error) {
	if !field.Base.Contains(f) {
		return Signature{}, errs.Decode("signature.New", "field component is not below the base modulus")
	}
	if !field.Scalar.Contains(s) {
		return Signature{}, errs.Decode("signature.New", "scalar component is not below the scalar modulus")
	}
	return Signature{Field: f, Scalar: s}, nil
}

// FromDecimalPair parses both components from base-10 strings.
func FromDecimalPair(fieldStr, scalarStr string) (Signature, error) {
	f, err := field.Base.FromDecimal(fieldStr)
	if err != nil {
		return Signature{}, err
	}
	s, err := field.Scalar.FromDecimal(scalarStr)
	if err != nil {
		return Signature{}, err
	}
	return Signature{Field: f, Scalar: s}, nil
}

// ToDecimalPair renders both components in base 10.
func (sig Signature) ToDecimalPair() (fieldStr, scalarStr string) {
	return sig.Field.Decimal(), sig.Scalar.Decimal()
}

// Bytes returns both components little-endian.
func (sig Signature) Bytes() (f, s [field.Size]byte) {
	return sig.Field, sig.Scalar
}

// FromBytes builds a signature from little-endian components.
func FromBytes(f, s [field.Size]byte) (Signature, error) {
	return New(f, s)
}

// FromHex parses the Rosetta form: field then scalar, each big-endian,
// concatenated. The string must split into two equal halves of at most
// 32 bytes each; shorter halves are zero-extended.
func FromHex(h string) (Signature, error) {
	const op = "signature.FromHex"
	if len(h) == 0 || len(h)%4 != 0 {
		return Signature{}, errs.Decode(op, "hex length %d does not split into two whole-byte halves", len(h))
	}
	mid := len(h) / 2
	f, err := halfFromHex(op, h[:mid], field.Base)
	if err != nil {
		return Signature{}, err
	}
	s, err := halfFromHex(op, h[mid:], field.Scalar)
	if err != nil {
		return Signature{}, err
	}
	return Signature{Field: f, Scalar: s}, nil
}

func halfFromHex(op, h string, fld field.Field) (field.Element, error) {
	b, err := hex.DecodeString(h)
	if err != nil {
		return field.Element{}, errs.Wrap(errs.ErrDecode, op, err)
	}
	reverse(b)
	return fld.FromBytesLE(b)
}

// Hex renders the Rosetta form (lower-case, 128 characters).
func (sig Signature) Hex() string {
	var sb strings.Builder
	sb.WriteString(hex.EncodeToString(sig.Field.BytesBE()))
	sb.WriteString(hex.EncodeToString(sig.Scalar.BytesBE()))
	return sb.String()
}

// Base58 encodes field‖scalar (little-endian) with the signature version
// byte, prefixed by the format byte.
func (sig Signature) Base58() string {
	payload := make([]byte, 0, 1+2*field.Size)
	payload = append(payload, 0x01)
	payload = append(payload, sig.Field[:]...)
	payload = append(payload, sig.Scalar[:]...)
	return base58check.Encode(payload, base58check.VersionSignature)
}

// ParseBase58 reverses Base58.
func ParseBase58(s string) (Signature, error) {
	const op = "signature.ParseBase58"
	payload, err := base58check.Decode(s, base58check.VersionSignature)
	if err != nil {
		return Signature{}, err
	}
	if len(payload) != 1+2*field.Size || payload[0] != 0x01 {
		return Signature{}, errs.Decode(op, "malformed signature payload")
	}
	var f, sc field.Element
	copy(f[:], payload[1:1+field.Size])
	copy(sc[:], payload[1+field.Size:])
	return New(f, sc)
}

// Equal reports whether both components match.
func (sig Signature) Equal(other Signature) bool {
	return sig.Field == other.Field && sig.Scalar == other.Scalar
}

// JSON is the interchange form {"field": "...", "scalar": "..."}.
type JSON struct {
	Field  string `json:"field"`
	Scalar string `json:"scalar"`
}

// JSON returns the decimal interchange form.
func (sig Signature) JSON() JSON {
	f, s := sig.ToDecimalPair()
	return JSON{Field: f, Scalar: s}
}

// Signature parses the decimal interchange form.
func (j JSON) Signature() (Signature, error) {
	return FromDecimalPair(j.Field, j.Scalar)
}

// MarshalJSON emits the decimal interchange form.
func (sig Signature) MarshalJSON() ([]byte, error) {
	return json.Marshal(sig.JSON())
}

// UnmarshalJSON accepts the decimal interchange form.
func (sig *Signature) UnmarshalJSON(data []byte) error {
	var j JSON
	if err := json.Unmarshal(data, &j); err != nil {
		return errs.Wrap(errs.ErrParse, "signature.UnmarshalJSON", err)
	}
	parsed, err := j.Signature()
	if err != nil {
		return err
	}
	*sig = parsed
	return nil
}

func reverse(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}
