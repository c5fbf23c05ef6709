// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// Package keys handles Mina public keys, private keys and keypairs in their
// external encodings.
//
// Public keys are compressed Pallas points: the x-coordinate plus the parity
// of y. Curve arithmetic (deriving a public key, validating a keypair) is
// delegated to the signer backend; this package only checks what can be
// checked from the encoding itself.
package keys

import (
	"encoding/hex"
	"math/big"
	"strings"

	"github.com/aplane-algo/minasign/internal/base58check"
	"github.com/aplane-algo/minasign/internal/errs"
	"github.com/aplane-algo/minasign/internal/field"
)

// Address payload layout after the 0xcb version byte:
// [0x01 point version][0x01 compressed version][x: 32 bytes LE][is_odd]
const (
	addressPayloadSize = 2 + field.Size + 1
	pointVersion       = 0x01
	compressedVersion  = 0x01

	// AddressLength is the length of a base58check address string.
	AddressLength = 55
)

// curveB is the Pallas curve constant in y² = x³ + 5.
var curveB = big.NewInt(5)

// PublicKey is a compressed curve point.
type PublicKey struct {
	X     field.Element
	IsOdd bool
}

// ParseAddress decodes a base58check address into a public key.
// Fails with errs.ErrDecode on encoding problems and errs.ErrKey when the
// x-coordinate is not on the curve.
func ParseAddress(address string) (PublicKey, error) {
	payload, err := base58check.Decode(address, base58check.VersionPublicKey)
	if err != nil {
		return PublicKey{}, err
	}
	if len(payload) != addressPayloadSize {
		return PublicKey{}, errs.Decode("keys.ParseAddress", "invalid length: %d", len(payload)+1)
	}
	if payload[0] != pointVersion || payload[1] != compressedVersion {
		return PublicKey{}, errs.Decode("keys.ParseAddress", "unexpected header %x", payload[:2])
	}

	var pk PublicKey
	copy(pk.X[:], payload[2:2+field.Size])
	pk.IsOdd = payload[addressPayloadSize-1] != 0

	if err := pk.Validate(); err != nil {
		return PublicKey{}, err
	}
	return pk, nil
}

// MustParseAddress is ParseAddress for compile-time constants.
// Panics on error.
func MustParseAddress(address string) PublicKey {
	pk, err := ParseAddress(address)
	if err != nil {
		panic(err)
	}
	return pk
}

// Validate checks that X is a canonical base-field element with a point on
// the curve above it.
func (pk PublicKey) Validate() error {
	if !field.Base.Contains(pk.X) {
		return errs.Key("keys.PublicKey", "x-coordinate is not a field element")
	}
	p := field.Base.Modulus()
	x := pk.X.Big()
	rhs := new(big.Int).Exp(x, big.NewInt(3), p)
	rhs.Add(rhs, curveB)
	rhs.Mod(rhs, p)
	if big.Jacobi(rhs, p) < 0 {
		return errs.Key("keys.PublicKey", "x-coordinate is not on the curve")
	}
	return nil
}

// Address encodes the key as a base58check address.
func (pk PublicKey) Address() string {
	payload := make([]byte, 0, addressPayloadSize)
	payload = append(payload, pointVersion, compressedVersion)
	payload = append(payload, pk.X[:]...)
	if pk.IsOdd {
		payload = append(payload, 1)
	} else {
		payload = append(payload, 0)
	}
	return base58check.Encode(payload, base58check.VersionPublicKey)
}

func (pk PublicKey) String() string {
	return pk.Address()
}

// Compressed returns the 32-byte compressed point: X little-endian with the
// odd flag in the most significant bit of the last byte.
func (pk PublicKey) Compressed() [field.Size]byte {
	out := pk.X
	if pk.IsOdd {
		out[field.Size-1] |= 0x80
	}
	return out
}

// FromCompressed splits a compressed point into X and the odd flag.
func FromCompressed(c [field.Size]byte) (PublicKey, error) {
	pk := PublicKey{IsOdd: c[field.Size-1]&0x80 != 0}
	copy(pk.X[:], c[:])
	pk.X[field.Size-1] &^= 0x80
	if err := pk.Validate(); err != nil {
		return PublicKey{}, err
	}
	return pk, nil
}

// AddressToCompressed decodes an address straight to its compressed point.
func AddressToCompressed(address string) ([field.Size]byte, error) {
	pk, err := ParseAddress(address)
	if err != nil {
		return [field.Size]byte{}, err
	}
	return pk.Compressed(), nil
}

// CompressedToAddress is the inverse of AddressToCompressed.
func CompressedToAddress(c [field.Size]byte) (string, error) {
	pk, err := FromCompressed(c)
	if err != nil {
		return "", err
	}
	return pk.Address(), nil
}

// PublicKeyToRaw returns the compressed point of an address as upper-case hex.
func PublicKeyToRaw(address string) (string, error) {
	c, err := AddressToCompressed(address)
	if err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(c[:])), nil
}

// RawToPublicKey parses the hex form produced by PublicKeyToRaw.
func RawToPublicKey(raw string) (PublicKey, error) {
	b, err := hex.DecodeString(raw)
	if err != nil {
		return PublicKey{}, errs.Wrap(errs.ErrDecode, "keys.RawToPublicKey", err)
	}
	if len(b) != field.Size {
		return PublicKey{}, errs.Decode("keys.RawToPublicKey", "expected %d bytes, got %d", field.Size, len(b))
	}
	var c [field.Size]byte
	copy(c[:], b)
	return FromCompressed(c)
}
