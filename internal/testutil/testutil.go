// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// Package testutil provides reusable test infrastructure and utilities.
package testutil

import (
	"encoding/binary"
	"math/big"
	"os"
	"strings"
	"testing"

	"golang.org/x/crypto/blake2b"

	"github.com/aplane-algo/minasign/internal/field"
	"github.com/aplane-algo/minasign/internal/keys"
)

// Mainnet addresses from block 117896, used where a real encoding matters.
const (
	MainnetReceiver = "B62qnsHmPQpZSKnrp978ZHFYwCJFBZtY1qE3UD97dd7taQarEV6ZpuG"
	MainnetSender   = "B62qnqEqsuH7kST9ZrbksRzihXD2tgHfvq9TF73XKAMj47gisT9xsJ5"
	RosettaAccount  = "B62qnzbXmRNo9q32n4SNu2mpB8e7FYYLH8NmaX6oFCBYjjQ8SbD7uzV"
)

// ScalarFromSeed derives a deterministic secret scalar.
func ScalarFromSeed(seed uint64) field.Element {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], seed)
	digest := blake2b.Sum256(append([]byte("minasign-test-secret"), buf[:]...))
	return reduce(digest[:], field.Scalar)
}

// PublicKeyFor maps a secret to a stable on-curve public key. It stands in
// for scalar multiplication in tests and is what FakeBackend derives.
func PublicKeyFor(secret field.Element) keys.PublicKey {
	digest := blake2b.Sum256(append([]byte("minasign-test-public"), secret[:]...))
	x := reduce(digest[:], field.Base)
	one := big.NewInt(1)
	for {
		pk := keys.PublicKey{X: x, IsOdd: digest[0]&1 == 1}
		if pk.Validate() == nil {
			return pk
		}
		next := new(big.Int).Add(x.Big(), one)
		next.Mod(next, field.Base.Modulus())
		x, _ = field.Base.FromBig(next)
	}
}

// Keypair returns a deterministic keypair consistent with FakeBackend.
func Keypair(seed uint64) *keys.Keypair {
	secret := ScalarFromSeed(seed)
	return &keys.Keypair{Secret: secret, Public: PublicKeyFor(secret)}
}

// ValidTestAddress returns a deterministic valid address.
// The index allows generating different addresses.
func ValidTestAddress(index int) string {
	return Keypair(uint64(index)).Public.Address()
}

// MustParseAddress decodes an address, failing the test on error.
func MustParseAddress(t *testing.T, addr string) keys.PublicKey {
	t.Helper()

	pk, err := keys.ParseAddress(addr)
	if err != nil {
		t.Fatalf("Failed to parse address %s: %v", addr, err)
	}
	return pk
}

// TempFile creates a temporary file with the given content, returning the path.
// The file is automatically cleaned up when the test completes.
func TempFile(t *testing.T, content []byte) string {
	t.Helper()

	tmpFile, err := os.CreateTemp(t.TempDir(), "testfile-*")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}

	if _, err := tmpFile.Write(content); err != nil {
		_ = tmpFile.Close()
		t.Fatalf("Failed to write temp file: %v", err)
	}

	_ = tmpFile.Close()
	return tmpFile.Name()
}

// AssertError checks that an error matches expected criteria.
func AssertError(t *testing.T, err error, shouldError bool, msgContains string) {
	t.Helper()

	if !shouldError {
		if err != nil {
			t.Errorf("Unexpected error: %v", err)
		}
		return
	}
	if err == nil {
		t.Error("Expected an error but got nil")
		return
	}
	if msgContains != "" && !strings.Contains(err.Error(), msgContains) {
		t.Errorf("Error message %q should contain %q", err.Error(), msgContains)
	}
}

func reduce(b []byte, f field.Field) field.Element {
	v := new(big.Int).SetBytes(b)
	v.Mod(v, f.Modulus())
	e, err := f.FromBig(v)
	if err != nil {
		panic(err)
	}
	return e
}
