// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package testutil

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/crypto/blake2b"

	"github.com/aplane-algo/minasign/internal/errs"
	"github.com/aplane-algo/minasign/internal/field"
	"github.com/aplane-algo/minasign/internal/keys"
	"github.com/aplane-algo/minasign/internal/roinput"
	"github.com/aplane-algo/minasign/internal/signature"
	"github.com/aplane-algo/minasign/internal/signer"
)

// ErrBackendClosed is returned by FakeBackend after Close.
var ErrBackendClosed = errors.New("fake backend closed")

// FakeBackend is a deterministic stand-in for a Schnorr signer. Signatures
// are keyed hashes of (domain, input, public key), so they verify without
// the secret and change whenever any signed byte changes. They are NOT
// cryptographically meaningful.
type FakeBackend struct {
	mu       sync.Mutex
	nextSeed uint64
	closed   bool

	// Calls counts invocations per method name.
	Calls map[string]int
}

// NewFakeBackend returns a backend whose generated keys start at seed 1000.
func NewFakeBackend() *FakeBackend {
	return &FakeBackend{nextSeed: 1000, Calls: make(map[string]int)}
}

func (f *FakeBackend) Name() string { return "fake" }

func (f *FakeBackend) enter(method string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrBackendClosed
	}
	f.Calls[method]++
	return nil
}

// CallCount returns how many times method was invoked.
func (f *FakeBackend) CallCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Calls[method]
}

func (f *FakeBackend) GenerateKeypair(ctx context.Context) (*keys.Keypair, error) {
	if err := f.enter("generate_keypair"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	seed := f.nextSeed
	f.nextSeed++
	f.mu.Unlock()
	return Keypair(seed), nil
}

func (f *FakeBackend) DerivePublicKey(ctx context.Context, secret field.Element) (keys.PublicKey, error) {
	if err := f.enter("derive_public_key"); err != nil {
		return keys.PublicKey{}, err
	}
	if !field.Scalar.Contains(secret) {
		return keys.PublicKey{}, errs.Key("fake.DerivePublicKey", "secret is not a canonical scalar")
	}
	return PublicKeyFor(secret), nil
}

func (f *FakeBackend) ValidateKeypair(ctx context.Context, kp *keys.Keypair) (bool, error) {
	if err := f.enter("validate_keypair"); err != nil {
		return false, err
	}
	return kp.Public == PublicKeyFor(kp.Secret), nil
}

func (f *FakeBackend) Sign(ctx context.Context, req signer.SignRequest) (signature.Signature, error) {
	if err := f.enter("sign"); err != nil {
		return signature.Signature{}, err
	}
	if req.Keypair == nil || req.Keypair.Public != PublicKeyFor(req.Keypair.Secret) {
		return signature.Signature{}, errs.Key("fake.Sign", "keypair does not match")
	}
	return FakeSignature(req.Domain, req.Input, req.Keypair.Public), nil
}

func (f *FakeBackend) Verify(ctx context.Context, req signer.VerifyRequest) (bool, error) {
	if err := f.enter("verify"); err != nil {
		return false, err
	}
	return FakeSignature(req.Domain, req.Input, req.PublicKey).Equal(req.Signature), nil
}

func (f *FakeBackend) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// FakeSignature is the value FakeBackend produces for the given inputs.
func FakeSignature(domain string, in *roinput.Input, pk keys.PublicKey) signature.Signature {
	msg := make([]byte, 0, 256)
	msg = append(msg, byte(len(domain)))
	msg = append(msg, domain...)
	msg = append(msg, pk.X[:]...)
	if pk.IsOdd {
		msg = append(msg, 1)
	} else {
		msg = append(msg, 0)
	}
	msg = append(msg, in.Serialize()...)

	fd := blake2b.Sum256(append([]byte("minasign-test-field"), msg...))
	sd := blake2b.Sum256(append([]byte("minasign-test-scalar"), msg...))
	return signature.Signature{
		Field:  reduce(fd[:], field.Base),
		Scalar: reduce(sd[:], field.Scalar),
	}
}

var _ signer.Backend = (*FakeBackend)(nil)
