// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// Package signer defines the Schnorr signing capability. The codec layer
// never performs curve arithmetic itself; key generation, signing and
// verification are delegated to a Backend chosen at startup.
package signer

import (
	"context"
	"errors"

	"github.com/aplane-algo/minasign/internal/field"
	"github.com/aplane-algo/minasign/internal/keys"
	"github.com/aplane-algo/minasign/internal/network"
	"github.com/aplane-algo/minasign/internal/roinput"
	"github.com/aplane-algo/minasign/internal/signature"
)

var (
	// ErrNoBackend is returned when signing is requested but no backend is
	// configured.
	ErrNoBackend = errors.New("no signer backend configured")

	// ErrUnknownBackend is returned for a backend name with no factory.
	ErrUnknownBackend = errors.New("unknown signer backend")
)

// SignRequest asks a backend to sign Input under Domain.
type SignRequest struct {
	Network network.ID
	Domain  string
	Input   *roinput.Input
	Keypair *keys.Keypair
}

// VerifyRequest asks a backend to check Signature over Input.
type VerifyRequest struct {
	Network   network.ID
	Domain    string
	Input     *roinput.Input
	PublicKey keys.PublicKey
	Signature signature.Signature
}

// NewSignRequest builds a request from a hashable value.
func NewSignRequest(kp *keys.Keypair, h roinput.Hashable, id network.ID) SignRequest {
	return SignRequest{
		Network: id,
		Domain:  h.DomainString(id),
		Input:   h.ROInput(),
		Keypair: kp,
	}
}

// NewVerifyRequest builds a request from a hashable value.
func NewVerifyRequest(pk keys.PublicKey, h roinput.Hashable, sig signature.Signature, id network.ID) VerifyRequest {
	return VerifyRequest{
		Network:   id,
		Domain:    h.DomainString(id),
		Input:     h.ROInput(),
		PublicKey: pk,
		Signature: sig,
	}
}

// Backend performs the curve operations.
type Backend interface {
	Name() string

	GenerateKeypair(ctx context.Context) (*keys.Keypair, error)
	DerivePublicKey(ctx context.Context, secret field.Element) (keys.PublicKey, error)
	// ValidateKeypair reports whether Public == G * Secret.
	ValidateKeypair(ctx context.Context, kp *keys.Keypair) (bool, error)

	Sign(ctx context.Context, req SignRequest) (signature.Signature, error)
	Verify(ctx context.Context, req VerifyRequest) (bool, error)

	Close() error
}
