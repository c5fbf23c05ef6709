// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package keys

import (
	"github.com/aplane-algo/minasign/internal/base58check"
	"github.com/aplane-algo/minasign/internal/errs"
	"github.com/aplane-algo/minasign/internal/field"
)

// privateKeyFormat is the serialization version byte preceding the scalar.
const privateKeyFormat = 0x01

// Keypair pairs a secret scalar with its public key.
// The relation Public == G*Secret is not checked here; see signer.Backend.
type Keypair struct {
	Secret field.Element
	Public PublicKey
}

// ParsePrivateKey decodes a base58check private key into its scalar.
func ParsePrivateKey(s string) (field.Element, error) {
	payload, err := base58check.Decode(s, base58check.VersionPrivateKey)
	if err != nil {
		return field.Element{}, err
	}
	if len(payload) != 1+field.Size {
		return field.Element{}, errs.Decode("keys.ParsePrivateKey", "invalid length: %d", len(payload)+1)
	}
	if payload[0] != privateKeyFormat {
		return field.Element{}, errs.Decode("keys.ParsePrivateKey", "unexpected format byte 0x%02x", payload[0])
	}
	secret, err := field.Scalar.FromBytesLE(payload[1:])
	if err != nil {
		return field.Element{}, errs.Wrap(errs.ErrKey, "keys.ParsePrivateKey", err)
	}
	return secret, nil
}

// EncodePrivateKey encodes a scalar as a base58check private key.
func EncodePrivateKey(secret field.Element) string {
	payload := make([]byte, 0, 1+field.Size)
	payload = append(payload, privateKeyFormat)
	payload = append(payload, secret[:]...)
	return base58check.Encode(payload, base58check.VersionPrivateKey)
}

// NewKeypair pairs an externally supplied address with a decoded private key.
func NewKeypair(privateKey, address string) (*Keypair, error) {
	secret, err := ParsePrivateKey(privateKey)
	if err != nil {
		return nil, err
	}
	pub, err := ParseAddress(address)
	if err != nil {
		return nil, err
	}
	return &Keypair{Secret: secret, Public: pub}, nil
}

// PrivateKey returns the base58check private key.
func (kp *Keypair) PrivateKey() string {
	return EncodePrivateKey(kp.Secret)
}

// Zero wipes the secret scalar.
func (kp *Keypair) Zero() {
	if kp == nil {
		return
	}
	for i := range kp.Secret {
		kp.Secret[i] = 0
	}
}

// Encoded is the string form of a keypair exchanged with callers.
type Encoded struct {
	PrivateKey string `json:"privateKey"`
	PublicKey  string `json:"publicKey"`
}

// Encode returns the string form.
func (kp *Keypair) Encode() Encoded {
	return Encoded{PrivateKey: kp.PrivateKey(), PublicKey: kp.Public.Address()}
}

// Decode parses the string form.
func (e Encoded) Decode() (*Keypair, error) {
	return NewKeypair(e.PrivateKey, e.PublicKey)
}
