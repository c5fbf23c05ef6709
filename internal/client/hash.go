// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package client

import (
	"encoding/json"

	"github.com/aplane-algo/minasign/internal/rosetta"
	"github.com/aplane-algo/minasign/internal/txhash"
	"github.com/aplane-algo/minasign/internal/util"
)

// HashPayment returns the transaction hash of sp. An empty signature hashes
// the payment with the dummy signature.
func (c *Client) HashPayment(sp *SignedPayment) (string, error) {
	payment, err := sp.Data.Payment()
	if err != nil {
		return "", err
	}
	sig, err := optionalSignature(sp.Signature)
	if err != nil {
		return "", err
	}
	hash, err := txhash.HashPayment(payment, sig, c.encoder)
	if err != nil {
		return "", err
	}
	util.Debug("payment hashed", "encoder", c.encoder.Name(), "hash", hash)
	return hash, nil
}

// HashStakeDelegation returns the transaction hash of sd.
func (c *Client) HashStakeDelegation(sd *SignedStakeDelegation) (string, error) {
	delegation, err := sd.Data.StakeDelegation()
	if err != nil {
		return "", err
	}
	sig, err := optionalSignature(sd.Signature)
	if err != nil {
		return "", err
	}
	hash, err := txhash.HashStakeDelegation(delegation, sig, c.encoder)
	if err != nil {
		return "", err
	}
	util.Debug("stake delegation hashed", "encoder", c.encoder.Name(), "hash", hash)
	return hash, nil
}

// SignedRosettaTransactionToSignedCommand converts a signed Rosetta
// transaction document into the GraphQL-ready {"data": <command>} JSON.
func (c *Client) SignedRosettaTransactionToSignedCommand(doc string) (string, error) {
	out, err := rosetta.ToGraphQL([]byte(doc))
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// HashRosettaTransaction translates doc and returns its transaction hash.
func (c *Client) HashRosettaTransaction(doc string) (string, error) {
	cmd, err := rosetta.Translate([]byte(doc))
	if err != nil {
		return "", err
	}
	return txhash.Hash(cmd, c.encoder)
}

// MarshalIndent renders v for display.
func MarshalIndent(v any) (string, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}
