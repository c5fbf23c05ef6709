// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// Package txhash computes transaction hashes:
//
//	bytes  = encoder(command)
//	s      = base58check(bytes, 0x13)
//	digest = blake2b-256(s)            (the ASCII of s, not bytes)
//	hash   = base58check([1, 32] ++ digest, 0x12)
package txhash

import (
	"golang.org/x/crypto/blake2b"

	"github.com/aplane-algo/minasign/internal/base58check"
	"github.com/aplane-algo/minasign/internal/binenc"
	"github.com/aplane-algo/minasign/internal/command"
	"github.com/aplane-algo/minasign/internal/errs"
	"github.com/aplane-algo/minasign/internal/signature"
	"github.com/aplane-algo/minasign/internal/txn"
)

// digestHeader precedes the digest: format version and digest length.
var digestHeader = [2]byte{0x01, blake2b.Size256}

// Hash encodes cmd with enc and runs the hash pipeline.
func Hash(cmd *command.SignedCommand, enc binenc.Encoder) (string, error) {
	if enc == nil {
		enc = binenc.Default()
	}
	encoded, err := enc.Encode(cmd)
	if err != nil {
		return "", err
	}
	return FromEncoded(encoded), nil
}

// FromEncoded runs the pipeline on already-encoded command bytes.
func FromEncoded(encoded []byte) string {
	wrapped := base58check.Encode(encoded, base58check.VersionSignedCommand)
	digest := blake2b.Sum256([]byte(wrapped))

	payload := make([]byte, 0, len(digestHeader)+len(digest))
	payload = append(payload, digestHeader[:]...)
	payload = append(payload, digest[:]...)
	return base58check.Encode(payload, base58check.VersionTransactionHash)
}

// Digest extracts the 32-byte digest from a transaction hash.
func Digest(hash string) ([blake2b.Size256]byte, error) {
	var out [blake2b.Size256]byte
	payload, err := base58check.Decode(hash, base58check.VersionTransactionHash)
	if err != nil {
		return out, err
	}
	if len(payload) != len(digestHeader)+blake2b.Size256 ||
		payload[0] != digestHeader[0] || payload[1] != digestHeader[1] {
		return out, errs.Decode("txhash.Digest", "malformed transaction hash payload")
	}
	copy(out[:], payload[len(digestHeader):])
	return out, nil
}

// HashPayment hashes p as signed by its sender. A nil sig uses the dummy
// signature, giving a content hash of the unsigned payment.
func HashPayment(p *txn.Payment, sig *signature.Signature, enc binenc.Encoder) (string, error) {
	return Hash(command.FromPayment(p, sigOrDummy(sig)), enc)
}

// HashStakeDelegation hashes d as signed by the delegator.
func HashStakeDelegation(d *txn.StakeDelegation, sig *signature.Signature, enc binenc.Encoder) (string, error) {
	return Hash(command.FromStakeDelegation(d, sigOrDummy(sig)), enc)
}

func sigOrDummy(sig *signature.Signature) signature.Signature {
	if sig == nil {
		return signature.Dummy()
	}
	return *sig
}
