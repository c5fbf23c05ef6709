// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// Package base58check implements the version-tagged, checksum-guarded base58
// encoding used for Mina addresses, private keys, memos and transaction ids.
//
// Layout: base58(version || payload || sha256(sha256(version || payload))[:4])
package base58check

import (
	"bytes"
	"crypto/sha256"

	"github.com/mr-tron/base58"

	"github.com/aplane-algo/minasign/internal/errs"
)

// Version bytes, one per encoded context.
const (
	VersionTransactionHash byte = 0x12
	VersionSignedCommand   byte = 0x13
	VersionUserCommandMemo byte = 0x14
	VersionPrivateKey      byte = 0x5a
	VersionSignature       byte = 0x9a
	VersionPublicKey       byte = 0xcb
)

// ChecksumSize is the number of checksum bytes appended before encoding.
const ChecksumSize = 4

// Encode prepends version, appends the checksum and base58-encodes the result.
func Encode(payload []byte, version byte) string {
	buf := make([]byte, 0, 1+len(payload)+ChecksumSize)
	buf = append(buf, version)
	buf = append(buf, payload...)
	sum := checksum(buf)
	buf = append(buf, sum[:]...)
	return base58.Encode(buf)
}

// Decode reverses Encode and returns the payload without version or checksum.
// Fails with errs.ErrDecode on invalid characters, truncated input, checksum
// mismatch or an unexpected version byte.
func Decode(s string, version byte) ([]byte, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return nil, errs.Wrap(errs.ErrDecode, "base58check.Decode", err)
	}
	if len(raw) < 1+ChecksumSize {
		return nil, errs.Decode("base58check.Decode", "input too short (%d bytes)", len(raw))
	}

	body := raw[:len(raw)-ChecksumSize]
	sum := checksum(body)
	if !bytes.Equal(sum[:], raw[len(raw)-ChecksumSize:]) {
		return nil, errs.Decode("base58check.Decode", "checksum mismatch")
	}
	if body[0] != version {
		return nil, errs.Decode("base58check.Decode", "version byte 0x%02x, expected 0x%02x", body[0], version)
	}

	payload := make([]byte, len(body)-1)
	copy(payload, body[1:])
	return payload, nil
}

// DecodeVersion decodes s without an expected version and returns it
// alongside the payload. Used by tooling that sniffs what a string encodes.
func DecodeVersion(s string) (byte, []byte, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return 0, nil, errs.Wrap(errs.ErrDecode, "base58check.DecodeVersion", err)
	}
	if len(raw) < 1+ChecksumSize {
		return 0, nil, errs.Decode("base58check.DecodeVersion", "input too short (%d bytes)", len(raw))
	}
	body := raw[:len(raw)-ChecksumSize]
	sum := checksum(body)
	if !bytes.Equal(sum[:], raw[len(raw)-ChecksumSize:]) {
		return 0, nil, errs.Decode("base58check.DecodeVersion", "checksum mismatch")
	}
	return body[0], append([]byte(nil), body[1:]...), nil
}

func checksum(data []byte) [ChecksumSize]byte {
	first := sha256.Sum256(data)
	second := sha256.Sum256(first[:])
	var out [ChecksumSize]byte
	copy(out[:], second[:ChecksumSize])
	return out
}
