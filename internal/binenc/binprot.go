// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package binenc

import (
	"bytes"
	"encoding/binary"

	"github.com/aplane-algo/minasign/internal/command"
	"github.com/aplane-algo/minasign/internal/field"
	"github.com/aplane-algo/minasign/internal/keys"
)

// bin_prot integer prefixes.
const (
	codeNeg8  = 0xff
	codeInt16 = 0xfe
	codeInt32 = 0xfd
	codeInt64 = 0xfc
)

// recordVersion precedes every versioned record.
const recordVersion = 1

// Body variant indexes.
const (
	variantPayment         = 0
	variantStakeDelegation = 1
	variantSetDelegate     = 0
)

// BinProt writes commands in a bin_prot-style layout of our own: versioned
// records, variable-length integers, 32-byte little-endian field elements and
// length-prefixed strings. It is not byte-compatible with the node, so hashes
// built on it are not on-chain transaction ids.
type BinProt struct{}

func (BinProt) Name() string { return "binprot" }

func (BinProt) Encode(cmd *command.SignedCommand) ([]byte, error) {
	tag, err := cmd.Payload.Body.Tag()
	if err != nil {
		return nil, err
	}

	w := &binProtWriter{}
	w.putVersion()

	// payload
	w.putVersion()
	cm := cmd.Payload.Common
	w.putVersion()
	w.putUint(cm.Fee)
	w.putUint(cm.FeeToken)
	w.putPublicKey(cmd.Payload.Common.FeePayer)
	w.putUint(uint64(cm.Nonce))
	w.putUint(uint64(cm.ValidUntil))
	w.putBytes(cm.Memo[:])

	switch tag {
	case command.TagPayment:
		p := cmd.Payload.Body.Payment
		w.putByte(variantPayment)
		w.putVersion()
		w.putPublicKey(p.Source)
		w.putPublicKey(p.Receiver)
		w.putUint(p.TokenID)
		w.putUint(p.Amount)
	case command.TagStakeDelegation:
		d := cmd.Payload.Body.Delegation
		w.putByte(variantStakeDelegation)
		w.putByte(variantSetDelegate)
		w.putPublicKey(d.Delegator)
		w.putPublicKey(d.NewDelegate)
	}

	w.putPublicKey(cmd.Signer)
	w.putVersion()
	w.putField(cmd.Signature.Field)
	w.putField(cmd.Signature.Scalar)

	return w.buf.Bytes(), nil
}

type binProtWriter struct {
	buf bytes.Buffer
}

func (w *binProtWriter) putByte(b byte) {
	w.buf.WriteByte(b)
}

func (w *binProtWriter) putVersion() {
	w.putInt(recordVersion)
}

// putInt writes a signed integer in the shortest bin_prot form.
func (w *binProtWriter) putInt(v int64) {
	switch {
	case v >= 0 && v < 0x80:
		w.buf.WriteByte(byte(v))
	case v >= -0x80 && v < 0:
		w.buf.WriteByte(codeNeg8)
		w.buf.WriteByte(byte(v))
	case v >= -0x8000 && v < 0x8000:
		w.buf.WriteByte(codeInt16)
		w.buf.Write(binary.LittleEndian.AppendUint16(nil, uint16(v)))
	case v >= -0x80000000 && v < 0x80000000:
		w.buf.WriteByte(codeInt32)
		w.buf.Write(binary.LittleEndian.AppendUint32(nil, uint32(v)))
	default:
		w.buf.WriteByte(codeInt64)
		w.buf.Write(binary.LittleEndian.AppendUint64(nil, uint64(v)))
	}
}

// putUint writes an unsigned integer. Values above the int64 range always take
// the full 8-byte form.
func (w *binProtWriter) putUint(v uint64) {
	if v > 1<<63-1 {
		w.buf.WriteByte(codeInt64)
		w.buf.Write(binary.LittleEndian.AppendUint64(nil, v))
		return
	}
	w.putInt(int64(v))
}

func (w *binProtWriter) putBytes(b []byte) {
	w.putUint(uint64(len(b)))
	w.buf.Write(b)
}

func (w *binProtWriter) putField(e field.Element) {
	w.buf.Write(e[:])
}

func (w *binProtWriter) putBool(b bool) {
	if b {
		w.buf.WriteByte(1)
		return
	}
	w.buf.WriteByte(0)
}

func (w *binProtWriter) putPublicKey(pk keys.PublicKey) {
	w.putVersion()
	w.putField(pk.X)
	w.putBool(pk.IsOdd)
}
