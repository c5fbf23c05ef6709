// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// Package txn defines the signable transaction kinds and their canonical
// random-oracle encodings.
//
// The field order of each encoding is fixed by the protocol. Payment and
// StakeDelegation append the sender's x-coordinate twice; that duplication
// is part of the signed pre-image and must be kept.
package txn

import (
	"math"

	"github.com/aplane-algo/minasign/internal/keys"
	"github.com/aplane-algo/minasign/internal/memo"
	"github.com/aplane-algo/minasign/internal/network"
	"github.com/aplane-algo/minasign/internal/roinput"
)

const (
	// NeverExpires is the ValidUntil sentinel for "no expiry".
	NeverExpires uint32 = math.MaxUint32

	// DefaultTokenID is the only token; used for both fee token and token id.
	DefaultTokenID uint64 = 1
)

// Transaction tag bits, appended after the memo.
var (
	PaymentTag    = [3]bool{false, false, false}
	DelegationTag = [3]bool{false, false, true}
)

// Payment transfers Amount from From to To.
type Payment struct {
	To         keys.PublicKey
	From       keys.PublicKey
	Fee        uint64
	Amount     uint64
	Nonce      uint32
	Memo       memo.Memo
	ValidUntil uint32
}

// StakeDelegation sets From's delegate to To.
type StakeDelegation struct {
	To         keys.PublicKey // new delegate
	From       keys.PublicKey // delegator
	Fee        uint64
	Nonce      uint32
	Memo       memo.Memo
	ValidUntil uint32
}

// Message is an arbitrary UTF-8 string signed by PublicKey.
type Message struct {
	PublicKey keys.PublicKey
	Text      string
}

// ROInput returns the canonical payment encoding.
func (p *Payment) ROInput() *roinput.Input {
	return userCommandInput(p.From, p.To, p.Fee, p.Nonce, p.ValidUntil, p.Memo, PaymentTag, p.Amount)
}

// DomainString returns the network's signature domain.
func (p *Payment) DomainString(id network.ID) string {
	return id.DomainString()
}

// ROInput returns the canonical delegation encoding. The amount slot is zero.
func (d *StakeDelegation) ROInput() *roinput.Input {
	return userCommandInput(d.From, d.To, d.Fee, d.Nonce, d.ValidUntil, d.Memo, DelegationTag, 0)
}

// DomainString returns the network's signature domain.
func (d *StakeDelegation) DomainString(id network.ID) string {
	return id.DomainString()
}

// ROInput expands the message into 4-bit nibbles, high nibble first, each
// nibble most significant bit first.
func (m *Message) ROInput() *roinput.Input {
	in := roinput.New()
	for _, b := range []byte(m.Text) {
		for _, nibble := range [2]byte{b >> 4, b & 0x0f} {
			in.AppendBools(
				nibble&0x8 != 0,
				nibble&0x4 != 0,
				nibble&0x2 != 0,
				nibble&0x1 != 0,
			)
		}
	}
	return in
}

// DomainString returns the network's signature domain.
func (m *Message) DomainString(id network.ID) string {
	return id.DomainString()
}

func userCommandInput(
	from, to keys.PublicKey,
	fee uint64,
	nonce, validUntil uint32,
	m memo.Memo,
	tag [3]bool,
	amount uint64,
) *roinput.Input {
	in := roinput.New()

	in.AppendField(from.X)
	in.AppendField(from.X)
	in.AppendField(to.X)

	in.AppendU64(fee)
	in.AppendU64(DefaultTokenID) // fee token
	in.AppendBool(from.IsOdd)
	in.AppendU32(nonce)
	in.AppendU32(validUntil)
	in.AppendBytes(m[:])

	in.AppendBools(tag[:]...)

	in.AppendBool(from.IsOdd)
	in.AppendBool(to.IsOdd)
	in.AppendU64(DefaultTokenID) // token id
	in.AppendU64(amount)
	in.AppendBool(false) // token locked

	return in
}

// Compile-time interface checks
var (
	_ roinput.Hashable = (*Payment)(nil)
	_ roinput.Hashable = (*StakeDelegation)(nil)
	_ roinput.Hashable = (*Message)(nil)
)
