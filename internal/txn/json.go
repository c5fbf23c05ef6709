// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package txn

import (
	"github.com/aplane-algo/minasign/internal/keys"
	"github.com/aplane-algo/minasign/internal/memo"
)

// PaymentJSON is the caller-facing payment object.
type PaymentJSON struct {
	To         string  `json:"to"`
	From       string  `json:"from"`
	Fee        Number  `json:"fee"`
	Amount     Number  `json:"amount"`
	Nonce      Number  `json:"nonce"`
	Memo       *string `json:"memo,omitempty"`
	ValidUntil Number  `json:"validUntil"`
}

// DelegationJSON is the caller-facing stake delegation object.
type DelegationJSON struct {
	To         string  `json:"to"`
	From       string  `json:"from"`
	Fee        Number  `json:"fee"`
	Nonce      Number  `json:"nonce"`
	Memo       *string `json:"memo,omitempty"`
	ValidUntil Number  `json:"validUntil"`
}

// MessageJSON is the caller-facing message object.
type MessageJSON struct {
	PublicKey string `json:"publicKey"`
	Message   string `json:"message"`
}

// Payment converts to the typed form. An absent validUntil becomes
// NeverExpires.
func (j PaymentJSON) Payment() (*Payment, error) {
	to, err := keys.ParseAddress(j.To)
	if err != nil {
		return nil, err
	}
	from, err := keys.ParseAddress(j.From)
	if err != nil {
		return nil, err
	}
	fee, err := j.Fee.Uint64("fee")
	if err != nil {
		return nil, err
	}
	amount, err := j.Amount.Uint64("amount")
	if err != nil {
		return nil, err
	}
	nonce, err := j.Nonce.Uint32("nonce")
	if err != nil {
		return nil, err
	}
	validUntil, err := validUntilOrSentinel(j.ValidUntil)
	if err != nil {
		return nil, err
	}
	return &Payment{
		To:         to,
		From:       from,
		Fee:        fee,
		Amount:     amount,
		Nonce:      nonce,
		Memo:       memo.Encode(j.Memo),
		ValidUntil: validUntil,
	}, nil
}

// StakeDelegation converts to the typed form.
func (j DelegationJSON) StakeDelegation() (*StakeDelegation, error) {
	to, err := keys.ParseAddress(j.To)
	if err != nil {
		return nil, err
	}
	from, err := keys.ParseAddress(j.From)
	if err != nil {
		return nil, err
	}
	fee, err := j.Fee.Uint64("fee")
	if err != nil {
		return nil, err
	}
	nonce, err := j.Nonce.Uint32("nonce")
	if err != nil {
		return nil, err
	}
	validUntil, err := validUntilOrSentinel(j.ValidUntil)
	if err != nil {
		return nil, err
	}
	return &StakeDelegation{
		To:         to,
		From:       from,
		Fee:        fee,
		Nonce:      nonce,
		Memo:       memo.Encode(j.Memo),
		ValidUntil: validUntil,
	}, nil
}

// ToMessage converts to the typed form.
func (j MessageJSON) ToMessage() (*Message, error) {
	pk, err := keys.ParseAddress(j.PublicKey)
	if err != nil {
		return nil, err
	}
	return &Message{PublicKey: pk, Text: j.Message}, nil
}

// JSON converts back to the caller-facing form.
func (p *Payment) JSON() PaymentJSON {
	return PaymentJSON{
		To:         p.To.Address(),
		From:       p.From.Address(),
		Fee:        NumberOf(p.Fee),
		Amount:     NumberOf(p.Amount),
		Nonce:      NumberOf(uint64(p.Nonce)),
		Memo:       memoText(p.Memo),
		ValidUntil: NumberOf(uint64(p.ValidUntil)),
	}
}

// JSON converts back to the caller-facing form.
func (d *StakeDelegation) JSON() DelegationJSON {
	return DelegationJSON{
		To:         d.To.Address(),
		From:       d.From.Address(),
		Fee:        NumberOf(d.Fee),
		Nonce:      NumberOf(uint64(d.Nonce)),
		Memo:       memoText(d.Memo),
		ValidUntil: NumberOf(uint64(d.ValidUntil)),
	}
}

// JSON converts back to the caller-facing form.
func (m *Message) JSON() MessageJSON {
	return MessageJSON{PublicKey: m.PublicKey.Address(), Message: m.Text}
}

// Expiry returns ValidUntil, or ok=false for NeverExpires.
func Expiry(validUntil uint32) (uint32, bool) {
	if validUntil == NeverExpires {
		return 0, false
	}
	return validUntil, true
}

func validUntilOrSentinel(n Number) (uint32, error) {
	v, ok, err := n.OptionalUint32("validUntil")
	if err != nil {
		return 0, err
	}
	if !ok {
		return NeverExpires, nil
	}
	return v, nil
}

func memoText(m memo.Memo) *string {
	s, ok := m.Decode()
	if !ok {
		return nil
	}
	return &s
}
