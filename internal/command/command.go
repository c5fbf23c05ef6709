// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// Package command defines the canonical signed-command envelope that wraps
// a payment or stake delegation together with its signer and signature.
// This is the form that is binary-encoded for hashing and submitted to
// GraphQL endpoints.
package command

import (
	"errors"

	"github.com/aplane-algo/minasign/internal/keys"
	"github.com/aplane-algo/minasign/internal/memo"
	"github.com/aplane-algo/minasign/internal/signature"
	"github.com/aplane-algo/minasign/internal/txn"
)

// Body tags, as they appear in the interchange JSON.
const (
	TagPayment         = "Payment"
	TagStakeDelegation = "Stake_delegation"
	TagSetDelegate     = "Set_delegate"
)

var (
	// ErrUnknownBody is returned for a body that is neither a payment nor
	// a stake delegation.
	ErrUnknownBody = errors.New("unknown command body")
)

// Common holds the fields shared by every user command.
type Common struct {
	Fee        uint64
	FeeToken   uint64
	Nonce      uint32
	ValidUntil uint32
	FeePayer   keys.PublicKey
	Memo       memo.Memo
}

// PaymentBody is the payment variant.
type PaymentBody struct {
	Source   keys.PublicKey
	Receiver keys.PublicKey
	TokenID  uint64
	Amount   uint64
}

// DelegationBody is the Set_delegate variant of a stake delegation.
type DelegationBody struct {
	Delegator   keys.PublicKey
	NewDelegate keys.PublicKey
}

// Body holds exactly one variant.
type Body struct {
	Payment    *PaymentBody
	Delegation *DelegationBody
}

// Tag returns the body's variant tag.
func (b Body) Tag() (string, error) {
	switch {
	case b.Payment != nil && b.Delegation == nil:
		return TagPayment, nil
	case b.Delegation != nil && b.Payment == nil:
		return TagStakeDelegation, nil
	default:
		return "", ErrUnknownBody
	}
}

// Payload is the signed part of a command.
type Payload struct {
	Common Common
	Body   Body
}

// SignedCommand is a payload plus the signer's key and signature.
type SignedCommand struct {
	Payload   Payload
	Signer    keys.PublicKey
	Signature signature.Signature
}

// FromPayment wraps p. The fee payer and signer are the sender.
func FromPayment(p *txn.Payment, sig signature.Signature) *SignedCommand {
	return &SignedCommand{
		Payload: Payload{
			Common: common(p.From, p.Fee, p.Nonce, p.ValidUntil, p.Memo),
			Body: Body{Payment: &PaymentBody{
				Source:   p.From,
				Receiver: p.To,
				TokenID:  txn.DefaultTokenID,
				Amount:   p.Amount,
			}},
		},
		Signer:    p.From,
		Signature: sig,
	}
}

// FromStakeDelegation wraps d. The fee payer and signer are the delegator.
func FromStakeDelegation(d *txn.StakeDelegation, sig signature.Signature) *SignedCommand {
	return &SignedCommand{
		Payload: Payload{
			Common: common(d.From, d.Fee, d.Nonce, d.ValidUntil, d.Memo),
			Body: Body{Delegation: &DelegationBody{
				Delegator:   d.From,
				NewDelegate: d.To,
			}},
		},
		Signer:    d.From,
		Signature: sig,
	}
}

func common(feePayer keys.PublicKey, fee uint64, nonce, validUntil uint32, m memo.Memo) Common {
	return Common{
		Fee:        fee,
		FeeToken:   txn.DefaultTokenID,
		Nonce:      nonce,
		ValidUntil: validUntil,
		FeePayer:   feePayer,
		Memo:       m,
	}
}

// Payment recovers the payment carried by c.
func (c *SignedCommand) Payment() (*txn.Payment, error) {
	b := c.Payload.Body.Payment
	if b == nil {
		return nil, ErrUnknownBody
	}
	cm := c.Payload.Common
	return &txn.Payment{
		To:         b.Receiver,
		From:       b.Source,
		Fee:        cm.Fee,
		Amount:     b.Amount,
		Nonce:      cm.Nonce,
		Memo:       cm.Memo,
		ValidUntil: cm.ValidUntil,
	}, nil
}

// StakeDelegation recovers the delegation carried by c.
func (c *SignedCommand) StakeDelegation() (*txn.StakeDelegation, error) {
	b := c.Payload.Body.Delegation
	if b == nil {
		return nil, ErrUnknownBody
	}
	cm := c.Payload.Common
	return &txn.StakeDelegation{
		To:         b.NewDelegate,
		From:       b.Delegator,
		Fee:        cm.Fee,
		Nonce:      cm.Nonce,
		Memo:       cm.Memo,
		ValidUntil: cm.ValidUntil,
	}, nil
}

// GraphQL is the {"data": <command>} wrapper returned to callers that submit
// through a GraphQL endpoint.
type GraphQL struct {
	Data *SignedCommand `json:"data"`
}

// ToGraphQL wraps c.
func (c *SignedCommand) ToGraphQL() GraphQL {
	return GraphQL{Data: c}
}
