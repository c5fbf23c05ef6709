// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// Package rosetta translates signed transactions produced by Rosetta
// construction endpoints into canonical signed commands.
//
// A Rosetta document carries one hex signature (field half then scalar half,
// both big-endian) and exactly one payload variant. Keys use snake_case;
// camelCase aliases are accepted as well.
package rosetta

import (
	"encoding/json"

	"github.com/aplane-algo/minasign/internal/command"
	"github.com/aplane-algo/minasign/internal/errs"
	"github.com/aplane-algo/minasign/internal/signature"
	"github.com/aplane-algo/minasign/internal/txn"
	"github.com/aplane-algo/minasign/internal/util"
)

// Document is a signed Rosetta transaction.
// create_token, create_token_account and mint_tokens are ignored.
type Document struct {
	Signature string `json:"signature"`

	Payment              *Payment    `json:"payment"`
	StakeDelegation      *Delegation `json:"stake_delegation"`
	StakeDelegationCamel *Delegation `json:"stakeDelegation"`
}

// Payment is the Rosetta payment variant.
type Payment struct {
	To              string     `json:"to"`
	From            string     `json:"from"`
	Fee             txn.Number `json:"fee"`
	Token           txn.Number `json:"token"`
	Nonce           txn.Number `json:"nonce"`
	Memo            *string    `json:"memo"`
	Amount          txn.Number `json:"amount"`
	ValidUntil      txn.Number `json:"valid_until"`
	ValidUntilCamel txn.Number `json:"validUntil"`
}

// Delegation is the Rosetta stake delegation variant.
type Delegation struct {
	NewDelegate      string     `json:"new_delegate"`
	NewDelegateCamel string     `json:"newDelegate"`
	Delegator        string     `json:"delegator"`
	Fee              txn.Number `json:"fee"`
	Nonce            txn.Number `json:"nonce"`
	Memo             *string    `json:"memo"`
	ValidUntil       txn.Number `json:"valid_until"`
	ValidUntilCamel  txn.Number `json:"validUntil"`
}

// Parse decodes a Rosetta document. Malformed JSON is ErrParse.
func Parse(doc []byte) (*Document, error) {
	var d Document
	if err := json.Unmarshal(doc, &d); err != nil {
		return nil, errs.Wrap(errs.ErrParse, "rosetta.Parse", err)
	}
	return &d, nil
}

// Translate parses doc and converts it to a signed command.
func Translate(doc []byte) (*command.SignedCommand, error) {
	d, err := Parse(doc)
	if err != nil {
		return nil, err
	}
	return d.Command()
}

// ToGraphQL translates doc and wraps the result as {"data": <command>}.
func ToGraphQL(doc []byte) ([]byte, error) {
	cmd, err := Translate(doc)
	if err != nil {
		return nil, err
	}
	return json.Marshal(cmd.ToGraphQL())
}

// Command builds the canonical signed command. The signature is parsed
// before the payload so that a bad signature is reported even when the
// payload is also invalid.
func (d *Document) Command() (*command.SignedCommand, error) {
	const op = "rosetta.Command"

	sig, err := signature.FromHex(d.Signature)
	if err != nil {
		return nil, err
	}

	delegation, err := d.delegation()
	if err != nil {
		return nil, err
	}

	switch {
	case d.Payment != nil && delegation != nil:
		return nil, errs.Validation(op, "document has both payment and stake_delegation")
	case d.Payment != nil:
		p, err := d.Payment.toPayment()
		if err != nil {
			return nil, err
		}
		util.Debug("rosetta payment translated", "from", p.From.Address(), "nonce", p.Nonce)
		return command.FromPayment(p, sig), nil
	case delegation != nil:
		sd, err := delegation.toStakeDelegation()
		if err != nil {
			return nil, err
		}
		util.Debug("rosetta delegation translated", "from", sd.From.Address(), "nonce", sd.Nonce)
		return command.FromStakeDelegation(sd, sig), nil
	default:
		return nil, errs.Validation(op, "document has neither payment nor stake_delegation")
	}
}

func (d *Document) delegation() (*Delegation, error) {
	if d.StakeDelegation != nil && d.StakeDelegationCamel != nil {
		return nil, errs.Validation("rosetta.Command", "both stake_delegation and stakeDelegation are set")
	}
	if d.StakeDelegation != nil {
		return d.StakeDelegation, nil
	}
	return d.StakeDelegationCamel, nil
}

func (p *Payment) toPayment() (*txn.Payment, error) {
	return txn.PaymentJSON{
		To:         p.To,
		From:       p.From,
		Fee:        p.Fee,
		Amount:     p.Amount,
		Nonce:      p.Nonce,
		Memo:       p.Memo,
		ValidUntil: firstPresent(p.ValidUntil, p.ValidUntilCamel),
	}.Payment()
}

func (d *Delegation) toStakeDelegation() (*txn.StakeDelegation, error) {
	newDelegate := d.NewDelegate
	if newDelegate == "" {
		newDelegate = d.NewDelegateCamel
	}
	return txn.DelegationJSON{
		To:         newDelegate,
		From:       d.Delegator,
		Fee:        d.Fee,
		Nonce:      d.Nonce,
		Memo:       d.Memo,
		ValidUntil: firstPresent(d.ValidUntil, d.ValidUntilCamel),
	}.StakeDelegation()
}

func firstPresent(a, b txn.Number) txn.Number {
	if a.Present() {
		return a
	}
	return b
}
