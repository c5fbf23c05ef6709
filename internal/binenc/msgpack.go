// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package binenc

import (
	"github.com/algorand/go-algorand-sdk/v2/encoding/msgpack"

	"github.com/aplane-algo/minasign/internal/command"
	"github.com/aplane-algo/minasign/internal/keys"
)

// Msgpack writes commands as canonical msgpack (sorted keys, zero values
// omitted). It is an alternative to BinProt for tooling that already speaks
// msgpack; hashes it produces are not comparable with node hashes.
type Msgpack struct{}

func (Msgpack) Name() string { return "msgpack" }

func (Msgpack) Encode(cmd *command.SignedCommand) ([]byte, error) {
	doc, err := toMsgpack(cmd)
	if err != nil {
		return nil, err
	}
	return msgpack.Encode(doc), nil
}

type mpPublicKey struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	X   []byte `codec:"x"`
	Odd bool   `codec:"odd"`
}

type mpCommon struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Fee        uint64      `codec:"fee"`
	FeeToken   uint64      `codec:"feetk"`
	FeePayer   mpPublicKey `codec:"feepk"`
	Nonce      uint32      `codec:"nonce"`
	ValidUntil uint32      `codec:"vu"`
	Memo       []byte      `codec:"memo"`
}

type mpPayment struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Source   mpPublicKey `codec:"src"`
	Receiver mpPublicKey `codec:"rcv"`
	TokenID  uint64      `codec:"tok"`
	Amount   uint64      `codec:"amt"`
}

type mpDelegation struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Delegator   mpPublicKey `codec:"dlg"`
	NewDelegate mpPublicKey `codec:"new"`
}

type mpSignedCommand struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Common     mpCommon      `codec:"common"`
	Type       string        `codec:"type"`
	Payment    *mpPayment    `codec:"pay"`
	Delegation *mpDelegation `codec:"dlg"`
	Signer     mpPublicKey   `codec:"signer"`
	SigField   []byte        `codec:"sigf"`
	SigScalar  []byte        `codec:"sigs"`
}

func mpKey(pk keys.PublicKey) mpPublicKey {
	return mpPublicKey{X: pk.X.BytesLE(), Odd: pk.IsOdd}
}

func toMsgpack(cmd *command.SignedCommand) (*mpSignedCommand, error) {
	tag, err := cmd.Payload.Body.Tag()
	if err != nil {
		return nil, err
	}
	cm := cmd.Payload.Common
	doc := &mpSignedCommand{
		Common: mpCommon{
			Fee:        cm.Fee,
			FeeToken:   cm.FeeToken,
			FeePayer:   mpKey(cm.FeePayer),
			Nonce:      cm.Nonce,
			ValidUntil: cm.ValidUntil,
			Memo:       cm.Memo[:],
		},
		Type:      tag,
		Signer:    mpKey(cmd.Signer),
		SigField:  cmd.Signature.Field.BytesLE(),
		SigScalar: cmd.Signature.Scalar.BytesLE(),
	}
	switch tag {
	case command.TagPayment:
		p := cmd.Payload.Body.Payment
		doc.Payment = &mpPayment{
			Source:   mpKey(p.Source),
			Receiver: mpKey(p.Receiver),
			TokenID:  p.TokenID,
			Amount:   p.Amount,
		}
	case command.TagStakeDelegation:
		d := cmd.Payload.Body.Delegation
		doc.Delegation = &mpDelegation{
			Delegator:   mpKey(d.Delegator),
			NewDelegate: mpKey(d.NewDelegate),
		}
	}
	return doc, nil
}
