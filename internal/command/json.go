// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package command

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/aplane-algo/minasign/internal/errs"
	"github.com/aplane-algo/minasign/internal/keys"
	"github.com/aplane-algo/minasign/internal/memo"
	"github.com/aplane-algo/minasign/internal/signature"
)

// Integers are carried as decimal strings so u64 values survive JavaScript.

type commonJSON struct {
	Fee        string `json:"fee"`
	FeeToken   string `json:"feeToken"`
	Nonce      string `json:"nonce"`
	ValidUntil string `json:"validUntil"`
	FeePayerPk string `json:"feePayerPk"`
	Memo       string `json:"memo"`
}

type paymentBodyJSON struct {
	SourcePk   string `json:"sourcePk"`
	ReceiverPk string `json:"receiverPk"`
	TokenID    string `json:"tokenId"`
	Amount     string `json:"amount"`
}

type delegationBodyJSON struct {
	Delegator   string `json:"delegator"`
	NewDelegate string `json:"newDelegate"`
}

type payloadJSON struct {
	Common commonJSON      `json:"common"`
	Body   json.RawMessage `json:"body"`
}

type signedCommandJSON struct {
	Payload   payloadJSON         `json:"payload"`
	Signer    string              `json:"signer"`
	Signature signature.Signature `json:"signature"`
}

// MarshalJSON emits the interchange form.
func (c *SignedCommand) MarshalJSON() ([]byte, error) {
	body, err := c.Payload.Body.MarshalJSON()
	if err != nil {
		return nil, err
	}
	cm := c.Payload.Common
	return json.Marshal(signedCommandJSON{
		Payload: payloadJSON{
			Common: commonJSON{
				Fee:        strconv.FormatUint(cm.Fee, 10),
				FeeToken:   strconv.FormatUint(cm.FeeToken, 10),
				Nonce:      strconv.FormatUint(uint64(cm.Nonce), 10),
				ValidUntil: strconv.FormatUint(uint64(cm.ValidUntil), 10),
				FeePayerPk: cm.FeePayer.Address(),
				Memo:       cm.Memo.Base58(),
			},
			Body: body,
		},
		Signer:    c.Signer.Address(),
		Signature: c.Signature,
	})
}

// UnmarshalJSON parses the interchange form.
func (c *SignedCommand) UnmarshalJSON(data []byte) error {
	const op = "command.UnmarshalJSON"

	var raw signedCommandJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return errs.Wrap(errs.ErrParse, op, err)
	}

	var out SignedCommand
	cj := raw.Payload.Common
	var err error
	if out.Payload.Common.Fee, err = parseUint(op, "fee", cj.Fee, 64); err != nil {
		return err
	}
	if out.Payload.Common.FeeToken, err = parseUint(op, "feeToken", cj.FeeToken, 64); err != nil {
		return err
	}
	nonce, err := parseUint(op, "nonce", cj.Nonce, 32)
	if err != nil {
		return err
	}
	validUntil, err := parseUint(op, "validUntil", cj.ValidUntil, 32)
	if err != nil {
		return err
	}
	out.Payload.Common.Nonce = uint32(nonce)
	out.Payload.Common.ValidUntil = uint32(validUntil)

	if out.Payload.Common.FeePayer, err = keys.ParseAddress(cj.FeePayerPk); err != nil {
		return err
	}
	if out.Payload.Common.Memo, err = memo.ParseBase58(cj.Memo); err != nil {
		return err
	}
	if err := out.Payload.Body.UnmarshalJSON(raw.Payload.Body); err != nil {
		return err
	}
	if out.Signer, err = keys.ParseAddress(raw.Signer); err != nil {
		return err
	}
	out.Signature = raw.Signature

	*c = out
	return nil
}

// MarshalJSON emits ["Payment", {...}] or
// ["Stake_delegation", ["Set_delegate", {...}]].
func (b Body) MarshalJSON() ([]byte, error) {
	tag, err := b.Tag()
	if err != nil {
		return nil, err
	}
	switch tag {
	case TagPayment:
		p := b.Payment
		return json.Marshal([]any{TagPayment, paymentBodyJSON{
			SourcePk:   p.Source.Address(),
			ReceiverPk: p.Receiver.Address(),
			TokenID:    strconv.FormatUint(p.TokenID, 10),
			Amount:     strconv.FormatUint(p.Amount, 10),
		}})
	default:
		d := b.Delegation
		return json.Marshal([]any{TagStakeDelegation, []any{TagSetDelegate, delegationBodyJSON{
			Delegator:   d.Delegator.Address(),
			NewDelegate: d.NewDelegate.Address(),
		}}})
	}
}

// UnmarshalJSON parses a tagged body.
func (b *Body) UnmarshalJSON(data []byte) error {
	const op = "command.Body"

	tag, inner, err := splitTagged(op, data)
	if err != nil {
		return err
	}

	switch tag {
	case TagPayment:
		var pj paymentBodyJSON
		if err := json.Unmarshal(inner, &pj); err != nil {
			return errs.Wrap(errs.ErrParse, op, err)
		}
		var p PaymentBody
		if p.Source, err = keys.ParseAddress(pj.SourcePk); err != nil {
			return err
		}
		if p.Receiver, err = keys.ParseAddress(pj.ReceiverPk); err != nil {
			return err
		}
		if p.TokenID, err = parseUint(op, "tokenId", pj.TokenID, 64); err != nil {
			return err
		}
		if p.Amount, err = parseUint(op, "amount", pj.Amount, 64); err != nil {
			return err
		}
		*b = Body{Payment: &p}
		return nil

	case TagStakeDelegation:
		subTag, subInner, err := splitTagged(op, inner)
		if err != nil {
			return err
		}
		if subTag != TagSetDelegate {
			return errs.Wrap(errs.ErrValidation, op, fmt.Errorf("%w: %q", ErrUnknownBody, subTag))
		}
		var dj delegationBodyJSON
		if err := json.Unmarshal(subInner, &dj); err != nil {
			return errs.Wrap(errs.ErrParse, op, err)
		}
		var d DelegationBody
		if d.Delegator, err = keys.ParseAddress(dj.Delegator); err != nil {
			return err
		}
		if d.NewDelegate, err = keys.ParseAddress(dj.NewDelegate); err != nil {
			return err
		}
		*b = Body{Delegation: &d}
		return nil

	default:
		return errs.Wrap(errs.ErrValidation, op, fmt.Errorf("%w: %q", ErrUnknownBody, tag))
	}
}

func splitTagged(op string, data []byte) (string, json.RawMessage, error) {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return "", nil, errs.Wrap(errs.ErrParse, op, err)
	}
	if len(parts) != 2 {
		return "", nil, errs.Parse(op, "expected [tag, value], got %d elements", len(parts))
	}
	var tag string
	if err := json.Unmarshal(parts[0], &tag); err != nil {
		return "", nil, errs.Wrap(errs.ErrParse, op, err)
	}
	return tag, parts[1], nil
}

func parseUint(op, name, s string, bits int) (uint64, error) {
	v, err := strconv.ParseUint(s, 10, bits)
	if err != nil {
		return 0, errs.Wrap(errs.ErrParse, op+"."+name, err)
	}
	return v, nil
}
