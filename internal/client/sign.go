// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package client

import (
	"context"
	"unicode/utf8"

	"github.com/aplane-algo/minasign/internal/errs"
	"github.com/aplane-algo/minasign/internal/keys"
	"github.com/aplane-algo/minasign/internal/roinput"
	"github.com/aplane-algo/minasign/internal/signature"
	"github.com/aplane-algo/minasign/internal/signer"
	"github.com/aplane-algo/minasign/internal/txn"
	"github.com/aplane-algo/minasign/internal/util"
)

func (c *Client) sign(ctx context.Context, enc keys.Encoded, h roinput.Hashable) (signature.Signature, error) {
	b, err := c.requireBackend()
	if err != nil {
		return signature.Signature{}, err
	}
	kp, err := enc.Decode()
	if err != nil {
		return signature.Signature{}, err
	}
	defer kp.Zero()
	return b.Sign(ctx, signer.NewSignRequest(kp, h, c.network))
}

// checkMemo rejects memo text that JSON cannot carry byte for byte.
func checkMemo(op string, m *string) error {
	if m != nil && !utf8.ValidString(*m) {
		return errs.Validation(op, "memo is not valid UTF-8")
	}
	return nil
}

func (c *Client) verify(ctx context.Context, pk keys.PublicKey, h roinput.Hashable, sigJSON signature.JSON) (bool, error) {
	b, err := c.requireBackend()
	if err != nil {
		return false, err
	}
	sig, err := sigJSON.Signature()
	if err != nil {
		return false, err
	}
	return b.Verify(ctx, signer.NewVerifyRequest(pk, h, sig, c.network))
}

// SignMessage signs text with the keypair.
func (c *Client) SignMessage(ctx context.Context, text string, kp keys.Encoded) (*SignedMessage, error) {
	data := txn.MessageJSON{PublicKey: kp.PublicKey, Message: text}
	msg, err := data.ToMessage()
	if err != nil {
		return nil, err
	}
	sig, err := c.sign(ctx, kp, msg)
	if err != nil {
		return nil, err
	}
	util.Debug("message signed", "network", c.network, "signer", kp.PublicKey)
	return newSignedMessage(sig, data), nil
}

// VerifyMessage checks a signed message against its data's public key.
func (c *Client) VerifyMessage(ctx context.Context, sm *SignedMessage) (bool, error) {
	msg, err := sm.Data.ToMessage()
	if err != nil {
		return false, err
	}
	return c.verify(ctx, msg.PublicKey, msg, sm.Signature.Signature)
}

// SignPayment signs p. The keypair must belong to p.From.
func (c *Client) SignPayment(ctx context.Context, p txn.PaymentJSON, kp keys.Encoded) (*SignedPayment, error) {
	if err := checkMemo("client.SignPayment", p.Memo); err != nil {
		return nil, err
	}
	payment, err := p.Payment()
	if err != nil {
		return nil, err
	}
	sig, err := c.sign(ctx, kp, payment)
	if err != nil {
		return nil, err
	}
	util.Debug("payment signed", "network", c.network, "from", p.From, "nonce", payment.Nonce)
	// The caller's memo text is returned as given. Decoding the truncated
	// memo can split a multi-byte character.
	data := payment.JSON()
	data.Memo = p.Memo
	return &SignedPayment{Signature: sig.JSON(), Data: data}, nil
}

// VerifyPayment checks sp against its sender.
func (c *Client) VerifyPayment(ctx context.Context, sp *SignedPayment) (bool, error) {
	payment, err := sp.Data.Payment()
	if err != nil {
		return false, err
	}
	return c.verify(ctx, payment.From, payment, sp.Signature)
}

// SignStakeDelegation signs d. The keypair must belong to the delegator.
func (c *Client) SignStakeDelegation(ctx context.Context, d txn.DelegationJSON, kp keys.Encoded) (*SignedStakeDelegation, error) {
	if err := checkMemo("client.SignStakeDelegation", d.Memo); err != nil {
		return nil, err
	}
	delegation, err := d.StakeDelegation()
	if err != nil {
		return nil, err
	}
	sig, err := c.sign(ctx, kp, delegation)
	if err != nil {
		return nil, err
	}
	util.Debug("stake delegation signed", "network", c.network, "from", d.From, "nonce", delegation.Nonce)
	data := delegation.JSON()
	data.Memo = d.Memo
	return &SignedStakeDelegation{Signature: sig.JSON(), Data: data}, nil
}

// VerifyStakeDelegation checks sd against the delegator.
func (c *Client) VerifyStakeDelegation(ctx context.Context, sd *SignedStakeDelegation) (bool, error) {
	delegation, err := sd.Data.StakeDelegation()
	if err != nil {
		return false, err
	}
	return c.verify(ctx, delegation.From, delegation, sd.Signature)
}
