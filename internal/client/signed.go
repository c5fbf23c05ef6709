// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package client

import (
	"github.com/aplane-algo/minasign/internal/signature"
	"github.com/aplane-algo/minasign/internal/txn"
)

// MessageSignature repeats the signed text and signer next to the signature.
type MessageSignature struct {
	String    string         `json:"string"`
	Signer    string         `json:"signer"`
	Signature signature.JSON `json:"signature"`
}

// SignedMessage is returned by SignMessage and accepted by VerifyMessage.
type SignedMessage struct {
	Signature MessageSignature `json:"signature"`
	Data      txn.MessageJSON  `json:"data"`
}

// SignedPayment pairs a payment with its signature.
type SignedPayment struct {
	Signature signature.JSON  `json:"signature"`
	Data      txn.PaymentJSON `json:"data"`
}

// SignedStakeDelegation pairs a stake delegation with its signature.
type SignedStakeDelegation struct {
	Signature signature.JSON     `json:"signature"`
	Data      txn.DelegationJSON `json:"data"`
}

func newSignedMessage(sig signature.Signature, data txn.MessageJSON) *SignedMessage {
	return &SignedMessage{
		Signature: MessageSignature{
			String:    data.Message,
			Signer:    data.PublicKey,
			Signature: sig.JSON(),
		},
		Data: data,
	}
}

// optionalSignature parses j, treating an all-empty value as absent.
func optionalSignature(j signature.JSON) (*signature.Signature, error) {
	if j.Field == "" && j.Scalar == "" {
		return nil, nil
	}
	sig, err := j.Signature()
	if err != nil {
		return nil, err
	}
	return &sig, nil
}
