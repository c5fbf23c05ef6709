// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package jsapi

import (
	"github.com/dop251/goja"

	"github.com/aplane-algo/minasign/internal/client"
	"github.com/aplane-algo/minasign/internal/keys"
	"github.com/aplane-algo/minasign/internal/txn"
)

// keypairArg decodes argument i as {privateKey, publicKey}.
func (a *API) keypairArg(fn string, call goja.FunctionCall, i int) keys.Encoded {
	var kp keys.Encoded
	if err := decodeArg(call.Arguments[i], &kp); err != nil {
		a.throw(fn, err)
	}
	return kp
}

// jsSignMessage signs a string.
// signMessage(message, keypair) - Returns {signature: {string, signer, signature}, data}
func (a *API) jsSignMessage(call goja.FunctionCall) goja.Value {
	a.requireArgs(call, 2, "signMessage() requires message and keypair arguments")
	kp := a.keypairArg("signMessage", call, 1)
	sm, err := a.client.SignMessage(a.ctx, call.Arguments[0].String(), kp)
	if err != nil {
		a.throw("signMessage", err)
	}
	return a.toJSValue(sm)
}

// jsVerifyMessage checks the object returned by signMessage().
func (a *API) jsVerifyMessage(call goja.FunctionCall) goja.Value {
	a.requireArgs(call, 1, "verifyMessage() requires a signed message argument")
	var sm client.SignedMessage
	if err := decodeArg(call.Arguments[0], &sm); err != nil {
		a.throw("verifyMessage", err)
	}
	ok, err := a.client.VerifyMessage(a.ctx, &sm)
	if err != nil {
		a.throw("verifyMessage", err)
	}
	return a.runtime.ToValue(ok)
}

// jsSignPayment signs a payment.
// signPayment({to, from, fee, amount, nonce, memo, validUntil}, keypair)
func (a *API) jsSignPayment(call goja.FunctionCall) goja.Value {
	a.requireArgs(call, 2, "signPayment() requires payment and keypair arguments")
	var p txn.PaymentJSON
	if err := decodeArg(call.Arguments[0], &p); err != nil {
		a.throw("signPayment", err)
	}
	kp := a.keypairArg("signPayment", call, 1)
	sp, err := a.client.SignPayment(a.ctx, p, kp)
	if err != nil {
		a.throw("signPayment", err)
	}
	return a.toJSValue(sp)
}

// jsVerifyPayment checks the object returned by signPayment().
func (a *API) jsVerifyPayment(call goja.FunctionCall) goja.Value {
	a.requireArgs(call, 1, "verifyPayment() requires a signed payment argument")
	var sp client.SignedPayment
	if err := decodeArg(call.Arguments[0], &sp); err != nil {
		a.throw("verifyPayment", err)
	}
	ok, err := a.client.VerifyPayment(a.ctx, &sp)
	if err != nil {
		a.throw("verifyPayment", err)
	}
	return a.runtime.ToValue(ok)
}

// jsSignStakeDelegation signs a stake delegation.
// signStakeDelegation({to, from, fee, nonce, memo, validUntil}, keypair)
func (a *API) jsSignStakeDelegation(call goja.FunctionCall) goja.Value {
	a.requireArgs(call, 2, "signStakeDelegation() requires delegation and keypair arguments")
	var d txn.DelegationJSON
	if err := decodeArg(call.Arguments[0], &d); err != nil {
		a.throw("signStakeDelegation", err)
	}
	kp := a.keypairArg("signStakeDelegation", call, 1)
	sd, err := a.client.SignStakeDelegation(a.ctx, d, kp)
	if err != nil {
		a.throw("signStakeDelegation", err)
	}
	return a.toJSValue(sd)
}

// jsVerifyStakeDelegation checks the object returned by signStakeDelegation().
func (a *API) jsVerifyStakeDelegation(call goja.FunctionCall) goja.Value {
	a.requireArgs(call, 1, "verifyStakeDelegation() requires a signed delegation argument")
	var sd client.SignedStakeDelegation
	if err := decodeArg(call.Arguments[0], &sd); err != nil {
		a.throw("verifyStakeDelegation", err)
	}
	ok, err := a.client.VerifyStakeDelegation(a.ctx, &sd)
	if err != nil {
		a.throw("verifyStakeDelegation", err)
	}
	return a.runtime.ToValue(ok)
}

// jsHashPayment returns the transaction hash of a signed payment.
// A missing signature hashes with the dummy signature.
func (a *API) jsHashPayment(call goja.FunctionCall) goja.Value {
	a.requireArgs(call, 1, "hashPayment() requires a signed payment argument")
	var sp client.SignedPayment
	if err := decodeArg(call.Arguments[0], &sp); err != nil {
		a.throw("hashPayment", err)
	}
	h, err := a.client.HashPayment(&sp)
	if err != nil {
		a.throw("hashPayment", err)
	}
	return a.runtime.ToValue(h)
}

// jsHashStakeDelegation returns the transaction hash of a signed delegation.
func (a *API) jsHashStakeDelegation(call goja.FunctionCall) goja.Value {
	a.requireArgs(call, 1, "hashStakeDelegation() requires a signed delegation argument")
	var sd client.SignedStakeDelegation
	if err := decodeArg(call.Arguments[0], &sd); err != nil {
		a.throw("hashStakeDelegation", err)
	}
	h, err := a.client.HashStakeDelegation(&sd)
	if err != nil {
		a.throw("hashStakeDelegation", err)
	}
	return a.runtime.ToValue(h)
}

// jsRosettaToSignedCommand converts a signed Rosetta document (object or
// JSON text) into the GraphQL {data: command} object.
func (a *API) jsRosettaToSignedCommand(call goja.FunctionCall) goja.Value {
	a.requireArgs(call, 1, "rosettaToSignedCommand() requires a document argument")
	doc, err := docText(call.Arguments[0])
	if err != nil {
		a.throw("rosettaToSignedCommand", err)
	}
	out, err := a.client.SignedRosettaTransactionToSignedCommand(doc)
	if err != nil {
		a.throw("rosettaToSignedCommand", err)
	}
	var v any
	if err := decodeArg(a.runtime.ToValue(out), &v); err != nil {
		a.throw("rosettaToSignedCommand", err)
	}
	return a.runtime.ToValue(v)
}

// jsHashRosetta returns the transaction hash of a signed Rosetta document.
func (a *API) jsHashRosetta(call goja.FunctionCall) goja.Value {
	a.requireArgs(call, 1, "hashRosetta() requires a document argument")
	doc, err := docText(call.Arguments[0])
	if err != nil {
		a.throw("hashRosetta", err)
	}
	h, err := a.client.HashRosettaTransaction(doc)
	if err != nil {
		a.throw("hashRosetta", err)
	}
	return a.runtime.ToValue(h)
}
