// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package jsapi

import (
	"github.com/dop251/goja"

	"github.com/aplane-algo/minasign/internal/keys"
	"github.com/aplane-algo/minasign/internal/memo"
)

// jsGenKeys returns a fresh {privateKey, publicKey} pair.
func (a *API) jsGenKeys(call goja.FunctionCall) goja.Value {
	kp, err := a.client.GenKeys(a.ctx)
	if err != nil {
		a.throw("genKeys", err)
	}
	return a.toJSValue(kp)
}

// jsVerifyKeypair checks that publicKey belongs to privateKey.
// verifyKeypair({privateKey, publicKey}) - Returns boolean
func (a *API) jsVerifyKeypair(call goja.FunctionCall) goja.Value {
	a.requireArgs(call, 1, "verifyKeypair() requires a keypair argument")
	var kp keys.Encoded
	if err := decodeArg(call.Arguments[0], &kp); err != nil {
		a.throw("verifyKeypair", err)
	}
	ok, err := a.client.VerifyKeypair(a.ctx, kp)
	if err != nil {
		a.throw("verifyKeypair", err)
	}
	return a.runtime.ToValue(ok)
}

// jsDerivePublicKey returns the address for a base58 private key.
func (a *API) jsDerivePublicKey(call goja.FunctionCall) goja.Value {
	a.requireArgs(call, 1, "derivePublicKey() requires a private key argument")
	addr, err := a.client.DerivePublicKey(a.ctx, call.Arguments[0].String())
	if err != nil {
		a.throw("derivePublicKey", err)
	}
	return a.runtime.ToValue(addr)
}

// jsPublicKeyToRaw returns the compressed point as upper-case hex.
func (a *API) jsPublicKeyToRaw(call goja.FunctionCall) goja.Value {
	a.requireArgs(call, 1, "publicKeyToRaw() requires an address argument")
	raw, err := a.client.PublicKeyToRaw(call.Arguments[0].String())
	if err != nil {
		a.throw("publicKeyToRaw", err)
	}
	return a.runtime.ToValue(raw)
}

// jsIsAddress reports whether the argument decodes to an on-curve public key.
func (a *API) jsIsAddress(call goja.FunctionCall) goja.Value {
	a.requireArgs(call, 1, "isAddress() requires an address argument")
	_, err := keys.ParseAddress(call.Arguments[0].String())
	return a.runtime.ToValue(err == nil)
}

// jsEncodeMemo returns the base58 form of a text memo.
// Text longer than 32 bytes is truncated.
func (a *API) jsEncodeMemo(call goja.FunctionCall) goja.Value {
	a.requireArgs(call, 1, "encodeMemo() requires a string argument")
	return a.runtime.ToValue(memo.FromString(call.Arguments[0].String()).Base58())
}

// jsDecodeMemo returns the text of a base58 memo.
func (a *API) jsDecodeMemo(call goja.FunctionCall) goja.Value {
	a.requireArgs(call, 1, "decodeMemo() requires a base58 memo argument")
	m, err := memo.ParseBase58(call.Arguments[0].String())
	if err != nil {
		a.throw("decodeMemo", err)
	}
	text, _ := m.Decode()
	return a.runtime.ToValue(text)
}
