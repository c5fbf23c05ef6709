// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// Package jsapi provides JavaScript API bindings for the minasign client.
//
// Functions are organized into domain-specific files:
//   - api.go: Core API struct, registration, output, network
//   - keys.go: Key generation, derivation, address and memo helpers
//   - transactions.go: Message, payment and delegation signing, hashing, Rosetta
//   - helpers.go: Type conversion utilities
package jsapi

import (
	"context"
	"fmt"

	"github.com/dop251/goja"

	"github.com/aplane-algo/minasign/internal/client"
)

// API provides JavaScript bindings for a client.
type API struct {
	client  *client.Client
	runtime *goja.Runtime
	ctx     context.Context
	verbose bool
	output  func(string)
}

// NewAPI creates a new JavaScript API instance.
func NewAPI(c *client.Client, verbose bool, output func(string)) *API {
	return &API{
		client:  c,
		ctx:     context.Background(),
		verbose: verbose,
		output:  output,
	}
}

// SetContext sets the context passed to signer backend calls.
func (a *API) SetContext(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	a.ctx = ctx
}

// RegisterAll registers all API functions on the given Goja runtime.
func (a *API) RegisterAll(vm *goja.Runtime) error {
	a.runtime = vm

	// Standalone helpers (not methods on API)
	if err := vm.Set("mina", makeMinaFunc(vm)); err != nil {
		return fmt.Errorf("failed to register mina: %w", err)
	}
	if err := vm.Set("formatMina", makeFormatMinaFunc(vm)); err != nil {
		return fmt.Errorf("failed to register formatMina: %w", err)
	}

	funcs := []struct {
		name string
		fn   func(goja.FunctionCall) goja.Value
	}{
		// Output and status
		{"print", a.jsPrint},
		{"log", a.jsLog},
		{"setVerbose", a.jsSetVerbose},
		{"network", a.jsNetwork},
		{"encoder", a.jsEncoder},

		// Keys
		{"genKeys", a.jsGenKeys},
		{"verifyKeypair", a.jsVerifyKeypair},
		{"derivePublicKey", a.jsDerivePublicKey},
		{"publicKeyToRaw", a.jsPublicKeyToRaw},
		{"isAddress", a.jsIsAddress},
		{"encodeMemo", a.jsEncodeMemo},
		{"decodeMemo", a.jsDecodeMemo},

		// Signing
		{"signMessage", a.jsSignMessage},
		{"verifyMessage", a.jsVerifyMessage},
		{"signPayment", a.jsSignPayment},
		{"verifyPayment", a.jsVerifyPayment},
		{"signStakeDelegation", a.jsSignStakeDelegation},
		{"verifyStakeDelegation", a.jsVerifyStakeDelegation},

		// Hashing and Rosetta
		{"hashPayment", a.jsHashPayment},
		{"hashStakeDelegation", a.jsHashStakeDelegation},
		{"rosettaToSignedCommand", a.jsRosettaToSignedCommand},
		{"hashRosetta", a.jsHashRosetta},
	}
	for _, f := range funcs {
		if err := vm.Set(f.name, f.fn); err != nil {
			return fmt.Errorf("failed to register %s: %w", f.name, err)
		}
	}
	return nil
}

// Names lists the global functions RegisterAll installs, for help output.
func Names() []string {
	return []string{
		"mina", "formatMina", "print", "log", "setVerbose", "network", "encoder",
		"genKeys", "verifyKeypair", "derivePublicKey", "publicKeyToRaw", "isAddress",
		"encodeMemo", "decodeMemo",
		"signMessage", "verifyMessage", "signPayment", "verifyPayment",
		"signStakeDelegation", "verifyStakeDelegation",
		"hashPayment", "hashStakeDelegation", "rosettaToSignedCommand", "hashRosetta",
	}
}

// output helper for internal use.
func (a *API) outputMsg(msg string) {
	if a.output != nil {
		a.output(msg)
	} else {
		fmt.Println(msg)
	}
}

// jsPrint outputs a message to the console.
func (a *API) jsPrint(call goja.FunctionCall) goja.Value {
	args := make([]interface{}, len(call.Arguments))
	for i, arg := range call.Arguments {
		args[i] = arg.Export()
	}
	a.outputMsg(fmt.Sprint(args...))
	return goja.Undefined()
}

// jsLog outputs a debug message (only in verbose mode).
func (a *API) jsLog(call goja.FunctionCall) goja.Value {
	if !a.verbose {
		return goja.Undefined()
	}
	args := make([]interface{}, len(call.Arguments))
	for i, arg := range call.Arguments {
		args[i] = arg.Export()
	}
	a.outputMsg("[debug] " + fmt.Sprint(args...))
	return goja.Undefined()
}

// jsSetVerbose enables or disables log() output.
// setVerbose(enabled)
func (a *API) jsSetVerbose(call goja.FunctionCall) goja.Value {
	a.requireArgs(call, 1, "setVerbose() requires a boolean argument")
	a.verbose = call.Arguments[0].ToBoolean()
	return goja.Undefined()
}

// jsNetwork returns "mainnet" or "testnet".
func (a *API) jsNetwork(call goja.FunctionCall) goja.Value {
	return a.runtime.ToValue(a.client.Network().String())
}

// jsEncoder returns the name of the hash encoder.
func (a *API) jsEncoder(call goja.FunctionCall) goja.Value {
	return a.runtime.ToValue(a.client.Encoder().Name())
}

// throw raises a JS exception prefixed with the function name.
func (a *API) throw(fn string, err error) {
	panic(a.runtime.ToValue(fmt.Sprintf("%s() error: %v", fn, err)))
}
