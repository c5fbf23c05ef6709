// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package jsapi

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/dop251/goja"

	"github.com/aplane-algo/minasign/internal/util"
)

// makeMinaFunc creates the mina() helper bound to a runtime.
// mina(1.5) -> "1500000000", mina("0.000000001") -> "1"
// The result is a string because nanomina amounts exceed 2^53.
func makeMinaFunc(vm *goja.Runtime) func(call goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			panic(vm.ToValue("mina() requires a number or string argument"))
		}
		nano, err := util.ParseMina(amountText(call.Arguments[0]))
		if err != nil {
			panic(vm.ToValue(fmt.Sprintf("mina() error: %v", err)))
		}
		return vm.ToValue(strconv.FormatUint(nano, 10))
	}
}

// makeFormatMinaFunc creates the formatMina() helper bound to a runtime.
// formatMina("1500000000") -> "1.5"
func makeFormatMinaFunc(vm *goja.Runtime) func(call goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			panic(vm.ToValue("formatMina() requires a nanomina argument"))
		}
		nano, err := strconv.ParseUint(amountText(call.Arguments[0]), 10, 64)
		if err != nil {
			panic(vm.ToValue(fmt.Sprintf("formatMina() error: %v", err)))
		}
		return vm.ToValue(util.FormatMina(nano))
	}
}

// amountText renders a JS number without exponent notation.
func amountText(v goja.Value) string {
	switch val := v.Export().(type) {
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return v.String()
	}
}

// requireArgs panics with a JS exception if the call has fewer than n arguments.
func (a *API) requireArgs(call goja.FunctionCall, n int, msg string) {
	if len(call.Arguments) < n {
		panic(a.runtime.ToValue(msg))
	}
}

// decodeArg converts a JS value into a Go struct through its JSON form so
// that the struct's json tags and custom unmarshalers apply. Strings are
// taken as JSON text.
func decodeArg(v goja.Value, target any) error {
	var raw []byte
	if s, ok := v.Export().(string); ok {
		raw = []byte(s)
	} else {
		var err error
		raw, err = json.Marshal(v.Export())
		if err != nil {
			return err
		}
	}
	return json.Unmarshal(raw, target)
}

// toJSValue converts a Go value into plain JS objects through its JSON form.
func (a *API) toJSValue(v any) goja.Value {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(a.runtime.ToValue(fmt.Sprintf("internal error: %v", err)))
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		panic(a.runtime.ToValue(fmt.Sprintf("internal error: %v", err)))
	}
	return a.runtime.ToValue(out)
}

// docText returns a string argument as-is and serializes objects to JSON.
func docText(v goja.Value) (string, error) {
	if s, ok := v.Export().(string); ok {
		return s, nil
	}
	raw, err := json.Marshal(v.Export())
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
