// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package scripting

import (
	"context"

	"github.com/dop251/goja"

	"github.com/aplane-algo/minasign/internal/client"
	"github.com/aplane-algo/minasign/internal/jsapi"
)

// GojaRunner implements Runner using the Goja JavaScript interpreter.
type GojaRunner struct {
	vm     *goja.Runtime
	api    *jsapi.API
	output func(string)
}

// NewGojaRunner creates a new Goja-based script runner bound to c.
func NewGojaRunner(c *client.Client, verbose bool) *GojaRunner {
	r := &GojaRunner{
		output: func(s string) {}, // Default: discard output
	}

	vm := goja.New()
	vm.SetFieldNameMapper(goja.TagFieldNameMapper("json", true))

	// Create API with output wrapper (so SetOutput works after creation)
	api := jsapi.NewAPI(c, verbose, func(msg string) {
		r.output(msg)
	})
	if err := api.RegisterAll(vm); err != nil {
		// Registration errors are programming bugs, not runtime errors
		panic("failed to register JS API: " + err.Error())
	}

	r.vm = vm
	r.api = api

	return r
}

// Run executes JavaScript code and returns the result.
func (r *GojaRunner) Run(code string) (Result, error) {
	result, err := r.vm.RunString(code)
	if err != nil {
		// Convert Goja exceptions to regular errors with clean messages
		if jsErr, ok := err.(*goja.Exception); ok {
			return Result{}, &ScriptError{Message: jsErr.String()}
		}
		if intErr, ok := err.(*goja.InterruptedError); ok {
			return Result{}, &ScriptError{Message: intErr.String()}
		}
		return Result{}, err
	}

	if result == nil || goja.IsUndefined(result) || goja.IsNull(result) {
		return Result{IsEmpty: true}, nil
	}

	return Result{Value: result.Export()}, nil
}

// RunContext runs code and interrupts it when ctx is done. The context is
// also passed to signer backend calls made by the script.
func (r *GojaRunner) RunContext(ctx context.Context, code string) (Result, error) {
	r.api.SetContext(ctx)
	defer r.api.SetContext(context.Background())

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		select {
		case <-ctx.Done():
			r.Interrupt()
		case <-stop:
		}
	}()

	res, err := r.Run(code)
	close(stop)
	<-done
	r.vm.ClearInterrupt()
	return res, err
}

// SetOutput sets the function used for print() and log() output.
func (r *GojaRunner) SetOutput(fn func(string)) {
	if fn == nil {
		r.output = func(s string) {}
	} else {
		r.output = fn
	}
}

// Interrupt stops the currently running script.
// Safe to call from another goroutine (e.g., for timeout enforcement).
func (r *GojaRunner) Interrupt() {
	r.vm.Interrupt("script interrupted")
}

// Runtime returns the underlying Goja runtime.
// Use sparingly - prefer the Runner interface for portability.
func (r *GojaRunner) Runtime() *goja.Runtime {
	return r.vm
}

// Compile-time interface check
var _ Runner = (*GojaRunner)(nil)
