// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aplane-algo/minasign/internal/client"
	"github.com/aplane-algo/minasign/internal/keys"
	"github.com/aplane-algo/minasign/internal/scripting"
)

// ErrExit is returned by the quit command to end the loop.
var ErrExit = errors.New("exit")

// ClientFactory builds a client for a network and encoder name. The REPL
// calls it when the user switches either.
type ClientFactory func(network, encoder string) (*client.Client, error)

// Session is the state that survives between commands.
type Session struct {
	Client *client.Client
	Out    io.Writer

	// Keypair is the active signing key, set by keygen or key.
	Keypair *keys.Encoded
	// Last is the most recent signing result: *client.SignedMessage,
	// *client.SignedPayment or *client.SignedStakeDelegation.
	Last any

	// ReadSecret reads a line without echo. Nil disables interactive key entry.
	ReadSecret func(prompt string) (string, error)
	// NewClient is used by the network and encoder commands.
	NewClient ClientFactory

	Registry *Registry

	runner *scripting.GojaRunner
}

// NewSession creates a session with the built-in commands registered.
func NewSession(c *client.Client, out io.Writer, factory ClientFactory) *Session {
	if out == nil {
		out = os.Stdout
	}
	s := &Session{Client: c, Out: out, NewClient: factory, Registry: NewRegistry()}
	for _, cmd := range Builtins() {
		if err := s.Registry.Register(cmd); err != nil {
			panic("failed to register REPL command: " + err.Error())
		}
	}
	return s
}

// SetClient swaps the client, closing the old one and resetting the
// script runtime bound to it.
func (s *Session) SetClient(c *client.Client) {
	if s.Client != nil && s.Client != c {
		_ = s.Client.Close()
	}
	s.Client = c
	s.runner = nil
}

// Runner returns the persistent script runtime, creating it on first use.
func (s *Session) Runner() *scripting.GojaRunner {
	if s.runner == nil {
		s.runner = scripting.NewGojaRunner(s.Client, false)
		s.runner.SetOutput(func(msg string) {
			_, _ = fmt.Fprintln(s.Out, msg)
		})
	}
	return s.runner
}

// Close releases the client.
func (s *Session) Close() error {
	if s.Client == nil {
		return nil
	}
	return s.Client.Close()
}

// Context provides command handlers with access to REPL state.
type Context struct {
	Network string

	// RawArgs contains the raw argument string before quote-stripping.
	// Used by commands like 'js' that need to preserve quotes in their input.
	RawArgs string

	Ctx     context.Context
	Session *Session
}

// Client returns the session client.
func (ctx *Context) Client() *client.Client {
	return ctx.Session.Client
}

// Printf writes to the session output.
func (ctx *Context) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(ctx.Session.Out, format, args...)
}

// Println writes to the session output.
func (ctx *Context) Println(args ...any) {
	_, _ = fmt.Fprintln(ctx.Session.Out, args...)
}

// requireKey returns the active keypair or an error telling the user how
// to set one.
func (ctx *Context) requireKey() (keys.Encoded, error) {
	if ctx.Session.Keypair == nil {
		return keys.Encoded{}, errors.New("no active key (use 'keygen' or 'key')")
	}
	return *ctx.Session.Keypair, nil
}
