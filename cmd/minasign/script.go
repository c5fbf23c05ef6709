// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/aplane-algo/minasign/internal/client"
	"github.com/aplane-algo/minasign/internal/repl"
	"github.com/aplane-algo/minasign/internal/scripting"
	"github.com/aplane-algo/minasign/internal/signer"
	"github.com/aplane-algo/minasign/internal/version"
)

// scriptClient starts the signer when one is configured; scripts that only
// encode or hash still run without it.
func (a *app) scriptClient() (*client.Client, error) {
	if a.config.Signer == nil {
		return a.client(false)
	}
	return a.client(true)
}

func (a *app) cmdScript(ctx context.Context, args []string) error {
	fs := a.flagSet("script")
	watch := fs.Bool("watch", false, "Re-run the script whenever the file changes")
	expr := fs.String("e", "", "Evaluate a JavaScript expression and print the result")
	verbose := fs.Bool("v", false, "Show log() output")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *expr == "" && fs.NArg() != 1 {
		return errUsage
	}

	c, err := a.scriptClient()
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	newRunner := func() *scripting.GojaRunner {
		r := scripting.NewGojaRunner(c, *verbose)
		r.SetOutput(func(msg string) {
			_, _ = fmt.Fprintln(a.stdout, msg)
		})
		return r
	}

	if *expr != "" {
		res, err := newRunner().RunContext(ctx, *expr)
		if err != nil {
			return err
		}
		return a.printResult(res)
	}

	path := fs.Arg(0)
	runOnce := func() error {
		res, err := scripting.RunFile(ctx, newRunner(), path)
		if err != nil {
			return err
		}
		return a.printResult(res)
	}

	if !*watch {
		return runOnce()
	}
	if path == "-" {
		return errors.New("-watch needs a script file, not stdin")
	}

	var mu sync.Mutex
	rerun := func() {
		mu.Lock()
		defer mu.Unlock()
		_, _ = fmt.Fprintf(a.stderr, "--- running %s ---\n", filepath.Base(path))
		if err := runOnce(); err != nil {
			_, _ = fmt.Fprintf(a.stderr, "Script error: %v\n", err)
		}
	}
	rerun()
	return scripting.Watch(ctx, path, rerun)
}

func (a *app) printResult(res scripting.Result) error {
	if res.IsEmpty {
		return nil
	}
	switch res.Value.(type) {
	case map[string]interface{}, []interface{}:
		return a.printJSON(res.Value)
	default:
		_, err := fmt.Fprintln(a.stdout, res.Value)
		return err
	}
}

func (a *app) cmdREPL(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return errUsage
	}

	withSigner := a.config.Signer != nil
	factory := func(network, encoder string) (*client.Client, error) {
		return a.newClient(network, encoder, withSigner)
	}
	c, err := factory(a.network, a.encoder)
	if err != nil {
		return err
	}
	if !withSigner {
		_, _ = fmt.Fprintf(a.stderr, "No signer configured (%v); key and signing commands are disabled\n", signer.ErrNoBackend)
	}

	s := repl.NewSession(c, a.stdout, factory)
	defer func() { _ = s.Close() }()

	_, _ = fmt.Fprintf(a.stdout, "minasign %s shell on %s. Type 'help' for commands.\n", version.Short(), c.Network())
	history := ""
	if info, err := os.Stat(a.dataDir); err == nil && info.IsDir() {
		history = filepath.Join(a.dataDir, "history")
	}
	return repl.Run(ctx, s, repl.Config{HistoryFile: history})
}
