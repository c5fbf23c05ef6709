// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/aplane-algo/minasign/internal/binenc"
	"github.com/aplane-algo/minasign/internal/client"
	"github.com/aplane-algo/minasign/internal/signer"
	"github.com/aplane-algo/minasign/internal/util"
)

var errUsage = errors.New("usage")

// app carries the resolved settings and I/O for one invocation.
type app struct {
	config  util.Config
	dataDir string
	network string
	encoder string

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	openBackend func(*util.SignerConfig) (signer.Backend, error)
	readSecret  func(prompt string) (string, error)

	// stdinReader is shared so prompts and piped input read from one buffer.
	stdinReader *bufio.Reader
}

func newApp(config util.Config, dataDir string) *app {
	a := &app{
		config:      config,
		dataDir:     dataDir,
		network:     config.Network,
		encoder:     config.HashEncoding,
		stdin:       os.Stdin,
		stdout:      os.Stdout,
		stderr:      os.Stderr,
		openBackend: signer.Open,
	}
	a.readSecret = a.readPassword
	return a
}

// run dispatches a subcommand.
func (a *app) run(args []string) error {
	ctx := context.Background()
	command, rest := args[0], args[1:]

	switch command {
	case "keygen":
		return a.cmdKeygen(ctx, rest)
	case "derive":
		return a.cmdDerive(ctx, rest)
	case "verify-keypair":
		return a.cmdVerifyKeypair(ctx, rest)
	case "address":
		return a.cmdAddress(rest)
	case "memo":
		return a.cmdMemo(rest)
	case "sign":
		return a.cmdSign(ctx, rest)
	case "verify":
		return a.cmdVerify(ctx, rest)
	case "hash":
		return a.cmdHash(rest)
	case "rosetta":
		return a.cmdRosetta(rest)
	case "describe":
		return a.cmdDescribe(rest)
	case "script":
		return a.cmdScript(ctx, rest)
	case "repl":
		return a.cmdREPL(ctx, rest)
	case "config":
		util.DisplayConfig(a.dataDir)
		return nil
	case "help", "-h", "--help":
		return errUsage
	default:
		return fmt.Errorf("unknown command %q (run 'minasign help')", command)
	}
}

// newClient builds a client for the given network and encoder. The signer
// backend is started only when withSigner is set and one is configured.
func (a *app) newClient(network, encoder string, withSigner bool) (*client.Client, error) {
	enc, err := binenc.Get(encoder)
	if err != nil {
		return nil, err
	}
	opts := []client.Option{client.WithEncoder(enc)}
	if withSigner {
		if a.config.Signer == nil {
			return nil, fmt.Errorf("%w: add a signer block to %s", signer.ErrNoBackend, util.GetConfigPath(a.dataDir))
		}
		b, err := a.openBackend(a.config.Signer)
		if err != nil {
			return nil, err
		}
		opts = append(opts, client.WithBackend(b))
	}
	return client.New(network, opts...)
}

// client is newClient with the invocation's network and encoder.
func (a *app) client(withSigner bool) (*client.Client, error) {
	return a.newClient(a.network, a.encoder, withSigner)
}

// readInput reads a file argument, or stdin for "-".
func (a *app) readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(a.input())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// readJSON decodes a file argument into v.
func (a *app) readJSON(path string, v any) error {
	data, err := a.readInput(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("invalid JSON in %s: %w", path, err)
	}
	return nil
}

// printJSON writes v to stdout, indented.
func (a *app) printJSON(v any) error {
	out, err := client.MarshalIndent(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.stdout, out)
	return err
}

func (a *app) input() *bufio.Reader {
	if a.stdinReader == nil {
		a.stdinReader = bufio.NewReader(a.stdin)
	}
	return a.stdinReader
}

// readPassword reads a secret without echo from a terminal, or a plain
// line when stdin is piped.
func (a *app) readPassword(prompt string) (string, error) {
	_, _ = fmt.Fprint(a.stderr, prompt)
	if f, ok := a.stdin.(*os.File); ok {
		fd := int(f.Fd()) // #nosec G115 - file descriptors are small integers
		if term.IsTerminal(fd) {
			b, err := term.ReadPassword(fd)
			_, _ = fmt.Fprintln(a.stderr)
			if err != nil {
				return "", err
			}
			return string(b), nil
		}
	}

	line, err := a.input().ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// privateKey loads the signing key from keyFile, or prompts for it.
func (a *app) privateKey(keyFile string) (string, error) {
	if keyFile != "" {
		data, err := os.ReadFile(keyFile)
		if err != nil {
			return "", fmt.Errorf("failed to read key file: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}
	return a.readSecret("Private key: ")
}
