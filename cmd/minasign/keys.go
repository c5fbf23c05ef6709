// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/aplane-algo/minasign/internal/client"
	"github.com/aplane-algo/minasign/internal/keys"
	"github.com/aplane-algo/minasign/internal/memo"
	"github.com/aplane-algo/minasign/internal/util"
)

func (a *app) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

func (a *app) cmdKeygen(ctx context.Context, args []string) error {
	fs := a.flagSet("keygen")
	outFile := fs.String("out", "", "Write the keypair JSON to this file (mode 0600) instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	c, err := a.client(true)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	kp, err := c.GenKeys(ctx)
	if err != nil {
		return err
	}
	if *outFile == "" {
		return a.printJSON(kp)
	}

	out, err := client.MarshalIndent(kp)
	if err != nil {
		return err
	}
	if err := os.WriteFile(*outFile, []byte(out+"\n"), 0o600); err != nil {
		return fmt.Errorf("failed to write keypair: %w", err)
	}
	_, _ = fmt.Fprintf(a.stdout, "Public key: %s\n", util.Colorize(kp.PublicKey, util.ColorAddress))
	_, _ = fmt.Fprintf(a.stdout, "Keypair written to %s\n", *outFile)
	return nil
}

func (a *app) cmdDerive(ctx context.Context, args []string) error {
	fs := a.flagSet("derive")
	keyFile := fs.String("key-file", "", "File holding the base58 private key (prompted if omitted)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	priv, err := a.privateKey(*keyFile)
	if err != nil {
		return err
	}
	c, err := a.client(true)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	addr, err := c.DerivePublicKey(ctx, priv)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.stdout, addr)
	return err
}

func (a *app) cmdVerifyKeypair(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	var kp keys.Encoded
	if err := a.readJSON(args[0], &kp); err != nil {
		return err
	}

	c, err := a.client(true)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	ok, err := c.VerifyKeypair(ctx, kp)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("public key does not match private key")
	}
	_, err = fmt.Fprintln(a.stdout, "keypair valid")
	return err
}

func (a *app) cmdAddress(args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	switch args[0] {
	case "raw":
		raw, err := keys.PublicKeyToRaw(args[1])
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(a.stdout, raw)
		return err
	case "from-raw":
		pk, err := keys.RawToPublicKey(args[1])
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(a.stdout, pk.Address())
		return err
	case "check":
		if _, err := keys.ParseAddress(args[1]); err != nil {
			return err
		}
		_, err := fmt.Fprintln(a.stdout, "valid")
		return err
	default:
		return fmt.Errorf("unknown address subcommand %q (raw, from-raw, check)", args[0])
	}
}

func (a *app) cmdMemo(args []string) error {
	if len(args) < 2 {
		return errUsage
	}
	switch args[0] {
	case "encode":
		text := strings.Join(args[1:], " ")
		if len(text) > memo.MaxLength {
			util.Warn("memo truncated", "bytes", len(text), "max", memo.MaxLength)
		}
		_, err := fmt.Fprintln(a.stdout, memo.FromString(text).Base58())
		return err
	case "decode":
		m, err := memo.ParseBase58(args[1])
		if err != nil {
			return err
		}
		text, _ := m.Decode()
		_, err = fmt.Fprintln(a.stdout, text)
		return err
	default:
		return fmt.Errorf("unknown memo subcommand %q (encode, decode)", args[0])
	}
}
