// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aplane-algo/minasign/internal/client"
	"github.com/aplane-algo/minasign/internal/keys"
	"github.com/aplane-algo/minasign/internal/txn"
)

// signingKey loads the private key and derives its address with the backend.
// When want is set the derived address must equal it.
func (a *app) signingKey(ctx context.Context, c *client.Client, keyFile, want string) (keys.Encoded, error) {
	priv, err := a.privateKey(keyFile)
	if err != nil {
		return keys.Encoded{}, err
	}
	pub, err := c.DerivePublicKey(ctx, priv)
	if err != nil {
		return keys.Encoded{}, err
	}
	if want != "" && pub != want {
		return keys.Encoded{}, fmt.Errorf("private key belongs to %s, not %s", pub, want)
	}
	return keys.Encoded{PrivateKey: priv, PublicKey: pub}, nil
}

func (a *app) cmdSign(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errUsage
	}
	kind := args[0]
	fs := a.flagSet("sign " + kind)
	keyFile := fs.String("key-file", "", "File holding the base58 private key (prompted if omitted)")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) < 1 {
		return errUsage
	}

	c, err := a.client(true)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	switch kind {
	case "message":
		kp, err := a.signingKey(ctx, c, *keyFile, "")
		if err != nil {
			return err
		}
		sm, err := c.SignMessage(ctx, strings.Join(rest, " "), kp)
		if err != nil {
			return err
		}
		return a.printJSON(sm)

	case "payment":
		var p txn.PaymentJSON
		if err := a.readJSON(rest[0], &p); err != nil {
			return err
		}
		kp, err := a.signingKey(ctx, c, *keyFile, p.From)
		if err != nil {
			return err
		}
		sp, err := c.SignPayment(ctx, p, kp)
		if err != nil {
			return err
		}
		return a.printJSON(sp)

	case "delegation":
		var d txn.DelegationJSON
		if err := a.readJSON(rest[0], &d); err != nil {
			return err
		}
		kp, err := a.signingKey(ctx, c, *keyFile, d.From)
		if err != nil {
			return err
		}
		sd, err := c.SignStakeDelegation(ctx, d, kp)
		if err != nil {
			return err
		}
		return a.printJSON(sd)

	default:
		return fmt.Errorf("unknown sign subcommand %q (message, payment, delegation)", kind)
	}
}

var errInvalidSignature = errors.New("signature does not verify")

func (a *app) cmdVerify(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	kind, path := args[0], args[1]

	var verify func(c *client.Client) (bool, error)
	switch kind {
	case "message":
		var sm client.SignedMessage
		if err := a.readJSON(path, &sm); err != nil {
			return err
		}
		verify = func(c *client.Client) (bool, error) { return c.VerifyMessage(ctx, &sm) }
	case "payment":
		var sp client.SignedPayment
		if err := a.readJSON(path, &sp); err != nil {
			return err
		}
		verify = func(c *client.Client) (bool, error) { return c.VerifyPayment(ctx, &sp) }
	case "delegation":
		var sd client.SignedStakeDelegation
		if err := a.readJSON(path, &sd); err != nil {
			return err
		}
		verify = func(c *client.Client) (bool, error) { return c.VerifyStakeDelegation(ctx, &sd) }
	default:
		return fmt.Errorf("unknown verify subcommand %q (message, payment, delegation)", kind)
	}

	c, err := a.client(true)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	ok, err := verify(c)
	if err != nil {
		return err
	}
	if !ok {
		return errInvalidSignature
	}
	_, err = fmt.Fprintln(a.stdout, "signature valid")
	return err
}
