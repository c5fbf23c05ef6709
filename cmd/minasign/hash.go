// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package main

import (
	"fmt"

	"github.com/aplane-algo/minasign/internal/client"
	"github.com/aplane-algo/minasign/internal/util"
)

func (a *app) cmdHash(args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	c, err := a.client(false)
	if err != nil {
		return err
	}

	var h string
	switch args[0] {
	case "payment":
		var sp client.SignedPayment
		if err := a.readJSON(args[1], &sp); err != nil {
			return err
		}
		h, err = c.HashPayment(&sp)
	case "delegation":
		var sd client.SignedStakeDelegation
		if err := a.readJSON(args[1], &sd); err != nil {
			return err
		}
		h, err = c.HashStakeDelegation(&sd)
	default:
		return fmt.Errorf("unknown hash subcommand %q (payment, delegation)", args[0])
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.stdout, util.Colorize(h, util.ColorHash))
	return err
}

func (a *app) cmdRosetta(args []string) error {
	fs := a.flagSet("rosetta")
	withHash := fs.Bool("hash", false, "Print the transaction hash after the signed command")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errUsage
	}

	doc, err := a.readInput(fs.Arg(0))
	if err != nil {
		return err
	}
	c, err := a.client(false)
	if err != nil {
		return err
	}

	out, err := c.SignedRosettaTransactionToSignedCommand(string(doc))
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(a.stdout, out); err != nil {
		return err
	}
	if !*withHash {
		return nil
	}
	h, err := c.HashRosettaTransaction(string(doc))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.stderr, "hash:", util.Colorize(h, util.ColorHash))
	return err
}
