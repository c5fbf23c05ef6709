// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package repl

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/aplane-algo/minasign/internal/client"
	"github.com/aplane-algo/minasign/internal/keys"
	"github.com/aplane-algo/minasign/internal/memo"
	"github.com/aplane-algo/minasign/internal/scripting"
	"github.com/aplane-algo/minasign/internal/txn"
	"github.com/aplane-algo/minasign/internal/util"
)

// Builtins returns the built-in REPL commands.
func Builtins() []*Command {
	return []*Command{
		{
			Name: "help", Aliases: []string{"h", "?"},
			Usage: "help [command]", Description: "Show commands or help for one command",
			Category: CategorySession, Handler: NewInternalHandler(cmdHelp),
		},
		{
			Name: "quit", Aliases: []string{"exit", "q"},
			Usage: "quit", Description: "Leave the shell",
			Category: CategorySession, Handler: NewInternalHandler(cmdQuit),
		},
		{
			Name: "network", Usage: "network [mainnet|testnet]",
			Description: "Show or switch the signing network",
			Category:    CategorySession, Handler: NewInternalHandler(cmdNetwork),
		},
		{
			Name: "encoder", Usage: "encoder [binprot|msgpack]",
			Description: "Show or switch the transaction hash encoder",
			Category:    CategorySession, Handler: NewInternalHandler(cmdEncoder),
		},
		{
			Name: "keygen", Usage: "keygen",
			Description: "Generate a keypair and make it the active key",
			Category:    CategoryKeyMgmt, Handler: NewInternalHandler(cmdKeygen),
		},
		{
			Name: "key", Usage: "key [privateKey]",
			Description: "Set the active key (prompts when no key is given)",
			LongHelp:    "Without an argument the private key is read without echo.\nThe public key is derived by the signer backend.",
			Category:    CategoryKeyMgmt, Handler: NewInternalHandler(cmdKey),
		},
		{
			Name: "whoami", Usage: "whoami",
			Description: "Show the active public key",
			Category:    CategoryKeyMgmt, Handler: NewInternalHandler(cmdWhoami),
		},
		{
			Name: "raw", Usage: "raw <address>",
			Description: "Show the compressed public key as hex",
			Category:    CategoryKeyMgmt, Handler: NewInternalHandler(cmdRaw),
		},
		{
			Name: "check", Usage: "check <address>",
			Description: "Check that an address decodes to a curve point",
			Category:    CategoryKeyMgmt, Handler: NewInternalHandler(cmdCheck),
		},
		{
			Name: "sign-message", Aliases: []string{"signmsg"},
			Usage: "sign-message <text>", Description: "Sign a text message with the active key",
			Category: CategorySigning, Handler: NewInternalHandler(cmdSignMessage),
		},
		{
			Name: "pay", Usage: "pay to=<addr> amount=<MINA> fee=<MINA> nonce=<n> [memo=<text>] [valid-until=<slot>]",
			Description: "Sign a payment from the active key",
			LongHelp:    "Amounts and fees are in MINA with up to nine decimals.\nWithout valid-until the payment never expires.",
			Category:    CategorySigning, Handler: NewInternalHandler(cmdPay),
		},
		{
			Name: "delegate", Usage: "delegate to=<addr> fee=<MINA> nonce=<n> [memo=<text>] [valid-until=<slot>]",
			Description: "Sign a stake delegation from the active key",
			Category:    CategorySigning, Handler: NewInternalHandler(cmdDelegate),
		},
		{
			Name: "verify", Usage: "verify",
			Description: "Verify the last signed message or transaction",
			Category:    CategorySigning, Handler: NewInternalHandler(cmdVerify),
		},
		{
			Name: "show", Usage: "show",
			Description: "Print the last signed message or transaction as JSON",
			Category:    CategorySigning, Handler: NewInternalHandler(cmdShow),
		},
		{
			Name: "hash", Usage: "hash",
			Description: "Hash the last signed transaction",
			Category:    CategoryHashing, Handler: NewInternalHandler(cmdHash),
		},
		{
			Name: "rosetta", Usage: "rosetta <json>",
			Description: "Convert a signed Rosetta transaction to a GraphQL signed command",
			Category:    CategoryHashing, Handler: NewInternalHandler(cmdRosetta),
		},
		{
			Name: "memo", Usage: "memo encode <text> | memo decode <base58>",
			Description: "Convert between memo text and its base58 form",
			Category:    CategoryEncoding, Handler: NewInternalHandler(cmdMemo),
		},
		{
			Name: "mina", Usage: "mina <MINA>",
			Description: "Convert MINA to nanomina",
			Category:    CategoryEncoding, Handler: NewInternalHandler(cmdMina),
		},
		{
			Name: "nanomina", Usage: "nanomina <n>",
			Description: "Convert nanomina to MINA",
			Category:    CategoryEncoding, Handler: NewInternalHandler(cmdNanomina),
		},
		{
			Name: "js", Usage: "js <code>",
			Description: "Evaluate JavaScript in the persistent script runtime",
			Category:    CategoryScripting, Handler: NewInternalHandler(cmdJS),
		},
		{
			Name: "run", Usage: "run <file.js>",
			Description: "Run a JavaScript file in the persistent script runtime",
			Category:    CategoryScripting, Handler: NewInternalHandler(cmdRun),
		},
	}
}

func cmdHelp(args []string, ctx *Context) error {
	if len(args) > 0 {
		cmd, ok := ctx.Session.Registry.Lookup(args[0])
		if !ok {
			return fmt.Errorf("unknown command: %s", args[0])
		}
		ShowCommandHelp(ctx.Session.Out, cmd)
		return nil
	}
	ShowHelp(ctx.Session.Out, ctx.Session.Registry, ctx.Network)
	return nil
}

func cmdQuit(args []string, ctx *Context) error {
	return ErrExit
}

func cmdNetwork(args []string, ctx *Context) error {
	if len(args) == 0 {
		ctx.Println(ctx.Client().Network())
		return nil
	}
	return switchClient(ctx, args[0], ctx.Client().Encoder().Name())
}

func cmdEncoder(args []string, ctx *Context) error {
	if len(args) == 0 {
		ctx.Println(ctx.Client().Encoder().Name())
		return nil
	}
	return switchClient(ctx, ctx.Client().Network().String(), args[0])
}

func switchClient(ctx *Context, network, encoder string) error {
	if ctx.Session.NewClient == nil {
		return errors.New("switching is not available in this session")
	}
	c, err := ctx.Session.NewClient(network, encoder)
	if err != nil {
		return err
	}
	ctx.Session.SetClient(c)
	ctx.Printf("network: %s, encoder: %s\n", c.Network(), c.Encoder().Name())
	return nil
}

func cmdKeygen(args []string, ctx *Context) error {
	kp, err := ctx.Client().GenKeys(ctx.Ctx)
	if err != nil {
		return err
	}
	ctx.Session.Keypair = &kp
	ctx.Printf("Public key:  %s\n", util.Colorize(kp.PublicKey, util.ColorAddress))
	ctx.Printf("Private key: %s\n", kp.PrivateKey)
	return nil
}

func cmdKey(args []string, ctx *Context) error {
	var priv string
	switch {
	case len(args) > 0:
		priv = args[0]
	case ctx.Session.ReadSecret != nil:
		s, err := ctx.Session.ReadSecret("Private key: ")
		if err != nil {
			return err
		}
		priv = strings.TrimSpace(s)
	default:
		return errors.New("usage: key <privateKey>")
	}
	pub, err := ctx.Client().DerivePublicKey(ctx.Ctx, priv)
	if err != nil {
		return err
	}
	ctx.Session.Keypair = &keys.Encoded{PrivateKey: priv, PublicKey: pub}
	ctx.Printf("Active key: %s\n", util.Colorize(pub, util.ColorAddress))
	return nil
}

func cmdWhoami(args []string, ctx *Context) error {
	kp, err := ctx.requireKey()
	if err != nil {
		return err
	}
	ctx.Println(kp.PublicKey)
	return nil
}

func cmdRaw(args []string, ctx *Context) error {
	if len(args) != 1 {
		return errors.New("usage: raw <address>")
	}
	raw, err := ctx.Client().PublicKeyToRaw(args[0])
	if err != nil {
		return err
	}
	ctx.Println(raw)
	return nil
}

func cmdCheck(args []string, ctx *Context) error {
	if len(args) != 1 {
		return errors.New("usage: check <address>")
	}
	if _, err := keys.ParseAddress(args[0]); err != nil {
		return err
	}
	ctx.Println("valid")
	return nil
}

func cmdSignMessage(args []string, ctx *Context) error {
	if len(args) == 0 {
		return errors.New("usage: sign-message <text>")
	}
	kp, err := ctx.requireKey()
	if err != nil {
		return err
	}
	sm, err := ctx.Client().SignMessage(ctx.Ctx, strings.Join(args, " "), kp)
	if err != nil {
		return err
	}
	ctx.Session.Last = sm
	return printJSON(ctx, sm)
}

// commonArgs holds the fields shared by payments and delegations.
type commonArgs struct {
	to         string
	fee        txn.Number
	nonce      txn.Number
	memo       *string
	validUntil txn.Number
}

func parseCommon(kv map[string]string) (commonArgs, error) {
	var c commonArgs
	if err := requireKeys(kv, "to", "fee", "nonce"); err != nil {
		return c, err
	}
	fee, err := util.ParseMina(kv["fee"])
	if err != nil {
		return c, err
	}
	nonce, err := strconv.ParseUint(kv["nonce"], 10, 32)
	if err != nil {
		return c, fmt.Errorf("invalid nonce %q", kv["nonce"])
	}
	c.to = kv["to"]
	c.fee = txn.NumberOf(fee)
	c.nonce = txn.NumberOf(nonce)
	if m, ok := kv["memo"]; ok {
		c.memo = &m
	}
	if v, ok := kv["valid-until"]; ok {
		slot, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return c, fmt.Errorf("invalid valid-until %q", v)
		}
		c.validUntil = txn.NumberOf(slot)
	}
	return c, nil
}

func cmdPay(args []string, ctx *Context) error {
	kv, err := ParseKeyValues(args, "to", "amount", "fee", "nonce", "memo", "valid-until")
	if err != nil {
		return err
	}
	if err := requireKeys(kv, "amount"); err != nil {
		return err
	}
	common, err := parseCommon(kv)
	if err != nil {
		return err
	}
	amount, err := util.ParseMina(kv["amount"])
	if err != nil {
		return err
	}
	kp, err := ctx.requireKey()
	if err != nil {
		return err
	}

	sp, err := ctx.Client().SignPayment(ctx.Ctx, txn.PaymentJSON{
		To:         common.to,
		From:       kp.PublicKey,
		Fee:        common.fee,
		Amount:     txn.NumberOf(amount),
		Nonce:      common.nonce,
		Memo:       common.memo,
		ValidUntil: common.validUntil,
	}, kp)
	if err != nil {
		return err
	}
	ctx.Session.Last = sp
	return printJSON(ctx, sp)
}

func cmdDelegate(args []string, ctx *Context) error {
	kv, err := ParseKeyValues(args, "to", "fee", "nonce", "memo", "valid-until")
	if err != nil {
		return err
	}
	common, err := parseCommon(kv)
	if err != nil {
		return err
	}
	kp, err := ctx.requireKey()
	if err != nil {
		return err
	}

	sd, err := ctx.Client().SignStakeDelegation(ctx.Ctx, txn.DelegationJSON{
		To:         common.to,
		From:       kp.PublicKey,
		Fee:        common.fee,
		Nonce:      common.nonce,
		Memo:       common.memo,
		ValidUntil: common.validUntil,
	}, kp)
	if err != nil {
		return err
	}
	ctx.Session.Last = sd
	return printJSON(ctx, sd)
}

var errNothingSigned = errors.New("nothing signed yet (use sign-message, pay or delegate)")

func cmdVerify(args []string, ctx *Context) error {
	var ok bool
	var err error
	switch last := ctx.Session.Last.(type) {
	case *client.SignedMessage:
		ok, err = ctx.Client().VerifyMessage(ctx.Ctx, last)
	case *client.SignedPayment:
		ok, err = ctx.Client().VerifyPayment(ctx.Ctx, last)
	case *client.SignedStakeDelegation:
		ok, err = ctx.Client().VerifyStakeDelegation(ctx.Ctx, last)
	default:
		return errNothingSigned
	}
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("signature does not verify")
	}
	ctx.Println("signature valid")
	return nil
}

func cmdShow(args []string, ctx *Context) error {
	if ctx.Session.Last == nil {
		return errNothingSigned
	}
	return printJSON(ctx, ctx.Session.Last)
}

func cmdHash(args []string, ctx *Context) error {
	var h string
	var err error
	switch last := ctx.Session.Last.(type) {
	case *client.SignedPayment:
		h, err = ctx.Client().HashPayment(last)
	case *client.SignedStakeDelegation:
		h, err = ctx.Client().HashStakeDelegation(last)
	case *client.SignedMessage:
		return errors.New("messages have no transaction hash")
	default:
		return errNothingSigned
	}
	if err != nil {
		return err
	}
	ctx.Println(util.Colorize(h, util.ColorHash))
	return nil
}

func cmdRosetta(args []string, ctx *Context) error {
	doc := ctx.RawArgs
	if doc == "" {
		return errors.New("usage: rosetta <json>")
	}
	out, err := ctx.Client().SignedRosettaTransactionToSignedCommand(doc)
	if err != nil {
		return err
	}
	ctx.Println(out)
	h, err := ctx.Client().HashRosettaTransaction(doc)
	if err != nil {
		return err
	}
	ctx.Printf("hash: %s\n", util.Colorize(h, util.ColorHash))
	return nil
}

func cmdMemo(args []string, ctx *Context) error {
	if len(args) < 2 {
		return errors.New("usage: memo encode <text> | memo decode <base58>")
	}
	switch args[0] {
	case "encode":
		ctx.Println(memo.FromString(strings.Join(args[1:], " ")).Base58())
	case "decode":
		m, err := memo.ParseBase58(args[1])
		if err != nil {
			return err
		}
		text, _ := m.Decode()
		ctx.Printf("%q\n", text)
	default:
		return fmt.Errorf("unknown memo subcommand %q", args[0])
	}
	return nil
}

func cmdMina(args []string, ctx *Context) error {
	if len(args) != 1 {
		return errors.New("usage: mina <MINA>")
	}
	nano, err := util.ParseMina(args[0])
	if err != nil {
		return err
	}
	ctx.Println(nano)
	return nil
}

func cmdNanomina(args []string, ctx *Context) error {
	if len(args) != 1 {
		return errors.New("usage: nanomina <n>")
	}
	n, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid nanomina amount %q", args[0])
	}
	ctx.Println(util.FormatMina(n))
	return nil
}

func cmdJS(args []string, ctx *Context) error {
	code := ctx.RawArgs
	if code == "" {
		return errors.New("usage: js <code>")
	}
	res, err := ctx.Session.Runner().RunContext(ctx.Ctx, code)
	if err != nil {
		return err
	}
	return printResult(ctx, res)
}

func cmdRun(args []string, ctx *Context) error {
	if len(args) != 1 {
		return errors.New("usage: run <file.js>")
	}
	res, err := scripting.RunFile(ctx.Ctx, ctx.Session.Runner(), args[0])
	if err != nil {
		return err
	}
	return printResult(ctx, res)
}

func printResult(ctx *Context, res scripting.Result) error {
	if res.IsEmpty {
		return nil
	}
	switch res.Value.(type) {
	case map[string]interface{}, []interface{}:
		return printJSON(ctx, res.Value)
	default:
		ctx.Println(res.Value)
	}
	return nil
}

func printJSON(ctx *Context, v any) error {
	out, err := client.MarshalIndent(v)
	if err != nil {
		return err
	}
	ctx.Println(out)
	return nil
}
