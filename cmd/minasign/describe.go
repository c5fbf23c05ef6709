// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/aplane-algo/minasign/internal/client"
	"github.com/aplane-algo/minasign/internal/signature"
	"github.com/aplane-algo/minasign/internal/txn"
	"github.com/aplane-algo/minasign/internal/util"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(14)

	valueStyle = lipgloss.NewStyle()

	addressStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)
)

type row struct {
	label string
	value string
	style lipgloss.Style
}

func renderCard(title string, rows []row) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(title))
	for _, r := range rows {
		sb.WriteString("\n")
		sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			labelStyle.Render(r.label),
			r.style.Render(r.value)))
	}
	return boxStyle.Render(sb.String())
}

// envelope matches the output of the sign commands. A document without
// "data" is treated as the unsigned body itself.
type envelope struct {
	Signature json.RawMessage `json:"signature"`
	Data      json.RawMessage `json:"data"`
}

func (a *app) cmdDescribe(args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	raw, err := a.readInput(args[0])
	if err != nil {
		return err
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if len(env.Data) == 0 {
		env.Data = raw
		env.Signature = nil
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(env.Data, &keys); err != nil {
		return fmt.Errorf("invalid data object: %w", err)
	}

	c, err := a.client(false)
	if err != nil {
		return err
	}

	var card string
	switch {
	case has(keys, "message"):
		card, err = a.describeMessage(raw)
	case has(keys, "amount"):
		card, err = a.describePayment(c, env)
	case has(keys, "to") && has(keys, "from"):
		card, err = a.describeDelegation(c, env)
	default:
		return fmt.Errorf("cannot tell what kind of document this is")
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.stdout, card)
	return err
}

func has(m map[string]json.RawMessage, key string) bool {
	_, ok := m[key]
	return ok
}

func (a *app) describeMessage(raw []byte) (string, error) {
	var sm client.SignedMessage
	if err := json.Unmarshal(raw, &sm); err != nil {
		return "", err
	}
	if sm.Data.PublicKey == "" {
		// Unsigned {publicKey, message}.
		if err := json.Unmarshal(raw, &sm.Data); err != nil {
			return "", err
		}
	}
	rows := []row{
		{"Network", a.network, valueStyle},
		{"Signer", sm.Data.PublicKey, addressStyle},
		{"Message", fmt.Sprintf("%q", sm.Data.Message), valueStyle},
	}
	rows = append(rows, signatureRows(sm.Signature.Signature)...)
	return renderCard("Signed Message", rows), nil
}

func (a *app) describePayment(c *client.Client, env envelope) (string, error) {
	var sp client.SignedPayment
	if err := json.Unmarshal(env.Data, &sp.Data); err != nil {
		return "", err
	}
	if err := unmarshalSignature(env.Signature, &sp.Signature); err != nil {
		return "", err
	}
	p, err := sp.Data.Payment()
	if err != nil {
		return "", err
	}
	h, err := c.HashPayment(&sp)
	if err != nil {
		return "", err
	}

	rows := []row{
		{"Network", a.network, valueStyle},
		{"From", p.From.Address(), addressStyle},
		{"To", p.To.Address(), addressStyle},
		{"Amount", minaText(p.Amount), valueStyle},
		{"Fee", minaText(p.Fee), valueStyle},
		{"Nonce", fmt.Sprint(p.Nonce), valueStyle},
		{"Memo", memoText(sp.Data.Memo), valueStyle},
		{"Valid until", expiryText(p.ValidUntil), valueStyle},
	}
	rows = append(rows, signatureRows(sp.Signature)...)
	rows = append(rows, row{"Hash", h + hashNote(sp.Signature), valueStyle})
	return renderCard("Payment", rows), nil
}

func (a *app) describeDelegation(c *client.Client, env envelope) (string, error) {
	var sd client.SignedStakeDelegation
	if err := json.Unmarshal(env.Data, &sd.Data); err != nil {
		return "", err
	}
	if err := unmarshalSignature(env.Signature, &sd.Signature); err != nil {
		return "", err
	}
	d, err := sd.Data.StakeDelegation()
	if err != nil {
		return "", err
	}
	h, err := c.HashStakeDelegation(&sd)
	if err != nil {
		return "", err
	}

	rows := []row{
		{"Network", a.network, valueStyle},
		{"Delegator", d.From.Address(), addressStyle},
		{"New delegate", d.To.Address(), addressStyle},
		{"Fee", minaText(d.Fee), valueStyle},
		{"Nonce", fmt.Sprint(d.Nonce), valueStyle},
		{"Memo", memoText(sd.Data.Memo), valueStyle},
		{"Valid until", expiryText(d.ValidUntil), valueStyle},
	}
	rows = append(rows, signatureRows(sd.Signature)...)
	rows = append(rows, row{"Hash", h + hashNote(sd.Signature), valueStyle})
	return renderCard("Stake Delegation", rows), nil
}

func unmarshalSignature(raw json.RawMessage, out *signature.JSON) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, out)
}

func signatureRows(j signature.JSON) []row {
	if j.Field == "" && j.Scalar == "" {
		return []row{{"Signature", "unsigned", valueStyle}}
	}
	sig, err := j.Signature()
	if err != nil {
		return []row{{"Signature", "invalid: " + err.Error(), valueStyle}}
	}
	return []row{
		{"Field", j.Field, valueStyle},
		{"Scalar", j.Scalar, valueStyle},
		{"Rosetta hex", sig.Hex(), valueStyle},
	}
}

func hashNote(j signature.JSON) string {
	if j.Field == "" && j.Scalar == "" {
		return " (dummy signature)"
	}
	return ""
}

func minaText(nano uint64) string {
	return fmt.Sprintf("%s MINA (%d nanomina)", util.FormatMina(nano), nano)
}

func memoText(m *string) string {
	if m == nil || *m == "" {
		return "(none)"
	}
	return fmt.Sprintf("%q", *m)
}

func expiryText(slot uint32) string {
	if v, ok := txn.Expiry(slot); ok {
		return fmt.Sprint(v)
	}
	return "never"
}
