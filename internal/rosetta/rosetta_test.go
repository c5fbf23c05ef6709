// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package rosetta

import (
	"encoding/json"
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/aplane-algo/minasign/internal/command"
	"github.com/aplane-algo/minasign/internal/errs"
	"github.com/aplane-algo/minasign/internal/testutil"
	"github.com/aplane-algo/minasign/internal/txn"
)

const sigHex = "389ac7d4077f3d485c1494782870979faa222cd906b25b2687333a92f41e40b925adb08705eddf2a7098e5ac9938498e8a0ce7c70b25ea392f4846b854086d43"

var paymentDoc = `{
	"signature": "` + sigHex + `",
	"payment": {
		"to": "` + testutil.RosettaAccount + `",
		"from": "` + testutil.RosettaAccount + `",
		"fee": "10000000",
		"token": "1",
		"nonce": "0",
		"memo": "memo",
		"amount": "1000000000",
		"valid_until": "4294967295"
	},
	"stake_delegation": null,
	"create_token": null,
	"create_token_account": null,
	"mint_tokens": null
}`

var delegationDoc = `{
	"signature": "` + sigHex + `",
	"payment": null,
	"stake_delegation": {
		"new_delegate": "` + testutil.MainnetReceiver + `",
		"delegator": "` + testutil.RosettaAccount + `",
		"fee": "10000000",
		"nonce": "0",
		"memo": "memo",
		"valid_until": "4294967295"
	}
}`

func bigHex(t *testing.T, h string) *big.Int {
	t.Helper()
	v, ok := new(big.Int).SetString(h, 16)
	if !ok {
		t.Fatalf("bad hex %s", h)
	}
	return v
}

func TestTranslatePayment(t *testing.T) {
	cmd, err := Translate([]byte(paymentDoc))
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}

	if cmd.Signature.Field.Big().Cmp(bigHex(t, sigHex[:64])) != 0 {
		t.Errorf("field = %s", cmd.Signature.Field.Decimal())
	}
	if cmd.Signature.Scalar.Big().Cmp(bigHex(t, sigHex[64:])) != 0 {
		t.Errorf("scalar = %s", cmd.Signature.Scalar.Decimal())
	}

	p, err := cmd.Payment()
	if err != nil {
		t.Fatalf("Payment(): %v", err)
	}
	if p.Fee != 10000000 || p.Amount != 1000000000 || p.Nonce != 0 {
		t.Errorf("payment numbers = %+v", p)
	}
	if p.ValidUntil != txn.NeverExpires {
		t.Errorf("validUntil = %d", p.ValidUntil)
	}
	if p.Memo.String() != "memo" {
		t.Errorf("memo = %q", p.Memo.String())
	}
	if cmd.Signer.Address() != testutil.RosettaAccount {
		t.Errorf("signer = %s", cmd.Signer.Address())
	}
}

func TestTranslateDelegation(t *testing.T) {
	cmd, err := Translate([]byte(delegationDoc))
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	tag, _ := cmd.Payload.Body.Tag()
	if tag != command.TagStakeDelegation {
		t.Fatalf("tag = %s", tag)
	}
	d := cmd.Payload.Body.Delegation
	if d.Delegator.Address() != testutil.RosettaAccount || d.NewDelegate.Address() != testutil.MainnetReceiver {
		t.Errorf("delegation = %s -> %s", d.Delegator.Address(), d.NewDelegate.Address())
	}
}

func TestTranslateCamelCase(t *testing.T) {
	doc := `{
		"signature": "` + sigHex + `",
		"stakeDelegation": {
			"newDelegate": "` + testutil.MainnetReceiver + `",
			"delegator": "` + testutil.RosettaAccount + `",
			"fee": 10000000,
			"nonce": 4,
			"validUntil": 99
		}
	}`
	cmd, err := Translate([]byte(doc))
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	sd, err := cmd.StakeDelegation()
	if err != nil {
		t.Fatal(err)
	}
	if sd.Nonce != 4 || sd.ValidUntil != 99 || sd.To.Address() != testutil.MainnetReceiver {
		t.Errorf("delegation = %+v", sd)
	}
	if _, ok := sd.Memo.Decode(); ok {
		t.Error("absent memo should be empty")
	}
}

func TestTranslateErrors(t *testing.T) {
	replaceSig := func(s string) string {
		return strings.Replace(paymentDoc, sigHex, s, 1)
	}
	both := strings.Replace(paymentDoc, `"stake_delegation": null`,
		`"stake_delegation": {"new_delegate": "`+testutil.MainnetReceiver+`", "delegator": "`+testutil.RosettaAccount+`", "fee": 1, "nonce": 0}`, 1)

	tests := []struct {
		name string
		doc  string
		kind error
	}{
		{"malformed json", `{"signature": `, errs.ErrParse},
		{"not an object", `[1, 2]`, errs.ErrParse},
		{"neither variant", `{"signature": "` + sigHex + `", "payment": null, "stake_delegation": null}`, errs.ErrValidation},
		{"both variants", both, errs.ErrValidation},
		{"odd signature length", replaceSig(sigHex[:127]), errs.ErrDecode},
		{"unequal halves", replaceSig(sigHex[:126]), errs.ErrDecode},
		{"non-hex signature", replaceSig("zz" + sigHex[2:]), errs.ErrDecode},
		{"field out of range", replaceSig(strings.Repeat("f", 64) + sigHex[64:]), errs.ErrDecode},
		{"bad address", strings.Replace(paymentDoc, `"to": "B62`, `"to": "B63`, 1), errs.ErrDecode},
		{"bad fee", strings.Replace(paymentDoc, `"fee": "10000000"`, `"fee": "ten"`, 1), errs.ErrParse},
		{"missing amount", strings.Replace(paymentDoc, `"amount": "1000000000",`, ``, 1), errs.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Translate([]byte(tt.doc))
			if !errors.Is(err, tt.kind) {
				t.Errorf("error = %v, want kind %v", err, tt.kind)
			}
		})
	}
}

func TestToGraphQL(t *testing.T) {
	out, err := ToGraphQL([]byte(paymentDoc))
	if err != nil {
		t.Fatalf("ToGraphQL: %v", err)
	}

	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(out, &wrapper); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	var cmd command.SignedCommand
	if err := json.Unmarshal(wrapper.Data, &cmd); err != nil {
		t.Fatalf("inner command: %v", err)
	}
	if cmd.Signature.Hex() != sigHex {
		t.Errorf("signature = %s", cmd.Signature.Hex())
	}
}
