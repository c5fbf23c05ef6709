// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package txn

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/aplane-algo/minasign/internal/errs"
	"github.com/aplane-algo/minasign/internal/keys"
	"github.com/aplane-algo/minasign/internal/memo"
	"github.com/aplane-algo/minasign/internal/network"
	"github.com/aplane-algo/minasign/internal/roinput"
	"github.com/aplane-algo/minasign/internal/testutil"
)

func testKeys(t *testing.T) (from, to keys.PublicKey) {
	t.Helper()
	from = testutil.Keypair(1).Public
	to = testutil.Keypair(2).Public
	return from, to
}

func boolEntry(b bool) string {
	if b {
		return "bool:1"
	}
	return "bool:0"
}

// expectedUserCommand lists the entry sequence shared by payments and
// delegations.
func expectedUserCommand(from, to keys.PublicKey, fee uint64, nonce, validUntil uint32, m memo.Memo, tag [3]bool, amount uint64) []string {
	return []string{
		"field:" + from.X.Decimal(),
		"field:" + from.X.Decimal(),
		"field:" + to.X.Decimal(),
		fmt.Sprintf("u64:%d", fee),
		"u64:1",
		boolEntry(from.IsOdd),
		fmt.Sprintf("u32:%d", nonce),
		fmt.Sprintf("u32:%d", validUntil),
		fmt.Sprintf("bytes:%x", m[:]),
		boolEntry(tag[0]),
		boolEntry(tag[1]),
		boolEntry(tag[2]),
		boolEntry(from.IsOdd),
		boolEntry(to.IsOdd),
		"u64:1",
		fmt.Sprintf("u64:%d", amount),
		"bool:0",
	}
}

func entryStrings(in *roinput.Input) []string {
	var out []string
	for _, e := range in.Entries() {
		out = append(out, e.String())
	}
	return out
}

func TestEntrySequence(t *testing.T) {
	from, to := testKeys(t)
	m := memo.FromString("memo")

	tests := []struct {
		name     string
		hashable roinput.Hashable
		want     []string
	}{
		{
			name: "payment",
			hashable: &Payment{
				To: to, From: from, Fee: 200100000, Amount: 16640000000000,
				Nonce: 1, Memo: m, ValidUntil: NeverExpires,
			},
			want: expectedUserCommand(from, to, 200100000, 1, NeverExpires, m, PaymentTag, 16640000000000),
		},
		{
			name: "payment with expiry",
			hashable: &Payment{
				To: to, From: from, Fee: 1, Amount: 1, Nonce: 3, Memo: memo.Empty(), ValidUntil: 5000,
			},
			want: expectedUserCommand(from, to, 1, 3, 5000, memo.Empty(), PaymentTag, 1),
		},
		{
			name: "stake delegation",
			hashable: &StakeDelegation{
				To: to, From: from, Fee: 10000000, Nonce: 0, Memo: m, ValidUntil: NeverExpires,
			},
			want: expectedUserCommand(from, to, 10000000, 0, NeverExpires, m, DelegationTag, 0),
		},
		{
			name:     "message",
			hashable: &Message{PublicKey: from, Text: "A"}, // 0x41 -> 0100 0001
			want: []string{
				"bool:0", "bool:1", "bool:0", "bool:0",
				"bool:0", "bool:0", "bool:0", "bool:1",
			},
		},
		{
			name:     "empty message",
			hashable: &Message{PublicKey: from, Text: ""},
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := entryStrings(tt.hashable.ROInput())
			if len(got) != len(tt.want) {
				t.Fatalf("entry count = %d, want %d\ngot:  %v\nwant: %v", len(got), len(tt.want), got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("entry %d = %s, want %s", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSenderFieldAppendedTwice(t *testing.T) {
	from, to := testKeys(t)
	p := &Payment{To: to, From: from, Memo: memo.Empty(), ValidUntil: NeverExpires}

	fields := p.ROInput().Fields()
	if len(fields) != 3 {
		t.Fatalf("len(Fields) = %d, want 3", len(fields))
	}
	if fields[0] != from.X || fields[1] != from.X || fields[2] != to.X {
		t.Error("field order must be from.x, from.x, to.x")
	}
}

func TestMessageNibbles(t *testing.T) {
	m := &Message{Text: "\xa5"} // 1010 0101
	want := "10100101"
	if got := m.ROInput().BitString(); got != want {
		t.Errorf("BitString = %s, want %s", got, want)
	}

	utf := &Message{Text: "é"} // 0xc3 0xa9
	if got := utf.ROInput().BitString(); got != "1100001110101001" {
		t.Errorf("multi-byte BitString = %s", got)
	}
}

func TestDeterministicEncoding(t *testing.T) {
	from, to := testKeys(t)
	build := func() *Payment {
		return &Payment{To: to, From: from, Fee: 5, Amount: 6, Nonce: 7, Memo: memo.FromString("x"), ValidUntil: 8}
	}
	if !bytes.Equal(build().ROInput().Serialize(), build().ROInput().Serialize()) {
		t.Error("payment encoding is not deterministic")
	}
}

func TestPaymentAndDelegationDiffer(t *testing.T) {
	from, to := testKeys(t)
	m := memo.FromString("same")

	payment := &Payment{To: to, From: from, Fee: 10, Amount: 0, Nonce: 1, Memo: m, ValidUntil: 100}
	delegation := &StakeDelegation{To: to, From: from, Fee: 10, Nonce: 1, Memo: m, ValidUntil: 100}

	pe, de := payment.ROInput().Entries(), delegation.ROInput().Entries()
	if len(pe) != len(de) {
		t.Fatalf("entry counts differ: %d vs %d", len(pe), len(de))
	}

	var differing []int
	for i := range pe {
		if pe[i].String() != de[i].String() {
			differing = append(differing, i)
		}
	}
	// Only the third tag bit differs when the payment amount is zero.
	if len(differing) != 1 || differing[0] != 11 {
		t.Errorf("differing entries = %v, want [11]", differing)
	}
	if bytes.Equal(payment.ROInput().Serialize(), delegation.ROInput().Serialize()) {
		t.Error("payment and delegation must not share a pre-image")
	}
}

func TestDomainStrings(t *testing.T) {
	hashables := []roinput.Hashable{&Payment{}, &StakeDelegation{}, &Message{}}
	for _, h := range hashables {
		if h.DomainString(network.Mainnet) != "MinaSignatureMainnet" {
			t.Errorf("%T mainnet domain = %s", h, h.DomainString(network.Mainnet))
		}
		if h.DomainString(network.Testnet) != "CodaSignature" {
			t.Errorf("%T testnet domain = %s", h, h.DomainString(network.Testnet))
		}
	}
}

func TestPaymentJSONConversion(t *testing.T) {
	input := fmt.Sprintf(`{
		"to": %q,
		"from": %q,
		"fee": 200100000,
		"amount": "16640000000000",
		"nonce": "1",
		"memo": "memo"
	}`, testutil.MainnetReceiver, testutil.MainnetSender)

	var j PaymentJSON
	if err := json.Unmarshal([]byte(input), &j); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	p, err := j.Payment()
	if err != nil {
		t.Fatalf("Payment(): %v", err)
	}

	if p.Fee != 200100000 || p.Amount != 16640000000000 || p.Nonce != 1 {
		t.Errorf("numbers = %d/%d/%d", p.Fee, p.Amount, p.Nonce)
	}
	if p.ValidUntil != NeverExpires {
		t.Errorf("absent validUntil should become sentinel, got %d", p.ValidUntil)
	}
	if _, ok := Expiry(p.ValidUntil); ok {
		t.Error("sentinel should decode as no expiry")
	}
	if p.Memo.String() != "memo" {
		t.Errorf("memo = %q", p.Memo.String())
	}

	back := p.JSON()
	if back.To != testutil.MainnetReceiver || back.From != testutil.MainnetSender {
		t.Error("addresses did not round trip")
	}
	if back.Memo == nil || *back.Memo != "memo" {
		t.Error("memo did not round trip")
	}
	if back.ValidUntil.String() != "4294967295" {
		t.Errorf("validUntil = %s", back.ValidUntil)
	}
}

func TestExpiry(t *testing.T) {
	tests := []struct {
		name       string
		validUntil uint32
		want       uint32
		wantOK     bool
	}{
		{"sentinel means no expiry", NeverExpires, 0, false},
		{"zero slot", 0, 0, true},
		{"regular slot", 1000, 1000, true},
		{"one below sentinel", NeverExpires - 1, NeverExpires - 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Expiry(tt.validUntil)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Expiry(%d) = %d, %v; want %d, %v", tt.validUntil, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestDelegationJSONConversion(t *testing.T) {
	j := DelegationJSON{
		To:         testutil.MainnetReceiver,
		From:       testutil.MainnetSender,
		Fee:        NumberOf(1),
		Nonce:      NumberOf(3),
		ValidUntil: NumberOf(1000),
	}
	d, err := j.StakeDelegation()
	if err != nil {
		t.Fatalf("StakeDelegation(): %v", err)
	}
	if d.ValidUntil != 1000 {
		t.Errorf("validUntil = %d", d.ValidUntil)
	}
	if exp, ok := Expiry(d.ValidUntil); !ok || exp != 1000 {
		t.Errorf("Expiry = %d, %v", exp, ok)
	}
	if _, ok := d.Memo.Decode(); ok {
		t.Error("absent memo should decode as none")
	}
	if d.JSON().Memo != nil {
		t.Error("absent memo should stay absent")
	}
}

func TestJSONConversionErrors(t *testing.T) {
	valid := PaymentJSON{
		To: testutil.MainnetReceiver, From: testutil.MainnetSender,
		Fee: NumberOf(1), Amount: NumberOf(1), Nonce: NumberOf(1),
	}

	tests := []struct {
		name   string
		mutate func(*PaymentJSON)
		kind   error
	}{
		{"bad address", func(p *PaymentJSON) { p.To = "B62qbad" }, errs.ErrDecode},
		{"missing fee", func(p *PaymentJSON) { p.Fee = Number{} }, errs.ErrValidation},
		{"non-numeric amount", func(p *PaymentJSON) { p.Amount = Number{raw: "abc"} }, errs.ErrParse},
		{"nonce overflow", func(p *PaymentJSON) { p.Nonce = NumberOf(1 << 33) }, errs.ErrParse},
		{"validUntil overflow", func(p *PaymentJSON) { p.ValidUntil = NumberOf(1 << 32) }, errs.ErrParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			_, err := p.Payment()
			if !errors.Is(err, tt.kind) {
				t.Errorf("error = %v, want kind %v", err, tt.kind)
			}
		})
	}
}

func TestNumberUnmarshal(t *testing.T) {
	tests := []struct {
		input   string
		present bool
		raw     string
		wantErr bool
	}{
		{`123`, true, "123", false},
		{`"123"`, true, "123", false},
		{`null`, false, "", false},
		{`""`, false, "", false},
		{`true`, false, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var n Number
			err := json.Unmarshal([]byte(tt.input), &n)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal(%s) error = %v", tt.input, err)
			}
			if n.Present() != tt.present || n.String() != tt.raw {
				t.Errorf("Number = %q (present %v)", n.String(), n.Present())
			}
		})
	}
}

func TestNumberMarshal(t *testing.T) {
	out, _ := json.Marshal(struct {
		A Number `json:"a"`
		B Number `json:"b"`
	}{A: NumberOf(18446744073709551615)})
	if string(out) != `{"a":"18446744073709551615","b":null}` {
		t.Errorf("Marshal = %s", out)
	}
}

func TestMessageJSON(t *testing.T) {
	j := MessageJSON{PublicKey: testutil.MainnetSender, Message: "hello"}
	m, err := j.ToMessage()
	if err != nil {
		t.Fatalf("ToMessage: %v", err)
	}
	if m.JSON() != j {
		t.Errorf("round trip = %+v", m.JSON())
	}
}
