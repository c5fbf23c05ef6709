// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package client

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/aplane-algo/minasign/internal/binenc"
	"github.com/aplane-algo/minasign/internal/errs"
	"github.com/aplane-algo/minasign/internal/network"
	"github.com/aplane-algo/minasign/internal/signer"
	"github.com/aplane-algo/minasign/internal/testutil"
	"github.com/aplane-algo/minasign/internal/txn"
)

const rosettaSignature = "389ac7d4077f3d485c1494782870979faa222cd906b25b2687333a92f41e40b925adb08705eddf2a7098e5ac9938498e8a0ce7c70b25ea392f4846b854086d43"

func newTestClient(t *testing.T, net string) (*Client, *testutil.FakeBackend) {
	t.Helper()
	fb := testutil.NewFakeBackend()
	c, err := New(net, WithBackend(fb))
	if err != nil {
		t.Fatalf("New(%q): %v", net, err)
	}
	return c, fb
}

func testPayment(from string) txn.PaymentJSON {
	memo := "hello"
	return txn.PaymentJSON{
		To:         testutil.ValidTestAddress(2),
		From:       from,
		Fee:        txn.NumberOf(1_000_000),
		Amount:     txn.NumberOf(1_000_000_000),
		Nonce:      txn.NumberOf(3),
		Memo:       &memo,
		ValidUntil: txn.NumberOf(200),
	}
}

func testDelegation(from string) txn.DelegationJSON {
	return txn.DelegationJSON{
		To:    testutil.ValidTestAddress(3),
		From:  from,
		Fee:   txn.NumberOf(2_000_000),
		Nonce: txn.NumberOf(7),
	}
}

func TestNewNetworkSelection(t *testing.T) {
	tests := []struct {
		name    string
		want    network.ID
		wantErr bool
	}{
		{"mainnet", network.Mainnet, false},
		{"testnet", network.Testnet, false},
		{"devnet", network.Testnet, false},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.name)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if c.Network() != tt.want {
				t.Errorf("Network() = %v, want %v", c.Network(), tt.want)
			}
			if c.Encoder().Name() != binenc.Default().Name() {
				t.Errorf("Encoder() = %s, want default", c.Encoder().Name())
			}
		})
	}
}

func TestWithoutBackend(t *testing.T) {
	c, err := New("testnet")
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if _, err := c.GenKeys(ctx); !errors.Is(err, signer.ErrNoBackend) {
		t.Errorf("GenKeys error = %v, want ErrNoBackend", err)
	}
	kp := testutil.Keypair(1).Encode()
	if _, err := c.SignMessage(ctx, "hi", kp); !errors.Is(err, signer.ErrNoBackend) {
		t.Errorf("SignMessage error = %v, want ErrNoBackend", err)
	}
	// Pure operations still work.
	if _, err := c.PublicKeyToRaw(kp.PublicKey); err != nil {
		t.Errorf("PublicKeyToRaw: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestKeys(t *testing.T) {
	c, fb := newTestClient(t, "testnet")
	ctx := context.Background()

	kp, err := c.GenKeys(ctx)
	if err != nil {
		t.Fatalf("GenKeys: %v", err)
	}
	if !strings.HasPrefix(kp.PublicKey, "B62q") {
		t.Errorf("public key %q lacks B62q prefix", kp.PublicKey)
	}
	if !strings.HasPrefix(kp.PrivateKey, "EK") {
		t.Errorf("private key %q lacks EK prefix", kp.PrivateKey)
	}

	ok, err := c.VerifyKeypair(ctx, kp)
	if err != nil || !ok {
		t.Errorf("VerifyKeypair = %v, %v", ok, err)
	}

	derived, err := c.DerivePublicKey(ctx, kp.PrivateKey)
	if err != nil {
		t.Fatalf("DerivePublicKey: %v", err)
	}
	if derived != kp.PublicKey {
		t.Errorf("DerivePublicKey = %s, want %s", derived, kp.PublicKey)
	}

	other, _ := c.GenKeys(ctx)
	if other.PublicKey == kp.PublicKey {
		t.Error("GenKeys returned the same key twice")
	}
	mixed := kp
	mixed.PublicKey = other.PublicKey
	ok, err = c.VerifyKeypair(ctx, mixed)
	if err != nil || ok {
		t.Errorf("VerifyKeypair(mismatched) = %v, %v", ok, err)
	}

	if _, err := c.DerivePublicKey(ctx, "not-a-key"); err == nil {
		t.Error("expected error for malformed private key")
	}
	if fb.CallCount("generate_keypair") != 2 {
		t.Errorf("generate_keypair calls = %d, want 2", fb.CallCount("generate_keypair"))
	}
}

func TestPublicKeyToRaw(t *testing.T) {
	c, _ := newTestClient(t, "mainnet")
	raw, err := c.PublicKeyToRaw(testutil.MainnetReceiver)
	if err != nil {
		t.Fatalf("PublicKeyToRaw: %v", err)
	}
	if len(raw) != 64 || strings.ToUpper(raw) != raw {
		t.Errorf("raw = %q, want 64 upper-case hex chars", raw)
	}
	if _, err := c.PublicKeyToRaw("B62qbad"); err == nil {
		t.Error("expected error for malformed address")
	}
}

func TestSignVerifyMessage(t *testing.T) {
	c, _ := newTestClient(t, "testnet")
	ctx := context.Background()
	kp := testutil.Keypair(5).Encode()

	sm, err := c.SignMessage(ctx, "hello world", kp)
	if err != nil {
		t.Fatalf("SignMessage: %v", err)
	}
	if sm.Signature.String != "hello world" || sm.Signature.Signer != kp.PublicKey {
		t.Errorf("envelope = %+v", sm.Signature)
	}
	if sm.Data.Message != "hello world" || sm.Data.PublicKey != kp.PublicKey {
		t.Errorf("data = %+v", sm.Data)
	}

	ok, err := c.VerifyMessage(ctx, sm)
	if err != nil || !ok {
		t.Fatalf("VerifyMessage = %v, %v", ok, err)
	}

	tampered := *sm
	tampered.Data.Message = "hello world!"
	ok, err = c.VerifyMessage(ctx, &tampered)
	if err != nil || ok {
		t.Errorf("VerifyMessage(tampered) = %v, %v", ok, err)
	}

	// The same signature does not verify under the other network's domain.
	mainnet, _ := newTestClient(t, "mainnet")
	ok, err = mainnet.VerifyMessage(ctx, sm)
	if err != nil || ok {
		t.Errorf("VerifyMessage(mainnet) = %v, %v", ok, err)
	}
}

func TestSignMessageEnvelopeJSON(t *testing.T) {
	c, _ := newTestClient(t, "testnet")
	sm, err := c.SignMessage(context.Background(), "x", testutil.Keypair(6).Encode())
	if err != nil {
		t.Fatal(err)
	}
	raw, err := json.Marshal(sm)
	if err != nil {
		t.Fatal(err)
	}
	var shape map[string]map[string]json.RawMessage
	if err := json.Unmarshal(raw, &shape); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"string", "signer", "signature"} {
		if _, ok := shape["signature"][key]; !ok {
			t.Errorf("signature.%s missing in %s", key, raw)
		}
	}
	for _, key := range []string{"publicKey", "message"} {
		if _, ok := shape["data"][key]; !ok {
			t.Errorf("data.%s missing in %s", key, raw)
		}
	}
}

func TestSignVerifyPayment(t *testing.T) {
	c, fb := newTestClient(t, "mainnet")
	ctx := context.Background()
	kp := testutil.Keypair(8).Encode()

	sp, err := c.SignPayment(ctx, testPayment(kp.PublicKey), kp)
	if err != nil {
		t.Fatalf("SignPayment: %v", err)
	}
	if sp.Data.Fee.String() != "1000000" || sp.Data.ValidUntil.String() != "200" {
		t.Errorf("data = %+v", sp.Data)
	}

	ok, err := c.VerifyPayment(ctx, sp)
	if err != nil || !ok {
		t.Fatalf("VerifyPayment = %v, %v", ok, err)
	}

	tampered := *sp
	tampered.Data.Amount = txn.NumberOf(1)
	ok, err = c.VerifyPayment(ctx, &tampered)
	if err != nil || ok {
		t.Errorf("VerifyPayment(tampered) = %v, %v", ok, err)
	}
	if fb.CallCount("sign") != 1 || fb.CallCount("verify") != 2 {
		t.Errorf("calls = %v", fb.Calls)
	}
}

func TestSignPaymentWrongKey(t *testing.T) {
	c, _ := newTestClient(t, "testnet")
	kp := testutil.Keypair(9).Encode()
	other := testutil.Keypair(10).Encode()
	kp.PublicKey = other.PublicKey

	_, err := c.SignPayment(context.Background(), testPayment(kp.PublicKey), kp)
	if !errors.Is(err, errs.ErrKey) {
		t.Errorf("error = %v, want ErrKey", err)
	}
}

func TestSignPaymentInvalid(t *testing.T) {
	c, _ := newTestClient(t, "testnet")
	kp := testutil.Keypair(11).Encode()
	p := testPayment(kp.PublicKey)
	p.To = "B62qinvalid"

	if _, err := c.SignPayment(context.Background(), p, kp); err == nil {
		t.Error("expected error for invalid receiver")
	}
}

func TestSignedPaymentSurvivesJSON(t *testing.T) {
	tests := []struct {
		name string
		memo string
	}{
		{"ascii", "rent"},
		{"split rune at truncation", strings.Repeat("a", 31) + "é"},
		{"long multi-byte", strings.Repeat("ü", 20)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, "mainnet")
			ctx := context.Background()
			kp := testutil.Keypair(14).Encode()
			p := testPayment(kp.PublicKey)
			p.Memo = &tt.memo

			sp, err := c.SignPayment(ctx, p, kp)
			if err != nil {
				t.Fatalf("SignPayment: %v", err)
			}
			want, err := c.HashPayment(sp)
			if err != nil {
				t.Fatal(err)
			}

			out, err := json.Marshal(sp)
			if err != nil {
				t.Fatal(err)
			}
			var back SignedPayment
			if err := json.Unmarshal(out, &back); err != nil {
				t.Fatal(err)
			}
			ok, err := c.VerifyPayment(ctx, &back)
			if err != nil || !ok {
				t.Errorf("VerifyPayment after JSON = %v, %v", ok, err)
			}
			if got, _ := c.HashPayment(&back); got != want {
				t.Errorf("hash after JSON = %s, want %s", got, want)
			}
		})
	}
}

func TestSignedDelegationSurvivesJSON(t *testing.T) {
	c, _ := newTestClient(t, "testnet")
	ctx := context.Background()
	kp := testutil.Keypair(15).Encode()
	d := testDelegation(kp.PublicKey)
	memo := strings.Repeat("b", 31) + "€"
	d.Memo = &memo

	sd, err := c.SignStakeDelegation(ctx, d, kp)
	if err != nil {
		t.Fatalf("SignStakeDelegation: %v", err)
	}
	want, err := c.HashStakeDelegation(sd)
	if err != nil {
		t.Fatal(err)
	}
	out, err := json.Marshal(sd)
	if err != nil {
		t.Fatal(err)
	}
	var back SignedStakeDelegation
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatal(err)
	}
	ok, err := c.VerifyStakeDelegation(ctx, &back)
	if err != nil || !ok {
		t.Errorf("VerifyStakeDelegation after JSON = %v, %v", ok, err)
	}
	if got, _ := c.HashStakeDelegation(&back); got != want {
		t.Errorf("hash after JSON = %s, want %s", got, want)
	}
}

func TestSignRejectsInvalidUTF8Memo(t *testing.T) {
	c, fb := newTestClient(t, "testnet")
	ctx := context.Background()
	kp := testutil.Keypair(16).Encode()
	bad := "memo\xff"

	p := testPayment(kp.PublicKey)
	p.Memo = &bad
	if _, err := c.SignPayment(ctx, p, kp); !errors.Is(err, errs.ErrValidation) {
		t.Errorf("SignPayment error = %v, want ErrValidation", err)
	}

	d := testDelegation(kp.PublicKey)
	d.Memo = &bad
	if _, err := c.SignStakeDelegation(ctx, d, kp); !errors.Is(err, errs.ErrValidation) {
		t.Errorf("SignStakeDelegation error = %v, want ErrValidation", err)
	}
	if fb.CallCount("sign") != 0 {
		t.Errorf("backend signed %d times", fb.CallCount("sign"))
	}
}

func TestSignVerifyStakeDelegation(t *testing.T) {
	c, _ := newTestClient(t, "testnet")
	ctx := context.Background()
	kp := testutil.Keypair(12).Encode()

	sd, err := c.SignStakeDelegation(ctx, testDelegation(kp.PublicKey), kp)
	if err != nil {
		t.Fatalf("SignStakeDelegation: %v", err)
	}
	ok, err := c.VerifyStakeDelegation(ctx, sd)
	if err != nil || !ok {
		t.Fatalf("VerifyStakeDelegation = %v, %v", ok, err)
	}

	// A delegation signature never verifies as a payment with the same fields.
	sp := &SignedPayment{
		Signature: sd.Signature,
		Data: txn.PaymentJSON{
			To:         sd.Data.To,
			From:       sd.Data.From,
			Fee:        sd.Data.Fee,
			Amount:     txn.NumberOf(0),
			Nonce:      sd.Data.Nonce,
			ValidUntil: sd.Data.ValidUntil,
		},
	}
	ok, err = c.VerifyPayment(ctx, sp)
	if err != nil || ok {
		t.Errorf("VerifyPayment(delegation signature) = %v, %v", ok, err)
	}
}

func TestVerifyMalformedSignature(t *testing.T) {
	c, _ := newTestClient(t, "testnet")
	kp := testutil.Keypair(13).Encode()
	sp, err := c.SignPayment(context.Background(), testPayment(kp.PublicKey), kp)
	if err != nil {
		t.Fatal(err)
	}
	sp.Signature.Field = "not-a-number"
	if _, err := c.VerifyPayment(context.Background(), sp); err == nil {
		t.Error("expected error for malformed signature")
	}
}

func TestHashPayment(t *testing.T) {
	c, _ := newTestClient(t, "testnet")
	kp := testutil.Keypair(14).Encode()
	sp, err := c.SignPayment(context.Background(), testPayment(kp.PublicKey), kp)
	if err != nil {
		t.Fatal(err)
	}

	h1, err := c.HashPayment(sp)
	if err != nil {
		t.Fatalf("HashPayment: %v", err)
	}
	h2, _ := c.HashPayment(sp)
	if h1 != h2 {
		t.Errorf("hash not deterministic: %s vs %s", h1, h2)
	}
	if len(h1) < 40 {
		t.Errorf("hash %q too short", h1)
	}

	unsigned := *sp
	unsigned.Signature.Field, unsigned.Signature.Scalar = "", ""
	h3, err := c.HashPayment(&unsigned)
	if err != nil {
		t.Fatalf("HashPayment(unsigned): %v", err)
	}
	if h3 == h1 {
		t.Error("dummy-signature hash equals signed hash")
	}
}

func TestHashStakeDelegation(t *testing.T) {
	c, _ := newTestClient(t, "testnet")
	sd := &SignedStakeDelegation{Data: testDelegation(testutil.ValidTestAddress(15))}
	h, err := c.HashStakeDelegation(sd)
	if err != nil {
		t.Fatalf("HashStakeDelegation: %v", err)
	}
	if h == "" {
		t.Error("empty hash")
	}
	sd.Data.Fee = txn.NumberOf(2_000_001)
	h2, _ := c.HashStakeDelegation(sd)
	if h == h2 {
		t.Error("fee change did not change hash")
	}
}

func TestEncoderChoiceChangesHash(t *testing.T) {
	mp, err := binenc.Get("msgpack")
	if err != nil {
		t.Fatal(err)
	}
	a, _ := newTestClient(t, "testnet")
	b, err := New("testnet", WithEncoder(mp))
	if err != nil {
		t.Fatal(err)
	}
	sd := &SignedStakeDelegation{Data: testDelegation(testutil.ValidTestAddress(16))}
	ha, _ := a.HashStakeDelegation(sd)
	hb, _ := b.HashStakeDelegation(sd)
	if ha == hb {
		t.Error("bin_prot and msgpack hashes should differ")
	}
}

func TestSignedRosettaTransactionToSignedCommand(t *testing.T) {
	c, _ := newTestClient(t, "mainnet")
	doc := `{
		"signature": "` + rosettaSignature + `",
		"payment": {
			"to": "` + testutil.MainnetReceiver + `",
			"from": "` + testutil.MainnetSender + `",
			"fee": "10000000",
			"token": "1",
			"nonce": "5",
			"memo": null,
			"amount": "1000000000",
			"valid_until": "4294967295"
		},
		"stake_delegation": null
	}`

	out, err := c.SignedRosettaTransactionToSignedCommand(doc)
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	var wrapped struct {
		Data map[string]json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal([]byte(out), &wrapped); err != nil {
		t.Fatalf("unmarshal %s: %v", out, err)
	}
	for _, key := range []string{"payload", "signer", "signature"} {
		if _, ok := wrapped.Data[key]; !ok {
			t.Errorf("data.%s missing in %s", key, out)
		}
	}

	hash, err := c.HashRosettaTransaction(doc)
	if err != nil || hash == "" {
		t.Errorf("HashRosettaTransaction = %q, %v", hash, err)
	}

	if _, err := c.SignedRosettaTransactionToSignedCommand(`{"signature":"00"}`); err == nil {
		t.Error("expected error for document without a body")
	}
}

func TestClosedBackend(t *testing.T) {
	c, _ := newTestClient(t, "testnet")
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := c.GenKeys(context.Background()); !errors.Is(err, testutil.ErrBackendClosed) {
		t.Errorf("error = %v, want ErrBackendClosed", err)
	}
}
