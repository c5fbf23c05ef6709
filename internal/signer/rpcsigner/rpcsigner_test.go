// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package rpcsigner

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aplane-algo/minasign/internal/errs"
	"github.com/aplane-algo/minasign/internal/keys"
	"github.com/aplane-algo/minasign/internal/memo"
	"github.com/aplane-algo/minasign/internal/network"
	"github.com/aplane-algo/minasign/internal/signer"
	"github.com/aplane-algo/minasign/internal/testutil"
	"github.com/aplane-algo/minasign/internal/txn"
)

// fakeProcess serves the signer protocol from a FakeBackend over pipes,
// standing in for an external signer executable.
type fakeProcess struct {
	backend *testutil.FakeBackend
	in      *io.PipeReader
	out     *io.PipeWriter
	// silent drops requests for this method without answering.
	silent string
}

func startFake(t *testing.T, silent string) (*Backend, *fakeProcess) {
	t.Helper()
	reqR, reqW := io.Pipe()
	respR, respW := io.Pipe()

	p := &fakeProcess{backend: testutil.NewFakeBackend(), in: reqR, out: respW, silent: silent}
	go p.serve()

	b := New(respR, reqW, 2*time.Second)
	t.Cleanup(func() {
		_ = b.Close()
		_ = reqW.Close()
		_ = respW.Close()
	})
	return b, p
}

func (p *fakeProcess) serve() {
	ctx := context.Background()
	scanner := bufio.NewScanner(p.in)
	for scanner.Scan() {
		var req struct {
			Method string          `json:"method"`
			Params json.RawMessage `json:"params"`
			ID     uint64          `json:"id"`
		}
		if err := json.Unmarshal(scanner.Bytes(), &req); err != nil {
			continue
		}
		if req.Method == p.silent {
			continue
		}
		result, rpcErr := p.dispatch(ctx, req.Method, req.Params)
		resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
		if rpcErr != nil {
			resp["error"] = rpcErr
		} else {
			resp["result"] = result
		}
		data, _ := json.Marshal(resp)
		if _, err := p.out.Write(append(data, '\n')); err != nil {
			return
		}
	}
}

func (p *fakeProcess) dispatch(ctx context.Context, method string, raw json.RawMessage) (any, *Error) {
	invalidKey := func(err error) *Error { return &Error{Code: InvalidKey, Message: err.Error()} }

	switch method {
	case MethodGenerateKeypair:
		kp, _ := p.backend.GenerateKeypair(ctx)
		return KeypairParams{PrivateKey: kp.PrivateKey(), PublicKey: kp.Public.Address()}, nil

	case MethodDerivePublicKey:
		var params PrivateKeyParams
		_ = json.Unmarshal(raw, &params)
		secret, err := keys.ParsePrivateKey(params.PrivateKey)
		if err != nil {
			return nil, invalidKey(err)
		}
		pk, _ := p.backend.DerivePublicKey(ctx, secret)
		return PublicKeyResult{PublicKey: pk.Address()}, nil

	case MethodValidateKeypair:
		var params KeypairParams
		_ = json.Unmarshal(raw, &params)
		kp, err := keys.NewKeypair(params.PrivateKey, params.PublicKey)
		if err != nil {
			return nil, invalidKey(err)
		}
		ok, _ := p.backend.ValidateKeypair(ctx, kp)
		return ValidResult{Valid: ok}, nil

	case MethodSign:
		var params SignParams
		_ = json.Unmarshal(raw, &params)
		kp, err := keys.NewKeypair(params.PrivateKey, params.PublicKey)
		if err != nil {
			return nil, invalidKey(err)
		}
		in, err := ParseWireInput(params.Input)
		if err != nil {
			return nil, &Error{Code: InvalidParams, Message: err.Error()}
		}
		sig, err := p.backend.Sign(ctx, signer.SignRequest{Domain: params.Domain, Input: in, Keypair: kp})
		if err != nil {
			return nil, invalidKey(err)
		}
		return sig.JSON(), nil

	case MethodVerify:
		var params VerifyParams
		_ = json.Unmarshal(raw, &params)
		pk, err := keys.ParseAddress(params.PublicKey)
		if err != nil {
			return nil, invalidKey(err)
		}
		in, err := ParseWireInput(params.Input)
		if err != nil {
			return nil, &Error{Code: InvalidParams, Message: err.Error()}
		}
		sig, err := params.Signature.Signature()
		if err != nil {
			return nil, &Error{Code: InvalidParams, Message: err.Error()}
		}
		ok, _ := p.backend.Verify(ctx, signer.VerifyRequest{Domain: params.Domain, Input: in, PublicKey: pk, Signature: sig})
		return ValidResult{Valid: ok}, nil
	}
	return nil, &Error{Code: MethodNotFound, Message: "method not found: " + method}
}

func TestWireInputRoundTrip(t *testing.T) {
	kp := testutil.Keypair(3)
	p := &txn.Payment{To: kp.Public, From: kp.Public, Fee: 9, Amount: 10, Nonce: 11, Memo: memo.FromString("wire"), ValidUntil: 12}

	wire := WireInput(p.ROInput())
	if wire[0].Kind != "field" || wire[3].Kind != "u64" || wire[3].Value != "9" || wire[8].Kind != "bytes" {
		t.Errorf("unexpected wire prefix: %+v", wire[:9])
	}

	back, err := ParseWireInput(wire)
	if err != nil {
		t.Fatalf("ParseWireInput: %v", err)
	}
	if string(back.Serialize()) != string(p.ROInput().Serialize()) {
		t.Error("wire round trip changed the input")
	}

	if _, err := ParseWireInput([]WireEntry{{Kind: "float", Value: "1"}}); err == nil {
		t.Error("unknown kind should fail")
	}
	if _, err := ParseWireInput([]WireEntry{{Kind: "u32", Value: "4294967296"}}); err == nil {
		t.Error("u32 overflow should fail")
	}
}

func TestBackendRoundTrip(t *testing.T) {
	b, fake := startFake(t, "")
	ctx := context.Background()

	kp, err := b.GenerateKeypair(ctx)
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	if ok, err := b.ValidateKeypair(ctx, kp); err != nil || !ok {
		t.Fatalf("ValidateKeypair = %v, %v", ok, err)
	}
	pk, err := b.DerivePublicKey(ctx, kp.Secret)
	if err != nil || pk != kp.Public {
		t.Fatalf("DerivePublicKey = %v, %v", pk, err)
	}

	msg := &txn.Message{PublicKey: kp.Public, Text: "hello over rpc"}
	sig, err := b.Sign(ctx, signer.NewSignRequest(kp, msg, network.Mainnet))
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	want := testutil.FakeSignature(network.Mainnet.DomainString(), msg.ROInput(), kp.Public)
	if !sig.Equal(want) {
		t.Error("signature did not survive the wire")
	}

	ok, err := b.Verify(ctx, signer.NewVerifyRequest(kp.Public, msg, sig, network.Mainnet))
	if err != nil || !ok {
		t.Errorf("Verify = %v, %v", ok, err)
	}
	ok, _ = b.Verify(ctx, signer.NewVerifyRequest(kp.Public, msg, sig, network.Testnet))
	if ok {
		t.Error("signature verified under the wrong domain")
	}

	if fake.backend.CallCount("sign") != 1 {
		t.Errorf("sign calls = %d", fake.backend.CallCount("sign"))
	}
}

func TestBackendKeyError(t *testing.T) {
	b, _ := startFake(t, "")
	ctx := context.Background()

	kp := *testutil.Keypair(1)
	kp.Public = testutil.Keypair(2).Public
	msg := &txn.Message{PublicKey: kp.Public, Text: "x"}

	_, err := b.Sign(ctx, signer.NewSignRequest(&kp, msg, network.Testnet))
	if !errors.Is(err, errs.ErrKey) {
		t.Errorf("error = %v, want ErrKey", err)
	}
	var rpcErr *Error
	if !errors.As(err, &rpcErr) || rpcErr.Code != InvalidKey {
		t.Errorf("expected RPC error code %d, got %v", InvalidKey, err)
	}
}

func TestCallTimeout(t *testing.T) {
	b, _ := startFake(t, MethodGenerateKeypair)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := b.GenerateKeypair(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want deadline exceeded", err)
	}
}

func TestProcessExit(t *testing.T) {
	reqR, reqW := io.Pipe()
	respR, respW := io.Pipe()
	b := New(respR, reqW, time.Second)
	defer b.Close()

	// Drain one request, then exit without answering.
	go func() {
		scanner := bufio.NewScanner(reqR)
		scanner.Scan()
		_ = respW.Close()
	}()

	_, err := b.GenerateKeypair(context.Background())
	if !errors.Is(err, ErrBackendExited) {
		t.Errorf("error = %v, want ErrBackendExited", err)
	}

	// Later calls fail fast.
	if _, err := b.GenerateKeypair(context.Background()); !errors.Is(err, ErrBackendExited) {
		t.Errorf("second call error = %v", err)
	}
}

func TestRegisteredWithSigner(t *testing.T) {
	found := false
	for _, name := range signer.Backends() {
		if name == BackendName {
			found = true
		}
	}
	if !found {
		t.Errorf("%s backend not registered: %v", BackendName, signer.Backends())
	}
}
