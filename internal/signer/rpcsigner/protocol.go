// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package rpcsigner

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/aplane-algo/minasign/internal/field"
	"github.com/aplane-algo/minasign/internal/roinput"
	"github.com/aplane-algo/minasign/internal/signature"
)

// Request is a JSON-RPC 2.0 request sent to the signer process.
type Request struct {
	Jsonrpc string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
	ID      uint64 `json:"id"`
}

// Response is a JSON-RPC 2.0 response from the signer process.
type Response struct {
	Jsonrpc string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
	ID      json.Number     `json:"id"`
}

// Error is a JSON-RPC error object.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// Standard JSON-RPC error codes
const (
	ParseError     = -32700
	InvalidRequest = -32600
	MethodNotFound = -32601
	InvalidParams  = -32602
	InternalError  = -32603
)

// Signer-specific error codes
const (
	InvalidKey     = -32000
	InvalidPayload = -32001
)

// Methods served by a signer process.
const (
	MethodSign            = "sign"
	MethodVerify          = "verify"
	MethodValidateKeypair = "validate_keypair"
	MethodDerivePublicKey = "derive_public_key"
	MethodGenerateKeypair = "generate_keypair"
)

// NewRequest creates a new JSON-RPC request.
func NewRequest(method string, params any, id uint64) *Request {
	return &Request{Jsonrpc: "2.0", Method: method, Params: params, ID: id}
}

// HasError checks if the response contains an error.
func (r *Response) HasError() bool {
	return r.Error != nil
}

// ParseResult unmarshals the result into v.
func (r *Response) ParseResult(v any) error {
	if len(r.Result) == 0 {
		return fmt.Errorf("no result in response")
	}
	if err := json.Unmarshal(r.Result, v); err != nil {
		return fmt.Errorf("failed to unmarshal result: %w", err)
	}
	return nil
}

// WireEntry is one random-oracle input entry on the wire. Integers and
// field elements are decimal strings; bytes are hex.
type WireEntry struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

// WireInput converts an input to its wire form.
func WireInput(in *roinput.Input) []WireEntry {
	entries := in.Entries()
	out := make([]WireEntry, 0, len(entries))
	for _, e := range entries {
		w := WireEntry{Kind: e.Kind.String()}
		switch e.Kind {
		case roinput.KindField:
			w.Value = e.Field.Decimal()
		case roinput.KindU32, roinput.KindU64:
			w.Value = strconv.FormatUint(e.U64, 10)
		case roinput.KindBool:
			w.Value = strconv.FormatBool(e.Bool)
		case roinput.KindBytes:
			w.Value = hex.EncodeToString(e.Bytes)
		}
		out = append(out, w)
	}
	return out
}

// SignParams are the params of MethodSign.
type SignParams struct {
	Network    string      `json:"network"`
	Domain     string      `json:"domain"`
	Input      []WireEntry `json:"input"`
	PrivateKey string      `json:"private_key"`
	PublicKey  string      `json:"public_key"`
}

// VerifyParams are the params of MethodVerify.
type VerifyParams struct {
	Network   string         `json:"network"`
	Domain    string         `json:"domain"`
	Input     []WireEntry    `json:"input"`
	PublicKey string         `json:"public_key"`
	Signature signature.JSON `json:"signature"`
}

// KeypairParams carries an encoded keypair.
type KeypairParams struct {
	PrivateKey string `json:"private_key"`
	PublicKey  string `json:"public_key"`
}

// PrivateKeyParams carries an encoded private key.
type PrivateKeyParams struct {
	PrivateKey string `json:"private_key"`
}

// PublicKeyResult carries an address.
type PublicKeyResult struct {
	PublicKey string `json:"public_key"`
}

// ValidResult is returned by verify and validate_keypair.
type ValidResult struct {
	Valid bool `json:"valid"`
}

// ParseWireInput reverses WireInput. Signer processes written in Go use it
// to rebuild the exact entry sequence.
func ParseWireInput(entries []WireEntry) (*roinput.Input, error) {
	in := roinput.New()
	for i, w := range entries {
		switch w.Kind {
		case roinput.KindField.String():
			e, err := field.Base.FromDecimal(w.Value)
			if err != nil {
				return nil, fmt.Errorf("entry %d: %w", i, err)
			}
			in.AppendField(e)
		case roinput.KindU32.String():
			v, err := strconv.ParseUint(w.Value, 10, 32)
			if err != nil {
				return nil, fmt.Errorf("entry %d: %w", i, err)
			}
			in.AppendU32(uint32(v))
		case roinput.KindU64.String():
			v, err := strconv.ParseUint(w.Value, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("entry %d: %w", i, err)
			}
			in.AppendU64(v)
		case roinput.KindBool.String():
			v, err := strconv.ParseBool(w.Value)
			if err != nil {
				return nil, fmt.Errorf("entry %d: %w", i, err)
			}
			in.AppendBool(v)
		case roinput.KindBytes.String():
			b, err := hex.DecodeString(w.Value)
			if err != nil {
				return nil, fmt.Errorf("entry %d: %w", i, err)
			}
			in.AppendBytes(b)
		default:
			return nil, fmt.Errorf("entry %d: unknown kind %q", i, w.Kind)
		}
	}
	return in, nil
}
