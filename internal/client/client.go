// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// Package client is the network-bound facade used by the CLI, the REPL and
// JavaScript scripts. It accepts and returns the caller-facing JSON shapes
// (base58 keys, decimal amounts) and delegates curve work to a signer
// backend.
package client

import (
	"context"

	"github.com/aplane-algo/minasign/internal/binenc"
	"github.com/aplane-algo/minasign/internal/keys"
	"github.com/aplane-algo/minasign/internal/network"
	"github.com/aplane-algo/minasign/internal/signer"
	"github.com/aplane-algo/minasign/internal/util"
)

// Client binds a network, a signer backend and a hash encoder.
// It holds no mutable state and is safe for concurrent use if the backend is.
type Client struct {
	network network.ID
	backend signer.Backend
	encoder binenc.Encoder
}

// Option configures a Client.
type Option func(*Client)

// WithBackend sets the signer backend. Without one, operations that need
// curve arithmetic return signer.ErrNoBackend.
func WithBackend(b signer.Backend) Option {
	return func(c *Client) { c.backend = b }
}

// WithEncoder sets the binary encoder used for transaction hashes.
func WithEncoder(e binenc.Encoder) Option {
	return func(c *Client) { c.encoder = e }
}

// New creates a client for the named network. An empty name is an error;
// "mainnet" selects mainnet and any other name selects testnet.
func New(networkName string, opts ...Option) (*Client, error) {
	id, err := network.Parse(networkName)
	if err != nil {
		return nil, err
	}
	c := &Client{network: id, encoder: binenc.Default()}
	for _, opt := range opts {
		opt(c)
	}
	util.Debug("client created", "network", id, "encoder", c.encoder.Name())
	return c, nil
}

// Network returns the bound network.
func (c *Client) Network() network.ID {
	return c.network
}

// Encoder returns the hash encoder.
func (c *Client) Encoder() binenc.Encoder {
	return c.encoder
}

func (c *Client) requireBackend() (signer.Backend, error) {
	if c.backend == nil {
		return nil, signer.ErrNoBackend
	}
	return c.backend, nil
}

// GenKeys asks the backend for a fresh keypair.
func (c *Client) GenKeys(ctx context.Context) (keys.Encoded, error) {
	b, err := c.requireBackend()
	if err != nil {
		return keys.Encoded{}, err
	}
	kp, err := b.GenerateKeypair(ctx)
	if err != nil {
		return keys.Encoded{}, err
	}
	defer kp.Zero()
	return kp.Encode(), nil
}

// VerifyKeypair reports whether the public key belongs to the private key.
func (c *Client) VerifyKeypair(ctx context.Context, enc keys.Encoded) (bool, error) {
	b, err := c.requireBackend()
	if err != nil {
		return false, err
	}
	kp, err := enc.Decode()
	if err != nil {
		return false, err
	}
	defer kp.Zero()
	return b.ValidateKeypair(ctx, kp)
}

// DerivePublicKey returns the address of a base58 private key.
func (c *Client) DerivePublicKey(ctx context.Context, privateKey string) (string, error) {
	b, err := c.requireBackend()
	if err != nil {
		return "", err
	}
	secret, err := keys.ParsePrivateKey(privateKey)
	if err != nil {
		return "", err
	}
	pk, err := b.DerivePublicKey(ctx, secret)
	if err != nil {
		return "", err
	}
	return pk.Address(), nil
}

// PublicKeyToRaw returns the upper-case hex of the compressed point.
func (c *Client) PublicKeyToRaw(address string) (string, error) {
	return keys.PublicKeyToRaw(address)
}

// Close releases the backend.
func (c *Client) Close() error {
	if c.backend == nil {
		return nil
	}
	return c.backend.Close()
}
