// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// Package binenc provides the binary encoders that feed the transaction hash
// pipeline. The encoding is an injected capability: the hash is only
// meaningful relative to the encoder that produced its input bytes.
package binenc

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/aplane-algo/minasign/internal/command"
	"github.com/aplane-algo/minasign/internal/util"
)

// Encoder turns a signed command into bytes.
type Encoder interface {
	// Name is the config.yaml identifier (e.g. "binprot").
	Name() string
	Encode(cmd *command.SignedCommand) ([]byte, error)
}

var ErrUnknownEncoder = errors.New("unknown hash encoding")

var (
	encoders     *util.StringRegistry[Encoder]
	encodersOnce sync.Once
)

func registry() *util.StringRegistry[Encoder] {
	encodersOnce.Do(func() {
		encoders = util.NewStringRegistry[Encoder]()
		encoders.Set(BinProt{}.Name(), BinProt{})
		encoders.Set(Msgpack{}.Name(), Msgpack{})
	})
	return encoders
}

// Register adds an encoder. Returns false if the name is taken.
func Register(e Encoder) bool {
	return registry().Set(strings.ToLower(e.Name()), e)
}

// Get looks up an encoder by name (case-insensitive).
func Get(name string) (Encoder, error) {
	e, ok := registry().Get(strings.ToLower(name))
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownEncoder, name, strings.Join(Names(), ", "))
	}
	return e, nil
}

// Names lists registered encoders, sorted.
func Names() []string {
	return registry().Keys()
}

// Default is the encoder used when none is configured.
func Default() Encoder {
	return BinProt{}
}
