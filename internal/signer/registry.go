// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package signer

import (
	"fmt"
	"strings"

	"github.com/aplane-algo/minasign/internal/util"
)

// Factory opens a backend from its config block.
type Factory func(cfg util.SignerConfig) (Backend, error)

var factories = util.NewStringRegistry[Factory]()

// Register adds a backend factory.
// Panics if a factory with the same name is already registered.
func Register(name string, f Factory) {
	if !factories.Set(strings.ToLower(name), f) {
		panic("duplicate signer backend registration: " + name)
	}
}

// Open creates the backend named by cfg.Backend.
// A nil cfg means signing is disabled and returns ErrNoBackend.
func Open(cfg *util.SignerConfig) (Backend, error) {
	if cfg == nil {
		return nil, ErrNoBackend
	}
	f, ok := factories.Get(strings.ToLower(cfg.Backend))
	if !ok {
		return nil, fmt.Errorf("%w: %q (registered: %s)", ErrUnknownBackend, cfg.Backend, strings.Join(Backends(), ", "))
	}
	b, err := f(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s signer: %w", cfg.Backend, err)
	}
	util.Debug("signer backend opened", "backend", b.Name())
	return b, nil
}

// Backends returns the registered backend names, sorted.
func Backends() []string {
	return factories.Keys()
}
