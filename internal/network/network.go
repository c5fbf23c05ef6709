// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// Package network identifies the Mina network a signature or hash is bound to.
//
// The network is always an explicit parameter. It selects the
// domain-separation string mixed into every signing hash, so the same
// transaction signed for mainnet never verifies on testnet.
package network

import (
	"fmt"
	"strings"
)

// ID selects the signing domain.
type ID uint8

const (
	Testnet ID = iota
	Mainnet
)

// Domain-separation strings. The hasher pads them to a single field element,
// so they must stay within MaxDomainLength characters.
const (
	MainnetDomain = "MinaSignatureMainnet"
	TestnetDomain = "CodaSignature"

	MaxDomainLength = 20
)

func init() {
	for _, d := range []string{MainnetDomain, TestnetDomain} {
		if len(d) > MaxDomainLength {
			panic("domain string too long: " + d)
		}
	}
}

// DomainString returns the domain-separation string for the network.
func (id ID) DomainString() string {
	if id == Mainnet {
		return MainnetDomain
	}
	return TestnetDomain
}

func (id ID) String() string {
	if id == Mainnet {
		return "mainnet"
	}
	return "testnet"
}

// Parse converts a client network option into an ID.
// An empty name is rejected; "mainnet" selects Mainnet and every other
// value selects Testnet, matching the behaviour of the mina-signer client.
func Parse(name string) (ID, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Testnet, fmt.Errorf("network should not be empty, expect 'mainnet' or 'testnet'")
	}
	if strings.EqualFold(name, "mainnet") {
		return Mainnet, nil
	}
	return Testnet, nil
}

// ParseStrict accepts only "mainnet" or "testnet". Used for config files
// where a typo should not silently fall back to testnet.
func ParseStrict(name string) (ID, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "mainnet":
		return Mainnet, nil
	case "testnet":
		return Testnet, nil
	default:
		return Testnet, fmt.Errorf("invalid network '%s' (must be mainnet or testnet)", name)
	}
}
