// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Hash encodings selectable in config.yaml.
const (
	HashEncodingBinProt = "binprot"
	HashEncodingMsgpack = "msgpack"
)

// Signer backend names selectable in config.yaml.
const (
	SignerBackendRPC = "rpc"
)

// DefaultSignerTimeoutSeconds bounds each call to an external signer.
const DefaultSignerTimeoutSeconds = 30

// SignerConfig selects and configures the Schnorr signer backend.
type SignerConfig struct {
	Backend        string   `yaml:"backend" description:"Signer backend (rpc)" default:"rpc"`
	Command        string   `yaml:"command" description:"Signer executable (relative to data dir or absolute)"`
	Args           []string `yaml:"args" description:"Extra arguments for the signer executable"`
	TimeoutSeconds int      `yaml:"timeout_seconds" description:"Per-request timeout" default:"30"`
}

// Config holds minasign configuration settings
type Config struct {
	Network      string `yaml:"network" description:"Default network (mainnet, testnet)" default:"testnet"`
	HashEncoding string `yaml:"hash_encoding" description:"Binary encoding fed to the transaction hash (binprot, msgpack)" default:"binprot"`
	LogLevel     string `yaml:"log_level" description:"Log level (debug, info, warn, error)" default:"info"`

	// Signer backend (nil = no signing; codec and hash commands still work)
	Signer *SignerConfig `yaml:"signer" description:"External signer settings (omit to disable signing)"`
}

// DefaultConfig returns the default configuration for runtime use.
func DefaultConfig() Config {
	return Config{
		Network:      "testnet",
		HashEncoding: HashEncodingBinProt,
		LogLevel:     "info",
		Signer:       nil,
	}
}

// DefaultSignerConfig returns default signer settings (used when the signer
// block exists but fields are missing)
func DefaultSignerConfig() SignerConfig {
	return SignerConfig{
		Backend:        SignerBackendRPC,
		TimeoutSeconds: DefaultSignerTimeoutSeconds,
	}
}

// DataDirEnv overrides the default data directory.
const DataDirEnv = "MINASIGN_DATA"

// GetDataDir returns the minasign data directory.
// Resolution order: -d flag > MINASIGN_DATA env var > ~/.minasign
func GetDataDir(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envDir := os.Getenv(DataDirEnv); envDir != "" {
		return envDir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "" // Can't determine default
	}
	return filepath.Join(home, ".minasign")
}

// GetConfigPath returns the path to the config file in the data directory.
// Returns empty string if dataDir is empty.
func GetConfigPath(dataDir string) string {
	if dataDir == "" {
		return ""
	}
	return filepath.Join(dataDir, "config.yaml")
}

// LoadConfig loads configuration from config.yaml in the data directory.
// If dataDir is empty or the file doesn't exist, returns default config.
// A relative signer command is resolved against the data directory.
func LoadConfig(dataDir string) (Config, error) {
	config, err := LoadConfigFromPath(GetConfigPath(dataDir))
	if err != nil {
		return config, err
	}

	if config.Signer != nil && config.Signer.Command != "" {
		config.Signer.Command = ResolvePath(config.Signer.Command, dataDir)
	}

	return config, nil
}

// LoadConfigFromPath loads configuration from the specified path.
// If path is empty or the file doesn't exist, returns default config.
func LoadConfigFromPath(path string) (Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults, then overlay config file values
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

// Validate checks enumerated values and fills in signer defaults.
func (c *Config) Validate() error {
	c.Network = strings.ToLower(c.Network)
	if c.Network != "mainnet" && c.Network != "testnet" {
		return fmt.Errorf("invalid network '%s' in config (must be mainnet or testnet)", c.Network)
	}

	if c.HashEncoding == "" {
		c.HashEncoding = HashEncodingBinProt
	}
	if c.HashEncoding != HashEncodingBinProt && c.HashEncoding != HashEncodingMsgpack {
		return fmt.Errorf("invalid hash_encoding '%s' in config (must be %s or %s)",
			c.HashEncoding, HashEncodingBinProt, HashEncodingMsgpack)
	}

	// Fill in signer defaults if the signer block is present
	if c.Signer != nil {
		defaults := DefaultSignerConfig()
		if c.Signer.Backend == "" {
			c.Signer.Backend = defaults.Backend
		}
		if c.Signer.TimeoutSeconds == 0 {
			c.Signer.TimeoutSeconds = defaults.TimeoutSeconds
		}
		if c.Signer.TimeoutSeconds < 0 {
			return fmt.Errorf("signer.timeout_seconds must be positive")
		}
		if c.Signer.Backend == SignerBackendRPC && c.Signer.Command == "" {
			return fmt.Errorf("signer.command is required for the %s backend", SignerBackendRPC)
		}
	}
	return nil
}

// ResolvePath returns p unchanged if absolute, otherwise joined to base.
// A leading ~/ expands to the home directory.
func ResolvePath(p, base string) string {
	if strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, p[2:])
		}
	}
	if filepath.IsAbs(p) || base == "" {
		return p
	}
	return filepath.Join(base, p)
}

// DisplayConfig prints the current configuration
func DisplayConfig(dataDir string) {
	config, err := LoadConfig(dataDir)
	configPath := GetConfigPath(dataDir)

	fmt.Println("Current Configuration:")
	fmt.Println("=====================")
	fmt.Printf("Data dir:      %s\n", dataDir)
	fmt.Printf("Config file:   %s\n", configPath)
	if err != nil {
		fmt.Printf("Error:         %v\n", err)
		fmt.Println()
		return
	}
	fmt.Printf("Network:       %s\n", config.Network)
	fmt.Printf("Hash encoding: %s\n", config.HashEncoding)
	fmt.Printf("Log level:     %s\n", config.LogLevel)
	if config.Signer != nil {
		fmt.Printf("Signer:        %s (%s %s)\n", config.Signer.Backend, config.Signer.Command, strings.Join(config.Signer.Args, " "))
		fmt.Printf("Timeout:       %ds\n", config.Signer.TimeoutSeconds)
	} else {
		fmt.Printf("Signer:        disabled\n")
	}
	fmt.Println()
}
