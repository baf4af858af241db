package creds

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/TheMichaelB/pincheck/internal/codec"
	"github.com/TheMichaelB/pincheck/internal/config"
)

// ErrNoPassphrase is returned when a credential file holds no passphrase.
var ErrNoPassphrase = errors.New("credential file has no passphrase")

// Combined represents a credential file. The file is either a bare
// passphrase on one line or a JSON document:
//
//	{"crypto": {"passphrase": "...", "key_size_bits": 128, "iterations": 10000}}
type Combined struct {
	Crypto struct {
		Passphrase  string `json:"passphrase"`
		KeySizeBits int    `json:"key_size_bits,omitempty"`
		Iterations  int    `json:"iterations,omitempty"`
	} `json:"crypto"`
}

// ParseCombined parses credential file bytes into Combined.
func ParseCombined(data []byte) (*Combined, error) {
	text := strings.TrimSpace(string(data))

	var c Combined
	if codec.LooksLikeJSON(text) {
		if err := json.Unmarshal([]byte(text), &c); err != nil {
			return nil, fmt.Errorf("parse credential file: %w", err)
		}
	} else {
		c.Crypto.Passphrase = text
	}

	if c.Crypto.Passphrase == "" {
		return nil, ErrNoPassphrase
	}
	return &c, nil
}

// LoadFromFile loads Combined from a local file path.
func LoadFromFile(path string) (*Combined, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseCombined(b)
}

// Apply copies the credentials into cfg. A passphrase already set in cfg
// wins, so env and config values override the file.
func (c *Combined) Apply(cfg *config.CryptoConfig) {
	if cfg.Passphrase == "" {
		cfg.Passphrase = c.Crypto.Passphrase
	}
	if c.Crypto.KeySizeBits != 0 {
		cfg.KeySizeBits = c.Crypto.KeySizeBits
	}
	if c.Crypto.Iterations != 0 {
		cfg.Iterations = c.Crypto.Iterations
	}
}

// Resolve fills cfg.Passphrase from cfg.PassphraseFile when one is
// configured and the passphrase is still empty.
func Resolve(cfg *config.CryptoConfig) error {
	if cfg.Passphrase != "" || cfg.PassphraseFile == "" {
		return nil
	}

	c, err := LoadFromFile(cfg.PassphraseFile)
	if err != nil {
		return fmt.Errorf("load passphrase file %s: %w", cfg.PassphraseFile, err)
	}
	c.Apply(cfg)
	return nil
}
