// Package envelope implements the self-describing wrapped string exchanged
// with the lookup service:
//
//	base64("<keySizeBits>::<iterations>::<ivHex>::<saltHex>::<cipherTextB64>")
//
// The passphrase never travels in the envelope. Both sides hold it out of
// band, so whoever opens an envelope supplies it from configuration.
package envelope

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/TheMichaelB/pincheck/internal/codec"
	"github.com/TheMichaelB/pincheck/internal/crypto"
	"github.com/TheMichaelB/pincheck/internal/models"
)

// Delimiter separates envelope fields.
const Delimiter = "::"

const fixedFields = 4

// Config carries the key derivation and cipher parameters of one message.
type Config struct {
	KeySizeBits int    `json:"key_size_bits"`
	Iterations  int    `json:"iterations"`
	IVHex       string `json:"iv"`
	SaltHex     string `json:"salt"`
	Passphrase  string `json:"-"`
}

// Validate checks the parameters a peer can act on.
func (c Config) Validate() error {
	if err := crypto.ValidateKeySize(c.KeySizeBits); err != nil {
		return &models.FormatError{Op: "envelope config", Reason: "key size", Err: err}
	}
	if c.Iterations < 1 {
		return &models.FormatError{Op: "envelope config", Reason: "iterations", Err: crypto.ErrInvalidIterations}
	}
	return nil
}

// Envelope is a parsed wrapped string.
type Envelope struct {
	KeySizeBits int    `json:"key_size_bits" yaml:"key_size_bits"`
	Iterations  int    `json:"iterations" yaml:"iterations"`
	IVHex       string `json:"iv" yaml:"iv"`
	SaltHex     string `json:"salt" yaml:"salt"`
	CipherText  string `json:"ciphertext" yaml:"ciphertext"` // Base64
}

// Config returns the envelope parameters with the out-of-band passphrase.
func (e *Envelope) Config(passphrase string) Config {
	return Config{
		KeySizeBits: e.KeySizeBits,
		Iterations:  e.Iterations,
		IVHex:       e.IVHex,
		SaltHex:     e.SaltHex,
		Passphrase:  passphrase,
	}
}

// Wrap serializes cfg and the ciphertext into a wrapped string.
func Wrap(cfg Config, cipherTextB64 string) string {
	joined := strings.Join([]string{
		strconv.Itoa(cfg.KeySizeBits),
		strconv.Itoa(cfg.Iterations),
		cfg.IVHex,
		cfg.SaltHex,
		cipherTextB64,
	}, Delimiter)

	return codec.Encode([]byte(joined))
}

// Unwrap parses a wrapped string. Everything after the fourth delimiter
// belongs to the ciphertext.
func Unwrap(wrapped string) (*Envelope, error) {
	text, err := codec.DecodeText(wrapped)
	if err != nil {
		return nil, fmt.Errorf("unwrap: %w", err)
	}

	parts := strings.Split(text, Delimiter)
	if len(parts) < fixedFields+1 {
		return nil, &models.FormatError{
			Op:     "unwrap",
			Reason: fmt.Sprintf("unexpected envelope shape: %d fields", len(parts)),
		}
	}

	keySize, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return nil, &models.FormatError{Op: "unwrap", Reason: "key size", Err: err}
	}

	iterations, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return nil, &models.FormatError{Op: "unwrap", Reason: "iterations", Err: err}
	}

	return &Envelope{
		KeySizeBits: keySize,
		Iterations:  iterations,
		IVHex:       parts[2],
		SaltHex:     parts[3],
		CipherText:  strings.Join(parts[fixedFields:], Delimiter),
	}, nil
}

// LooksWrapped reports whether s decodes to something with the envelope's
// field layout. It does not check that the envelope can be opened.
func LooksWrapped(s string) bool {
	text, err := codec.DecodeText(s)
	if err != nil {
		return false
	}
	return strings.Count(text, Delimiter) >= fixedFields
}
