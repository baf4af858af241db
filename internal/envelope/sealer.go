package envelope

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/TheMichaelB/pincheck/internal/crypto"
	"github.com/TheMichaelB/pincheck/internal/models"
)

// DefaultMaxIterations caps the work a received envelope can ask for.
const DefaultMaxIterations = 1_000_000

var (
	ErrEmptyPassphrase = errors.New("passphrase is required")
	ErrTooManyRounds   = errors.New("iteration count exceeds limit")
	ErrNotUTF8         = errors.New("plaintext is not valid UTF-8")
)

// Sealer seals plaintext into wrapped strings and opens them again with a
// shared passphrase. Every Seal draws a fresh IV and salt; nothing is kept
// between calls, so a Sealer is safe for concurrent use as long as its
// random source is.
type Sealer struct {
	provider      crypto.Provider
	passphrase    string
	random        io.Reader
	keySizeBits   int
	iterations    int
	maxIterations int
}

// Option configures a Sealer.
type Option func(*Sealer)

// WithRandom sets the source of IV and salt bytes.
func WithRandom(r io.Reader) Option {
	return func(s *Sealer) {
		s.random = r
	}
}

// WithKeySize sets the key size used for new envelopes.
func WithKeySize(bits int) Option {
	return func(s *Sealer) {
		s.keySizeBits = bits
	}
}

// WithIterations sets the PBKDF2 iteration count used for new envelopes.
func WithIterations(n int) Option {
	return func(s *Sealer) {
		s.iterations = n
	}
}

// WithMaxIterations bounds the iteration count accepted when opening.
func WithMaxIterations(n int) Option {
	return func(s *Sealer) {
		s.maxIterations = n
	}
}

// NewSealer creates a Sealer for the shared passphrase.
func NewSealer(provider crypto.Provider, passphrase string, opts ...Option) (*Sealer, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("%w: %w", models.ErrInvalidConfig, ErrEmptyPassphrase)
	}

	s := &Sealer{
		provider:      provider,
		passphrase:    passphrase,
		random:        crypto.DefaultRandom,
		keySizeBits:   crypto.DefaultKeySizeBits,
		iterations:    crypto.DefaultIterations,
		maxIterations: DefaultMaxIterations,
	}

	for _, opt := range opts {
		opt(s)
	}

	cfg := Config{KeySizeBits: s.keySizeBits, Iterations: s.iterations}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrInvalidConfig, err)
	}

	return s, nil
}

// NewConfig returns parameters for one message with a fresh IV and salt.
func (s *Sealer) NewConfig() (Config, error) {
	ivHex, err := crypto.RandomHex(s.random, crypto.IVSize)
	if err != nil {
		return Config{}, fmt.Errorf("generate iv: %w", err)
	}

	saltHex, err := crypto.RandomHex(s.random, crypto.SaltSize)
	if err != nil {
		return Config{}, fmt.Errorf("generate salt: %w", err)
	}

	return Config{
		KeySizeBits: s.keySizeBits,
		Iterations:  s.iterations,
		IVHex:       ivHex,
		SaltHex:     saltHex,
		Passphrase:  s.passphrase,
	}, nil
}

// Seal encrypts plaintext and returns the wrapped string.
func (s *Sealer) Seal(plaintext []byte) (string, error) {
	cfg, err := s.NewConfig()
	if err != nil {
		return "", err
	}

	key, err := s.provider.DeriveKey(cfg.Passphrase, cfg.SaltHex, cfg.KeySizeBits, cfg.Iterations)
	if err != nil {
		return "", fmt.Errorf("seal: %w", err)
	}
	defer crypto.Zero(key)

	cipherText, err := s.provider.Encrypt(key, cfg.IVHex, plaintext)
	if err != nil {
		return "", fmt.Errorf("seal: %w", err)
	}

	return Wrap(cfg, cipherText), nil
}

// SealJSON seals the JSON encoding of v. Strings are sealed as is.
func (s *Sealer) SealJSON(v any) (string, error) {
	if text, ok := v.(string); ok {
		return s.Seal([]byte(text))
	}

	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}
	return s.Seal(data)
}

// Open unwraps and decrypts a wrapped string with the configured
// passphrase. The plaintext must be UTF-8 text.
func (s *Sealer) Open(wrapped string) (string, error) {
	env, err := Unwrap(wrapped)
	if err != nil {
		return "", err
	}

	if env.Iterations > s.maxIterations {
		return "", &models.FormatError{
			Op:     "open",
			Reason: fmt.Sprintf("%d iterations", env.Iterations),
			Err:    ErrTooManyRounds,
		}
	}

	cfg := env.Config(s.passphrase)
	key, err := s.provider.DeriveKey(cfg.Passphrase, cfg.SaltHex, cfg.KeySizeBits, cfg.Iterations)
	if err != nil {
		return "", fmt.Errorf("open: %w", err)
	}
	defer crypto.Zero(key)

	plaintext, err := s.provider.Decrypt(key, cfg.IVHex, env.CipherText)
	if err != nil {
		return "", fmt.Errorf("open: %w", err)
	}

	if !utf8.Valid(plaintext) {
		return "", &models.CryptoError{Op: "open", Reason: "decode text", Err: ErrNotUTF8}
	}

	return string(plaintext), nil
}
