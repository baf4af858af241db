package crypto

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"

	"github.com/TheMichaelB/pincheck/internal/models"
)

const (
	// Envelope defaults shared with the lookup service.
	DefaultKeySizeBits = 128
	DefaultIterations  = 10000

	BlockSize = 16 // AES block
	IVSize    = 16
	SaltSize  = 16
)

// Errors
var (
	ErrInvalidKeySize    = errors.New("invalid key size")
	ErrInvalidIterations = errors.New("iteration count must be positive")
	ErrInvalidPadding    = errors.New("invalid padding")
	ErrNotBlockAligned   = errors.New("ciphertext is not a multiple of the block size")
)

// CryptoProvider implements Provider with PBKDF2-HMAC-SHA1 and AES-CBC.
// It holds no state between calls.
type CryptoProvider struct{}

// NewProvider creates a crypto provider.
func NewProvider() Provider {
	return &CryptoProvider{}
}

// ValidateKeySize checks that keySizeBits is word aligned and names an AES key.
func ValidateKeySize(keySizeBits int) error {
	if keySizeBits%32 != 0 {
		return fmt.Errorf("%w: %d bits is not a multiple of 32", ErrInvalidKeySize, keySizeBits)
	}
	switch keySizeBits {
	case 128, 192, 256:
		return nil
	default:
		return fmt.Errorf("%w: %d bits", ErrInvalidKeySize, keySizeBits)
	}
}

// DeriveKey derives a symmetric key from a passphrase.
//
// The PRF is HMAC-SHA1, the default of the JavaScript peers that speak this
// envelope; changing it breaks interoperability.
func (p *CryptoProvider) DeriveKey(passphrase, saltHex string, keySizeBits, iterations int) ([]byte, error) {
	if err := ValidateKeySize(keySizeBits); err != nil {
		return nil, &models.FormatError{Op: "derive key", Reason: "key size", Err: err}
	}
	if iterations < 1 {
		return nil, &models.FormatError{Op: "derive key", Reason: "iterations", Err: ErrInvalidIterations}
	}

	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return nil, &models.FormatError{Op: "derive key", Reason: "salt is not hex", Err: err}
	}

	return pbkdf2.Key([]byte(passphrase), salt, iterations, keySizeBits/8, sha1.New), nil
}
