package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"encoding/hex"
	"fmt"

	"github.com/TheMichaelB/pincheck/internal/codec"
	"github.com/TheMichaelB/pincheck/internal/models"
)

// Encrypt encrypts plaintext using AES-CBC with PKCS#7 padding.
// The IV is not part of the output.
func (p *CryptoProvider) Encrypt(key []byte, ivHex string, plaintext []byte) (string, error) {
	block, iv, err := newBlock("encrypt", key, ivHex)
	if err != nil {
		return "", err
	}

	padded := pad(plaintext)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	return codec.Encode(ciphertext), nil
}

// Decrypt decrypts base64 AES-CBC ciphertext and strips PKCS#7 padding.
// There is no authentication tag: a modified ciphertext can decrypt to
// different, well padded bytes without an error.
func (p *CryptoProvider) Decrypt(key []byte, ivHex, cipherTextB64 string) ([]byte, error) {
	block, iv, err := newBlock("decrypt", key, ivHex)
	if err != nil {
		return nil, err
	}

	ciphertext, err := codec.Decode(cipherTextB64)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) == 0 || len(ciphertext)%BlockSize != 0 {
		return nil, &models.CryptoError{
			Op:     "decrypt",
			Reason: fmt.Sprintf("%d byte ciphertext", len(ciphertext)),
			Err:    ErrNotBlockAligned,
		}
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	unpadded, err := unpad(plaintext)
	if err != nil {
		return nil, &models.CryptoError{Op: "decrypt", Reason: "padding", Err: err}
	}

	return unpadded, nil
}

func newBlock(op string, key []byte, ivHex string) (cipher.Block, []byte, error) {
	if err := ValidateKeySize(len(key) * 8); err != nil {
		return nil, nil, &models.CryptoError{Op: op, Reason: "key", Err: err}
	}

	iv, err := hex.DecodeString(ivHex)
	if err != nil {
		return nil, nil, &models.FormatError{Op: op, Reason: "iv is not hex", Err: err}
	}
	if len(iv) != IVSize {
		return nil, nil, &models.FormatError{Op: op, Reason: fmt.Sprintf("iv is %d bytes, want %d", len(iv), IVSize)}
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, nil, &models.CryptoError{Op: op, Reason: "create cipher", Err: err}
	}

	return block, iv, nil
}

// pad appends PKCS#7 padding; a full block is added to aligned input.
func pad(data []byte) []byte {
	n := BlockSize - len(data)%BlockSize
	out := make([]byte, len(data), len(data)+n)
	copy(out, data)
	return append(out, bytes.Repeat([]byte{byte(n)}, n)...)
}

func unpad(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, ErrInvalidPadding
	}

	n := int(data[len(data)-1])
	if n == 0 || n > BlockSize || n > len(data) {
		return nil, ErrInvalidPadding
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, ErrInvalidPadding
		}
	}

	return data[:len(data)-n], nil
}
