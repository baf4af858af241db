package crypto

// Provider defines the interface for cryptographic operations.
type Provider interface {
	// DeriveKey stretches a passphrase and hex salt into a key of keySizeBits.
	DeriveKey(passphrase, saltHex string, keySizeBits, iterations int) ([]byte, error)

	// Encrypt encrypts plaintext with AES-CBC and returns base64 ciphertext.
	Encrypt(key []byte, ivHex string, plaintext []byte) (string, error)

	// Decrypt reverses Encrypt. Success says nothing about integrity.
	Decrypt(key []byte, ivHex, cipherTextB64 string) ([]byte, error)
}
