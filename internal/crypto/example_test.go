package crypto_test

import (
	"fmt"

	"github.com/TheMichaelB/pincheck/internal/crypto"
)

func ExampleCryptoProvider_DeriveKey() {
	provider := crypto.NewProvider()

	key, err := provider.DeriveKey("vs@123", "000102030405060708090a0b0c0d0e0f", 128, 10000)
	if err != nil {
		panic(err)
	}

	fmt.Printf("Key: %x\n", key)
	// Output: Key: a6dde04d797ede8448fe35108e64013f
}

func ExampleCryptoProvider_Encrypt() {
	provider := crypto.NewProvider()

	key, err := provider.DeriveKey("vs@123", "000102030405060708090a0b0c0d0e0f", 128, 10000)
	if err != nil {
		panic(err)
	}

	ciphertext, err := provider.Encrypt(key, "101112131415161718191a1b1c1d1e1f", []byte("plain text"))
	if err != nil {
		panic(err)
	}

	plaintext, err := provider.Decrypt(key, "101112131415161718191a1b1c1d1e1f", ciphertext)
	if err != nil {
		panic(err)
	}

	fmt.Println(ciphertext)
	fmt.Println(string(plaintext))
	// Output: Lmj67W24Tdu8EG1BTE6XOA==
	// plain text
}

func ExampleValidateKeySize() {
	fmt.Printf("128 bits: %v\n", crypto.ValidateKeySize(128))
	fmt.Printf("100 bits rejected: %v\n", crypto.ValidateKeySize(100) != nil)
	// Output: 128 bits: <nil>
	// 100 bits rejected: true
}
