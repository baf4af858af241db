package crypto

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
)

// DefaultRandom is the randomness source used when none is injected.
var DefaultRandom io.Reader = rand.Reader

// RandomHex reads n bytes from r and returns them as lowercase hex.
func RandomHex(r io.Reader, n int) (string, error) {
	if r == nil {
		r = DefaultRandom
	}

	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}

	return hex.EncodeToString(buf), nil
}

// Zero overwrites key material once an operation is done with it.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
