package creds_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheMichaelB/pincheck/internal/config"
	"github.com/TheMichaelB/pincheck/internal/creds"
)

func TestParseCombined(t *testing.T) {
	tests := []struct {
		name       string
		data       string
		passphrase string
		keySize    int
		iterations int
		wantErr    bool
	}{
		{name: "bare passphrase", data: "vs@123\n", passphrase: "vs@123"},
		{
			name:       "json document",
			data:       `{"crypto":{"passphrase":"secret","key_size_bits":256,"iterations":2000}}`,
			passphrase: "secret",
			keySize:    256,
			iterations: 2000,
		},
		{name: "json without passphrase", data: `{"crypto":{}}`, wantErr: true},
		{name: "empty file", data: "  \n", wantErr: true},
		{name: "broken json", data: `{"crypto":`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := creds.ParseCombined([]byte(tt.data))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.passphrase, c.Crypto.Passphrase)
			assert.Equal(t, tt.keySize, c.Crypto.KeySizeBits)
			assert.Equal(t, tt.iterations, c.Crypto.Iterations)
		})
	}
}

func TestResolve(t *testing.T) {
	path := filepath.Join(t.TempDir(), "passphrase.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"crypto":{"passphrase":"from-file","iterations":5000}}`), 0600))

	t.Run("fills empty passphrase", func(t *testing.T) {
		cfg := config.DefaultConfig().Crypto
		cfg.PassphraseFile = path

		require.NoError(t, creds.Resolve(&cfg))
		assert.Equal(t, "from-file", cfg.Passphrase)
		assert.Equal(t, 5000, cfg.Iterations)
		assert.Equal(t, 128, cfg.KeySizeBits)
	})

	t.Run("configured passphrase wins", func(t *testing.T) {
		cfg := config.DefaultConfig().Crypto
		cfg.Passphrase = "from-env"
		cfg.PassphraseFile = path

		require.NoError(t, creds.Resolve(&cfg))
		assert.Equal(t, "from-env", cfg.Passphrase)
		assert.Equal(t, 10000, cfg.Iterations)
	})

	t.Run("no file configured", func(t *testing.T) {
		cfg := config.DefaultConfig().Crypto
		require.NoError(t, creds.Resolve(&cfg))
		assert.Empty(t, cfg.Passphrase)
	})

	t.Run("missing file", func(t *testing.T) {
		cfg := config.DefaultConfig().Crypto
		cfg.PassphraseFile = filepath.Join(t.TempDir(), "missing")

		err := creds.Resolve(&cfg)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}
