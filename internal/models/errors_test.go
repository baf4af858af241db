package models_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/TheMichaelB/pincheck/internal/models"
)

func TestFormatError(t *testing.T) {
	tests := []struct {
		name string
		err  *models.FormatError
		want string
	}{
		{
			name: "with cause",
			err: &models.FormatError{
				Op:     "unwrap",
				Reason: "invalid key size",
				Err:    errors.New(`strconv.Atoi: parsing "x": invalid syntax`),
			},
			want: `unwrap: invalid key size: strconv.Atoi: parsing "x": invalid syntax`,
		},
		{
			name: "without cause",
			err: &models.FormatError{
				Op:     "unwrap",
				Reason: "unexpected envelope shape",
			},
			want: "unwrap: unexpected envelope shape",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
			assert.ErrorIs(t, tt.err, models.ErrFormat)
			assert.NotErrorIs(t, tt.err, models.ErrCrypto)
		})
	}
}

func TestCryptoError(t *testing.T) {
	err := &models.CryptoError{
		Op:     "decrypt",
		Reason: "invalid padding",
	}

	assert.Equal(t, "decrypt: invalid padding", err.Error())
	assert.ErrorIs(t, err, models.ErrCrypto)
	assert.NotErrorIs(t, err, models.ErrFormat)
}

func TestValidationError(t *testing.T) {
	err := &models.ValidationError{
		Field: "pincode",
		Value: "12a456",
		Err:   errors.New("must be exactly 6 digits"),
	}

	assert.Equal(t, `validate pincode "12a456": must be exactly 6 digits`, err.Error())
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestTransportError(t *testing.T) {
	tests := []struct {
		name string
		err  *models.TransportError
		want string
	}{
		{
			name: "http status",
			err: &models.TransportError{
				URL:        "https://example.test/check",
				StatusCode: 502,
				Status:     "502 Bad Gateway",
				Preview:    "upstream down",
			},
			want: "POST https://example.test/check: HTTP 502 Bad Gateway. Response preview: upstream down",
		},
		{
			name: "empty body",
			err: &models.TransportError{
				URL:        "https://example.test/check",
				StatusCode: 404,
				Status:     "404 Not Found",
			},
			want: "POST https://example.test/check: HTTP 404 Not Found. Response preview: <<no body>>",
		},
		{
			name: "network failure",
			err: &models.TransportError{
				URL: "https://example.test/check",
				Err: errors.New("connection refused"),
			},
			want: "POST https://example.test/check: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
			assert.ErrorIs(t, tt.err, models.ErrTransport)
		})
	}
}

func TestErrorUnwrapping(t *testing.T) {
	baseErr := errors.New("base error")

	t.Run("FormatError unwrap", func(t *testing.T) {
		err := &models.FormatError{Op: "decode", Reason: "bad base64", Err: baseErr}
		assert.Equal(t, baseErr, errors.Unwrap(err))
	})

	t.Run("TransportError unwrap", func(t *testing.T) {
		err := &models.TransportError{URL: "u", Err: baseErr}
		assert.ErrorIs(t, err, baseErr)
	})
}

func TestPreview(t *testing.T) {
	t.Run("short text unchanged", func(t *testing.T) {
		assert.Equal(t, "hello", models.Preview("hello"))
	})

	t.Run("long text truncated", func(t *testing.T) {
		long := strings.Repeat("a", 500)
		assert.Len(t, models.Preview(long), models.PreviewLimit)
	})

	t.Run("multibyte boundary kept intact", func(t *testing.T) {
		long := strings.Repeat("a", models.PreviewLimit-1) + "é" + "tail"
		got := models.Preview(long)
		assert.Equal(t, strings.Repeat("a", models.PreviewLimit-1), got)
	})
}
