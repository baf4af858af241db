package models

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// Error codes for structured error handling.
const (
	ErrCodeValidation = "VALIDATION_ERROR"
	ErrCodeFormat     = "FORMAT_ERROR"
	ErrCodeCrypto     = "CRYPTO_ERROR"
	ErrCodeTransport  = "TRANSPORT_ERROR"
	ErrCodeConfig     = "CONFIG_ERROR"
)

// Sentinel errors
var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrFormat                = errors.New("malformed data")
	ErrCrypto                = errors.New("cryptographic failure")
	ErrTransport             = errors.New("transport failure")
	ErrInvalidConfig         = errors.New("invalid configuration")
	ErrPincodeNotServiceable = errors.New("pincode not serviceable")
)

// PreviewLimit bounds response previews carried in errors and logs.
const PreviewLimit = 200

// ValidationError reports malformed query input. It is raised before any
// network or cryptographic work happens.
type ValidationError struct {
	Field string
	Value string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validate %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Is matches ErrInvalidInput.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// FormatError reports data that does not have the expected shape: an
// envelope with too few fields, invalid hex, or undecodable base64.
type FormatError struct {
	Op     string
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// Is matches ErrFormat.
func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}

// CryptoError reports a cipher failure: invalid padding, a ciphertext that
// is not block aligned, or plaintext that is not valid UTF-8.
type CryptoError struct {
	Op     string
	Reason string
	Err    error
}

func (e *CryptoError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

func (e *CryptoError) Unwrap() error {
	return e.Err
}

// Is matches ErrCrypto.
func (e *CryptoError) Is(target error) bool {
	return target == ErrCrypto
}

// TransportError reports a non-success HTTP status or a network failure.
// StatusCode is zero when no response was received.
type TransportError struct {
	URL        string
	StatusCode int
	Status     string
	Preview    string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("POST %s: %v", e.URL, e.Err)
	}
	preview := e.Preview
	if preview == "" {
		preview = "<<no body>>"
	}
	return fmt.Sprintf("POST %s: HTTP %s. Response preview: %s", e.URL, e.Status, preview)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is matches ErrTransport.
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// Preview truncates s to at most PreviewLimit bytes without splitting a rune.
func Preview(s string) string {
	if len(s) <= PreviewLimit {
		return s
	}
	cut := PreviewLimit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
