// Package codec holds the tolerant text codecs the envelope protocol and the
// response resolver share: base64 in its standard, URL-safe, unpadded and
// quoted variants, and small JSON helpers that keep document key order.
package codec

import (
	"encoding/base64"
	"strings"
	"unicode"

	xunicode "golang.org/x/text/encoding/unicode"

	"github.com/TheMichaelB/pincheck/internal/models"
)

// Normalize rewrites a base64 variant into padded standard base64.
//
// Surrounding whitespace and matching quote pairs are removed, internal
// whitespace is dropped, the URL-safe alphabet is mapped onto the standard
// one and '=' padding is added up to a multiple of four. A length that is one
// more than a multiple of four cannot be padded and is returned as is, so the
// decode that follows fails.
func Normalize(input string) string {
	s := StripQuotes(input)

	s = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsSpace(r):
			return -1
		case r == '-':
			return '+'
		case r == '_':
			return '/'
		}
		return r
	}, s)

	switch len(s) % 4 {
	case 2:
		s += "=="
	case 3:
		s += "="
	}

	return s
}

// StripQuotes trims whitespace and removes matching leading and trailing
// quote characters. Nested layers ("'...'") are removed one at a time until
// the text is no longer quoted.
func StripQuotes(input string) string {
	s := strings.TrimSpace(input)
	for isQuoted(s) {
		if len(s) == 1 {
			return ""
		}
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}

// StripQuoteLayer trims whitespace and removes a single layer of matching
// quotes, if present.
func StripQuoteLayer(input string) string {
	s := strings.TrimSpace(input)
	if !isQuoted(s) {
		return s
	}
	if len(s) == 1 {
		return ""
	}
	return s[1 : len(s)-1]
}

func isQuoted(s string) bool {
	if s == "" {
		return false
	}
	first, last := s[0], s[len(s)-1]
	return (first == '"' || first == '\'') && first == last
}

// Decode normalizes and decodes a base64 variant.
func Decode(input string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(Normalize(input))
	if err != nil {
		return nil, &models.FormatError{
			Op:     "base64 decode",
			Reason: "not valid base64 after normalization",
			Err:    err,
		}
	}
	return data, nil
}

// DecodeText decodes a base64 variant into UTF-8 text. A leading byte order
// mark is dropped and ill-formed sequences become U+FFFD.
func DecodeText(input string) (string, error) {
	data, err := Decode(input)
	if err != nil {
		return "", err
	}

	text, err := xunicode.UTF8BOM.NewDecoder().String(string(data))
	if err != nil {
		return "", &models.FormatError{
			Op:     "base64 decode",
			Reason: "decoded bytes are not text",
			Err:    err,
		}
	}
	return text, nil
}

// Encode returns standard padded base64.
func Encode(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}
