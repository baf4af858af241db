package resolver

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/TheMichaelB/pincheck/internal/codec"
	"github.com/TheMichaelB/pincheck/internal/envelope"
)

// PriorityKeys are the object keys checked first for a wrapped payload.
var PriorityKeys = []string{"response", "data", "result", "body", "payload"}

// Opener decrypts a wrapped string. *envelope.Sealer implements it.
type Opener interface {
	Open(wrapped string) (string, error)
}

var (
	errNoCandidate   = errors.New("no wrapped field")
	errEmptyText     = errors.New("empty working text")
	errEnvelopeShape = errors.New("decoded text is an envelope that failed to open")
	errNotText       = errors.New("decoded bytes are not UTF-8 text")
)

// DefaultStrategies returns the standard chain.
func DefaultStrategies(opener Opener) []Strategy {
	return []Strategy{
		&JSONField{Opener: opener},
		QuoteStrip{},
		&DirectWrapped{Opener: opener},
		RawBase64{},
	}
}

// JSONField handles a JSON document that carries the wrapped payload in one
// of its fields.
//
// A non-blank string under one of PriorityKeys is the candidate. Failing
// that, the first top-level string (in document order) that has the
// envelope layout is. A document with no candidate is returned as parsed,
// on the assumption that the server answered in plaintext.
type JSONField struct {
	Opener Opener
}

func (s *JSONField) Name() string { return StrategyJSONField }

func (s *JSONField) Attempt(text string) (any, error) {
	trimmed := strings.TrimSpace(text)
	if !codec.LooksLikeJSON(trimmed) {
		return nil, ErrNotApplicable
	}

	parsed, err := codec.ParseJSON(trimmed)
	if err != nil {
		return nil, err
	}

	members, err := codec.Members(trimmed)
	if err != nil {
		return nil, err
	}

	candidate, err := pickCandidate(members)
	if err != nil {
		return parsed, nil
	}

	plaintext, err := s.Opener.Open(candidate)
	if err != nil {
		return nil, Continue(candidate, err)
	}

	return codec.ParseOrString(plaintext), nil
}

func pickCandidate(members []codec.Member) (string, error) {
	for _, key := range PriorityKeys {
		for _, m := range members {
			if m.Key != key {
				continue
			}
			if v, ok := m.Text(); ok && strings.TrimSpace(v) != "" {
				return v, nil
			}
		}
	}

	for _, m := range members {
		if v, ok := m.Text(); ok && envelope.LooksWrapped(v) {
			return v, nil
		}
	}

	return "", errNoCandidate
}

// QuoteStrip removes one layer of matching quotes from the working text. It
// never resolves anything by itself.
type QuoteStrip struct{}

func (QuoteStrip) Name() string { return StrategyQuoteStrip }

func (QuoteStrip) Attempt(text string) (any, error) {
	return nil, Continue(codec.StripQuoteLayer(text), nil)
}

// DirectWrapped treats the working text as a bare envelope.
type DirectWrapped struct {
	Opener Opener
}

func (s *DirectWrapped) Name() string { return StrategyDirectWrapped }

func (s *DirectWrapped) Attempt(text string) (any, error) {
	plaintext, err := s.Opener.Open(text)
	if err != nil {
		return nil, err
	}
	return codec.ParseOrString(plaintext), nil
}

// RawBase64 decodes the working text as plain base64 with no envelope.
// Decoded bytes must be valid UTF-8, so plain words that happen to use only
// the base64 alphabet ("Unauthorized") are not mistaken for a payload.
// Text that decodes to the envelope layout is refused: DirectWrapped already
// failed to open it and its fields are not a usable value.
type RawBase64 struct{}

func (RawBase64) Name() string { return StrategyRawBase64 }

func (RawBase64) Attempt(text string) (any, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errEmptyText
	}

	data, err := codec.Decode(text)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(data) {
		return nil, errNotText
	}

	decoded := strings.TrimPrefix(string(data), "\uFEFF")
	if strings.Count(decoded, envelope.Delimiter) >= 4 {
		return nil, errEnvelopeShape
	}
	return codec.ParseOrString(decoded), nil
}
