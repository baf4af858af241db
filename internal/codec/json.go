package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var errNotContainer = errors.New("top-level JSON value is not an object or array")

// LooksLikeJSON reports whether trimmed text opens a JSON object or array.
func LooksLikeJSON(text string) bool {
	s := strings.TrimSpace(text)
	return strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[")
}

// ParseJSON decodes a complete JSON document into generic Go values.
func ParseJSON(text string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, fmt.Errorf("parse JSON: %w", err)
	}
	return v, nil
}

// ParseOrString returns the decoded JSON value of text, or text itself when
// it is not a JSON document.
func ParseOrString(text string) any {
	if v, err := ParseJSON(text); err == nil {
		return v
	}
	return text
}

// Member is one top-level entry of a JSON object or array. Arrays use the
// element index as Key.
type Member struct {
	Key   string
	Value json.RawMessage
}

// Members lists the top-level members of a JSON object or array in
// document order, which a decoded map cannot preserve.
func Members(text string) ([]Member, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(text)))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("read JSON: %w", err)
	}
	delim, ok := tok.(json.Delim)
	if !ok || (delim != '{' && delim != '[') {
		return nil, errNotContainer
	}

	var members []Member
	for i := 0; dec.More(); i++ {
		key := fmt.Sprint(i)
		if delim == '{' {
			tok, err := dec.Token()
			if err != nil {
				return nil, fmt.Errorf("read JSON key: %w", err)
			}
			key, _ = tok.(string)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("read JSON value %q: %w", key, err)
		}
		members = append(members, Member{Key: key, Value: raw})
	}

	return members, nil
}

// Text returns the member value when it is a JSON string.
func (m Member) Text() (string, bool) {
	if len(m.Value) == 0 || m.Value[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(m.Value, &s); err != nil {
		return "", false
	}
	return s, true
}
