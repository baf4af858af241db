package models

import (
	"fmt"
	"strings"
)

// PincodeQuery is a single serviceability lookup.
type PincodeQuery struct {
	Pincode string `json:"pincode"`
}

// LookupRequest is the plaintext sealed into the envelope.
type LookupRequest struct {
	Header map[string]string `json:"header"`
	Body   PincodeQuery      `json:"body"`
}

// NewLookupRequest builds the request plaintext for a pincode.
func NewLookupRequest(pincode string) LookupRequest {
	return LookupRequest{
		Header: map[string]string{},
		Body:   PincodeQuery{Pincode: pincode},
	}
}

// TransportPayload is the JSON body posted to the lookup endpoint.
type TransportPayload struct {
	Data string `json:"data"`
}

// Location is the serviceable area reported for a pincode.
type Location struct {
	Pincode   string `json:"pincode" yaml:"pincode"`
	CityName  string `json:"cityname" yaml:"cityname"`
	StateName string `json:"statename,omitempty" yaml:"statename,omitempty"`
}

// Label formats the location the way the storefront header shows it.
func (l Location) Label() string {
	return strings.TrimSpace(l.CityName + " " + l.Pincode)
}

// ExtractLocation reads body.Master[0] from a resolved response value.
// It returns ErrPincodeNotServiceable when the shape is present but the
// first master record carries no pincode, and an error when the value does
// not have the expected shape at all.
func ExtractLocation(value any) (*Location, error) {
	root, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("resolved value is %T, not an object", value)
	}

	body, ok := root["body"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("resolved value has no body object")
	}

	master, ok := body["Master"].([]any)
	if !ok {
		return nil, fmt.Errorf("resolved body has no Master list")
	}
	if len(master) == 0 {
		return nil, ErrPincodeNotServiceable
	}

	first, ok := master[0].(map[string]any)
	if !ok {
		return nil, ErrPincodeNotServiceable
	}

	loc := &Location{
		Pincode:   stringField(first, "pincode"),
		CityName:  stringField(first, "cityname"),
		StateName: stringField(first, "statename"),
	}
	if loc.Pincode == "" {
		return nil, ErrPincodeNotServiceable
	}

	return loc, nil
}

// stringField reads a string or number field as text.
func stringField(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%.0f", v)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
