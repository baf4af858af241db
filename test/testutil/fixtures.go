package testutil

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/TheMichaelB/pincheck/internal/crypto"
	"github.com/TheMichaelB/pincheck/internal/crypto/testdata"
	"github.com/TheMichaelB/pincheck/internal/envelope"
	"github.com/TheMichaelB/pincheck/internal/events"
	"github.com/TheMichaelB/pincheck/internal/models"
)

// Passphrase shared by the fake lookup service and its clients.
const Passphrase = testdata.Passphrase

// TestIterations keeps key derivation fast in tests.
const TestIterations = 1000

// Directory holds the serviceable pincodes known to the fake service.
var Directory = map[string]models.Location{
	"400001": {Pincode: "400001", CityName: "Mumbai", StateName: "Maharashtra"},
	"110001": {Pincode: "110001", CityName: "New Delhi", StateName: "Delhi"},
	"560001": {Pincode: "560001", CityName: "Bengaluru", StateName: "Karnataka"},
	"600001": {Pincode: "600001", CityName: "Chennai", StateName: "Tamil Nadu"},
}

// NewTestLogger creates a logger for testing.
func NewTestLogger() *events.Logger {
	var buf bytes.Buffer
	return events.NewTestLogger(events.DebugLevel, "json", &buf)
}

// NewSealer creates a sealer for Passphrase with cheap key derivation.
func NewSealer(t testing.TB) *envelope.Sealer {
	t.Helper()

	sealer, err := envelope.NewSealer(crypto.NewProvider(), Passphrase, envelope.WithIterations(TestIterations))
	require.NoError(t, err)
	return sealer
}

// MasterBody builds the decrypted lookup response for loc. A nil loc gives
// an empty Master list.
func MasterBody(loc *models.Location) map[string]any {
	master := []any{}
	if loc != nil {
		master = append(master, map[string]any{
			"pincode":   loc.Pincode,
			"cityname":  loc.CityName,
			"statename": loc.StateName,
		})
	}

	return map[string]any{
		"header": map[string]any{"status": "ok"},
		"body":   map[string]any{"Master": master},
	}
}
