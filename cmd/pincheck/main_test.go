package main

import (
	"bytes"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheMichaelB/pincheck/internal/models"
	"github.com/TheMichaelB/pincheck/internal/resolver"
	"github.com/TheMichaelB/pincheck/internal/services/pincode"
	"github.com/TheMichaelB/pincheck/internal/state"
)

func init() {
	color.NoColor = true
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, exitOK},
		{"validation", &models.ValidationError{Field: "pincode", Err: errors.New("bad")}, exitInvalidInput},
		{"not serviceable", fmt.Errorf("pincode 999999: %w", models.ErrPincodeNotServiceable), exitNotServiceable},
		{"transport", &models.TransportError{URL: "u", Err: errors.New("refused")}, exitTransport},
		{"reported batch", &reportedError{err: errors.Join(models.ErrPincodeNotServiceable)}, exitNotServiceable},
		{"other", errors.New("boom"), exitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestValidateOutputFormat(t *testing.T) {
	for _, f := range []string{"text", "json", "yaml"} {
		assert.NoError(t, validateOutputFormat(f))
	}
	assert.Error(t, validateOutputFormat("xml"))
}

func TestCheckViewOutput(t *testing.T) {
	lookups := []*pincode.Lookup{
		{
			RequestID: "req-1",
			Pincode:   "400001",
			Result:    resolver.Result{Value: map[string]any{}, Strategy: resolver.StrategyJSONField},
			Location:  &models.Location{Pincode: "400001", CityName: "Mumbai", StateName: "Maharashtra"},
			Duration:  15 * time.Millisecond,
		},
		{
			Pincode: "999999",
			Result:  resolver.Result{Strategy: resolver.StrategyJSONField},
			Err:     fmt.Errorf("pincode 999999: %w", models.ErrPincodeNotServiceable),
		},
		{
			Pincode: "110001",
			Result:  resolver.Result{Value: "<html>", Strategy: resolver.StrategyExhausted, Raw: true},
		},
	}

	views := make([]checkView, len(lookups))
	for i, l := range lookups {
		views[i] = newCheckView(l, false)
	}

	assert.True(t, views[0].Serviceable)
	assert.Equal(t, "Mumbai 400001", views[0].Label)
	assert.Equal(t, int64(15), views[0].DurationMS)
	assert.Equal(t, "pincode 999999: pincode not serviceable", views[1].Error)
	assert.True(t, views[2].Raw)
	assert.Nil(t, views[2].Value)

	var text bytes.Buffer
	writeCheckText(&text, views)
	assert.Equal(t,
		"400001  Mumbai, Maharashtra\n"+
			"999999  pincode 999999: pincode not serviceable\n"+
			"110001  response could not be decoded\n",
		text.String())

	var js bytes.Buffer
	require.NoError(t, renderTo(&js, "json", views[0], nil))
	assert.Contains(t, js.String(), `"city": "Mumbai"`)
	assert.NotContains(t, js.String(), `"value"`)

	var ym bytes.Buffer
	require.NoError(t, renderTo(&ym, "yaml", views[0], nil))
	assert.Contains(t, ym.String(), "city: Mumbai")
}

func TestCheckViewShowValue(t *testing.T) {
	long := make([]byte, 500)
	for i := range long {
		long[i] = 'x'
	}

	raw := newCheckView(&pincode.Lookup{
		Pincode: "110001",
		Result:  resolver.Result{Value: string(long), Strategy: resolver.StrategyExhausted, Raw: true},
	}, true)
	assert.Len(t, raw.Value, models.PreviewLimit)

	decoded := newCheckView(&pincode.Lookup{
		Pincode: "110001",
		Result:  resolver.Result{Value: map[string]any{"ok": true}, Strategy: resolver.StrategyJSONField},
	}, true)

	var text bytes.Buffer
	writeCheckText(&text, []checkView{decoded})
	assert.Contains(t, text.String(), "decoded via json_field, no location in response")
	assert.Contains(t, text.String(), `{"ok":true}`)
}

func TestWriteHistoryText(t *testing.T) {
	var empty bytes.Buffer
	writeHistoryText(&empty, nil)
	assert.Equal(t, "No lookups recorded\n", empty.String())

	entries := []*state.Entry{
		{RequestID: "a", Pincode: "400001", City: "Mumbai", Strategy: "json_field", Time: time.Now()},
		{RequestID: "b", Pincode: "999999", Error: "pincode not serviceable", Time: time.Now()},
		{RequestID: "c", Pincode: "110001", Raw: true, Strategy: "exhausted", Time: time.Now()},
	}

	var buf bytes.Buffer
	writeHistoryText(&buf, entries)
	out := buf.String()

	assert.Contains(t, out, "PINCODE")
	assert.Contains(t, out, "Mumbai")
	assert.Contains(t, out, "error: pincode not serviceable")
	assert.Contains(t, out, "undecoded")
}

func TestReportedError(t *testing.T) {
	inner := errors.New("inner")
	err := &reportedError{err: inner}

	assert.Equal(t, "inner", err.Error())
	assert.ErrorIs(t, err, inner)
}
