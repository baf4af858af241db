// Package resolver turns an arbitrary lookup response body into the best
// value it can recover. Strategies run in a fixed order and the first one
// that succeeds wins; when all fail the untouched input comes back flagged
// as raw. Resolve never returns an error.
package resolver

import (
	"errors"
	"fmt"
)

// Strategy names, as reported in Result.Strategy and in metrics.
const (
	StrategyEmpty         = "empty"
	StrategyJSONField     = "json_field"
	StrategyQuoteStrip    = "quote_strip"
	StrategyDirectWrapped = "direct_wrapped"
	StrategyRawBase64     = "raw_base64"
	StrategyExhausted     = "exhausted"
)

// ErrNotApplicable is returned by a strategy that does not handle the
// shape of the working text at all.
var ErrNotApplicable = errors.New("strategy not applicable")

// Strategy is one attempt at recovering a value from the working text.
//
// Attempt returns the recovered value, or an error to pass the working text
// on to the next strategy. Returning a ContinueError (see Continue) replaces
// the working text for the strategies that follow.
type Strategy interface {
	Name() string
	Attempt(text string) (any, error)
}

// ContinueError hands a new working text to the next strategy.
type ContinueError struct {
	Next  string
	Cause error
}

// Continue fails the current attempt and makes next the working text of
// the strategies that follow. cause may be nil.
func Continue(next string, cause error) error {
	return &ContinueError{Next: next, Cause: cause}
}

func (e *ContinueError) Error() string {
	if e.Cause == nil {
		return "continue"
	}
	return fmt.Sprintf("continue: %v", e.Cause)
}

func (e *ContinueError) Unwrap() error {
	return e.Cause
}

// Result is what Resolve recovered.
type Result struct {
	// Value is a decoded JSON value (map[string]any, []any, ...) or a string.
	Value any `json:"value" yaml:"value"`

	// Strategy names the strategy that produced Value.
	Strategy string `json:"strategy" yaml:"strategy"`

	// Raw is set when nothing could be recovered and Value is the input
	// as received. Callers must treat it as a failure.
	Raw bool `json:"raw" yaml:"raw"`
}

// Text returns Value when it is a string.
func (r Result) Text() (string, bool) {
	s, ok := r.Value.(string)
	return s, ok
}

// StrategyFunc adapts a function to the Strategy interface.
type StrategyFunc struct {
	ID string
	Fn func(text string) (any, error)
}

func (s StrategyFunc) Name() string { return s.ID }

func (s StrategyFunc) Attempt(text string) (any, error) { return s.Fn(text) }
