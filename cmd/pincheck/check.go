package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/TheMichaelB/pincheck/internal/models"
	"github.com/TheMichaelB/pincheck/internal/services/pincode"
)

var checkCmd = &cobra.Command{
	Use:   "check <pincode>...",
	Short: "Check whether pincodes are serviceable",
	Long: `Check seals a lookup request for each pincode, posts it and decodes the
response. Several pincodes are checked concurrently (lookup.concurrency)
and paced by lookup.rate_limit.`,
	Example: `  pincheck check 400001
  pincheck check 400001 110001 560001 -o json`,
	Args:        cobra.MinimumNArgs(1),
	Annotations: map[string]string{needsClient: "true"},
	RunE:        runCheck,
}

var checkShowValue bool

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().BoolVar(&checkShowValue, "show-value", false,
		"Include the decoded response value in the output")
}

// checkView is the printable form of a lookup.
type checkView struct {
	RequestID   string      `json:"request_id,omitempty" yaml:"request_id,omitempty"`
	Pincode     string      `json:"pincode" yaml:"pincode"`
	Serviceable bool        `json:"serviceable" yaml:"serviceable"`
	City        string      `json:"city,omitempty" yaml:"city,omitempty"`
	State       string      `json:"state,omitempty" yaml:"state,omitempty"`
	Label       string      `json:"label,omitempty" yaml:"label,omitempty"`
	Strategy    string      `json:"strategy,omitempty" yaml:"strategy,omitempty"`
	Raw         bool        `json:"raw" yaml:"raw"`
	Value       interface{} `json:"value,omitempty" yaml:"value,omitempty"`
	Error       string      `json:"error,omitempty" yaml:"error,omitempty"`
	DurationMS  int64       `json:"duration_ms" yaml:"duration_ms"`
}

func newCheckView(l *pincode.Lookup, showValue bool) checkView {
	v := checkView{
		RequestID:   l.RequestID,
		Pincode:     l.Pincode,
		Serviceable: l.Serviceable(),
		Strategy:    l.Result.Strategy,
		Raw:         l.Result.Raw,
		DurationMS:  l.Duration.Milliseconds(),
	}

	if l.Location != nil {
		v.City = l.Location.CityName
		v.State = l.Location.StateName
		v.Label = l.Location.Label()
	}

	if l.Err != nil {
		v.Error = l.Err.Error()
	}

	if showValue {
		v.Value = l.Result.Value
		if s, ok := l.Result.Text(); ok && l.Result.Raw {
			v.Value = models.Preview(s)
		}
	}

	return v
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	var (
		lookups  []*pincode.Lookup
		batchErr error
	)

	if len(args) == 1 {
		lookup, err := apiClient.Pincode.Check(ctx, args[0])
		if lookup == nil {
			lookup = &pincode.Lookup{Pincode: args[0]}
		}
		lookup.Err = err
		lookups = []*pincode.Lookup{lookup}
	} else {
		lookups, batchErr = apiClient.Pincode.CheckMany(ctx, args)
	}

	views := make([]checkView, len(lookups))
	var failures []error
	for i, l := range lookups {
		views[i] = newCheckView(l, checkShowValue)
		if l.Err != nil {
			failures = append(failures, l.Err)
		}
	}

	var out interface{} = views
	if len(views) == 1 {
		out = views[0]
	}
	if err := render(out, func(w io.Writer) { writeCheckText(w, views) }); err != nil {
		return err
	}

	if batchErr != nil {
		return batchErr
	}
	if len(failures) > 0 {
		return &reportedError{err: errors.Join(failures...)}
	}
	return nil
}

func writeCheckText(w io.Writer, views []checkView) {
	for _, v := range views {
		switch {
		case v.Error != "":
			errorColor.Fprintf(w, "%s  %s\n", v.Pincode, v.Error)
		case v.Serviceable:
			place := v.City
			if v.State != "" {
				place += ", " + v.State
			}
			successColor.Fprintf(w, "%s  %s\n", v.Pincode, place)
		case v.Raw:
			warningColor.Fprintf(w, "%s  response could not be decoded\n", v.Pincode)
		default:
			infoColor.Fprintf(w, "%s  decoded via %s, no location in response\n", v.Pincode, v.Strategy)
		}

		if v.Value != nil {
			data, err := json.Marshal(v.Value)
			if err != nil {
				data = []byte(fmt.Sprint(v.Value))
			}
			fmt.Fprintf(w, "    %s\n", data)
		}
	}
}
