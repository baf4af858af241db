package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/TheMichaelB/pincheck/internal/models"
	"github.com/TheMichaelB/pincheck/internal/resolver"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [file]",
	Short: "Decode a saved response body",
	Long: `Resolve runs the response decoder over a body saved from the lookup API
(a file, or stdin) and prints the value it recovers and how.`,
	Example: `  pincheck resolve response.txt
  curl -s ... | pincheck resolve -o json`,
	Args:        cobra.MaximumNArgs(1),
	Annotations: map[string]string{needsClient: "true"},
	RunE:        runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}

// resolveView is the printable result of resolve.
type resolveView struct {
	Result   resolver.Result  `json:"result" yaml:"result"`
	Location *models.Location `json:"location,omitempty" yaml:"location,omitempty"`
}

func runResolve(cmd *cobra.Command, args []string) error {
	var (
		data []byte
		err  error
	)
	if len(args) == 1 {
		data, err = os.ReadFile(args[0])
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	result := apiClient.Resolver.Resolve(cmd.Context(), string(data))

	view := resolveView{Result: result}
	if loc, err := models.ExtractLocation(result.Value); err == nil {
		view.Location = loc
	}

	return render(view, func(w io.Writer) {
		if result.Raw {
			warningColor.Fprintf(w, "Could not decode response (%s)\n", result.Strategy)
			fmt.Fprintln(w, models.Preview(string(data)))
			return
		}

		infoColor.Fprintf(w, "Decoded via %s\n", result.Strategy)
		if view.Location != nil {
			successColor.Fprintf(w, "Location: %s\n", view.Location.Label())
		}

		if text, ok := result.Text(); ok {
			fmt.Fprintln(w, text)
			return
		}
		pretty, err := json.MarshalIndent(result.Value, "", "  ")
		if err != nil {
			fmt.Fprintln(w, result.Value)
			return
		}
		fmt.Fprintln(w, string(pretty))
	})
}
