package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/TheMichaelB/pincheck/internal/codec"
	"github.com/TheMichaelB/pincheck/internal/envelope"
	"github.com/TheMichaelB/pincheck/internal/models"
)

var sealCmd = &cobra.Command{
	Use:   "seal [text]",
	Short: "Encrypt and wrap text with the configured passphrase",
	Long: `Seal encrypts text (the argument, or stdin) with a fresh IV and salt and
prints the wrapped envelope.`,
	Example: `  pincheck seal '{"header":{},"body":{"pincode":"400001"}}'
  echo -n hello | pincheck seal`,
	Args:        cobra.MaximumNArgs(1),
	Annotations: map[string]string{needsClient: "true"},
	RunE:        runSeal,
}

var sealPincode string

var openCmd = &cobra.Command{
	Use:   "open [wrapped]",
	Short: "Unwrap and decrypt an envelope",
	Example: `  pincheck open MTI4OjoxMDAwMDo6...
  pincheck open --inspect < envelope.txt`,
	Args:        cobra.MaximumNArgs(1),
	Annotations: map[string]string{needsClient: "true"},
	RunE:        runOpen,
}

var openInspect bool

func init() {
	rootCmd.AddCommand(sealCmd)
	rootCmd.AddCommand(openCmd)

	sealCmd.Flags().StringVar(&sealPincode, "pincode", "",
		"Seal the lookup request for this pincode instead of text")
	openCmd.Flags().BoolVar(&openInspect, "inspect", false,
		"Show envelope parameters without decrypting")
}

// sealView is the printable result of seal.
type sealView struct {
	Wrapped string `json:"wrapped" yaml:"wrapped"`
}

// openView is the printable result of open.
type openView struct {
	Envelope  *envelope.Envelope `json:"envelope,omitempty" yaml:"envelope,omitempty"`
	Plaintext string             `json:"plaintext,omitempty" yaml:"plaintext,omitempty"`
	Value     interface{}        `json:"value,omitempty" yaml:"value,omitempty"`
}

func runSeal(cmd *cobra.Command, args []string) error {
	var (
		wrapped string
		err     error
	)

	if sealPincode != "" {
		wrapped, err = apiClient.Sealer.SealJSON(models.NewLookupRequest(sealPincode))
	} else {
		var text string
		text, err = argOrStdin(args)
		if err != nil {
			return err
		}
		wrapped, err = apiClient.Sealer.Seal([]byte(text))
	}
	if err != nil {
		return err
	}

	return render(sealView{Wrapped: wrapped}, func(w io.Writer) {
		fmt.Fprintln(w, wrapped)
	})
}

func runOpen(cmd *cobra.Command, args []string) error {
	wrapped, err := argOrStdin(args)
	if err != nil {
		return err
	}
	wrapped = strings.TrimSpace(wrapped)

	if openInspect {
		env, err := envelope.Unwrap(wrapped)
		if err != nil {
			return err
		}
		return render(openView{Envelope: env}, func(w io.Writer) {
			fmt.Fprintf(w, "key size:    %d bits\n", env.KeySizeBits)
			fmt.Fprintf(w, "iterations:  %d\n", env.Iterations)
			fmt.Fprintf(w, "iv:          %s\n", env.IVHex)
			fmt.Fprintf(w, "salt:        %s\n", env.SaltHex)
			fmt.Fprintf(w, "ciphertext:  %d chars\n", len(env.CipherText))
		})
	}

	plaintext, err := apiClient.Sealer.Open(wrapped)
	if err != nil {
		return err
	}

	view := openView{Plaintext: plaintext, Value: codec.ParseOrString(plaintext)}
	return render(view, func(w io.Writer) {
		fmt.Fprintln(w, plaintext)
	})
}

// argOrStdin returns the single argument, or stdin with one trailing
// newline removed.
func argOrStdin(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}

	text := strings.TrimSuffix(string(data), "\n")
	return strings.TrimSuffix(text, "\r"), nil
}
