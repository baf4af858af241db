package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/TheMichaelB/pincheck/internal/client"
	"github.com/TheMichaelB/pincheck/internal/config"
	"github.com/TheMichaelB/pincheck/internal/creds"
	"github.com/TheMichaelB/pincheck/internal/events"
	"github.com/TheMichaelB/pincheck/internal/models"
)

// needsClient marks commands that seal or open envelopes.
const needsClient = "needs-client"

var (
	cfgFile      string
	verbose      bool
	jsonOutput   bool
	dumpMetrics  bool
	outputFormat string

	cfg       *config.Config
	logger    *events.Logger
	apiClient *client.Client
)

var rootCmd = &cobra.Command{
	Use:   "pincheck",
	Short: "Check delivery serviceability for Indian pincodes",
	Long: `pincheck talks to the storefront's encrypted pincode API.

Requests are sealed with a shared passphrase (crypto.passphrase,
PINCHECK_CRYPTO_PASSPHRASE or a crypto.passphrase_file) and responses are decoded whatever shape the
server answers in.`,
	SilenceUsage:       true,
	SilenceErrors:      true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"Config file (default: ./pincheck.yaml or ~/.config/pincheck/pincheck.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false,
		"Log in JSON format")
	rootCmd.PersistentFlags().BoolVar(&dumpMetrics, "metrics", false,
		"Print collected metrics to stderr on exit")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text",
		"Output format: text, json, yaml")
}

func setup(cmd *cobra.Command, args []string) error {
	if err := validateOutputFormat(outputFormat); err != nil {
		return err
	}

	config.LoadDotEnv()

	var err error
	cfg, err = config.NewLoader(cfgFile).Load()
	if err != nil {
		return err
	}

	if verbose {
		cfg.Log.Level = "debug"
	}
	if jsonOutput {
		cfg.Log.Format = "json"
	}
	if dumpMetrics {
		cfg.Metrics.Enabled = true
	}

	logger, err = events.NewLogger(&cfg.Log)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	events.SetDefault(logger)

	if cmd.Annotations[needsClient] == "" {
		return nil
	}

	if err := creds.Resolve(&cfg.Crypto); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %w", models.ErrInvalidConfig, err)
	}

	if cfg.Crypto.Passphrase == "" {
		passphrase, err := promptPassphrase("Passphrase: ")
		if err != nil {
			return err
		}
		cfg.Crypto.Passphrase = passphrase
	}

	apiClient, err = client.New(cfg, logger)
	if err != nil {
		return err
	}

	return nil
}

func teardown(cmd *cobra.Command, args []string) error {
	return closeClient()
}

// closeClient dumps metrics and releases the client. It runs after failed
// commands too, so it is safe to call twice.
func closeClient() error {
	if apiClient == nil {
		return nil
	}
	c := apiClient
	apiClient = nil

	if dumpMetrics {
		if err := c.WriteMetrics(os.Stderr); err != nil {
			logger.WithError(err).Warn("Failed to write metrics")
		}
	}

	return c.Close()
}

// promptPassphrase reads the passphrase without echo. It refuses to block
// on a non-interactive stdin.
func promptPassphrase(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("crypto.passphrase is not set; use PINCHECK_CRYPTO_PASSPHRASE, crypto.passphrase_file or a config file")
	}

	fmt.Fprint(os.Stderr, prompt)

	// Read passphrase without echo
	passphrase, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr) // New line after passphrase

	if err != nil {
		return "", fmt.Errorf("read passphrase: %w", err)
	}

	return string(passphrase), nil
}
