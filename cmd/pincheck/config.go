package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/TheMichaelB/pincheck/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or create configuration",
}

var configInitCmd = &cobra.Command{
	Use:     "init [path]",
	Short:   "Write an example config file",
	Example: `  pincheck config init ~/.config/pincheck/pincheck.yaml`,
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "pincheck.yaml"
		if len(args) == 1 {
			path = args[0]
		}

		if err := config.SaveExample(path); err != nil {
			return fmt.Errorf("write config: %w", err)
		}

		printSuccess("Wrote %s", path)
		printInfo("Set crypto.passphrase before running checks")
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long:  `Show prints, as JSON, the configuration after defaults, file and environment are merged. The passphrase is never printed.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return renderTo(cmd.OutOrStdout(), "json", cfg, func(io.Writer) {})
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}
