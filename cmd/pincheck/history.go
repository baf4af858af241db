package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/TheMichaelB/pincheck/internal/state"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded lookups",
	Example: `  pincheck history
  pincheck history --limit 50 -o json
  pincheck history --clear`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var (
	historyLimit int
	historyClear bool
)

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 0,
		"Number of entries to show (default: history.limit)")
	historyCmd.Flags().BoolVar(&historyClear, "clear", false,
		"Delete all recorded lookups")
}

func runHistory(cmd *cobra.Command, args []string) error {
	if !cfg.History.Enabled {
		return fmt.Errorf("history is disabled (history.enabled: false)")
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	store, err := state.Open(&cfg.History, logger)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer store.Close()

	if historyClear {
		if err := store.Clear(); err != nil {
			return err
		}
		if outputFormat == "text" {
			printSuccess("History cleared")
		}
		return nil
	}

	limit := historyLimit
	if limit <= 0 {
		limit = cfg.History.Limit
	}

	entries, err := store.Recent(limit)
	if err != nil {
		return fmt.Errorf("list history: %w", err)
	}
	if entries == nil {
		entries = []*state.Entry{}
	}

	return render(entries, func(w io.Writer) {
		writeHistoryText(w, entries)
	})
}

func writeHistoryText(w io.Writer, entries []*state.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No lookups recorded")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tPINCODE\tRESULT\tSTRATEGY")
	for _, e := range entries {
		result := e.City
		switch {
		case e.Error != "":
			result = "error: " + e.Error
		case e.Raw:
			result = "undecoded"
		case result == "":
			result = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			e.Time.Local().Format(time.DateTime), e.Pincode, result, e.Strategy)
	}
	_ = tw.Flush()
}
