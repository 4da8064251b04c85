package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func scanCmd() *cobra.Command {
	var testMode bool

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run a single scan cycle",
		Long: `Fetch the newest listings from the configured subreddits, classify the
ones not yet seen, and append every decision to the sheet.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			eng, cleanup, err := buildEngine(ctx, testMode)
			defer cleanup()
			if err != nil {
				return err
			}

			stats, err := eng.RunCycle(ctx)
			if err != nil {
				return err
			}

			fmt.Printf("Done: %d fetched, %d new, %d passed, %d added\n",
				stats.Fetched, stats.New, stats.Passed, stats.Added)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&testMode, "test", "t", false, "test mode (no sheet writes)")
	return cmd
}
