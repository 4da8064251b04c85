package main

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/aristotlemanolakos/nyc-apartment-scraper/internal/config"
)

func watchCmd() *cobra.Command {
	var (
		testMode bool
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run scan cycles continuously",
		Long:  `Run a scan cycle every interval until interrupted.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			eng, cleanup, err := buildEngine(ctx, testMode)
			defer cleanup()
			if err != nil {
				return err
			}

			if interval == 0 {
				scraperCfg, cfgErr := config.LoadScraperConfig()
				if cfgErr != nil {
					return cfgErr
				}
				interval = scraperCfg.Interval
			}

			err = eng.Watch(ctx, interval)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().BoolVarP(&testMode, "test", "t", false, "test mode (no sheet writes)")
	cmd.Flags().DurationVar(&interval, "interval", 0, "time between cycles (default: scraping.interval_minutes from config)")
	return cmd
}
