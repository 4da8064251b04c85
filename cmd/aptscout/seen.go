package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/aristotlemanolakos/nyc-apartment-scraper/internal/config"
	"github.com/aristotlemanolakos/nyc-apartment-scraper/internal/storage"
)

func seenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seen",
		Short: "Show deduplication store stats",
		RunE: func(_ *cobra.Command, _ []string) error {
			storageCfg := config.LoadStorageConfig()
			seen := storage.NewSeenStore(storageCfg.SeenFile, storageCfg.MaxSeen, slog.Default())

			fmt.Printf("Seen store: %s\n", storageCfg.SeenFile)
			fmt.Printf("Recorded listing IDs: %d\n", seen.Count())
			return nil
		},
	}
}
