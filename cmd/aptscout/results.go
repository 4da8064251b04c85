package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aristotlemanolakos/nyc-apartment-scraper/internal/common"
	"github.com/aristotlemanolakos/nyc-apartment-scraper/internal/config"
	"github.com/aristotlemanolakos/nyc-apartment-scraper/internal/storage"
)

func resultsCmd() *cobra.Command {
	var (
		limit      int
		passedOnly bool
	)

	cmd := &cobra.Command{
		Use:   "results",
		Short: "Show recent classification decisions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			storageCfg := config.LoadStorageConfig()
			if storageCfg.DecisionsDB == "" {
				return common.NewUserError("no decision log configured; set storage.decisions_db", nil)
			}

			decisionLog, err := storage.NewDecisionLog(storageCfg.DecisionsDB)
			if err != nil {
				return fmt.Errorf("failed to open decision log: %w", err)
			}
			defer func() { _ = decisionLog.Close() }()

			rows, err := decisionLog.RecentDecisions(cmd.Context(), limit, passedOnly)
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				fmt.Println("No decisions recorded yet.")
				return nil
			}

			for _, r := range rows {
				verdict := "FAIL"
				if r.Passed {
					verdict = "PASS"
				}
				price := "?"
				if r.Price != nil {
					price = fmt.Sprintf("$%d", *r.Price)
				}
				fmt.Printf("%s  %-4s  %-7s  %s\n", r.CreatedAt.Format("2006-01-02 15:04"), verdict, price, r.Title)
				fmt.Printf("      %s\n", r.Reasons)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of decisions to show")
	cmd.Flags().BoolVar(&passedOnly, "passed", false, "only show passing decisions")
	return cmd
}
