package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openfoodfacts/open-prices/internal/repository"
	"github.com/openfoodfacts/open-prices/internal/service"
)

var refreshStatsCmd = &cobra.Command{
	Use:   "refresh-stats",
	Short: "Recompute the site-wide counters",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		db, err := e.openDB()
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		svc := service.NewStatsService(repository.NewRepositories(db), e.logger)
		stats, err := svc.Refresh(e.ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d prices, %d products, %d currencies\n",
			stats.PriceCount, stats.ProductCount, stats.PriceCurrencyCount)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(refreshStatsCmd)
}
