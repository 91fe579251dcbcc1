package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/openfoodfacts/open-prices/internal/repository"
	"github.com/openfoodfacts/open-prices/internal/service"
)

var (
	exportKinds   []string
	exportPresign time.Duration
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export prices and products as gzipped JSON Lines",
	Long: `Write every price and product as gzip-compressed JSON Lines. Files are
uploaded to object storage when a bucket is configured and written to
EXPORT_DIR otherwise.`,
	Args: cobra.NoArgs,
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

		services, err := service.NewServices(e.cfg, db, repository.NewRepositories(db), e.logger)
		if err != nil {
			return err
		}

		results, err := services.Export.Run(e.ctx, exportKinds...)
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		out := cmd.OutOrStdout()
		for _, r := range results {
			fmt.Fprintf(out, "%s: %d rows, %d bytes -> %s\n", r.Kind, r.Rows, r.Bytes, r.Location)
			if r.Remote && exportPresign > 0 {
				url, err := services.Storage.PresignedURL(e.ctx, r.Location, exportPresign)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "  %s\n", url)
			}
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringSliceVar(&exportKinds, "kind", service.ExportKinds, "what to export (prices, products)")
	exportCmd.Flags().DurationVar(&exportPresign, "presign", 0, "print a download URL valid for this long (object storage only)")
	rootCmd.AddCommand(exportCmd)
}
