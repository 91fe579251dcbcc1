package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openfoodfacts/open-prices/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version number and build information for open-prices.`,
	Run: func(cmd *cobra.Command, args []string) {
		v := version.Get()
		fmt.Printf("open-prices: %v\n", v.Version)
		fmt.Printf("Commit: %v\n", v.Commit)
		fmt.Printf("Build Date: %v\n", v.Date)
		fmt.Printf("Go: %v (%v)\n", v.GoVersion, v.Platform)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
