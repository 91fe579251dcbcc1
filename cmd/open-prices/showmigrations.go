package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var showMigrationsCmd = &cobra.Command{
	Use:   "showmigrations",
	Short: "List migrations and whether they are applied",
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

		m, err := db.Migrator(e.logger)
		if err != nil {
			return err
		}
		statuses, err := m.Status(e.ctx)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		for _, s := range statuses {
			mark := "[ ]"
			if s.Applied {
				mark = "[X]"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", mark, s.Revision, s.Description)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(showMigrationsCmd)
}
