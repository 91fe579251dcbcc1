package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openfoodfacts/open-prices/internal/database/migrations"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate [revision]",
	Short: "Upgrade the database schema",
	Long: `Apply pending migrations up to the given revision, or to head when no
revision is given. Each migration runs in its own transaction; a failure
stops the run and leaves earlier migrations applied.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := migrations.Head
		if len(args) == 1 {
			target = args[0]
		}
		return migrateTo(cmd, target, false)
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down <revision|base>",
	Short: "Downgrade the database schema",
	Long: `Revert applied migrations, newest first, until the given revision is the
current one. "base" reverts every migration.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return migrateTo(cmd, args[0], true)
	},
}

func init() {
	migrateCmd.AddCommand(migrateDownCmd)
	rootCmd.AddCommand(migrateCmd)
}

func migrateTo(cmd *cobra.Command, target string, down bool) error {
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

	if down {
		err = m.Downgrade(e.ctx, target)
	} else {
		err = m.Upgrade(e.ctx, target)
	}
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	current, err := m.Current(e.ctx)
	if err != nil {
		return err
	}
	if current == "" {
		current = migrations.Base
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Database is at revision %s\n", current)
	return nil
}
