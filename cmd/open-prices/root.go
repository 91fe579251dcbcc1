package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/openfoodfacts/open-prices/internal/config"
	"github.com/openfoodfacts/open-prices/internal/database"
	"github.com/openfoodfacts/open-prices/internal/logging"
	"github.com/openfoodfacts/open-prices/internal/version"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "open-prices",
	Short: "Crowdsourced product prices",
	Long: `Open Prices collects prices of products observed in shops.

The serve command runs the API, admin site and home page. The migrate
commands move the database schema along the migration chain.`,
	Version:       version.Get().Short(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./open-prices.yaml if present)")
	rootCmd.PersistentFlags().String("database-url", "", "database connection string (overrides DATABASE_URL)")

	_ = viper.BindPFlag("DATABASE_URL", rootCmd.PersistentFlags().Lookup("database-url"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("open-prices")
	}

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		fmt.Fprintf(os.Stderr, "Error: failed to read config file: %v\n", err)
		os.Exit(1)
	}
}

// env is what every command needs: configuration and a logger tagged with
// the command name.
type env struct {
	ctx    context.Context
	cfg    *config.Config
	logger *slog.Logger
}

func setup(cmd *cobra.Command) (*env, error) {
	base := logging.SetDefault()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	ctx := logging.WithCommand(cmd.Context(), cmd.CommandPath())
	return &env{ctx: ctx, cfg: cfg, logger: logging.FromContext(ctx, base)}, nil
}

func (e *env) openDB() (*database.DB, error) {
	db, err := database.New(e.cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	e.logger.Debug("database opened", "dialect", db.Dialect)
	return db, nil
}
