package main

import (
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"studytracker/internal/config"
	"studytracker/internal/db"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "studyctl",
		Short:   "Operator tools for the study tracker",
		Version: Version,
	}

	rootCmd.AddCommand(reconcileCmd())
	rootCmd.AddCommand(leaderboardCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(watchCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openDatabase loads config and opens a migrated database.
func openDatabase() (config.Config, *sqlx.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}

	database, err := db.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return config.Config{}, nil, err
	}
	if err := db.RunMigrations(database, cfg.MigrationsDir); err != nil {
		_ = database.Close()
		return config.Config{}, nil, err
	}
	return cfg, database, nil
}
