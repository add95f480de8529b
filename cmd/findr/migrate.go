package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/findr-ai/findr/internal/config"
	"github.com/findr-ai/findr/internal/db"
)

var migrateDir string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Long:  `Apply the SQL migrations that have not yet been recorded in the schema_migrations table.`,
	RunE:  runMigrate,
}

func init() {
	migrateCmd.Flags().StringVar(&migrateDir, "dir", "", "Migrations directory (defaults to the configured one)")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	dir := migrateDir
	if dir == "" {
		dir = cfg.Admin.MigrationsDir
	}

	ctx := context.Background()
	database, err := db.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	applied, err := database.Migrate(ctx, dir)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if len(applied) == 0 {
		fmt.Println("No pending migrations")
		return nil
	}
	for _, name := range applied {
		fmt.Printf("Applied %s\n", name)
	}
	return nil
}
