package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vidslice/vidslice-api/internal/database"
	"github.com/vidslice/vidslice-api/internal/models"
	"github.com/vidslice/vidslice-api/pkg/config"
)

// migratedModels is the full set of tables the schema migration manages
var migratedModels = []any{
	&models.Job{},
	&models.Video{},
	&models.SubtitleCache{},
	&models.Segment{},
}

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long: `Manage the database schema for the Vidslice API.

Migrations are applied with GORM auto-migration: tables and columns are
created or extended to match the current models. Columns are never dropped.

Available subcommands:
  up      - Apply schema migrations
  status  - Show current schema status`,
}

// migrateUpCmd applies pending migrations
var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply schema migrations",
	Long: `Bring the database schema up to date with the current models.

This is the same migration the serve command runs at startup; running it
separately is useful for pre-warming a database before deploying.`,
	RunE: runMigrateUp,
}

// migrateStatusCmd shows migration status
var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show schema status",
	Long:  `Display which managed tables currently exist in the database.`,
	RunE:  runMigrateStatus,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateStatusCmd)

	migrateUpCmd.Flags().Bool("dry-run", false, "show what would be migrated without making changes")
}

func openDatabase() (*database.DB, error) {
	cfg, err := config.GetConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	db, err := database.Initialize(cfg.Database.Path, cfg.Database.Verbose)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return db, nil
}

func runMigrateUp(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	if dryRun {
		fmt.Println("Dry run mode - no changes will be made")
		for _, m := range migratedModels {
			fmt.Printf("  would migrate %T\n", m)
		}
		return nil
	}

	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if err := db.AutoMigrate(migratedModels...); err != nil {
		return err
	}

	fmt.Printf("Applied schema migrations for %d model(s)\n", len(migratedModels))
	return nil
}

func runMigrateStatus(cmd *cobra.Command, args []string) error {
	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	fmt.Println("Database Schema Status")
	fmt.Println(strings.Repeat("=", 50))

	migrator := db.Migrator()
	for _, m := range migratedModels {
		state := "missing"
		if migrator.HasTable(m) {
			state = "present"
		}
		fmt.Printf("  %-30T %s\n", m, state)
	}

	return nil
}
