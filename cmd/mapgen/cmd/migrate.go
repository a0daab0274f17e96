package cmd

import (
	"fmt"

	"github.com/Togather-Foundation/mapgen/internal/storage/postgres"
	"github.com/spf13/cobra"
)

var (
	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Manage the postgres preferences schema",
		Long: `Apply or roll back the schema used by the postgres preferences backend.

The database URL comes from --database-url or prefs.database_url
(MAPGEN_PREFS_DATABASE_URL).`,
	}

	migrateUpCmd = &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dbURL, err := migrateDatabaseURL()
			if err != nil {
				return err
			}
			if err := postgres.MigrateUp(dbURL); err != nil {
				return err
			}
			return printMigrationVersion(cmd, dbURL)
		},
	}

	migrateDownCmd = &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dbURL, err := migrateDatabaseURL()
			if err != nil {
				return err
			}
			if err := postgres.MigrateDown(dbURL, migrateSteps); err != nil {
				return err
			}
			return printMigrationVersion(cmd, dbURL)
		},
	}

	migrateVersionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the applied schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dbURL, err := migrateDatabaseURL()
			if err != nil {
				return err
			}
			return printMigrationVersion(cmd, dbURL)
		},
	}

	migrateDBURL string
	migrateSteps int
)

func init() {
	migrateCmd.PersistentFlags().StringVar(&migrateDBURL, "database-url", "", "postgres connection URL (default: prefs.database_url)")
	migrateDownCmd.Flags().IntVar(&migrateSteps, "steps", 1, "number of migrations to roll back")

	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
	migrateCmd.AddCommand(migrateVersionCmd)
}

func migrateDatabaseURL() (string, error) {
	if migrateDBURL != "" {
		return migrateDBURL, nil
	}
	cfg, err := loadConfig()
	if err != nil {
		return "", err
	}
	if cfg.Prefs.DatabaseURL == "" {
		return "", fmt.Errorf("database URL is required: use --database-url or MAPGEN_PREFS_DATABASE_URL")
	}
	return cfg.Prefs.DatabaseURL, nil
}

func printMigrationVersion(cmd *cobra.Command, dbURL string) error {
	version, dirty, err := postgres.MigrationVersion(dbURL)
	if err != nil {
		return err
	}
	state := ""
	if dirty {
		state = " (dirty)"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema version %d%s\n", version, state)
	return nil
}
