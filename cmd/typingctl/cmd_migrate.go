package main

import (
	"github.com/spf13/cobra"

	"github.com/baharkarakas/typing-backend/internal/db"
)

// migrateCmd applies every pending embedded migration.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	c, err := connect(cmd.Context())
	if err != nil {
		return err
	}
	defer c.Close()

	if err := db.RunMigrations(cmd.Context(), c.sql); err != nil {
		return err
	}
	names, _ := db.MigrationNames()
	log.Info("migrations applied", "known", len(names))
	return nil
}
