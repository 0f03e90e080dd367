package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the database schema",
	Long:  "Creates every table and index the API needs. Safe to run repeatedly.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}

		db, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		if db == nil {
			return fmt.Errorf("database driver %q has no schema to migrate", cfg.Database.Driver)
		}
		defer db.Close()

		if err := db.Init(cmd.Context()); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
		logger.Infof("%s schema is up to date", db.Driver())
		return nil
	},
}
