package main

import (
	"errors"

	"github.com/spf13/cobra"

	"hbnb/internal/service"
)

var adminInput service.CreateUserInput

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an admin account or promote an existing one",
	Example: `  hbnb create-admin --email admin@example.com --password 'changeme!'
  HBNB_DATABASE_PATH=/var/lib/hbnb/hbnb.db hbnb create-admin --email ops@example.com --password secret123`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Database.Driver == "memory" {
			return errors.New("create-admin needs a persistent database driver")
		}
		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}

		repos, db, err := openRepositories(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer db.Close()

		facade := service.NewFacade(repos, service.Options{Logger: logger})
		user, created, err := facade.Users.EnsureAdmin(cmd.Context(), adminInput)
		if err != nil {
			return err
		}
		if created {
			logger.Infof("created admin %s (%s)", user.Email, user.ID)
		} else {
			logger.Infof("%s is an admin (%s)", user.Email, user.ID)
		}
		return nil
	},
}

func init() {
	createAdminCmd.Flags().StringVar(&adminInput.Email, "email", "", "admin email address")
	createAdminCmd.Flags().StringVar(&adminInput.Password, "password", "", "password for a new account")
	createAdminCmd.Flags().StringVar(&adminInput.FirstName, "first-name", "Admin", "first name for a new account")
	createAdminCmd.Flags().StringVar(&adminInput.LastName, "last-name", "User", "last name for a new account")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("password")
}
