package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/baharkarakas/typing-backend/internal/auth"
	"github.com/baharkarakas/typing-backend/internal/config"
	"github.com/baharkarakas/typing-backend/internal/repository/postgres"
	"github.com/baharkarakas/typing-backend/internal/services"
)

var (
	adminName     string
	adminEmail    string
	adminPassword string
)

// createAdminCmd creates an Admin account or promotes an existing one.
var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an admin user, or promote an existing user to admin",
	Args:  cobra.NoArgs,
	RunE:  runCreateAdmin,
}

func init() {
	createAdminCmd.Flags().StringVar(&adminName, "name", "Admin", "Display name for a new admin")
	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "Admin email (required)")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "Password for a new admin")
}

func runCreateAdmin(cmd *cobra.Command, _ []string) error {
	if adminEmail == "" {
		return errors.New("--email is required")
	}
	c, err := connect(cmd.Context())
	if err != nil {
		return err
	}
	defer c.Close()

	// Tokens and mail are not used by EnsureAdmin.
	users := services.NewUserService(postgres.NewStore(c.sql), auth.NewTokenManager(config.DefaultJWTSecret, ""), nil, nil, "", log)
	u, created, err := users.EnsureAdmin(cmd.Context(), adminName, adminEmail, adminPassword)
	if err != nil {
		return err
	}
	verb := "promoted"
	if created {
		verb = "created"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "admin %s: %s (%s)\n", verb, u.Email, u.ID)
	return nil
}
