package cmd

import (
	"fmt"

	"github.com/jon4hz/keepsake/internal/credential"
	"github.com/jon4hz/keepsake/internal/database"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long:  `Run database migrations and create the bootstrap user if it does not exist yet.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := loadConfig()

		db, err := database.New(cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer db.Close() //nolint: errcheck

		user, err := credential.New(db, cfg.Auth).EnsureBootstrapUser(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to create bootstrap user: %w", err)
		}

		fmt.Printf("Database migrations completed successfully! Bootstrap user: %s\n", user.Username)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
