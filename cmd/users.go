package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/jon4hz/keepsake/internal/database"
	"github.com/spf13/cobra"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List the users in the database",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := loadConfig()

		db, err := database.New(cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer db.Close() //nolint: errcheck

		users, err := db.GetAllUsers(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get users: %w", err)
		}
		if len(users) == 0 {
			fmt.Println("No users yet. Run `keepsake migrate` to create the bootstrap user.")
			return nil
		}

		fmt.Println("Users:")
		for _, u := range users {
			fmt.Printf("  ID: %d, Username: %s, Created: %s\n", u.ID, u.Username, humanize.Time(u.CreatedAt))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(usersCmd)
}
