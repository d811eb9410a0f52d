package cmd

import (
	"fmt"

	"github.com/jon4hz/keepsake/internal/guard"
	"github.com/jon4hz/keepsake/pkg/client"
	"github.com/spf13/cobra"
)

var whoamiCmdFlags struct {
	URL      string
	Username string
}

var whoamiCmd = &cobra.Command{
	Use:     "whoami",
	Short:   "Check a login against a running server",
	Long:    `Sign in to a running keepsake server, print the user it reports and sign out again.`,
	Example: `keepsake whoami --url http://localhost:5000 --username GEET`,
	RunE:    whoami,
}

func init() {
	whoamiCmd.Flags().StringVar(&whoamiCmdFlags.URL, "url", "http://localhost:5000", "Base URL of the keepsake server")
	whoamiCmd.Flags().StringVarP(&whoamiCmdFlags.Username, "username", "u", "", "Username to sign in with")
	_ = whoamiCmd.MarkFlagRequired("username")

	rootCmd.AddCommand(whoamiCmd)
}

func whoami(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	c, err := client.New(whoamiCmdFlags.URL)
	if err != nil {
		return err
	}

	password, err := readPassword("Password: ")
	if err != nil {
		return err
	}
	if _, err := c.Login(ctx, whoamiCmdFlags.Username, password, false); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	defer c.Logout(ctx) //nolint:errcheck

	q := guard.NewQuery[client.User](c)
	user, state := q.Resolve(ctx)
	if err := q.Err(); err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}

	decision := guard.New("/login").Decide(state)
	if user == nil {
		fmt.Printf("Not signed in, pages would %s to %s\n", decision.Action, decision.Location)
		return nil
	}
	fmt.Printf("Signed in as %s (id %d), pages would %s\n", user.Username, user.ID, decision.Action)
	return nil
}
