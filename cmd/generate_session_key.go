package cmd

import (
	"encoding/base64"
	"fmt"

	"github.com/gorilla/securecookie"
	"github.com/spf13/cobra"
)

const sessionKeyLength = 64

var generateSessionKeyCmd = &cobra.Command{
	Use:   "generate-session-key",
	Short: "Generate a random key for signing cookies",
	Long: `Generate a random key for signing the session and flow cookies.

Changing the key signs out every browser.`,
	RunE: generateSessionKey,
}

func init() {
	rootCmd.AddCommand(generateSessionKeyCmd)
}

func generateSessionKey(*cobra.Command, []string) error {
	key := securecookie.GenerateRandomKey(sessionKeyLength)
	if key == nil {
		return fmt.Errorf("failed to generate session key")
	}
	encoded := base64.RawURLEncoding.EncodeToString(key)

	fmt.Println("Add this to your configuration file:")
	fmt.Println()
	fmt.Printf("session_key: \"%s\"\n", encoded)
	fmt.Println()
	fmt.Println("Or set KEEPSAKE_SESSION_KEY in the environment.")
	return nil
}
