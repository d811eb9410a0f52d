package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/jon4hz/keepsake/internal/config"
	"github.com/jon4hz/keepsake/internal/credential"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var hashPasswordCmdFlags struct {
	Cost int
}

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password",
	Short: "Hash a password for auth.password_hash",
	Long: `Read a password from the terminal or stdin and print its bcrypt hash.

Put the hash into auth.password_hash so the plaintext password never has to be stored in the config.`,
	Example: `keepsake hash-password
echo -n 'secret' | keepsake hash-password --cost 12`,
	RunE: hashPassword,
}

func init() {
	hashPasswordCmd.Flags().IntVar(&hashPasswordCmdFlags.Cost, "cost", config.MinBcryptCost, "bcrypt cost")

	rootCmd.AddCommand(hashPasswordCmd)
}

func hashPassword(*cobra.Command, []string) error {
	password, err := readPassword("Password: ")
	if err != nil {
		return err
	}

	hash, err := credential.HashPassword(password, hashPasswordCmdFlags.Cost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	fmt.Println(hash)
	return nil
}

// readPassword prompts without echo on a terminal and reads one line otherwise.
func readPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd()) //nolint:gosec
	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, prompt)
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(raw), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
