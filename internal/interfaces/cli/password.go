package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/fpm2805/ayuda-penco/internal/infrastructure/auth"
	"github.com/spf13/cobra"
)

// NewHashPasswordCommand prints the bcrypt hash for admin.password_hash.
// The password is read from stdin so it stays out of the shell history.
func NewHashPasswordCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password",
		Short: "Hash the admin password read from stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("read password: %w", err)
			}
			password := strings.TrimRight(line, "\r\n")
			if password == "" {
				return errors.New("password is empty")
			}
			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), hash)
			return err
		},
	}
}
