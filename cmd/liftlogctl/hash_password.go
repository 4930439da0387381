package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/2beens/liftlog/pkg"

	"github.com/spf13/cobra"
)

// newHashPasswordCmd prints the bcrypt hash to put into a [[users]] config entry.
// Without an argument the password is read from the first line of stdin.
func newHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print the bcrypt hash of a password for the users config",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var password string
			if len(args) == 1 {
				password = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}
			if password == "" {
				return errors.New("password must not be empty")
			}

			hash, err := pkg.HashPassword(password)
			if err != nil {
				return fmt.Errorf("hash password: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), hash)
			return err
		},
	}
}
