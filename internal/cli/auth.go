package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/wiredhikari/eix/internal/auth"
)

func newAuthCmd() *cobra.Command {
	authCmd := &cobra.Command{
		Use:   "auth",
		Short: "Authentication utilities",
		Long:  `Utilities for managing query API credentials.`,
	}

	authCmd.AddCommand(&cobra.Command{
		Use:   "hash-password",
		Short: "Generate bcrypt hash for a password",
		Long: `Generate a bcrypt hash for a password to use in the users file named by
auth.users_file. The password is read without echo from a terminal, or as one
line from standard input otherwise.`,
		Args: cobra.NoArgs,
		RunE: runHashPassword,
	})
	return authCmd
}

// readPassword reads without echo when in is a terminal
func readPassword(in io.Reader, prompt io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(prompt, "Enter password: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt) // New line after password input
		return string(b), err
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func runHashPassword(cmd *cobra.Command, args []string) error {
	password, err := readPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	if len(password) == 0 {
		return invalidArgs(fmt.Errorf("password cannot be empty"))
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	fmt.Fprintln(cmd.ErrOrStderr(), "Bcrypt hash (use this in the users file):")
	fmt.Fprintln(cmd.OutOrStdout(), hash)
	return nil
}
