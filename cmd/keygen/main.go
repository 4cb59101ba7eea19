// Command keygen creates JWT secrets and signs API tokens for local use.
package main

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Notifuse/emailbuilder/internal/http/middleware"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:          "keygen",
		Short:        "Generate JWT secrets and API tokens for the emailbuilder API",
		SilenceUsage: true,
	}
	root.SetOut(out)

	root.AddCommand(newSecretCmd())
	root.AddCommand(newTokenCmd())
	return root
}

func newSecretCmd() *cobra.Command {
	var size int

	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Print a random secret suitable for JWT_SECRET",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if size < 32 {
				return fmt.Errorf("secret size must be at least 32 bytes, got %d", size)
			}
			buf := make([]byte, size)
			if _, err := rand.Read(buf); err != nil {
				return fmt.Errorf("failed to read random bytes: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), base64.RawURLEncoding.EncodeToString(buf))
			return nil
		},
	}
	cmd.Flags().IntVar(&size, "size", 32, "number of random bytes")
	return cmd
}

func newTokenCmd() *cobra.Command {
	var (
		userID string
		email  string
		secret string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign an API token with the given secret (defaults to $JWT_SECRET)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				secret = os.Getenv("JWT_SECRET")
			}
			if secret == "" {
				return errors.New("a secret is required: pass --secret or set JWT_SECRET")
			}
			token, err := middleware.SignToken(userID, email, []byte(secret), ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "local", "user id stored in the token")
	cmd.Flags().StringVar(&email, "email", "", "email stored in the token")
	cmd.Flags().StringVar(&secret, "secret", "", "signing secret")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
