package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/novelhub-dev/novelhub/internal/cli/client"
)

// NewLoginCmd creates the login command
func NewLoginCmd(env *Env) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to NovelHub",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd, env, username, password)
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Username (or set NOVELHUB_USERNAME)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set NOVELHUB_PASSWORD, will prompt if not provided)")

	return withRoute(cmd, "/login")
}

func runLogin(cmd *cobra.Command, env *Env, username, password string) error {
	out := cmd.OutOrStdout()

	// Check for environment variables (useful for CI/CD)
	if username == "" {
		username = os.Getenv("NOVELHUB_USERNAME")
	}
	if password == "" {
		password = os.Getenv("NOVELHUB_PASSWORD")
	}

	if username == "" {
		return fmt.Errorf("username is required (use --username flag or NOVELHUB_USERNAME env var)")
	}

	if password == "" {
		var err error
		password, err = readPassword(out, "Password", "use --password flag or NOVELHUB_PASSWORD env var")
		if err != nil {
			return err
		}
	}

	fmt.Fprintf(out, "Logging in to %s...\n", env.App.Client.BaseURL())

	user, err := env.App.Flows.Login(cmd.Context(), client.LoginRequest{
		Username: username,
		Password: password,
	})
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	fmt.Fprintln(out, "✓ Login successful!")
	fmt.Fprintf(out, "  User: %s", user.Field("username"))
	if email := user.Field("email"); email != "" {
		fmt.Fprintf(out, " (%s)", email)
	}
	fmt.Fprintln(out)

	return nil
}

// NewLogoutCmd creates the logout command
func NewLogoutCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored credential",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			had := env.App.Auth.HasCredential()

			env.App.Flows.Logout()

			if had {
				fmt.Fprintln(out, "✓ Logged out")
			} else {
				fmt.Fprintln(out, "Not logged in.")
			}
			return nil
		},
	}
}
