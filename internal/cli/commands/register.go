package commands

import (
	"fmt"
	"net/mail"

	"github.com/spf13/cobra"

	"github.com/novelhub-dev/novelhub/internal/cli/client"
)

// NewRegisterCmd creates the register command
func NewRegisterCmd(env *Env) *cobra.Command {
	var req client.RegisterRequest

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a NovelHub account",
		Long: `Create a NovelHub account.

Missing values are prompted for when running in a terminal.
Registering does not sign you in; run 'novelhub login' afterwards.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegister(cmd, env, req)
		},
	}

	cmd.Flags().StringVarP(&req.Username, "username", "u", "", "Username (3-32 characters)")
	cmd.Flags().StringVar(&req.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&req.Password, "password", "", "Password (at least 6 characters)")

	return withRoute(cmd, "/register")
}

func runRegister(cmd *cobra.Command, env *Env, req client.RegisterRequest) error {
	out := cmd.OutOrStdout()

	if req.Username == "" || req.Email == "" || req.Password == "" {
		if env.In == nil && !isTerminal() {
			return fmt.Errorf("username, email and password are required in non-interactive mode")
		}
		if err := promptRegistration(env, &req); err != nil {
			return err
		}
	}

	result, err := env.App.Flows.Register(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	fmt.Fprintf(out, "✓ %s\n", result.Message)
	fmt.Fprintln(out, "\nSign in with: novelhub login --username", req.Username)
	return nil
}

func promptRegistration(env *Env, req *client.RegisterRequest) error {
	var err error
	if req.Username == "" {
		req.Username, err = promptValue(env.stdin(), "Username", false, minLength("username", 3))
		if err != nil {
			return err
		}
	}
	if req.Email == "" {
		req.Email, err = promptValue(env.stdin(), "Email", false, func(s string) error {
			_, err := mail.ParseAddress(s)
			return err
		})
		if err != nil {
			return err
		}
	}
	if req.Password == "" {
		req.Password, err = promptValue(env.stdin(), "Password", true, minLength("password", 6))
		if err != nil {
			return err
		}
	}
	return nil
}
