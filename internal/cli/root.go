package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/novelhub-dev/novelhub/internal/cli/app"
	"github.com/novelhub-dev/novelhub/internal/cli/commands"
	"github.com/novelhub-dev/novelhub/internal/cli/config"
)

var version = "dev" // Will be set during build

func newRootCmd(opts app.Options) (*cobra.Command, *commands.Env) {
	env := &commands.Env{}
	var apiURL string

	rootCmd := &cobra.Command{
		Use:   "novelhub",
		Short: "NovelHub - read and write novels from the terminal",
		Long: `NovelHub CLI - sign in, manage your profile and browse the platform.

Your session is kept in the system keyring (or a token file) and
reused by every command until you log out.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !commands.NeedsApp(cmd) {
				return nil
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if apiURL != "" {
				cfg.APIURL = apiURL
				if err := cfg.Validate(); err != nil {
					return err
				}
			}

			a, err := app.New(cfg, opts)
			if err != nil {
				return err
			}
			env.App = a

			return commands.CheckRoute(cmd, a)
		},
	}

	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "API base URL (overrides config and NOVELHUB_API_URL)")

	rootCmd.AddCommand(commands.NewVersionCmd(opts.Version))
	rootCmd.AddCommand(commands.NewLoginCmd(env))
	rootCmd.AddCommand(commands.NewLogoutCmd(env))
	rootCmd.AddCommand(commands.NewRegisterCmd(env))
	rootCmd.AddCommand(commands.NewStatusCmd(env))
	rootCmd.AddCommand(commands.NewProfileCmd(env))
	rootCmd.AddCommand(commands.NewOpenCmd(env))
	rootCmd.AddCommand(commands.NewRoutesCmd(env))
	rootCmd.AddCommand(commands.NewConfigCmd())

	return rootCmd, env
}

// Execute runs the root command
func Execute() error {
	rootCmd, env := newRootCmd(app.Options{Version: version})

	err := rootCmd.Execute()
	if env.App != nil {
		env.App.Close()
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
