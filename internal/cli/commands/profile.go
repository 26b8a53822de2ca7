package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/novelhub-dev/novelhub/internal/cli/client"
)

const profileRoute = "/profile"

// NewProfileCmd creates the profile command group
func NewProfileCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "View and edit your profile",
	}

	cmd.AddCommand(newProfileShowCmd(env))
	cmd.AddCommand(newProfileUpdateCmd(env))
	cmd.AddCommand(newProfilePasswordCmd(env))
	cmd.AddCommand(newProfileAvatarCmd(env))

	return cmd
}

func newProfileShowCmd(env *Env) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show your profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := env.App.Flows.LoadProfile(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to load profile: %w", err)
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(user)
			}

			printProfile(cmd, user)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the profile as JSON")

	return withRoute(cmd, profileRoute)
}

func printProfile(cmd *cobra.Command, user client.Profile) {
	keys := make([]string, 0, len(user))
	for k := range user {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	for _, k := range keys {
		fmt.Fprintf(w, "%s:\t%s\n", k, user.Field(k))
	}
	w.Flush()
}

func newProfileUpdateCmd(env *Env) *cobra.Command {
	var req client.UpdateProfileRequest

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Change username, email or bio",
		Example: `  novelhub profile update --bio "Writes slow-burn fantasy"
  novelhub profile update --email new@example.com`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(req.Fields()) == 0 {
				return fmt.Errorf("nothing to update (use --username, --email or --bio)")
			}

			if err := env.App.Flows.SaveProfile(cmd.Context(), req); err != nil {
				return fmt.Errorf("failed to update profile: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "✓ Profile updated")
			return nil
		},
	}

	cmd.Flags().StringVarP(&req.Username, "username", "u", "", "New username")
	cmd.Flags().StringVar(&req.Email, "email", "", "New email address")
	cmd.Flags().StringVar(&req.Bio, "bio", "", "New bio")

	return withRoute(cmd, profileRoute)
}

func newProfilePasswordCmd(env *Env) *cobra.Command {
	var req client.UpdatePasswordRequest

	cmd := &cobra.Command{
		Use:   "password",
		Short: "Change your password",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			hint := "use --old and --new flags"

			var err error
			if req.OldPassword == "" {
				if req.OldPassword, err = readPassword(out, "Current password", hint); err != nil {
					return err
				}
			}
			if req.NewPassword == "" {
				if req.NewPassword, err = readPassword(out, "New password", hint); err != nil {
					return err
				}
				confirm, err := readPassword(out, "Confirm new password", hint)
				if err != nil {
					return err
				}
				if confirm != req.NewPassword {
					return fmt.Errorf("passwords do not match")
				}
			}

			if err := env.App.Flows.ChangePassword(cmd.Context(), req); err != nil {
				return fmt.Errorf("failed to change password: %w", err)
			}

			fmt.Fprintln(out, "✓ Password changed")
			return nil
		},
	}

	cmd.Flags().StringVar(&req.OldPassword, "old", "", "Current password")
	cmd.Flags().StringVar(&req.NewPassword, "new", "", "New password (at least 6 characters)")

	return withRoute(cmd, profileRoute)
}

func newProfileAvatarCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "avatar <image-file>",
		Short: "Upload a new avatar",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open avatar: %w", err)
			}
			defer f.Close()

			url, err := env.App.Flows.UploadAvatar(cmd.Context(), filepath.Base(args[0]), f)
			if err != nil {
				return fmt.Errorf("failed to upload avatar: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "✓ Avatar uploaded")
			fmt.Fprintf(cmd.OutOrStdout(), "  URL: %s\n", url)
			return nil
		},
	}

	return withRoute(cmd, profileRoute)
}
