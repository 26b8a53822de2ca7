package commands

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/novelhub-dev/novelhub/internal/cli/router"
)

// NewOpenCmd creates the open command, which navigates to a page
func NewOpenCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "open <path>",
		Short: "Navigate to a page, applying the login guard",
		Example: `  novelhub open /novels/42
  novelhub open /write/editor/7`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			tr := env.App.Router.Navigate(args[0])

			if tr.Decision.Outcome == router.Redirect {
				fmt.Fprintf(out, "%s requires login, redirected to %s\n", tr.To.Path, tr.Final.Path)
				return nil
			}

			if !tr.Final.Matched {
				fmt.Fprintf(out, "%s: page not found\n", tr.Final.Path)
				return nil
			}

			fmt.Fprintf(out, "%s (%s)\n", tr.Final.Route.Title, tr.Final.Path)
			if params := formatParams(tr.Final.Params); params != "" {
				fmt.Fprintf(out, "  %s\n", params)
			}
			return nil
		},
	}
}

func formatParams(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+params[k])
	}
	return strings.Join(parts, " ")
}

// NewRoutesCmd creates the routes command
func NewRoutesCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List pages and whether you can open them",
		RunE: func(cmd *cobra.Command, args []string) error {
			guard := router.NewGuard(env.App.Auth, router.LoginPath)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PATH\tNAME\tAUTH\tACCESS")
			fmt.Fprintln(w, "────\t────\t────\t──────")

			for _, route := range env.App.Router.Table().Routes() {
				auth := "-"
				if route.RequiresAuth {
					auth = "required"
				}

				access := "open"
				if d := guard.Check(route); d.Outcome == router.Redirect {
					access = "→ " + d.Target
				}

				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", route.Path, route.Name, auth, access)
			}

			return w.Flush()
		},
	}
}
