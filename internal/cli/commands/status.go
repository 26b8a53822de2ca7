package commands

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"

	"github.com/novelhub-dev/novelhub/internal/cli/client"
)

// NewStatusCmd creates the status command
func NewStatusCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd, env, time.Now())
		},
	}
}

func runStatus(cmd *cobra.Command, env *Env, now time.Time) error {
	a := env.App

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintf(w, "API:\t%s\n", a.Client.BaseURL())
	fmt.Fprintf(w, "Credentials:\t%s\n", a.Config.Credentials)

	token, ok := a.Auth.Token()
	if !ok {
		fmt.Fprintln(w, "Session:\tnot logged in")
		return nil
	}
	fmt.Fprintln(w, "Session:\tlogged in")

	if exp, err := tokenExpiry(token); err == nil {
		printExpiry(w, exp, now)
	} else {
		a.Log.Debug().Err(err).Msg("Could not read token expiry")
	}

	user, err := a.Flows.LoadProfile(cmd.Context())
	switch {
	case err == nil:
		fmt.Fprintf(w, "User:\t%s", user.Field("username"))
		if email := user.Field("email"); email != "" {
			fmt.Fprintf(w, " <%s>", email)
		}
		fmt.Fprintln(w)
	case errors.Is(err, client.ErrAuth):
		fmt.Fprintln(w, "User:\ttoken rejected by server, run 'novelhub login'")
	default:
		fmt.Fprintf(w, "User:\tunavailable (%v)\n", err)
	}

	return nil
}

// tokenExpiry reads the exp claim without verifying the signature. It is
// for display only; the server decides whether the token is still valid.
func tokenExpiry(token string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, err
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, err
	}
	if exp == nil {
		return time.Time{}, errors.New("token has no expiry")
	}
	return exp.Time, nil
}

func printExpiry(w io.Writer, exp, now time.Time) {
	if exp.Before(now) {
		fmt.Fprintf(w, "Expires:\t%s (expired)\n", exp.Local().Format(time.RFC1123))
		return
	}
	fmt.Fprintf(w, "Expires:\t%s (in %s)\n", exp.Local().Format(time.RFC1123), exp.Sub(now).Round(time.Minute))
}
