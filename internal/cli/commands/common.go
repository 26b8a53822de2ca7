package commands

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/novelhub-dev/novelhub/internal/cli/app"
	"github.com/novelhub-dev/novelhub/internal/cli/router"
)

const (
	// RouteAnnotation names the page a command stands for
	RouteAnnotation = "novelhub/route"
	// NoAppAnnotation marks commands that run without a session
	NoAppAnnotation = "novelhub/no-app"
)

// ErrLoginRequired is returned when a protected command runs without a credential
var ErrLoginRequired = errors.New("login required")

// Env carries the application into commands. The root command fills it
// in before each run.
type Env struct {
	App *app.App
	// In is read for prompts; nil means stdin
	In io.Reader
}

func (e *Env) stdin() io.Reader {
	if e.In != nil {
		return e.In
	}
	return os.Stdin
}

func withRoute(cmd *cobra.Command, path string) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[RouteAnnotation] = path
	return cmd
}

func withoutApp(cmd *cobra.Command) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[NoAppAnnotation] = "true"
	return cmd
}

// NeedsApp reports whether cmd runs against a session
func NeedsApp(cmd *cobra.Command) bool {
	return cmd.Annotations[NoAppAnnotation] == ""
}

// CheckRoute runs the navigation guard for the page cmd stands for
func CheckRoute(cmd *cobra.Command, a *app.App) error {
	path, ok := cmd.Annotations[RouteAnnotation]
	if !ok {
		return nil
	}

	tr := a.Router.Navigate(path)
	if tr.Decision.Outcome == router.Redirect {
		return fmt.Errorf("%w: '%s' needs a signed-in session (redirected to %s)\nRun 'novelhub login' first",
			ErrLoginRequired, cmd.CommandPath(), tr.Decision.Target)
	}
	return nil
}
