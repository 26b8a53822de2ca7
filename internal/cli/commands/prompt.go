package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/manifoldco/promptui"
	"golang.org/x/term"
)

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// readPassword prompts without echo. It fails in non-interactive mode.
func readPassword(out io.Writer, label, hint string) (string, error) {
	if !isTerminal() {
		return "", fmt.Errorf("password is required in non-interactive mode (%s)", hint)
	}

	fmt.Fprintf(out, "%s: ", label)
	bytePassword, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(out) // New line after password input
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(bytePassword), nil
}

// promptValue asks for a value with promptui, validating as the user types
func promptValue(in io.Reader, label string, mask bool, validate promptui.ValidateFunc) (string, error) {
	prompt := promptui.Prompt{
		Label:    label,
		Validate: validate,
	}
	if mask {
		prompt.Mask = '*'
	}
	if in != os.Stdin {
		prompt.Stdin = io.NopCloser(in)
	}

	value, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("prompt cancelled: %w", err)
	}
	return value, nil
}

func minLength(name string, n int) promptui.ValidateFunc {
	return func(s string) error {
		if len(s) < n {
			return fmt.Errorf("%s must be at least %d characters", name, n)
		}
		return nil
	}
}
