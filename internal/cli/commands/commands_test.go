package commands

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novelhub-dev/novelhub/internal/cli/app"
	"github.com/novelhub-dev/novelhub/internal/cli/auth"
	"github.com/novelhub-dev/novelhub/internal/cli/config"
)

func newTestApp(t *testing.T, token string) *app.App {
	t.Helper()

	a, err := app.New(config.Default(), app.Options{
		LogWriter: io.Discard,
		Backend:   auth.NewMemoryBackend(token),
	})
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

func TestCheckRoute(t *testing.T) {
	protected := withRoute(&cobra.Command{Use: "show"}, "/profile")
	public := withRoute(&cobra.Command{Use: "register"}, "/register")
	plain := &cobra.Command{Use: "logout"}

	t.Run("protected without credential", func(t *testing.T) {
		err := CheckRoute(protected, newTestApp(t, ""))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrLoginRequired))
		assert.Contains(t, err.Error(), "redirected to /login")
	})

	t.Run("protected with credential", func(t *testing.T) {
		assert.NoError(t, CheckRoute(protected, newTestApp(t, "tok")))
	})

	t.Run("public and unrouted commands", func(t *testing.T) {
		a := newTestApp(t, "")
		assert.NoError(t, CheckRoute(public, a))
		assert.NoError(t, CheckRoute(plain, a))
	})
}

func TestNeedsApp(t *testing.T) {
	assert.True(t, NeedsApp(&cobra.Command{Use: "status"}))
	assert.False(t, NeedsApp(NewVersionCmd("1.0.0")))
	assert.False(t, NeedsApp(NewConfigCmd()))
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(3 * time.Hour).Truncate(time.Second)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "u1",
		"exp":     exp.Unix(),
	}).SignedString([]byte("any-key"))
	require.NoError(t, err)

	got, err := tokenExpiry(token)
	require.NoError(t, err)
	assert.True(t, exp.Equal(got))

	_, err = tokenExpiry("opaque-token")
	assert.Error(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": "u1"}).SignedString([]byte("k"))
	require.NoError(t, err)
	_, err = tokenExpiry(noExp)
	assert.Error(t, err)
}

func TestPrintExpiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	var buf bytes.Buffer
	printExpiry(&buf, now.Add(-time.Minute), now)
	assert.Contains(t, buf.String(), "(expired)")

	buf.Reset()
	printExpiry(&buf, now.Add(90*time.Minute), now)
	assert.Contains(t, buf.String(), "(in 1h30m0s)")
}

func TestFormatParams(t *testing.T) {
	assert.Equal(t, "", formatParams(nil))
	assert.Equal(t, "chapterId=3 id=42", formatParams(map[string]string{"id": "42", "chapterId": "3"}))
}

func TestLoginCommand_RequiresUsername(t *testing.T) {
	t.Setenv("NOVELHUB_USERNAME", "")
	t.Setenv("NOVELHUB_PASSWORD", "")

	env := &Env{App: newTestApp(t, "")}
	cmd := NewLoginCmd(env)
	cmd.SetArgs([]string{"--password", "x"})
	cmd.SetOut(io.Discard)

	err := cmd.Execute()
	assert.ErrorContains(t, err, "username is required")
	assert.Equal(t, "/login", cmd.Annotations[RouteAnnotation])
}

func TestProfileUpdate_NothingToUpdate(t *testing.T) {
	env := &Env{App: newTestApp(t, "tok")}
	cmd := NewProfileCmd(env)
	cmd.SetArgs([]string{"update"})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)

	err := cmd.Execute()
	assert.ErrorContains(t, err, "nothing to update")
}
