package session

import (
	"context"
	"io"

	"github.com/rs/zerolog"

	"github.com/novelhub-dev/novelhub/internal/cli/client"
)

// API is the subset of the platform API the flows call
type API interface {
	Login(ctx context.Context, req client.LoginRequest) (*client.LoginResult, error)
	Register(ctx context.Context, req client.RegisterRequest) (*client.RegisterResult, error)
	GetProfile(ctx context.Context) (client.Profile, error)
	UpdateProfile(ctx context.Context, req client.UpdateProfileRequest) (*client.Ack, error)
	UpdatePassword(ctx context.Context, req client.UpdatePasswordRequest) (*client.Ack, error)
	UploadAvatar(ctx context.Context, filename string, r io.Reader) (*client.AvatarResult, error)
}

// Flows runs the account operations against the API and is the only
// writer of an AuthContext. Errors from the API are returned unchanged
// and never retried.
type Flows struct {
	auth *AuthContext
	api  API
	log  zerolog.Logger
}

// NewFlows wires flows to a session and an API
func NewFlows(authCtx *AuthContext, api API, log zerolog.Logger) *Flows {
	return &Flows{auth: authCtx, api: api, log: log}
}

// Login authenticates and, on success, installs token, user and stored
// credential together. On failure the session is left as it was.
func (f *Flows) Login(ctx context.Context, creds client.LoginRequest) (client.Profile, error) {
	result, err := f.api.Login(ctx, creds)
	if err != nil {
		f.log.Debug().Err(err).Str("username", creds.Username).Msg("Login failed")
		return nil, err
	}

	f.auth.commitLogin(result.Token, result.User)
	f.log.Info().Str("username", creds.Username).Msg("Logged in")

	return result.User.Clone(), nil
}

// Register creates an account. It does not sign the user in.
func (f *Flows) Register(ctx context.Context, req client.RegisterRequest) (*client.RegisterResult, error) {
	return f.api.Register(ctx, req)
}

// Logout clears the session and the stored credential. Safe to call
// with no session.
func (f *Flows) Logout() {
	f.auth.commitLogout()
	f.log.Info().Msg("Logged out")
}

// UpdateUser merges partial into the current user. Keys in partial
// overwrite, all others are kept. Returns ErrNotAuthenticated when no
// user is loaded.
func (f *Flows) UpdateUser(partial client.Profile) error {
	return f.auth.mergeUser(partial)
}

// LoadProfile fetches the profile for the current credential. It is
// used after a restart, when the token was restored from storage but
// the user was not. The result is dropped if a login or logout
// completed while the request was in flight.
func (f *Flows) LoadProfile(ctx context.Context) (client.Profile, error) {
	state := f.auth.Snapshot()
	if !state.Authenticated {
		return nil, ErrNotAuthenticated
	}

	profile, err := f.api.GetProfile(ctx)
	if err != nil {
		return nil, err
	}

	if !f.auth.installProfile(state.Generation, profile) {
		f.log.Debug().Msg("Session changed while loading profile, discarding result")
	}
	current := f.auth.Snapshot()
	if !current.Authenticated {
		return nil, ErrNotAuthenticated
	}
	return current.User, nil
}

// SaveProfile sends a profile change and mirrors the sent fields locally
func (f *Flows) SaveProfile(ctx context.Context, req client.UpdateProfileRequest) error {
	if !f.auth.HasCredential() {
		return ErrNotAuthenticated
	}

	if _, err := f.api.UpdateProfile(ctx, req); err != nil {
		return err
	}

	if err := f.UpdateUser(req.Fields()); err != nil {
		// Saved remotely; the local mirror catches up on the next LoadProfile
		f.log.Debug().Err(err).Msg("Profile saved without a loaded user")
	}
	return nil
}

// ChangePassword updates the password. The current session stays valid.
func (f *Flows) ChangePassword(ctx context.Context, req client.UpdatePasswordRequest) error {
	if !f.auth.HasCredential() {
		return ErrNotAuthenticated
	}

	_, err := f.api.UpdatePassword(ctx, req)
	return err
}

// UploadAvatar uploads a new avatar and records its URL on the user
func (f *Flows) UploadAvatar(ctx context.Context, filename string, r io.Reader) (string, error) {
	if !f.auth.HasCredential() {
		return "", ErrNotAuthenticated
	}

	result, err := f.api.UploadAvatar(ctx, filename, r)
	if err != nil {
		return "", err
	}

	if err := f.UpdateUser(client.Profile{"avatar": result.AvatarURL}); err != nil {
		f.log.Debug().Err(err).Msg("Avatar saved without a loaded user")
	}
	return result.AvatarURL, nil
}
