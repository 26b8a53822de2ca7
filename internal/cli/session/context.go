// Package session keeps the client's view of who is signed in.
//
// An AuthContext is built once per process around the credential store
// and handed to every consumer: the Flows that mutate it, the request
// authorizer and the navigation guard that only read it.
//
// Mutations commit under a single lock, so a reader never sees a token
// without its user or a user without its token. Credential store writes
// happen after that lock is released. When a login and a
// logout overlap, whichever finishes last decides the final state.
package session

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/novelhub-dev/novelhub/internal/cli/auth"
	"github.com/novelhub-dev/novelhub/internal/cli/client"
)

// ErrNotAuthenticated is returned by operations that need a signed-in user
var ErrNotAuthenticated = errors.New("not logged in")

// State is a point-in-time copy of the session
type State struct {
	Token         string
	Authenticated bool
	User          client.Profile
	// Generation increments on every committed mutation
	Generation uint64
}

// AuthContext owns the in-memory session and keeps it in step with the credential store
type AuthContext struct {
	mu sync.RWMutex
	// commitMu serializes login and logout commits so the store ends
	// in the same state as the context
	commitMu   sync.Mutex
	store      *auth.Store
	token      string
	user       client.Profile
	generation uint64
	log        zerolog.Logger
}

// NewAuthContext starts a session from whatever credential the store hydrated
func NewAuthContext(store *auth.Store, log zerolog.Logger) *AuthContext {
	token, _ := store.Get()
	return &AuthContext{
		store: store,
		token: token,
		log:   log,
	}
}

// Token reads the credential store directly, so it implements client.TokenSource
func (c *AuthContext) Token() (string, bool) {
	return c.store.Get()
}

// HasCredential reports whether a token is present
func (c *AuthContext) HasCredential() bool {
	_, ok := c.store.Get()
	return ok
}

// Snapshot returns a copy of the current session
func (c *AuthContext) Snapshot() State {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return State{
		Token:         c.token,
		Authenticated: c.token != "",
		User:          c.user.Clone(),
		Generation:    c.generation,
	}
}

// Close drops the in-memory session. The durable credential is kept
// so the next process resumes it.
func (c *AuthContext) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.user = nil
	c.token = ""
	c.generation++
}

func (c *AuthContext) commitLogin(token string, user client.Profile) {
	c.commitMu.Lock()
	defer c.commitMu.Unlock()

	if user == nil {
		user = client.Profile{}
	}

	c.mu.Lock()
	c.token = token
	c.user = user.Clone()
	c.generation++
	c.mu.Unlock()

	c.store.Set(token)
}

func (c *AuthContext) commitLogout() {
	c.commitMu.Lock()
	defer c.commitMu.Unlock()

	c.mu.Lock()
	c.token = ""
	c.user = nil
	c.generation++
	c.mu.Unlock()

	c.store.Clear()
}

// mergeUser applies partial over the current user, key by key
func (c *AuthContext) mergeUser(partial client.Profile) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.user == nil {
		return ErrNotAuthenticated
	}

	merged := c.user.Clone()
	for k, v := range partial {
		merged[k] = v
	}
	c.user = merged
	c.generation++
	return nil
}

// installProfile sets the user for a resumed token, unless the session
// changed since generation was observed.
func (c *AuthContext) installProfile(generation uint64, profile client.Profile) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generation != generation || c.token == "" {
		return false
	}

	if c.user == nil {
		c.user = profile.Clone()
	} else {
		merged := c.user.Clone()
		for k, v := range profile {
			merged[k] = v
		}
		c.user = merged
	}
	c.generation++
	return true
}
