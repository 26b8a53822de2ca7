package auth

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

// brokenBackend fails every operation
type brokenBackend struct{}

func (brokenBackend) Load() (string, error) { return "", errors.New("disk on fire") }
func (brokenBackend) Save(string) error     { return errors.New("disk on fire") }
func (brokenBackend) Delete() error         { return errors.New("disk on fire") }

// slowBackend blocks Save and Delete until release is closed
type slowBackend struct {
	started chan struct{}
	release chan struct{}
}

func (b *slowBackend) Load() (string, error) { return "", nil }
func (b *slowBackend) Save(string) error {
	close(b.started)
	<-b.release
	return nil
}
func (b *slowBackend) Delete() error { return nil }

func TestStore_GetDoesNotWaitOnBackendWrite(t *testing.T) {
	backend := &slowBackend{started: make(chan struct{}), release: make(chan struct{})}
	store := Open(backend, zerolog.Nop())

	done := make(chan struct{})
	go func() {
		store.Set("T1")
		close(done)
	}()
	<-backend.started

	got := make(chan string, 1)
	go func() {
		token, _ := store.Get()
		got <- token
	}()

	select {
	case token := <-got:
		assert.Equal(t, "T1", token)
	case <-time.After(2 * time.Second):
		t.Fatal("Get blocked behind a pending backend write")
	}

	close(backend.release)
	<-done
}

func TestStore_HydratesOnce(t *testing.T) {
	backend := NewMemoryBackend("T0")
	store := Open(backend, zerolog.Nop())

	// Changing the backend behind the store's back is not observed
	backend.token = "changed"

	token, ok := store.Get()
	assert.True(t, ok)
	assert.Equal(t, "T0", token)
}

func TestStore_EmptyBackendMeansAbsent(t *testing.T) {
	store := Open(NewMemoryBackend(""), zerolog.Nop())

	token, ok := store.Get()
	assert.False(t, ok)
	assert.Empty(t, token)
}

func TestStore_SetAndClearWriteThrough(t *testing.T) {
	backend := NewMemoryBackend("")
	store := Open(backend, zerolog.Nop())

	store.Set("T1")
	token, ok := store.Get()
	require.True(t, ok)
	assert.Equal(t, "T1", token)
	assert.Equal(t, "T1", backend.token)

	store.Clear()
	_, ok = store.Get()
	assert.False(t, ok)
	assert.Empty(t, backend.token)

	// Clearing twice is safe
	store.Clear()
	_, ok = store.Get()
	assert.False(t, ok)
}

func TestStore_SetEmptyClears(t *testing.T) {
	store := Open(NewMemoryBackend("T1"), zerolog.Nop())
	store.Set("")

	_, ok := store.Get()
	assert.False(t, ok)
}

func TestStore_BackendErrorsAreLoggedNotReturned(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	store := Open(brokenBackend{}, log)
	_, ok := store.Get()
	assert.False(t, ok)

	store.Set("T1")
	token, ok := store.Get()
	assert.True(t, ok)
	assert.Equal(t, "T1", token)

	store.Clear()
	_, ok = store.Get()
	assert.False(t, ok)

	assert.Contains(t, buf.String(), "disk on fire")
}

func TestFileBackend_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token")
	backend := NewFileBackend(path)

	token, err := backend.Load()
	require.NoError(t, err)
	assert.Empty(t, token, "missing file means no session")

	require.NoError(t, backend.Save("T1"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	token, err = backend.Load()
	require.NoError(t, err)
	assert.Equal(t, "T1", token)

	require.NoError(t, backend.Delete())
	require.NoError(t, backend.Delete(), "deleting a missing file is not an error")

	token, err = backend.Load()
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestFileBackend_SurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")

	first := Open(NewFileBackend(path), zerolog.Nop())
	first.Set("T1")

	second := Open(NewFileBackend(path), zerolog.Nop())
	token, ok := second.Get()
	require.True(t, ok)
	assert.Equal(t, "T1", token)
}

func TestKeyringBackend_RoundTrip(t *testing.T) {
	keyring.MockInit()

	backend := NewKeyringBackend("localhost:8080")

	token, err := backend.Load()
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, backend.Save("T1"))
	token, err = backend.Load()
	require.NoError(t, err)
	assert.Equal(t, "T1", token)

	// Entries are scoped per host
	other, err := NewKeyringBackend("api.example.com").Load()
	require.NoError(t, err)
	assert.Empty(t, other)

	require.NoError(t, backend.Delete())
	require.NoError(t, backend.Delete())
}
