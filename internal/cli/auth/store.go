package auth

import (
	"sync"

	"github.com/rs/zerolog"
)

// Backend is the durable single-value storage behind a Store.
// Load returns an empty string when nothing is stored.
type Backend interface {
	Load() (string, error)
	Save(token string) error
	Delete() error
}

// Store holds the current bearer token. It is hydrated from its backend
// once, in Open, and written through on every Set and Clear.
//
// Get, Set and Clear never fail: backend errors are logged and the
// in-memory value stays authoritative for the rest of the process.
type Store struct {
	mu sync.RWMutex
	// persistMu orders backend writes without holding mu during I/O
	persistMu sync.Mutex
	backend   Backend
	token     string
	log       zerolog.Logger
}

// Open hydrates a Store from backend
func Open(backend Backend, log zerolog.Logger) *Store {
	s := &Store{backend: backend, log: log}

	token, err := backend.Load()
	if err != nil {
		log.Warn().Err(err).Msg("Failed to read stored credential, starting without a session")
		return s
	}
	s.token = token
	return s
}

// Get returns the current token and whether one is present
func (s *Store) Get() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

// Set replaces the current token. An empty token is the same as Clear.
func (s *Store) Set(token string) {
	if token == "" {
		s.Clear()
		return
	}

	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	if err := s.backend.Save(token); err != nil {
		s.log.Warn().Err(err).Msg("Failed to persist credential, it will not survive a restart")
	}
}

// Clear removes the current token
func (s *Store) Clear() {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()

	if err := s.backend.Delete(); err != nil {
		s.log.Warn().Err(err).Msg("Failed to remove persisted credential")
	}
}
