package auth

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileBackend stores the raw token string in a single file
type FileBackend struct {
	path string
}

// NewFileBackend returns a backend rooted at path
func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

// Path returns the file the token is written to
func (f *FileBackend) Path() string {
	return f.path
}

// Load reads the token file. A missing file means no session.
func (f *FileBackend) Load() (string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read token file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Save writes the token file, creating its directory if needed
func (f *FileBackend) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	if err := os.WriteFile(f.path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// Delete removes the token file
func (f *FileBackend) Delete() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	return nil
}

// MemoryBackend keeps the token for the lifetime of the process only
type MemoryBackend struct {
	token string
}

// NewMemoryBackend returns a backend preloaded with token (may be empty)
func NewMemoryBackend(token string) *MemoryBackend {
	return &MemoryBackend{token: token}
}

func (m *MemoryBackend) Load() (string, error) {
	return m.token, nil
}

func (m *MemoryBackend) Save(token string) error {
	m.token = token
	return nil
}

func (m *MemoryBackend) Delete() error {
	m.token = ""
	return nil
}
