package auth

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	service = "novelhub-cli"
)

// getKeyringKey returns a unique key for storing the token per API host
func getKeyringKey(host string) string {
	return fmt.Sprintf("token-%s", host)
}

// KeyringBackend persists the token in the OS keychain/credential manager
type KeyringBackend struct {
	key string
}

// NewKeyringBackend returns a backend holding one keychain entry for host
func NewKeyringBackend(host string) *KeyringBackend {
	return &KeyringBackend{key: getKeyringKey(host)}
}

// Load retrieves the token from the OS keychain. A missing entry is not an error.
func (k *KeyringBackend) Load() (string, error) {
	token, err := keyring.Get(service, k.key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to load token: %w", err)
	}
	return token, nil
}

// Save persists the token in the OS keychain
func (k *KeyringBackend) Save(token string) error {
	if err := keyring.Set(service, k.key, token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// Delete removes the token from the OS keychain
func (k *KeyringBackend) Delete() error {
	if err := keyring.Delete(service, k.key); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil // Already deleted
		}
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}
