// Package keyring stores the Google Calendar API key in the OS keyring so
// it never has to live in shell history or plain-text env files.
package keyring

import (
	"errors"
	"fmt"

	"github.com/tourenq/weekcal/internal/config"
	"github.com/zalando/go-keyring"
)

var (
	// ErrNotFound is returned when no API key is stored in the keyring.
	ErrNotFound = errors.New("API key not found in keyring")
	// ErrUnavailable is returned when the OS keyring cannot be reached.
	ErrUnavailable = errors.New("OS keyring is not available")
)

// GetAPIKey retrieves the stored API key. Returns ErrNotFound when nothing
// is stored.
func GetAPIKey() (string, error) {
	key, err := keyring.Get(config.KeyringService, config.KeyringUser)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return key, nil
}

// SetAPIKey stores the API key in the OS keyring.
func SetAPIKey(key string) error {
	if key == "" {
		return errors.New("API key cannot be empty")
	}
	if err := keyring.Set(config.KeyringService, config.KeyringUser, key); err != nil {
		return fmt.Errorf("failed to store API key in keyring: %w", err)
	}
	return nil
}

// DeleteAPIKey removes the stored API key.
func DeleteAPIKey() error {
	if err := keyring.Delete(config.KeyringService, config.KeyringUser); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete API key from keyring: %w", err)
	}
	return nil
}
